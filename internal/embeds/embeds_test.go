package embeds

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"Streak_discord_bot/internal/quiz"
	"Streak_discord_bot/internal/streaks"
)

func TestLeaderboardShowsTopTenWithMedals(t *testing.T) {
	var entries []streaks.Entry
	for i := 0; i < 12; i++ {
		entries = append(entries, streaks.Entry{
			UserID:      fmt.Sprint(i),
			Username:    fmt.Sprintf("player%d", i),
			Streak:      20 - i,
			AverageTime: 4000,
			LastUpdate:  time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC).UnixMilli(),
		})
	}

	embed := BuildLeaderboardEmbed("A Balanced World", entries, time.Date(2025, 1, 3, 0, 0, 0, 0, time.UTC))

	lines := strings.Split(strings.TrimSpace(embed.Description), "\n")
	assert.Len(t, lines, 10)
	assert.Equal(t, "🥇 **player0** - Streak: 20 | Average Time: 00:04.00 | Date: 2025-01-02", lines[0])
	assert.True(t, strings.HasPrefix(lines[3], "4. **player3**"))
	assert.Equal(t, "Updated: 2025-01-03", embed.Footer.Text)
}

func TestGameOverWithoutParticipants(t *testing.T) {
	embed := BuildGameOverEmbed(quiz.GuessOutcome{Country: "japan", Subdivision: "Tokyo", Streak: 3, PersonalBest: 5})

	assert.Equal(t, "Wrong guess! The correct answer was **Japan** 🇯🇵.", embed.Description)
	var participants string
	for _, f := range embed.Fields {
		if f.Name == "Participants" {
			participants = f.Value
		}
	}
	assert.Equal(t, "None", participants)
}

func TestRoundEmbedReferencesAttachment(t *testing.T) {
	embed := BuildRoundEmbed(quiz.Round{MapName: "A Balanced Europe", Streak: 4})
	assert.Equal(t, "attachment://quiz_location.jpg", embed.Image.URL)
	assert.Equal(t, "Map: A Balanced Europe | Current Streak: 4", embed.Footer.Text)
}

func TestFormatUptime(t *testing.T) {
	assert.Equal(t, "42s", formatUptime(42*time.Second))
	assert.Equal(t, "1d 2h 3m 4s", formatUptime(26*time.Hour+3*time.Minute+4*time.Second))
}
