package embeds

import (
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"Streak_discord_bot/internal/geo"
	"Streak_discord_bot/internal/models"
	"Streak_discord_bot/internal/quiz"
	"Streak_discord_bot/internal/streaks"
	"Streak_discord_bot/internal/utils"
)

const (
	ColorBlue   = 0x3498DB
	ColorGreen  = 0x2ECC71
	ColorRed    = 0xE74C3C
	ColorOrange = 0xF39C12
	ColorGold   = 0xF1C40F
	ColorPurple = 0x9B59B6
)

// QuizImageName 出題画像の添付ファイル名
const QuizImageName = "quiz_location.jpg"

// BuildLoadingEmbed 画像生成中の表示
func BuildLoadingEmbed() *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       "🌍 Loading Quiz...",
		Description: "Preparing your challenge, please wait...",
		Color:       ColorBlue,
	}
}

// BuildRoundEmbed 出題メッセージ
func BuildRoundEmbed(round quiz.Round) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("🌍 Country streak - %s", round.MapName),
		Description: "In which country is this location? Use `!g <country>` to guess!",
		Image:       &discordgo.MessageEmbedImage{URL: "attachment://" + QuizImageName},
		Color:       ColorBlue,
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("Map: %s | Current Streak: %d", round.MapName, round.Streak),
		},
	}
}

// BuildCorrectEmbed 正解時の表示
func BuildCorrectEmbed(out quiz.GuessOutcome) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       strings.TrimSpace(flagFor(out.Country) + " Correct!"),
		Description: fmt.Sprintf("You guessed it right! The location is in **%s**.", displayCountry(out.Country)),
		Color:       ColorGreen,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Subdivision", Value: fmt.Sprintf("**%s**", out.Subdivision), Inline: true},
			{Name: "Time This Round", Value: utils.FormatDuration(out.ElapsedMs), Inline: true},
			{Name: "Average Time", Value: utils.FormatDuration(out.AverageMs), Inline: true},
			{Name: "Current Streak", Value: fmt.Sprintf("%d", out.Streak), Inline: true},
			streetViewField(out.Location, "Click here to view on Street View"),
		},
	}
}

// BuildGameOverEmbed 不正解時の表示
func BuildGameOverEmbed(out quiz.GuessOutcome) *discordgo.MessageEmbed {
	participants := "None"
	if len(out.Participants) > 0 {
		names := make([]string, len(out.Participants))
		for i, p := range out.Participants {
			names[i] = p.Username
		}
		participants = strings.Join(names, ", ")
	}

	return &discordgo.MessageEmbed{
		Title:       "❌ Game Over!",
		Description: strings.TrimSpace(fmt.Sprintf("Wrong guess! The correct answer was **%s** %s", displayCountry(out.Country), flagFor(out.Country))) + ".",
		Color:       ColorRed,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Subdivision", Value: fmt.Sprintf("**%s**", out.Subdivision), Inline: true},
			{Name: "Time This Round", Value: utils.FormatDuration(out.ElapsedMs), Inline: true},
			{Name: "Average Time", Value: utils.FormatDuration(out.AverageMs), Inline: true},
			{Name: "Final Streak", Value: fmt.Sprintf("%d", out.Streak), Inline: true},
			{Name: "Personal Best", Value: fmt.Sprintf("%d", out.PersonalBest), Inline: true},
			{Name: "Participants", Value: participants, Inline: false},
			streetViewField(out.Location, "Click here to view on Street View"),
		},
	}
}

// BuildStoppedEmbed !stop の表示
func BuildStoppedEmbed(out quiz.StopOutcome) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       "🛑 Game Stopped",
		Description: "The current game has been stopped manually.",
		Color:       ColorOrange,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Map", Value: out.MapName, Inline: true},
			{Name: "Final Streak", Value: fmt.Sprintf("%d", out.FinalStreak), Inline: true},
		},
	}
}

// BuildLeaderboardEmbed 上位10人のランキング
func BuildLeaderboardEmbed(mapName string, entries []streaks.Entry, now time.Time) *discordgo.MessageEmbed {
	var b strings.Builder
	for i, e := range entries {
		if i == 10 {
			break
		}
		fmt.Fprintf(&b, "%s **%s** - Streak: %d | Average Time: %s | Date: %s\n",
			medal(i), e.Username, e.Streak, utils.FormatDuration(e.AverageTime), utils.FormatDayMillis(e.LastUpdate))
	}
	return &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("🏆 %s - Leaderboard", mapName),
		Description: b.String(),
		Color:       ColorGold,
		Footer:      &discordgo.MessageEmbedFooter{Text: "Updated: " + utils.FormatDay(now)},
	}
}

func medal(i int) string {
	switch i {
	case 0:
		return "🥇"
	case 1:
		return "🥈"
	case 2:
		return "🥉"
	default:
		return fmt.Sprintf("%d.", i+1)
	}
}

// BuildStatsEmbed マップごとの自己ベスト
func BuildStatsEmbed(username string, stats []quiz.MapStat) *discordgo.MessageEmbed {
	var b strings.Builder
	for _, st := range stats {
		rank := "not ranked"
		if st.Rank > 0 {
			rank = fmt.Sprintf("#%d", st.Rank)
		}
		fmt.Fprintf(&b, "**%s**\nBest Streak: %d | Time: %s | Rank: %s | Date: %s\n\n",
			st.MapName, st.Streak, utils.FormatDuration(st.AverageTime), rank, utils.FormatDayMillis(st.LastUpdate))
	}
	return &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("📊 Stats for %s", username),
		Description: b.String(),
		Color:       ColorPurple,
	}
}

// BuildMapsEmbed 遊べるマップ一覧
func BuildMapsEmbed(names []string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       "Available Maps",
		Description: strings.Join(names, "\n"),
		Color:       ColorBlue,
	}
}

// BuildDistributionEmbed 地点分布画像
func BuildDistributionEmbed(mapName, fileName string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title: fmt.Sprintf("%s - Distribution", mapName),
		Image: &discordgo.MessageEmbedImage{URL: "attachment://" + fileName},
		Color: ColorGreen,
	}
}

// BuildInfoEmbed /info 用
func BuildInfoEmbed(botInfo *models.BotInfo, stats models.RuntimeStats) *discordgo.MessageEmbed {
	browser := "🔴 stopped"
	if stats.BrowserAlive {
		browser = "🟢 running"
	}
	return &discordgo.MessageEmbed{
		Title: "🌍 StreakBot",
		Color: ColorBlue,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Version", Value: botInfo.Version, Inline: true},
			{Name: "Uptime", Value: formatUptime(botInfo.Uptime()), Inline: true},
			{Name: "Active Rounds", Value: fmt.Sprintf("%d", stats.ActiveRounds), Inline: true},
			{Name: "Geocoded Locations", Value: fmt.Sprintf("%d", stats.CachedCoordinates), Inline: true},
			{Name: "Renderer", Value: browser, Inline: true},
		},
		Footer: &discordgo.MessageEmbedFooter{
			Text: "Started " + botInfo.StartTime.Format("2006-01-02 15:04:05 MST"),
		},
	}
}

func streetViewField(loc geo.Location, label string) *discordgo.MessageEmbedField {
	return &discordgo.MessageEmbedField{
		Name:  "Exact Location",
		Value: fmt.Sprintf("[%s](%s)", label, geo.StreetViewURL(loc)),
	}
}

// displayCountry 国キーを表示名にする（表に無ければそのまま）
func displayCountry(country string) string {
	if c, ok := geo.LookupCountry(country); ok {
		return c.Name
	}
	return country
}

func flagFor(country string) string {
	if c, ok := geo.LookupCountry(country); ok {
		return c.Flag()
	}
	return ""
}

// formatUptime 稼働時間を人間が読みやすい形式にフォーマット
func formatUptime(d time.Duration) string {
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	if days > 0 {
		return fmt.Sprintf("%dd %dh %dm %ds", days, hours, minutes, seconds)
	} else if hours > 0 {
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
	} else if minutes > 0 {
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	}
	return fmt.Sprintf("%ds", seconds)
}
