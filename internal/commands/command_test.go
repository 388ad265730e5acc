package commands

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Streak_discord_bot/internal/geo"
	"Streak_discord_bot/internal/quiz"
)

type fakeMaps []string

func (f fakeMaps) Names() []string { return f }

func (f fakeMaps) Distribution(input string) (string, string, bool) { return "", "", false }

func TestRegistryResolvesAliasesCaseInsensitively(t *testing.T) {
	reg := NewRegistry()
	reg.Register(NewLeaderboardCommand(nil, fakeMaps{}))
	reg.Register(NewDistributionCommand(fakeMaps{}, "assets"))

	for _, name := range []string{"leaderboard", "LB", "map", "locs", "Locations", "distribution"} {
		_, ok := reg.Get(name)
		assert.True(t, ok, name)
	}
	cmd, ok := reg.Get("lb")
	require.True(t, ok)
	assert.Equal(t, "leaderboard", cmd.Name())

	_, ok = reg.Get("nope")
	assert.False(t, ok)
}

func TestRegistryKeepsRegistrationOrder(t *testing.T) {
	reg := NewRegistry()
	reg.Register(NewInviteCommand())
	reg.Register(NewKickCommand())
	reg.Register(NewMapsCommand(fakeMaps{}))
	reg.Register(NewInviteCommand())

	var names []string
	for _, cmd := range reg.All() {
		names = append(names, cmd.Name())
	}
	assert.Equal(t, []string{"invite", "kick", "maps"}, names)
}

func TestSlashDefinitionsSkipTextOnlyCommands(t *testing.T) {
	reg := NewRegistry()
	reg.Register(NewMapsCommand(fakeMaps{}))
	reg.Register(&PingCommand{})
	reg.Register(NewSetupCommand(nil))
	reg.Register(NewDeleteMapCommand(nil, nil))

	var names []string
	for _, def := range reg.GetSlashDefinitions() {
		names = append(names, def.Name)
	}
	assert.Equal(t, []string{"ping", "setup", "delete_map"}, names)
}

func TestHelpListsUsageLines(t *testing.T) {
	reg := NewRegistry()
	reg.Register(NewPlayCommand(context.Background(), nil, fakeMaps{}))
	reg.Register(NewMapsCommand(fakeMaps{}))
	reg.Register(NewHelpCommand(reg))

	embed := NewHelpCommand(reg).buildHelpEmbed()
	var names []string
	for _, f := range embed.Fields {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"!play", "!play <map>", "!maps", "!help"}, names)
}

func TestRoundErrorMessageListsMapsForUnknownMap(t *testing.T) {
	err := fmt.Errorf("pick: %w", &geo.UnknownMapError{Name: "Mars"})
	msg := roundErrorMessage(err, []string{"A Balanced Europe", "A Balanced World"})
	assert.Equal(t, "Map \"Mars\" not found.\nAvailable maps: A Balanced Europe, A Balanced World", msg)

	assert.Equal(t, quiz.UserMessage(quiz.ErrRoundInProgress), roundErrorMessage(quiz.ErrRoundInProgress, []string{"x"}))
}

func TestSplitAliases(t *testing.T) {
	assert.Equal(t, []string{"abe", "europe"}, splitAliases(" abe, ,europe ,"))
	assert.Nil(t, splitAliases(""))
}
