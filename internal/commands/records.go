package commands

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"Streak_discord_bot/internal/embeds"
	"Streak_discord_bot/internal/geo"
	"Streak_discord_bot/internal/quiz"
)

// StatsCommand !stats [@user|name]
type StatsCommand struct {
	textOnly
	game *quiz.Game
}

func NewStatsCommand(game *quiz.Game) *StatsCommand {
	return &StatsCommand{game: game}
}

func (c *StatsCommand) Name() string { return "stats" }

func (c *StatsCommand) Description() string { return "Show your personal stats and records" }

func (c *StatsCommand) Usage() []string { return []string{"!stats", "!stats @<user>"} }

func (c *StatsCommand) ExecuteText(s *discordgo.Session, m *discordgo.MessageCreate, args []string) error {
	userID, username := m.Author.ID, m.Author.Username

	switch {
	case len(m.Mentions) > 0:
		userID, username = m.Mentions[0].ID, m.Mentions[0].Username
	case len(args) > 0:
		query := strings.Join(args, " ")
		id, name, ok := c.game.FindUser(query)
		if !ok {
			return reply(s, m, fmt.Sprintf("User \"%s\" not found in stats database", query))
		}
		userID, username = id, name
	}

	stats := c.game.PersonalStats(userID)
	if len(stats) == 0 {
		return reply(s, m, fmt.Sprintf("%s doesn't have a streak yet", username))
	}
	_, err := s.ChannelMessageSendEmbedReply(m.ChannelID, embeds.BuildStatsEmbed(username, stats), m.Reference())
	return err
}

// LeaderboardCommand !leaderboard <map>
type LeaderboardCommand struct {
	textOnly
	game *quiz.Game
	maps MapLister
}

func NewLeaderboardCommand(game *quiz.Game, maps MapLister) *LeaderboardCommand {
	return &LeaderboardCommand{game: game, maps: maps}
}

func (c *LeaderboardCommand) Name() string { return "leaderboard" }

func (c *LeaderboardCommand) Aliases() []string { return []string{"lb"} }

func (c *LeaderboardCommand) Description() string { return "Show the leaderboard for a specific map" }

func (c *LeaderboardCommand) Usage() []string { return []string{"!leaderboard <map>"} }

func (c *LeaderboardCommand) ExecuteText(s *discordgo.Session, m *discordgo.MessageCreate, args []string) error {
	input := strings.Join(args, " ")
	mapName, rows, err := c.game.Leaderboard(input)
	var unknown *geo.UnknownMapError
	if errors.As(err, &unknown) {
		return reply(s, m, fmt.Sprintf("Unknown map: `%s`. Try one of: %s", input, strings.Join(c.maps.Names(), ", ")))
	}
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		_, err := s.ChannelMessageSend(m.ChannelID, fmt.Sprintf("No leaderboard data for map \"%s\" yet. Be the first to set a record!", mapName))
		return err
	}
	_, err = s.ChannelMessageSendEmbed(m.ChannelID, embeds.BuildLeaderboardEmbed(mapName, rows, time.Now()))
	return err
}
