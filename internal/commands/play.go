package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"Streak_discord_bot/internal/embeds"
	"Streak_discord_bot/internal/geo"
	"Streak_discord_bot/internal/quiz"
)

// MapLister マップ一覧を返すもの（config.MapsConfig）
type MapLister interface {
	Names() []string
}

// PlayCommand !play [map]
type PlayCommand struct {
	textOnly
	ctx  context.Context
	game *quiz.Game
	maps MapLister
}

func NewPlayCommand(ctx context.Context, game *quiz.Game, maps MapLister) *PlayCommand {
	return &PlayCommand{ctx: ctx, game: game, maps: maps}
}

func (c *PlayCommand) Name() string { return "play" }

func (c *PlayCommand) Description() string {
	return "Start a new quiz with a random map, or with the specified map"
}

func (c *PlayCommand) Usage() []string { return []string{"!play", "!play <map>"} }

func (c *PlayCommand) ExecuteText(s *discordgo.Session, m *discordgo.MessageCreate, args []string) error {
	mapInput := strings.Join(args, " ")
	err := c.game.StartRound(c.ctx, m.ChannelID, mapInput, m.Author.ID)
	if err == nil {
		return nil
	}
	return reply(s, m, roundErrorMessage(err, c.maps.Names()))
}

func roundErrorMessage(err error, names []string) string {
	msg := quiz.UserMessage(err)
	var unknown *geo.UnknownMapError
	if errors.As(err, &unknown) {
		msg += fmt.Sprintf("\nAvailable maps: %s", strings.Join(names, ", "))
	}
	return msg
}

// GuessCommand !g <country>
type GuessCommand struct {
	textOnly
	game *quiz.Game
}

func NewGuessCommand(game *quiz.Game) *GuessCommand {
	return &GuessCommand{game: game}
}

func (c *GuessCommand) Name() string { return "g" }

func (c *GuessCommand) Description() string { return "Submit your guess for the current quiz" }

func (c *GuessCommand) Usage() []string { return []string{"!g <country>"} }

func (c *GuessCommand) ExecuteText(s *discordgo.Session, m *discordgo.MessageCreate, args []string) error {
	guess := strings.TrimSpace(strings.Join(args, " "))
	out, ok := c.game.SubmitGuess(m.ChannelID, m.Author.ID, m.Author.Username, guess)
	if !ok {
		return nil
	}

	embed := embeds.BuildGameOverEmbed(out)
	if out.Correct {
		embed = embeds.BuildCorrectEmbed(out)
	}
	_, err := s.ChannelMessageSendEmbedReply(m.ChannelID, embed, m.Reference())
	return err
}

// StopCommand !stop
type StopCommand struct {
	textOnly
	game *quiz.Game
}

func NewStopCommand(game *quiz.Game) *StopCommand {
	return &StopCommand{game: game}
}

func (c *StopCommand) Name() string { return "stop" }

func (c *StopCommand) Description() string { return "Stop the current game in this channel" }

func (c *StopCommand) ExecuteText(s *discordgo.Session, m *discordgo.MessageCreate, args []string) error {
	out, err := c.game.StopRound(m.ChannelID)
	if errors.Is(err, quiz.ErrNoRound) {
		return reply(s, m, "❌ There's no ongoing game to stop in this channel.")
	}
	if err != nil {
		return err
	}
	_, err = s.ChannelMessageSendEmbedReply(m.ChannelID, embeds.BuildStoppedEmbed(out), m.Reference())
	return err
}
