package commands

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
)

type PingCommand struct{}

func (c *PingCommand) Name() string {
	return "ping"
}

func (c *PingCommand) Description() string {
	return "Check the gateway latency"
}

func pong(s *discordgo.Session) string {
	return fmt.Sprintf("Pong! `%dms`", s.HeartbeatLatency().Milliseconds())
}

func (c *PingCommand) ExecuteText(s *discordgo.Session, m *discordgo.MessageCreate, args []string) error {
	_, err := s.ChannelMessageSend(m.ChannelID, pong(s))
	return err
}

func (c *PingCommand) ExecuteSlash(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	return respondEphemeral(s, i, pong(s))
}

func (c *PingCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
	}
}
