package commands

import (
	"Streak_discord_bot/internal/embeds"
	"Streak_discord_bot/internal/models"

	"github.com/bwmarrin/discordgo"
)

type InfoCommand struct {
	botInfo *models.BotInfo
	stats   models.StatsSource
}

func NewInfoCommand(botInfo *models.BotInfo, stats models.StatsSource) *InfoCommand {
	return &InfoCommand{botInfo: botInfo, stats: stats}
}

func (c *InfoCommand) Name() string {
	return "info"
}

func (c *InfoCommand) Description() string {
	return "Show bot version, uptime and quiz status"
}

func (c *InfoCommand) embed() *discordgo.MessageEmbed {
	var stats models.RuntimeStats
	if c.stats != nil {
		stats = c.stats()
	}
	return embeds.BuildInfoEmbed(c.botInfo, stats)
}

func (c *InfoCommand) ExecuteText(s *discordgo.Session, m *discordgo.MessageCreate, args []string) error {
	_, err := s.ChannelMessageSendEmbed(m.ChannelID, c.embed())
	return err
}

func (c *InfoCommand) ExecuteSlash(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	return s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{c.embed()},
			Flags:  discordgo.MessageFlagsEphemeral,
		},
	})
}

func (c *InfoCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
	}
}
