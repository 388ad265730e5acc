package commands

import (
	"github.com/bwmarrin/discordgo"

	"Streak_discord_bot/internal/embeds"
)

// HelpCommand レジストリの内容からヘルプを作る（プレイヤー用と管理者用で共用）
type HelpCommand struct {
	textOnly
	registry *Registry
	name     string
	title    string
	intro    string
}

func NewHelpCommand(registry *Registry) *HelpCommand {
	return &HelpCommand{
		registry: registry,
		name:     "help",
		title:    "Bot Commands",
		intro:    "Here are the available commands:",
	}
}

func NewAdminHelpCommand(registry *Registry) *HelpCommand {
	return &HelpCommand{
		registry: registry,
		name:     "help_admin",
		title:    "Administrator bot commands",
		intro:    "Here are all the available admin commands",
	}
}

func (c *HelpCommand) Name() string {
	return c.name
}

func (c *HelpCommand) Description() string {
	return "Show the help message"
}

func (c *HelpCommand) ExecuteText(s *discordgo.Session, m *discordgo.MessageCreate, args []string) error {
	_, err := s.ChannelMessageSendEmbed(m.ChannelID, c.buildHelpEmbed())
	return err
}

func (c *HelpCommand) buildHelpEmbed() *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       c.title,
		Description: c.intro,
		Color:       embeds.ColorBlue,
		Fields:      []*discordgo.MessageEmbedField{},
	}

	// コマンドを登録順に追加
	for _, cmd := range c.registry.All() {
		usages := []string{"!" + cmd.Name()}
		if u, ok := cmd.(Usager); ok {
			usages = u.Usage()
		}
		for _, usage := range usages {
			embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
				Name:  usage,
				Value: cmd.Description(),
			})
		}
	}
	return embed
}
