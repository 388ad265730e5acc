package commands

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"

	"Streak_discord_bot/internal/config"
	"Streak_discord_bot/internal/embeds"
)

var manageChannelsPermission int64 = discordgo.PermissionManageChannels

// SetupCommand /setup でクイズ用の3チャンネルを登録する
type SetupCommand struct {
	slashOnly
	settings *config.SettingsManager
}

// NewSetupCommand 設定コマンドを作成
func NewSetupCommand(settings *config.SettingsManager) *SetupCommand {
	return &SetupCommand{settings: settings}
}

func (c *SetupCommand) Name() string { return "setup" }
func (c *SetupCommand) Description() string {
	return "Configure which channels StreakBot uses"
}

func (c *SetupCommand) SlashDefinition() *discordgo.ApplicationCommand {
	textChannel := []discordgo.ChannelType{discordgo.ChannelTypeGuildText}
	return &discordgo.ApplicationCommand{
		Name:                     c.Name(),
		Description:              c.Description(),
		DefaultMemberPermissions: &manageChannelsPermission,
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:         discordgo.ApplicationCommandOptionChannel,
				Name:         "create_quiz_channel",
				Description:  "Channel where the private thread button is posted",
				ChannelTypes: textChannel,
				Required:     true,
			},
			{
				Type:         discordgo.ApplicationCommandOptionChannel,
				Name:         "quiz_channel",
				Description:  "Main quiz channel",
				ChannelTypes: textChannel,
				Required:     true,
			},
			{
				Type:         discordgo.ApplicationCommandOptionChannel,
				Name:         "admin_channel",
				Description:  "Channel for admin commands",
				ChannelTypes: textChannel,
				Required:     true,
			},
		},
	}
}

// ExecuteSlash スラッシュコマンド実行
func (c *SetupCommand) ExecuteSlash(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	if i.GuildID == "" {
		return respondEphemeral(s, i, "❌ This command can only be used in a server.")
	}
	opts := optionMap(i)
	gs := config.GuildSettings{}
	for name, target := range map[string]*string{
		"create_quiz_channel": &gs.CreateQuizChannel,
		"quiz_channel":        &gs.QuizChannel,
		"admin_channel":       &gs.AdminChannel,
	} {
		opt, ok := opts[name]
		if !ok {
			return respondEphemeral(s, i, fmt.Sprintf("❌ Missing option `%s`.", name))
		}
		*target = opt.ChannelValue(s).ID
	}

	if err := c.settings.SetGuildSettings(i.GuildID, gs); err != nil {
		return err
	}
	log.Info().Str("guild", i.GuildID).Str("quiz", gs.QuizChannel).Msg("Guild configured")
	return respondEphemeral(s, i, "Finished setting up StreakBot!")
}

// CreateChannelsCommand /create_channels でカテゴリと3チャンネルを作成する
type CreateChannelsCommand struct {
	slashOnly
	settings *config.SettingsManager
}

func NewCreateChannelsCommand(settings *config.SettingsManager) *CreateChannelsCommand {
	return &CreateChannelsCommand{settings: settings}
}

func (c *CreateChannelsCommand) Name() string { return "create_channels" }
func (c *CreateChannelsCommand) Description() string {
	return "Create the StreakBot category and its channels"
}

func (c *CreateChannelsCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:                     c.Name(),
		Description:              c.Description(),
		DefaultMemberPermissions: &manageChannelsPermission,
	}
}

func (c *CreateChannelsCommand) ExecuteSlash(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	if i.GuildID == "" {
		return respondEphemeral(s, i, "❌ This command can only be used in a server.")
	}

	category, err := s.GuildChannelCreateComplex(i.GuildID, discordgo.GuildChannelCreateData{
		Name: "StreakBot",
		Type: discordgo.ChannelTypeGuildCategory,
	})
	if err != nil {
		return fmt.Errorf("create category: %w", err)
	}

	ids := make([]string, 0, 3)
	for _, name := range []string{"create-quiz", "streakbot", "bot-admin"} {
		ch, err := s.GuildChannelCreateComplex(i.GuildID, discordgo.GuildChannelCreateData{
			Name:     name,
			Type:     discordgo.ChannelTypeGuildText,
			ParentID: category.ID,
		})
		if err != nil {
			return fmt.Errorf("create channel %s: %w", name, err)
		}
		ids = append(ids, ch.ID)
	}

	// 作成したチャンネルをそのまま登録しておく
	gs := config.GuildSettings{CreateQuizChannel: ids[0], QuizChannel: ids[1], AdminChannel: ids[2]}
	if err := c.settings.SetGuildSettings(i.GuildID, gs); err != nil {
		return err
	}
	return respondEphemeral(s, i, fmt.Sprintf("Finished setting up channels! Quiz channel: <#%s>", gs.QuizChannel))
}

// PrivateMsgCommand !private_msg プライベートスレッド作成ボタンを投稿する
type PrivateMsgCommand struct {
	textOnly
	settings *config.SettingsManager
}

func NewPrivateMsgCommand(settings *config.SettingsManager) *PrivateMsgCommand {
	return &PrivateMsgCommand{settings: settings}
}

func (c *PrivateMsgCommand) Name() string { return "private_msg" }
func (c *PrivateMsgCommand) Description() string {
	return "Create an announcement message to create private quizzes"
}

func (c *PrivateMsgCommand) ExecuteText(s *discordgo.Session, m *discordgo.MessageCreate, args []string) error {
	gs, ok := c.settings.GetGuildSettings(m.GuildID)
	if !ok || gs.CreateQuizChannel == "" {
		return reply(s, m, "❌ Run `/setup` first.")
	}
	if _, err := s.ChannelMessageSendComplex(gs.CreateQuizChannel, embeds.BuildPrivateOfferMessage()); err != nil {
		return fmt.Errorf("send private offer: %w", err)
	}
	return reply(s, m, "Private thread creation message sent to the quiz channel!")
}
