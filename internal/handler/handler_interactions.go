package handler

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"

	"Streak_discord_bot/internal/embeds"
)

// OnInteractionCreate スラッシュコマンド・ボタンハンドラー
func (h *Handler) OnInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		h.handleSlashCommand(s, i)
	case discordgo.InteractionMessageComponent:
		h.handleMessageComponent(s, i)
	default:
		log.Debug().Int("type", int(i.Type)).Msg("Unknown interaction type")
	}
}

func (h *Handler) handleSlashCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	cmdName := i.ApplicationCommandData().Name

	cmd, exists := h.slash.Get(cmdName)
	if !exists {
		log.Warn().Str("command", cmdName).Msg("Unknown slash command")
		return
	}

	log.Debug().Str("command", cmdName).Str("guild", i.GuildID).Msg("Executing slash command")
	if err := cmd.ExecuteSlash(s, i); err != nil {
		log.Error().Err(err).Str("command", cmdName).Msg("Error executing slash command")
		s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseChannelMessageWithSource,
			Data: &discordgo.InteractionResponseData{
				Content: "An error occurred while executing the command.",
				Flags:   discordgo.MessageFlagsEphemeral,
			},
		})
	}
}

func (h *Handler) handleMessageComponent(s *discordgo.Session, i *discordgo.InteractionCreate) {
	customID := i.MessageComponentData().CustomID

	switch customID {
	case embeds.CreatePrivateThreadID:
		h.createPrivateThread(s, i)
	default:
		log.Warn().Str("custom_id", customID).Msg("Unknown message component")
	}
}

// createPrivateThread クイズチャンネルに本人専用のプライベートスレッドを作る
func (h *Handler) createPrivateThread(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Member == nil || i.Member.User == nil {
		return
	}
	user := i.Member.User

	if err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Flags: discordgo.MessageFlagsEphemeral},
	}); err != nil {
		log.Error().Err(err).Msg("Failed to defer thread interaction")
		return
	}

	content, err := h.openThread(s, i.GuildID, user)
	if err != nil {
		log.Error().Err(err).Str("user", user.ID).Msg("Error creating thread")
		content = "There was an error creating your private thread. Please try again later."
	}
	if _, err := s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{Content: &content}); err != nil {
		log.Error().Err(err).Msg("Failed to edit thread interaction")
	}
}

func (h *Handler) openThread(s *discordgo.Session, guildID string, user *discordgo.User) (string, error) {
	gs, ok := h.settings.GetGuildSettings(guildID)
	if !ok || gs.QuizChannel == "" {
		return "Quiz channel not found!", nil
	}

	thread, err := s.ThreadStartComplex(gs.QuizChannel, &discordgo.ThreadStart{
		Name:                "🏁 Private Quiz - " + user.Username,
		Type:                discordgo.ChannelTypeGuildPrivateThread,
		AutoArchiveDuration: 1440,
	}, discordgo.WithAuditLogReason("Private session for "+user.Username))
	if err != nil {
		return "", fmt.Errorf("start thread: %w", err)
	}
	if err := s.ThreadMemberAdd(thread.ID, user.ID); err != nil {
		return "", fmt.Errorf("add thread member: %w", err)
	}

	if gs.AdminChannel != "" {
		if _, err := s.ChannelMessageSend(gs.AdminChannel, embeds.ThreadAnnouncement(user.ID, guildID, thread.ID)); err != nil {
			log.Warn().Err(err).Str("channel", gs.AdminChannel).Msg("Failed to announce thread")
		}
	}
	if _, err := s.ChannelMessageSendEmbed(thread.ID, embeds.BuildThreadWelcomeEmbed()); err != nil {
		log.Warn().Err(err).Str("thread", thread.ID).Msg("Failed to send welcome embed")
	}

	log.Info().Str("thread", thread.ID).Str("user", user.Username).Msg("Private thread created")
	return fmt.Sprintf("Your private quiz thread has been created! [Join thread](%s)", embeds.ThreadURL(guildID, thread.ID)), nil
}
