package handler

import (
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"

	"Streak_discord_bot/internal/commands"
	"Streak_discord_bot/internal/config"
)

type scope int

const (
	scopeNone scope = iota
	scopeAdmin
	scopePlayer
)

// routeScope 管理チャンネルが優先、次にクイズチャンネル本体かその配下のスレッド
func routeScope(gs config.GuildSettings, channelID string, parentID func() string) scope {
	switch {
	case gs.AdminChannel != "" && channelID == gs.AdminChannel:
		return scopeAdmin
	case gs.QuizChannel == "":
		return scopeNone
	case channelID == gs.QuizChannel:
		return scopePlayer
	case parentID() == gs.QuizChannel:
		return scopePlayer
	}
	return scopeNone
}

// parseCommand "!Play abe" → ("play", ["abe"])
func parseCommand(prefix, content string) (string, []string, bool) {
	if !strings.HasPrefix(content, prefix) {
		return "", nil, false
	}
	parts := strings.Fields(strings.TrimPrefix(content, prefix))
	if len(parts) == 0 {
		return "", nil, false
	}
	return strings.ToLower(parts[0]), parts[1:], true
}

func (h *Handler) OnMessage(s *discordgo.Session, m *discordgo.MessageCreate) {
	// Botメッセージと DM は無視
	if m.Author == nil || m.Author.Bot || m.GuildID == "" {
		return
	}

	cmdName, args, ok := parseCommand(h.prefix, m.Content)
	if !ok {
		return
	}

	gs, ok := h.settings.GetGuildSettings(m.GuildID)
	if !ok {
		return
	}

	var registry *commands.Registry
	switch routeScope(gs, m.ChannelID, func() string { return parentOf(s, m.ChannelID) }) {
	case scopeAdmin:
		registry = h.admins
	case scopePlayer:
		registry = h.players
	default:
		return
	}

	cmd, exists := registry.Get(cmdName)
	if !exists {
		log.Debug().Str("command", cmdName).Str("channel", m.ChannelID).Msg("Command not found in registry")
		return
	}

	log.Debug().Str("command", cmdName).Strs("args", args).Str("user", m.Author.Username).Msg("Executing text command")
	if err := cmd.ExecuteText(s, m, args); err != nil {
		log.Error().Err(err).Str("command", cmdName).Msg("Error executing command")
		s.ChannelMessageSend(m.ChannelID, "An error occurred while executing the command.")
	}
}

// parentOf スレッドなら親チャンネル ID、それ以外は空文字
func parentOf(s *discordgo.Session, channelID string) string {
	var ch *discordgo.Channel
	if s.State != nil {
		ch, _ = s.State.Channel(channelID)
	}
	if ch == nil {
		var err error
		if ch, err = s.Channel(channelID); err != nil {
			log.Warn().Err(err).Str("channel", channelID).Msg("Failed to fetch channel")
			return ""
		}
	}
	if !ch.IsThread() {
		return ""
	}
	return ch.ParentID
}
