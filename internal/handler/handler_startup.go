package handler

import (
	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"
)

func (h *Handler) OnReady(s *discordgo.Session, event *discordgo.Ready) {
	log.Info().
		Str("user", event.User.Username).
		Int("guilds", len(event.Guilds)).
		Msg("Bot is ready")

	// スラッシュコマンドを同期
	if err := h.SyncSlashCommands(s); err != nil {
		log.Error().Err(err).Msg("Error syncing slash commands")
	}

	// 再接続のたびに Ready が届くので掃除ループは一度だけ起動する
	h.janitorOnce.Do(func() {
		janitor := NewThreadJanitor(s, h.settings.QuizChannels)
		go janitor.Run(h.ctx)
	})
}
