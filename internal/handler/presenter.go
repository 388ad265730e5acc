package handler

import (
	"bytes"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"

	"Streak_discord_bot/internal/embeds"
	"Streak_discord_bot/internal/quiz"
)

// Presenter quiz.Presenter の Discord 実装
type Presenter struct {
	s *discordgo.Session
}

func NewPresenter(s *discordgo.Session) *Presenter {
	return &Presenter{s: s}
}

var _ quiz.Presenter = (*Presenter)(nil)

// Loading 読み込み中の embed を出し、消す関数を返す
func (p *Presenter) Loading(channelID, mapName string) func() {
	msg, err := p.s.ChannelMessageSendEmbed(channelID, embeds.BuildLoadingEmbed())
	if err != nil {
		log.Warn().Err(err).Str("channel", channelID).Msg("Failed to send loading embed")
		return func() {}
	}
	return func() {
		if err := p.s.ChannelMessageDelete(channelID, msg.ID); err != nil {
			log.Debug().Err(err).Str("channel", channelID).Msg("Failed to delete loading embed")
		}
	}
}

func (p *Presenter) LocationEvicted(channelID, mapName string) {
	msg := fmt.Sprintf("Skipped a location on %s that isn't in any country. Picking another one...", mapName)
	if _, err := p.s.ChannelMessageSend(channelID, msg); err != nil {
		log.Warn().Err(err).Str("channel", channelID).Msg("Failed to send eviction notice")
	}
}

func (p *Presenter) RoundStarted(channelID string, round quiz.Round, image []byte) error {
	_, err := p.s.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{embeds.BuildRoundEmbed(round)},
		Files: []*discordgo.File{{
			Name:        embeds.QuizImageName,
			ContentType: "image/jpeg",
			Reader:      bytes.NewReader(image),
		}},
	})
	return err
}

func (p *Presenter) RoundFailed(channelID string, err error) {
	if _, sendErr := p.s.ChannelMessageSend(channelID, quiz.UserMessage(err)); sendErr != nil {
		log.Warn().Err(sendErr).Str("channel", channelID).Msg("Failed to report round failure")
	}
}
