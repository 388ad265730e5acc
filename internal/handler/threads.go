package handler

import (
	"context"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"
)

const (
	threadMaxIdle       = 24 * time.Hour
	threadSweepInterval = 6 * time.Hour
)

// threadAPI ThreadJanitor が使う discordgo.Session のメソッド
type threadAPI interface {
	GuildThreadsActive(guildID string, options ...discordgo.RequestOption) (*discordgo.ThreadsList, error)
	ThreadsArchived(channelID string, before *time.Time, limit int, options ...discordgo.RequestOption) (*discordgo.ThreadsList, error)
	ThreadsPrivateArchived(channelID string, before *time.Time, limit int, options ...discordgo.RequestOption) (*discordgo.ThreadsList, error)
	ChannelDelete(channelID string, options ...discordgo.RequestOption) (*discordgo.Channel, error)
}

// ThreadJanitor クイズチャンネル配下で 24 時間以上動きのないスレッドを削除する
type ThreadJanitor struct {
	api      threadAPI
	channels func() map[string]string // guildID → quiz channel
	maxIdle  time.Duration
	interval time.Duration
	now      func() time.Time
}

func NewThreadJanitor(api threadAPI, channels func() map[string]string) *ThreadJanitor {
	return &ThreadJanitor{
		api:      api,
		channels: channels,
		maxIdle:  threadMaxIdle,
		interval: threadSweepInterval,
		now:      time.Now,
	}
}

// Run 起動直後に一度掃除し、その後は interval ごとに繰り返す
func (j *ThreadJanitor) Run(ctx context.Context) {
	j.Sweep()

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			j.Sweep()
		}
	}
}

// Sweep 削除したスレッド数を返す
func (j *ThreadJanitor) Sweep() int {
	now := j.now()
	deleted := 0
	for guildID, quizID := range j.channels() {
		for _, thread := range j.threadsOf(guildID, quizID) {
			if !inactive(thread, now, j.maxIdle) {
				continue
			}
			if _, err := j.api.ChannelDelete(thread.ID, discordgo.WithAuditLogReason("Thread inactive for over 24h")); err != nil {
				log.Warn().Err(err).Str("thread", thread.ID).Msg("Failed to delete inactive thread")
				continue
			}
			log.Info().Str("thread", thread.Name).Str("guild", guildID).Msg("Deleted inactive thread")
			deleted++
		}
	}
	return deleted
}

// threadsOf アクティブ・公開アーカイブ・非公開アーカイブを重複なく集める
func (j *ThreadJanitor) threadsOf(guildID, quizID string) []*discordgo.Channel {
	seen := make(map[string]bool)
	var out []*discordgo.Channel
	add := func(list *discordgo.ThreadsList, err error) {
		if err != nil {
			log.Warn().Err(err).Str("guild", guildID).Str("channel", quizID).Msg("Failed to list threads")
			return
		}
		if list == nil {
			return
		}
		for _, t := range list.Threads {
			if t.ParentID != quizID || seen[t.ID] {
				continue
			}
			seen[t.ID] = true
			out = append(out, t)
		}
	}

	add(j.api.GuildThreadsActive(guildID))
	add(j.api.ThreadsArchived(quizID, nil, 0))
	add(j.api.ThreadsPrivateArchived(quizID, nil, 0))
	return out
}

// inactive 最後のメッセージ（無ければ作成時刻）から maxIdle 以上経過しているか
func inactive(thread *discordgo.Channel, now time.Time, maxIdle time.Duration) bool {
	id := thread.LastMessageID
	if id == "" {
		id = thread.ID
	}
	last, err := discordgo.SnowflakeTimestamp(id)
	if err != nil {
		return false
	}
	return now.Sub(last) >= maxIdle
}
