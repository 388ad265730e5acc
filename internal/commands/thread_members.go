package commands

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"
)

// ThreadMemberCommand !invite / !kick（プライベートスレッド内のみ）
type ThreadMemberCommand struct {
	textOnly
	invite bool
}

func NewInviteCommand() *ThreadMemberCommand { return &ThreadMemberCommand{invite: true} }

func NewKickCommand() *ThreadMemberCommand { return &ThreadMemberCommand{invite: false} }

func (c *ThreadMemberCommand) Name() string {
	if c.invite {
		return "invite"
	}
	return "kick"
}

func (c *ThreadMemberCommand) Description() string {
	if c.invite {
		return "Invite a user to your private thread *(only works in threads)*"
	}
	return "Kick a user from your private thread *(only works in threads)*"
}

func (c *ThreadMemberCommand) Usage() []string {
	return []string{fmt.Sprintf("!%s @<user>", c.Name())}
}

func (c *ThreadMemberCommand) ExecuteText(s *discordgo.Session, m *discordgo.MessageCreate, args []string) error {
	if len(m.Mentions) == 0 {
		return nil
	}
	target := m.Mentions[0]

	ch, err := channel(s, m.ChannelID)
	if err != nil {
		return err
	}
	if !ch.IsThread() {
		return reply(s, m, "❌ This command can only be used inside a thread.")
	}

	if c.invite {
		if err := s.ThreadMemberAdd(m.ChannelID, target.ID); err != nil {
			log.Error().Err(err).Str("thread", m.ChannelID).Str("user", target.ID).Msg("Error inviting user")
			return reply(s, m, "❌ Failed to invite the user. Make sure I have the correct permissions.")
		}
		return reply(s, m, fmt.Sprintf("✅ Successfully invited %s to the thread.", target.Username))
	}

	if err := s.ThreadMemberRemove(m.ChannelID, target.ID); err != nil {
		log.Error().Err(err).Str("thread", m.ChannelID).Str("user", target.ID).Msg("Error kicking user")
		return reply(s, m, "❌ Failed to kick the user. Make sure I have the correct permissions.")
	}
	return reply(s, m, fmt.Sprintf("✅ Successfully kicked %s from the thread.", target.Username))
}

// channel State キャッシュを優先してチャンネルを取得
func channel(s *discordgo.Session, id string) (*discordgo.Channel, error) {
	if s.State != nil {
		if ch, err := s.State.Channel(id); err == nil {
			return ch, nil
		}
	}
	return s.Channel(id)
}
