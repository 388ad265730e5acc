package handler

import (
	"strconv"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Streak_discord_bot/internal/config"
)

func TestRouteScope(t *testing.T) {
	gs := config.GuildSettings{CreateQuizChannel: "offer", QuizChannel: "quiz", AdminChannel: "admin"}
	parent := func(id string) func() string { return func() string { return id } }

	tests := []struct {
		name     string
		settings config.GuildSettings
		channel  string
		parent   string
		want     scope
	}{
		{"admin channel", gs, "admin", "", scopeAdmin},
		{"quiz channel", gs, "quiz", "", scopePlayer},
		{"thread under quiz", gs, "thread-1", "quiz", scopePlayer},
		{"thread elsewhere", gs, "thread-2", "general", scopeNone},
		{"offer channel", gs, "offer", "", scopeNone},
		{"unconfigured quiz", config.GuildSettings{AdminChannel: "admin"}, "quiz", "", scopeNone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, routeScope(tt.settings, tt.channel, parent(tt.parent)))
		})
	}
}

func TestRouteScopeSkipsParentLookupForKnownChannels(t *testing.T) {
	gs := config.GuildSettings{QuizChannel: "quiz", AdminChannel: "admin"}
	lookup := func() string {
		t.Fatal("parent lookup should not run")
		return ""
	}
	assert.Equal(t, scopeAdmin, routeScope(gs, "admin", lookup))
	assert.Equal(t, scopePlayer, routeScope(gs, "quiz", lookup))
}

func TestParseCommand(t *testing.T) {
	name, args, ok := parseCommand("!", "!PLAY  A Balanced Europe")
	require.True(t, ok)
	assert.Equal(t, "play", name)
	assert.Equal(t, []string{"A", "Balanced", "Europe"}, args)

	_, _, ok = parseCommand("!", "hello")
	assert.False(t, ok)
	_, _, ok = parseCommand("!", "!   ")
	assert.False(t, ok)
}

func TestCommandsAreEqual(t *testing.T) {
	perm := int64(discordgo.PermissionManageChannels)
	base := func() *discordgo.ApplicationCommand {
		return &discordgo.ApplicationCommand{
			Name:                     "setup",
			Description:              "Configure channels",
			DefaultMemberPermissions: &perm,
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionChannel, Name: "b", Description: "B", ChannelTypes: []discordgo.ChannelType{discordgo.ChannelTypeGuildText}},
				{Type: discordgo.ApplicationCommandOptionString, Name: "a", Description: "A", Required: true},
			},
		}
	}

	reordered := base()
	reordered.Options[0], reordered.Options[1] = reordered.Options[1], reordered.Options[0]
	assert.True(t, commandsAreEqual(base(), reordered))

	described := base()
	described.Description = "changed"
	assert.False(t, commandsAreEqual(base(), described))

	noPerm := base()
	noPerm.DefaultMemberPermissions = nil
	assert.False(t, commandsAreEqual(base(), noPerm))

	channelTypes := base()
	channelTypes.Options[0].ChannelTypes = []discordgo.ChannelType{discordgo.ChannelTypeGuildVoice}
	assert.False(t, commandsAreEqual(base(), channelTypes))
}

func TestPermissionsEqual(t *testing.T) {
	a, b, c := int64(16), int64(16), int64(8)

	assert.True(t, permissionsEqual(nil, nil))
	assert.False(t, permissionsEqual(nil, &a))
	assert.False(t, permissionsEqual(&a, nil))
	assert.True(t, permissionsEqual(&a, &b), "same value behind different pointers")
	assert.False(t, permissionsEqual(&a, &c))
}

func TestSortedChannelTypes(t *testing.T) {
	assert.Nil(t, sortedChannelTypes(nil))
	assert.Nil(t, sortedChannelTypes([]discordgo.ChannelType{}))

	in := []discordgo.ChannelType{discordgo.ChannelTypeGuildVoice, discordgo.ChannelTypeGuildText, discordgo.ChannelTypeGuildCategory}
	got := sortedChannelTypes(in)
	assert.Equal(t, []discordgo.ChannelType{discordgo.ChannelTypeGuildText, discordgo.ChannelTypeGuildVoice, discordgo.ChannelTypeGuildCategory}, got)
	// 入力はそのまま
	assert.Equal(t, discordgo.ChannelTypeGuildVoice, in[0])

	// Discord が返す順序が違っても同じコマンドとみなす
	x := &discordgo.ApplicationCommandOption{Type: discordgo.ApplicationCommandOptionChannel, Name: "c", ChannelTypes: in}
	y := &discordgo.ApplicationCommandOption{Type: discordgo.ApplicationCommandOptionChannel, Name: "c", ChannelTypes: got}
	assert.True(t, optionsAreEqual(x, y))
}

// snowflakeAt t に作られたことになる ID
func snowflakeAt(t time.Time) string {
	ms := t.UnixMilli() - 1420070400000
	return strconv.FormatInt(ms<<22, 10)
}

func TestInactive(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		thread *discordgo.Channel
		want   bool
	}{
		{"recent message", &discordgo.Channel{ID: snowflakeAt(now.Add(-72 * time.Hour)), LastMessageID: snowflakeAt(now.Add(-time.Hour))}, false},
		{"old message", &discordgo.Channel{ID: snowflakeAt(now.Add(-72 * time.Hour)), LastMessageID: snowflakeAt(now.Add(-25 * time.Hour))}, true},
		{"exactly 24h", &discordgo.Channel{ID: snowflakeAt(now.Add(-48 * time.Hour)), LastMessageID: snowflakeAt(now.Add(-24 * time.Hour))}, true},
		{"no message, new thread", &discordgo.Channel{ID: snowflakeAt(now.Add(-2 * time.Hour))}, false},
		{"no message, old thread", &discordgo.Channel{ID: snowflakeAt(now.Add(-30 * time.Hour))}, true},
		{"bad id", &discordgo.Channel{ID: "not-a-snowflake"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, inactive(tt.thread, now, threadMaxIdle))
		})
	}
}

type fakeThreads struct {
	active   []*discordgo.Channel
	public   []*discordgo.Channel
	private  []*discordgo.Channel
	deleted  []string
	failIDs  map[string]bool
	activeOf []string
}

func (f *fakeThreads) GuildThreadsActive(guildID string, _ ...discordgo.RequestOption) (*discordgo.ThreadsList, error) {
	f.activeOf = append(f.activeOf, guildID)
	return &discordgo.ThreadsList{Threads: f.active}, nil
}

func (f *fakeThreads) ThreadsArchived(channelID string, _ *time.Time, _ int, _ ...discordgo.RequestOption) (*discordgo.ThreadsList, error) {
	return &discordgo.ThreadsList{Threads: f.public}, nil
}

func (f *fakeThreads) ThreadsPrivateArchived(channelID string, _ *time.Time, _ int, _ ...discordgo.RequestOption) (*discordgo.ThreadsList, error) {
	return &discordgo.ThreadsList{Threads: f.private}, nil
}

func (f *fakeThreads) ChannelDelete(channelID string, _ ...discordgo.RequestOption) (*discordgo.Channel, error) {
	if f.failIDs[channelID] {
		return nil, assert.AnError
	}
	f.deleted = append(f.deleted, channelID)
	return &discordgo.Channel{ID: channelID}, nil
}

func TestThreadJanitorSweep(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	stale := func(id string, age time.Duration, parent string) *discordgo.Channel {
		return &discordgo.Channel{ID: id, LastMessageID: snowflakeAt(now.Add(-age)), ParentID: parent}
	}
	// ID は作成時刻に使われるので十分古くしておく
	idAt := func(h int) string { return snowflakeAt(now.Add(-time.Duration(100+h) * time.Hour)) }

	staleActive := stale(idAt(1), 30*time.Hour, "quiz")
	freshActive := stale(idAt(2), time.Hour, "quiz")
	otherParent := stale(idAt(3), 30*time.Hour, "general")
	stalePrivate := stale(idAt(4), 40*time.Hour, "quiz")
	failing := stale(idAt(5), 50*time.Hour, "quiz")

	api := &fakeThreads{
		active:  []*discordgo.Channel{staleActive, freshActive, otherParent},
		public:  []*discordgo.Channel{staleActive},
		private: []*discordgo.Channel{stalePrivate, failing},
		failIDs: map[string]bool{failing.ID: true},
	}
	j := NewThreadJanitor(api, func() map[string]string { return map[string]string{"guild": "quiz"} })
	j.now = func() time.Time { return now }

	assert.Equal(t, 2, j.Sweep())
	assert.ElementsMatch(t, []string{staleActive.ID, stalePrivate.ID}, api.deleted)
	assert.Equal(t, []string{"guild"}, api.activeOf)
}
