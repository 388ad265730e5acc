package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "token")
	t.Setenv("DATA_DIR", "/tmp/streak")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "token", cfg.Token)
	assert.Equal(t, 10*time.Minute, cfg.BrowserMaxAge)
	assert.Equal(t, filepath.Join("/tmp/streak", "maps_data.json"), cfg.MapsFile)
	assert.Equal(t, filepath.Join("/tmp/streak", "lb_streak.json"), cfg.LeaderboardPath())
	assert.True(t, cfg.PreloadLocations)
}

func TestMapsResolveAliases(t *testing.T) {
	mc := NewMapsConfig(DefaultMaps)

	tests := []struct {
		input string
		want  string
		ok    bool
	}{
		{"abe", "A Balanced Europe", true},
		{"ABE", "A Balanced Europe", true},
		{"a balanced world", "A Balanced World", true},
		{"  africa ", "A Balanced Africa", true},
		{"mars", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := mc.Resolve(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMapsAddDeletePersist(t *testing.T) {
	path := filepath.Join(t.TempDir(), "maps_data.json")

	mc, err := LoadMaps(path)
	require.NoError(t, err)
	require.NoError(t, mc.Add("Urban World", MapEntry{Aliases: []string{"uw"}}))

	reloaded, err := LoadMaps(path)
	require.NoError(t, err)
	slug, ok := reloaded.Slug("Urban World")
	require.True(t, ok)
	assert.Equal(t, "urban-world", slug)

	name, err := reloaded.Delete("uw")
	require.NoError(t, err)
	assert.Equal(t, "Urban World", name)
	_, ok = reloaded.Resolve("uw")
	assert.False(t, ok)
}

func TestSettingsManagerRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server_config.json")

	sm, err := NewSettingsManager(path)
	require.NoError(t, err)
	_, ok := sm.GetGuildSettings("g1")
	assert.False(t, ok)

	want := GuildSettings{CreateQuizChannel: "c1", QuizChannel: "q1", AdminChannel: "a1"}
	require.NoError(t, sm.SetGuildSettings("g1", want))

	reloaded, err := NewSettingsManager(path)
	require.NoError(t, err)
	got, ok := reloaded.GetGuildSettings("g1")
	require.True(t, ok)
	assert.Equal(t, want, got)
	assert.True(t, got.Configured())
	assert.Equal(t, map[string]string{"g1": "q1"}, reloaded.QuizChannels())
}
