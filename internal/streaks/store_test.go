package streaks

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	dir := t.TempDir()
	s, err := Open(filepath.Join(dir, "pb_streak.json"), filepath.Join(dir, "lb_streak.json"))
	require.NoError(t, err)
	s.now = func() time.Time { return time.UnixMilli(1700000000000) }
	return s, dir
}

func TestLeaderboardOrdering(t *testing.T) {
	s, _ := newTestStore(t)

	require.NoError(t, s.RecordResult("a", "alice", "World", 5, 3000))
	require.NoError(t, s.RecordResult("b", "bob", "World", 5, 2000))
	require.NoError(t, s.RecordResult("c", "carol", "World", 6, 9000))

	lb := s.Leaderboard("World")
	require.Len(t, lb, 3)
	assert.Equal(t, "c", lb[0].UserID)
	assert.Equal(t, "b", lb[1].UserID)
	assert.Equal(t, "a", lb[2].UserID)

	assert.Equal(t, 1, s.Rank("World", "c"))
	assert.Equal(t, 3, s.Rank("World", "a"))
	assert.Equal(t, 0, s.Rank("World", "nobody"))
	assert.Equal(t, 0, s.Rank("Europe", "a"))
}

func TestOnlyIfBetter(t *testing.T) {
	s, _ := newTestStore(t)

	require.NoError(t, s.RecordResult("a", "alice", "World", 4, 5000))
	require.NoError(t, s.RecordResult("a", "alice2", "World", 4, 1000))
	require.NoError(t, s.RecordResult("a", "alice3", "World", 2, 100))

	pb, ok := s.PersonalBest("a", "World")
	require.True(t, ok)
	assert.Equal(t, 4, pb.Streak)
	assert.Equal(t, 5000.0, pb.AverageTime)
	assert.Equal(t, "alice", pb.Username)

	lb := s.Leaderboard("World")
	require.Len(t, lb, 1)
	assert.Equal(t, 5000.0, lb[0].AverageTime)

	require.NoError(t, s.RecordResult("a", "alice", "World", 5, 7000))
	pb, _ = s.PersonalBest("a", "World")
	assert.Equal(t, 5, pb.Streak)
	assert.Equal(t, 5, s.Leaderboard("World")[0].Streak)
}

func TestPersistsAndReloads(t *testing.T) {
	s, dir := newTestStore(t)
	require.NoError(t, s.RecordResult("a", "alice", "World", 3, 4000))
	require.NoError(t, s.RecordResult("a", "alice", "Europe", 1, 1500))

	raw, err := os.ReadFile(filepath.Join(dir, "pb_streak.json"))
	require.NoError(t, err)
	var doc map[string]map[string]map[string]any
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.Equal(t, 3.0, doc["a"]["World"]["streak"])
	assert.Equal(t, 4000.0, doc["a"]["World"]["averageTime"])
	assert.Equal(t, 1700000000000.0, doc["a"]["World"]["lastUpdate"])
	assert.Equal(t, "alice", doc["a"]["World"]["username"])

	reopened, err := Open(filepath.Join(dir, "pb_streak.json"), filepath.Join(dir, "lb_streak.json"))
	require.NoError(t, err)
	assert.Len(t, reopened.PersonalBests("a"), 2)
	assert.Equal(t, "alice", reopened.Leaderboard("Europe")[0].Username)
}

func TestFindUserByName(t *testing.T) {
	s, _ := newTestStore(t)
	require.NoError(t, s.RecordResult("42", "GeoWizard", "World", 1, 1000))

	id, name, ok := s.FindUserByName("geowizard")
	require.True(t, ok)
	assert.Equal(t, "42", id)
	assert.Equal(t, "GeoWizard", name)

	_, _, ok = s.FindUserByName("nobody")
	assert.False(t, ok)
}

func TestLeaderboardIsCopy(t *testing.T) {
	s, _ := newTestStore(t)
	require.NoError(t, s.RecordResult("a", "alice", "World", 1, 1000))

	lb := s.Leaderboard("World")
	lb[0].Streak = 99
	assert.Equal(t, 1, s.Leaderboard("World")[0].Streak)
}
