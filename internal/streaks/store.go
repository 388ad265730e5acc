// Package streaks は自己ベストとマップ別ランキングを保持する
package streaks

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"Streak_discord_bot/internal/storage"
)

// PersonalBest ユーザー×マップごとの自己ベスト
type PersonalBest struct {
	Streak      int     `json:"streak"`
	AverageTime float64 `json:"averageTime"` // ms
	LastUpdate  int64   `json:"lastUpdate"`  // unix ms
	Username    string  `json:"username"`
}

// Entry ランキングの1行
type Entry struct {
	UserID      string  `json:"userId"`
	Username    string  `json:"username"`
	Streak      int     `json:"streak"`
	AverageTime float64 `json:"averageTime"`
	LastUpdate  int64   `json:"lastUpdate"`
}

// Store pb_streak.json と lb_streak.json を管理する
type Store struct {
	mu     sync.RWMutex
	pbPath string
	lbPath string
	pb     map[string]map[string]PersonalBest // userID → map → record
	lb     map[string][]Entry                 // map → sorted entries
	now    func() time.Time
}

// Open 保存済みの記録を読み込む（ファイルが無ければ空）
func Open(pbPath, lbPath string) (*Store, error) {
	s := &Store{
		pbPath: pbPath,
		lbPath: lbPath,
		pb:     make(map[string]map[string]PersonalBest),
		lb:     make(map[string][]Entry),
		now:    time.Now,
	}
	if _, err := storage.LoadJSON(pbPath, &s.pb); err != nil {
		return nil, fmt.Errorf("load personal bests: %w", err)
	}
	if _, err := storage.LoadJSON(lbPath, &s.lb); err != nil {
		return nil, fmt.Errorf("load leaderboards: %w", err)
	}
	for m := range s.lb {
		sortEntries(s.lb[m])
	}
	return s, nil
}

// RecordResult 連続正解の結果を反映する。
// 既存の記録より連続数が真に大きいとき（または記録が無いとき）だけ上書きし、
// 変更があれば両ファイルを即座に保存する。
func (s *Store) RecordResult(userID, username, mapName string, streak int, avgMs float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UnixMilli()
	changedPB := false
	changedLB := false

	user := s.pb[userID]
	if user == nil {
		user = make(map[string]PersonalBest)
		s.pb[userID] = user
	}
	if cur, ok := user[mapName]; !ok || streak > cur.Streak {
		user[mapName] = PersonalBest{Streak: streak, AverageTime: avgMs, LastUpdate: now, Username: username}
		changedPB = true
	}

	entries := s.lb[mapName]
	entry := Entry{UserID: userID, Username: username, Streak: streak, AverageTime: avgMs, LastUpdate: now}
	idx := indexOf(entries, userID)
	switch {
	case idx < 0:
		entries = append(entries, entry)
		changedLB = true
	case streak > entries[idx].Streak:
		entries[idx] = entry
		changedLB = true
	}
	if changedLB {
		sortEntries(entries)
		s.lb[mapName] = entries
	}

	if changedPB {
		if err := storage.SaveJSON(s.pbPath, s.pb); err != nil {
			return fmt.Errorf("save personal bests: %w", err)
		}
	}
	if changedLB {
		if err := storage.SaveJSON(s.lbPath, s.lb); err != nil {
			return fmt.Errorf("save leaderboards: %w", err)
		}
	}
	return nil
}

// PersonalBest 自己ベストを1件取得
func (s *Store) PersonalBest(userID, mapName string) (PersonalBest, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	pb, ok := s.pb[userID][mapName]
	return pb, ok
}

// PersonalBests ユーザーの全マップの自己ベスト（コピー）
func (s *Store) PersonalBests(userID string) map[string]PersonalBest {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]PersonalBest, len(s.pb[userID]))
	for m, pb := range s.pb[userID] {
		out[m] = pb
	}
	return out
}

// Leaderboard マップのランキング（並び替え済みのコピー）
func (s *Store) Leaderboard(mapName string) []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Entry, len(s.lb[mapName]))
	copy(out, s.lb[mapName])
	return out
}

// Rank 1始まりの順位。ランキングに居なければ 0
func (s *Store) Rank(mapName, userID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return indexOf(s.lb[mapName], userID) + 1
}

// FindUserByName 記録に残っているユーザー名（大文字小文字無視）から ID を探す
func (s *Store) FindUserByName(name string) (userID, username string, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.pb))
	for id := range s.pb {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		for _, pb := range s.pb[id] {
			if pb.Username != "" && strings.EqualFold(pb.Username, name) {
				return id, pb.Username, true
			}
		}
	}
	return "", "", false
}

func indexOf(entries []Entry, userID string) int {
	for i := range entries {
		if entries[i].UserID == userID {
			return i
		}
	}
	return -1
}

func sortEntries(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Streak != entries[j].Streak {
			return entries[i].Streak > entries[j].Streak
		}
		return entries[i].AverageTime < entries[j].AverageTime
	})
}
