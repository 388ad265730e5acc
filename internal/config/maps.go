package config

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"Streak_discord_bot/internal/storage"
)

// MapEntry マップ1件分の設定
type MapEntry struct {
	Slug         string   `json:"slug"`                   // WorldGuessr API のスラッグ
	Aliases      []string `json:"aliases"`                // 短縮名など
	Distribution string   `json:"distribution,omitempty"` // assets 内の分布画像ファイル名
}

// DefaultMaps maps_data.json が存在しない場合の初期値
var DefaultMaps = map[string]MapEntry{
	"A Balanced World": {
		Slug:         "a-balanced-world",
		Aliases:      []string{"abw", "world"},
		Distribution: "abw.png",
	},
	"A Balanced Europe": {
		Slug:         "a-balanced-europe",
		Aliases:      []string{"abe", "europe"},
		Distribution: "abe.png",
	},
	"A Balanced Africa": {
		Slug:         "a-balanced-africa",
		Aliases:      []string{"abaf", "africa"},
		Distribution: "abaf.png",
	},
}

// MapsConfig 遊べるマップの一覧とエイリアス解決
type MapsConfig struct {
	mu       sync.RWMutex
	maps     map[string]MapEntry
	aliases  map[string]string
	filePath string
}

// LoadMaps maps_data.json を読み込む（無ければ DefaultMaps で作成）
func LoadMaps(path string) (*MapsConfig, error) {
	mc := &MapsConfig{filePath: path, maps: make(map[string]MapEntry)}

	found, err := storage.LoadJSON(path, &mc.maps)
	if err != nil {
		return nil, err
	}
	if !found {
		for name, entry := range DefaultMaps {
			mc.maps[name] = entry
		}
		if err := storage.SaveJSON(path, mc.maps); err != nil {
			return nil, err
		}
	}
	mc.refresh()
	return mc, nil
}

// NewMapsConfig ファイルに保存しないメモリ上のマップ設定（テスト用）
func NewMapsConfig(maps map[string]MapEntry) *MapsConfig {
	mc := &MapsConfig{maps: make(map[string]MapEntry, len(maps))}
	for name, entry := range maps {
		mc.maps[name] = entry
	}
	mc.refresh()
	return mc
}

// refresh エイリアス表を作り直す（ロック保持中に呼ぶ）
func (mc *MapsConfig) refresh() {
	mc.aliases = make(map[string]string)
	for name, entry := range mc.maps {
		mc.aliases[strings.ToLower(name)] = name
		for _, alias := range entry.Aliases {
			alias = strings.ToLower(strings.TrimSpace(alias))
			if alias != "" {
				mc.aliases[alias] = name
			}
		}
	}
}

// Resolve 入力（正式名・エイリアス、大文字小文字不問）を正式なマップ名にする
func (mc *MapsConfig) Resolve(input string) (string, bool) {
	mc.mu.RLock()
	defer mc.mu.RUnlock()

	name, ok := mc.aliases[strings.ToLower(strings.TrimSpace(input))]
	return name, ok
}

// Slug マップ名からスラッグを取得
func (mc *MapsConfig) Slug(mapName string) (string, bool) {
	mc.mu.RLock()
	defer mc.mu.RUnlock()

	entry, ok := mc.maps[mapName]
	if !ok || entry.Slug == "" {
		return "", false
	}
	return entry.Slug, true
}

// Names 正式なマップ名をソートして返す
func (mc *MapsConfig) Names() []string {
	mc.mu.RLock()
	defer mc.mu.RUnlock()

	names := make([]string, 0, len(mc.maps))
	for name := range mc.maps {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Distribution 分布画像のファイル名
func (mc *MapsConfig) Distribution(input string) (string, string, bool) {
	name, ok := mc.Resolve(input)
	if !ok {
		return "", "", false
	}

	mc.mu.RLock()
	defer mc.mu.RUnlock()
	file := mc.maps[name].Distribution
	return name, file, file != ""
}

// Add マップを追加（既存なら上書き）して保存
func (mc *MapsConfig) Add(name string, entry MapEntry) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("map name is empty")
	}
	if entry.Slug == "" {
		entry.Slug = Slugify(name)
	}

	mc.mu.Lock()
	defer mc.mu.Unlock()
	mc.maps[name] = entry
	mc.refresh()
	return mc.saveLocked()
}

// Delete マップを削除して保存、削除した正式名を返す
func (mc *MapsConfig) Delete(input string) (string, error) {
	name, ok := mc.Resolve(input)
	if !ok {
		return "", fmt.Errorf("no map named %q", input)
	}

	mc.mu.Lock()
	defer mc.mu.Unlock()
	delete(mc.maps, name)
	mc.refresh()
	return name, mc.saveLocked()
}

func (mc *MapsConfig) saveLocked() error {
	if mc.filePath == "" {
		return nil
	}
	return storage.SaveJSON(mc.filePath, mc.maps)
}

// Slugify "A Balanced World" → "a-balanced-world"
func Slugify(name string) string {
	fields := strings.Fields(strings.ToLower(name))
	return strings.Join(fields, "-")
}
