package config

import (
	"sync"

	"Streak_discord_bot/internal/storage"
)

// GuildSettings サーバーごとのチャンネル設定（/setup で登録）
type GuildSettings struct {
	CreateQuizChannel string `json:"createQuizId"` // プライベートスレッド作成ボタンを置くチャンネル
	QuizChannel       string `json:"quizId"`       // メインのクイズチャンネル
	AdminChannel      string `json:"adminId"`      // 管理者用チャンネル
}

// Configured 3つのチャンネルがすべて設定済みか
func (g GuildSettings) Configured() bool {
	return g.CreateQuizChannel != "" && g.QuizChannel != "" && g.AdminChannel != ""
}

// SettingsManager 設定管理
type SettingsManager struct {
	mu       sync.RWMutex
	guilds   map[string]GuildSettings
	filePath string
}

// NewSettingsManager 設定マネージャーを作成
func NewSettingsManager(configPath string) (*SettingsManager, error) {
	sm := &SettingsManager{
		guilds:   make(map[string]GuildSettings),
		filePath: configPath,
	}
	if err := sm.Load(); err != nil {
		return nil, err
	}
	return sm, nil
}

// Load 設定をファイルから読み込む
func (sm *SettingsManager) Load() error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	guilds := make(map[string]GuildSettings)
	if _, err := storage.LoadJSON(sm.filePath, &guilds); err != nil {
		return err
	}
	sm.guilds = guilds
	return nil
}

// GetGuildSettings サーバー設定を取得（未設定ならゼロ値と false）
func (sm *SettingsManager) GetGuildSettings(guildID string) (GuildSettings, bool) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	settings, ok := sm.guilds[guildID]
	return settings, ok
}

// SetGuildSettings サーバー設定を保存
func (sm *SettingsManager) SetGuildSettings(guildID string, settings GuildSettings) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	sm.guilds[guildID] = settings
	return storage.SaveJSON(sm.filePath, sm.guilds)
}

// QuizChannels 設定済みの全クイズチャンネル（スレッド掃除用）
func (sm *SettingsManager) QuizChannels() map[string]string {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	out := make(map[string]string, len(sm.guilds))
	for guildID, g := range sm.guilds {
		if g.QuizChannel != "" {
			out[guildID] = g.QuizChannel
		}
	}
	return out
}
