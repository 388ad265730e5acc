package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config 環境変数から読み込むプロセス設定
type Config struct {
	Token string `env:"DISCORD_TOKEN"`

	DataDir   string `env:"DATA_DIR" envDefault:"data"`
	AssetsDir string `env:"ASSETS_DIR" envDefault:"assets"`
	MapsFile  string `env:"MAPS_FILE"`

	BrowserWSURL  string        `env:"BROWSER_WS_URL"`
	BrowserMaxAge time.Duration `env:"BROWSER_MAX_AGE" envDefault:"10m"`

	GeocodeRedisURL  string `env:"GEOCODE_REDIS_URL"`
	PreloadLocations bool   `env:"PRELOAD_LOCATIONS" envDefault:"true"`

	OpsAddr   string `env:"OPS_ADDR" envDefault:":9090"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"console"`
}

// Load .env（任意）を読み込んだ後、環境変数をパースする
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	if cfg.MapsFile == "" {
		cfg.MapsFile = filepath.Join(cfg.DataDir, "maps_data.json")
	}
	return &cfg, nil
}

// PersonalBestPath 自己ベスト記録ファイル
func (c *Config) PersonalBestPath() string {
	return filepath.Join(c.DataDir, "pb_streak.json")
}

// LeaderboardPath マップ別リーダーボードファイル
func (c *Config) LeaderboardPath() string {
	return filepath.Join(c.DataDir, "lb_streak.json")
}

// ServerConfigPath ギルド設定ファイル
func (c *Config) ServerConfigPath() string {
	return filepath.Join(c.DataDir, "server_config.json")
}
