package handler

import (
	"context"
	"sync"

	"Streak_discord_bot/internal/commands"
	"Streak_discord_bot/internal/config"
	"Streak_discord_bot/internal/models"
	"Streak_discord_bot/internal/quiz"
)

// Options Handler の依存関係
type Options struct {
	Settings  *config.SettingsManager
	Maps      *config.MapsConfig
	Game      *quiz.Game
	BotInfo   *models.BotInfo
	Stats     models.StatsSource
	AssetsDir string
}

type Handler struct {
	players *commands.Registry // クイズチャンネルとそのスレッド
	admins  *commands.Registry // 管理チャンネル
	slash   *commands.Registry
	prefix  string

	ctx      context.Context
	settings *config.SettingsManager
	game     *quiz.Game

	janitorOnce sync.Once
}

func NewHandler(ctx context.Context, prefix string, opts Options) *Handler {
	players := commands.NewRegistry()
	for _, cmd := range []commands.Command{
		commands.NewPlayCommand(ctx, opts.Game, opts.Maps),
		commands.NewGuessCommand(opts.Game),
		commands.NewStopCommand(opts.Game),
		commands.NewMapsCommand(opts.Maps),
		commands.NewStatsCommand(opts.Game),
		commands.NewLeaderboardCommand(opts.Game, opts.Maps),
		commands.NewDistributionCommand(opts.Maps, opts.AssetsDir),
		commands.NewInviteCommand(),
		commands.NewKickCommand(),
	} {
		players.Register(cmd)
	}
	// help は最後に登録して一覧に自分自身も含める
	players.Register(commands.NewHelpCommand(players))

	admins := commands.NewRegistry()
	admins.Register(commands.NewPrivateMsgCommand(opts.Settings))
	admins.Register(&commands.PingCommand{})
	admins.Register(commands.NewInfoCommand(opts.BotInfo, opts.Stats))
	admins.Register(commands.NewAdminHelpCommand(admins))

	slash := commands.NewRegistry()
	for _, cmd := range []commands.Command{
		commands.NewSetupCommand(opts.Settings),
		commands.NewCreateChannelsCommand(opts.Settings),
		commands.NewAddMapCommand(opts.Maps, opts.Settings, opts.AssetsDir),
		commands.NewDeleteMapCommand(opts.Maps, opts.Settings),
		commands.NewInfoCommand(opts.BotInfo, opts.Stats),
		&commands.PingCommand{},
	} {
		slash.Register(cmd)
	}

	return &Handler{
		players:  players,
		admins:   admins,
		slash:    slash,
		prefix:   prefix,
		ctx:      ctx,
		settings: opts.Settings,
		game:     opts.Game,
	}
}
