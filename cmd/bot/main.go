package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"Streak_discord_bot/internal/browser"
	"Streak_discord_bot/internal/config"
	"Streak_discord_bot/internal/geo"
	"Streak_discord_bot/internal/handler"
	"Streak_discord_bot/internal/logger"
	"Streak_discord_bot/internal/models"
	"Streak_discord_bot/internal/ops"
	"Streak_discord_bot/internal/quiz"
	"Streak_discord_bot/internal/streaks"
	"Streak_discord_bot/internal/utils"
	"Streak_discord_bot/internal/version"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	logger.Setup(cfg.LogLevel, cfg.LogFormat)
	if cfg.Token == "" {
		log.Fatal().Msg("DISCORD_TOKEN is required")
	}

	if err := run(ctx, cfg); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal().Err(err).Msg("Bot stopped with error")
	}
	log.Info().Msg("Shutdown complete")
}

func run(ctx context.Context, cfg *config.Config) error {
	settings, err := config.NewSettingsManager(cfg.ServerConfigPath())
	if err != nil {
		return err
	}
	maps, err := config.LoadMaps(cfg.MapsFile)
	if err != nil {
		return err
	}
	store, err := streaks.Open(cfg.PersonalBestPath(), cfg.LeaderboardPath())
	if err != nil {
		return err
	}

	// 外部 API ごとのレート制限（Nominatim は 1 リクエスト/秒）
	limiter := utils.NewRateLimiter(5)
	nominatim := geo.NewNominatim("", limiter)
	limiter.SetHostRate(nominatim.Host(), 1)
	catalog := geo.NewCatalog("", maps, limiter)

	checks := make(map[string]ops.Checker)

	var cache geo.Cache = geo.NewMemoryCache()
	if cfg.GeocodeRedisURL != "" {
		client, err := geo.OpenRedis(ctx, cfg.GeocodeRedisURL)
		if err != nil {
			return err
		}
		defer client.Close()
		cache = geo.NewRedisCache(client, "streakbot:geocode")
		checks["redis"] = ops.CheckFunc(func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		})
	}
	resolver := geo.NewResolver(nominatim, cache)

	manager := browser.NewManager(browser.NewChromeLauncher(browser.ChromeOptions{RemoteURL: cfg.BrowserWSURL}), cfg.BrowserMaxAge)
	defer manager.Close()
	renderer := browser.NewRenderer(manager, browser.DefaultRenderOptions())

	dg, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return err
	}
	dg.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMessages | discordgo.IntentsMessageContent

	game := quiz.NewGame(quiz.Deps{
		Renderer:  renderer,
		Locations: catalog,
		Resolver:  resolver,
		Maps:      maps,
		Store:     store,
		Presenter: handler.NewPresenter(dg),
	})
	defer game.Shutdown()

	botInfo := models.NewBotInfo(version.Version)
	stats := func() models.RuntimeStats {
		return models.RuntimeStats{
			ActiveRounds:      game.ActiveChannels(),
			CachedCoordinates: resolver.CacheSize(),
			BrowserAlive:      manager.Alive(),
		}
	}

	h := handler.NewHandler(ctx, "!", handler.Options{
		Settings:  settings,
		Maps:      maps,
		Game:      game,
		BotInfo:   botInfo,
		Stats:     stats,
		AssetsDir: cfg.AssetsDir,
	})
	dg.AddHandler(h.OnReady)
	dg.AddHandler(h.OnMessage)
	dg.AddHandler(h.OnInteractionCreate)

	if err := dg.Open(); err != nil {
		return err
	}
	defer dg.Close()
	log.Info().Str("version", version.Version).Msg("Connected to Discord")

	g, gctx := errgroup.WithContext(ctx)

	if cfg.OpsAddr != "" {
		checks["discord"] = ops.CheckFunc(func(context.Context) error {
			if !dg.DataReady {
				return errors.New("gateway not ready")
			}
			return nil
		})
		server := ops.New(cfg.OpsAddr, checks)
		g.Go(func() error { return server.Run(gctx) })
	}

	g.Go(func() error {
		manager.WarmUp(gctx)
		return nil
	})

	if cfg.PreloadLocations {
		g.Go(func() error {
			results, err := geo.Preload(gctx, catalog, resolver, maps.Names())
			if err != nil {
				log.Warn().Err(err).Msg("Location preload interrupted")
				return nil
			}
			for _, r := range results {
				log.Info().
					Str("map", r.Map).
					Int("total", r.Total).
					Int("resolved", r.Resolved).
					Int("evicted", r.Evicted).
					Int("failed", r.Failed).
					Msg("Preloaded map")
			}
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		return gctx.Err()
	})

	return g.Wait()
}
