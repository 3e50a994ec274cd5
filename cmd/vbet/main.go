package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/alejandrodnm/vbet/config"
	"github.com/alejandrodnm/vbet/internal/adapters/feed"
	"github.com/alejandrodnm/vbet/internal/adapters/notify"
	"github.com/alejandrodnm/vbet/internal/adapters/storage"
	"github.com/alejandrodnm/vbet/internal/competition"
	"github.com/alejandrodnm/vbet/internal/domain"
	"github.com/alejandrodnm/vbet/internal/ports"
	"github.com/alejandrodnm/vbet/internal/strategy"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	verbose := flag.Bool("verbose", false, "set log level to debug")
	logFormat := flag.String("format", "", "log format: text|json (overrides config)")
	standings := flag.Bool("standings", true, "print standings after each round")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err, "path", *configPath)
		os.Exit(1)
	}

	if *verbose {
		cfg.Log.Level = "debug"
	}
	if *logFormat != "" {
		cfg.Log.Format = *logFormat
	}
	setupLogger(cfg.Log)

	slog.Info("vbet starting",
		"config", *configPath,
		"feed", cfg.Feed.URL,
		"games", len(cfg.Games),
	)

	if len(cfg.Games) == 0 {
		slog.Error("no games configured")
		os.Exit(1)
	}

	store, err := storage.NewSQLiteStore(cfg.Storage.DSN)
	if err != nil {
		slog.Error("failed to open storage", "err", err, "dsn", cfg.Storage.DSN)
		os.Exit(1)
	}
	defer store.Close()

	reg := strategy.NewRegistry()
	reg.Register("underdog", strategy.NewUnderdog)

	var notifier *notify.Console
	if *standings {
		notifier = notify.NewConsole()
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var wg sync.WaitGroup
	for _, game := range cfg.Games {
		comp, err := setupCompetition(ctx, cfg, game, store, reg, notifier)
		if err != nil {
			slog.Error("failed to set up competition", "err", err, "game", game.ID)
			os.Exit(1)
		}

		wg.Add(1)
		go func(g config.GameConfig) {
			defer wg.Done()
			if err := comp.Run(ctx); err != nil {
				slog.Error("competition exited with error", "err", err, "game", g.ID)
				cancel()
			}
		}(game)
	}
	wg.Wait()

	slog.Info("vbet stopped cleanly")
}

// setupCompetition conecta el feed de un juego y monta su engine con las
// estrategias y el almacén de tickets.
func setupCompetition(ctx context.Context, cfg *config.Config, game config.GameConfig, store *storage.SQLiteStore, reg strategy.Registry, notifier *notify.Console) (*competition.Competition, error) {
	gameID := domain.GameID(game.ID)

	client, err := feed.Dial(ctx, feed.Config{
		URL:               cfg.Feed.URL,
		RequestsPerSecond: cfg.Feed.RequestsPerSecond,
		Burst:             cfg.Feed.Burst,
	}, gameID)
	if err != nil {
		return nil, err
	}

	compCfg := competition.DefaultConfig(gameID)
	compCfg.MaxRounds = domain.Round(game.MaxRounds)
	compCfg.Profile = cfg.Feed.Profile
	compCfg.OddSettingID = cfg.Feed.OddSettingID
	compCfg.UnitID = cfg.Feed.UnitID
	compCfg.FixturesRetryDelay = cfg.FixturesRetryDelay()
	compCfg.ResultsRetryDelay = cfg.ResultsRetryDelay()
	compCfg.MaxResultRetries = cfg.Engine.MaxResultRetries
	compCfg.MaxBackfillIterations = cfg.Engine.MaxBackfillIterations
	compCfg.FutureResults = cfg.Engine.FutureResults
	compCfg.PrefetchDelay = cfg.PrefetchDelay()
	compCfg.EventTimeEnabled = cfg.Engine.EventTimeEnabled
	compCfg.EventTimeInterval = cfg.EventTimeInterval()

	var n ports.Notifier
	if notifier != nil {
		n = notifier
	}
	comp := competition.New(compCfg, client, store, store, n)

	stratCfg := strategy.Config{
		Stake:    cfg.Betting.Stake,
		MinOdd:   cfg.Betting.MinOdd,
		FormSpan: cfg.Betting.FormSpan,
	}
	if err := comp.InstallStrategies(reg, game.Strategies, stratCfg); err != nil {
		client.Close()
		return nil, err
	}

	store.BindCompetition(gameID, comp, comp.OnTicketSettled)
	client.OnResponse(comp.Receive)
	client.OnReconnect(comp.Reconnected)
	client.Start(ctx)

	return comp, nil
}

func setupLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}
