package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/alejandrodnm/roulettebot/config"
	"github.com/alejandrodnm/roulettebot/internal/adapters/notify"
	"github.com/alejandrodnm/roulettebot/internal/adapters/predictor"
	"github.com/alejandrodnm/roulettebot/internal/adapters/storage"
	"github.com/alejandrodnm/roulettebot/internal/domain/strategy"
	"github.com/alejandrodnm/roulettebot/internal/engine"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	strategyName := flag.String("strategy", "", "strategy: top1|top3|top18|topm (overrides config)")
	balance := flag.Float64("balance", 0, "initial bankroll (overrides config)")
	autoTrain := flag.Bool("auto-train", false, "retrain the model in background as history grows")
	simulate := flag.Bool("simulate", false, "use the simulated feed instead of the live table")
	spins := flag.Int("spins", 0, "stop after N simulated spins (0 = unlimited)")
	list := flag.Bool("list-strategies", false, "print the strategy catalog and exit")
	verbose := flag.Bool("verbose", false, "set log level to debug and print per-number stakes")
	logFormat := flag.String("format", "", "log format: text|json (overrides config)")
	flag.Parse()

	if *list {
		notify.NewConsole(false).PrintCatalog(strategy.All())
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err, "path", *configPath)
		os.Exit(1)
	}

	if *strategyName != "" {
		cfg.Strategy.Name = *strategyName
	}
	if *balance > 0 {
		cfg.Strategy.InitialBalance = *balance
	}
	if *autoTrain {
		cfg.Strategy.AutoTrain = true
	}
	if *verbose {
		cfg.Log.Level = "debug"
	}
	if *logFormat != "" {
		cfg.Log.Format = *logFormat
	}
	setupLogger(cfg.Log)

	spec, err := strategy.Lookup(cfg.Strategy.Name)
	if err != nil {
		slog.Error("unknown strategy", "err", err, "name", cfg.Strategy.Name)
		os.Exit(1)
	}

	slog.Info("roulettebot starting",
		"config", *configPath,
		"strategy", spec.Kind,
		"balance", cfg.Strategy.InitialBalance,
		"auto_train", cfg.Strategy.AutoTrain,
		"simulate", *simulate,
	)

	store, err := storage.NewSQLiteStorage(cfg.Storage.DSN)
	if err != nil {
		slog.Error("failed to open storage", "err", err, "dsn", cfg.Storage.DSN)
		os.Exit(1)
	}
	defer store.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	pred, err := predictor.Open(ctx, store, spec.ModelKey)
	if err != nil {
		slog.Error("failed to load model", "err", err, "key", spec.ModelKey)
		os.Exit(1)
	}

	engCfg := buildEngineConfig(cfg)

	var trainer *engine.Trainer
	if cfg.Strategy.AutoTrain {
		trainer = engine.NewTrainer(pred, store, spec.ModelKey, engCfg.WindowLength)
		trainer.Start(ctx)
		// Parar el worker antes de esperar, si no Wait no termina nunca.
		defer func() {
			cancel()
			trainer.Wait()
		}()
	}

	notifier := notify.NewConsole(*verbose)

	eng, err := engine.New(engCfg, spec, uuid.NewString(), pred, trainer, store, notifier)
	if err != nil {
		slog.Error("failed to build engine", "err", err)
		os.Exit(1)
	}

	if err := run(ctx, cfg, eng, *simulate, *spins); err != nil {
		slog.Error("engine exited with error", "err", err)
		os.Exit(1)
	}

	slog.Info("roulettebot stopped cleanly")
}

func buildEngineConfig(cfg *config.Config) engine.Config {
	c := engine.DefaultConfig()
	c.WindowLength = cfg.Engine.WindowLength
	c.HistoryCap = cfg.Engine.HistoryCap
	c.PayoutRatio = decimal.NewFromFloat(cfg.Engine.PayoutRatio)
	c.BettingFraction = decimal.NewFromFloat(cfg.Engine.BettingFraction)
	c.PerUnitCap = decimal.NewFromFloat(cfg.Engine.PerUnitCap)
	c.InitialBalance = decimal.NewFromFloat(cfg.Strategy.InitialBalance)
	c.AutoTrain = cfg.Strategy.AutoTrain
	c.MinTrainHistory = cfg.Engine.MinTrainHistory
	c.CoverageThreshold = cfg.Engine.CoverageThreshold
	return c
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
