package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/signaltrustai/SignalTrust-AI-Scanner-sub000/internal/backend"
	"github.com/signaltrustai/SignalTrust-AI-Scanner-sub000/internal/backend/providers"
	"github.com/signaltrustai/SignalTrust-AI-Scanner-sub000/internal/cache"
	"github.com/signaltrustai/SignalTrust-AI-Scanner-sub000/internal/config"
	"github.com/signaltrustai/SignalTrust-AI-Scanner-sub000/internal/database"
	"github.com/signaltrustai/SignalTrust-AI-Scanner-sub000/internal/learning"
	"github.com/signaltrustai/SignalTrust-AI-Scanner-sub000/internal/memory"
	"github.com/signaltrustai/SignalTrust-AI-Scanner-sub000/internal/orchestrator"
	"github.com/signaltrustai/SignalTrust-AI-Scanner-sub000/internal/pricefeed"
	"github.com/signaltrustai/SignalTrust-AI-Scanner-sub000/internal/types"
)

// app bundles the wired subsystems. There are no package-level singletons:
// every command builds an app, uses it, and closes it.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
	db     *database.DB
	orch   *orchestrator.Orchestrator
	engine *learning.Engine
}

// buildApp loads configuration and wires the full subsystem graph.
func buildApp(ctx context.Context) (*app, error) {
	path := configFile
	if path == "" {
		path = filepath.Join(config.DefaultConfig().Core.DataDir, "scanner.yaml")
	}

	cfg, err := config.NewConfigLoader(config.NewValidator()).LoadWithDefaults(path)
	if err != nil {
		return nil, err
	}

	logger := newLogger(cfg)
	slog.SetDefault(logger)

	if err := os.MkdirAll(cfg.Core.DataDir, 0o755); err != nil {
		return nil, types.WrapError(types.CONFIG_LOAD_FAILED, "failed to create data directory", err)
	}

	db, err := database.OpenWithConfig(database.Config{
		Path:            cfg.Database.Path,
		MaxOpenConns:    cfg.Database.MaxConnections,
		MaxIdleConns:    cfg.Database.MaxConnections / 2,
		BusyTimeout:     cfg.Database.BusyTimeout,
		ConnMaxLifetime: database.DefaultConfig(cfg.Database.Path).ConnMaxLifetime,
	})
	if err != nil {
		return nil, err
	}
	if err := database.NewMigrator(db).Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}

	registry, err := buildRegistry(ctx, cfg, logger)
	if err != nil {
		db.Close()
		return nil, err
	}

	orch := orchestrator.New(registry,
		orchestrator.WithLogger(logger),
		orchestrator.WithCache(cache.New(cfg.Cache.MaxEntries)),
		orchestrator.WithSharedContext(memory.NewSharedContext(cfg.Context.MaxEntries)),
		orchestrator.WithMaxWorkers(cfg.Orchestrator.MaxWorkers),
		orchestrator.WithDefaultTimeout(cfg.Orchestrator.DefaultTimeout),
		orchestrator.WithCacheTTL(cfg.Cache.TTL),
		orchestrator.WithContextTTL(cfg.Context.TTL),
		orchestrator.WithRiskThresholds(cfg.Orchestrator.RiskLowAbove, cfg.Orchestrator.RiskHighBelow),
		orchestrator.WithSpecialistRouting(parseRouting(cfg.Orchestrator.Routing)),
	)

	archiver, err := learning.NewArchiver(cfg.Learning.ArchiveDir, database.NewArchiveDAO(db),
		learning.WithArchiveMaxAge(cfg.Learning.ArchiveMaxAge),
		learning.WithArchiveMinBatch(cfg.Learning.ArchiveMinBatch),
		learning.WithArchiveKeepBatches(cfg.Learning.ArchiveKeepBatches),
	)
	if err != nil {
		db.Close()
		return nil, err
	}

	httpClient := &http.Client{Timeout: cfg.Feeds.Timeout}
	feed := pricefeed.NewChain(
		pricefeed.NewCoinGecko(cfg.Feeds.CoinGeckoURL, httpClient),
		pricefeed.NewBinance(cfg.Feeds.BinanceURL, httpClient),
	)

	engine := learning.NewEngine(
		database.NewPredictionDAO(db),
		database.NewScoreDAO(db),
		feed,
		learning.WithLogger(logger),
		learning.WithMaxPredictions(cfg.Learning.MaxPredictions),
		learning.WithEvaluationAge(cfg.Learning.EvaluationAge),
		learning.WithArchiver(archiver),
	)

	return &app{
		cfg:    cfg,
		logger: logger,
		db:     db,
		orch:   orch,
		engine: engine,
	}, nil
}

// Close releases the app's resources.
func (a *app) Close() error {
	return a.db.Close()
}

// buildRegistry constructs and registers every enabled backend. The rule
// engine is registered unconditionally so the degradation path always
// exists, even with an empty config.
func buildRegistry(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*backend.Registry, error) {
	registry := backend.NewRegistry()

	ruleRegistered := false
	for _, bc := range cfg.Backends {
		if !bc.Enabled {
			continue
		}

		var provider backend.AnalysisProvider
		if bc.Kind == types.ProviderRule {
			rule := providers.NewRule(providers.DefaultRuleConfig())
			provider = rule
			ruleRegistered = true
		} else {
			p, err := providers.New(ctx, bc)
			if err != nil {
				logger.Warn("skipping backend that failed to initialize",
					"backend", bc.Name, "kind", bc.Kind, "error", err)
				continue
			}
			provider = p
		}

		if err := registry.Register(backend.NewWorker(provider, bc.Priority)); err != nil {
			return nil, err
		}
		logger.Debug("registered backend", "backend", bc.Name, "kind", bc.Kind, "priority", bc.Priority)
	}

	if !ruleRegistered {
		rule := providers.NewRule(providers.DefaultRuleConfig())
		if err := registry.Register(backend.NewWorker(rule, 100)); err != nil {
			return nil, err
		}
	}

	return registry, nil
}

func parseRouting(routing map[string]string) map[types.TaskType]types.ProviderKind {
	if len(routing) == 0 {
		return nil
	}
	out := make(map[types.TaskType]types.ProviderKind, len(routing))
	for taskType, kind := range routing {
		out[types.TaskType(taskType)] = types.ProviderKind(kind)
	}
	return out
}

func newLogger(cfg *config.Config) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.Logging.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	if verbose || cfg.Core.Debug {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Logging.Format == "text" {
		handler = slog.NewTextHandler(os.Stderr, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}
	return slog.New(handler)
}
