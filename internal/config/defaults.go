package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/signaltrustai/SignalTrust-AI-Scanner-sub000/internal/backend"
	"github.com/signaltrustai/SignalTrust-AI-Scanner-sub000/internal/cache"
	"github.com/signaltrustai/SignalTrust-AI-Scanner-sub000/internal/learning"
	"github.com/signaltrustai/SignalTrust-AI-Scanner-sub000/internal/memory"
	"github.com/signaltrustai/SignalTrust-AI-Scanner-sub000/internal/orchestrator"
	"github.com/signaltrustai/SignalTrust-AI-Scanner-sub000/internal/types"
)

// DefaultConfig returns a Config with sensible default values. The only
// pre-wired backend is the rule engine; LLM backends come from the config
// file since they need credentials.
func DefaultConfig() *Config {
	dataDir := getDefaultDataDir()

	return &Config{
		Core: CoreConfig{
			DataDir: dataDir,
			Debug:   false,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Database: DatabaseConfig{
			Path:           filepath.Join(dataDir, "scanner.db"),
			MaxConnections: 10,
			BusyTimeout:    5 * time.Second,
		},
		Cache: CacheConfig{
			MaxEntries: cache.DefaultMaxEntries,
			TTL:        cache.DefaultTTL,
		},
		Context: ContextConfig{
			MaxEntries: memory.DefaultMaxEntries,
			TTL:        memory.DefaultTTL,
		},
		Orchestrator: OrchestratorConfig{
			MaxWorkers:      orchestrator.DefaultMaxWorkers,
			DefaultTimeout:  orchestrator.DefaultTimeout,
			DefaultStrategy: string(orchestrator.StrategyConsensus),
			RiskLowAbove:    0.75,
			RiskHighBelow:   0.45,
		},
		Backends: []backend.ProviderConfig{
			{
				Name:     "rule-engine",
				Kind:     types.ProviderRule,
				Priority: 100,
				Enabled:  true,
			},
		},
		Learning: LearningConfig{
			MaxPredictions:     learning.DefaultMaxPredictions,
			EvaluationAge:      learning.DefaultEvaluationAge,
			ArchiveDir:         filepath.Join(dataDir, "archive"),
			ArchiveMaxAge:      learning.DefaultArchiveAge,
			ArchiveMinBatch:    learning.DefaultArchiveMinBatch,
			ArchiveKeepBatches: learning.DefaultArchiveKeepBatches,
		},
		Feeds: FeedsConfig{
			Timeout: 10 * time.Second,
		},
	}
}

func getDefaultDataDir() string {
	if dir := os.Getenv("SCANNER_DATA_DIR"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".scanner"
	}
	return filepath.Join(home, ".scanner")
}
