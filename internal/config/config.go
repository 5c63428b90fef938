// Package config defines the scanner configuration, its defaults, and the
// YAML loader with environment variable interpolation.
package config

import (
	"time"

	"github.com/signaltrustai/SignalTrust-AI-Scanner-sub000/internal/backend"
)

// Config is the root configuration for the scanner.
type Config struct {
	Core         CoreConfig               `mapstructure:"core" yaml:"core" validate:"required"`
	Logging      LoggingConfig            `mapstructure:"logging" yaml:"logging"`
	Database     DatabaseConfig           `mapstructure:"database" yaml:"database" validate:"required"`
	Cache        CacheConfig              `mapstructure:"cache" yaml:"cache"`
	Context      ContextConfig            `mapstructure:"context" yaml:"context"`
	Orchestrator OrchestratorConfig       `mapstructure:"orchestrator" yaml:"orchestrator"`
	Backends     []backend.ProviderConfig `mapstructure:"backends" yaml:"backends" validate:"dive"`
	Learning     LearningConfig           `mapstructure:"learning" yaml:"learning"`
	Feeds        FeedsConfig              `mapstructure:"feeds" yaml:"feeds"`
}

// CoreConfig contains core application settings.
type CoreConfig struct {
	DataDir string `mapstructure:"data_dir" yaml:"data_dir" validate:"required"`
	Debug   bool   `mapstructure:"debug" yaml:"debug"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level" validate:"omitempty,oneof=debug info warn error"`
	Format string `mapstructure:"format" yaml:"format" validate:"omitempty,oneof=json text"`
}

// DatabaseConfig contains SQLite configuration.
type DatabaseConfig struct {
	Path           string        `mapstructure:"path" yaml:"path" validate:"required"`
	MaxConnections int           `mapstructure:"max_connections" yaml:"max_connections" validate:"min=1,max=100"`
	BusyTimeout    time.Duration `mapstructure:"busy_timeout" yaml:"busy_timeout" validate:"min=100ms"`
}

// CacheConfig bounds the response cache.
type CacheConfig struct {
	MaxEntries int           `mapstructure:"max_entries" yaml:"max_entries" validate:"min=1"`
	TTL        time.Duration `mapstructure:"ttl" yaml:"ttl" validate:"min=1s"`
}

// ContextConfig bounds the shared analysis context.
type ContextConfig struct {
	MaxEntries int           `mapstructure:"max_entries" yaml:"max_entries" validate:"min=1"`
	TTL        time.Duration `mapstructure:"ttl" yaml:"ttl" validate:"min=1s"`
}

// OrchestratorConfig tunes strategy dispatch.
type OrchestratorConfig struct {
	MaxWorkers      int               `mapstructure:"max_workers" yaml:"max_workers" validate:"min=1,max=64"`
	DefaultTimeout  time.Duration     `mapstructure:"default_timeout" yaml:"default_timeout" validate:"min=1s"`
	DefaultStrategy string            `mapstructure:"default_strategy" yaml:"default_strategy" validate:"omitempty,oneof=consensus fastest specialist redundant pipeline"`
	RiskLowAbove    float64           `mapstructure:"risk_low_above" yaml:"risk_low_above" validate:"gt=0,lt=1"`
	RiskHighBelow   float64           `mapstructure:"risk_high_below" yaml:"risk_high_below" validate:"gt=0,lt=1"`
	Routing         map[string]string `mapstructure:"routing" yaml:"routing,omitempty"`
}

// LearningConfig tunes the prediction learning loop.
type LearningConfig struct {
	MaxPredictions     int           `mapstructure:"max_predictions" yaml:"max_predictions" validate:"min=10"`
	EvaluationAge      time.Duration `mapstructure:"evaluation_age" yaml:"evaluation_age" validate:"min=1m"`
	ArchiveDir         string        `mapstructure:"archive_dir" yaml:"archive_dir" validate:"required"`
	ArchiveMaxAge      time.Duration `mapstructure:"archive_max_age" yaml:"archive_max_age" validate:"min=24h"`
	ArchiveMinBatch    int           `mapstructure:"archive_min_batch" yaml:"archive_min_batch" validate:"min=1"`
	ArchiveKeepBatches int           `mapstructure:"archive_keep_batches" yaml:"archive_keep_batches" validate:"min=1"`
}

// FeedsConfig points at the realized-price sources used by auto-evaluation.
type FeedsConfig struct {
	CoinGeckoURL string        `mapstructure:"coingecko_url" yaml:"coingecko_url,omitempty"`
	BinanceURL   string        `mapstructure:"binance_url" yaml:"binance_url,omitempty"`
	Timeout      time.Duration `mapstructure:"timeout" yaml:"timeout" validate:"min=1s"`
}
