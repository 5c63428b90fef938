package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/signaltrustai/SignalTrust-AI-Scanner-sub000/internal/types"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scanner.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultConfig_IsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, NewValidator().Validate(cfg))

	assert.Equal(t, 500, cfg.Cache.MaxEntries)
	assert.Equal(t, 300, cfg.Context.MaxEntries)
	assert.Equal(t, 5000, cfg.Learning.MaxPredictions)
	assert.Equal(t, "consensus", cfg.Orchestrator.DefaultStrategy)

	require.Len(t, cfg.Backends, 1)
	assert.Equal(t, types.ProviderRule, cfg.Backends[0].Kind)
	assert.True(t, cfg.Backends[0].Enabled)
}

func TestLoad_OverridesDefaults(t *testing.T) {
	path := writeConfigFile(t, `
core:
  data_dir: /tmp/scanner-test
logging:
  level: debug
  format: text
cache:
  max_entries: 42
  ttl: 90s
orchestrator:
  max_workers: 4
  default_strategy: fastest
  routing:
    sentiment: anthropic
backends:
  - name: rule-engine
    kind: rule
    priority: 100
    enabled: true
  - name: claude
    kind: anthropic
    model: claude-sonnet-4-20250514
    api_key: test-key
    priority: 1
    enabled: true
`)

	cfg, err := NewConfigLoader(NewValidator()).Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/scanner-test", cfg.Core.DataDir)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 42, cfg.Cache.MaxEntries)
	assert.Equal(t, 90*time.Second, cfg.Cache.TTL)
	assert.Equal(t, 4, cfg.Orchestrator.MaxWorkers)
	assert.Equal(t, "fastest", cfg.Orchestrator.DefaultStrategy)
	assert.Equal(t, "anthropic", cfg.Orchestrator.Routing["sentiment"])

	// Untouched sections keep their defaults.
	assert.Equal(t, 300, cfg.Context.MaxEntries)
	assert.Equal(t, 5000, cfg.Learning.MaxPredictions)

	require.Len(t, cfg.Backends, 2)
	assert.Equal(t, "claude", cfg.Backends[1].Name)
	assert.Equal(t, types.ProviderAnthropic, cfg.Backends[1].Kind)
}

func TestLoad_InterpolatesEnvVars(t *testing.T) {
	t.Setenv("TEST_SCANNER_KEY", "sk-from-env")

	path := writeConfigFile(t, `
backends:
  - name: rule-engine
    kind: rule
    priority: 100
    enabled: true
  - name: claude
    kind: anthropic
    api_key: ${TEST_SCANNER_KEY}
    priority: 1
    enabled: true
`)

	cfg, err := NewConfigLoader(NewValidator()).Load(path)
	require.NoError(t, err)
	assert.Equal(t, "sk-from-env", cfg.Backends[1].APIKey)
}

func TestLoad_UnsetEnvVarLeftIntact(t *testing.T) {
	path := writeConfigFile(t, `
backends:
  - name: rule-engine
    kind: rule
    priority: 100
    enabled: true
  - name: claude
    kind: anthropic
    api_key: ${DEFINITELY_NOT_SET_VAR_12345}
    priority: 1
    enabled: true
`)

	cfg, err := NewConfigLoader(NewValidator()).Load(path)
	require.NoError(t, err)
	assert.Equal(t, "${DEFINITELY_NOT_SET_VAR_12345}", cfg.Backends[1].APIKey)
}

func TestLoadWithDefaults_MissingFile(t *testing.T) {
	cfg, err := NewConfigLoader(NewValidator()).LoadWithDefaults(
		filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Cache.MaxEntries, cfg.Cache.MaxEntries)
}

func TestLoad_MissingFileErrors(t *testing.T) {
	_, err := NewConfigLoader(NewValidator()).Load(
		filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Equal(t, types.CONFIG_LOAD_FAILED, types.CodeOf(err))
}

func TestValidate_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(cfg *Config)
		message string
	}{
		{
			name:    "no rule backend",
			mutate:  func(cfg *Config) { cfg.Backends = nil },
			message: "rule backend",
		},
		{
			name: "disabled rule backend",
			mutate: func(cfg *Config) {
				cfg.Backends[0].Enabled = false
			},
			message: "rule backend",
		},
		{
			name: "duplicate backend name",
			mutate: func(cfg *Config) {
				cfg.Backends = append(cfg.Backends, cfg.Backends[0])
			},
			message: "duplicate",
		},
		{
			name: "inverted risk thresholds",
			mutate: func(cfg *Config) {
				cfg.Orchestrator.RiskHighBelow = 0.9
			},
			message: "risk_high_below",
		},
		{
			name: "unknown routing task type",
			mutate: func(cfg *Config) {
				cfg.Orchestrator.Routing = map[string]string{"astrology": "rule"}
			},
			message: "unknown task type",
		},
		{
			name: "unknown routing provider kind",
			mutate: func(cfg *Config) {
				cfg.Orchestrator.Routing = map[string]string{"sentiment": "psychic"}
			},
			message: "unknown provider kind",
		},
		{
			name: "zero cache capacity",
			mutate: func(cfg *Config) {
				cfg.Cache.MaxEntries = 0
			},
			message: "cache",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)

			err := NewValidator().Validate(cfg)
			require.Error(t, err)
			assert.Equal(t, types.CONFIG_VALIDATION_FAILED, types.CodeOf(err))
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestValidate_NilConfig(t *testing.T) {
	err := NewValidator().Validate(nil)
	require.Error(t, err)
	assert.Equal(t, types.CONFIG_VALIDATION_FAILED, types.CodeOf(err))
}
