package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultGlobalConfig(t *testing.T) {
	cfg := NewDefaultGlobalConfig()

	assert.Equal(t, DefaultScannerWorkerCount, cfg.ScannerConfig.WorkerCount)
	assert.Equal(t, []string{"*"}, cfg.ScannerConfig.EnabledRuleNames)
	assert.True(t, cfg.EntropyConfig.Enabled)
	assert.Equal(t, DefaultEntropyMinTokenLength, cfg.EntropyConfig.MinTokenLength)
	assert.Equal(t, DefaultEntropyBase64Threshold, cfg.EntropyConfig.Base64Threshold)
	assert.Equal(t, DefaultEntropyHexThreshold, cfg.EntropyConfig.HexThreshold)
	assert.True(t, cfg.WalkerConfig.Recursive)
	assert.False(t, cfg.StorageConfig.Enabled)

	require.NoError(t, ValidateConfig(cfg))
}

func TestLoadGlobalConfig_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `scanner_config:
  worker_count: 2
  timeout_seconds: 30
entropy_config:
  enabled: true
  min_token_length: 24
log_config:
  log_level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadGlobalConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 2, cfg.ScannerConfig.WorkerCount)
	assert.Equal(t, 30, cfg.ScannerConfig.TimeoutSeconds)
	assert.Equal(t, 24, cfg.EntropyConfig.MinTokenLength)
	assert.Equal(t, "debug", cfg.LogConfig.LogLevel)
	// Untouched sections keep their defaults.
	assert.Equal(t, DefaultEntropyBase64Threshold, cfg.EntropyConfig.Base64Threshold)
}

func TestLoadGlobalConfig_JSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	content := `{"scanner_config": {"worker_count": 3}}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadGlobalConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.ScannerConfig.WorkerCount)
}

func TestLoadGlobalConfig_MissingProvidedPathIsError(t *testing.T) {
	_, err := LoadGlobalConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestLoadGlobalConfig_MalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("scanner_config: [not a map"), 0644))

	_, err := LoadGlobalConfig(path)
	require.Error(t, err)
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*GlobalConfig)
		wantErr bool
	}{
		{"defaults are valid", func(cfg *GlobalConfig) {}, false},
		{"bad log level", func(cfg *GlobalConfig) { cfg.LogConfig.LogLevel = "loud" }, true},
		{"bad log format", func(cfg *GlobalConfig) { cfg.LogConfig.LogFormat = "xml" }, true},
		{"bad report format", func(cfg *GlobalConfig) { cfg.ReporterConfig.Format = "pdf" }, true},
		{"negative worker count", func(cfg *GlobalConfig) { cfg.ScannerConfig.WorkerCount = -1 }, true},
		{"reporting floor above one", func(cfg *GlobalConfig) { cfg.ScannerConfig.ReportingFloor = 1.5 }, true},
		{"missing custom rule file", func(cfg *GlobalConfig) { cfg.ScannerConfig.CustomRulePatternsFile = "/nope/rules.yaml" }, true},
		{"missing allowlist file", func(cfg *GlobalConfig) { cfg.AllowlistConfig.Path = "/nope/allowlist.yaml" }, true},
		{"negative min token length", func(cfg *GlobalConfig) { cfg.EntropyConfig.MinTokenLength = -1 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewDefaultGlobalConfig()
			tt.mutate(cfg)
			err := ValidateConfig(cfg)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestGetConfigPath_EnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0644))
	t.Setenv("LEAKSCOUT_CONFIG_PATH", path)

	assert.Equal(t, path, GetConfigPath(""))
}

func TestGetConfigPath_ProvidedWins(t *testing.T) {
	dir := t.TempDir()
	provided := filepath.Join(dir, "provided.yaml")
	fromEnv := filepath.Join(dir, "env.yaml")
	require.NoError(t, os.WriteFile(provided, []byte("{}"), 0644))
	require.NoError(t, os.WriteFile(fromEnv, []byte("{}"), 0644))
	t.Setenv("LEAKSCOUT_CONFIG_PATH", fromEnv)

	assert.Equal(t, provided, GetConfigPath(provided))
}
