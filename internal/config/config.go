package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/aleister1102/leakscout/internal/common/errorwrapper"

	"gopkg.in/yaml.v3"
)

const (
	// Scanner defaults
	DefaultScannerWorkerCount   = 8
	DefaultScannerTimeoutSecs   = 0 // no wall-time budget
	DefaultReportingFloor       = 0.0
	DefaultScannerMaxLineLength = 1024 * 1024 // 1MB cap on a single tokenized line

	// Entropy defaults
	DefaultEntropyMinTokenLength  = 20
	DefaultEntropyBase64Threshold = 4.5
	DefaultEntropyHexThreshold    = 3.0
	DefaultEntropyBase64Ceiling   = 6.0
	DefaultEntropyHexCeiling      = 4.0
	DefaultEntropyMaxConfidence   = 0.6

	// Walker defaults
	DefaultWalkerMaxFileSizeMB = 10

	// Storage defaults
	DefaultStorageParquetBasePath  = "database"
	DefaultStorageCompressionCodec = "zstd"

	// Log defaults
	DefaultLogLevel      = "info"
	DefaultLogFormat     = "console"
	DefaultMaxLogSizeMB  = 100
	DefaultMaxLogBackups = 3
)

// GlobalConfig is the immutable configuration value passed into the scan
// orchestrator at construction. Concurrent scans with different
// configurations can coexist in the same process.
type GlobalConfig struct {
	ScannerConfig   ScannerConfig   `json:"scanner_config,omitempty" yaml:"scanner_config,omitempty"`
	EntropyConfig   EntropyConfig   `json:"entropy_config,omitempty" yaml:"entropy_config,omitempty"`
	AllowlistConfig AllowlistConfig `json:"allowlist_config,omitempty" yaml:"allowlist_config,omitempty"`
	WalkerConfig    WalkerConfig    `json:"walker_config,omitempty" yaml:"walker_config,omitempty"`
	ReporterConfig  ReporterConfig  `json:"reporter_config,omitempty" yaml:"reporter_config,omitempty"`
	StorageConfig   StorageConfig   `json:"storage_config,omitempty" yaml:"storage_config,omitempty"`
	LogConfig       LogConfig       `json:"log_config,omitempty" yaml:"log_config,omitempty"`
}

func NewDefaultGlobalConfig() *GlobalConfig {
	return &GlobalConfig{
		ScannerConfig:   NewDefaultScannerConfig(),
		EntropyConfig:   NewDefaultEntropyConfig(),
		AllowlistConfig: NewDefaultAllowlistConfig(),
		WalkerConfig:    NewDefaultWalkerConfig(),
		ReporterConfig:  NewDefaultReporterConfig(),
		StorageConfig:   NewDefaultStorageConfig(),
		LogConfig:       NewDefaultLogConfig(),
	}
}

// LoadGlobalConfig loads the configuration from a file or default locations.
// YAML is preferred if the file extension is .yaml or .yml; anything else is
// parsed as JSON. A missing config file is not an error: defaults apply.
func LoadGlobalConfig(providedPath string) (*GlobalConfig, error) {
	cfg := NewDefaultGlobalConfig()

	filePath := GetConfigPath(providedPath)
	if filePath == "" {
		if providedPath != "" {
			return nil, errorwrapper.NewValidationError("config_file", providedPath, "config file does not exist")
		}
		return cfg, nil
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, errorwrapper.WrapError(err, "failed to read config file "+filePath)
	}

	if err := parseConfigContent(data, filePath, cfg); err != nil {
		return nil, errorwrapper.WrapError(err, "failed to parse config content")
	}

	return cfg, nil
}

func parseConfigContent(data []byte, filePath string, cfg *GlobalConfig) error {
	ext := filepath.Ext(filePath)
	if ext == ".yaml" || ext == ".yml" {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return errorwrapper.NewError("failed to unmarshal YAML from '%s': %w", filePath, err)
		}
		return nil
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return errorwrapper.NewError("failed to unmarshal JSON from '%s': %w", filePath, err)
	}
	return nil
}
