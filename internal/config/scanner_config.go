package config

// ScannerConfig holds configuration for the scan orchestrator.
type ScannerConfig struct {
	WorkerCount            int      `json:"worker_count,omitempty" yaml:"worker_count,omitempty" validate:"omitempty,min=1"`
	TimeoutSeconds         int      `json:"timeout_seconds,omitempty" yaml:"timeout_seconds,omitempty" validate:"omitempty,min=0"`
	EnabledRuleNames       []string `json:"enabled_rule_names,omitempty" yaml:"enabled_rule_names,omitempty"`
	CustomRulePatternsFile string   `json:"custom_rule_patterns_file,omitempty" yaml:"custom_rule_patterns_file,omitempty" validate:"omitempty,fileexists"`
	ReportingFloor         float64  `json:"reporting_floor,omitempty" yaml:"reporting_floor,omitempty" validate:"omitempty,min=0,max=1"`
}

// NewDefaultScannerConfig creates a ScannerConfig with default values.
// EnabledRuleNames of ["*"] enables every registered rule.
func NewDefaultScannerConfig() ScannerConfig {
	return ScannerConfig{
		WorkerCount:      DefaultScannerWorkerCount,
		TimeoutSeconds:   DefaultScannerTimeoutSecs,
		EnabledRuleNames: []string{"*"},
		ReportingFloor:   DefaultReportingFloor,
	}
}

// EntropyConfig holds the tunable policy defaults of the entropy analyzer.
// The thresholds and ceilings are documented heuristics, not fixed laws.
type EntropyConfig struct {
	Enabled         bool    `json:"enabled" yaml:"enabled"`
	MinTokenLength  int     `json:"min_token_length,omitempty" yaml:"min_token_length,omitempty" validate:"omitempty,min=1"`
	Base64Threshold float64 `json:"base64_threshold,omitempty" yaml:"base64_threshold,omitempty" validate:"omitempty,min=0"`
	HexThreshold    float64 `json:"hex_threshold,omitempty" yaml:"hex_threshold,omitempty" validate:"omitempty,min=0"`
	Base64Ceiling   float64 `json:"base64_ceiling,omitempty" yaml:"base64_ceiling,omitempty" validate:"omitempty,min=0"`
	HexCeiling      float64 `json:"hex_ceiling,omitempty" yaml:"hex_ceiling,omitempty" validate:"omitempty,min=0"`
	MaxConfidence   float64 `json:"max_confidence,omitempty" yaml:"max_confidence,omitempty" validate:"omitempty,min=0,max=1"`
}

func NewDefaultEntropyConfig() EntropyConfig {
	return EntropyConfig{
		Enabled:         true,
		MinTokenLength:  DefaultEntropyMinTokenLength,
		Base64Threshold: DefaultEntropyBase64Threshold,
		HexThreshold:    DefaultEntropyHexThreshold,
		Base64Ceiling:   DefaultEntropyBase64Ceiling,
		HexCeiling:      DefaultEntropyHexCeiling,
		MaxConfidence:   DefaultEntropyMaxConfidence,
	}
}

// AllowlistConfig points at the user's suppression file, if any.
type AllowlistConfig struct {
	Path string `json:"path,omitempty" yaml:"path,omitempty" validate:"omitempty,fileexists"`
}

func NewDefaultAllowlistConfig() AllowlistConfig {
	return AllowlistConfig{}
}

// WalkerConfig holds configuration for the file-traversal collaborator.
type WalkerConfig struct {
	Recursive       bool     `json:"recursive" yaml:"recursive"`
	ExcludePatterns []string `json:"exclude_patterns,omitempty" yaml:"exclude_patterns,omitempty"`
	MaxFileSizeMB   int      `json:"max_file_size_mb,omitempty" yaml:"max_file_size_mb,omitempty" validate:"omitempty,min=1"`
}

func NewDefaultWalkerConfig() WalkerConfig {
	return WalkerConfig{
		Recursive:     true,
		MaxFileSizeMB: DefaultWalkerMaxFileSizeMB,
	}
}

// ReporterConfig holds configuration for report rendering.
type ReporterConfig struct {
	OutputPath string `json:"output_path,omitempty" yaml:"output_path,omitempty"`
	Format     string `json:"format,omitempty" yaml:"format,omitempty" validate:"omitempty,reportformat"`
}

func NewDefaultReporterConfig() ReporterConfig {
	return ReporterConfig{}
}

// StorageConfig holds configuration for the optional Parquet findings
// archive. Disabled by default: the engine itself keeps no state between
// invocations.
type StorageConfig struct {
	Enabled          bool   `json:"enabled" yaml:"enabled"`
	ParquetBasePath  string `json:"parquet_base_path,omitempty" yaml:"parquet_base_path,omitempty"`
	CompressionCodec string `json:"compression_codec,omitempty" yaml:"compression_codec,omitempty"`
}

func NewDefaultStorageConfig() StorageConfig {
	return StorageConfig{
		Enabled:          false,
		ParquetBasePath:  DefaultStorageParquetBasePath,
		CompressionCodec: DefaultStorageCompressionCodec,
	}
}

// LogConfig holds configuration for the zerolog logger.
type LogConfig struct {
	LogLevel      string `json:"log_level,omitempty" yaml:"log_level,omitempty" validate:"omitempty,loglevel"`
	LogFormat     string `json:"log_format,omitempty" yaml:"log_format,omitempty" validate:"omitempty,logformat"`
	LogFile       string `json:"log_file,omitempty" yaml:"log_file,omitempty"`
	MaxLogSizeMB  int    `json:"max_log_size_mb,omitempty" yaml:"max_log_size_mb,omitempty" validate:"omitempty,min=1"`
	MaxLogBackups int    `json:"max_log_backups,omitempty" yaml:"max_log_backups,omitempty" validate:"omitempty,min=0"`
}

func NewDefaultLogConfig() LogConfig {
	return LogConfig{
		LogLevel:      DefaultLogLevel,
		LogFormat:     DefaultLogFormat,
		MaxLogSizeMB:  DefaultMaxLogSizeMB,
		MaxLogBackups: DefaultMaxLogBackups,
	}
}
