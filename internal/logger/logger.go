package logger

import (
	"io"
	stdlog "log" // Standard Go log package, aliased to avoid conflict with zerolog field
	"os"
	"strings"
	"time"

	"github.com/aleister1102/leakscout/internal/common/errorwrapper"
	"github.com/aleister1102/leakscout/internal/config"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// New creates a zerolog logger from the application log config.
func New(cfg config.LogConfig) (zerolog.Logger, error) {
	return NewLoggerBuilder().WithConfig(cfg).Build()
}

// LoggerBuilder provides fluent interface for building loggers
type LoggerBuilder struct {
	level      zerolog.Level
	format     string
	filePath   string
	maxSizeMB  int
	maxBackups int
}

// NewLoggerBuilder creates a new logger builder
func NewLoggerBuilder() *LoggerBuilder {
	return &LoggerBuilder{
		level:      zerolog.InfoLevel,
		format:     config.DefaultLogFormat,
		maxSizeMB:  config.DefaultMaxLogSizeMB,
		maxBackups: config.DefaultMaxLogBackups,
	}
}

// WithConfig sets the logger configuration
func (lb *LoggerBuilder) WithConfig(cfg config.LogConfig) *LoggerBuilder {
	lb.level = parseLevel(cfg.LogLevel)
	if cfg.LogFormat != "" {
		lb.format = strings.ToLower(cfg.LogFormat)
	}
	lb.filePath = cfg.LogFile
	if cfg.MaxLogSizeMB > 0 {
		lb.maxSizeMB = cfg.MaxLogSizeMB
	}
	if cfg.MaxLogBackups >= 0 {
		lb.maxBackups = cfg.MaxLogBackups
	}
	return lb
}

// WithLevel overrides the configured level, used by the verbose CLI flag.
func (lb *LoggerBuilder) WithLevel(level zerolog.Level) *LoggerBuilder {
	lb.level = level
	return lb
}

// Build creates the logger instance
func (lb *LoggerBuilder) Build() (zerolog.Logger, error) {
	writers := lb.createWriters()
	if len(writers) == 0 {
		return zerolog.Nop(), errorwrapper.NewError("no output writers configured")
	}

	multiWriter := zerolog.MultiLevelWriter(writers...)
	logger := zerolog.New(multiWriter).
		Level(lb.level).
		With().
		Timestamp().
		Logger()

	stdlog.SetOutput(logger)
	stdlog.SetFlags(0)

	return logger, nil
}

func (lb *LoggerBuilder) createWriters() []io.Writer {
	var writers []io.Writer

	switch lb.format {
	case "json":
		writers = append(writers, os.Stderr)
	case "text":
		writers = append(writers, zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339, NoColor: true})
	default:
		writers = append(writers, zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	if lb.filePath != "" {
		writers = append(writers, &lumberjack.Logger{
			Filename:   lb.filePath,
			MaxSize:    lb.maxSizeMB,
			MaxBackups: lb.maxBackups,
			Compress:   true,
		})
	}

	return writers
}

func parseLevel(levelStr string) zerolog.Level {
	level, err := zerolog.ParseLevel(strings.ToLower(levelStr))
	if err != nil {
		return zerolog.InfoLevel
	}
	return level
}
