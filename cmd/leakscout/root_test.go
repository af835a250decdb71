package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aleister1102/leakscout/internal/config"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// parsedCmd builds the root command and parses the given flags without
// running the scan. Flag variables are rebound to their defaults by
// newRootCmd, so tests do not leak state into each other.
func parsedCmd(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	cmd := newRootCmd()
	require.NoError(t, cmd.Flags().Parse(args))
	return cmd
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestBuildConfig_UnsetFlagsKeepFileValues(t *testing.T) {
	path := writeConfig(t, `walker_config:
  recursive: false
  exclude_patterns:
    - 'vendor/'
scanner_config:
  worker_count: 3
  timeout_seconds: 45
reporter_config:
  format: json
allowlist_config: {}
`)
	cmd := parsedCmd(t, "--config", path)

	cfg, err := buildConfig(cmd)
	require.NoError(t, err)

	// Flag defaults (recursive=true, workers=0, ...) must not clobber what
	// the file configured.
	assert.False(t, cfg.WalkerConfig.Recursive)
	assert.Equal(t, []string{"vendor/"}, cfg.WalkerConfig.ExcludePatterns)
	assert.Equal(t, 3, cfg.ScannerConfig.WorkerCount)
	assert.Equal(t, 45, cfg.ScannerConfig.TimeoutSeconds)
	assert.Equal(t, "json", cfg.ReporterConfig.Format)
}

func TestBuildConfig_SetFlagsOverrideFileValues(t *testing.T) {
	path := writeConfig(t, `walker_config:
  recursive: false
scanner_config:
  worker_count: 3
reporter_config:
  format: json
`)
	cmd := parsedCmd(t, "--config", path, "--recursive=true", "--workers", "7", "--format", "csv", "--exclude", `\.log$`)

	cfg, err := buildConfig(cmd)
	require.NoError(t, err)

	assert.True(t, cfg.WalkerConfig.Recursive)
	assert.Equal(t, 7, cfg.ScannerConfig.WorkerCount)
	assert.Equal(t, "csv", cfg.ReporterConfig.Format)
	assert.Equal(t, []string{`\.log$`}, cfg.WalkerConfig.ExcludePatterns)
}

func TestBuildConfig_FlagExcludesAppendToFileExcludes(t *testing.T) {
	path := writeConfig(t, `walker_config:
  exclude_patterns:
    - 'vendor/'
`)
	cmd := parsedCmd(t, "--config", path, "--exclude", `\.log$`)

	cfg, err := buildConfig(cmd)
	require.NoError(t, err)
	assert.Equal(t, []string{"vendor/", `\.log$`}, cfg.WalkerConfig.ExcludePatterns)
}

func TestBuildConfig_DefaultsWithoutFile(t *testing.T) {
	cmd := parsedCmd(t)

	cfg, err := buildConfig(cmd)
	require.NoError(t, err)
	assert.True(t, cfg.WalkerConfig.Recursive)
	assert.Equal(t, config.DefaultScannerWorkerCount, cfg.ScannerConfig.WorkerCount)
}

func TestScanContext(t *testing.T) {
	cfg := config.NewDefaultGlobalConfig()
	cfg.ScannerConfig.TimeoutSeconds = 30

	ctx, cancel := scanContext(context.Background(), cfg)
	defer cancel()

	deadline, ok := ctx.Deadline()
	require.True(t, ok, "configured timeout did not set a deadline on the shared context")
	assert.WithinDuration(t, time.Now().Add(30*time.Second), deadline, 2*time.Second)
}

func TestScanContext_NoTimeout(t *testing.T) {
	cfg := config.NewDefaultGlobalConfig()
	cfg.ScannerConfig.TimeoutSeconds = 0

	ctx, cancel := scanContext(context.Background(), cfg)
	defer cancel()

	_, ok := ctx.Deadline()
	assert.False(t, ok)
}
