package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aleister1102/leakscout/internal/config"
	"github.com/aleister1102/leakscout/internal/datastore"
	"github.com/aleister1102/leakscout/internal/logger"
	"github.com/aleister1102/leakscout/internal/models"
	"github.com/aleister1102/leakscout/internal/reporter"
	"github.com/aleister1102/leakscout/internal/scanner"
	"github.com/aleister1102/leakscout/internal/walker"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// Exit codes of the scan command.
const (
	exitNoFindings  = 0
	exitFindings    = 1
	exitConfigError = 2
)

var (
	configFileFlag string
	recursiveFlag  bool
	excludeFlags   []string
	outputFlag     string
	formatFlag     string
	rulesFlag      []string
	allowlistFlag  string
	verboseFlag    bool
	workersFlag    int
	timeoutFlag    int
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "leakscout <path>",
		Short:         "Scan a source tree for accidentally committed secrets",
		Long:          "leakscout scans a source tree for accidentally committed secrets by\ncombining signature pattern matching with Shannon-entropy analysis.",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan(cmd, args[0])
		},
	}

	cmd.Flags().StringVarP(&configFileFlag, "config", "c", "", "path to the YAML/JSON configuration file")
	cmd.Flags().BoolVarP(&recursiveFlag, "recursive", "r", true, "scan directories recursively")
	cmd.Flags().StringArrayVarP(&excludeFlags, "exclude", "x", nil, "exclude files matching regex (can be repeated)")
	cmd.Flags().StringVarP(&outputFlag, "output", "o", "", "write the report to a file instead of stdout")
	cmd.Flags().StringVarP(&formatFlag, "format", "f", "", "report format: text, json or csv (default inferred from output extension)")
	cmd.Flags().StringSliceVar(&rulesFlag, "rules", nil, "restrict signature detection to the named rules (\"*\" for all)")
	cmd.Flags().StringVar(&allowlistFlag, "allowlist", "", "path to the allowlist file")
	cmd.Flags().BoolVarP(&verboseFlag, "verbose", "v", false, "enable debug logging")
	cmd.Flags().IntVar(&workersFlag, "workers", 0, "number of parallel scan workers (default from config)")
	cmd.Flags().IntVar(&timeoutFlag, "timeout", 0, "wall-time budget for the whole scan in seconds (0 = unlimited)")

	return cmd
}

// Execute runs the root command and maps its outcome to the exit-code
// contract: 0 clean scan, 1 findings present, 2 fatal configuration or
// input error.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := newRootCmd().ExecuteContext(ctx)
	switch {
	case err == nil:
		return exitNoFindings
	case errors.Is(err, errFindingsPresent):
		return exitFindings
	default:
		fmt.Fprintln(os.Stderr, "Error:", err)
		return exitConfigError
	}
}

// errFindingsPresent signals a successful scan that found secrets; it exists
// only to carry exit code 1 out of cobra.
var errFindingsPresent = errors.New("findings present")

func runScan(cmd *cobra.Command, root string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	// The wall-time budget goes on the context shared by the walker and the
	// scan workers, so hitting the deadline stops file reads too, not just
	// detection.
	ctx, cancel := scanContext(cmd.Context(), cfg)
	defer cancel()

	zLogger, err := logger.New(cfg.LogConfig)
	if err != nil {
		return err
	}
	if verboseFlag {
		zLogger = zLogger.Level(zerolog.DebugLevel)
	}

	if err := config.ValidateConfig(cfg); err != nil {
		return err
	}

	scan, err := scanner.NewScanner(cfg, zLogger)
	if err != nil {
		return err
	}

	walk, err := walker.NewWalker(cfg.WalkerConfig, zLogger)
	if err != nil {
		return err
	}

	records := make(chan models.FileRecord, 64)
	walkErr := make(chan error, 1)
	go func() {
		walkErr <- walk.Walk(ctx, root, records)
	}()

	result, err := scan.ScanTree(ctx, records)
	if err != nil {
		return err
	}
	if err := <-walkErr; err != nil {
		return err
	}

	if cfg.StorageConfig.Enabled {
		store, err := datastore.NewFindingsStore(cfg.StorageConfig, zLogger)
		if err != nil {
			return err
		}
		if err := store.StoreFindings(ctx, result.Findings); err != nil {
			zLogger.Error().Err(err).Msg("Failed to archive findings")
		}
	}

	if err := reporter.NewReporter(cfg.ReporterConfig, zLogger).Report(result); err != nil {
		return err
	}

	if result.HasFindingsAbove(cfg.ScannerConfig.ReportingFloor) {
		return errFindingsPresent
	}
	return nil
}

// scanContext derives the context governing the whole scan, applying the
// configured wall-time budget when one is set.
func scanContext(ctx context.Context, cfg *config.GlobalConfig) (context.Context, context.CancelFunc) {
	if cfg.ScannerConfig.TimeoutSeconds > 0 {
		return context.WithTimeout(ctx, time.Duration(cfg.ScannerConfig.TimeoutSeconds)*time.Second)
	}
	return context.WithCancel(ctx)
}

// buildConfig loads the config file and applies command-line overrides on
// top of it. Only flags the user actually set win over file values; an
// untouched flag default never clobbers a configured one.
func buildConfig(cmd *cobra.Command) (*config.GlobalConfig, error) {
	cfg, err := config.LoadGlobalConfig(configFileFlag)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("recursive") {
		cfg.WalkerConfig.Recursive = recursiveFlag
	}
	if flags.Changed("exclude") {
		cfg.WalkerConfig.ExcludePatterns = append(cfg.WalkerConfig.ExcludePatterns, excludeFlags...)
	}
	if flags.Changed("output") {
		cfg.ReporterConfig.OutputPath = outputFlag
	}
	if flags.Changed("format") {
		cfg.ReporterConfig.Format = formatFlag
	}
	if flags.Changed("rules") {
		cfg.ScannerConfig.EnabledRuleNames = rulesFlag
	}
	if flags.Changed("allowlist") {
		cfg.AllowlistConfig.Path = allowlistFlag
	}
	if flags.Changed("workers") {
		cfg.ScannerConfig.WorkerCount = workersFlag
	}
	if flags.Changed("timeout") {
		cfg.ScannerConfig.TimeoutSeconds = timeoutFlag
	}
	return cfg, nil
}
