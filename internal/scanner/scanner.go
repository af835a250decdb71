package scanner

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/aleister1102/leakscout/internal/allowlist"
	"github.com/aleister1102/leakscout/internal/common/errorwrapper"
	"github.com/aleister1102/leakscout/internal/config"
	"github.com/aleister1102/leakscout/internal/dedupe"
	"github.com/aleister1102/leakscout/internal/entropy"
	"github.com/aleister1102/leakscout/internal/models"
	"github.com/aleister1102/leakscout/internal/registry"
	"github.com/aleister1102/leakscout/internal/tokenizer"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Scanner drives the per-file pipeline: tokenize, run both detectors, dedupe,
// filter through the allowlist, emit. The registry and allowlist are built
// once at construction and shared read-only across all workers; everything
// per-file is exclusively owned by the worker scanning that file.
type Scanner struct {
	cfg       *config.GlobalConfig
	logger    zerolog.Logger
	tokenizer *tokenizer.Tokenizer
	registry  *registry.Registry
	analyzer  *entropy.Analyzer
	allowlist *allowlist.Allowlist
}

// NewScanner builds a scanner from an immutable configuration value. All
// configuration problems (bad rule regex, duplicate rule names, unreadable
// allowlist path) are fatal here, before any file is touched. A recoverable
// allowlist parse error (some entries malformed) is logged and scanning
// proceeds with the well-formed entries.
func NewScanner(cfg *config.GlobalConfig, logger zerolog.Logger) (*Scanner, error) {
	componentLogger := logger.With().Str("component", "Scanner").Logger()

	reg, err := registry.NewRegistry(logger,
		registry.WithCustomRuleFile(cfg.ScannerConfig.CustomRulePatternsFile),
		registry.WithEnabledRules(cfg.ScannerConfig.EnabledRuleNames),
	)
	if err != nil {
		return nil, errorwrapper.WrapError(err, "failed to build pattern registry")
	}

	var allow *allowlist.Allowlist
	if cfg.AllowlistConfig.Path != "" {
		allow, err = allowlist.Load(cfg.AllowlistConfig.Path)
		if err != nil {
			var parseErr *allowlist.ParseError
			if errors.As(err, &parseErr) {
				componentLogger.Warn().Int("skipped_entries", len(parseErr.Problems)).Str("file", cfg.AllowlistConfig.Path).Msg("Allowlist loaded with malformed entries skipped")
			} else {
				return nil, errorwrapper.WrapError(err, "failed to load allowlist")
			}
		}
		componentLogger.Debug().Int("entries", allow.Len()).Str("file", cfg.AllowlistConfig.Path).Msg("Allowlist loaded")
	}

	return &Scanner{
		cfg:       cfg,
		logger:    componentLogger,
		tokenizer: tokenizer.NewTokenizer(),
		registry:  reg,
		analyzer:  entropy.NewAnalyzer(cfg.EntropyConfig, logger),
		allowlist: allow,
	}, nil
}

// Registry exposes the compiled rule set, mainly for the CLI to list rules.
func (s *Scanner) Registry() *registry.Registry {
	return s.registry
}

// fileOutcome is what one worker hands to the accumulator for one file.
type fileOutcome struct {
	findings   []models.Finding
	suppressed int
	failure    *models.ScanFailure
	skipped    bool
}

// ScanFile runs the full pipeline on one file's content and returns the
// surviving findings. Errors are unrecoverable for this file only.
func (s *Scanner) ScanFile(path string, content []byte) ([]models.Finding, error) {
	outcome := s.scanFile(path, content)
	if outcome.failure != nil {
		return nil, errorwrapper.NewError("scan of %s failed at stage %s: %s", path, outcome.failure.Stage, outcome.failure.Error)
	}
	return outcome.findings, nil
}

func (s *Scanner) scanFile(path string, content []byte) fileOutcome {
	// Tokenization is the only stage that can fail once content is in hand;
	// detection, dedupe, and filtering are pure transformations. Read
	// failures are recorded by the traversal collaborator at StagePending.
	units, err := s.tokenizer.Tokenize(path, content)
	if err != nil {
		return fileOutcome{failure: &models.ScanFailure{Path: path, Stage: models.StageTokenizing, Error: err.Error()}}
	}

	lineContent := make(map[int]string, len(units))
	byLine := make(map[int][]models.Finding)
	for _, unit := range units {
		lineContent[unit.LineNumber] = unit.Content
		// The detectors are independent; order between them carries no
		// meaning and the deduplicator resolves any overlap.
		for _, f := range s.registry.Match(unit) {
			byLine[f.LineNumber] = append(byLine[f.LineNumber], f)
		}
		for _, f := range s.analyzer.Analyze(unit) {
			byLine[f.LineNumber] = append(byLine[f.LineNumber], f)
		}
	}

	lines := make([]int, 0, len(byLine))
	for line := range byLine {
		lines = append(lines, line)
	}
	sort.Ints(lines)

	var survivors []models.Finding
	suppressed := 0
	for _, line := range lines {
		for _, f := range dedupe.Dedupe(byLine[line]) {
			if s.allowlist.ShouldSuppress(f, lineContent[line]) {
				suppressed++
				continue
			}
			survivors = append(survivors, f)
		}
	}

	return fileOutcome{findings: survivors, suppressed: suppressed}
}

// ScanTree consumes a stream of file records from the traversal collaborator
// and accumulates all per-file findings into one ScanResult. Workers scan
// files in parallel; per-file failures become failure records, never fatal
// errors. The producer must close the channel when done and stop producing
// once ctx is cancelled, so that unscanned files can be drained and counted
// as skipped rather than silently dropped. Any wall-time budget must already
// be on ctx, shared with the producer: a deadline applied here alone would
// stop detection but leave the producer reading files.
func (s *Scanner) ScanTree(ctx context.Context, records <-chan models.FileRecord) (*models.ScanResult, error) {
	start := time.Now()

	workers := s.cfg.ScannerConfig.WorkerCount
	if workers < 1 {
		workers = config.DefaultScannerWorkerCount
	}

	result := &models.ScanResult{Summary: models.NewScanSummary()}
	var mu sync.Mutex

	group, groupCtx := errgroup.WithContext(ctx)
	for i := 0; i < workers; i++ {
		group.Go(func() error {
			for {
				// An in-flight file always finishes; cancellation only
				// prevents new files from starting.
				select {
				case <-groupCtx.Done():
					return nil
				case record, ok := <-records:
					if !ok {
						return nil
					}
					outcome := s.processRecord(record)
					mu.Lock()
					s.accumulate(result, outcome)
					mu.Unlock()
				}
			}
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}

	// Whatever the producer emitted after cancellation is reported as
	// skipped, not silently dropped.
	for range records {
		result.Summary.FilesSkipped++
	}

	s.finalize(result, start)

	s.logger.Info().
		Int("files_scanned", result.Summary.FilesScanned).
		Int("files_skipped", result.Summary.FilesSkipped).
		Int("files_failed", result.Summary.FilesFailed).
		Int("findings", result.Summary.TotalFindings).
		Int("suppressed", result.Summary.SuppressedCount).
		Dur("duration", result.Summary.Duration).
		Msg("Scan completed")

	return result, nil
}

func (s *Scanner) processRecord(record models.FileRecord) fileOutcome {
	if record.ReadError != "" {
		return fileOutcome{failure: &models.ScanFailure{Path: record.Path, Stage: models.StagePending, Error: record.ReadError}}
	}
	if record.IsBinary {
		s.logger.Debug().Str("path", record.Path).Msg("Skipping binary file")
		return fileOutcome{skipped: true}
	}
	outcome := s.scanFile(record.Path, record.Content)
	if outcome.failure != nil {
		s.logger.Warn().Str("path", record.Path).Str("stage", string(outcome.failure.Stage)).Str("error", outcome.failure.Error).Msg("File scan failed")
	}
	return outcome
}

// accumulate folds one file's outcome into the shared result. Caller holds
// the lock.
func (s *Scanner) accumulate(result *models.ScanResult, outcome fileOutcome) {
	switch {
	case outcome.skipped:
		result.Summary.FilesSkipped++
	case outcome.failure != nil:
		result.Summary.FilesFailed++
		result.Failures = append(result.Failures, *outcome.failure)
	default:
		result.Summary.FilesScanned++
		result.Summary.SuppressedCount += outcome.suppressed
		result.Findings = append(result.Findings, outcome.findings...)
	}
}

// finalize orders the aggregate deterministically and fills summary counts.
// Worker completion order varies run to run; the emitted result must not.
func (s *Scanner) finalize(result *models.ScanResult, start time.Time) {
	sort.SliceStable(result.Findings, func(i, j int) bool {
		a, b := result.Findings[i], result.Findings[j]
		if a.Path != b.Path {
			return a.Path < b.Path
		}
		if a.LineNumber != b.LineNumber {
			return a.LineNumber < b.LineNumber
		}
		return a.StartColumn < b.StartColumn
	})
	sort.SliceStable(result.Failures, func(i, j int) bool {
		return result.Failures[i].Path < result.Failures[j].Path
	})

	result.Summary.TotalFindings = len(result.Findings)
	for _, f := range result.Findings {
		result.Summary.ByDetector[f.Detector]++
		if f.SecretType != "" {
			result.Summary.BySecretType[f.SecretType]++
		}
	}
	result.Summary.Duration = time.Since(start)
}
