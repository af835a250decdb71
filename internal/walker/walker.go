package walker

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"

	"github.com/aleister1102/leakscout/internal/common/errorwrapper"
	"github.com/aleister1102/leakscout/internal/config"
	"github.com/aleister1102/leakscout/internal/models"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"
)

// Walker produces the stream of file records the scan orchestrator consumes.
// It applies exclude patterns, size limits, and binary detection before a
// file ever reaches the detectors.
type Walker struct {
	cfg      config.WalkerConfig
	logger   zerolog.Logger
	excludes []*regexp.Regexp
	maxSize  int64
}

// NewWalker compiles the exclude patterns. An invalid pattern is a fatal
// configuration error.
func NewWalker(cfg config.WalkerConfig, logger zerolog.Logger) (*Walker, error) {
	w := &Walker{
		cfg:     cfg,
		logger:  logger.With().Str("component", "Walker").Logger(),
		maxSize: int64(cfg.MaxFileSizeMB) * 1024 * 1024,
	}
	if w.maxSize <= 0 {
		w.maxSize = int64(config.DefaultWalkerMaxFileSizeMB) * 1024 * 1024
	}

	for _, pattern := range cfg.ExcludePatterns {
		compiled, err := regexp.Compile(pattern)
		if err != nil {
			return nil, errorwrapper.NewError("invalid exclude pattern %q: %w", pattern, err)
		}
		w.excludes = append(w.excludes, compiled)
	}
	return w, nil
}

// Walk traverses root and sends one record per candidate file. The channel is
// closed when traversal finishes, and production stops promptly once ctx is
// cancelled so the consumer can drain and count the remainder as skipped.
// An unreadable or non-directory root fails before anything is sent.
func (w *Walker) Walk(ctx context.Context, root string, records chan<- models.FileRecord) error {
	defer close(records)

	info, err := os.Stat(root)
	if err != nil {
		return errorwrapper.WrapError(err, "cannot access scan root "+root)
	}
	if !info.IsDir() {
		return errorwrapper.NewValidationError("root", root, "scan root is not a directory")
	}

	if !w.cfg.Recursive {
		return w.walkFlat(ctx, root, records)
	}

	return filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if ctx.Err() != nil {
			return filepath.SkipAll
		}
		if err != nil {
			w.emit(ctx, records, models.FileRecord{Path: path, ReadError: err.Error()})
			if entry != nil && entry.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if entry.IsDir() {
			if entry.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		if !entry.Type().IsRegular() || w.isExcluded(path) {
			return nil
		}
		w.emit(ctx, records, w.loadRecord(path, entry))
		return nil
	})
}

func (w *Walker) walkFlat(ctx context.Context, root string, records chan<- models.FileRecord) error {
	entries, err := os.ReadDir(root)
	if err != nil {
		return errorwrapper.WrapError(err, "failed to list scan root "+root)
	}
	for _, entry := range entries {
		if ctx.Err() != nil {
			return nil
		}
		if entry.IsDir() || !entry.Type().IsRegular() {
			continue
		}
		path := filepath.Join(root, entry.Name())
		if w.isExcluded(path) {
			continue
		}
		w.emit(ctx, records, w.loadRecord(path, entry))
	}
	return nil
}

func (w *Walker) loadRecord(path string, entry fs.DirEntry) models.FileRecord {
	info, err := entry.Info()
	if err != nil {
		return models.FileRecord{Path: path, ReadError: err.Error()}
	}
	if info.Size() > w.maxSize {
		return models.FileRecord{Path: path, ReadError: errorwrapper.NewError("file size %d exceeds limit of %d bytes", info.Size(), w.maxSize).Error()}
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return models.FileRecord{Path: path, ReadError: err.Error()}
	}

	return models.FileRecord{
		Path:     path,
		Content:  content,
		IsBinary: isBinary(content),
	}
}

func (w *Walker) isExcluded(path string) bool {
	for _, pattern := range w.excludes {
		if pattern.MatchString(path) {
			w.logger.Debug().Str("path", path).Str("pattern", pattern.String()).Msg("Excluding file")
			return true
		}
	}
	return false
}

func (w *Walker) emit(ctx context.Context, records chan<- models.FileRecord, record models.FileRecord) {
	select {
	case records <- record:
	case <-ctx.Done():
	}
}

// isBinary reports whether content should be skipped before tokenization.
// Detection walks the MIME hierarchy: anything rooted in text/plain is
// scannable, everything else is treated as binary.
func isBinary(content []byte) bool {
	if len(content) == 0 {
		return false
	}
	detected := mimetype.Detect(content)
	for mtype := detected; mtype != nil; mtype = mtype.Parent() {
		if mtype.Is("text/plain") {
			return false
		}
	}
	return true
}
