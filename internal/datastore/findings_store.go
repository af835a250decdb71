package datastore

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"

	"github.com/aleister1102/leakscout/internal/common/errorwrapper"
	"github.com/aleister1102/leakscout/internal/config"
	"github.com/aleister1102/leakscout/internal/models"

	"github.com/parquet-go/parquet-go"
	"github.com/rs/zerolog"
)

// FindingsStore archives scan findings to Parquet files. The archive is an
// optional, append-only record of past scans; the detection engine itself
// never reads it back during a scan.
type FindingsStore struct {
	config config.StorageConfig
	logger zerolog.Logger
}

// NewFindingsStore creates a new FindingsStore.
func NewFindingsStore(cfg config.StorageConfig, logger zerolog.Logger) (*FindingsStore, error) {
	if cfg.ParquetBasePath == "" {
		return nil, errorwrapper.NewValidationError("parquet_base_path", cfg.ParquetBasePath, "ParquetBasePath is not configured for the findings archive")
	}
	return &FindingsStore{
		config: cfg,
		logger: logger.With().Str("component", "FindingsStore").Logger(),
	}, nil
}

// StoreFindings appends a slice of findings to the Parquet archive.
func (fs *FindingsStore) StoreFindings(ctx context.Context, findings []models.Finding) error {
	if len(findings) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	filePath, err := fs.prepareOutputFile()
	if err != nil {
		return err
	}

	if err := fs.writeToParquetFile(filePath, findings); err != nil {
		return err
	}

	fs.logger.Info().Str("file_path", filePath).Int("records_written", len(findings)).Msg("Wrote findings to Parquet archive")
	return nil
}

func (fs *FindingsStore) prepareOutputFile() (string, error) {
	findingsDir := filepath.Join(fs.config.ParquetBasePath, "findings")
	if err := os.MkdirAll(findingsDir, 0755); err != nil {
		return "", errorwrapper.WrapError(err, "failed to create findings Parquet directory: "+findingsDir)
	}
	return filepath.Join(findingsDir, "findings.parquet"), nil
}

func (fs *FindingsStore) writeToParquetFile(filePath string, findings []models.Finding) error {
	file, err := os.OpenFile(filePath, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0644)
	if err != nil {
		return errorwrapper.WrapError(err, "failed to open findings parquet file: "+filePath)
	}
	defer file.Close()

	writer := parquet.NewGenericWriter[models.Finding](file, parquet.Compression(&parquet.Zstd))

	if _, err = writer.Write(findings); err != nil {
		_ = writer.Close()
		return errorwrapper.WrapError(err, "failed to write findings to parquet file")
	}

	return writer.Close()
}

// LoadFindings reads all archived findings back, in batches.
func (fs *FindingsStore) LoadFindings(ctx context.Context) ([]models.Finding, error) {
	filePath, err := fs.prepareOutputFile()
	if err != nil {
		return nil, err
	}

	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return []models.Finding{}, nil
	}

	file, err := os.Open(filePath)
	if err != nil {
		return nil, errorwrapper.WrapError(err, "failed to open findings parquet file for reading: "+filePath)
	}
	defer file.Close()

	reader := parquet.NewGenericReader[models.Finding](file)
	defer reader.Close()

	findings := make([]models.Finding, 0)
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		batch := make([]models.Finding, 100)
		n, err := reader.Read(batch)
		if n > 0 {
			findings = append(findings, batch[:n]...)
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, errorwrapper.WrapError(err, "failed to read findings from parquet file")
		}
	}

	fs.logger.Debug().Int("records_read", len(findings)).Str("file_path", filePath).Msg("Loaded archived findings")
	return findings, nil
}
