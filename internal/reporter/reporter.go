package reporter

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/aleister1102/leakscout/internal/common/errorwrapper"
	"github.com/aleister1102/leakscout/internal/config"
	"github.com/aleister1102/leakscout/internal/models"

	"github.com/olekukonko/tablewriter"
	"github.com/rs/zerolog"
)

// Reporter renders a ScanResult as text, JSON, or CSV. The engine itself is
// format-agnostic; this is the reporting collaborator the CLI wires in.
type Reporter struct {
	cfg    config.ReporterConfig
	logger zerolog.Logger
}

// NewReporter creates a reporter from its configuration.
func NewReporter(cfg config.ReporterConfig, logger zerolog.Logger) *Reporter {
	return &Reporter{
		cfg:    cfg,
		logger: logger.With().Str("component", "Reporter").Logger(),
	}
}

// Report writes the result to the configured output path, or stdout when no
// path is set. The format comes from the config, falling back to the output
// file extension, falling back to text.
func (r *Reporter) Report(result *models.ScanResult) error {
	out := io.Writer(os.Stdout)
	if r.cfg.OutputPath != "" {
		file, err := os.Create(r.cfg.OutputPath)
		if err != nil {
			return errorwrapper.WrapError(err, "failed to create output file "+r.cfg.OutputPath)
		}
		defer file.Close()
		out = file
	}

	var err error
	switch r.format() {
	case "json":
		err = r.renderJSON(out, result)
	case "csv":
		err = r.renderCSV(out, result)
	default:
		err = r.renderText(out, result)
	}
	if err != nil {
		return err
	}

	if r.cfg.OutputPath != "" {
		r.logger.Info().Str("path", r.cfg.OutputPath).Msg("Report written")
	}
	return nil
}

func (r *Reporter) format() string {
	if r.cfg.Format != "" {
		return strings.ToLower(r.cfg.Format)
	}
	switch strings.ToLower(filepath.Ext(r.cfg.OutputPath)) {
	case ".json":
		return "json"
	case ".csv":
		return "csv"
	default:
		return "text"
	}
}

// renderText prints a findings table followed by the summary. The summary is
// always printed, even for zero findings: a silent report on a nonzero file
// count would itself hide a broken pipeline.
func (r *Reporter) renderText(w io.Writer, result *models.ScanResult) error {
	if len(result.Findings) > 0 {
		table := tablewriter.NewWriter(w)
		table.SetHeader([]string{"File", "Line", "Span", "Detector", "Rule", "Type", "Confidence", "Match"})
		table.SetAutoWrapText(false)
		for _, f := range result.Findings {
			table.Append([]string{
				f.Path,
				strconv.Itoa(f.LineNumber),
				fmt.Sprintf("%d-%d", f.StartColumn, f.EndColumn),
				string(f.Detector),
				f.RuleName,
				string(f.SecretType),
				fmt.Sprintf("%.2f", f.Confidence),
				f.Redacted(),
			})
		}
		table.Render()
	}

	if len(result.Failures) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Failed files:")
		for _, failure := range result.Failures {
			fmt.Fprintf(w, "  %s (%s): %s\n", failure.Path, failure.Stage, failure.Error)
		}
	}

	s := result.Summary
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Scanned %d files (%d skipped, %d failed)\n", s.FilesScanned, s.FilesSkipped, s.FilesFailed)
	if s.TotalFindings == 0 {
		fmt.Fprintf(w, "No secrets found (%d suppressed by allowlist)\n", s.SuppressedCount)
		return nil
	}
	fmt.Fprintf(w, "%d findings (%d signature, %d entropy), %d suppressed by allowlist\n",
		s.TotalFindings, s.ByDetector[models.DetectorSignature], s.ByDetector[models.DetectorEntropy], s.SuppressedCount)
	return nil
}

func (r *Reporter) renderJSON(w io.Writer, result *models.ScanResult) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(result); err != nil {
		return errorwrapper.WrapError(err, "failed to encode JSON report")
	}
	return nil
}

func (r *Reporter) renderCSV(w io.Writer, result *models.ScanResult) error {
	writer := csv.NewWriter(w)
	header := []string{"path", "line", "start_column", "end_column", "detector", "rule_name", "secret_type", "confidence", "matched_text"}
	if err := writer.Write(header); err != nil {
		return errorwrapper.WrapError(err, "failed to write CSV header")
	}
	for _, f := range result.Findings {
		row := []string{
			f.Path,
			strconv.Itoa(f.LineNumber),
			strconv.Itoa(f.StartColumn),
			strconv.Itoa(f.EndColumn),
			string(f.Detector),
			f.RuleName,
			string(f.SecretType),
			strconv.FormatFloat(f.Confidence, 'f', 2, 64),
			f.Redacted(),
		}
		if err := writer.Write(row); err != nil {
			return errorwrapper.WrapError(err, "failed to write CSV row")
		}
	}
	writer.Flush()
	return writer.Error()
}
