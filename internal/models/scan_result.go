package models

import "time"

// ScanStage names the step of the per-file pipeline a failure occurred in.
type ScanStage string

const (
	StagePending    ScanStage = "pending"
	StageTokenizing ScanStage = "tokenizing"
	StageDetecting  ScanStage = "detecting"
	StageDeduping   ScanStage = "deduping"
	StageFiltering  ScanStage = "filtering"
	StageDone       ScanStage = "done"
	StageFailed     ScanStage = "failed"
)

// ScanFailure records one file that could not be scanned. Failures are data,
// not errors: one bad file never aborts the run.
type ScanFailure struct {
	Path  string    `json:"path"`
	Stage ScanStage `json:"stage"`
	Error string    `json:"error"`
}

// ScanSummary aggregates counts over one scan invocation. It is always
// reported, even when no secrets were found.
type ScanSummary struct {
	FilesScanned    int                `json:"files_scanned"`
	FilesSkipped    int                `json:"files_skipped"`
	FilesFailed     int                `json:"files_failed"`
	TotalFindings   int                `json:"total_findings"`
	SuppressedCount int                `json:"suppressed_count"`
	ByDetector      map[Detector]int   `json:"by_detector"`
	BySecretType    map[SecretType]int `json:"by_secret_type"`

	// Duration is wall-clock time and varies run to run, so it stays out of
	// the serialized result; the completion log line reports it instead.
	Duration time.Duration `json:"-"`
}

// NewScanSummary returns a summary with allocated count maps.
func NewScanSummary() ScanSummary {
	return ScanSummary{
		ByDetector:   make(map[Detector]int),
		BySecretType: make(map[SecretType]int),
	}
}

// ScanResult is the aggregate handed to the reporting collaborator. Findings
// are ordered by path, then line, then column, and timing stays out of the
// serialized form, so repeated scans of an unmodified tree render
// byte-identical results.
type ScanResult struct {
	Findings []Finding     `json:"findings"`
	Failures []ScanFailure `json:"failures,omitempty"`
	Summary  ScanSummary   `json:"summary"`
}

// HasFindingsAbove reports whether any finding meets the given confidence
// floor. The CLI exit code is derived from this.
func (r *ScanResult) HasFindingsAbove(floor float64) bool {
	for _, f := range r.Findings {
		if f.Confidence >= floor {
			return true
		}
	}
	return false
}
