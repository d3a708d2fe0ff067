// Package scoring defines the wire-level Data Transfer Objects shared by the
// HTTP service, the batch sinks and the CLI's JSON output. No scoring logic
// lives here; only plain data types that any layer may import.
package scoring

import (
	"strconv"

	"github.com/turtacn/dockrmsd/pkg/types/common"
)

// ─────────────────────────────────────────────────────────────────────────────
// ItemStatus: outcome of one batch job
// ─────────────────────────────────────────────────────────────────────────────

// ItemStatus classifies how a single (reference, candidate) job ended.
type ItemStatus string

const (
	// StatusOK means an RMSD was produced.
	StatusOK ItemStatus = "OK"

	// StatusFailed means a typed scoring error ended the job.
	StatusFailed ItemStatus = "FAILED"

	// StatusTimeout means the per-item deadline expired first.
	StatusTimeout ItemStatus = "TIMEOUT"

	// StatusCancelled means the whole run was cancelled before the job
	// finished.
	StatusCancelled ItemStatus = "CANCELLED"
)

// IsValid reports whether s is one of the known statuses.
func (s ItemStatus) IsValid() bool {
	switch s {
	case StatusOK, StatusFailed, StatusTimeout, StatusCancelled:
		return true
	}
	return false
}

// ─────────────────────────────────────────────────────────────────────────────
// Score response
// ─────────────────────────────────────────────────────────────────────────────

// MappingEntry is one reference→candidate atom correspondence.
type MappingEntry struct {
	ReferenceSerial int     `json:"reference_serial"`
	CandidateSerial int     `json:"candidate_serial"`
	Element         string  `json:"element"`
	Distance        float64 `json:"distance"`
	// Renumbered is true when the two atoms carry different file serials.
	Renumbered bool `json:"renumbered"`
}

// CrossCheckSummary compares the in-process RMSD with the external
// DockRMSD executable for the same pair.
type CrossCheckSummary struct {
	ReferenceRMSD float64 `json:"reference_rmsd"`
	Delta         float64 `json:"delta"`
	Tolerance     float64 `json:"tolerance"`
	Agree         bool    `json:"agree"`
	// ToolError carries the error line DockRMSD printed, if any.
	ToolError string `json:"tool_error,omitempty"`
}

// ScoreResponse is the payload of POST /api/v1/score and of `score -o json`.
type ScoreResponse struct {
	Reference  string             `json:"reference"`
	Candidate  string             `json:"candidate"`
	AtomCount  int                `json:"atom_count"`
	RMSD       float64            `json:"rmsd"`
	NaiveRMSD  float64            `json:"naive_rmsd"`
	Renumbered int                `json:"renumbered"`
	Mapping    []MappingEntry     `json:"mapping,omitempty"`
	Cached     bool               `json:"cached,omitempty"`
	CrossCheck *CrossCheckSummary `json:"crosscheck,omitempty"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Batch record
// ─────────────────────────────────────────────────────────────────────────────

// BatchRecord is one output row of a batch run. RMSD is nil unless Status is
// StatusOK.
type BatchRecord struct {
	RunID      string             `json:"run_id"`
	Target     string             `json:"target"`
	Reference  string             `json:"reference"`
	Candidate  string             `json:"candidate"`
	Protein    string             `json:"protein,omitempty"`
	Status     ItemStatus         `json:"status"`
	RMSD       *float64           `json:"rmsd,omitempty"`
	AtomCount  int                `json:"atom_count,omitempty"`
	Renumbered int                `json:"renumbered,omitempty"`
	ErrorCode  string             `json:"error_code,omitempty"`
	Error      string             `json:"error,omitempty"`
	DurationMS int64              `json:"duration_ms"`
	Cached     bool               `json:"cached,omitempty"`
	CrossCheck *CrossCheckSummary `json:"crosscheck,omitempty"`
	FinishedAt common.Timestamp   `json:"finished_at"`
}

// CSVHeader returns the column names written by CSVRow, in order.
func CSVHeader() []string {
	return []string{
		"run_id", "target", "reference", "candidate", "protein", "status",
		"rmsd", "atom_count", "renumbered", "error_code", "error",
		"duration_ms", "cached", "reference_rmsd", "crosscheck_agree",
	}
}

// CSVRow flattens r into CSVHeader order. Absent values are empty cells.
func (r BatchRecord) CSVRow() []string {
	rmsd, refRMSD, agree := "", "", ""
	if r.RMSD != nil {
		rmsd = formatFloat(*r.RMSD)
	}
	if r.CrossCheck != nil {
		refRMSD = formatFloat(r.CrossCheck.ReferenceRMSD)
		agree = strconv.FormatBool(r.CrossCheck.Agree)
	}
	return []string{
		r.RunID,
		r.Target,
		r.Reference,
		r.Candidate,
		r.Protein,
		string(r.Status),
		rmsd,
		strconv.Itoa(r.AtomCount),
		strconv.Itoa(r.Renumbered),
		r.ErrorCode,
		r.Error,
		strconv.FormatInt(r.DurationMS, 10),
		strconv.FormatBool(r.Cached),
		refRMSD,
		agree,
	}
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', 6, 64)
}

// BatchSummary totals a finished run.
type BatchSummary struct {
	RunID     string           `json:"run_id"`
	Targets   int              `json:"targets"`
	Jobs      int              `json:"jobs"`
	Succeeded int              `json:"succeeded"`
	Failed    int              `json:"failed"`
	TimedOut  int              `json:"timed_out"`
	Cancelled int              `json:"cancelled"`
	Output    string           `json:"output,omitempty"`
	ObjectKey string           `json:"object_key,omitempty"`
	StartedAt common.Timestamp `json:"started_at"`
	EndedAt   common.Timestamp `json:"ended_at"`
}

// Add counts one record into s.
func (s *BatchSummary) Add(r BatchRecord) {
	s.Jobs++
	switch r.Status {
	case StatusOK:
		s.Succeeded++
	case StatusTimeout:
		s.TimedOut++
	case StatusCancelled:
		s.Cancelled++
	default:
		s.Failed++
	}
}

//Personal.AI order the ending
