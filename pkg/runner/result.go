package runner

import (
	"github.com/yaklabco/selwalk/pkg/config"
	"github.com/yaklabco/selwalk/pkg/lint"
)

// FileOutcome is the result of one file.
type FileOutcome struct {
	// Path is the file path that was processed.
	Path string

	// Result is nil when the file could not be read or parsed.
	Result *lint.FileResult

	// Error is set if the file could not be processed.
	Error error
}

// Stats captures aggregate information about a run.
type Stats struct {
	FilesDiscovered int
	FilesProcessed  int
	FilesErrored    int
	FilesWithIssues int

	DiagnosticsTotal      int
	DiagnosticsBySeverity map[config.Severity]int

	// RuleErrors counts isolated callback failures across all files.
	RuleErrors int
}

// Result is the overall runner result.
type Result struct {
	// Files are ordered by path.
	Files []FileOutcome

	Stats Stats
}

// HasFailures reports whether any error-severity diagnostic occurred.
func (r *Result) HasFailures() bool {
	if r == nil {
		return false
	}
	return r.Stats.DiagnosticsBySeverity[config.SeverityError] > 0
}

// HasIssues reports whether any diagnostics were found.
func (r *Result) HasIssues() bool {
	if r == nil {
		return false
	}
	return r.Stats.DiagnosticsTotal > 0
}

// FileResults returns the successful per-file results in order.
func (r *Result) FileResults() []*lint.FileResult {
	out := make([]*lint.FileResult, 0, len(r.Files))
	for _, f := range r.Files {
		if f.Result != nil {
			out = append(out, f.Result)
		}
	}
	return out
}

func newStats() Stats {
	return Stats{DiagnosticsBySeverity: make(map[config.Severity]int)}
}

func (r *Result) accumulate(outcome FileOutcome) {
	r.Files = append(r.Files, outcome)

	if outcome.Error != nil {
		r.Stats.FilesErrored++
		return
	}
	if outcome.Result == nil {
		return
	}

	r.Stats.FilesProcessed++
	r.Stats.RuleErrors += len(outcome.Result.RuleErrors)

	diags := outcome.Result.Diagnostics
	r.Stats.DiagnosticsTotal += len(diags)
	if len(diags) > 0 {
		r.Stats.FilesWithIssues++
	}
	for _, d := range diags {
		sev := d.Severity
		if sev == "" {
			sev = config.SeverityWarning
		}
		r.Stats.DiagnosticsBySeverity[sev]++
	}
}
