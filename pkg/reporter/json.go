package reporter

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"

	"github.com/yaklabco/selwalk/pkg/runner"
)

// jsonVersion is bumped on incompatible changes to the JSON layout.
const jsonVersion = "1"

// JSONOutput is the top-level JSON structure.
type JSONOutput struct {
	Version string           `json:"version"`
	Files   []JSONFileResult `json:"files"`
	Summary JSONSummary      `json:"summary"`
}

// JSONFileResult represents a single file's results.
type JSONFileResult struct {
	Path        string            `json:"path"`
	Diagnostics []JSONDiagnostic  `json:"diagnostics"`
	RuleErrors  []JSONRuleFailure `json:"ruleErrors,omitempty"`
	Visited     int               `json:"visited"`
	Error       string            `json:"error,omitempty"`
}

// JSONDiagnostic represents a single diagnostic.
type JSONDiagnostic struct {
	RuleID      string `json:"ruleId"`
	Plugin      string `json:"plugin"`
	Rule        string `json:"rule"`
	Severity    string `json:"severity"`
	Message     string `json:"message"`
	NodeType    string `json:"nodeType,omitempty"`
	StartOffset int    `json:"startOffset"`
	EndOffset   int    `json:"endOffset"`
	StartLine   int    `json:"startLine"`
	StartColumn int    `json:"startColumn"`
	EndLine     int    `json:"endLine"`
	EndColumn   int    `json:"endColumn"`
	Suggestion  string `json:"suggestion,omitempty"`
}

// JSONRuleFailure represents an isolated rule failure.
type JSONRuleFailure struct {
	RuleID   string `json:"ruleId"`
	Phase    string `json:"phase"`
	Selector string `json:"selector,omitempty"`
	NodeType string `json:"nodeType,omitempty"`
	Message  string `json:"message"`
}

// JSONSummary contains aggregate statistics.
type JSONSummary struct {
	FilesChecked    int            `json:"filesChecked"`
	FilesWithIssues int            `json:"filesWithIssues"`
	FilesErrored    int            `json:"filesErrored"`
	TotalIssues     int            `json:"totalIssues"`
	RuleErrors      int            `json:"ruleErrors"`
	BySeverity      map[string]int `json:"bySeverity"`
}

// JSONReporter formats results as JSON.
type JSONReporter struct {
	opts Options
	bw   *bufio.Writer
}

// NewJSONReporter creates a new JSON reporter.
func NewJSONReporter(opts Options) *JSONReporter {
	return &JSONReporter{
		opts: opts,
		bw:   bufio.NewWriterSize(opts.Writer, bufWriterSize),
	}
}

// Report implements Reporter.
func (r *JSONReporter) Report(_ context.Context, result *runner.Result) (_ int, err error) {
	defer func() {
		if flushErr := r.bw.Flush(); err == nil {
			err = flushErr
		}
	}()

	output := r.buildOutput(result)

	encoder := json.NewEncoder(r.bw)
	if !r.opts.Compact {
		encoder.SetIndent("", "  ")
	}

	if err := encoder.Encode(output); err != nil {
		return 0, fmt.Errorf("encode JSON: %w", err)
	}

	return output.Summary.TotalIssues, nil
}

func (r *JSONReporter) buildOutput(result *runner.Result) *JSONOutput {
	output := &JSONOutput{
		Version: jsonVersion,
		Files:   make([]JSONFileResult, 0),
		Summary: JSONSummary{BySeverity: make(map[string]int)},
	}

	if result == nil {
		return output
	}

	for _, file := range result.Files {
		fileResult := JSONFileResult{
			Path:        r.opts.displayPath(file.Path),
			Diagnostics: make([]JSONDiagnostic, 0),
		}

		if file.Error != nil {
			fileResult.Error = file.Error.Error()
			output.Summary.FilesErrored++
		}

		if res := file.Result; res != nil {
			fileResult.Visited = res.Visited

			for _, diag := range res.Diagnostics {
				fileResult.Diagnostics = append(fileResult.Diagnostics, JSONDiagnostic{
					RuleID:      diag.RuleID(),
					Plugin:      diag.Plugin,
					Rule:        diag.Rule,
					Severity:    string(diag.Severity),
					Message:     diag.Message,
					NodeType:    diag.NodeType,
					StartOffset: diag.StartOffset,
					EndOffset:   diag.EndOffset,
					StartLine:   diag.StartLine,
					StartColumn: diag.StartColumn,
					EndLine:     diag.EndLine,
					EndColumn:   diag.EndColumn,
					Suggestion:  diag.Suggestion,
				})
				output.Summary.TotalIssues++
				output.Summary.BySeverity[string(diag.Severity)]++
			}

			for _, rerr := range res.RuleErrors {
				fileResult.RuleErrors = append(fileResult.RuleErrors, JSONRuleFailure{
					RuleID:   rerr.RuleID(),
					Phase:    string(rerr.Phase),
					Selector: rerr.Selector,
					NodeType: rerr.NodeType,
					Message:  fmt.Sprint(rerr.Err),
				})
				output.Summary.RuleErrors++
			}
		}

		if len(fileResult.Diagnostics) > 0 {
			output.Summary.FilesWithIssues++
		}

		output.Files = append(output.Files, fileResult)
		output.Summary.FilesChecked++
	}

	return output
}
