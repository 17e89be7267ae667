package reporter_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/selwalk/pkg/config"
	"github.com/yaklabco/selwalk/pkg/lint"
	"github.com/yaklabco/selwalk/pkg/reporter"
	"github.com/yaklabco/selwalk/pkg/runner"
)

var workDir = filepath.FromSlash("/work")

// sampleResult holds one file with two diagnostics and a rule failure, one clean file
// and one file that failed to parse.
func sampleResult() *runner.Result {
	source := []byte("var x = 1;\nif (x == 2) { debugger; }\n")
	lines := lint.NewLineIndex(source)

	app := filepath.Join(workDir, "src", "app.js.estree.json")
	diag := func(rule, message string, sev config.Severity, start, end int) lint.Diagnostic {
		d := lint.Diagnostic{
			Plugin: "estree", Rule: rule, Message: message, Severity: sev,
			FilePath: app, NodeType: "Node", StartOffset: start, EndOffset: end,
		}
		d.StartLine, d.StartColumn = lines.Position(start)
		d.EndLine, d.EndColumn = lines.Position(end)
		return d
	}

	appResult := &lint.FileResult{
		Path:   app,
		Source: source,
		Lines:  lines,
		Diagnostics: []lint.Diagnostic{
			diag("no-var", "Unexpected var", config.SeverityWarning, 0, 10),
			diag("no-debugger", "Unexpected debugger", config.SeverityError, 25, 34),
		},
		RuleErrors: []lint.RuleError{
			{Plugin: "estree", Rule: "max-depth", Phase: lint.PhaseEnter, Selector: "BlockStatement", NodeType: "BlockStatement", Err: errors.New("boom")},
		},
		Visited: 12,
	}
	appResult.Diagnostics[1].Suggestion = "Remove it"

	clean := filepath.Join(workDir, "README.md")
	broken := filepath.Join(workDir, "broken.estree.json")

	return &runner.Result{
		Files: []runner.FileOutcome{
			{Path: clean, Result: &lint.FileResult{Path: clean, Visited: 3}},
			{Path: broken, Error: lint.ErrParseFailure},
			{Path: app, Result: appResult},
		},
		Stats: runner.Stats{
			FilesDiscovered:  3,
			FilesProcessed:   2,
			FilesErrored:     1,
			FilesWithIssues:  1,
			DiagnosticsTotal: 2,
			DiagnosticsBySeverity: map[config.Severity]int{
				config.SeverityWarning: 1, config.SeverityError: 1,
			},
			RuleErrors: 1,
		},
	}
}

func TestParseFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		want    reporter.Format
		wantErr bool
	}{
		{name: "empty defaults to text", input: "", want: reporter.FormatText},
		{name: "text", input: "text", want: reporter.FormatText},
		{name: "json", input: "json", want: reporter.FormatJSON},
		{name: "unknown format", input: "sarif", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := reporter.ParseFormat(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.False(t, reporter.Format(tt.input).IsValid())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.True(t, got.IsValid())
		})
	}
}

func TestNew(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		format  reporter.Format
		wantErr bool
	}{
		{name: "text reporter", format: reporter.FormatText},
		{name: "json reporter", format: reporter.FormatJSON},
		{name: "empty defaults to text", format: ""},
		{name: "unknown format", format: "xml", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			rep, err := reporter.New(reporter.Options{Writer: &buf, Format: tt.format, Color: config.ColorNever})
			if tt.wantErr {
				require.Error(t, err)
				require.Nil(t, rep)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, rep)
		})
	}
}

func textOptions(buf *bytes.Buffer) reporter.Options {
	opts := reporter.DefaultOptions()
	opts.Writer = buf
	opts.Color = config.ColorNever
	opts.WorkingDir = workDir
	return opts
}

func TestTextReporter_NilResult(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	count, err := reporter.NewTextReporter(textOptions(&buf)).Report(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, count)
	assert.Contains(t, buf.String(), "No files to check")
}

func TestTextReporter_Report(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	count, err := reporter.NewTextReporter(textOptions(&buf)).Report(context.Background(), sampleResult())
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	out := buf.String()
	assert.NotContains(t, out, "README.md", "clean files print nothing")
	assert.Contains(t, out, "broken.estree.json: error: parse failure")
	assert.Contains(t, out, "src/app.js.estree.json (2 issues)")
	assert.Contains(t, out, "src/app.js.estree.json:1:1  warning  Unexpected var  (estree/no-var)")
	assert.Contains(t, out, "src/app.js.estree.json:2:15  error  Unexpected debugger  (estree/no-debugger)")
	assert.Contains(t, out, "        if (x == 2) { debugger; }\n"+strings.Repeat(" ", 8+14)+"^\n")
	assert.Contains(t, out, "Suggestion: Remove it")
	assert.Contains(t, out, "rule failure")
	assert.Contains(t, out, "2 issues (1 error, 1 warning) in 1 file, 1 file failed, 1 rule failure\n")
}

func TestTextReporter_Options(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	opts := textOptions(&buf)
	opts.ShowContext = false
	opts.ShowSummary = false
	opts.RuleFormat = config.RuleFormatName

	_, err := reporter.NewTextReporter(opts).Report(context.Background(), sampleResult())
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "(no-var)")
	assert.NotContains(t, out, "estree/no-var")
	assert.NotContains(t, out, "^")
	assert.NotContains(t, out, "issues (")

	buf.Reset()
	opts.ShowSummary = true
	opts.Verbose = true
	_, err = reporter.NewTextReporter(opts).Report(context.Background(), sampleResult())
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Lint failed with errors")
}

func TestJSONReporter_Report(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	opts := reporter.Options{Writer: &buf, Format: reporter.FormatJSON, WorkingDir: workDir}
	count, err := reporter.NewJSONReporter(opts).Report(context.Background(), sampleResult())
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	var output reporter.JSONOutput
	require.NoError(t, json.Unmarshal(buf.Bytes(), &output))

	require.Len(t, output.Files, 3)
	assert.Equal(t, "README.md", output.Files[0].Path)
	assert.Empty(t, output.Files[0].Diagnostics)
	assert.Equal(t, 3, output.Files[0].Visited)
	assert.Contains(t, output.Files[1].Error, "parse failure")

	app := output.Files[2]
	assert.Equal(t, "src/app.js.estree.json", app.Path)
	require.Len(t, app.Diagnostics, 2)
	assert.Equal(t, reporter.JSONDiagnostic{
		RuleID: "estree/no-debugger", Plugin: "estree", Rule: "no-debugger",
		Severity: "error", Message: "Unexpected debugger", NodeType: "Node",
		StartOffset: 25, EndOffset: 34, StartLine: 2, StartColumn: 15, EndLine: 2, EndColumn: 24,
		Suggestion: "Remove it",
	}, app.Diagnostics[1])
	require.Len(t, app.RuleErrors, 1)
	assert.Equal(t, "estree/max-depth", app.RuleErrors[0].RuleID)
	assert.Equal(t, "enter", app.RuleErrors[0].Phase)
	assert.Equal(t, "boom", app.RuleErrors[0].Message)

	assert.Equal(t, reporter.JSONSummary{
		FilesChecked:    3,
		FilesWithIssues: 1,
		FilesErrored:    1,
		TotalIssues:     2,
		RuleErrors:      1,
		BySeverity:      map[string]int{"warning": 1, "error": 1},
	}, output.Summary)
}

func TestJSONReporter_Compact(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	rep := reporter.NewJSONReporter(reporter.Options{Writer: &buf, Compact: true})
	count, err := rep.Report(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, count)
	assert.Equal(t, `{"version":"1","files":[],"summary":{"filesChecked":0,"filesWithIssues":0,"filesErrored":0,"totalIssues":0,"ruleErrors":0,"bySeverity":{}}}`+"\n", buf.String())
}
