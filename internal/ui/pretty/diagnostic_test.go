package pretty_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yaklabco/selwalk/internal/ui/pretty"
	"github.com/yaklabco/selwalk/pkg/config"
	"github.com/yaklabco/selwalk/pkg/lint"
)

func sampleDiagnostic() *lint.Diagnostic {
	return &lint.Diagnostic{
		Plugin:      "estree",
		Rule:        "no-debugger",
		Message:     "Unexpected 'debugger' statement",
		Severity:    config.SeverityError,
		FilePath:    "src/app.js",
		StartLine:   10,
		StartColumn: 3,
	}
}

func TestFormatDiagnostic_Basic(t *testing.T) {
	t.Parallel()

	styles := pretty.NewStyles(false)
	result := styles.FormatDiagnostic(sampleDiagnostic(), pretty.DiagnosticFormat{})

	assert.Equal(t, "  src/app.js:10:3  error  Unexpected 'debugger' statement  (estree/no-debugger)\n", result)
}

func TestFormatDiagnostic_RuleFormat(t *testing.T) {
	t.Parallel()

	styles := pretty.NewStyles(false)

	tests := []struct {
		format   config.RuleFormat
		contains string
	}{
		{config.RuleFormatName, "(no-debugger)"},
		{config.RuleFormatQualified, "(estree/no-debugger)"},
		{"", "(estree/no-debugger)"},
	}

	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			t.Parallel()
			result := styles.FormatDiagnostic(sampleDiagnostic(), pretty.DiagnosticFormat{RuleFormat: tt.format})
			assert.Contains(t, result, tt.contains)
		})
	}
}

func TestFormatDiagnostic_WithContextAndSuggestion(t *testing.T) {
	t.Parallel()

	styles := pretty.NewStyles(false)
	diag := sampleDiagnostic()
	diag.Suggestion = "Remove the statement"

	result := styles.FormatDiagnostic(diag, pretty.DiagnosticFormat{SourceLine: "  debugger;\n"})
	lines := strings.Split(result, "\n")

	assert.Equal(t, "          debugger;", lines[1])
	assert.Equal(t, "          ^", lines[2])
	assert.Contains(t, lines[3], "Suggestion: Remove the statement")
}

func TestFormatSeverity_AllLevels(t *testing.T) {
	t.Parallel()

	styles := pretty.NewStyles(false)

	tests := []struct {
		severity config.Severity
		expected string
	}{
		{config.SeverityError, "error"},
		{config.SeverityWarning, "warning"},
		{config.SeverityInfo, "info"},
		{"custom", "custom"},
	}

	for _, tt := range tests {
		t.Run(string(tt.severity), func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, styles.FormatSeverity(tt.severity))
		})
	}
}

func TestFormatSourceContext_ZeroColumn(t *testing.T) {
	t.Parallel()

	styles := pretty.NewStyles(false)
	result := styles.FormatSourceContext("test line", 0, 0)

	assert.Contains(t, result, "test line")
	assert.NotContains(t, result, "^")
}

func TestClipLine(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("a", 50) + "X" + strings.Repeat("b", 49)

	tests := []struct {
		name       string
		line       string
		column     int
		maxCols    int
		wantLine   string
		wantColumn int
	}{
		{"no limit", long, 51, 0, long, 51},
		{"fits", "short", 2, 40, "short", 2},
		{"clip tail", long, 1, 20, strings.Repeat("a", 17) + "...", 1},
		{"clip both", long, 51, 20, "..." + strings.Repeat("a", 3) + "X" + strings.Repeat("b", 10) + "...", 7},
		{"clip head", long, 100, 20, "..." + strings.Repeat("b", 17), 20},
		{"column past end", "abc" + strings.Repeat("d", 30), 200, 10, "..." + strings.Repeat("d", 7), 177},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			line, column := pretty.ClipLine(tt.line, tt.column, tt.maxCols)
			assert.Equal(t, tt.wantLine, line)
			assert.Equal(t, tt.wantColumn, column)
			if tt.maxCols > 0 {
				assert.LessOrEqual(t, len(line), max(tt.maxCols, len(tt.line)))
			}
		})
	}
}

func TestFormatFileHeader(t *testing.T) {
	t.Parallel()

	styles := pretty.NewStyles(false)

	assert.Equal(t, "docs/readme.md (5 issues)", styles.FormatFileHeader("docs/readme.md", 5))
	assert.Equal(t, "docs/readme.md (1 issue)", styles.FormatFileHeader("docs/readme.md", 1))
	assert.Equal(t, "docs/readme.md", styles.FormatFileHeader("docs/readme.md", 0))
}

func TestFormatRuleError(t *testing.T) {
	t.Parallel()

	styles := pretty.NewStyles(false)
	rerr := &lint.RuleError{Plugin: "estree", Rule: "no-var", Phase: lint.PhaseEnter, Err: errors.New("boom")}

	result := styles.FormatRuleError("a.js", rerr)
	assert.Contains(t, result, "a.js")
	assert.Contains(t, result, "rule failure")
	assert.Contains(t, result, "estree/no-var")
	assert.Contains(t, result, "boom")
}
