package pretty

import (
	"fmt"
	"strings"

	"github.com/yaklabco/selwalk/pkg/config"
	"github.com/yaklabco/selwalk/pkg/lint"
)

// contextIndent aligns source lines under the diagnostic's location.
const contextIndent = "        "

// ellipsis marks a clipped source line.
const ellipsis = "..."

// DiagnosticFormat controls FormatDiagnostic.
type DiagnosticFormat struct {
	// RuleFormat selects "rule" or "plugin/rule" display.
	RuleFormat config.RuleFormat

	// SourceLine is the offending line; empty disables the context block.
	SourceLine string

	// Width clips the context block to this many columns. Zero means no limit.
	Width int
}

// RuleLabel renders a diagnostic's rule identifier for the given format.
func RuleLabel(diag *lint.Diagnostic, format config.RuleFormat) string {
	return config.FormatRuleID(format, diag.Plugin, diag.Rule)
}

// FormatDiagnostic formats a single diagnostic for terminal output.
func (s *Styles) FormatDiagnostic(diag *lint.Diagnostic, format DiagnosticFormat) string {
	var builder strings.Builder

	location := fmt.Sprintf("%s:%d:%d",
		s.FilePath.Render(diag.FilePath),
		diag.StartLine,
		diag.StartColumn,
	)

	// Main line: location  severity  message  (rule)
	fmt.Fprintf(&builder, "  %s  %s  %s  %s\n",
		location,
		s.FormatSeverity(diag.Severity),
		s.Message.Render(diag.Message),
		s.RuleID.Render("("+RuleLabel(diag, format.RuleFormat)+")"),
	)

	if format.SourceLine != "" {
		builder.WriteString(s.FormatSourceContext(format.SourceLine, diag.StartColumn, format.Width))
	}

	if diag.Suggestion != "" {
		builder.WriteString("    " + s.Dim.Render("Suggestion:") + " " +
			s.Suggestion.Render(diag.Suggestion) + "\n")
	}

	return builder.String()
}

// FormatSeverity returns a styled severity string.
func (s *Styles) FormatSeverity(sev config.Severity) string {
	switch sev {
	case config.SeverityError:
		return s.Error.Render("error")
	case config.SeverityWarning:
		return s.Warning.Render("warning")
	case config.SeverityInfo:
		return s.Info.Render("info")
	default:
		return string(sev)
	}
}

// FormatSourceContext formats the source line with a caret under column. When width
// is positive the line is clipped so the caret stays visible.
func (s *Styles) FormatSourceContext(line string, column, width int) string {
	line = strings.TrimRight(line, "\r\n")
	line, column = ClipLine(line, column, width-len(contextIndent))

	var builder strings.Builder
	builder.WriteString(contextIndent + s.SourceLine.Render(line) + "\n")
	if column > 0 {
		builder.WriteString(contextIndent + strings.Repeat(" ", column-1) + s.Caret.Render("^") + "\n")
	}
	return builder.String()
}

// ClipLine shortens line to at most maxCols bytes, keeping column (1-based) in view,
// and returns the adjusted column. maxCols <= 0 leaves the line alone.
func ClipLine(line string, column, maxCols int) (string, int) {
	if maxCols <= 0 || len(line) <= maxCols || maxCols <= 2*len(ellipsis) {
		return line, column
	}

	// Keep the caret about a third of the way into the window.
	start := max(0, column-1-maxCols/3)
	if start+maxCols > len(line) {
		start = len(line) - maxCols
	}
	prefix := ""
	if start > 0 {
		prefix = ellipsis
		start += len(ellipsis)
	}

	end := start + maxCols - len(prefix)
	suffix := ""
	if end < len(line) {
		suffix = ellipsis
		end -= len(ellipsis)
	} else {
		end = len(line)
	}
	if start >= end {
		return line, column
	}

	clipped := prefix + line[start:end] + suffix
	if column > 0 {
		column = column - start + len(prefix)
	}
	return clipped, column
}

// FormatFileHeader formats a file header for grouped output.
func (s *Styles) FormatFileHeader(path string, issueCount int) string {
	header := s.FilePath.Render(path)
	switch {
	case issueCount == 1:
		header += s.Dim.Render(" (1 issue)")
	case issueCount > 1:
		header += s.Dim.Render(fmt.Sprintf(" (%d issues)", issueCount))
	}
	return header
}

// FormatRuleError formats an isolated rule failure.
func (s *Styles) FormatRuleError(path string, rerr *lint.RuleError) string {
	return fmt.Sprintf("  %s  %s  %s\n",
		s.FilePath.Render(path),
		s.Failure.Render("rule failure"),
		s.Dim.Render(rerr.Error()),
	)
}
