package lint

import (
	"github.com/yaklabco/selwalk/pkg/astbuf"
	"github.com/yaklabco/selwalk/pkg/config"
)

// Diagnostic is a single issue reported by a rule.
type Diagnostic struct {
	// Plugin and Rule identify the reporting rule.
	Plugin string
	Rule   string

	// Message is the human-readable description of the issue.
	Message string

	// Severity is resolved from configuration unless the rule set one.
	Severity config.Severity

	// FilePath is the path to the file containing the issue.
	FilePath string

	// NodeType is the type of the reported node, if any.
	NodeType string

	// StartOffset and EndOffset are the source byte range.
	StartOffset int
	EndOffset   int

	// 1-based positions derived from the byte range.
	StartLine   int
	StartColumn int
	EndLine     int
	EndColumn   int

	// Suggestion is an optional human-readable fix suggestion.
	Suggestion string
}

// RuleID returns "plugin/rule".
func (d *Diagnostic) RuleID() string { return config.QualifiedRuleName(d.Plugin, d.Rule) }

// DiagnosticBuilder helps construct Diagnostic values.
type DiagnosticBuilder struct {
	diag Diagnostic
}

// NewDiagnostic starts a diagnostic covering node. A nil node leaves the range empty.
func NewDiagnostic(node *astbuf.Node, message string) *DiagnosticBuilder {
	b := &DiagnosticBuilder{diag: Diagnostic{Message: message}}
	if node != nil {
		b.diag.NodeType = node.Type()
		b.diag.StartOffset, b.diag.EndOffset = node.Span()
	}
	return b
}

// NewDiagnosticAt starts a diagnostic covering a byte range.
func NewDiagnosticAt(start, end int, message string) *DiagnosticBuilder {
	return &DiagnosticBuilder{diag: Diagnostic{Message: message, StartOffset: start, EndOffset: end}}
}

// WithSeverity overrides the configured severity.
func (b *DiagnosticBuilder) WithSeverity(s config.Severity) *DiagnosticBuilder {
	b.diag.Severity = s
	return b
}

// WithSuggestion sets a human-readable fix suggestion.
func (b *DiagnosticBuilder) WithSuggestion(s string) *DiagnosticBuilder {
	b.diag.Suggestion = s
	return b
}

// Build returns the constructed Diagnostic.
func (b *DiagnosticBuilder) Build() Diagnostic {
	return b.diag
}
