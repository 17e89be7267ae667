package lint

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/yaklabco/selwalk/internal/logging"
	"github.com/yaklabco/selwalk/pkg/astbuf"
	"github.com/yaklabco/selwalk/pkg/config"
)

// RuleContext is handed to a rule's Create and Destroy. One is created per rule per
// file, plus one declaring context at registration where there is no file and reports
// are discarded.
//
// RuleContext stores context.Context as a field because it is a short-lived
// parameter object; Cancelled exposes it to long-running callbacks.
type RuleContext struct {
	// Ctx is the context for cancellation.
	Ctx context.Context

	// Plugin and Rule identify the rule.
	Plugin string
	Rule   string

	// Path is the logical file path.
	Path string

	// Config is the run configuration (may be nil).
	Config *config.Config

	tree      *astbuf.Tree
	source    []byte
	lines     *LineIndex
	severity  config.Severity
	options   map[string]any
	logger    *log.Logger
	declaring bool
	sink      *[]Diagnostic
}

func newDeclaringContext(plugin, rule string, cfg *config.Config, logger *log.Logger) *RuleContext {
	id := config.QualifiedRuleName(plugin, rule)
	return &RuleContext{
		Ctx:       context.Background(),
		Plugin:    plugin,
		Rule:      rule,
		Config:    cfg,
		severity:  cfg.RuleSeverity(id),
		options:   cfg.RuleOptions(id),
		logger:    logger.With(logging.FieldPlugin, plugin, logging.FieldRule, rule),
		declaring: true,
	}
}

// fileState is shared by every RuleContext of one file.
type fileState struct {
	ctx    context.Context
	path   string
	cfg    *config.Config
	tree   *astbuf.Tree
	source []byte
	lines  *LineIndex
	logger *log.Logger
	diags  []Diagnostic
}

func (fs *fileState) ruleContext(plugin, rule string) *RuleContext {
	id := config.QualifiedRuleName(plugin, rule)
	return &RuleContext{
		Ctx:      fs.ctx,
		Plugin:   plugin,
		Rule:     rule,
		Path:     fs.path,
		Config:   fs.cfg,
		tree:     fs.tree,
		source:   fs.source,
		lines:    fs.lines,
		severity: fs.cfg.RuleSeverity(id),
		options:  fs.cfg.RuleOptions(id),
		logger:   fs.logger.With(logging.FieldPlugin, plugin, logging.FieldRule, rule),
		sink:     &fs.diags,
	}
}

// Declaring reports whether this context only collects selectors at registration.
func (rc *RuleContext) Declaring() bool { return rc.declaring }

// Tree returns the file's tree, or nil while declaring.
func (rc *RuleContext) Tree() *astbuf.Tree { return rc.tree }

// Source returns the file's source text, or nil while declaring.
func (rc *RuleContext) Source() []byte { return rc.source }

// Logger returns a logger scoped to the rule.
func (rc *RuleContext) Logger() *log.Logger { return rc.logger }

// Severity returns the configured severity for this rule.
func (rc *RuleContext) Severity() config.Severity { return rc.severity }

// Cancelled returns true if the context has been cancelled.
func (rc *RuleContext) Cancelled() bool {
	select {
	case <-rc.Ctx.Done():
		return true
	default:
		return false
	}
}

// Report records a diagnostic covering node.
func (rc *RuleContext) Report(node *astbuf.Node, message string) {
	rc.Emit(NewDiagnostic(node, message).Build())
}

// Reportf records a formatted diagnostic covering node.
func (rc *RuleContext) Reportf(node *astbuf.Node, format string, args ...any) {
	rc.Report(node, fmt.Sprintf(format, args...))
}

// ReportSpan records a diagnostic covering a source byte range.
func (rc *RuleContext) ReportSpan(start, end int, message string) {
	rc.Emit(NewDiagnosticAt(start, end, message).Build())
}

// Emit records a diagnostic, filling in the rule, file, position and severity. It is a
// no-op while declaring.
func (rc *RuleContext) Emit(d Diagnostic) {
	if rc.declaring || rc.sink == nil {
		return
	}

	d.Plugin = rc.Plugin
	d.Rule = rc.Rule
	if d.FilePath == "" {
		d.FilePath = rc.Path
	}
	if d.Severity == "" {
		d.Severity = rc.severity
	}
	if rc.lines != nil {
		d.StartLine, d.StartColumn = rc.lines.Position(d.StartOffset)
		d.EndLine, d.EndColumn = rc.lines.Position(d.EndOffset)
	}

	*rc.sink = append(*rc.sink, d)
}

// Option returns a rule-specific option value, or the default if not set.
func (rc *RuleContext) Option(key string, defaultValue any) any {
	if v, ok := rc.options[key]; ok {
		return v
	}
	return defaultValue
}

// OptionInt returns a rule-specific integer option, or the default.
func (rc *RuleContext) OptionInt(key string, defaultValue int) int {
	switch val := rc.Option(key, defaultValue).(type) {
	case int:
		return val
	case int64:
		return int(val)
	case float64:
		return int(val)
	default:
		return defaultValue
	}
}

// OptionString returns a rule-specific string option, or the default.
func (rc *RuleContext) OptionString(key string, defaultValue string) string {
	if s, ok := rc.Option(key, defaultValue).(string); ok {
		return s
	}
	return defaultValue
}

// OptionBool returns a rule-specific boolean option, or the default.
func (rc *RuleContext) OptionBool(key string, defaultValue bool) bool {
	if b, ok := rc.Option(key, defaultValue).(bool); ok {
		return b
	}
	return defaultValue
}

// OptionStringSlice returns a rule-specific string slice option, or the default.
// YAML lists decode as []any and are converted.
func (rc *RuleContext) OptionStringSlice(key string, defaultValue []string) []string {
	switch v := rc.Option(key, defaultValue).(type) {
	case []string:
		return v
	case []any:
		result := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				result = append(result, s)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return defaultValue
}
