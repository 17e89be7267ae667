// Package config defines core configuration types for selwalk.
// These types are plain data with no dependency on the loader.
package config

import (
	"slices"
	"strings"
)

// Severity represents the severity level of a lint diagnostic.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// IsValid reports whether s is a known severity.
func (s Severity) IsValid() bool {
	switch s {
	case SeverityError, SeverityWarning, SeverityInfo:
		return true
	default:
		return false
	}
}

// RuleConfig holds per-rule configuration.
type RuleConfig struct {
	Enabled  *bool          `yaml:"enabled,omitempty"`
	Severity *string        `yaml:"severity,omitempty"`
	Options  map[string]any `yaml:"options,omitempty"`
}

// OutputFormat specifies the output format for diagnostics.
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
)

// RuleFormat controls how rule identifiers appear in output.
type RuleFormat string

const (
	RuleFormatName      RuleFormat = "name"      // "no-debugger"
	RuleFormatQualified RuleFormat = "qualified" // "estree/no-debugger"
)

// ColorMode controls styled output.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"
	ColorAlways ColorMode = "always"
	ColorNever  ColorMode = "never"
)

// Flavor specifies the Markdown flavor used by the Markdown front-end.
type Flavor string

const (
	FlavorCommonMark Flavor = "commonmark"
	FlavorGFM        Flavor = "gfm"
)

// Config is the root configuration structure for selwalk.
type Config struct {
	// Plugins limits the run to the named plugins. Empty means every built-in plugin.
	Plugins []string `yaml:"plugins,omitempty"`

	// IgnoredRules lists "plugin/rule" identifiers that are never registered.
	IgnoredRules []string `yaml:"ignored_rules,omitempty"`

	// Flavor selects the Markdown dialect ("commonmark" or "gfm").
	Flavor Flavor `yaml:"flavor"`

	// SeverityDefault is the severity for rules that don't specify one.
	SeverityDefault string `yaml:"severity_default"`

	// Rules contains per-rule configuration keyed by "plugin/rule".
	Rules map[string]RuleConfig `yaml:"rules,omitempty"`

	// Ignore contains glob patterns for files to skip.
	Ignore []string `yaml:"ignore,omitempty"`

	// CLI-level options (not persisted to config files).

	// Format specifies the output format.
	Format OutputFormat `yaml:"-"`

	// RuleFormat controls how rule identifiers appear in output.
	RuleFormat RuleFormat `yaml:"-"`

	// Color controls styled output.
	Color ColorMode `yaml:"-"`

	// Jobs specifies the number of parallel workers.
	Jobs int `yaml:"-"`
}

// NewConfig returns a Config with sensible defaults.
func NewConfig() *Config {
	return &Config{
		Flavor:          FlavorGFM,
		SeverityDefault: string(SeverityWarning),
		Rules:           make(map[string]RuleConfig),
		Format:          FormatText,
		RuleFormat:      RuleFormatQualified,
		Color:           ColorAuto,
		Jobs:            0, // 0 means use GOMAXPROCS
	}
}

// QualifiedRuleName joins a plugin and rule name into "plugin/rule".
func QualifiedRuleName(plugin, rule string) string {
	return plugin + "/" + rule
}

// SplitRuleName splits "plugin/rule". ok is false when there is no separator.
func SplitRuleName(qualified string) (plugin, rule string, ok bool) {
	return strings.Cut(qualified, "/")
}

// PluginEnabled reports whether the named plugin should run.
func (c *Config) PluginEnabled(name string) bool {
	return c == nil || len(c.Plugins) == 0 || slices.Contains(c.Plugins, name)
}

// Ignored returns every rule the configuration turns off: the explicit ignore list
// plus rules configured with enabled: false. The result is sorted.
func (c *Config) Ignored() []string {
	if c == nil {
		return nil
	}

	out := slices.Clone(c.IgnoredRules)
	for id, rc := range c.Rules {
		if rc.Enabled != nil && !*rc.Enabled {
			out = append(out, id)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// RuleSeverity resolves the severity for a rule: its own setting, then the default.
func (c *Config) RuleSeverity(qualified string) Severity {
	if c == nil {
		return SeverityWarning
	}
	if rc, ok := c.Rules[qualified]; ok && rc.Severity != nil {
		return Severity(*rc.Severity)
	}
	if c.SeverityDefault != "" {
		return Severity(c.SeverityDefault)
	}
	return SeverityWarning
}

// RuleOptions returns the rule's options map, or nil.
func (c *Config) RuleOptions(qualified string) map[string]any {
	if c == nil {
		return nil
	}
	return c.Rules[qualified].Options
}
