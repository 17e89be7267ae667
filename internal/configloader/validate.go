package configloader

import (
	"fmt"
	"maps"
	"path"
	"slices"
	"strings"

	"github.com/yaklabco/selwalk/pkg/config"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	// Field is the path to the invalid field (e.g., "rules.estree/no-var.severity").
	Field string

	// Value is the invalid value.
	Value any

	// Message describes the validation error.
	Message string

	// FilePath is the config file containing the error (if known).
	FilePath string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	var parts []string
	if e.FilePath != "" {
		parts = append(parts, e.FilePath)
	}
	if e.Field != "" {
		parts = append(parts, e.Field)
	}
	parts = append(parts, e.Message)
	return strings.Join(parts, ": ")
}

// ValidationResult contains all validation findings.
type ValidationResult struct {
	// Errors are validation failures that prevent loading.
	Errors []ValidationError

	// Warnings are non-fatal issues (e.g., unknown rules).
	Warnings []ValidationError
}

// Valid returns true if there are no errors.
func (r *ValidationResult) Valid() bool {
	return len(r.Errors) == 0
}

// Catalog describes the plugins and rules a run can use. A nil catalog skips the
// checks that need one.
type Catalog struct {
	Plugins []string

	// Rules are qualified "plugin/rule" identifiers.
	Rules []string
}

func (c *Catalog) hasPlugin(name string) bool { return c == nil || slices.Contains(c.Plugins, name) }
func (c *Catalog) hasRule(id string) bool     { return c == nil || slices.Contains(c.Rules, id) }

// Validate checks a configuration for errors and warnings. Output is sorted by field
// so repeated runs report identically.
func Validate(cfg *config.Config, catalog *Catalog) *ValidationResult {
	result := &ValidationResult{}
	if cfg == nil {
		return result
	}

	fail := func(field string, value any, format string, args ...any) {
		result.Errors = append(result.Errors, ValidationError{Field: field, Value: value, Message: fmt.Sprintf(format, args...)})
	}
	warn := func(field string, value any, format string, args ...any) {
		result.Warnings = append(result.Warnings, ValidationError{Field: field, Value: value, Message: fmt.Sprintf(format, args...)})
	}

	switch cfg.Flavor {
	case "", config.FlavorCommonMark, config.FlavorGFM:
	default:
		fail("flavor", cfg.Flavor, "invalid flavor %q; must be one of: commonmark, gfm", cfg.Flavor)
	}

	if cfg.SeverityDefault != "" && !config.Severity(cfg.SeverityDefault).IsValid() {
		fail("severity_default", cfg.SeverityDefault, "invalid severity %q; must be one of: error, warning, info", cfg.SeverityDefault)
	}

	switch cfg.Format {
	case "", config.FormatText, config.FormatJSON:
	default:
		fail("format", cfg.Format, "invalid format %q; must be one of: text, json", cfg.Format)
	}

	switch cfg.Color {
	case "", config.ColorAuto, config.ColorAlways, config.ColorNever:
	default:
		fail("color", cfg.Color, "invalid color mode %q; must be one of: auto, always, never", cfg.Color)
	}

	if cfg.Jobs < 0 {
		fail("jobs", cfg.Jobs, "jobs must be >= 0 (0 means auto)")
	}

	for i, name := range cfg.Plugins {
		if !catalog.hasPlugin(name) {
			fail(fmt.Sprintf("plugins[%d]", i), name, "unknown plugin %q", name)
		}
	}

	for i, id := range cfg.IgnoredRules {
		validateRuleID(fmt.Sprintf("ignored_rules[%d]", i), id, catalog, fail, warn)
	}

	for _, id := range slices.Sorted(maps.Keys(cfg.Rules)) {
		field := "rules." + id
		validateRuleID(field, id, catalog, fail, warn)
		if sev := cfg.Rules[id].Severity; sev != nil && !config.Severity(*sev).IsValid() {
			fail(field+".severity", *sev, "invalid severity %q; must be one of: error, warning, info", *sev)
		}
	}

	for i, pattern := range cfg.Ignore {
		// path.Match reports only malformed patterns.
		if _, err := path.Match(pattern, ""); err != nil {
			fail(fmt.Sprintf("ignore[%d]", i), pattern, "invalid glob pattern: %v", err)
		}
	}

	return result
}

func validateRuleID(field, id string, catalog *Catalog, fail, warn func(string, any, string, ...any)) {
	plugin, rule, ok := config.SplitRuleName(id)
	if !ok || plugin == "" || rule == "" {
		fail(field, id, "rule %q must be written as plugin/rule", id)
		return
	}
	if !catalog.hasRule(id) {
		warn(field, id, "unknown rule %q; it will be ignored", id)
	}
}
