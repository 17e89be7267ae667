package lint

import (
	"errors"
	"fmt"

	"github.com/yaklabco/selwalk/pkg/astbuf"
	"github.com/yaklabco/selwalk/pkg/config"
)

// Registration errors.
var (
	ErrDuplicatePlugin = errors.New("duplicate plugin")
	ErrInvalidPlugin   = errors.New("invalid plugin")
	ErrInvalidRule     = errors.New("invalid rule")
	ErrRuleIgnored     = errors.New("rule ignored")
	ErrUnknownRule     = errors.New("unknown rule")
	ErrRegistrySealed  = errors.New("registry already built into a dispatch table")
)

// Traversal errors, wrapped in RuleError.
var (
	ErrUndeclaredSelector = errors.New("selector not declared at registration")
	ErrDuplicateSelector  = errors.New("duplicate selector")
	ErrCallbackPanic      = errors.New("callback panicked")
)

// File errors from LintPath.
var (
	ErrFileNotFound     = errors.New("file not found")
	ErrPermissionDenied = errors.New("permission denied")
	ErrParseFailure     = errors.New("parse failure")
)

// SelectorError rejects a rule whose selector failed to parse.
type SelectorError struct {
	Plugin   string
	Rule     string
	Selector string
	Err      error
}

func (e *SelectorError) Error() string {
	return fmt.Sprintf("%s: %v", config.QualifiedRuleName(e.Plugin, e.Rule), e.Err)
}

func (e *SelectorError) Unwrap() error { return e.Err }

// Phase names the rule lifecycle step that failed.
type Phase string

const (
	PhaseCreate  Phase = "create"
	PhaseBind    Phase = "bind"
	PhaseEnter   Phase = "enter"
	PhaseExit    Phase = "exit"
	PhaseDestroy Phase = "destroy"
)

// RuleError is a callback failure isolated to one rule.
type RuleError struct {
	Plugin   string
	Rule     string
	Selector string
	Phase    Phase
	NodeID   astbuf.NodeID
	NodeType string
	Err      error
}

// RuleID returns "plugin/rule".
func (e *RuleError) RuleID() string { return config.QualifiedRuleName(e.Plugin, e.Rule) }

func (e *RuleError) Error() string {
	if e.NodeType == "" {
		return fmt.Sprintf("%s: %s: %v", e.RuleID(), e.Phase, e.Err)
	}
	return fmt.Sprintf("%s: %s %q on %s#%d: %v", e.RuleID(), e.Phase, e.Selector, e.NodeType, e.NodeID, e.Err)
}

func (e *RuleError) Unwrap() error { return e.Err }
