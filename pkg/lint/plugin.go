// Package lint registers selector-based rule plugins, builds the dispatch table and
// runs the single-pass traversal that invokes rule callbacks.
package lint

import (
	"fmt"
	"maps"
	"slices"

	"github.com/yaklabco/selwalk/pkg/astbuf"
	"github.com/yaklabco/selwalk/pkg/config"
)

// Callback is invoked with the matched node. A returned error or a panic is recorded
// as a RuleError for the owning rule; traversal continues either way.
type Callback func(node *astbuf.Node) error

// Handler holds the callbacks for one selector. Either may be nil.
type Handler struct {
	Enter Callback
	Exit  Callback
}

// OnEnter builds a Handler with only an enter callback.
func OnEnter(fn Callback) Handler { return Handler{Enter: fn} }

// OnExit builds a Handler with only an exit callback.
func OnExit(fn Callback) Handler { return Handler{Exit: fn} }

func (h Handler) empty() bool { return h.Enter == nil && h.Exit == nil }

// Visitors maps selector strings to handlers. Within a rule, its selectors dispatch
// in sorted string order.
type Visitors map[string]Handler

// Visitor pairs one selector with its handler.
type Visitor struct {
	Selector string
	Handler  Handler
}

// VisitorList is an ordered set of visitors. Within a rule, its selectors dispatch in
// the order listed. A selector may appear only once.
type VisitorList []Visitor

// list returns v as a VisitorList in sorted selector order.
func (v Visitors) list() VisitorList {
	keys := slices.Sorted(maps.Keys(v))
	out := make(VisitorList, len(keys))
	for i, k := range keys {
		out[i] = Visitor{Selector: k, Handler: v[k]}
	}
	return out
}

// RuleMeta describes a rule for listings and defaults.
type RuleMeta struct {
	Description     string
	DefaultSeverity config.Severity
	Tags            []string
}

// Rule is one rule of a plugin.
//
// Create is called once at registration with a declaring RuleContext to learn the
// selectors, and then once per file to obtain the live callbacks. It must return the
// same selector set for the same configuration. CreateOrdered is the alternative for
// rules whose same-node callbacks must run in declaration order; when set, Create is
// ignored. Destroy, when set, runs once per file after traversal.
type Rule struct {
	Meta          RuleMeta
	Create        func(rc *RuleContext) Visitors
	CreateOrdered func(rc *RuleContext) VisitorList
	Destroy       func(rc *RuleContext)
}

// visitors calls the rule's constructor and returns its visitors in dispatch order.
// A panic in the constructor is returned as an error.
func (r Rule) visitors(rc *RuleContext) (list VisitorList, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("%w: %v", ErrCallbackPanic, rec)
		}
	}()

	if r.CreateOrdered == nil {
		return r.Create(rc).list(), nil
	}

	list = r.CreateOrdered(rc)
	seen := make(map[string]struct{}, len(list))
	for _, v := range list {
		if _, dup := seen[v.Selector]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateSelector, v.Selector)
		}
		seen[v.Selector] = struct{}{}
	}
	return list, nil
}

// Plugin is a named set of rules.
type Plugin struct {
	Name  string
	Rules map[string]Rule
}
