package lint

import (
	"fmt"

	"github.com/yaklabco/selwalk/pkg/astbuf"
)

// boundRule is one rule's live state for one file.
type boundRule struct {
	reg *registeredRule
	rc  *RuleContext
	ok  bool
}

// walker is the traversal state of one file. It is never shared.
type walker struct {
	table    *Table
	tree     *astbuf.Tree
	buckets  *fileBuckets
	handlers []Handler
	matched  []*entry
	errs     []RuleError
	visited  int
}

func newWalker(t *Table, tree *astbuf.Tree) *walker {
	return &walker{
		table:    t,
		tree:     tree,
		buckets:  newFileBuckets(t, tree),
		handlers: make([]Handler, len(t.entries)),
	}
}

// bind calls each rule's Create for this file and attaches the returned handlers to
// the table's entries by selector string.
func (w *walker) bind(state *fileState) []boundRule {
	bound := make([]boundRule, len(w.table.rules))

	for i, reg := range w.table.rules {
		rc := state.ruleContext(reg.plugin, reg.name)
		bound[i] = boundRule{reg: reg, rc: rc}

		visitors, err := reg.rule.visitors(rc)
		if err != nil {
			w.fail(reg, "", PhaseCreate, astbuf.NoNode, err)
			continue
		}
		bound[i].ok = true

		declared := make(map[string]*entry, len(reg.entries))
		for _, e := range reg.entries {
			declared[e.selector] = e
		}
		for _, v := range visitors {
			e, ok := declared[v.Selector]
			if !ok {
				w.fail(reg, v.Selector, PhaseBind, astbuf.NoNode, fmt.Errorf("%w: %q", ErrUndeclaredSelector, v.Selector))
				continue
			}
			w.handlers[e.slot] = v.Handler
		}
	}

	return bound
}

// walk visits id and its subtree depth-first. Enter callbacks run in dispatch order
// before the children; exit callbacks run after them, in the same order, for the
// entries that matched on enter.
func (w *walker) walk(id astbuf.NodeID) {
	w.visited++

	start := len(w.matched)
	var node *astbuf.Node

	for _, e := range w.buckets.forNode(id) {
		h := w.handlers[e.slot]
		if h.empty() || !e.compiled.Match(w.tree, id) {
			continue
		}
		w.matched = append(w.matched, e)
		if h.Enter != nil {
			if node == nil {
				node = w.tree.Node(id)
			}
			w.invoke(e, PhaseEnter, h.Enter, node)
		}
	}
	end := len(w.matched)

	for _, child := range w.tree.Children(id) {
		w.walk(child)
	}

	for _, e := range w.matched[start:end] {
		if exit := w.handlers[e.slot].Exit; exit != nil {
			if node == nil {
				node = w.tree.Node(id)
			}
			w.invoke(e, PhaseExit, exit, node)
		}
	}
	w.matched = w.matched[:start]
}

// invoke runs one callback, recording a returned error or a panic against the rule.
func (w *walker) invoke(e *entry, phase Phase, fn Callback, node *astbuf.Node) {
	defer func() {
		if rec := recover(); rec != nil {
			w.fail(e.rule, e.selector, phase, node.ID(), fmt.Errorf("%w: %v", ErrCallbackPanic, rec))
		}
	}()

	if err := fn(node); err != nil {
		w.fail(e.rule, e.selector, phase, node.ID(), err)
	}
}

// destroy runs Destroy for every rule whose Create succeeded.
func (w *walker) destroy(bound []boundRule) {
	for _, b := range bound {
		if !b.ok || b.reg.rule.Destroy == nil {
			continue
		}
		func() {
			defer func() {
				if rec := recover(); rec != nil {
					w.fail(b.reg, "", PhaseDestroy, astbuf.NoNode, fmt.Errorf("%w: %v", ErrCallbackPanic, rec))
				}
			}()
			b.reg.rule.Destroy(b.rc)
		}()
	}
}

func (w *walker) fail(reg *registeredRule, sel string, phase Phase, id astbuf.NodeID, err error) {
	re := RuleError{
		Plugin:   reg.plugin,
		Rule:     reg.name,
		Selector: sel,
		Phase:    phase,
		NodeID:   id,
		Err:      err,
	}
	if id != astbuf.NoNode {
		re.NodeType = w.tree.TypeName(id)
	}
	w.errs = append(w.errs, re)
}
