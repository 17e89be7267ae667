package lint

import (
	"slices"

	"github.com/charmbracelet/log"

	"github.com/yaklabco/selwalk/internal/logging"
	"github.com/yaklabco/selwalk/pkg/astbuf"
)

// Table is the dispatch table for one run: compiled entries bucketed by the node type
// names their anchor can match, plus a wildcard bucket. It is immutable once built
// and shared by every file's traversal.
type Table struct {
	entries  []*entry
	rules    []*registeredRule
	byType   map[string][]*entry
	wildcard []*entry
}

// BuildTable builds the dispatch table and seals the registry against further
// installs. Buckets keep registration order.
func BuildTable(reg *Registry) *Table {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	reg.sealed = true

	t := &Table{
		entries: slices.Clone(reg.entries),
		rules:   slices.Clone(reg.rules),
		byType:  make(map[string][]*entry),
	}

	for _, e := range t.entries {
		if e.compiled.Wildcard {
			t.wildcard = append(t.wildcard, e)
			continue
		}
		for _, typ := range e.compiled.Types {
			t.byType[typ] = append(t.byType[typ], e)
		}
	}

	return t
}

// Len returns the number of entries.
func (t *Table) Len() int { return len(t.entries) }

// Buckets returns the number of typed buckets.
func (t *Table) Buckets() int { return len(t.byType) }

// Wildcards returns the number of entries in the wildcard bucket.
func (t *Table) Wildcards() int { return len(t.wildcard) }

// Candidates returns the entries to evaluate for a node type: its typed bucket merged
// with the wildcard bucket in registration order.
func (t *Table) candidates(typeName string) []*entry {
	typed := t.byType[typeName]
	switch {
	case len(typed) == 0:
		return t.wildcard
	case len(t.wildcard) == 0:
		return typed
	}

	out := make([]*entry, 0, len(typed)+len(t.wildcard))
	i, j := 0, 0
	for i < len(typed) && j < len(t.wildcard) {
		if typed[i].slot < t.wildcard[j].slot {
			out = append(out, typed[i])
			i++
		} else {
			out = append(out, t.wildcard[j])
			j++
		}
	}
	out = append(out, typed[i:]...)
	return append(out, t.wildcard[j:]...)
}

// Selectors returns the selector strings of the table in dispatch order.
func (t *Table) Selectors() []string {
	out := make([]string, len(t.entries))
	for i, e := range t.entries {
		out[i] = e.selector
	}
	return out
}

// LogSummary writes the table shape at debug level.
func (t *Table) LogSummary(logger *log.Logger) {
	logger.Debug("dispatch table built",
		logging.FieldEntries, t.Len(),
		logging.FieldBuckets, t.Buckets(),
		logging.FieldWildcards, t.Wildcards(),
	)
}

// fileBuckets resolves a tree's numeric type tags to candidate lists on first use.
// It is owned by one traversal.
type fileBuckets struct {
	table    *Table
	tree     *astbuf.Tree
	byTag    [][]*entry
	resolved []bool
}

func newFileBuckets(t *Table, tree *astbuf.Tree) *fileBuckets {
	n := tree.TypeCount()
	return &fileBuckets{
		table:    t,
		tree:     tree,
		byTag:    make([][]*entry, n),
		resolved: make([]bool, n),
	}
}

func (fb *fileBuckets) forNode(id astbuf.NodeID) []*entry {
	tag, ok := fb.tree.TypeTag(id)
	if !ok || int(tag) >= len(fb.byTag) {
		return fb.table.wildcard
	}
	if !fb.resolved[tag] {
		fb.byTag[tag] = fb.table.candidates(fb.tree.TypeNameOf(tag))
		fb.resolved[tag] = true
	}
	return fb.byTag[tag]
}
