package selector

import (
	"maps"
	"slices"
)

// typeSet is a set of node type names, or the unconstrained set when any is true.
type typeSet struct {
	any   bool
	names map[string]struct{}
}

func anyType() typeSet { return typeSet{any: true} }

func (t typeSet) intersect(o typeSet) typeSet {
	switch {
	case t.any:
		return o
	case o.any:
		return t
	}
	out := typeSet{names: map[string]struct{}{}}
	for n := range t.names {
		if _, ok := o.names[n]; ok {
			out.names[n] = struct{}{}
		}
	}
	return out
}

func (t typeSet) union(o typeSet) typeSet {
	if t.any || o.any {
		return anyType()
	}
	out := typeSet{names: make(map[string]struct{}, len(t.names)+len(o.names))}
	maps.Copy(out.names, t.names)
	maps.Copy(out.names, o.names)
	return out
}

func (t typeSet) sorted() []string {
	return slices.Sorted(maps.Keys(t.names))
}

// listCandidates returns the types any alternative's anchor can match.
func listCandidates(list List) typeSet {
	out := typeSet{names: map[string]struct{}{}}
	for _, alt := range list {
		out = out.union(anchorCandidates(alt))
		if out.any {
			return out
		}
	}
	return out
}

// anchorCandidates narrows the rightmost compound: a type test pins one type and an
// :is whose alternatives are all pinned contributes their union. Everything else
// leaves the set unconstrained.
func anchorCandidates(alt Alternative) typeSet {
	compounds, _ := splitChain(alt.Components)
	anchor := compounds[len(compounds)-1]

	set := anyType()
	for _, c := range anchor {
		switch c := c.(type) {
		case Type:
			set = set.intersect(typeSet{names: map[string]struct{}{c.Name: {}}})
		case Is:
			set = set.intersect(listCandidates(c.List))
		}
	}
	return set
}
