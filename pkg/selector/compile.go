package selector

import (
	"cmp"
	"slices"
	"strconv"

	"github.com/yaklabco/selwalk/pkg/astbuf"
)

// Matcher reports whether a node matches. Matchers are pure and safe to share between
// goroutines.
type Matcher func(s Surface, id astbuf.NodeID) bool

// matcher carries the :has subject as scope.
type matcher func(s Surface, id, scope astbuf.NodeID) bool

// Compiled is a parsed and compiled selector.
type Compiled struct {
	Source string
	List   List
	Match  Matcher

	// Types lists the node types the selector can match, sorted. It is only meaningful
	// when Wildcard is false; an empty Types then means the selector never matches.
	Types    []string
	Wildcard bool
}

// Compile parses and compiles src.
func Compile(src string) (*Compiled, error) {
	list, err := Parse(src)
	if err != nil {
		return nil, err
	}
	return CompileList(src, list), nil
}

// MustCompile is Compile for selectors known to be valid. It panics on error.
func MustCompile(src string) *Compiled {
	c, err := Compile(src)
	if err != nil {
		panic(err)
	}
	return c
}

// CompileList compiles an already parsed list. src is kept for reporting only.
func CompileList(src string, list List) *Compiled {
	m := compileList(list)
	cand := listCandidates(list)

	c := &Compiled{
		Source: src,
		List:   list,
		Match: func(s Surface, id astbuf.NodeID) bool {
			return m(s, id, astbuf.NoNode)
		},
		Wildcard: cand.any,
	}
	if !cand.any {
		c.Types = cand.sorted()
	}
	return c
}

// scopeRef matches only the :has subject. It is prepended to relative alternatives.
type scopeRef struct{}

func (scopeRef) component()     {}
func (scopeRef) String() string { return ":scope" }

func compileList(list List) matcher {
	alts := make([]matcher, len(list))
	for i, alt := range list {
		alts[i] = compileAlternative(alt.Components)
	}
	if len(alts) == 1 {
		return alts[0]
	}
	return func(s Surface, id, scope astbuf.NodeID) bool {
		for _, m := range alts {
			if m(s, id, scope) {
				return true
			}
		}
		return false
	}
}

// step is one compound and the relation linking it to the compound on its left.
type step struct {
	match matcher
	rel   Relation
}

// splitChain splits components into compounds separated by combinators.
func splitChain(components []Component) (compounds [][]Component, rels []Relation) {
	var cur []Component
	for _, c := range components {
		if comb, ok := c.(Combinator); ok {
			compounds = append(compounds, cur)
			rels = append(rels, comb.Rel)
			cur = nil
			continue
		}
		cur = append(cur, c)
	}
	return append(compounds, cur), rels
}

func compileAlternative(components []Component) matcher {
	compounds, rels := splitChain(components)

	steps := make([]step, len(compounds))
	for i, compound := range compounds {
		steps[i].match = compileCompound(compound)
		if i > 0 {
			steps[i].rel = rels[i-1]
		}
	}

	last := len(steps) - 1
	return func(s Surface, id, scope astbuf.NodeID) bool {
		return matchChain(s, steps, last, id, scope)
	}
}

// matchChain tests steps[i] against id and then walks the relation to steps[i-1],
// trying every candidate the relation allows.
func matchChain(s Surface, steps []step, i int, id, scope astbuf.NodeID) bool {
	if !steps[i].match(s, id, scope) {
		return false
	}
	if i == 0 {
		return true
	}

	switch steps[i].rel {
	case Child:
		p := s.Parent(id)
		return p != astbuf.NoNode && matchChain(s, steps, i-1, p, scope)

	case Descendant:
		for a := s.Parent(id); a != astbuf.NoNode; a = s.Parent(a) {
			if matchChain(s, steps, i-1, a, scope) {
				return true
			}
		}
		return false

	case Adjacent:
		sibs := s.Siblings(id)
		idx := slices.Index(sibs, id)
		return idx > 0 && matchChain(s, steps, i-1, sibs[idx-1], scope)

	case Sibling:
		sibs := s.Siblings(id)
		idx := slices.Index(sibs, id)
		for j := idx - 1; j >= 0; j-- {
			if matchChain(s, steps, i-1, sibs[j], scope) {
				return true
			}
		}
		return false
	}
	return false
}

func compileCompound(compound []Component) matcher {
	preds := make([]matcher, 0, len(compound))
	for _, c := range compound {
		if _, ok := c.(Wildcard); ok {
			continue
		}
		preds = append(preds, compileComponent(c))
	}

	switch len(preds) {
	case 0:
		return func(Surface, astbuf.NodeID, astbuf.NodeID) bool { return true }
	case 1:
		return preds[0]
	}
	return func(s Surface, id, scope astbuf.NodeID) bool {
		for _, p := range preds {
			if !p(s, id, scope) {
				return false
			}
		}
		return true
	}
}

func compileComponent(c Component) matcher {
	switch c := c.(type) {
	case Type:
		name := c.Name
		return func(s Surface, id, _ astbuf.NodeID) bool { return s.TypeName(id) == name }

	case scopeRef:
		return func(_ Surface, id, scope astbuf.NodeID) bool { return id == scope }

	case Field:
		return compileField(c.Path)

	case Attribute:
		return compileAttribute(c)

	case NthChild:
		return compileNth(c)

	case FirstChild:
		return func(s Surface, id, _ astbuf.NodeID) bool {
			sibs := s.Siblings(id)
			return len(sibs) > 0 && sibs[0] == id
		}

	case LastChild:
		return func(s Surface, id, _ astbuf.NodeID) bool {
			sibs := s.Siblings(id)
			return len(sibs) > 0 && sibs[len(sibs)-1] == id
		}

	case Is:
		return compileList(c.List)

	case Not:
		inner := compileList(c.List)
		return func(s Surface, id, scope astbuf.NodeID) bool { return !inner(s, id, scope) }

	case Has:
		return compileHas(c.List)
	}

	return func(Surface, astbuf.NodeID, astbuf.NodeID) bool { return false }
}

func compileField(path []string) matcher {
	return func(s Surface, id, _ astbuf.NodeID) bool {
		cur := id
		for i := len(path) - 1; i >= 0; i-- {
			p := s.Parent(cur)
			if p == astbuf.NoNode || !s.Field(p, path[i]).Contains(cur) {
				return false
			}
			cur = p
		}
		return true
	}
}

// nthMatches reports whether the 1-based position pos equals step*n + offset for some
// n >= 0. The arithmetic is done in int64; the parser bounds step and offset to
// 32 bits, so the difference cannot overflow.
func nthMatches(step, offset, pos int) bool {
	a, b, p := int64(step), int64(offset), int64(pos)
	if a == 0 {
		return p == b
	}
	diff := p - b
	return diff%a == 0 && diff/a >= 0
}

// compileNth filters siblings by the of-list first and then counts positions from the
// start or the end of the filtered list. A node outside the filter never matches.
func compileNth(c NthChild) matcher {
	var of matcher
	if len(c.Of) > 0 {
		of = compileList(c.Of)
	}

	return func(s Surface, id, scope astbuf.NodeID) bool {
		sibs := s.Siblings(id)
		if of != nil {
			if !of(s, id, scope) {
				return false
			}
			filtered := make([]astbuf.NodeID, 0, len(sibs))
			for _, sib := range sibs {
				if sib == id || of(s, sib, scope) {
					filtered = append(filtered, sib)
				}
			}
			sibs = filtered
		}

		idx := slices.Index(sibs, id)
		if idx < 0 {
			return false
		}
		pos := idx + 1
		if c.FromEnd {
			pos = len(sibs) - idx
		}
		return nthMatches(c.Step, c.Offset, pos)
	}
}

func compileHas(list List) matcher {
	type relAlt struct {
		m       matcher
		sibling bool
	}

	alts := make([]relAlt, len(list))
	for i, alt := range list {
		components := alt.Components
		rel := Descendant
		if len(components) > 0 {
			if comb, ok := components[0].(Combinator); ok {
				rel = comb.Rel
				components = components[1:]
			}
		}
		chain := make([]Component, 0, len(components)+2)
		chain = append(chain, scopeRef{}, Combinator{Rel: rel})
		chain = append(chain, components...)

		alts[i] = relAlt{
			m:       compileAlternative(chain),
			sibling: rel == Adjacent || rel == Sibling,
		}
	}

	return func(s Surface, id, _ astbuf.NodeID) bool {
		for _, alt := range alts {
			var roots []astbuf.NodeID
			if alt.sibling {
				sibs := s.Siblings(id)
				if idx := slices.Index(sibs, id); idx >= 0 {
					roots = sibs[idx+1:]
				}
			} else {
				roots = s.Children(id)
			}
			if anyInSubtrees(s, roots, func(n astbuf.NodeID) bool { return alt.m(s, n, id) }) {
				return true
			}
		}
		return false
	}
}

// anyInSubtrees reports whether pred holds for any node in the subtrees rooted at roots.
func anyInSubtrees(s Surface, roots []astbuf.NodeID, pred func(astbuf.NodeID) bool) bool {
	stack := slices.Clone(roots)
	slices.Reverse(stack)
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if pred(n) {
			return true
		}
		children := s.Children(n)
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, children[i])
		}
	}
	return false
}

func compileAttribute(a Attribute) matcher {
	path := a.Path
	if a.Op == OpExists {
		return func(s Surface, id, _ astbuf.NodeID) bool {
			k := s.AttrPath(id, path).Kind()
			return k != astbuf.KindUndefined && k != astbuf.KindNull
		}
	}

	op, lit := a.Op, a.Value
	return func(s Surface, id, _ astbuf.NodeID) bool {
		v := s.AttrPath(id, path)
		if !v.Defined() {
			return false
		}
		return compare(v, op, lit)
	}
}

// compare applies op to a resolved value and a literal.
func compare(v astbuf.Value, op Operator, lit Literal) bool {
	switch lit.Kind {
	case LitType:
		return equality(op, v.Kind().String() == lit.Str)

	case LitNull:
		return equality(op, v.Kind() == astbuf.KindNull)

	case LitBool:
		b, ok := v.Bool()
		return equality(op, ok && b == lit.Bool)

	case LitRegexp:
		text, ok := scalarText(v)
		return equality(op, ok && lit.Regexp.MatchString(text))

	case LitNumber:
		n, ok := v.Number()
		if !ok {
			return op == OpNe
		}
		return ordered(op, cmp.Compare(n, lit.Num))

	case LitString:
		if op == OpEq || op == OpNe {
			text, ok := scalarText(v)
			return equality(op, ok && text == lit.Str)
		}
		str, ok := v.Str()
		if !ok {
			return false
		}
		return ordered(op, cmp.Compare(str, lit.Str))
	}
	return false
}

func equality(op Operator, eq bool) bool {
	if op == OpNe {
		return !eq
	}
	return op == OpEq && eq
}

func ordered(op Operator, c int) bool {
	switch op {
	case OpEq:
		return c == 0
	case OpNe:
		return c != 0
	case OpLt:
		return c < 0
	case OpLe:
		return c <= 0
	case OpGt:
		return c > 0
	case OpGe:
		return c >= 0
	}
	return false
}

// scalarText renders string, number and boolean values for string and regexp
// comparison.
func scalarText(v astbuf.Value) (string, bool) {
	switch v.Kind() {
	case astbuf.KindString:
		s, _ := v.Str()
		return s, true
	case astbuf.KindNumber:
		n, _ := v.Number()
		return strconv.FormatFloat(n, 'g', -1, 64), true
	case astbuf.KindBool:
		b, _ := v.Bool()
		return strconv.FormatBool(b), true
	}
	return "", false
}
