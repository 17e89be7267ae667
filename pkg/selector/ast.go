// Package selector parses and compiles structural selectors over astbuf trees.
//
// The language follows CSS selectors adapted to syntax trees: type tests, field tests,
// attribute tests with a closed operator set, the pseudo-classes :has, :is, :not,
// :nth-child, :nth-last-child, :first-child and :last-child, and the four combinators.
// A parsed selector is a List of OR'd Alternatives; each Alternative is a written
// left-to-right chain of Components that is matched right-to-left from its anchor.
package selector

import (
	"regexp"
	"strconv"
	"strings"
)

// List is a comma-separated selector list; a node matches when any alternative does.
type List []Alternative

// Alternative is one chain of components and combinators.
type Alternative struct {
	Components []Component
}

// Component is one tagged element of an Alternative. The concrete types are Type,
// Wildcard, Field, Attribute, Combinator, NthChild, Has, Is, Not, FirstChild and
// LastChild.
type Component interface {
	String() string
	component()
}

// Type matches nodes whose type name equals Name exactly.
type Type struct{ Name string }

// Wildcard matches every node.
type Wildcard struct{}

// Field matches a node stored under Path[len-1] of its parent, whose parent chain
// holds the earlier segments.
type Field struct{ Path []string }

// Attribute tests a property path. Op is OpExists for the bare [path] form.
type Attribute struct {
	Path  []string
	Op    Operator
	Value Literal
}

// Combinator relates the compound on its left to the compound on its right.
type Combinator struct{ Rel Relation }

// NthChild is the positional test behind :nth-child and :nth-last-child. The node
// matches at 1-based position p when p = Step*n + Offset for some n >= 0.
type NthChild struct {
	Step    int
	Offset  int
	Of      List
	FromEnd bool
}

// Has matches when a node related to the subject (a descendant unless the
// alternative starts with a combinator) matches List.
type Has struct{ List List }

// Is matches when the node matches any alternative of List.
type Is struct{ List List }

// Not matches when the node matches no alternative of List.
type Not struct{ List List }

// FirstChild matches the first of its siblings.
type FirstChild struct{}

// LastChild matches the last of its siblings.
type LastChild struct{}

func (Type) component()       {}
func (Wildcard) component()   {}
func (Field) component()      {}
func (Attribute) component()  {}
func (Combinator) component() {}
func (NthChild) component()   {}
func (Has) component()        {}
func (Is) component()         {}
func (Not) component()        {}
func (FirstChild) component() {}
func (LastChild) component()  {}

// Relation is a combinator kind.
type Relation uint8

// Relations.
const (
	Descendant Relation = iota
	Child
	Adjacent
	Sibling
)

func (r Relation) String() string {
	switch r {
	case Child:
		return ">"
	case Adjacent:
		return "+"
	case Sibling:
		return "~"
	default:
		return " "
	}
}

// Operator is an attribute comparison.
type Operator uint8

// Operators.
const (
	OpExists Operator = iota
	OpEq
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe
)

var operatorText = map[Operator]string{
	OpEq: "=", OpNe: "!=", OpLt: "<", OpLe: "<=", OpGt: ">", OpGe: ">=",
}

func (o Operator) String() string { return operatorText[o] }

// LiteralKind classifies an attribute value.
type LiteralKind uint8

// Literal kinds.
const (
	LitString LiteralKind = iota
	LitNumber
	LitRegexp
	LitType
	LitBool
	LitNull
)

// Literal is the right-hand side of an attribute comparison.
type Literal struct {
	Kind   LiteralKind
	Str    string
	Num    float64
	Bool   bool
	Regexp *regexp.Regexp
	// Flags holds the regexp flags as written.
	Flags string
}

func (l Literal) String() string {
	switch l.Kind {
	case LitNumber:
		return strconv.FormatFloat(l.Num, 'g', -1, 64)
	case LitRegexp:
		return "/" + l.Str + "/" + l.Flags
	case LitType:
		return "type(" + l.Str + ")"
	case LitBool:
		return strconv.FormatBool(l.Bool)
	case LitNull:
		return "null"
	default:
		return strconv.Quote(l.Str)
	}
}

func (l List) String() string {
	parts := make([]string, len(l))
	for i, alt := range l {
		parts[i] = alt.String()
	}
	return strings.Join(parts, ", ")
}

func (a Alternative) String() string {
	var sb strings.Builder
	for i, c := range a.Components {
		if comb, ok := c.(Combinator); ok {
			if comb.Rel == Descendant {
				if i > 0 {
					sb.WriteByte(' ')
				}
				continue
			}
			if i > 0 {
				sb.WriteByte(' ')
			}
			sb.WriteString(comb.Rel.String())
			sb.WriteByte(' ')
			continue
		}
		sb.WriteString(c.String())
	}
	return sb.String()
}

func (c Type) String() string { return c.Name }

func (Wildcard) String() string { return "*" }

func (c Field) String() string { return "." + strings.Join(c.Path, ".") }

func (c Combinator) String() string { return c.Rel.String() }

func (FirstChild) String() string { return ":first-child" }

func (LastChild) String() string { return ":last-child" }

func (c Has) String() string { return ":has(" + c.List.String() + ")" }

func (c Is) String() string { return ":is(" + c.List.String() + ")" }

func (c Not) String() string { return ":not(" + c.List.String() + ")" }

func (c Attribute) String() string {
	path := strings.Join(c.Path, ".")
	if c.Op == OpExists {
		return "[" + path + "]"
	}
	return "[" + path + c.Op.String() + c.Value.String() + "]"
}

func (c NthChild) String() string {
	name := ":nth-child("
	if c.FromEnd {
		name = ":nth-last-child("
	}

	var formula string
	switch {
	case c.Step == 0:
		formula = strconv.Itoa(c.Offset)
	case c.Offset == 0:
		formula = strconv.Itoa(c.Step) + "n"
	case c.Offset > 0:
		formula = strconv.Itoa(c.Step) + "n+" + strconv.Itoa(c.Offset)
	default:
		formula = strconv.Itoa(c.Step) + "n" + strconv.Itoa(c.Offset)
	}

	if len(c.Of) > 0 {
		formula += " of " + c.Of.String()
	}
	return name + formula + ")"
}
