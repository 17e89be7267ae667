package selector_test

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yaklabco/selwalk/pkg/astbuf"
	"github.com/yaklabco/selwalk/pkg/selector"
)

// fixture is a tree plus names for its nodes.
type fixture struct {
	tree  *astbuf.Tree
	names map[string]astbuf.NodeID
}

func (f fixture) ids(t *testing.T, names ...string) []astbuf.NodeID {
	t.Helper()
	out := make([]astbuf.NodeID, 0, len(names))
	for _, n := range names {
		id, ok := f.names[n]
		require.True(t, ok, "unknown fixture node %q", n)
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}

// matches returns every node the selector matches, in id order.
func (f fixture) matches(t *testing.T, src string) []astbuf.NodeID {
	t.Helper()
	c, err := selector.Compile(src)
	require.NoError(t, err)
	return matchAll(f.tree, c.Match)
}

func matchAll(tree *astbuf.Tree, m selector.Matcher) []astbuf.NodeID {
	out := []astbuf.NodeID{}
	for i := range tree.Len() {
		if m(tree, astbuf.NodeID(i)) {
			out = append(out, astbuf.NodeID(i))
		}
	}
	return out
}

// programFixture models:
//
//	console.log(x, [a.b]);
//	const y = 5;
//	debugger;
func programFixture(t testing.TB) fixture {
	t.Helper()

	b := astbuf.NewBuilder()
	names := map[string]astbuf.NodeID{}
	node := func(name, typ string) astbuf.NodeID {
		id := b.Node(typ, 0, 0)
		names[name] = id
		return id
	}
	ident := func(name, value string) astbuf.NodeID {
		id := node(name, "Identifier")
		b.SetString(id, "name", value)
		return id
	}

	prog := node("prog", "Program")

	s1 := node("s1", "ExpressionStatement")
	c1 := node("c1", "CallExpression")
	m1 := node("m1", "MemberExpression")
	i1 := ident("i1", "console")
	i2 := ident("i2", "log")
	i3 := ident("i3", "x")
	arr := node("arr", "ArrayExpression")
	m2 := node("m2", "MemberExpression")
	i4 := ident("i4", "a")
	i5 := ident("i5", "b")

	s2 := node("s2", "VariableDeclaration")
	d1 := node("d1", "VariableDeclarator")
	i6 := ident("i6", "y")
	lit := node("lit", "Literal")

	s3 := node("s3", "DebuggerStatement")

	b.SetChild(m1, "object", i1)
	b.SetChild(m1, "property", i2)
	b.SetBool(m1, "computed", false)
	b.SetChild(m2, "object", i4)
	b.SetChild(m2, "property", i5)
	b.SetList(arr, "elements", m2)
	b.SetChild(c1, "callee", m1)
	b.SetList(c1, "arguments", i3, arr)
	b.SetChild(s1, "expression", c1)

	b.SetNumber(lit, "value", 5)
	b.SetString(lit, "raw", "5")
	b.SetChild(d1, "id", i6)
	b.SetChild(d1, "init", lit)
	b.SetString(s2, "kind", "const")
	b.SetList(s2, "declarations", d1)

	b.SetList(prog, "body", s1, s2, s3)

	tree, err := b.Tree()
	require.NoError(t, err)

	return fixture{tree: tree, names: names}
}

// siblingsFixture is a Parent with five Item children a..e.
func siblingsFixture(t testing.TB) fixture {
	t.Helper()

	b := astbuf.NewBuilder()
	names := map[string]astbuf.NodeID{"root": b.Node("Parent", 0, 0)}
	var items []astbuf.NodeID
	for _, n := range []string{"a", "b", "c", "d", "e"} {
		id := b.Node("Item", 0, 0)
		names[n] = id
		items = append(items, id)
	}
	b.SetList(names["root"], "items", items...)

	tree, err := b.Tree()
	require.NoError(t, err)

	return fixture{tree: tree, names: names}
}
