package astbuf

import "fmt"

// Node is the object view of one node handed to rule callbacks. Facades are created on
// first request and cached per id, so the same id always yields the same *Node.
type Node struct {
	tree *Tree
	id   NodeID
	typ  string
}

// Node returns the cached facade for id, or nil when id is invalid.
func (t *Tree) Node(id NodeID) *Node {
	if !t.Valid(id) {
		return nil
	}

	t.facadeMu.Lock()
	defer t.facadeMu.Unlock()

	if n := t.facades[id]; n != nil {
		return n
	}
	n := &Node{tree: t, id: id, typ: t.TypeName(id)}
	t.facades[id] = n
	return n
}

// ID returns the node id.
func (n *Node) ID() NodeID { return n.id }

// Tree returns the owning tree.
func (n *Node) Tree() *Tree { return n.tree }

// Type returns the node type name.
func (n *Node) Type() string { return n.typ }

// Span returns the source byte range.
func (n *Node) Span() (start, end int) { return n.tree.Span(n.id) }

// Get returns a property value.
func (n *Node) Get(name string) Value { return n.tree.Field(n.id, name) }

// GetString returns a string property, or "" when absent or not a string.
func (n *Node) GetString(name string) string {
	s, _ := n.Get(name).Str()
	return s
}

// Child returns the node held by a node-valued property, or nil.
func (n *Node) Child(name string) *Node {
	return n.tree.Node(n.Get(name).Node())
}

// List returns the nodes held by a list-valued property.
func (n *Node) List(name string) []*Node {
	ids := n.Get(name).List()
	if len(ids) == 0 {
		return nil
	}
	out := make([]*Node, 0, len(ids))
	for _, id := range ids {
		if c := n.tree.Node(id); c != nil {
			out = append(out, c)
		}
	}
	return out
}

// Parent returns the parent facade, or nil at the root.
func (n *Node) Parent() *Node { return n.tree.Node(n.tree.Parent(n.id)) }

// Children returns all children in property order.
func (n *Node) Children() []*Node {
	ids := n.tree.Children(n.id)
	out := make([]*Node, len(ids))
	for i, id := range ids {
		out[i] = n.tree.Node(id)
	}
	return out
}

// Text returns the source text covered by the node's span, or "" when no source is
// attached or the span is out of range.
func (n *Node) Text() string {
	src := n.tree.source
	start, end := n.Span()
	if start < 0 || end > len(src) || start > end {
		return ""
	}
	return string(src[start:end])
}

func (n *Node) String() string {
	start, end := n.Span()
	return fmt.Sprintf("%s#%d[%d:%d]", n.typ, n.id, start, end)
}
