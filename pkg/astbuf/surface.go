package astbuf

import "strings"

// typeField is answered from the node's type tag when no property of that name exists.
const typeField = "type"

// TypeName returns the node's type name, or "" for an invalid id.
func (t *Tree) TypeName(id NodeID) string {
	tag, ok := t.TypeTag(id)
	if !ok {
		return ""
	}
	return t.TypeNameOf(tag)
}

// Parent returns the parent of id, or NoNode for the root and invalid ids.
func (t *Tree) Parent(id NodeID) NodeID {
	if !t.Reachable(id) || id == t.Root() {
		return NoNode
	}
	p := t.rawParent(id)
	if p == noParent || p >= t.hdr[hNodeCount] {
		return NoNode
	}
	return NodeID(p)
}

// Children returns the children of id in property order. The slice is shared with
// the Tree and must not be modified. Nodes detached from the root have no children.
func (t *Tree) Children(id NodeID) []NodeID {
	if !t.Reachable(id) {
		return nil
	}
	start, end := t.childStart[id], t.childStart[id+1]
	return t.childIDs[start:end:end]
}

// FirstChild returns the first child of id, or NoNode.
func (t *Tree) FirstChild(id NodeID) NodeID {
	c := t.Children(id)
	if len(c) == 0 {
		return NoNode
	}
	return c[0]
}

// LastChild returns the last child of id, or NoNode.
func (t *Tree) LastChild(id NodeID) NodeID {
	c := t.Children(id)
	if len(c) == 0 {
		return NoNode
	}
	return c[len(c)-1]
}

// Siblings returns the child list of id's parent, which includes id itself. A node
// without a parent is its own only sibling.
func (t *Tree) Siblings(id NodeID) []NodeID {
	if !t.Valid(id) {
		return nil
	}
	p := t.Parent(id)
	if p == NoNode {
		return []NodeID{id}
	}
	return t.Children(p)
}

// Field returns the named property of id, or Undefined. The name "type" falls back to
// the node's type name when the node has no property of that name.
func (t *Tree) Field(id NodeID, name string) Value {
	if !t.Valid(id) {
		return Undefined()
	}
	if tag, ok := t.propTagByName(name); ok {
		first, count := t.propRange(id)
		for p := first; p < first+count; p++ {
			if t.propTag(p) == tag {
				return t.decodeProp(p)
			}
		}
	}
	if name == typeField {
		return StringValue(t.TypeName(id))
	}
	return Undefined()
}

// AttrPath resolves a dotted property path from id, following node-valued properties.
// A property whose own name spells the remaining segments ("regex.pattern") is
// preferred over walking. Any segment that is missing or not a node yields Undefined.
func (t *Tree) AttrPath(id NodeID, path []string) Value {
	cur := id
	for i, seg := range path {
		if i == len(path)-1 {
			return t.Field(cur, seg)
		}
		if v := t.Field(cur, strings.Join(path[i:], ".")); v.Defined() {
			return v
		}
		cur = t.Field(cur, seg).Node()
		if cur == NoNode {
			return Undefined()
		}
	}
	return Undefined()
}

// FieldNames returns the property names set on id in record order.
func (t *Tree) FieldNames(id NodeID) []string {
	if !t.Valid(id) {
		return nil
	}
	first, count := t.propRange(id)
	names := make([]string, 0, count)
	for p := first; p < first+count; p++ {
		tag := t.propTag(p)
		if int(tag) >= len(t.propNames) {
			continue
		}
		if s, ok := t.String(t.propNames[tag]); ok {
			names = append(names, s)
		}
	}
	return names
}
