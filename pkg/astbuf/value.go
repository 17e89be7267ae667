package astbuf

import (
	"strconv"
	"strings"
)

// NodeID identifies a node within one Tree.
type NodeID uint32

// NoNode is returned by navigation operations when there is no such node.
const NoNode NodeID = NodeID(noParent)

// Kind classifies a property Value.
type Kind uint8

// Value kinds.
const (
	KindUndefined Kind = iota
	KindNull
	KindBool
	KindNumber
	KindString
	KindNode
	KindNodeList
)

// String returns the lowercase kind name used by the selector type() test.
func (k Kind) String() string {
	switch k {
	case KindUndefined:
		return "undefined"
	case KindNull:
		return "null"
	case KindBool:
		return "boolean"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindNode:
		return "object"
	case KindNodeList:
		return "array"
	default:
		return "unknown"
	}
}

// Value is a property value read from a Tree: a scalar, a child node or a list of
// child nodes. The zero Value is undefined.
type Value struct {
	kind Kind
	num  float64
	str  string
	node NodeID
	list []NodeID
}

// Undefined returns the sentinel for an absent property or unresolved path.
func Undefined() Value { return Value{} }

// NullValue returns an explicit null.
func NullValue() Value { return Value{kind: KindNull} }

// BoolValue wraps a boolean.
func BoolValue(b bool) Value {
	v := Value{kind: KindBool}
	if b {
		v.num = 1
	}
	return v
}

// NumberValue wraps a number.
func NumberValue(f float64) Value { return Value{kind: KindNumber, num: f} }

// StringValue wraps a string.
func StringValue(s string) Value { return Value{kind: KindString, str: s} }

// NodeValue wraps a child node reference.
func NodeValue(id NodeID) Value { return Value{kind: KindNode, node: id} }

// ListValue wraps a list of child nodes. The slice is not copied.
func ListValue(ids []NodeID) Value { return Value{kind: KindNodeList, list: ids} }

// Kind reports the value kind.
func (v Value) Kind() Kind { return v.kind }

// Defined reports whether the value is anything other than undefined.
func (v Value) Defined() bool { return v.kind != KindUndefined }

// Bool returns the boolean payload; ok is false for other kinds.
func (v Value) Bool() (bool, bool) { return v.num != 0, v.kind == KindBool }

// Number returns the numeric payload; ok is false for other kinds.
func (v Value) Number() (float64, bool) { return v.num, v.kind == KindNumber }

// Str returns the string payload; ok is false for other kinds.
func (v Value) Str() (string, bool) { return v.str, v.kind == KindString }

// Node returns the node payload, or NoNode for other kinds.
func (v Value) Node() NodeID {
	if v.kind != KindNode {
		return NoNode
	}
	return v.node
}

// List returns the node list payload, or nil for other kinds.
// The returned slice is shared with the Tree and must not be modified.
func (v Value) List() []NodeID {
	if v.kind != KindNodeList {
		return nil
	}
	return v.list
}

// Contains reports whether the value is the node id or a list containing it.
func (v Value) Contains(id NodeID) bool {
	switch v.kind {
	case KindNode:
		return v.node == id
	case KindNodeList:
		for _, c := range v.list {
			if c == id {
				return true
			}
		}
	}
	return false
}

// String renders the value for messages and debugging.
func (v Value) String() string {
	switch v.kind {
	case KindUndefined:
		return "undefined"
	case KindNull:
		return "null"
	case KindBool:
		return strconv.FormatBool(v.num != 0)
	case KindNumber:
		return strconv.FormatFloat(v.num, 'g', -1, 64)
	case KindString:
		return v.str
	case KindNode:
		return "#" + strconv.FormatUint(uint64(v.node), 10)
	case KindNodeList:
		parts := make([]string, len(v.list))
		for i, id := range v.list {
			parts[i] = "#" + strconv.FormatUint(uint64(id), 10)
		}
		return "[" + strings.Join(parts, ",") + "]"
	default:
		return "?"
	}
}
