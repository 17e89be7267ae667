package astbuf

import (
	"encoding/binary"
	"fmt"
	"math"
	"sync"
)

var le = binary.LittleEndian

// Tree is a read-only view over one encoded buffer: the arena every NodeID indexes.
//
// Strings are decoded lazily and memoized. The child adjacency (node and node-list
// properties in record order) is precomputed once so child and sibling navigation is
// a slice lookup. A Tree is safe for concurrent readers.
type Tree struct {
	buf    []byte
	hdr    [headerWords]uint32
	source []byte

	strMu   sync.Mutex
	strings []string
	decoded []bool

	typeNames []uint32 // type tag -> string id
	propNames []uint32 // prop tag -> string id

	namesOnce  sync.Once
	typeByName map[string]uint16
	propByName map[string]uint16

	lists      []NodeID
	childStart []uint32
	childIDs   []NodeID
	reachable  []bool

	facadeMu sync.Mutex
	facades  []*Node
}

// Option configures a Tree.
type Option func(*Tree)

// WithSource attaches the original source text so spans can be sliced.
func WithSource(src []byte) Option {
	return func(t *Tree) { t.source = src }
}

// NewTree validates the buffer header and section bounds and returns a Tree over it.
// Later lookups with out-of-range ids degrade to NoNode or Undefined rather than
// failing, so traversal of a Tree returned here never panics.
func NewTree(buf []byte, opts ...Option) (*Tree, error) {
	if len(buf) < headerSize || string(buf[:len(Magic)]) != Magic {
		return nil, fmt.Errorf("%w: missing %q header", ErrMalformed, Magic)
	}

	t := &Tree{buf: buf}
	for i := range t.hdr {
		t.hdr[i] = le.Uint32(buf[len(Magic)+i*4:])
	}

	if t.hdr[hVersion] != Version {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrMalformed, t.hdr[hVersion])
	}

	sections := []struct {
		name       string
		off, count uint32
		size       uint64
	}{
		{"string index", t.hdr[hStringIndexOff], t.hdr[hStringCount], 4},
		{"type names", t.hdr[hTypeNameOff], t.hdr[hTypeCount], 4},
		{"property names", t.hdr[hPropNameOff], t.hdr[hPropNameCount], 4},
		{"nodes", t.hdr[hNodesOff], t.hdr[hNodeCount], nodeRecordSize},
		{"properties", t.hdr[hPropsOff], t.hdr[hPropCount], propRecordSize},
		{"lists", t.hdr[hListsOff], t.hdr[hListLen], 4},
	}
	for _, s := range sections {
		if uint64(s.off)+uint64(s.count)*s.size > uint64(len(buf)) {
			return nil, fmt.Errorf("%w: %s section out of bounds", ErrMalformed, s.name)
		}
	}

	if t.hdr[hNodeCount] == 0 || t.hdr[hRoot] >= t.hdr[hNodeCount] {
		return nil, fmt.Errorf("%w: root %d outside %d nodes", ErrMalformed, t.hdr[hRoot], t.hdr[hNodeCount])
	}

	for _, opt := range opts {
		opt(t)
	}

	nStrings := t.hdr[hStringCount]
	t.strings = make([]string, nStrings)
	t.decoded = make([]bool, nStrings)

	t.typeNames = t.readWords(t.hdr[hTypeNameOff], t.hdr[hTypeCount])
	t.propNames = t.readWords(t.hdr[hPropNameOff], t.hdr[hPropNameCount])

	t.lists = make([]NodeID, t.hdr[hListLen])
	for i := range t.lists {
		t.lists[i] = NodeID(le.Uint32(buf[t.hdr[hListsOff]+uint32(i)*4:]))
	}

	t.buildChildren()
	t.markReachable()

	t.facades = make([]*Node, t.hdr[hNodeCount])

	return t, nil
}

func (t *Tree) readWords(off, count uint32) []uint32 {
	out := make([]uint32, count)
	for i := range out {
		out[i] = le.Uint32(t.buf[off+uint32(i)*4:])
	}
	return out
}

// buildChildren computes the CSR child adjacency. A child is only accepted when its
// own record names the node as parent and it is not the root, which keeps every
// traversal from the root finite even over an inconsistent buffer.
func (t *Tree) buildChildren() {
	n := t.hdr[hNodeCount]
	root := NodeID(t.hdr[hRoot])
	t.childStart = make([]uint32, n+1)
	t.childIDs = make([]NodeID, 0, n)

	accept := func(parent, child NodeID) {
		if child == root || uint32(child) >= n {
			return
		}
		if t.rawParent(child) != uint32(parent) {
			return
		}
		t.childIDs = append(t.childIDs, child)
	}

	for i := uint32(0); i < n; i++ {
		t.childStart[i] = uint32(len(t.childIDs))
		first, count := t.propRange(NodeID(i))
		for p := first; p < first+count; p++ {
			kind, a, b := t.propAt(p)
			switch kind {
			case propNode:
				accept(NodeID(i), NodeID(a))
			case propNodeList:
				for _, c := range t.listSlice(a, b) {
					accept(NodeID(i), c)
				}
			}
		}
	}
	t.childStart[n] = uint32(len(t.childIDs))
}

// markReachable flags the nodes reachable from the root through accepted child edges.
// Navigation only ever moves between reachable nodes, so every parent chain ends at
// the root.
func (t *Tree) markReachable() {
	t.reachable = make([]bool, t.hdr[hNodeCount])
	stack := []NodeID{t.Root()}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if t.reachable[id] {
			continue
		}
		t.reachable[id] = true
		start, end := t.childStart[id], t.childStart[id+1]
		stack = append(stack, t.childIDs[start:end]...)
	}
}

// Reachable reports whether id is part of the tree hanging from the root.
func (t *Tree) Reachable(id NodeID) bool { return t.Valid(id) && t.reachable[id] }

// Len returns the number of nodes.
func (t *Tree) Len() int { return int(t.hdr[hNodeCount]) }

// Root returns the root node id.
func (t *Tree) Root() NodeID { return NodeID(t.hdr[hRoot]) }

// Source returns the source text attached with WithSource, if any.
func (t *Tree) Source() []byte { return t.source }

// Valid reports whether id addresses a node in this tree.
func (t *Tree) Valid(id NodeID) bool { return uint32(id) < t.hdr[hNodeCount] }

func (t *Tree) record(id NodeID) []byte {
	off := t.hdr[hNodesOff] + uint32(id)*nodeRecordSize
	return t.buf[off : off+nodeRecordSize]
}

func (t *Tree) rawParent(id NodeID) uint32 { return le.Uint32(t.record(id)[4:]) }

// propRange returns the node's property slice clamped to the property table.
func (t *Tree) propRange(id NodeID) (uint32, uint32) {
	rec := t.record(id)
	first := le.Uint32(rec[16:])
	count := le.Uint32(rec[20:])
	total := t.hdr[hPropCount]
	if first >= total {
		return 0, 0
	}
	if count > total-first {
		count = total - first
	}
	return first, count
}

func (t *Tree) propAt(p uint32) (kind uint8, a, b uint32) {
	off := t.hdr[hPropsOff] + p*propRecordSize
	rec := t.buf[off : off+propRecordSize]
	return rec[2], le.Uint32(rec[4:]), le.Uint32(rec[8:])
}

func (t *Tree) propTag(p uint32) uint16 {
	off := t.hdr[hPropsOff] + p*propRecordSize
	return le.Uint16(t.buf[off:])
}

func (t *Tree) listSlice(start, count uint32) []NodeID {
	total := uint32(len(t.lists))
	if start > total || count > total-start {
		return nil
	}
	return t.lists[start : start+count : start+count]
}

// String returns the string with the given id, decoding it on first use.
func (t *Tree) String(sid uint32) (string, bool) {
	if sid >= uint32(len(t.strings)) {
		return "", false
	}

	t.strMu.Lock()
	defer t.strMu.Unlock()

	if t.decoded[sid] {
		return t.strings[sid], true
	}

	off := le.Uint32(t.buf[t.hdr[hStringIndexOff]+sid*4:])
	if uint64(off)+4 > uint64(len(t.buf)) {
		return "", false
	}
	n := le.Uint32(t.buf[off:])
	if uint64(off)+4+uint64(n) > uint64(len(t.buf)) {
		return "", false
	}

	s := string(t.buf[off+4 : off+4+n])
	t.strings[sid] = s
	t.decoded[sid] = true
	return s, true
}

// TypeTag returns the numeric type tag of a node.
func (t *Tree) TypeTag(id NodeID) (uint16, bool) {
	if !t.Valid(id) {
		return 0, false
	}
	return le.Uint16(t.record(id)), true
}

// TypeCount returns the number of distinct type tags in this tree.
func (t *Tree) TypeCount() int { return len(t.typeNames) }

// TypeNameOf returns the type name for a tag.
func (t *Tree) TypeNameOf(tag uint16) string {
	if int(tag) >= len(t.typeNames) {
		return ""
	}
	s, _ := t.String(t.typeNames[tag])
	return s
}

// Span returns the node's source byte range.
func (t *Tree) Span(id NodeID) (start, end int) {
	if !t.Valid(id) {
		return 0, 0
	}
	rec := t.record(id)
	return int(le.Uint32(rec[8:])), int(le.Uint32(rec[12:]))
}

func (t *Tree) buildNameMaps() {
	t.typeByName = make(map[string]uint16, len(t.typeNames))
	for tag := range t.typeNames {
		t.typeByName[t.TypeNameOf(uint16(tag))] = uint16(tag)
	}
	t.propByName = make(map[string]uint16, len(t.propNames))
	for tag, sid := range t.propNames {
		name, _ := t.String(sid)
		t.propByName[name] = uint16(tag)
	}
}

// TypeTagByName maps a type name to this tree's tag for it.
func (t *Tree) TypeTagByName(name string) (uint16, bool) {
	t.namesOnce.Do(t.buildNameMaps)
	tag, ok := t.typeByName[name]
	return tag, ok
}

func (t *Tree) propTagByName(name string) (uint16, bool) {
	t.namesOnce.Do(t.buildNameMaps)
	tag, ok := t.propByName[name]
	return tag, ok
}

func (t *Tree) decodeProp(p uint32) Value {
	kind, a, b := t.propAt(p)
	switch kind {
	case propNull:
		return NullValue()
	case propBool:
		return BoolValue(a != 0)
	case propNumber:
		return NumberValue(math.Float64frombits(uint64(b)<<32 | uint64(a)))
	case propString:
		s, ok := t.String(a)
		if !ok {
			return Undefined()
		}
		return StringValue(s)
	case propNode:
		if !t.Valid(NodeID(a)) {
			return Undefined()
		}
		return NodeValue(NodeID(a))
	case propNodeList:
		return ListValue(t.listSlice(a, b))
	default:
		return Undefined()
	}
}
