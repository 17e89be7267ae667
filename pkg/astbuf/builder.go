package astbuf

import (
	"fmt"
	"math"
)

type propRec struct {
	tag  uint16
	kind uint8
	a, b uint32
}

type nodeRec struct {
	tag        uint16
	parent     uint32
	start, end uint32
	props      []propRec
}

// Builder assembles a tree buffer. Front-ends create nodes, attach properties and
// children, and call Bytes once.
//
// Setting a property that already exists on a node replaces it in place, so record
// order is first-set order.
type Builder struct {
	strings   []string
	stringIDs map[string]uint32

	typeNames []uint32
	typeTags  map[string]int
	propNames []uint32
	propTags  map[string]int

	nodes []nodeRec
	lists []uint32
	root  NodeID
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{
		stringIDs: make(map[string]uint32),
		typeTags:  make(map[string]int),
		propTags:  make(map[string]int),
	}
}

func (b *Builder) intern(s string) uint32 {
	if id, ok := b.stringIDs[s]; ok {
		return id
	}
	id := uint32(len(b.strings))
	b.strings = append(b.strings, s)
	b.stringIDs[s] = id
	return id
}

func (b *Builder) typeTag(name string) int {
	if tag, ok := b.typeTags[name]; ok {
		return tag
	}
	tag := len(b.typeNames)
	b.typeNames = append(b.typeNames, b.intern(name))
	b.typeTags[name] = tag
	return tag
}

func (b *Builder) propTag(name string) int {
	if tag, ok := b.propTags[name]; ok {
		return tag
	}
	tag := len(b.propNames)
	b.propNames = append(b.propNames, b.intern(name))
	b.propTags[name] = tag
	return tag
}

// Len returns the number of nodes created so far.
func (b *Builder) Len() int { return len(b.nodes) }

// Node creates a parentless node covering source bytes [start, end). The first node
// created is the root unless SetRoot says otherwise.
func (b *Builder) Node(typ string, start, end int) NodeID {
	id := NodeID(len(b.nodes))
	b.nodes = append(b.nodes, nodeRec{
		tag:    uint16(b.typeTag(typ)),
		parent: noParent,
		start:  uint32(max(start, 0)),
		end:    uint32(max(end, 0)),
	})
	return id
}

// SetRoot marks the root node.
func (b *Builder) SetRoot(id NodeID) { b.root = id }

// SetSpan updates a node's source range.
func (b *Builder) SetSpan(id NodeID, start, end int) {
	b.nodes[id].start = uint32(max(start, 0))
	b.nodes[id].end = uint32(max(end, 0))
}

// Span returns the source range recorded for a node so far.
func (b *Builder) Span(id NodeID) (start, end int) {
	return int(b.nodes[id].start), int(b.nodes[id].end)
}

func (b *Builder) set(id NodeID, name string, kind uint8, x, y uint32) {
	rec := &b.nodes[id]
	tag := uint16(b.propTag(name))
	for i := range rec.props {
		if rec.props[i].tag == tag {
			rec.props[i] = propRec{tag: tag, kind: kind, a: x, b: y}
			return
		}
	}
	rec.props = append(rec.props, propRec{tag: tag, kind: kind, a: x, b: y})
}

// SetNull sets an explicit null property.
func (b *Builder) SetNull(id NodeID, name string) { b.set(id, name, propNull, 0, 0) }

// SetBool sets a boolean property.
func (b *Builder) SetBool(id NodeID, name string, v bool) {
	var x uint32
	if v {
		x = 1
	}
	b.set(id, name, propBool, x, 0)
}

// SetNumber sets a numeric property.
func (b *Builder) SetNumber(id NodeID, name string, v float64) {
	bits := math.Float64bits(v)
	b.set(id, name, propNumber, uint32(bits), uint32(bits>>32))
}

// SetString sets a string property.
func (b *Builder) SetString(id NodeID, name, v string) {
	b.set(id, name, propString, b.intern(v), 0)
}

// SetChild stores child under name and makes id its parent.
func (b *Builder) SetChild(id NodeID, name string, child NodeID) {
	b.nodes[child].parent = uint32(id)
	b.set(id, name, propNode, uint32(child), 0)
}

// SetList stores children under name in order and makes id their parent. An empty
// list is still recorded so the property exists.
func (b *Builder) SetList(id NodeID, name string, children ...NodeID) {
	start := uint32(len(b.lists))
	for _, c := range children {
		b.nodes[c].parent = uint32(id)
		b.lists = append(b.lists, uint32(c))
	}
	b.set(id, name, propNodeList, start, uint32(len(children)))
}

// Bytes encodes the buffer.
func (b *Builder) Bytes() ([]byte, error) {
	if len(b.nodes) == 0 {
		return nil, fmt.Errorf("%w: no nodes", ErrMalformed)
	}
	if len(b.typeNames) > math.MaxUint16+1 || len(b.propNames) > math.MaxUint16+1 {
		return nil, ErrTooManyTags
	}

	var propCount int
	for _, n := range b.nodes {
		propCount += len(n.props)
	}

	var hdr [headerWords]uint32
	off := uint32(headerSize)
	place := func(word int, count, size int) {
		hdr[word] = off
		off += uint32(count * size)
	}

	place(hStringIndexOff, len(b.strings), 4)
	hdr[hStringCount] = uint32(len(b.strings))
	place(hTypeNameOff, len(b.typeNames), 4)
	hdr[hTypeCount] = uint32(len(b.typeNames))
	place(hPropNameOff, len(b.propNames), 4)
	hdr[hPropNameCount] = uint32(len(b.propNames))
	place(hNodesOff, len(b.nodes), nodeRecordSize)
	hdr[hNodeCount] = uint32(len(b.nodes))
	place(hPropsOff, propCount, propRecordSize)
	hdr[hPropCount] = uint32(propCount)
	place(hListsOff, len(b.lists), 4)
	hdr[hListLen] = uint32(len(b.lists))
	hdr[hVersion] = Version
	hdr[hRoot] = uint32(b.root)

	stringsOff := off
	size := int(off)
	for _, s := range b.strings {
		size += 4 + len(s)
	}

	buf := make([]byte, size)
	copy(buf, Magic)
	for i, w := range hdr {
		le.PutUint32(buf[len(Magic)+i*4:], w)
	}

	at := stringsOff
	for i, s := range b.strings {
		le.PutUint32(buf[hdr[hStringIndexOff]+uint32(i)*4:], at)
		le.PutUint32(buf[at:], uint32(len(s)))
		copy(buf[at+4:], s)
		at += 4 + uint32(len(s))
	}

	putWords(buf[hdr[hTypeNameOff]:], b.typeNames)
	putWords(buf[hdr[hPropNameOff]:], b.propNames)
	putWords(buf[hdr[hListsOff]:], b.lists)

	var first uint32
	for i, n := range b.nodes {
		rec := buf[hdr[hNodesOff]+uint32(i)*nodeRecordSize:]
		le.PutUint16(rec, n.tag)
		le.PutUint32(rec[4:], n.parent)
		le.PutUint32(rec[8:], n.start)
		le.PutUint32(rec[12:], n.end)
		le.PutUint32(rec[16:], first)
		le.PutUint32(rec[20:], uint32(len(n.props)))

		for j, p := range n.props {
			prec := buf[hdr[hPropsOff]+(first+uint32(j))*propRecordSize:]
			le.PutUint16(prec, p.tag)
			prec[2] = p.kind
			le.PutUint32(prec[4:], p.a)
			le.PutUint32(prec[8:], p.b)
		}
		first += uint32(len(n.props))
	}

	return buf, nil
}

// Tree encodes the buffer and opens it.
func (b *Builder) Tree(opts ...Option) (*Tree, error) {
	buf, err := b.Bytes()
	if err != nil {
		return nil, err
	}
	return NewTree(buf, opts...)
}

func putWords(dst []byte, words []uint32) {
	for i, w := range words {
		le.PutUint32(dst[i*4:], w)
	}
}
