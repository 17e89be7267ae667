// Package astbuf reads and writes the flat binary syntax-tree encoding consumed by
// the selector engine.
//
// A buffer is produced once by a front-end (see [Builder]) and then viewed through a
// [Tree], which never copies or mutates it. Nodes are addressed by dense integer ids;
// the Tree is the arena and a [NodeID] is an index into it.
package astbuf

import "errors"

// Buffer layout constants. All integers are little-endian.
const (
	// Magic identifies a selwalk tree buffer.
	Magic = "SWB1"

	// Version is the layout version written by Builder and accepted by NewTree.
	Version = 1

	headerWords    = 15
	headerSize     = len(Magic) + headerWords*4
	nodeRecordSize = 24
	propRecordSize = 12
)

// Header word indexes (after the magic).
const (
	hVersion = iota
	hStringIndexOff
	hStringCount
	hTypeNameOff
	hTypeCount
	hPropNameOff
	hPropNameCount
	hNodesOff
	hNodeCount
	hPropsOff
	hPropCount
	hListsOff
	hListLen
	hRoot
	hReserved
)

// Property kinds as stored in the property table.
const (
	propNull uint8 = iota
	propBool
	propNumber
	propString
	propNode
	propNodeList
)

// noParent marks a node record without a parent.
const noParent = ^uint32(0)

// ErrMalformed is returned by NewTree when the header or section table is inconsistent.
var ErrMalformed = errors.New("malformed tree buffer")

// ErrTooManyTags is returned by Builder when more than 65535 distinct type or property
// names are used.
var ErrTooManyTags = errors.New("too many distinct type or property names")
