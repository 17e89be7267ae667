package selector

import "github.com/yaklabco/selwalk/pkg/astbuf"

// Surface is the navigation and lookup interface compiled matchers run against.
// *astbuf.Tree implements it. Every method returns astbuf.NoNode or an undefined
// Value for ids or names it cannot resolve.
type Surface interface {
	TypeName(id astbuf.NodeID) string
	Parent(id astbuf.NodeID) astbuf.NodeID
	FirstChild(id astbuf.NodeID) astbuf.NodeID
	LastChild(id astbuf.NodeID) astbuf.NodeID
	Children(id astbuf.NodeID) []astbuf.NodeID
	Siblings(id astbuf.NodeID) []astbuf.NodeID
	Field(id astbuf.NodeID, name string) astbuf.Value
	AttrPath(id astbuf.NodeID, path []string) astbuf.Value
}

var _ Surface = (*astbuf.Tree)(nil)
