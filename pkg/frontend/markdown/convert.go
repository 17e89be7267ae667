package markdown

import (
	"bytes"

	"github.com/yuin/goldmark/ast"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"

	"github.com/yaklabco/selwalk/pkg/astbuf"
)

// converter writes a goldmark AST into an astbuf.Builder in preorder, so a parent
// always has a smaller id than its children.
type converter struct {
	src     []byte
	b       *astbuf.Builder
	parents []astbuf.NodeID
	known   []bool
}

func newConverter(src []byte) *converter {
	return &converter{src: src, b: astbuf.NewBuilder()}
}

// span is a byte range; start < 0 means unknown.
type span struct{ start, end int }

var noSpan = span{-1, -1}

func (s span) union(o span) span {
	switch {
	case o.start < 0:
		return s
	case s.start < 0:
		return o
	}
	return span{min(s.start, o.start), max(s.end, o.end)}
}

// convert adds gm and its subtree and returns the covered source range.
func (c *converter) convert(gm ast.Node, parent astbuf.NodeID) span {
	id := c.b.Node(typeName(gm), 0, 0)
	c.parents = append(c.parents, parent)
	c.known = append(c.known, false)

	own := c.setProps(id, gm)

	var kids []astbuf.NodeID
	sp := own
	for child := gm.FirstChild(); child != nil; child = child.NextSibling() {
		// Id of the next node to be created.
		kids = append(kids, astbuf.NodeID(c.b.Len()))
		sp = sp.union(c.convert(child, id))
	}
	if len(kids) > 0 {
		c.b.SetList(id, "children", kids...)
	}

	if _, ok := gm.(*ast.Document); ok {
		sp = span{0, len(c.src)}
	}
	if sp.start >= 0 {
		c.b.SetSpan(id, sp.start, sp.end)
		c.known[id] = true
	}
	return sp
}

// inheritSpans gives nodes without any source segment their parent's range.
func (c *converter) inheritSpans() {
	for i := range c.known {
		if c.known[i] {
			continue
		}
		p := c.parents[i]
		if p == astbuf.NoNode {
			c.b.SetSpan(astbuf.NodeID(i), 0, len(c.src))
			continue
		}
		// Parents precede children, so p is already resolved.
		start, end := c.b.Span(p)
		c.b.SetSpan(astbuf.NodeID(i), start, end)
	}
}

func typeName(gm ast.Node) string {
	switch gm.(type) {
	case *ast.FencedCodeBlock, *ast.CodeBlock:
		return "CodeBlock"
	case *ast.String:
		return "Text"
	case *east.TableHeader:
		return "TableRow"
	}
	return gm.Kind().String()
}

// setProps records the node's attributes and returns the range of its own segments.
func (c *converter) setProps(id astbuf.NodeID, gm ast.Node) span {
	own := noSpan
	if gm.Type() != ast.TypeInline {
		own = linesSpan(gm.Lines())
	}

	switch n := gm.(type) {
	case *ast.Heading:
		c.b.SetNumber(id, "level", float64(n.Level))

	case *ast.List:
		c.b.SetBool(id, "ordered", n.IsOrdered())
		c.b.SetBool(id, "tight", n.IsTight)
		if n.IsOrdered() {
			c.b.SetNumber(id, "start", float64(n.Start))
		}
		c.b.SetString(id, "marker", string([]byte{n.Marker}))

	case *ast.FencedCodeBlock:
		c.b.SetBool(id, "fenced", true)
		if n.Info != nil {
			c.b.SetString(id, "info", string(n.Info.Segment.Value(c.src)))
			own = own.union(span{n.Info.Segment.Start, n.Info.Segment.Stop})
		}
		if lang := n.Language(c.src); len(lang) > 0 {
			c.b.SetString(id, "language", string(lang))
		}
		c.b.SetString(id, "value", c.linesText(n.Lines()))

	case *ast.CodeBlock:
		c.b.SetBool(id, "fenced", false)
		c.b.SetString(id, "value", c.linesText(n.Lines()))

	case *ast.Text:
		c.b.SetString(id, "value", string(n.Segment.Value(c.src)))
		c.b.SetBool(id, "softBreak", n.SoftLineBreak())
		c.b.SetBool(id, "hardBreak", n.HardLineBreak())
		own = span{n.Segment.Start, n.Segment.Stop}

	case *ast.String:
		c.b.SetString(id, "value", string(n.Value))

	case *ast.Emphasis:
		c.b.SetNumber(id, "level", float64(n.Level))

	case *ast.CodeSpan:
		var buf bytes.Buffer
		for child := n.FirstChild(); child != nil; child = child.NextSibling() {
			if t, ok := child.(*ast.Text); ok {
				buf.Write(t.Segment.Value(c.src))
			}
		}
		c.b.SetString(id, "value", buf.String())

	case *ast.Link:
		c.b.SetString(id, "destination", string(n.Destination))
		c.b.SetString(id, "title", string(n.Title))

	case *ast.Image:
		c.b.SetString(id, "destination", string(n.Destination))
		c.b.SetString(id, "title", string(n.Title))

	case *ast.AutoLink:
		c.b.SetString(id, "destination", string(n.URL(c.src)))
		c.b.SetString(id, "label", string(n.Label(c.src)))

	case *ast.RawHTML:
		for i := range n.Segments.Len() {
			seg := n.Segments.At(i)
			own = own.union(span{seg.Start, seg.Stop})
		}

	case *east.TaskCheckBox:
		c.b.SetBool(id, "checked", n.IsChecked)

	case *east.TableCell:
		c.b.SetString(id, "alignment", n.Alignment.String())
		_, header := n.Parent().(*east.TableHeader)
		c.b.SetBool(id, "header", header)

	case *east.TableHeader:
		c.b.SetBool(id, "header", true)

	case *east.TableRow:
		c.b.SetBool(id, "header", false)
	}

	return own
}

func linesSpan(lines *text.Segments) span {
	if lines == nil || lines.Len() == 0 {
		return noSpan
	}
	return span{lines.At(0).Start, lines.At(lines.Len() - 1).Stop}
}

func (c *converter) linesText(lines *text.Segments) string {
	var buf bytes.Buffer
	for i := range lines.Len() {
		seg := lines.At(i)
		buf.Write(seg.Value(c.src))
	}
	return buf.String()
}
