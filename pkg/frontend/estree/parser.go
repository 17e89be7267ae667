// Package estree turns ESTree documents (the JSON emitted by acorn, espree, or
// @babel/parser with estree output, or the same data as YAML) into astbuf trees.
//
// Every mapping with a string "type" key becomes a node. Its keys are stored as
// properties in document order, which is also the child order used for traversal.
// Spans come from numeric "start"/"end" keys or a two-element "range". Plain nested
// mappings without a type ("regex", "loc"-style data) are flattened into dotted
// property names, so [regex.pattern=/x/] resolves.
package estree

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/yaklabco/selwalk/pkg/astbuf"
)

// Errors returned by Parse.
var (
	ErrEmptyDocument = errors.New("empty ESTree document")
	ErrNotNode       = errors.New("document root is not an ESTree node")
	ErrTooDeep       = errors.New("ESTree document nested too deeply")
	ErrTooLarge      = errors.New("ESTree document expands to too many values")
)

// maxDepth bounds recursion over hostile or aliased documents.
const maxDepth = 4096

// DefaultMaxValues bounds the nodes and properties one document may expand to. YAML
// aliases let a small document reference the same subtree many times over.
const DefaultMaxValues = 1 << 22

// skipped keys are either consumed as the span or too bulky to be useful as properties.
var skipped = map[string]bool{
	"type":  true,
	"start": true,
	"end":   true,
	"range": true,
	"loc":   true,
}

// Parser converts ESTree documents. It is safe for concurrent use.
type Parser struct {
	maxValues int
}

// Option configures a Parser.
type Option func(*Parser)

// WithMaxValues overrides DefaultMaxValues. Values below 1 are ignored.
func WithMaxValues(n int) Option {
	return func(p *Parser) {
		if n > 0 {
			p.maxValues = n
		}
	}
}

// New returns a Parser.
func New(opts ...Option) *Parser {
	p := &Parser{maxValues: DefaultMaxValues}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse decodes content and encodes it as a tree with no source text. Spans then
// index the program the document was produced from, which the caller does not have.
func (p *Parser) Parse(ctx context.Context, path string, content []byte) (*astbuf.Tree, error) {
	return p.ParseWithSource(ctx, path, content, nil)
}

// ParseWithSource is Parse with the program text the spans refer to. The root
// defaults to covering all of source.
func (p *Parser) ParseWithSource(ctx context.Context, path string, content, source []byte) (*astbuf.Tree, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("parse cancelled: %w", err)
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(content, &doc); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyDocument, path)
	}

	root := resolve(doc.Content[0])
	if _, ok := nodeType(root); !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotNode, path)
	}

	c := &converter{b: astbuf.NewBuilder(), budget: cmp.Or(p.maxValues, DefaultMaxValues)}
	if _, err := c.node(root, span{0, len(source)}, 0); err != nil {
		return nil, fmt.Errorf("encode %s: %w", path, err)
	}

	tree, err := c.b.Tree(astbuf.WithSource(source))
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", path, err)
	}
	return tree, nil
}

type span struct{ start, end int }

type converter struct {
	b      *astbuf.Builder
	budget int
}

// spend charges one node or property against the document's budget.
func (c *converter) spend() error {
	c.budget--
	if c.budget < 0 {
		return ErrTooLarge
	}
	return nil
}

// node encodes an ESTree mapping. Nodes without a span of their own take the
// enclosing node's.
func (c *converter) node(m *yaml.Node, enclosing span, depth int) (astbuf.NodeID, error) {
	if depth > maxDepth {
		return astbuf.NoNode, ErrTooDeep
	}
	if err := c.spend(); err != nil {
		return astbuf.NoNode, err
	}

	typ, _ := nodeType(m)
	sp := nodeSpan(m, enclosing)
	id := c.b.Node(typ, sp.start, sp.end)

	for i := 0; i+1 < len(m.Content); i += 2 {
		key := m.Content[i].Value
		if skipped[key] {
			continue
		}
		if err := c.prop(id, key, resolve(m.Content[i+1]), sp, depth); err != nil {
			return astbuf.NoNode, err
		}
	}
	return id, nil
}

func (c *converter) prop(id astbuf.NodeID, key string, v *yaml.Node, sp span, depth int) error {
	if depth > maxDepth {
		return ErrTooDeep
	}
	if err := c.spend(); err != nil {
		return err
	}

	switch v.Kind {
	case yaml.MappingNode:
		if _, ok := nodeType(v); ok {
			child, err := c.node(v, sp, depth+1)
			if err != nil {
				return err
			}
			c.b.SetChild(id, key, child)
			return nil
		}
		for i := 0; i+1 < len(v.Content); i += 2 {
			if err := c.prop(id, key+"."+v.Content[i].Value, resolve(v.Content[i+1]), sp, depth+1); err != nil {
				return err
			}
		}

	case yaml.SequenceNode:
		var kids []astbuf.NodeID
		for _, item := range v.Content {
			item = resolve(item)
			if _, ok := nodeType(item); !ok {
				// Holes in array patterns and non-node items carry no structure.
				continue
			}
			child, err := c.node(item, sp, depth+1)
			if err != nil {
				return err
			}
			kids = append(kids, child)
		}
		c.b.SetList(id, key, kids...)

	case yaml.ScalarNode:
		c.scalar(id, key, v)
	}
	return nil
}

func (c *converter) scalar(id astbuf.NodeID, key string, v *yaml.Node) {
	switch v.ShortTag() {
	case "!!null":
		c.b.SetNull(id, key)
	case "!!bool":
		b, err := strconv.ParseBool(v.Value)
		if err != nil {
			c.b.SetString(id, key, v.Value)
			return
		}
		c.b.SetBool(id, key, b)
	case "!!int", "!!float":
		f, err := strconv.ParseFloat(v.Value, 64)
		if err != nil {
			var decoded float64
			if v.Decode(&decoded) != nil {
				c.b.SetString(id, key, v.Value)
				return
			}
			f = decoded
		}
		c.b.SetNumber(id, key, f)
	default:
		c.b.SetString(id, key, v.Value)
	}
}

// nodeType reports the "type" of an ESTree node mapping.
func nodeType(m *yaml.Node) (string, bool) {
	if m == nil || m.Kind != yaml.MappingNode {
		return "", false
	}
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == "type" {
			v := resolve(m.Content[i+1])
			if v.Kind == yaml.ScalarNode && v.ShortTag() == "!!str" && v.Value != "" {
				return v.Value, true
			}
			return "", false
		}
	}
	return "", false
}

// nodeSpan reads start/end or range, falling back to the enclosing span.
func nodeSpan(m *yaml.Node, enclosing span) span {
	start, end := -1, -1
	for i := 0; i+1 < len(m.Content); i += 2 {
		v := resolve(m.Content[i+1])
		switch m.Content[i].Value {
		case "start":
			start = intValue(v, start)
		case "end":
			end = intValue(v, end)
		case "range":
			if v.Kind == yaml.SequenceNode && len(v.Content) == 2 {
				start = intValue(resolve(v.Content[0]), start)
				end = intValue(resolve(v.Content[1]), end)
			}
		}
	}
	if start < 0 || end < start {
		return enclosing
	}
	return span{start, end}
}

func intValue(v *yaml.Node, fallback int) int {
	if v.Kind != yaml.ScalarNode {
		return fallback
	}
	f, err := strconv.ParseFloat(v.Value, 64)
	if err != nil || f < 0 || f > math.MaxInt32 {
		return fallback
	}
	return int(f)
}

func resolve(n *yaml.Node) *yaml.Node {
	for n != nil && n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	return n
}
