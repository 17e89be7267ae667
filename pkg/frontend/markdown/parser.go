// Package markdown turns Markdown into an astbuf tree using goldmark.
//
// Node types follow goldmark's node kinds (Document, Heading, Paragraph, List,
// ListItem, CodeBlock, Text, Emphasis, Link and so on). Every node keeps its children in
// a "children" list, so selectors such as "Heading > Text" and "List Link" work as
// expected.
package markdown

import (
	"context"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"

	"github.com/yaklabco/selwalk/pkg/astbuf"
	"github.com/yaklabco/selwalk/pkg/config"
)

// Parser converts Markdown to astbuf trees. It is safe for concurrent use.
type Parser struct {
	flavor config.Flavor
	md     goldmark.Markdown
}

// New creates a parser for the given flavor. Unknown flavors fall back to CommonMark.
func New(flavor config.Flavor) *Parser {
	f := flavorOrDefault(flavor)
	return &Parser{
		flavor: f,
		md:     newGoldmarkInstance(f),
	}
}

// Flavor returns the configured Markdown flavor.
func (p *Parser) Flavor() config.Flavor {
	return p.flavor
}

// Parse converts content into a tree whose root is the Document node. The tree keeps a
// copy of content as its source.
func (p *Parser) Parse(ctx context.Context, path string, content []byte) (*astbuf.Tree, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("parse cancelled: %w", err)
	}

	src := copyContent(content)
	doc := p.md.Parser().Parse(text.NewReader(src), parser.WithContext(parser.NewContext()))

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("parse cancelled: %w", err)
	}

	conv := newConverter(src)
	conv.convert(doc, astbuf.NoNode)
	conv.inheritSpans()

	tree, err := conv.b.Tree(astbuf.WithSource(src))
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", path, err)
	}
	return tree, nil
}

func flavorOrDefault(flavor config.Flavor) config.Flavor {
	switch flavor {
	case config.FlavorCommonMark, config.FlavorGFM:
		return flavor
	default:
		return config.FlavorCommonMark
	}
}

//nolint:ireturn // goldmark.Markdown is an external interface type
func newGoldmarkInstance(flavor config.Flavor) goldmark.Markdown {
	var opts []goldmark.Option

	switch flavor {
	case config.FlavorGFM:
		opts = append(opts, goldmark.WithExtensions(extension.GFM))
	case config.FlavorCommonMark:
		// No extensions for pure CommonMark.
	}

	return goldmark.New(opts...)
}

func copyContent(content []byte) []byte {
	if content == nil {
		return nil
	}
	cp := make([]byte, len(content))
	copy(cp, content)
	return cp
}
