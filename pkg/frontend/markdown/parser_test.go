package markdown_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/selwalk/pkg/astbuf"
	"github.com/yaklabco/selwalk/pkg/config"
	"github.com/yaklabco/selwalk/pkg/frontend/markdown"
	"github.com/yaklabco/selwalk/pkg/selector"
)

const sample = "# Title\n\nSee [x]() and *a **b***.\n\n```go\ncode\n```\n\n```\nbare\n```\n"

func parse(t *testing.T, flavor config.Flavor, src string) *astbuf.Tree {
	t.Helper()

	tree, err := markdown.New(flavor).Parse(context.Background(), "doc.md", []byte(src))
	require.NoError(t, err)
	return tree
}

func ofType(tree *astbuf.Tree, typ string) []astbuf.NodeID {
	var out []astbuf.NodeID
	for i := range tree.Len() {
		if id := astbuf.NodeID(i); tree.TypeName(id) == typ {
			out = append(out, id)
		}
	}
	return out
}

func matching(t *testing.T, tree *astbuf.Tree, sel string) []astbuf.NodeID {
	t.Helper()

	c, err := selector.Compile(sel)
	require.NoError(t, err)

	var out []astbuf.NodeID
	for i := range tree.Len() {
		if id := astbuf.NodeID(i); c.Match(tree, id) {
			out = append(out, id)
		}
	}
	return out
}

func TestParse_Structure(t *testing.T) {
	t.Parallel()

	tree := parse(t, config.FlavorGFM, sample)

	root := tree.Root()
	assert.Equal(t, "Document", tree.TypeName(root))
	start, end := tree.Span(root)
	assert.Equal(t, 0, start)
	assert.Equal(t, len(sample), end)

	headings := ofType(tree, "Heading")
	require.Len(t, headings, 1)
	heading := tree.Node(headings[0])
	assert.Equal(t, "1", heading.Get("level").String())
	assert.Equal(t, "Title", heading.Text())
	assert.Equal(t, root, tree.Parent(headings[0]))

	links := ofType(tree, "Link")
	require.Len(t, links, 1)
	dest := tree.Field(links[0], "destination")
	assert.Equal(t, astbuf.KindString, dest.Kind())
	assert.Empty(t, dest.String())

	blocks := ofType(tree, "CodeBlock")
	require.Len(t, blocks, 2)
	first := tree.Node(blocks[0])
	assert.Equal(t, "go", first.GetString("language"))
	assert.Equal(t, "code\n", first.GetString("value"))
	assert.False(t, tree.Field(blocks[1], "language").Defined())
}

func TestParse_SpansNest(t *testing.T) {
	t.Parallel()

	tree := parse(t, config.FlavorGFM, sample)

	for i := range tree.Len() {
		id := astbuf.NodeID(i)
		p := tree.Parent(id)
		if p == astbuf.NoNode {
			continue
		}
		cs, ce := tree.Span(id)
		ps, pe := tree.Span(p)
		assert.LessOrEqual(t, ps, cs, "%s starts before its parent", tree.Node(id))
		assert.LessOrEqual(t, ce, pe, "%s ends after its parent", tree.Node(id))
	}
}

func TestParse_Selectors(t *testing.T) {
	t.Parallel()

	tree := parse(t, config.FlavorGFM, sample)

	tests := []struct {
		selector string
		want     int
	}{
		{`Heading[level=1]`, 1},
		{`Heading[level>4]`, 0},
		{`Link[destination=""]`, 1},
		{`CodeBlock[fenced=true]:not([language])`, 1},
		{`CodeBlock[language="go"]`, 1},
		{`Emphasis Emphasis`, 1},
		{`Emphasis[level=2]`, 1},
		{`Paragraph > Link > Text`, 1},
		{`Document > *`, 4},
	}

	for _, tt := range tests {
		t.Run(tt.selector, func(t *testing.T) {
			t.Parallel()
			assert.Len(t, matching(t, tree, tt.selector), tt.want)
		})
	}
}

func TestParse_Flavors(t *testing.T) {
	t.Parallel()

	const src = "~~gone~~\n\n- [x] done\n\n| a | b |\n|---|:-:|\n| 1 | 2 |\n"

	gfm := parse(t, config.FlavorGFM, src)
	assert.Len(t, ofType(gfm, "Strikethrough"), 1)
	boxes := ofType(gfm, "TaskCheckBox")
	require.Len(t, boxes, 1)
	checked, _ := gfm.Field(boxes[0], "checked").Bool()
	assert.True(t, checked)
	assert.Len(t, ofType(gfm, "Table"), 1)
	assert.Len(t, matching(t, gfm, `TableRow[header=true] > TableCell[alignment="center"]`), 1)

	plain := parse(t, config.FlavorCommonMark, src)
	assert.Empty(t, ofType(plain, "Strikethrough"))
	assert.Empty(t, ofType(plain, "TaskCheckBox"))
	assert.Empty(t, ofType(plain, "Table"))
}

func TestNew_FlavorDefault(t *testing.T) {
	t.Parallel()

	assert.Equal(t, config.FlavorGFM, markdown.New(config.FlavorGFM).Flavor())
	assert.Equal(t, config.FlavorCommonMark, markdown.New("bogus").Flavor())
}

func TestParse_Cancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := markdown.New(config.FlavorGFM).Parse(ctx, "doc.md", []byte("# x\n"))
	require.ErrorIs(t, err, context.Canceled)
}

func TestParse_Empty(t *testing.T) {
	t.Parallel()

	tree := parse(t, config.FlavorGFM, "")
	assert.Equal(t, 1, tree.Len())
	assert.Equal(t, "Document", tree.TypeName(tree.Root()))
}
