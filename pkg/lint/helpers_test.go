package lint_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yaklabco/selwalk/internal/logging"
	"github.com/yaklabco/selwalk/pkg/astbuf"
	"github.com/yaklabco/selwalk/pkg/config"
	"github.com/yaklabco/selwalk/pkg/lint"
)

// treeABC builds A(children: [B, C]) over the source "abc".
func treeABC(t *testing.T) *astbuf.Tree {
	t.Helper()

	b := astbuf.NewBuilder()
	a := b.Node("A", 0, 3)
	bn := b.Node("B", 0, 1)
	c := b.Node("C", 2, 3)
	b.SetList(a, "children", bn, c)

	tree, err := b.Tree(astbuf.WithSource([]byte("abc")))
	require.NoError(t, err)
	return tree
}

// run installs plugins into a fresh registry, builds the table and lints tree.
func run(t *testing.T, tree *astbuf.Tree, source string, cfg *config.Config, plugins ...lint.Plugin) *lint.FileResult {
	t.Helper()

	reg := lint.NewRegistry(lint.WithConfig(cfg), lint.WithLogger(logging.Discard()))
	require.NoError(t, reg.Install(plugins...))

	engine := lint.NewEngine(nil, lint.BuildTable(reg), cfg)
	engine.Logger = logging.Discard()

	result, err := engine.LintTree(context.Background(), "test.src", []byte(source), tree)
	require.NoError(t, err)
	return result
}

// recorder collects callback events.
type recorder struct {
	events []string
}

func (r *recorder) handler(label string) lint.Handler {
	return lint.Handler{
		Enter: func(n *astbuf.Node) error {
			r.events = append(r.events, fmt.Sprintf("%s:enter%s", label, n.Type()))
			return nil
		},
		Exit: func(n *astbuf.Node) error {
			r.events = append(r.events, fmt.Sprintf("%s:exit%s", label, n.Type()))
			return nil
		},
	}
}

func singleRule(plugin, rule string, visitors func(rc *lint.RuleContext) lint.Visitors) lint.Plugin {
	return lint.Plugin{
		Name:  plugin,
		Rules: map[string]lint.Rule{rule: {Create: visitors}},
	}
}
