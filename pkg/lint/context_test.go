package lint_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/selwalk/pkg/astbuf"
	"github.com/yaklabco/selwalk/pkg/config"
	"github.com/yaklabco/selwalk/pkg/lint"
)

func TestRuleContext_Options(t *testing.T) {
	t.Parallel()

	cfg := config.NewConfig()
	cfg.Rules["p/opts"] = config.RuleConfig{Options: map[string]any{
		"max":   float64(3),
		"count": 7,
		"name":  "x",
		"flag":  true,
		"terms": []any{"foo", 1, "bar"},
		"wrong": "not-a-number",
	}}

	type seen struct {
		max, count, wrong, missing int
		name                       string
		flag                       bool
		terms, fallback            []string
		severity                   config.Severity
	}
	var got seen

	plugin := singleRule("p", "opts", func(rc *lint.RuleContext) lint.Visitors {
		if !rc.Declaring() {
			got = seen{
				max:      rc.OptionInt("max", 0),
				count:    rc.OptionInt("count", 0),
				wrong:    rc.OptionInt("wrong", 9),
				missing:  rc.OptionInt("missing", 5),
				name:     rc.OptionString("name", ""),
				flag:     rc.OptionBool("flag", false),
				terms:    rc.OptionStringSlice("terms", nil),
				fallback: rc.OptionStringSlice("absent", []string{"d"}),
				severity: rc.Severity(),
			}
		}
		return lint.Visitors{"A": lint.OnEnter(noop)}
	})

	run(t, treeABC(t), "abc", cfg, plugin)

	assert.Equal(t, seen{
		max:      3,
		count:    7,
		wrong:    9,
		missing:  5,
		name:     "x",
		flag:     true,
		terms:    []string{"foo", "bar"},
		fallback: []string{"d"},
		severity: config.SeverityWarning,
	}, got)
}

func TestRuleContext_FileAccessors(t *testing.T) {
	t.Parallel()

	var (
		tree   *astbuf.Tree
		source string
		path   string
	)
	plugin := singleRule("p", "peek", func(rc *lint.RuleContext) lint.Visitors {
		if !rc.Declaring() {
			tree = rc.Tree()
			source = string(rc.Source())
			path = rc.Path
			assert.False(t, rc.Cancelled())
			assert.NotNil(t, rc.Logger())
		}
		return lint.Visitors{"A": lint.OnEnter(noop)}
	})

	input := treeABC(t)
	run(t, input, "abc", nil, plugin)

	require.NotNil(t, tree)
	assert.Same(t, input, tree)
	assert.Equal(t, "abc", source)
	assert.Equal(t, "test.src", path)
}

func TestDiagnosticBuilder(t *testing.T) {
	t.Parallel()

	tree := treeABC(t)
	d := lint.NewDiagnostic(tree.Node(1), "msg").
		WithSeverity(config.SeverityError).
		WithSuggestion("use C").
		Build()

	assert.Equal(t, "B", d.NodeType)
	assert.Equal(t, 0, d.StartOffset)
	assert.Equal(t, 1, d.EndOffset)
	assert.Equal(t, config.SeverityError, d.Severity)
	assert.Equal(t, "use C", d.Suggestion)

	empty := lint.NewDiagnostic(nil, "none").Build()
	assert.Empty(t, empty.NodeType)
}
