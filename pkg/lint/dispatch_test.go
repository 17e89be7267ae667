package lint_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/selwalk/pkg/lint"
)

func TestBuildTable_Shape(t *testing.T) {
	t.Parallel()

	reg := newTestRegistry()
	require.NoError(t, reg.Install(lint.Plugin{Name: "p", Rules: map[string]lint.Rule{
		"a": selectorsRule("Identifier", "*"),
		"b": selectorsRule(":is(Literal, TemplateLiteral)", "CallExpression > Identifier"),
		"c": selectorsRule(":not(Identifier)", "[name]"),
	}}))

	table := lint.BuildTable(reg)

	assert.Equal(t, 6, table.Len())
	// Identifier, Literal, TemplateLiteral.
	assert.Equal(t, 3, table.Buckets())
	// "*", ":not(Identifier)" and "[name]" can match any type.
	assert.Equal(t, 3, table.Wildcards())
	assert.Equal(t, []string{
		"*", "Identifier",
		":is(Literal, TemplateLiteral)", "CallExpression > Identifier",
		":not(Identifier)", "[name]",
	}, table.Selectors())
}

func TestBuildTable_Empty(t *testing.T) {
	t.Parallel()

	table := lint.BuildTable(newTestRegistry())

	assert.Zero(t, table.Len())
	assert.Zero(t, table.Buckets())
	assert.Empty(t, table.Selectors())

	result := run(t, treeABC(t), "abc", nil)
	assert.Equal(t, 3, result.Visited)
	assert.Empty(t, result.Diagnostics)
}
