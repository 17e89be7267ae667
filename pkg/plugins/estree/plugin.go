// Package estree provides the built-in "estree" plugin: JavaScript rules expressed as
// selectors over ESTree trees.
package estree

import (
	"github.com/yaklabco/selwalk/pkg/lint"
)

// Name is the plugin name used in rule identifiers ("estree/no-debugger").
const Name = "estree"

// functions matches every ESTree function form.
const functions = ":is(FunctionDeclaration, FunctionExpression, ArrowFunctionExpression)"

// Plugin returns the estree plugin.
func Plugin() lint.Plugin {
	return lint.Plugin{
		Name: Name,
		Rules: map[string]lint.Rule{
			"no-debugger":       noDebugger(),
			"no-console":        noConsole(),
			"eqeqeq":            eqeqeq(),
			"no-var":            noVar(),
			"no-nested-ternary": noNestedTernary(),
			"no-empty":          noEmpty(),
			"no-regex-spaces":   noRegexSpaces(),
			"max-depth":         maxDepth(),
		},
	}
}
