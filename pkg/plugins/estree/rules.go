package estree

import (
	"slices"
	"strings"

	"github.com/yaklabco/selwalk/pkg/astbuf"
	"github.com/yaklabco/selwalk/pkg/lint"
)

func noDebugger() lint.Rule {
	return lint.Rule{
		Meta: lint.RuleMeta{Description: "Disallow the use of debugger", Tags: []string{"problem"}},
		Create: func(rc *lint.RuleContext) lint.Visitors {
			return lint.Visitors{
				"DebuggerStatement": lint.OnEnter(func(n *astbuf.Node) error {
					rc.Report(n, "Unexpected 'debugger' statement")
					return nil
				}),
			}
		},
	}
}

// noConsole reports console method calls except those listed in the allow option.
func noConsole() lint.Rule {
	return lint.Rule{
		Meta: lint.RuleMeta{Description: "Disallow the use of console", Tags: []string{"suggestion"}},
		Create: func(rc *lint.RuleContext) lint.Visitors {
			allow := rc.OptionStringSlice("allow", nil)
			return lint.Visitors{
				`CallExpression > MemberExpression.callee[object.name="console"]`: lint.OnEnter(func(n *astbuf.Node) error {
					method := ""
					if prop := n.Child("property"); prop != nil {
						method = prop.GetString("name")
					}
					if slices.Contains(allow, method) {
						return nil
					}
					rc.Report(n, "Unexpected console statement")
					return nil
				}),
			}
		},
	}
}

func eqeqeq() lint.Rule {
	return lint.Rule{
		Meta: lint.RuleMeta{Description: "Require the use of === and !==", Tags: []string{"suggestion"}},
		Create: func(rc *lint.RuleContext) lint.Visitors {
			return lint.Visitors{
				`BinaryExpression[operator="=="], BinaryExpression[operator="!="]`: lint.OnEnter(func(n *astbuf.Node) error {
					op := n.GetString("operator")
					strict := op + "="
					rc.Emit(lint.NewDiagnostic(n, "Expected '"+strict+"' and instead saw '"+op+"'").
						WithSuggestion("Use '" + strict + "'").
						Build())
					return nil
				}),
			}
		},
	}
}

func noVar() lint.Rule {
	return lint.Rule{
		Meta: lint.RuleMeta{Description: "Require let or const instead of var", Tags: []string{"suggestion"}},
		Create: func(rc *lint.RuleContext) lint.Visitors {
			return lint.Visitors{
				`VariableDeclaration[kind="var"]`: lint.OnEnter(func(n *astbuf.Node) error {
					rc.Report(n, "Unexpected var, use let or const instead")
					return nil
				}),
			}
		},
	}
}

func noNestedTernary() lint.Rule {
	return lint.Rule{
		Meta: lint.RuleMeta{Description: "Disallow nested ternary expressions", Tags: []string{"suggestion"}},
		Create: func(rc *lint.RuleContext) lint.Visitors {
			return lint.Visitors{
				"ConditionalExpression > ConditionalExpression.consequent, " +
					"ConditionalExpression > ConditionalExpression.alternate": lint.OnEnter(func(n *astbuf.Node) error {
					rc.Report(n, "Do not nest ternary expressions")
					return nil
				}),
			}
		},
	}
}

// noEmpty reports empty blocks. Function bodies are allowed to be empty.
func noEmpty() lint.Rule {
	return lint.Rule{
		Meta: lint.RuleMeta{Description: "Disallow empty block statements", Tags: []string{"suggestion"}},
		Create: func(rc *lint.RuleContext) lint.Visitors {
			return lint.Visitors{
				"BlockStatement:not(:has(*)):not(" + functions + " > BlockStatement)": lint.OnEnter(func(n *astbuf.Node) error {
					rc.Report(n, "Empty block statement")
					return nil
				}),
			}
		},
	}
}

func noRegexSpaces() lint.Rule {
	return lint.Rule{
		Meta: lint.RuleMeta{Description: "Disallow multiple spaces in regular expressions", Tags: []string{"problem"}},
		Create: func(rc *lint.RuleContext) lint.Visitors {
			return lint.Visitors{
				"Literal[regex.pattern=/  /]": lint.OnEnter(func(n *astbuf.Node) error {
					pattern, _ := n.Get("regex.pattern").Str()
					count := strings.Count(pattern, " ")
					rc.Reportf(n, "Spaces are hard to count. Use {%d}", count)
					return nil
				}),
			}
		},
	}
}
