package estree

import (
	"github.com/yaklabco/selwalk/pkg/astbuf"
	"github.com/yaklabco/selwalk/pkg/lint"
)

const blocks = ":is(IfStatement, SwitchStatement, TryStatement, DoWhileStatement, " +
	"WhileStatement, WithStatement, ForStatement, ForInStatement, ForOfStatement)"

// maxDepth limits block nesting. Depth restarts inside each function, so the rule
// keeps a stack with one counter per open function. The function handlers are listed
// first so a frame exists before any block in it is counted.
func maxDepth() lint.Rule {
	return lint.Rule{
		Meta: lint.RuleMeta{Description: "Enforce a maximum depth that blocks can be nested", Tags: []string{"suggestion"}},
		CreateOrdered: func(rc *lint.RuleContext) lint.VisitorList {
			limit := rc.OptionInt("max", 4)
			stack := []int{0}

			return lint.VisitorList{
				{Selector: functions, Handler: lint.Handler{
					Enter: func(*astbuf.Node) error {
						stack = append(stack, 0)
						return nil
					},
					Exit: func(*astbuf.Node) error {
						stack = stack[:len(stack)-1]
						return nil
					},
				}},
				// An else-if is the alternate of its parent if and does not nest further.
				{Selector: blocks + ":not(IfStatement > IfStatement.alternate)", Handler: lint.Handler{
					Enter: func(n *astbuf.Node) error {
						top := len(stack) - 1
						stack[top]++
						if stack[top] > limit {
							rc.Reportf(n, "Blocks are nested too deeply (%d). Maximum allowed is %d", stack[top], limit)
						}
						return nil
					},
					Exit: func(*astbuf.Node) error {
						stack[len(stack)-1]--
						return nil
					},
				}},
			}
		},
	}
}
