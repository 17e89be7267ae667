package markdown

import (
	"github.com/yaklabco/selwalk/pkg/astbuf"
	"github.com/yaklabco/selwalk/pkg/lint"
)

func fencedCodeLanguage() lint.Rule {
	return lint.Rule{
		Meta: lint.RuleMeta{
			Description: "Fenced code blocks should have a language specified",
			Tags:        []string{"code"},
		},
		Create: func(rc *lint.RuleContext) lint.Visitors {
			return lint.Visitors{
				"CodeBlock[fenced=true]:not([language])": lint.OnEnter(func(n *astbuf.Node) error {
					rc.Emit(lint.NewDiagnostic(n, "Fenced code block has no language").
						WithSuggestion("Add a language after the opening fence, e.g. ```text").
						Build())
					return nil
				}),
			}
		},
	}
}

// maxListDepth counts open lists with enter/exit pairs rather than a selector chain,
// so any depth limit works.
func maxListDepth() lint.Rule {
	return lint.Rule{
		Meta: lint.RuleMeta{
			Description: "Lists should not be nested deeper than max_depth",
			Tags:        []string{"lists"},
		},
		Create: func(rc *lint.RuleContext) lint.Visitors {
			maxDepth := rc.OptionInt("max_depth", 3)
			depth := 0
			return lint.Visitors{
				"List": {
					Enter: func(n *astbuf.Node) error {
						depth++
						if depth == maxDepth+1 {
							rc.Reportf(n, "List nested %d levels deep (max %d)", depth, maxDepth)
						}
						return nil
					},
					Exit: func(*astbuf.Node) error {
						depth--
						return nil
					},
				},
			}
		},
	}
}
