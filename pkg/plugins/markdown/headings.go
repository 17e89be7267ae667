package markdown

import (
	"fmt"

	"github.com/yaklabco/selwalk/pkg/astbuf"
	"github.com/yaklabco/selwalk/pkg/lint"
)

func level(n *astbuf.Node) int {
	f, _ := n.Get("level").Number()
	return int(f)
}

// headingIncrement tracks the previous heading level across the file, so it relies on
// callbacks arriving in document order.
func headingIncrement() lint.Rule {
	return lint.Rule{
		Meta: lint.RuleMeta{
			Description: "Heading levels should only increment by one level at a time",
			Tags:        []string{"headings"},
		},
		Create: func(rc *lint.RuleContext) lint.Visitors {
			prev := 0
			return lint.Visitors{
				"Heading": lint.OnEnter(func(n *astbuf.Node) error {
					lvl := level(n)
					// First heading can be any level.
					if prev > 0 && lvl > prev+1 {
						rc.Emit(lint.NewDiagnostic(n,
							fmt.Sprintf("Heading level jumped from H%d to H%d", prev, lvl)).
							WithSuggestion(fmt.Sprintf("Use H%d instead", prev+1)).
							Build())
					}
					prev = lvl
					return nil
				}),
			}
		},
	}
}

func singleH1() lint.Rule {
	return lint.Rule{
		Meta: lint.RuleMeta{
			Description: "Multiple top-level headings in the same document",
			Tags:        []string{"headings"},
		},
		Create: func(rc *lint.RuleContext) lint.Visitors {
			seen := 0
			return lint.Visitors{
				"Heading[level=1]": lint.OnEnter(func(n *astbuf.Node) error {
					seen++
					if seen > 1 {
						rc.Report(n, "Multiple top-level headings in the same document")
					}
					return nil
				}),
			}
		},
	}
}

// maxHeadingDepth builds its selector from the max_level option, so the declared
// selector follows configuration.
func maxHeadingDepth() lint.Rule {
	return lint.Rule{
		Meta: lint.RuleMeta{
			Description: "Headings should not be nested deeper than max_level",
			Tags:        []string{"headings"},
		},
		Create: func(rc *lint.RuleContext) lint.Visitors {
			maxLevel := rc.OptionInt("max_level", 4)
			return lint.Visitors{
				fmt.Sprintf("Heading[level>%d]", maxLevel): lint.OnEnter(func(n *astbuf.Node) error {
					rc.Reportf(n, "Heading level H%d exceeds H%d", level(n), maxLevel)
					return nil
				}),
			}
		},
	}
}
