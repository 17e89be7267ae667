package markdown

import (
	"github.com/yaklabco/selwalk/pkg/astbuf"
	"github.com/yaklabco/selwalk/pkg/lint"
)

func noEmptyLinks() lint.Rule {
	return lint.Rule{
		Meta: lint.RuleMeta{
			Description: "Links must have a destination",
			Tags:        []string{"links"},
		},
		Create: func(rc *lint.RuleContext) lint.Visitors {
			return lint.Visitors{
				`Link[destination=""], Link[destination="#"]`: lint.OnEnter(func(n *astbuf.Node) error {
					rc.Report(n, "No empty links")
					return nil
				}),
			}
		},
	}
}

func noAltText() lint.Rule {
	return lint.Rule{
		Meta: lint.RuleMeta{
			Description: "Images should have alternate text",
			Tags:        []string{"images", "accessibility"},
		},
		Create: func(rc *lint.RuleContext) lint.Visitors {
			return lint.Visitors{
				"Image:not(:has(Text))": lint.OnEnter(func(n *astbuf.Node) error {
					rc.Emit(lint.NewDiagnostic(n, "Image has no alternate text").
						WithSuggestion("Describe the image between the brackets").
						Build())
					return nil
				}),
			}
		},
	}
}

func noNestedEmphasis() lint.Rule {
	return lint.Rule{
		Meta: lint.RuleMeta{
			Description: "Emphasis should not be nested inside emphasis",
			Tags:        []string{"emphasis"},
		},
		Create: func(rc *lint.RuleContext) lint.Visitors {
			return lint.Visitors{
				"Emphasis Emphasis": lint.OnEnter(func(n *astbuf.Node) error {
					rc.Report(n, "Nested emphasis")
					return nil
				}),
			}
		},
	}
}

// noBareURLs only looks at text directly inside paragraphs and list items; link text
// and code are excluded by the child combinator.
func noBareURLs() lint.Rule {
	return lint.Rule{
		Meta: lint.RuleMeta{
			Description: "Bare URL used",
			Tags:        []string{"links", "url"},
		},
		Create: func(rc *lint.RuleContext) lint.Visitors {
			return lint.Visitors{
				`:is(Paragraph, TextBlock, Heading) > Text[value=/https?:\/\/\S/]`: lint.OnEnter(func(n *astbuf.Node) error {
					rc.Emit(lint.NewDiagnostic(n, "Bare URL used").
						WithSuggestion("Wrap the URL in angle brackets or make it a link").
						Build())
					return nil
				}),
			}
		},
	}
}
