package markdown

import (
	"fmt"

	ac "github.com/petar-dambovaliev/aho-corasick"

	"github.com/yaklabco/selwalk/pkg/astbuf"
	"github.com/yaklabco/selwalk/pkg/lint"
)

// noForbiddenTerms scans every Text node for the configured terms in one pass with an
// Aho-Corasick automaton. With no terms configured it declares no selectors and costs
// nothing during traversal.
func noForbiddenTerms() lint.Rule {
	return lint.Rule{
		Meta: lint.RuleMeta{
			Description: "Text must not contain forbidden terms",
			Tags:        []string{"language"},
		},
		Create: func(rc *lint.RuleContext) lint.Visitors {
			terms := rc.OptionStringSlice("terms", nil)
			if len(terms) == 0 {
				return nil
			}
			if rc.Declaring() {
				return lint.Visitors{"Text": lint.OnEnter(func(*astbuf.Node) error { return nil })}
			}

			builder := ac.NewAhoCorasickBuilder(ac.Opts{
				AsciiCaseInsensitive: !rc.OptionBool("case_sensitive", false),
				MatchOnlyWholeWords:  true,
				MatchKind:            ac.LeftMostLongestMatch,
			})
			matcher := builder.Build(terms)

			return lint.Visitors{
				"Text": lint.OnEnter(func(n *astbuf.Node) error {
					value := n.GetString("value")
					if value == "" {
						return nil
					}
					start, _ := n.Span()
					for _, m := range matcher.FindAll(value) {
						term := terms[m.Pattern()]
						rc.Emit(lint.NewDiagnosticAt(start+m.Start(), start+m.End(),
							fmt.Sprintf("Forbidden term %q", value[m.Start():m.End()])).
							WithSuggestion(fmt.Sprintf("Rephrase without %q", term)).
							Build())
					}
					return nil
				}),
			}
		},
	}
}
