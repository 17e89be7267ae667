package markdown

import (
	"github.com/yaklabco/selwalk/pkg/lint"
)

// Name is the plugin name used in rule identifiers ("markdown/heading-increment").
const Name = "markdown"

// Plugin returns the markdown plugin.
func Plugin() lint.Plugin {
	return lint.Plugin{
		Name: Name,
		Rules: map[string]lint.Rule{
			"heading-increment":    headingIncrement(),
			"single-h1":            singleH1(),
			"max-heading-depth":    maxHeadingDepth(),
			"no-empty-links":       noEmptyLinks(),
			"no-alt-text":          noAltText(),
			"fenced-code-language": fencedCodeLanguage(),
			"no-nested-emphasis":   noNestedEmphasis(),
			"max-list-depth":       maxListDepth(),
			"no-bare-urls":         noBareURLs(),
			"no-forbidden-terms":   noForbiddenTerms(),
		},
	}
}
