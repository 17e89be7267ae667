// Package frontend chooses and runs the front-end that turns a file into an astbuf
// tree: Markdown through goldmark, or ESTree JSON/YAML documents.
package frontend

import (
	"path/filepath"
	"slices"

	"github.com/go-enry/go-enry/v2"
)

// Kind identifies a front-end.
type Kind string

const (
	KindUnknown  Kind = ""
	KindMarkdown Kind = "markdown"
	KindESTree   Kind = "estree"
)

// Kinds lists the supported front-ends.
func Kinds() []Kind { return []Kind{KindMarkdown, KindESTree} }

// enry language names per front-end.
var languages = map[Kind][]string{
	KindMarkdown: {"Markdown"},
	KindESTree:   {"JSON", "YAML"},
}

// Detect picks a front-end for path. The extension decides when it is known to enry;
// otherwise content is classified. Files no front-end can read yield KindUnknown.
func Detect(path string, content []byte) Kind {
	name := filepath.Base(path)

	// Strategy 1: extension and file name.
	if kind := kindOf(enry.GetLanguagesByExtension(name, nil, nil)); kind != KindUnknown {
		return kind
	}
	if kind := kindOf(enry.GetLanguagesByFilename(name, nil, nil)); kind != KindUnknown {
		return kind
	}

	// Strategy 2: content, only for files without a telling extension.
	if len(content) == 0 || filepath.Ext(name) != "" {
		return KindUnknown
	}
	lang, safe := enry.GetLanguageByClassifier(content, []string{"Markdown", "JSON", "YAML"})
	if !safe {
		return KindUnknown
	}
	return kindOf([]string{lang})
}

func kindOf(langs []string) Kind {
	for _, kind := range Kinds() {
		for _, lang := range langs {
			if slices.Contains(languages[kind], lang) {
				return kind
			}
		}
	}
	return KindUnknown
}
