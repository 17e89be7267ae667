// Package markdown provides the built-in "markdown" plugin: selector-driven rules over
// trees produced by the Markdown front-end.
//
// # Rules
//
//   - heading-increment: heading levels should only increment by one level at a time
//   - single-h1: a document should have at most one top-level heading
//   - max-heading-depth: headings deeper than max_level (default 4)
//   - no-empty-links: links must have a destination
//   - no-alt-text: images should have alternate text
//   - fenced-code-language: fenced code blocks should declare a language
//   - no-nested-emphasis: emphasis should not be nested inside emphasis
//   - max-list-depth: lists nested deeper than max_depth (default 3)
//   - no-bare-urls: URLs in running text should be links
//   - no-forbidden-terms: text must not contain the configured terms
package markdown
