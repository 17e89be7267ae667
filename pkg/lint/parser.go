package lint

import (
	"context"

	"github.com/yaklabco/selwalk/pkg/astbuf"
)

// Parser turns file content into a tree buffer view.
//
// The lint package defines this interface in the consumer; the frontend package
// provides implementations. Implementations must be deterministic for a given
// (path, content) pair, safe for concurrent use, and must not mutate content.
type Parser interface {
	// Parse returns a Tree whose spans index into content. path is used for
	// front-end selection and messages only, never for I/O.
	Parse(ctx context.Context, path string, content []byte) (*astbuf.Tree, error)
}

// ParserFunc adapts a function to Parser.
type ParserFunc func(ctx context.Context, path string, content []byte) (*astbuf.Tree, error)

// Parse calls f.
func (f ParserFunc) Parse(ctx context.Context, path string, content []byte) (*astbuf.Tree, error) {
	return f(ctx, path, content)
}
