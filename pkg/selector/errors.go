package selector

import (
	"errors"
	"fmt"
)

// Syntax error classes. A *SyntaxError wraps exactly one of these.
var (
	ErrUnknownPseudo = errors.New("unknown pseudo-class")
	ErrUnbalanced    = errors.New("unbalanced brackets")
	ErrBadAttribute  = errors.New("malformed attribute")
	ErrBadNth        = errors.New("malformed nth-child argument")
	ErrUnexpected    = errors.New("unexpected input")
)

// SyntaxError reports where a selector failed to parse.
type SyntaxError struct {
	Selector string
	Pos      int
	Err      error
	Detail   string
}

func (e *SyntaxError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("selector %q: %v at offset %d", e.Selector, e.Err, e.Pos)
	}
	return fmt.Sprintf("selector %q: %v at offset %d: %s", e.Selector, e.Err, e.Pos, e.Detail)
}

func (e *SyntaxError) Unwrap() error { return e.Err }
