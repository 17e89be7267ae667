package lint

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"

	"github.com/charmbracelet/log"

	"github.com/yaklabco/selwalk/internal/logging"
	"github.com/yaklabco/selwalk/pkg/astbuf"
	"github.com/yaklabco/selwalk/pkg/config"
)

// FileResult contains the results of linting a single file.
type FileResult struct {
	// Path is the file path.
	Path string

	// Source is the file content; Lines indexes it.
	Source []byte
	Lines  *LineIndex

	// Diagnostics contains all issues found, ordered by position.
	Diagnostics []Diagnostic

	// RuleErrors contains isolated callback failures in the order they occurred.
	RuleErrors []RuleError

	// Visited is the number of nodes walked.
	Visited int
}

// HasIssues returns true if any diagnostics were found.
func (fr *FileResult) HasIssues() bool {
	return len(fr.Diagnostics) > 0
}

// IssueCount returns the total number of diagnostics.
func (fr *FileResult) IssueCount() int {
	return len(fr.Diagnostics)
}

// Engine runs the dispatch table over files. It holds no per-file state and is safe
// for concurrent use.
type Engine struct {
	// Parser turns content into trees for LintFile and LintPath.
	Parser Parser

	// Table is the run's dispatch table.
	Table *Table

	// Config is the run configuration (may be nil).
	Config *config.Config

	// Logger receives debug output about isolated failures.
	Logger *log.Logger
}

// NewEngine creates an Engine.
func NewEngine(parser Parser, table *Table, cfg *config.Config) *Engine {
	return &Engine{
		Parser: parser,
		Table:  table,
		Config: cfg,
		Logger: logging.Default(),
	}
}

// LintPath reads, parses and lints a file from disk. Read and parse failures are
// classified with ErrFileNotFound, ErrPermissionDenied and ErrParseFailure.
func (e *Engine) LintPath(ctx context.Context, path string) (*FileResult, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		switch {
		case errors.Is(err, fs.ErrNotExist):
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		case errors.Is(err, fs.ErrPermission):
			return nil, fmt.Errorf("%w: %s", ErrPermissionDenied, path)
		default:
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
	}
	return e.LintFile(ctx, path, content)
}

// LintFile parses and lints content. Positions are computed against the tree's own
// source when the parser attached one, otherwise against content.
func (e *Engine) LintFile(ctx context.Context, path string, content []byte) (*FileResult, error) {
	if e.Parser == nil {
		return nil, fmt.Errorf("%w: %s: no parser configured", ErrParseFailure, path)
	}

	tree, err := e.Parser.Parse(ctx, path, content)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrParseFailure, path, err)
	}

	source := content
	if s := tree.Source(); s != nil {
		source = s
	}
	return e.LintTree(ctx, path, source, tree)
}

// LintTree runs every rule of the table over tree in one depth-first traversal.
// Cancellation is only checked before the walk starts.
func (e *Engine) LintTree(ctx context.Context, path string, source []byte, tree *astbuf.Tree) (*FileResult, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("linting cancelled: %w", ctx.Err())
	default:
	}

	logger := e.Logger
	if logger == nil {
		logger = logging.FromContext(ctx)
	}

	state := &fileState{
		ctx:    ctx,
		path:   path,
		cfg:    e.Config,
		tree:   tree,
		source: source,
		lines:  NewLineIndex(source),
		logger: logger,
	}

	w := newWalker(e.Table, tree)
	contexts := w.bind(state)
	w.walk(tree.Root())
	w.destroy(contexts)

	slices.SortStableFunc(state.diags, func(a, b Diagnostic) int {
		if a.StartOffset != b.StartOffset {
			return a.StartOffset - b.StartOffset
		}
		return a.EndOffset - b.EndOffset
	})

	for _, re := range w.errs {
		logger.Debug("rule error",
			logging.FieldPath, path,
			logging.FieldPlugin, re.Plugin,
			logging.FieldRule, re.Rule,
			logging.FieldPhase, re.Phase,
			logging.FieldError, re.Err,
		)
	}

	return &FileResult{
		Path:        path,
		Source:      source,
		Lines:       state.lines,
		Diagnostics: state.diags,
		RuleErrors:  w.errs,
		Visited:     w.visited,
	}, nil
}
