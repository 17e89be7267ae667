package frontend

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/yaklabco/selwalk/internal/logging"
	"github.com/yaklabco/selwalk/pkg/astbuf"
	"github.com/yaklabco/selwalk/pkg/config"
	"github.com/yaklabco/selwalk/pkg/frontend/estree"
	"github.com/yaklabco/selwalk/pkg/frontend/markdown"
	"github.com/yaklabco/selwalk/pkg/lint"
)

// ErrUnsupported is returned for files no front-end can read.
var ErrUnsupported = errors.New("unsupported file type")

var _ lint.Parser = (*Parser)(nil)

// Parser routes each file to its front-end. It is safe for concurrent use.
type Parser struct {
	Markdown *markdown.Parser
	ESTree   *estree.Parser
	Logger   *log.Logger

	// ReadFile loads the program text an ESTree document describes. Nil disables the
	// lookup.
	ReadFile func(path string) ([]byte, error)
}

// New creates a Parser configured from cfg (may be nil).
func New(cfg *config.Config) *Parser {
	flavor := config.FlavorGFM
	if cfg != nil && cfg.Flavor != "" {
		flavor = cfg.Flavor
	}
	return &Parser{
		Markdown: markdown.New(flavor),
		ESTree:   estree.New(),
		Logger:   logging.Default(),
		ReadFile: os.ReadFile,
	}
}

// Supported reports whether path has a front-end judging by its name alone.
func Supported(path string) bool {
	return Detect(path, nil) != KindUnknown
}

// Parse implements lint.Parser.
func (p *Parser) Parse(ctx context.Context, path string, content []byte) (*astbuf.Tree, error) {
	kind := Detect(path, content)
	if p.Logger != nil {
		p.Logger.Debug("parsing", logging.FieldPath, path, logging.FieldFrontend, kind)
	}

	switch kind {
	case KindMarkdown:
		return p.Markdown.Parse(ctx, path, content)
	case KindESTree:
		return p.ESTree.ParseWithSource(ctx, path, content, p.programSource(path))
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, path)
	}
}

// programSource reads "app.js" for "app.js.json". A missing program is not an error;
// spans then have no text behind them.
func (p *Parser) programSource(path string) []byte {
	program := ProgramPath(path)
	if program == "" || p.ReadFile == nil {
		return nil
	}
	src, err := p.ReadFile(program)
	if err != nil {
		if p.Logger != nil {
			p.Logger.Debug("no program source", logging.FieldPath, program, logging.FieldError, err)
		}
		return nil
	}
	return src
}

// ProgramPath strips the document extension, and an optional ".estree" marker, from an
// ESTree document path when what remains still names a file with an extension:
// "src/app.js.json" and "src/app.js.estree.json" both give "src/app.js". Otherwise it
// returns "".
func ProgramPath(path string) string {
	ext := filepath.Ext(path)
	switch strings.ToLower(ext) {
	case ".json", ".yaml", ".yml":
	default:
		return ""
	}
	program := strings.TrimSuffix(path, ext)
	if marker := filepath.Ext(program); strings.EqualFold(marker, ".estree") {
		program = strings.TrimSuffix(program, marker)
	}
	if filepath.Ext(program) == "" {
		return ""
	}
	return program
}
