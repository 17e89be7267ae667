package reporter

import (
	"bufio"
	"context"
	"fmt"

	"github.com/yaklabco/selwalk/internal/ui/pretty"
	"github.com/yaklabco/selwalk/pkg/runner"
)

// TextReporter formats results as styled terminal output grouped by file.
type TextReporter struct {
	opts   Options
	styles *pretty.Styles
	width  int
	bw     *bufio.Writer
}

// NewTextReporter creates a new text reporter.
func NewTextReporter(opts Options) *TextReporter {
	width := opts.Width
	if width == 0 {
		width = pretty.TerminalWidth(opts.Writer)
	}
	return &TextReporter{
		opts:   opts,
		styles: pretty.NewStyles(pretty.IsColorEnabled(opts.Color, opts.Writer)),
		width:  width,
		bw:     bufio.NewWriterSize(opts.Writer, bufWriterSize),
	}
}

// Report implements Reporter.
func (r *TextReporter) Report(_ context.Context, result *runner.Result) (_ int, err error) {
	defer func() {
		if flushErr := r.bw.Flush(); err == nil {
			err = flushErr
		}
	}()

	if result == nil || len(result.Files) == 0 {
		if r.opts.ShowSummary {
			fmt.Fprintln(r.bw, r.styles.Success.Render("No files to check."))
		}
		return 0, nil
	}

	var total int
	for i := range result.Files {
		total += r.reportFile(&result.Files[i])
	}

	if r.opts.ShowSummary {
		if r.opts.Verbose {
			fmt.Fprint(r.bw, r.styles.FormatSummary(result.Stats))
		} else {
			fmt.Fprint(r.bw, r.styles.FormatSummaryOneLine(result.Stats))
		}
	}

	return total, nil
}

func (r *TextReporter) reportFile(file *runner.FileOutcome) int {
	path := r.opts.displayPath(file.Path)

	if file.Error != nil {
		fmt.Fprintf(r.bw, "%s: %s\n",
			r.styles.FilePath.Render(path),
			r.styles.Error.Render(fmt.Sprintf("error: %v", file.Error)),
		)
		return 0
	}

	res := file.Result
	if res == nil || (len(res.Diagnostics) == 0 && len(res.RuleErrors) == 0) {
		return 0
	}

	fmt.Fprintln(r.bw, r.styles.FormatFileHeader(path, len(res.Diagnostics)))

	for _, diag := range res.Diagnostics {
		diag.FilePath = r.opts.displayPath(diag.FilePath)

		format := pretty.DiagnosticFormat{RuleFormat: r.opts.RuleFormat, Width: r.width}
		if r.opts.ShowContext && res.Lines != nil {
			format.SourceLine = string(res.Lines.LineContent(res.Source, diag.StartLine))
		}
		fmt.Fprint(r.bw, r.styles.FormatDiagnostic(&diag, format))
	}

	for i := range res.RuleErrors {
		fmt.Fprint(r.bw, r.styles.FormatRuleError(path, &res.RuleErrors[i]))
	}

	// Blank line between files
	fmt.Fprintln(r.bw)

	return len(res.Diagnostics)
}
