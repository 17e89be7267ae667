package cli

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"github.com/yaklabco/selwalk/internal/logging"
	"github.com/yaklabco/selwalk/internal/ui/pretty"
	"github.com/yaklabco/selwalk/pkg/astbuf"
	"github.com/yaklabco/selwalk/pkg/config"
	"github.com/yaklabco/selwalk/pkg/lint"
	"github.com/yaklabco/selwalk/pkg/runner"
	"github.com/yaklabco/selwalk/pkg/selector"
)

const (
	queryPlugin = "query"
	queryRule   = "match"

	// snippetWidth bounds the source excerpt printed for each match.
	snippetWidth = 60
)

type queryFlags struct {
	count   bool
	include []string
	jobs    int
}

func newQueryCommand(globals *globalFlags) *cobra.Command {
	flags := &queryFlags{}

	cmd := &cobra.Command{
		Use:   "query <selector> [paths...]",
		Short: "Print the nodes a selector matches",
		Long: `Run a single selector over files and print every node it matches, in
document order, with its position and a source excerpt.

Examples:
  selwalk query 'Heading[level=2]' docs/
  selwalk query 'CallExpression > MemberExpression.callee[object.name="console"]' src/
  selwalk query --count ':matches(Link, Image):not([url])'`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd, args[0], args[1:], globals, flags)
		},
	}

	cmd.Flags().BoolVar(&flags.count, "count", false, "only print the number of matches per file")
	cmd.Flags().StringSliceVar(&flags.include, "include", nil, "only query paths matching these glob patterns")
	cmd.Flags().IntVar(&flags.jobs, "jobs", 0, "number of parallel workers (0 = auto)")

	return cmd
}

// matchPlugin wraps a selector in a one-rule plugin that reports every match with a
// source excerpt as its message.
func matchPlugin(sel string) lint.Plugin {
	return lint.Plugin{
		Name: queryPlugin,
		Rules: map[string]lint.Rule{
			queryRule: {
				Meta: lint.RuleMeta{Description: "Report nodes matching " + sel},
				Create: func(rc *lint.RuleContext) lint.Visitors {
					return lint.Visitors{
						sel: lint.OnEnter(func(n *astbuf.Node) error {
							rc.Report(n, snippet(rc.Source(), n))
							return nil
						}),
					}
				},
			},
		},
	}
}

// snippet returns the first line of the node's source text, clipped to snippetWidth
// runes.
func snippet(source []byte, n *astbuf.Node) string {
	start, end := n.Span()
	if start < 0 || end > len(source) || start >= end {
		return ""
	}
	text, _, _ := strings.Cut(string(source[start:end]), "\n")
	text = strings.TrimSpace(text)
	if utf8.RuneCountInString(text) > snippetWidth {
		runes := []rune(text)
		text = string(runes[:snippetWidth-3]) + "..."
	}
	return text
}

func runQuery(cmd *cobra.Command, sel string, paths []string, globals *globalFlags, flags *queryFlags) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if _, err := selector.Compile(sel); err != nil {
		return fmt.Errorf("%w: %w", ErrUsage, err)
	}

	cli := &config.Config{}
	if cmd.Flags().Changed("jobs") {
		cli.Jobs = flags.jobs
	}

	workDir, cfg, err := loadConfig(ctx, cmd, globals, cli)
	if err != nil {
		return err
	}

	// The plugin list in the config names lint plugins, not the query.
	queryCfg := cfg.Clone()
	queryCfg.Plugins = nil

	sess := newSession(workDir, queryCfg, []lint.Plugin{matchPlugin(sel)})

	result, err := runner.New(sess.engine).Run(ctx, runner.Options{
		Paths:        paths,
		WorkingDir:   workDir,
		IncludeGlobs: flags.include,
		ExcludeGlobs: cfg.Ignore,
		Jobs:         cfg.Jobs,
		Config:       queryCfg,
	})
	if err != nil {
		return fmt.Errorf("query run failed: %w", err)
	}

	out := cmd.OutOrStdout()
	styles := pretty.NewStyles(pretty.IsColorEnabled(cfg.Color, out))

	matches := writeMatches(out, styles, workDir, result, flags.count)

	sess.logger.Debug("query finished",
		logging.FieldSelector, sel,
		logging.FieldFilesProcessed, result.Stats.FilesProcessed,
		logging.FieldMatches, matches,
	)

	if result.Stats.FilesErrored > 0 {
		return ErrFilesFailed
	}
	return nil
}

// writeMatches prints matches grouped by file and returns the total.
func writeMatches(w io.Writer, styles *pretty.Styles, workDir string, result *runner.Result, countOnly bool) int {
	total := 0
	for _, file := range result.Files {
		path := relPath(workDir, file.Path)

		if file.Error != nil {
			_, _ = fmt.Fprintf(w, "%s: %s %v\n", styles.FilePath.Render(path), styles.Error.Render("error:"), file.Error)
			continue
		}
		if file.Result == nil {
			continue
		}

		for i := range file.Result.RuleErrors {
			_, _ = io.WriteString(w, styles.FormatRuleError(path, &file.Result.RuleErrors[i]))
		}

		diags := file.Result.Diagnostics
		total += len(diags)

		if countOnly {
			if len(diags) > 0 {
				_, _ = fmt.Fprintf(w, "%s: %d\n", styles.FilePath.Render(path), len(diags))
			}
			continue
		}

		for _, d := range diags {
			loc := fmt.Sprintf("%s:%d:%d", path, d.StartLine, d.StartColumn)
			_, _ = fmt.Fprintf(w, "%s  %s  %s\n",
				styles.Location.Render(loc),
				styles.NodeType.Render(d.NodeType),
				styles.Message.Render(d.Message))
		}
	}

	if countOnly {
		_, _ = fmt.Fprintf(w, "%d matches\n", total)
	}
	return total
}

// relPath shows path relative to workDir when it lies inside it.
func relPath(workDir, path string) string {
	if workDir == "" || !filepath.IsAbs(path) {
		return filepath.ToSlash(path)
	}
	rel, err := filepath.Rel(workDir, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}
