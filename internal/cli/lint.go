package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yaklabco/selwalk/internal/logging"
	"github.com/yaklabco/selwalk/pkg/config"
	"github.com/yaklabco/selwalk/pkg/reporter"
	"github.com/yaklabco/selwalk/pkg/runner"
)

type lintFlags struct {
	format         string
	flavor         string
	ignore         []string
	include        []string
	plugins        []string
	ignoreRules    []string
	ruleFormat     string
	jobs           int
	strict         bool
	noContext      bool
	compact        bool
	verbose        bool
	followSymlinks bool
}

func newLintCommand(globals *globalFlags) *cobra.Command {
	flags := &lintFlags{}

	cmd := &cobra.Command{
		Use:   "lint [paths...]",
		Short: "Lint Markdown documents and ESTree programs",
		Long:  lintLongDescription,
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLint(cmd, args, globals, flags)
		},
	}

	addLintFlags(cmd, flags)

	return cmd
}

const lintLongDescription = `Lint files with every enabled plugin rule.

By default, lints .md and .markdown files plus ESTree documents
(*.estree.json, *.estree.yaml) under the current directory.

Examples:
  selwalk lint                         # Lint current directory
  selwalk lint docs/ src/              # Lint specific directories
  selwalk lint --plugins estree        # Run only the ESTree rules
  selwalk lint --ignore-rule markdown/single-h1
  selwalk lint --format json           # Output as JSON for CI
  selwalk lint --strict                # Treat warnings as errors`

// cliConfig maps explicitly set flags onto a config layer.
func (f *lintFlags) cliConfig(cmd *cobra.Command) *config.Config {
	cfg := &config.Config{}
	changed := cmd.Flags().Changed

	if changed("format") {
		cfg.Format = config.OutputFormat(f.format)
	}
	if changed("flavor") {
		cfg.Flavor = config.Flavor(f.flavor)
	}
	if changed("rule-format") {
		cfg.RuleFormat = config.RuleFormat(f.ruleFormat)
	}
	if changed("jobs") {
		cfg.Jobs = f.jobs
	}
	if changed("plugins") {
		cfg.Plugins = f.plugins
	}
	if changed("ignore-rule") {
		cfg.IgnoredRules = f.ignoreRules
	}
	return cfg
}

func runLint(cmd *cobra.Command, args []string, globals *globalFlags, flags *lintFlags) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	workDir, cfg, err := loadConfig(ctx, cmd, globals, flags.cliConfig(cmd))
	if err != nil {
		return err
	}
	// Ignore flags add to the configured patterns rather than replacing them.
	cfg.Ignore = append(cfg.Ignore, flags.ignore...)

	sess := newSession(workDir, cfg, builtinPlugins())
	logger := sess.logger

	logger.Debug("configuration loaded",
		logging.FieldFlavor, cfg.Flavor,
		logging.FieldJobs, cfg.Jobs,
		logging.FieldFormat, cfg.Format,
		logging.FieldIgnored, cfg.Ignored(),
	)

	runOpts := runner.Options{
		Paths:          args,
		WorkingDir:     workDir,
		IncludeGlobs:   flags.include,
		ExcludeGlobs:   cfg.Ignore,
		FollowSymlinks: flags.followSymlinks,
		Jobs:           cfg.Jobs,
		Config:         cfg,
	}

	logger.Debug("starting lint run",
		logging.FieldPaths, runOpts.Paths,
		logging.FieldWorkingDir, runOpts.WorkingDir,
		logging.FieldJobs, runOpts.Jobs,
	)

	result, err := runner.New(sess.engine).Run(ctx, runOpts)
	if err != nil {
		return fmt.Errorf("lint run failed: %w", err)
	}

	logger.Debug("lint run finished",
		logging.FieldFilesDiscovered, result.Stats.FilesDiscovered,
		logging.FieldFilesProcessed, result.Stats.FilesProcessed,
		logging.FieldFilesWithIssues, result.Stats.FilesWithIssues,
		logging.FieldDiagnosticsTotal, result.Stats.DiagnosticsTotal,
		logging.FieldRuleErrors, result.Stats.RuleErrors,
	)

	format, err := reporter.ParseFormat(string(cfg.Format))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUsage, err)
	}

	rep, err := reporter.New(reporter.Options{
		Writer:      cmd.OutOrStdout(),
		Format:      format,
		Color:       cfg.Color,
		ShowContext: !flags.noContext,
		ShowSummary: true,
		Verbose:     flags.verbose,
		Compact:     flags.compact,
		RuleFormat:  cfg.RuleFormat,
		WorkingDir:  workDir,
	})
	if err != nil {
		return fmt.Errorf("create reporter: %w", err)
	}

	if _, err := rep.Report(ctx, result); err != nil {
		return fmt.Errorf("report results: %w", err)
	}

	return resultError(ExitCodeFromResult(result, flags.strict))
}

func addLintFlags(cmd *cobra.Command, flags *lintFlags) {
	cmd.Flags().StringVar(&flags.format, "format", "text", "output format: text, json")
	cmd.Flags().StringVar(&flags.flavor, "flavor", "gfm", "Markdown flavor: commonmark, gfm")
	cmd.Flags().IntVar(&flags.jobs, "jobs", 0, "number of parallel workers (0 = auto)")
	cmd.Flags().StringSliceVar(&flags.ignore, "ignore", nil, "glob patterns to ignore")
	cmd.Flags().StringSliceVar(&flags.include, "include", nil, "only lint paths matching these glob patterns")
	cmd.Flags().StringSliceVar(&flags.plugins, "plugins", nil, "plugins to run (default: all)")
	cmd.Flags().StringSliceVar(&flags.ignoreRules, "ignore-rule", nil, "plugin/rule identifiers to skip")
	cmd.Flags().StringVar(&flags.ruleFormat, "rule-format", "qualified",
		"rule identifier format in output: name, qualified")
	cmd.Flags().BoolVar(&flags.strict, "strict", false, "treat warnings as errors for exit code")
	cmd.Flags().BoolVar(&flags.noContext, "no-context", false, "hide source line context in output")
	cmd.Flags().BoolVar(&flags.compact, "compact", false, "use compact JSON output")
	cmd.Flags().BoolVar(&flags.verbose, "verbose", false, "print a detailed summary")
	cmd.Flags().BoolVar(&flags.followSymlinks, "follow-symlinks", false, "descend into symlinked directories")
}
