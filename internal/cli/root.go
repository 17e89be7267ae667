// Package cli provides the Cobra command structure for selwalk.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/yaklabco/selwalk/internal/logging"
)

// BuildInfo holds build-time version information.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// globalFlags are the persistent flags shared by every subcommand.
type globalFlags struct {
	debug      bool
	configPath string
	color      string
}

// NewRootCommand creates the root selwalk command with all subcommands.
func NewRootCommand(info BuildInfo) *cobra.Command {
	globals := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:   "selwalk",
		Short: "Selector-driven linting over compact syntax trees",
		Long: `selwalk lints documents by walking their syntax trees once and dispatching
each node to the rules whose CSS-like selectors match it.

Markdown files are parsed with goldmark; ESTree programs are read from JSON or
YAML documents (app.js.estree.json next to app.js). Rules come from plugins
and are configured per plugin/rule in .selwalk.yml.`,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			if globals.debug {
				logging.SetLevel("debug")
			}
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().BoolVar(&globals.debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&globals.configPath, "config", "", "path to config file")
	rootCmd.PersistentFlags().StringVar(&globals.color, "color", "auto",
		"colorize output: auto, always, never")

	rootCmd.AddCommand(newLintCommand(globals))
	rootCmd.AddCommand(newRulesCommand(globals))
	rootCmd.AddCommand(newQueryCommand(globals))
	rootCmd.AddCommand(newConfigCommand(globals))
	rootCmd.AddCommand(newVersionCommand(info))

	return rootCmd
}
