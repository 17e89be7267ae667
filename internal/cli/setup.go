package cli

import (
	"context"
	"fmt"
	"maps"
	"os"
	"slices"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/yaklabco/selwalk/internal/configloader"
	"github.com/yaklabco/selwalk/internal/logging"
	"github.com/yaklabco/selwalk/pkg/config"
	"github.com/yaklabco/selwalk/pkg/frontend"
	"github.com/yaklabco/selwalk/pkg/lint"
	"github.com/yaklabco/selwalk/pkg/plugins/estree"
	"github.com/yaklabco/selwalk/pkg/plugins/markdown"
)

// builtinPlugins returns the plugins shipped with selwalk in install order.
func builtinPlugins() []lint.Plugin {
	return []lint.Plugin{markdown.Plugin(), estree.Plugin()}
}

// catalog describes the built-in plugins for config normalization and validation.
func catalog(plugins []lint.Plugin) *configloader.Catalog {
	c := &configloader.Catalog{}
	for _, p := range plugins {
		c.Plugins = append(c.Plugins, p.Name)
		for _, name := range slices.Sorted(maps.Keys(p.Rules)) {
			c.Rules = append(c.Rules, config.QualifiedRuleName(p.Name, name))
		}
	}
	return c
}

// session is everything a command needs for one run.
type session struct {
	workDir  string
	cfg      *config.Config
	registry *lint.Registry
	engine   *lint.Engine
	logger   *log.Logger
}

// loadConfig resolves configuration for the current directory, layering cli on top.
func loadConfig(ctx context.Context, cmd *cobra.Command, globals *globalFlags, cli *config.Config) (string, *config.Config, error) {
	logger := logging.Default()

	workDir, err := os.Getwd()
	if err != nil {
		return "", nil, fmt.Errorf("get working directory: %w", err)
	}

	if cmd.Flags().Changed("color") {
		cli.Color = config.ColorMode(globals.color)
	}

	loadResult, err := configloader.Load(ctx, configloader.LoadOptions{
		WorkingDir:   workDir,
		ExplicitPath: globals.configPath,
		CLIConfig:    cli,
		Catalog:      catalog(builtinPlugins()),
	})
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrConfig, err)
	}

	for _, warning := range loadResult.Warnings {
		logger.Warn(warning)
	}
	if len(loadResult.LoadedFrom) > 0 {
		logger.Debug("loaded configuration", logging.FieldFiles, loadResult.LoadedFrom)
	}

	return workDir, loadResult.Config, nil
}

// newSession installs plugins into a fresh registry and builds the engine. Rejected
// rules are logged and skipped; the remaining rules still run.
func newSession(workDir string, cfg *config.Config, plugins []lint.Plugin) *session {
	logger := logging.Default()

	registry := lint.NewRegistry(lint.WithConfig(cfg), lint.WithLogger(logger))
	for _, plugin := range plugins {
		if !cfg.PluginEnabled(plugin.Name) {
			logger.Debug("plugin disabled", logging.FieldPlugin, plugin.Name)
			continue
		}
		if err := registry.Install(plugin); err != nil {
			logger.Warn("plugin registered with errors", logging.FieldPlugin, plugin.Name, logging.FieldError, err)
		}
	}

	table := lint.BuildTable(registry)
	table.LogSummary(logger)

	parser := frontend.New(cfg)
	parser.Logger = logger

	engine := lint.NewEngine(parser, table, cfg)
	engine.Logger = logger

	return &session{
		workDir:  workDir,
		cfg:      cfg,
		registry: registry,
		engine:   engine,
		logger:   logger,
	}
}
