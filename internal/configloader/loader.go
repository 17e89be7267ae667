// Package configloader provides configuration loading and resolution.
// It implements XDG-compliant configuration discovery, layered merging,
// environment variable support and validation.
package configloader

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/yaklabco/selwalk/pkg/config"
)

// LoadOptions controls configuration loading behavior.
type LoadOptions struct {
	// WorkingDir is the directory to search from for project config.
	// Defaults to current working directory if empty.
	WorkingDir string

	// ExplicitPath is an explicit config file path (from --config flag).
	// It is loaded on top of user and project config.
	ExplicitPath string

	// IgnoreUserConfig skips loading user-level configuration.
	IgnoreUserConfig bool

	// IgnoreProjectConfig skips loading project-level configuration.
	IgnoreProjectConfig bool

	// IgnoreEnv skips loading environment variables.
	IgnoreEnv bool

	// CLIConfig contains configuration from CLI flags.
	// These take highest precedence.
	CLIConfig *config.Config

	// Catalog lists the available plugins and rules for normalization and validation.
	Catalog *Catalog
}

// LoadResult contains the resolved configuration and metadata.
type LoadResult struct {
	// Config is the final merged configuration.
	Config *config.Config

	// Paths contains the discovered configuration file paths.
	Paths *ConfigPaths

	// LoadedFrom lists the files that were actually loaded (in order).
	LoadedFrom []string

	// Warnings contains non-fatal issues encountered during loading.
	Warnings []string
}

// Load resolves the final configuration by merging all sources.
// Precedence (highest to lowest):
//  1. CLI flags (opts.CLIConfig)
//  2. Environment variables (SELWALK_*)
//  3. Explicit config file (opts.ExplicitPath)
//  4. Project config (.selwalk.yml upward search)
//  5. User config ($XDG_CONFIG_HOME/selwalk/config.yaml)
//  6. Defaults
func Load(ctx context.Context, opts LoadOptions) (*LoadResult, error) {
	workDir := opts.WorkingDir
	if workDir == "" {
		var err error
		workDir, err = os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("get working directory: %w", err)
		}
	}

	paths, err := DiscoverPaths(ctx, workDir)
	if err != nil {
		return nil, fmt.Errorf("discover paths: %w", err)
	}
	paths.Explicit = opts.ExplicitPath

	result := &LoadResult{Paths: paths}
	cfg := config.NewConfig()

	layers := []struct {
		name string
		path string
		skip bool
	}{
		{"user", paths.User, opts.IgnoreUserConfig},
		{"project", paths.Project, opts.IgnoreProjectConfig},
		{"explicit", paths.Explicit, false},
	}
	for _, layer := range layers {
		if layer.skip || layer.path == "" {
			continue
		}
		fileCfg, err := loadConfigFile(layer.path)
		if err != nil {
			return nil, fmt.Errorf("load %s config: %w", layer.name, err)
		}
		normalizeRuleKeys(fileCfg, opts.Catalog, result)
		cfg = merge(cfg, fileCfg)
		result.LoadedFrom = append(result.LoadedFrom, layer.path)
	}

	if !opts.IgnoreEnv {
		if err := LoadFromEnv(cfg); err != nil {
			return nil, fmt.Errorf("load environment: %w", err)
		}
	}

	if opts.CLIConfig != nil {
		cfg = merge(cfg, opts.CLIConfig)
	}

	normalizeRuleKeys(cfg, opts.Catalog, result)

	validation := Validate(cfg, opts.Catalog)
	if !validation.Valid() {
		errs := make([]error, 0, len(validation.Errors))
		for i := range validation.Errors {
			errs = append(errs, &validation.Errors[i])
		}
		return nil, errors.Join(errs...)
	}
	for _, w := range validation.Warnings {
		result.Warnings = append(result.Warnings, w.Error())
	}
	result.Warnings = dedupe(result.Warnings)

	result.Config = cfg
	return result, nil
}

// loadConfigFile loads a configuration from a YAML file. Unknown keys are errors.
func loadConfigFile(path string) (*config.Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	cfg := &config.Config{}
	dec := yaml.NewDecoder(bytes.NewReader(content))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse YAML %s: %w", path, err)
	}

	if cfg.Rules == nil {
		cfg.Rules = make(map[string]config.RuleConfig)
	}

	return cfg, nil
}

// normalizeRuleKeys expands bare rule names to "plugin/rule" when the catalog has
// exactly one rule by that name, in both the rules map and the ignore list.
func normalizeRuleKeys(cfg *config.Config, catalog *Catalog, result *LoadResult) {
	if catalog == nil {
		return
	}

	resolve := func(key string) string {
		if strings.Contains(key, "/") {
			return key
		}
		var match string
		for _, id := range catalog.Rules {
			if _, rule, _ := config.SplitRuleName(id); rule == key {
				if match != "" {
					result.Warnings = append(result.Warnings,
						fmt.Sprintf("rule name %q is ambiguous (%s, %s); qualify it with a plugin", key, match, id))
					return key
				}
				match = id
			}
		}
		if match == "" {
			return key
		}
		return match
	}

	if len(cfg.Rules) > 0 {
		normalized := make(map[string]config.RuleConfig, len(cfg.Rules))
		for _, key := range slices.Sorted(maps.Keys(cfg.Rules)) {
			ruleCfg := cfg.Rules[key]
			id := resolve(key)
			if _, exists := normalized[id]; exists {
				result.Warnings = append(result.Warnings,
					fmt.Sprintf("duplicate rule configuration for %s; settings merged", id))
				ruleCfg = mergeRuleConfig(normalized[id], ruleCfg)
			}
			normalized[id] = ruleCfg
		}
		cfg.Rules = normalized
	}

	for i, key := range cfg.IgnoredRules {
		cfg.IgnoredRules[i] = resolve(key)
	}
}

// dedupe drops repeated messages, keeping first occurrences in order.
func dedupe(messages []string) []string {
	seen := make(map[string]bool, len(messages))
	out := messages[:0]
	for _, m := range messages {
		if !seen[m] {
			seen[m] = true
			out = append(out, m)
		}
	}
	return out
}
