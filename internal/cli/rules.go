package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/yaklabco/selwalk/internal/logging"
	"github.com/yaklabco/selwalk/pkg/config"
	"github.com/yaklabco/selwalk/pkg/lint"
)

type rulesFlags struct {
	ruleFormat string
	format     string
	plugin     string
}

const formatJSON = "json"

// ruleInfo represents a rule in JSON output.
type ruleInfo struct {
	ID          string   `json:"id"`
	Plugin      string   `json:"plugin"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Severity    string   `json:"severity"`
	Selectors   []string `json:"selectors"`
	Tags        []string `json:"tags,omitempty"`
	Ignored     bool     `json:"ignored"`
}

func newRulesCommand(globals *globalFlags) *cobra.Command {
	flags := &rulesFlags{}

	cmd := &cobra.Command{
		Use:   "rules",
		Short: "List available lint rules",
		Long: `List every rule of the enabled plugins with its identifier, configured
severity, description, and the selectors it subscribes to. Ignored rules are
listed and marked as such.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRules(cmd, globals, flags)
		},
	}

	cmd.Flags().StringVar(&flags.ruleFormat, "rule-format", "qualified",
		"rule identifier format in output: name, qualified")
	cmd.Flags().StringVar(&flags.format, "format", "text",
		"output format: text, json")
	cmd.Flags().StringVar(&flags.plugin, "plugin", "",
		"only list rules of this plugin")

	return cmd
}

func runRules(cmd *cobra.Command, globals *globalFlags, flags *rulesFlags) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if flags.format != "text" && flags.format != formatJSON {
		return fmt.Errorf("%w: unknown format %q", ErrUsage, flags.format)
	}

	workDir, cfg, err := loadConfig(ctx, cmd, globals, &config.Config{})
	if err != nil {
		return err
	}

	sess := newSession(workDir, cfg, builtinPlugins())

	var infos []ruleInfo
	for _, rule := range sess.registry.Rules() {
		if flags.plugin != "" && rule.Plugin != flags.plugin {
			continue
		}
		infos = append(infos, newRuleInfo(rule, cfg))
	}

	if flags.format == formatJSON {
		return outputRulesJSON(cmd, infos)
	}

	logger := log.NewWithOptions(cmd.OutOrStdout(), log.Options{
		ReportTimestamp: false,
		ReportCaller:    false,
	})
	logger.SetLevel(log.InfoLevel)

	if len(infos) == 0 {
		logger.Info("no rules registered")
		return nil
	}

	logger.Info("available rules")

	for _, rule := range infos {
		label := config.FormatRuleID(config.RuleFormat(flags.ruleFormat), rule.Plugin, rule.Name)

		keyvals := []any{
			logging.FieldSeverity, rule.Severity,
			logging.FieldSelector, strings.Join(rule.Selectors, " | "),
			logging.FieldDescription, rule.Description,
		}
		if rule.Ignored {
			keyvals = append(keyvals, logging.FieldIgnored, true)
		}
		logger.Info(label, keyvals...)
	}

	return nil
}

func newRuleInfo(rule lint.RuleInfo, cfg *config.Config) ruleInfo {
	selectors := rule.Selectors
	if selectors == nil {
		selectors = []string{}
	}
	return ruleInfo{
		ID:          rule.ID(),
		Plugin:      rule.Plugin,
		Name:        rule.Name,
		Description: rule.Meta.Description,
		Severity:    string(cfg.RuleSeverity(rule.ID())),
		Selectors:   selectors,
		Tags:        rule.Meta.Tags,
		Ignored:     rule.Ignored,
	}
}

// outputRulesJSON writes rules as a JSON array.
func outputRulesJSON(cmd *cobra.Command, infos []ruleInfo) error {
	if infos == nil {
		infos = []ruleInfo{}
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(infos); err != nil {
		return fmt.Errorf("encoding rules: %w", err)
	}
	return nil
}
