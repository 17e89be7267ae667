package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/selwalk/pkg/config"
)

func ptr[T any](v T) *T { return &v }

func TestConfig_Ignored(t *testing.T) {
	t.Parallel()

	cfg := config.NewConfig()
	cfg.IgnoredRules = []string{"estree/no-console", "markdown/deep-headings"}
	cfg.Rules["estree/eqeqeq"] = config.RuleConfig{Enabled: ptr(false)}
	cfg.Rules["estree/no-debugger"] = config.RuleConfig{Enabled: ptr(true)}
	cfg.Rules["estree/no-console"] = config.RuleConfig{Enabled: ptr(false)}

	assert.Equal(t, []string{
		"estree/eqeqeq",
		"estree/no-console",
		"markdown/deep-headings",
	}, cfg.Ignored())

	var nilCfg *config.Config
	assert.Nil(t, nilCfg.Ignored())
}

func TestConfig_RuleSeverity(t *testing.T) {
	t.Parallel()

	cfg := config.NewConfig()
	cfg.Rules["estree/no-debugger"] = config.RuleConfig{Severity: ptr("error")}

	assert.Equal(t, config.SeverityError, cfg.RuleSeverity("estree/no-debugger"))
	assert.Equal(t, config.SeverityWarning, cfg.RuleSeverity("estree/eqeqeq"))

	cfg.SeverityDefault = "info"
	assert.Equal(t, config.SeverityInfo, cfg.RuleSeverity("estree/eqeqeq"))
}

func TestConfig_PluginEnabled(t *testing.T) {
	t.Parallel()

	cfg := config.NewConfig()
	assert.True(t, cfg.PluginEnabled("markdown"))

	cfg.Plugins = []string{"estree"}
	assert.True(t, cfg.PluginEnabled("estree"))
	assert.False(t, cfg.PluginEnabled("markdown"))
}

func TestSplitRuleName(t *testing.T) {
	t.Parallel()

	plugin, rule, ok := config.SplitRuleName("estree/no-debugger")
	require.True(t, ok)
	assert.Equal(t, "estree", plugin)
	assert.Equal(t, "no-debugger", rule)

	_, _, ok = config.SplitRuleName("no-debugger")
	assert.False(t, ok)
}

func TestFormatRuleID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		format config.RuleFormat
		plugin string
		want   string
	}{
		{format: config.RuleFormatName, plugin: "estree", want: "no-debugger"},
		{format: config.RuleFormatQualified, plugin: "estree", want: "estree/no-debugger"},
		{format: "", plugin: "estree", want: "estree/no-debugger"},
		{format: config.RuleFormatQualified, plugin: "", want: "no-debugger"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, config.FormatRuleID(tt.format, tt.plugin, "no-debugger"))
	}
}

func TestConfig_YAMLRoundTrip(t *testing.T) {
	t.Parallel()

	input := []byte(`plugins: [estree]
ignored_rules:
  - estree/no-console
flavor: commonmark
rules:
  estree/no-debugger:
    severity: error
  markdown/no-forbidden-terms:
    options:
      terms: [foo, bar]
ignore:
  - "vendor/**"
`)

	cfg, err := config.FromYAML(input)
	require.NoError(t, err)

	assert.Equal(t, []string{"estree"}, cfg.Plugins)
	assert.Equal(t, []string{"estree/no-console"}, cfg.IgnoredRules)
	assert.Equal(t, config.FlavorCommonMark, cfg.Flavor)
	assert.Equal(t, []string{"vendor/**"}, cfg.Ignore)
	require.NotNil(t, cfg.Rules["estree/no-debugger"].Severity)
	assert.Equal(t, "error", *cfg.Rules["estree/no-debugger"].Severity)
	assert.Equal(t, []any{"foo", "bar"}, cfg.RuleOptions("markdown/no-forbidden-terms")["terms"])

	out, err := cfg.ToYAML()
	require.NoError(t, err)
	assert.Contains(t, string(out), "estree/no-debugger:")
	assert.NotContains(t, string(out), "format")
}

func TestConfig_Clone(t *testing.T) {
	t.Parallel()

	cfg := config.NewConfig()
	cfg.Plugins = []string{"estree"}
	cfg.Rules["estree/eqeqeq"] = config.RuleConfig{Options: map[string]any{"smart": true}}
	cfg.Jobs = 4

	clone := cfg.Clone()
	clone.Plugins[0] = "markdown"
	clone.Rules["estree/eqeqeq"].Options["smart"] = false

	assert.Equal(t, "estree", cfg.Plugins[0])
	assert.Equal(t, true, cfg.Rules["estree/eqeqeq"].Options["smart"])
	assert.Equal(t, 4, clone.Jobs)
}
