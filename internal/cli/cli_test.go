package cli_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/selwalk/internal/cli"
	"github.com/yaklabco/selwalk/pkg/config"
	"github.com/yaklabco/selwalk/pkg/runner"
	"github.com/yaklabco/selwalk/pkg/selector"
)

// newProject creates a repository root with the given files and makes it the working
// directory. User configuration is isolated from the host.
func newProject(t *testing.T, files map[string]string) string {
	t.Helper()

	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, ".git"), 0o755))
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	}

	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("NO_COLOR", "1")
	t.Chdir(dir)
	return dir
}

// execute runs the root command and returns stdout and the command error.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	root := cli.NewRootCommand(cli.BuildInfo{Version: "1.2.3", Commit: "abc123", Date: "2026-01-01"})
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(args)

	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRootCommand_Subcommands(t *testing.T) {
	t.Parallel()

	root := cli.NewRootCommand(cli.BuildInfo{})

	names := make([]string, 0, len(root.Commands()))
	for _, cmd := range root.Commands() {
		names = append(names, cmd.Name())
	}
	for _, want := range []string{"lint", "rules", "query", "config", "version"} {
		assert.Contains(t, names, want)
	}

	for _, flag := range []string{"debug", "config", "color"} {
		assert.NotNil(t, root.PersistentFlags().Lookup(flag), flag)
	}
}

func TestLintCommand_Flags(t *testing.T) {
	t.Parallel()

	root := cli.NewRootCommand(cli.BuildInfo{})
	lint, _, err := root.Find([]string{"lint"})
	require.NoError(t, err)

	for _, flag := range []string{
		"format", "flavor", "jobs", "ignore", "include", "plugins", "ignore-rule",
		"rule-format", "strict", "no-context", "compact", "verbose", "follow-symlinks",
	} {
		assert.NotNil(t, lint.Flags().Lookup(flag), flag)
	}
}

func TestExitCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, cli.ExitSuccess},
		{"errors found", cli.ErrLintIssuesFound, cli.ExitLintErrors},
		{"strict warnings", cli.ErrLintWarningsFound, cli.ExitLintWarnings},
		{"files failed", cli.ErrFilesFailed, cli.ExitIOError},
		{"config", fmt.Errorf("%w: bad yaml", cli.ErrConfig), cli.ExitConfigError},
		{"usage", fmt.Errorf("%w: unknown format", cli.ErrUsage), cli.ExitInvalidUsage},
		{"selector", fmt.Errorf("install: %w", selector.ErrUnbalanced), cli.ExitInvalidUsage},
		{"other", errors.New("boom"), cli.ExitInternalError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, cli.ExitCode(tt.err))
		})
	}
}

func TestExitCodeFromResult(t *testing.T) {
	t.Parallel()

	withCounts := func(errs, warns, failed int) *runner.Result {
		return &runner.Result{Stats: runner.Stats{
			FilesErrored: failed,
			DiagnosticsBySeverity: map[config.Severity]int{
				config.SeverityError:   errs,
				config.SeverityWarning: warns,
			},
		}}
	}

	tests := []struct {
		name   string
		result *runner.Result
		strict bool
		want   int
	}{
		{"nil result", nil, false, cli.ExitSuccess},
		{"clean", withCounts(0, 0, 0), false, cli.ExitSuccess},
		{"errors", withCounts(2, 1, 1), false, cli.ExitLintErrors},
		{"warnings", withCounts(0, 3, 0), false, cli.ExitSuccess},
		{"strict warnings", withCounts(0, 3, 0), true, cli.ExitLintWarnings},
		{"failed files", withCounts(0, 0, 1), false, cli.ExitIOError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, cli.ExitCodeFromResult(tt.result, tt.strict))
		})
	}
}

const twoTitles = "# First\n\nText.\n\n# Second\n"

func TestLint_WarningsPassUnlessStrict(t *testing.T) {
	newProject(t, map[string]string{"README.md": twoTitles})

	out, err := execute(t, "lint")
	require.NoError(t, err)
	assert.Contains(t, out, "README.md")
	assert.Contains(t, out, "Multiple top-level headings in the same document")
	assert.Contains(t, out, "markdown/single-h1")

	_, err = execute(t, "lint", "--strict")
	require.ErrorIs(t, err, cli.ErrLintWarningsFound)
	assert.Equal(t, cli.ExitLintWarnings, cli.ExitCode(err))
	assert.True(t, cli.IsReported(err))
}

func TestLint_ProjectConfigSeverity(t *testing.T) {
	newProject(t, map[string]string{
		"README.md": twoTitles,
		".selwalk.yml": "rules:\n" +
			"  markdown/single-h1:\n" +
			"    severity: error\n",
	})

	out, err := execute(t, "lint", "--format", "json")
	require.ErrorIs(t, err, cli.ErrLintIssuesFound)

	var report struct {
		Files []struct {
			Path        string `json:"path"`
			Diagnostics []struct {
				RuleID    string `json:"ruleId"`
				Severity  string `json:"severity"`
				StartLine int    `json:"startLine"`
			} `json:"diagnostics"`
		} `json:"files"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	require.Len(t, report.Files, 1)
	assert.Equal(t, "README.md", report.Files[0].Path)
	require.Len(t, report.Files[0].Diagnostics, 1)

	diag := report.Files[0].Diagnostics[0]
	assert.Equal(t, "markdown/single-h1", diag.RuleID)
	assert.Equal(t, "error", diag.Severity)
	assert.Equal(t, 5, diag.StartLine)
}

func TestLint_IgnoredRule(t *testing.T) {
	newProject(t, map[string]string{"README.md": twoTitles})

	out, err := execute(t, "lint", "--strict", "--ignore-rule", "markdown/single-h1")
	require.NoError(t, err)
	assert.NotContains(t, out, "single-h1")
	assert.Contains(t, out, "No issues found")
}

func TestLint_BadConfig(t *testing.T) {
	newProject(t, map[string]string{
		"README.md":    twoTitles,
		".selwalk.yml": "flavor: plaintext\n",
	})

	_, err := execute(t, "lint")
	require.ErrorIs(t, err, cli.ErrConfig)
	assert.Equal(t, cli.ExitConfigError, cli.ExitCode(err))
}

func TestLint_UnparsableFile(t *testing.T) {
	newProject(t, map[string]string{"broken.estree.json": "{not json"})

	out, err := execute(t, "lint")
	require.ErrorIs(t, err, cli.ErrFilesFailed)
	assert.Contains(t, out, "broken.estree.json")
}

func TestQuery_PrintsMatches(t *testing.T) {
	newProject(t, map[string]string{"README.md": twoTitles})

	out, err := execute(t, "query", "Heading[level=1]")
	require.NoError(t, err)
	assert.Contains(t, out, "README.md:1:")
	assert.Contains(t, out, "README.md:5:")
	assert.Contains(t, out, "Heading")
	assert.Contains(t, out, "Second")
	assert.NotContains(t, out, "Paragraph")
}

func TestQuery_Count(t *testing.T) {
	newProject(t, map[string]string{
		"README.md":    twoTitles,
		"docs/faq.md": "Plain text only.\n",
	})

	out, err := execute(t, "query", "--count", "Heading")
	require.NoError(t, err)
	assert.Equal(t, "README.md: 2\n2 matches\n", out)
}

func TestQuery_InvalidSelector(t *testing.T) {
	newProject(t, map[string]string{"README.md": twoTitles})

	_, err := execute(t, "query", "Heading[level=")
	require.Error(t, err)
	assert.Equal(t, cli.ExitInvalidUsage, cli.ExitCode(err))

	_, err = execute(t, "query")
	require.Error(t, err)
}

func TestRules_JSON(t *testing.T) {
	newProject(t, map[string]string{
		".selwalk.yml": "ignored_rules:\n  - estree/no-var\n",
	})

	out, err := execute(t, "rules", "--format", "json", "--plugin", "estree")
	require.NoError(t, err)

	var rules []struct {
		ID        string   `json:"id"`
		Plugin    string   `json:"plugin"`
		Severity  string   `json:"severity"`
		Selectors []string `json:"selectors"`
		Ignored   bool     `json:"ignored"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &rules))
	require.NotEmpty(t, rules)

	byID := make(map[string]int, len(rules))
	for i, r := range rules {
		assert.Equal(t, "estree", r.Plugin)
		byID[r.ID] = i
	}

	require.Contains(t, byID, "estree/no-debugger")
	debugger := rules[byID["estree/no-debugger"]]
	assert.Equal(t, []string{"DebuggerStatement"}, debugger.Selectors)
	assert.Equal(t, "warning", debugger.Severity)
	assert.False(t, debugger.Ignored)

	require.Contains(t, byID, "estree/no-var")
	noVar := rules[byID["estree/no-var"]]
	assert.True(t, noVar.Ignored)
	assert.Empty(t, noVar.Selectors)
}

func TestRules_Text(t *testing.T) {
	newProject(t, nil)

	out, err := execute(t, "rules", "--rule-format", "name")
	require.NoError(t, err)
	assert.Contains(t, out, "available rules")
	assert.Contains(t, out, "heading-increment")
	assert.NotContains(t, out, "markdown/heading-increment")

	_, err = execute(t, "rules", "--format", "xml")
	require.ErrorIs(t, err, cli.ErrUsage)
}

func TestConfig_Effective(t *testing.T) {
	newProject(t, map[string]string{
		".selwalk.yml": "flavor: commonmark\nignored_rules:\n  - estree/no-var\n",
	})
	t.Setenv("SELWALK_SEVERITY_DEFAULT", "error")

	out, err := execute(t, "config")
	require.NoError(t, err)
	assert.Contains(t, out, "flavor: commonmark")
	assert.Contains(t, out, "severity_default: error")
	assert.Contains(t, out, "estree/no-var")

	out, err = execute(t, "config", "--env")
	require.NoError(t, err)
	assert.Contains(t, out, "SELWALK_JOBS")
	assert.Contains(t, out, "SELWALK_FLAVOR")
}

func TestVersion(t *testing.T) {
	t.Parallel()

	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "selwalk")
	assert.Contains(t, out, "1.2.3")
	assert.Contains(t, out, "abc123")
}
