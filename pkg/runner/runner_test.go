package runner_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/selwalk/internal/logging"
	"github.com/yaklabco/selwalk/pkg/astbuf"
	"github.com/yaklabco/selwalk/pkg/config"
	"github.com/yaklabco/selwalk/pkg/frontend"
	"github.com/yaklabco/selwalk/pkg/lint"
	"github.com/yaklabco/selwalk/pkg/runner"
)

// headingsPlugin reports every heading, as an error for H1 and a warning otherwise.
func headingsPlugin() lint.Plugin {
	return lint.Plugin{
		Name: "test",
		Rules: map[string]lint.Rule{
			"headings": {Create: func(rc *lint.RuleContext) lint.Visitors {
				return lint.Visitors{"Heading": lint.OnEnter(func(n *astbuf.Node) error {
					level, _ := n.Get("level").Number()
					d := lint.NewDiagnostic(n, fmt.Sprintf("H%d", int(level)))
					if level == 1 {
						d.WithSeverity(config.SeverityError)
					}
					rc.Emit(d.Build())
					return nil
				})}
			}},
		},
	}
}

func newRunner(t *testing.T) *runner.Runner {
	t.Helper()

	cfg := config.NewConfig()
	reg := lint.NewRegistry(lint.WithLogger(logging.Discard()))
	require.NoError(t, reg.Install(headingsPlugin()))

	parser := frontend.New(cfg)
	parser.Logger = logging.Discard()

	engine := lint.NewEngine(parser, lint.BuildTable(reg), cfg)
	engine.Logger = logging.Discard()
	return runner.New(engine)
}

func writeDocs(t *testing.T, dir string, n int) {
	t.Helper()
	for i := range n {
		body := fmt.Sprintf("# Doc %d\n\n## Section\n", i)
		require.NoError(t, os.WriteFile(filepath.Join(dir, fmt.Sprintf("doc%02d.md", i)), []byte(body), 0o600))
	}
}

func TestRunner_Run(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeDocs(t, dir, 3)

	result, err := newRunner(t).Run(context.Background(), runner.Options{WorkingDir: dir, Jobs: 2})
	require.NoError(t, err)

	assert.Equal(t, 3, result.Stats.FilesDiscovered)
	assert.Equal(t, 3, result.Stats.FilesProcessed)
	assert.Equal(t, 3, result.Stats.FilesWithIssues)
	assert.Equal(t, 6, result.Stats.DiagnosticsTotal)
	assert.Equal(t, 3, result.Stats.DiagnosticsBySeverity[config.SeverityError])
	assert.Equal(t, 3, result.Stats.DiagnosticsBySeverity[config.SeverityWarning])
	assert.True(t, result.HasIssues())
	assert.True(t, result.HasFailures())
	assert.Len(t, result.FileResults(), 3)

	for i, f := range result.Files {
		assert.Equal(t, fmt.Sprintf("doc%02d.md", i), filepath.Base(f.Path))
		require.NoError(t, f.Error)
		assert.Equal(t, "H1", f.Result.Diagnostics[0].Message)
		assert.Equal(t, 3, f.Result.Diagnostics[1].StartLine)
	}
}

func TestRunner_SerialAndParallelAgree(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeDocs(t, dir, 20)

	run := func(jobs int) []string {
		result, err := newRunner(t).Run(context.Background(), runner.Options{WorkingDir: dir, Jobs: jobs})
		require.NoError(t, err)

		var out []string
		for _, f := range result.Files {
			for _, d := range f.Result.Diagnostics {
				out = append(out, fmt.Sprintf("%s:%d:%s", filepath.Base(f.Path), d.StartLine, d.Message))
			}
		}
		return out
	}

	assert.Equal(t, run(1), run(8))
}

func TestRunner_FileErrors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeDocs(t, dir, 1)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("plain"), 0o600))

	files := []string{
		filepath.Join(dir, "doc00.md"),
		filepath.Join(dir, "missing.md"),
		filepath.Join(dir, "notes.txt"),
	}

	result, err := newRunner(t).RunFiles(context.Background(), files, 0)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Stats.FilesProcessed)
	assert.Equal(t, 2, result.Stats.FilesErrored)
	require.ErrorIs(t, result.Files[1].Error, lint.ErrFileNotFound)
	require.ErrorIs(t, result.Files[2].Error, lint.ErrParseFailure)
	require.ErrorIs(t, result.Files[2].Error, frontend.ErrUnsupported)
}

func TestRunner_NoFiles(t *testing.T) {
	t.Parallel()

	result, err := newRunner(t).Run(context.Background(), runner.Options{WorkingDir: t.TempDir()})
	require.NoError(t, err)
	assert.Empty(t, result.Files)
	assert.False(t, result.HasIssues())
	assert.False(t, (*runner.Result)(nil).HasFailures())
}

func TestRunner_Cancelled(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeDocs(t, dir, 5)

	files, err := runner.Discover(context.Background(), runner.Options{WorkingDir: dir})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = newRunner(t).RunFiles(ctx, files, 2)
	require.ErrorIs(t, err, context.Canceled)
}
