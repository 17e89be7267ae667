package runner_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/selwalk/pkg/runner"
)

// touch creates files (and parent directories) under dir.
func touch(t *testing.T, dir string, files ...string) {
	t.Helper()
	for _, f := range files {
		path := filepath.Join(dir, f)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte("# "+f+"\n"), 0o600))
	}
}

func rel(t *testing.T, dir string, files []string) []string {
	t.Helper()
	out := make([]string, len(files))
	for i, f := range files {
		r, err := filepath.Rel(dir, f)
		require.NoError(t, err)
		out[i] = filepath.ToSlash(r)
	}
	return out
}

func TestDiscover(t *testing.T) {
	t.Parallel()

	layout := []string{
		"README.md",
		"docs/guide.markdown",
		"docs/api/ref.md",
		"ast/app.js.estree.json",
		"ast/app.js.ESTREE.yaml",
		"package.json",
		"src/main.go",
		".hidden/secret.md",
		"docs/.draft.md",
		"vendor/lib/README.md",
	}

	tests := []struct {
		name string
		opts runner.Options
		want []string
	}{
		{
			name: "defaults",
			want: []string{
				"README.md", "ast/app.js.ESTREE.yaml", "ast/app.js.estree.json",
				"docs/api/ref.md", "docs/guide.markdown", "vendor/lib/README.md",
			},
		},
		{
			name: "exclude directory",
			opts: runner.Options{ExcludeGlobs: []string{"vendor/**", "ast"}},
			want: []string{"README.md", "docs/api/ref.md", "docs/guide.markdown"},
		},
		{
			name: "exclude by base name",
			opts: runner.Options{ExcludeGlobs: []string{"README.md"}},
			want: []string{"ast/app.js.ESTREE.yaml", "ast/app.js.estree.json", "docs/api/ref.md", "docs/guide.markdown"},
		},
		{
			name: "include",
			opts: runner.Options{IncludeGlobs: []string{"docs/**/*.md"}},
			want: []string{"docs/api/ref.md"},
		},
		{
			name: "custom suffixes",
			opts: runner.Options{Suffixes: []string{".json"}},
			want: []string{"ast/app.js.estree.json", "package.json"},
		},
		{
			name: "explicit paths deduplicated",
			opts: runner.Options{Paths: []string{"docs", "docs/api", "README.md", "src/main.go"}},
			want: []string{"README.md", "docs/api/ref.md", "docs/guide.markdown"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			dir := t.TempDir()
			touch(t, dir, layout...)

			opts := tt.opts
			opts.WorkingDir = dir

			files, err := runner.Discover(context.Background(), opts)
			require.NoError(t, err)
			assert.Equal(t, tt.want, rel(t, dir, files))
		})
	}
}

func TestDiscover_Errors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	_, err := runner.Discover(context.Background(), runner.Options{WorkingDir: dir, Paths: []string{"missing"}})
	require.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = runner.Discover(ctx, runner.Options{WorkingDir: dir})
	require.ErrorIs(t, err, context.Canceled)
}

func TestDiscover_DirectorySymlinks(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	outside := t.TempDir()
	touch(t, dir, "doc.md")
	touch(t, outside, "external.md")

	if err := os.Symlink(outside, filepath.Join(dir, "linked")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	files, err := runner.Discover(context.Background(), runner.Options{WorkingDir: dir})
	require.NoError(t, err)
	assert.Len(t, files, 1)

	files, err = runner.Discover(context.Background(), runner.Options{WorkingDir: dir, FollowSymlinks: true})
	require.NoError(t, err)
	assert.Len(t, files, 2)
}
