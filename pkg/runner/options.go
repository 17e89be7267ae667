// Package runner lints many files concurrently over one shared dispatch table.
package runner

import "github.com/yaklabco/selwalk/pkg/config"

// Options controls file discovery and concurrency.
type Options struct {
	// Paths are files or directories to process. Empty means the working directory.
	Paths []string

	// WorkingDir resolves relative Paths and anchors glob patterns. Empty means the
	// process working directory.
	WorkingDir string

	// Suffixes select files by name ending, compared case-insensitively. Empty means
	// DefaultSuffixes.
	Suffixes []string

	// IncludeGlobs restrict discovery to matching paths when non-empty.
	IncludeGlobs []string

	// ExcludeGlobs skip matching files and directories. Config ignore patterns and
	// --ignore flags both land here.
	ExcludeGlobs []string

	// FollowSymlinks controls whether directory symlinks are traversed.
	FollowSymlinks bool

	// Jobs caps concurrent workers; 0 or negative means runtime.NumCPU().
	Jobs int

	// Config is the resolved configuration for this run.
	Config *config.Config
}

// DefaultSuffixes returns the file endings the built-in front-ends read. ESTree
// documents carry an ".estree" marker so that unrelated JSON and YAML is left alone.
func DefaultSuffixes() []string {
	return []string{".md", ".markdown", ".estree.json", ".estree.yaml", ".estree.yml"}
}

func (o Options) suffixes() []string {
	if len(o.Suffixes) == 0 {
		return DefaultSuffixes()
	}
	return o.Suffixes
}

func (o Options) paths() []string {
	if len(o.Paths) == 0 {
		return []string{"."}
	}
	return o.Paths
}
