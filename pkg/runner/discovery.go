package runner

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// Discover finds the files selected by opts. It returns sorted, de-duplicated absolute
// paths.
func Discover(ctx context.Context, opts Options) ([]string, error) {
	workDir, err := resolveWorkDir(opts.WorkingDir)
	if err != nil {
		return nil, fmt.Errorf("resolve working directory: %w", err)
	}

	sel := selection{workDir: workDir, opts: opts}
	for _, suffix := range opts.suffixes() {
		sel.suffixes = append(sel.suffixes, strings.ToLower(suffix))
	}

	var files []string
	for _, input := range opts.paths() {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("discovery cancelled: %w", err)
		}

		abs := input
		if !filepath.IsAbs(abs) {
			abs = filepath.Join(workDir, abs)
		}
		abs = filepath.Clean(abs)

		info, err := os.Stat(abs)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", input, err)
		}

		if !info.IsDir() {
			if sel.accepts(abs) {
				files = append(files, abs)
			}
			continue
		}

		found, err := sel.walk(ctx, abs)
		if err != nil {
			return nil, err
		}
		files = append(files, found...)
	}

	slices.Sort(files)
	return slices.Compact(files), nil
}

func resolveWorkDir(workDir string) (string, error) {
	if workDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("get working directory: %w", err)
		}
		return wd, nil
	}
	abs, err := filepath.Abs(workDir)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path: %w", err)
	}
	return abs, nil
}

// selection applies the suffix, include and exclude filters relative to workDir.
type selection struct {
	workDir  string
	suffixes []string
	opts     Options
}

func (s selection) rel(path string) string {
	rel, err := filepath.Rel(s.workDir, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

func (s selection) accepts(path string) bool {
	name := strings.ToLower(filepath.Base(path))
	if !slices.ContainsFunc(s.suffixes, func(suffix string) bool { return strings.HasSuffix(name, suffix) }) {
		return false
	}

	rel := s.rel(path)
	if matchAny(rel, s.opts.ExcludeGlobs) {
		return false
	}
	return len(s.opts.IncludeGlobs) == 0 || matchAny(rel, s.opts.IncludeGlobs)
}

// walk collects accepted files under root. Hidden entries and excluded directories
// are skipped; unreadable directories are skipped silently.
func (s selection) walk(ctx context.Context, root string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if walkErr != nil {
			if os.IsPermission(walkErr) {
				return nil
			}
			return walkErr
		}

		hidden := path != root && strings.HasPrefix(entry.Name(), ".")
		if entry.IsDir() {
			if hidden || matchAny(s.rel(path), s.opts.ExcludeGlobs) {
				return filepath.SkipDir
			}
			return nil
		}
		if hidden {
			return nil
		}

		if entry.Type()&fs.ModeSymlink != 0 {
			target, err := filepath.EvalSymlinks(path)
			if err != nil {
				return nil //nolint:nilerr // broken symlinks are skipped
			}
			info, err := os.Stat(target)
			if err != nil {
				return nil //nolint:nilerr // unreadable targets are skipped
			}
			if info.IsDir() {
				if !s.opts.FollowSymlinks {
					return nil
				}
				// Walk the target; WalkDir does not descend into a symlinked root.
				sub, err := s.walk(ctx, target)
				if err != nil {
					return err
				}
				files = append(files, sub...)
				return nil
			}
		}

		if s.accepts(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk directory %s: %w", root, err)
	}

	return files, nil
}

func matchAny(rel string, patterns []string) bool {
	return slices.ContainsFunc(patterns, func(p string) bool { return matchGlob(rel, p) })
}

// matchGlob matches a slash-separated relative path against a glob where "**" spans
// any number of path segments. A pattern without a slash also matches the base name,
// so "*.md" and "vendor" behave as they do in ignore files.
func matchGlob(rel, pattern string) bool {
	pattern = strings.TrimPrefix(filepath.ToSlash(pattern), "./")
	if pattern == "" {
		return false
	}

	pathSegs := strings.Split(rel, "/")
	if !strings.Contains(pattern, "/") && pattern != "**" {
		return slices.ContainsFunc(pathSegs, func(seg string) bool {
			ok, err := filepath.Match(pattern, seg)
			return err == nil && ok
		})
	}

	// "**" also matches zero segments, so "dir/**" covers "dir" itself.
	return matchSegments(pathSegs, strings.Split(strings.TrimSuffix(pattern, "/"), "/"))
}

func matchSegments(path, pattern []string) bool {
	for len(pattern) > 0 {
		if pattern[0] == "**" {
			rest := pattern[1:]
			for i := 0; i <= len(path); i++ {
				if matchSegments(path[i:], rest) {
					return true
				}
			}
			return false
		}
		if len(path) == 0 {
			return false
		}
		ok, err := filepath.Match(pattern[0], path[0])
		if err != nil || !ok {
			return false
		}
		path, pattern = path[1:], pattern[1:]
	}
	return len(path) == 0
}
