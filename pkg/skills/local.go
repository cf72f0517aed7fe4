package skills

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
	"github.com/pkg/errors"

	"github.com/jingkaihe/findskill/pkg/logger"
)

// LocalSource searches skill directories on the local filesystem.
type LocalSource struct {
	roots  []string
	ignore []glob.Glob
}

// LocalOption configures a LocalSource
type LocalOption func(*LocalSource) error

// WithIgnorePatterns skips directories whose base name matches any of the
// glob patterns.
func WithIgnorePatterns(patterns ...string) LocalOption {
	return func(s *LocalSource) error {
		compiled, err := compilePatterns(patterns)
		if err != nil {
			return err
		}
		s.ignore = compiled
		return nil
	}
}

// NewLocalSource creates a LocalSource over roots, searched in the given order.
// A leading "~" in a root is expanded to the user's home directory.
func NewLocalSource(roots []string, opts ...LocalOption) (*LocalSource, error) {
	s := &LocalSource{}
	for _, root := range roots {
		expanded, err := ExpandHome(root)
		if err != nil {
			return nil, err
		}
		s.roots = append(s.roots, expanded)
	}

	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// ExpandHome resolves a leading "~" to the user's home directory.
func ExpandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "failed to get user home directory")
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}

func compilePatterns(patterns []string) ([]glob.Glob, error) {
	compiled := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid ignore pattern %q", p)
		}
		compiled = append(compiled, g)
	}
	return compiled, nil
}

func matchesAny(patterns []glob.Glob, name string) bool {
	for _, g := range patterns {
		if g.Match(name) {
			return true
		}
	}
	return false
}

// Roots returns the expanded roots
func (s *LocalSource) Roots() []string {
	return s.roots
}

// Source implements Strategy
func (s *LocalSource) Source() Source {
	return SourceLocal
}

// Available reports whether at least one root exists.
func (s *LocalSource) Available() bool {
	for _, root := range s.roots {
		if isDir(root) {
			return true
		}
	}
	return false
}

// Search implements Strategy. Missing roots and unreadable skills are not
// failures; they simply contribute nothing.
func (s *LocalSource) Search(ctx context.Context, query string) StrategyResult {
	return StrategyResult{
		Source:     SourceLocal,
		Candidates: s.Find(ctx, query),
	}
}

// Find returns the matching skills in root order, then directory listing
// order. Each root is searched one level deep and, for monorepos, one
// further level below every child directory.
func (s *LocalSource) Find(ctx context.Context, query string) []Candidate {
	log := logger.G(ctx).WithField("source", SourceLocal)

	var results []Candidate
	for _, root := range s.roots {
		if !isDir(root) {
			log.WithField("root", root).Debug("skipping missing skill root")
			continue
		}

		for _, dir := range s.candidateDirs(root) {
			meta, ok := s.loadMetadata(dir)
			if !ok || !meta.Matches(query) {
				continue
			}

			location, err := filepath.Abs(dir)
			if err != nil {
				location = dir
			}
			results = append(results, meta.Candidate(location, SourceLocal))
		}
	}

	log.WithField("matches", len(results)).Debug("local search finished")
	return results
}

// candidateDirs lists the immediate child directories of root followed by
// the child directories of each of those.
func (s *LocalSource) candidateDirs(root string) []string {
	level1 := s.childDirs(root)
	dirs := append([]string{}, level1...)
	for _, dir := range level1 {
		dirs = append(dirs, s.childDirs(dir)...)
	}
	return dirs
}

func (s *LocalSource) childDirs(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	var dirs []string
	for _, entry := range entries {
		if matchesAny(s.ignore, entry.Name()) {
			continue
		}
		entryPath := filepath.Join(dir, entry.Name())
		// os.Stat follows symlinks so linked skill directories are included.
		if !isDir(entryPath) {
			continue
		}
		dirs = append(dirs, entryPath)
	}
	return dirs
}

func (s *LocalSource) loadMetadata(dir string) (Metadata, bool) {
	content, err := os.ReadFile(filepath.Join(dir, SkillFileName))
	if err != nil {
		return nil, false
	}
	return ParseMetadata(string(content))
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
