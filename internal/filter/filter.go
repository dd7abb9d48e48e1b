// Package filter selects remote files by shell-style glob patterns.
package filter

import (
	"fmt"

	"github.com/gobwas/glob"
)

// Filter holds a set of compiled inclusion patterns. Patterns are matched
// against the full relative path, and a wildcard crosses path separators,
// so "*.txt" also matches "subdir/example.txt".
type Filter struct {
	patterns []string
	globs    []glob.Glob
}

// New compiles the given patterns. An empty or nil set is valid and
// matches every path.
func New(patterns []string) (*Filter, error) {
	f := &Filter{patterns: patterns}
	for _, p := range patterns {
		g, err := glob.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid glob pattern %q: %w", p, err)
		}
		f.globs = append(f.globs, g)
	}
	return f, nil
}

// Match reports whether path matches at least one pattern.
func (f *Filter) Match(path string) bool {
	if len(f.globs) == 0 {
		return true
	}
	for _, g := range f.globs {
		if g.Match(path) {
			return true
		}
	}
	return false
}

// Empty reports whether the filter has no patterns.
func (f *Filter) Empty() bool {
	return len(f.globs) == 0
}

// Patterns returns the original pattern strings.
func (f *Filter) Patterns() []string {
	return f.patterns
}
