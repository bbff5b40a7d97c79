package parser

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// ExpandGlobs expands file paths and glob patterns into a sorted,
// deduplicated list. Patterns matching nothing are kept as literal paths so
// the caller reports a file-not-found error for them.
func ExpandGlobs(patterns []string) ([]string, error) {
	seen := make(map[string]bool)
	var result []string

	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			result = append(result, p)
		}
	}

	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid glob pattern %q: %w", pattern, err)
		}

		if len(matches) == 0 {
			add(pattern)
			continue
		}
		for _, match := range matches {
			add(match)
		}
	}

	sort.Strings(result)
	return result, nil
}

// MatchFilter reports whether the base name of path matches filter.
// An empty filter matches everything.
func MatchFilter(filter, path string) (bool, error) {
	if filter == "" {
		return true, nil
	}
	ok, err := filepath.Match(filter, filepath.Base(path))
	if err != nil {
		return false, fmt.Errorf("invalid filter %q: %w", filter, err)
	}
	return ok, nil
}

// MatchingFiles lists the regular files directly inside dir whose names
// match filter, sorted by name. Subdirectories are not descended into.
func MatchingFiles(dir, filter string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", dir, err)
	}

	var result []string
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		ok, err := MatchFilter(filter, e.Name())
		if err != nil {
			return nil, err
		}
		if ok {
			result = append(result, filepath.Join(dir, e.Name()))
		}
	}
	return result, nil
}
