package parser

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// exportExts are the file extensions ReadExport understands. Directories
// passed to ExpandGlobs are searched (non-recursively) for these.
var exportExts = map[string]bool{
	".txt":  true,
	".zip":  true,
	".gz":   true,
	".zst":  true,
	".zstd": true,
}

// ExpandGlobs expands a list of file paths, directories and glob patterns
// into a deduplicated, sorted list of export paths. Patterns that don't
// match any files are returned as-is so the caller reports file-not-found.
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
			info, err := os.Stat(match)
			if err != nil || !info.IsDir() {
				add(match)
				continue
			}
			files, err := exportsInDir(match)
			if err != nil {
				return nil, err
			}
			for _, f := range files {
				add(f)
			}
		}
	}

	// Sort for deterministic ordering
	sort.Strings(result)

	return result, nil
}

func exportsInDir(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading directory %s: %w", dir, err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if exportExts[strings.ToLower(filepath.Ext(e.Name()))] {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	return files, nil
}
