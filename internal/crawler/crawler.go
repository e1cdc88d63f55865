package crawler

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
)

// Crawler scans a directory for source files matching doublestar globs.
type Crawler struct {
	include []string
	exclude []string
	ignored []string
}

// NewCrawler creates a new crawler instance. Patterns are matched
// against slash-separated paths relative to the scanned root.
func NewCrawler(include, exclude []string) (*Crawler, error) {
	for _, p := range append(append([]string{}, include...), exclude...) {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid glob %q", p)
		}
	}
	return &Crawler{
		include: include,
		exclude: exclude,
		ignored: []string{".git", "node_modules"},
	}, nil
}

// Match reports whether rel, relative to the root, is selected.
func (c *Crawler) Match(rel string) bool {
	rel = filepath.ToSlash(rel)
	for _, p := range c.exclude {
		if doublestar.MatchUnvalidated(p, rel) {
			return false
		}
	}
	for _, p := range c.include {
		if doublestar.MatchUnvalidated(p, rel) {
			return true
		}
	}
	return false
}

// ScanProject walks root and returns the selected files as
// slash-separated paths relative to root, sorted.
func (c *Crawler) ScanProject(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		// Skip ignored directories
		if d.IsDir() {
			for _, ign := range c.ignored {
				if d.Name() == ign && path != root {
					return filepath.SkipDir
				}
			}
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		if c.Match(rel) {
			files = append(files, filepath.ToSlash(rel))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", root, err)
	}
	sort.Strings(files)
	return files, nil
}
