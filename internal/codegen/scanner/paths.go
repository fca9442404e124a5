package scanner

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// HeaderExts are the extensions collected when a directory is expanded.
var HeaderExts = []string{".h", ".hh", ".hpp", ".hxx"}

// IsHeader reports whether path has one of HeaderExts.
func IsHeader(path string) bool {
	return slices.Contains(HeaderExts, strings.ToLower(filepath.Ext(path)))
}

// ExpandPaths turns files, directories and glob patterns into a sorted,
// de-duplicated list of files. Directories are walked recursively for
// headers; files named explicitly are kept whatever their extension.
func ExpandPaths(patterns []string) ([]string, error) {
	seen := map[string]bool{}
	var out []string
	add := func(p string) {
		p = filepath.Clean(p)
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}

	for _, pat := range patterns {
		matches := []string{pat}
		if strings.ContainsAny(pat, "*?[") {
			m, err := filepath.Glob(pat)
			if err != nil {
				return nil, fmt.Errorf("bad pattern %q: %w", pat, err)
			}
			matches = m
		}
		for _, m := range matches {
			info, err := os.Stat(m)
			if err != nil {
				return nil, fmt.Errorf("%w: %s: %w", ErrUnreadable, m, err)
			}
			if !info.IsDir() {
				add(m)
				continue
			}
			err = filepath.WalkDir(m, func(path string, d fs.DirEntry, err error) error {
				if err != nil {
					return err
				}
				if d.IsDir() {
					if path != m && strings.HasPrefix(d.Name(), ".") {
						return filepath.SkipDir
					}
					return nil
				}
				if IsHeader(path) {
					add(path)
				}
				return nil
			})
			if err != nil {
				return nil, fmt.Errorf("walk %s: %w", m, err)
			}
		}
	}
	slices.Sort(out)
	return out, nil
}
