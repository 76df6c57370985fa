// Package prune strips code blocks belonging to unselected items: files
// are matched with doublestar globs relative to the project directory and
// matching regex spans are deleted.
package prune

import (
	stderrors "errors"
	"io/fs"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/stencilworks/stencil/pkg/errors"
	"github.com/stencilworks/stencil/pkg/types"
)

// LoadIgnore reads glob exclusions from the named ignore file under
// projectDir, one pattern per line, '#' comments and blank lines
// skipped. A missing ignore file yields nil.
func LoadIgnore(fsys types.FS, projectDir, name string) []string {
	if name == "" {
		return nil
	}
	data, err := fsys.ReadFile(filepath.Join(projectDir, name))
	if err != nil {
		return nil
	}

	var patterns []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, line)
	}
	return patterns
}

// Glob returns the files under projectDir whose slash-separated relative
// path matches pattern, excluding anything matched by excludes.
// Directories are never returned; traversal order is deterministic.
func Glob(fsys types.FS, projectDir, pattern string, excludes []string) ([]string, error) {
	if !doublestar.ValidatePattern(pattern) {
		return nil, errors.Newf(errors.ErrCodePattern, "invalid glob pattern %q", pattern)
	}

	var matches []string
	var walk func(dir string) error
	walk = func(dir string) error {
		entries, err := fsys.ReadDir(dir)
		if err != nil {
			return err
		}
		for _, entry := range entries {
			full := filepath.Join(dir, entry.Name())
			rel, err := filepath.Rel(projectDir, full)
			if err != nil {
				return err
			}
			rel = filepath.ToSlash(rel)

			if excluded(rel, entry.IsDir(), excludes) {
				continue
			}
			if entry.IsDir() {
				if err := walk(full); err != nil {
					return err
				}
				continue
			}
			if ok, _ := doublestar.Match(pattern, rel); ok {
				matches = append(matches, full)
			}
		}
		return nil
	}

	if err := walk(projectDir); err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, errors.ErrCodePattern, "walking %s", projectDir)
	}
	return matches, nil
}

func excluded(rel string, isDir bool, excludes []string) bool {
	for _, ex := range excludes {
		if ok, _ := doublestar.Match(ex, rel); ok {
			return true
		}
		// let "node_modules/**" prune the directory itself
		if isDir {
			if ok, _ := doublestar.Match(ex, rel+"/"); ok {
				return true
			}
			if strings.HasSuffix(ex, "/**") {
				if ok, _ := doublestar.Match(strings.TrimSuffix(ex, "/**"), rel); ok {
					return true
				}
			}
		}
	}
	return false
}

// Strip deletes every match of re from content, reporting whether
// anything was removed.
func Strip(content []byte, re *regexp.Regexp) ([]byte, bool) {
	if !re.Match(content) {
		return content, false
	}
	return re.ReplaceAll(content, nil), true
}
