package locate

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar"
)

// NotFoundError reports a source tree that lacks an expected file or
// directory.
type NotFoundError struct {
	What    string // "version file" or "build root"
	Pattern string
	Root    string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s matching %q not found under %s", e.What, e.Pattern, e.Root)
}

// VersionFile returns the first file matching **/<name>.pm under tree.
func VersionFile(logger *slog.Logger, tree, name string) (string, error) {
	pattern := "**/" + name + ".pm"

	var matches []string
	err := filepath.WalkDir(tree, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(tree, path)
		if err != nil {
			return err
		}
		ok, err := doublestar.Match(pattern, filepath.ToSlash(rel))
		if err != nil {
			return fmt.Errorf("matching %q: %w", pattern, err)
		}
		if ok {
			matches = append(matches, path)
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("searching %s for version file: %w", tree, err)
	}

	if len(matches) == 0 {
		return "", &NotFoundError{What: "version file", Pattern: pattern, Root: tree}
	}

	sort.Strings(matches)
	if len(matches) > 1 {
		logger.Warn("multiple version files found, using the first",
			"chosen", matches[0], "candidates", matches)
	}
	return matches[0], nil
}

// BuildRoot returns the directory the build tool runs from. With flat set
// that is tree itself; otherwise it is the first immediate subdirectory,
// since archive extraction wraps content in a single top-level directory.
func BuildRoot(logger *slog.Logger, tree string, flat bool) (string, error) {
	info, err := os.Stat(tree)
	if err != nil || !info.IsDir() {
		return "", &NotFoundError{What: "build root", Pattern: ".", Root: tree}
	}
	if flat {
		return tree, nil
	}

	entries, err := os.ReadDir(tree)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", tree, err)
	}

	var dirs []string
	for _, e := range entries {
		if e.IsDir() {
			dirs = append(dirs, e.Name())
		}
	}
	if len(dirs) == 0 {
		return "", &NotFoundError{What: "build root", Pattern: "*/", Root: tree}
	}

	sort.Strings(dirs)
	if len(dirs) > 1 {
		logger.Warn("multiple top-level directories found, using the first",
			"chosen", dirs[0], "candidates", dirs)
	}
	return filepath.Join(tree, dirs[0]), nil
}
