package source

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// excludedNames are version-control directories dropped from local copies.
var excludedNames = map[string]bool{
	".git": true,
	".svn": true,
	".hg":  true,
}

// copyLocal copies the checkout at src to dst. Symbolic links are replaced
// by the content they point to so the tree is self-contained. With replace
// set an existing dst is removed first; otherwise the copy merges into it.
func copyLocal(logger *slog.Logger, src, dst string, replace bool) error {
	info, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("local source: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("local source %s is not a directory", src)
	}

	if _, err := os.Lstat(dst); err == nil && replace {
		if err := os.RemoveAll(dst); err != nil {
			return fmt.Errorf("removing previous copy at %s: %w", dst, err)
		}
	}

	c := &treeCopier{logger: logger, active: map[string]bool{}}
	return c.copyDir(src, dst)
}

type treeCopier struct {
	logger *slog.Logger
	// active holds the real paths of directories currently being copied,
	// so a link back to an ancestor does not recurse forever.
	active map[string]bool
}

func (c *treeCopier) copyDir(src, dst string) error {
	resolved, err := filepath.EvalSymlinks(src)
	if err != nil {
		return err
	}
	if c.active[resolved] {
		c.logger.Warn("skipping symlink cycle", "path", src)
		return nil
	}
	c.active[resolved] = true
	defer delete(c.active, resolved)

	srcInfo, err := os.Stat(src)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dst, srcInfo.Mode().Perm()|0700); err != nil {
		return err
	}

	entries, err := os.ReadDir(src)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		if excludedNames[entry.Name()] {
			continue
		}

		srcPath := filepath.Join(src, entry.Name())
		dstPath := filepath.Join(dst, entry.Name())

		switch {
		case entry.Type()&os.ModeSymlink != 0:
			if err := c.copyLink(srcPath, dstPath); err != nil {
				return err
			}
		case entry.IsDir():
			if err := c.copyDir(srcPath, dstPath); err != nil {
				return err
			}
		case entry.Type().IsRegular():
			if err := copyFile(srcPath, dstPath); err != nil {
				return err
			}
		}
		// Sockets, devices and named pipes are skipped.
	}
	return nil
}

// copyLink copies whatever srcPath points at and drops dangling links.
func (c *treeCopier) copyLink(srcPath, dstPath string) error {
	target, err := filepath.EvalSymlinks(srcPath)
	if err != nil {
		c.logger.Warn("dropping dangling symlink", "path", srcPath, "error", err)
		return nil
	}
	info, err := os.Stat(target)
	if err != nil {
		c.logger.Warn("dropping dangling symlink", "path", srcPath, "error", err)
		return nil
	}
	if info.IsDir() {
		return c.copyDir(target, dstPath)
	}
	if !info.Mode().IsRegular() {
		return nil
	}
	return copyFile(target, dstPath)
}

// copyFile copies a single file from src to dst, preserving permissions.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
