package deploy

import (
	"io"
	"os"
	"path/filepath"

	"github.com/agentx-labs/extbuild/internal/platform"
)

// Target is the filesystem artifacts are deployed onto.
type Target interface {
	MkdirAll(dir string) error
	// Create opens name for writing, truncating any existing file. The
	// permission bits are applied exactly when the writer is closed.
	Create(name string, perm os.FileMode) (io.WriteCloser, error)
	Join(elem ...string) string
	Close() error
}

// LocalTarget deploys into a directory on the local filesystem.
type LocalTarget struct{}

func (LocalTarget) MkdirAll(dir string) error { return os.MkdirAll(dir, 0755) }

func (LocalTarget) Create(name string, perm os.FileMode) (io.WriteCloser, error) {
	f, err := os.OpenFile(name, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return nil, err
	}
	return &localFile{File: f, perm: perm}, nil
}

func (LocalTarget) Join(elem ...string) string { return filepath.Join(elem...) }

func (LocalTarget) Close() error { return nil }

type localFile struct {
	*os.File
	perm os.FileMode
}

func (f *localFile) Close() error {
	if err := f.File.Close(); err != nil {
		return err
	}
	return platform.Chmod(f.Name(), f.perm)
}
