package deploy

import "fmt"

// CopyReadError is returned when an artifact cannot be read from the build
// root.
type CopyReadError struct {
	Path string
	Err  error
}

func (e *CopyReadError) Error() string {
	return fmt.Sprintf("could not read file for copying: %s: %v", e.Path, e.Err)
}

func (e *CopyReadError) Unwrap() error { return e.Err }

// CopyWriteError is returned when an artifact cannot be written to the
// deployment directory.
type CopyWriteError struct {
	Path string
	Err  error
}

func (e *CopyWriteError) Error() string {
	return fmt.Sprintf("could not open target for copying: %s: %v", e.Path, e.Err)
}

func (e *CopyWriteError) Unwrap() error { return e.Err }
