package builder

import (
	"fmt"
	"strings"
)

// LaunchError is returned when the build process could not be started,
// its output could not be attached, or waiting on it failed for a reason
// other than a nonzero exit.
type LaunchError struct {
	Op  string
	Err error
}

func (e *LaunchError) Error() string {
	return fmt.Sprintf("launching build tool (%s): %v", e.Op, e.Err)
}

func (e *LaunchError) Unwrap() error { return e.Err }

// BuildToolError is returned when the build process ran and exited nonzero.
type BuildToolError struct {
	ExitCode int
	// Tail holds the last lines of combined output, oldest first.
	Tail []string
}

func (e *BuildToolError) Error() string {
	msg := fmt.Sprintf("build tool exited with code %d", e.ExitCode)
	if len(e.Tail) > 0 {
		msg += ":\n  " + strings.Join(e.Tail, "\n  ")
	}
	return msg
}
