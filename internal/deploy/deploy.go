package deploy

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// Policy decides what happens after an artifact fails to deploy.
type Policy string

const (
	// AbortOnFirst stops at the first failing artifact.
	AbortOnFirst Policy = "abort"
	// AttemptAll deploys every artifact and reports all failures together.
	AttemptAll Policy = "all"
)

// ParsePolicy validates a policy name. Empty means AbortOnFirst.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case "", AbortOnFirst:
		return AbortOnFirst, nil
	case AttemptAll:
		return AttemptAll, nil
	default:
		return "", fmt.Errorf("unknown copy policy %q: supported policies are %q and %q", s, AbortOnFirst, AttemptAll)
	}
}

// Deployer copies artifacts into a deployment directory.
type Deployer struct {
	Policy Policy
	Logger *slog.Logger
	// Target receives the artifacts. Nil means the local filesystem.
	Target Target
}

// Deploy copies or synthesizes each artifact from buildRoot into
// deployPath on the target, returning the names that were deployed.
func (d *Deployer) Deploy(buildRoot, deployPath string, artifacts []Artifact) ([]string, error) {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	target := d.Target
	if target == nil {
		target = LocalTarget{}
	}

	if err := target.MkdirAll(deployPath); err != nil {
		return nil, &CopyWriteError{Path: deployPath, Err: err}
	}

	var (
		deployed []string
		errs     []error
	)
	for _, a := range artifacts {
		src := filepath.Join(buildRoot, a.Name)
		dst := target.Join(deployPath, a.Name)

		err := deployOne(logger, target, a, src, dst)
		if err != nil {
			if d.Policy != AttemptAll {
				return deployed, err
			}
			logger.Error("artifact failed", "artifact", a.Name, "error", err)
			errs = append(errs, err)
			continue
		}
		deployed = append(deployed, a.Name)
	}
	return deployed, errors.Join(errs...)
}

func deployOne(logger *slog.Logger, target Target, a Artifact, src, dst string) error {
	_, statErr := os.Stat(src)
	if statErr != nil && errors.Is(statErr, os.ErrNotExist) && a.Synthesize != nil {
		logger.Info("synthesizing artifact", "artifact", a.Name, "path", dst)
		return synthesize(target, a, dst)
	}

	logger.Info("copying artifact", "artifact", a.Name, "from", src, "to", dst)
	return copyTo(target, src, dst)
}

func synthesize(target Target, a Artifact, dst string) error {
	w, err := target.Create(dst, 0644)
	if err != nil {
		return &CopyWriteError{Path: dst, Err: err}
	}
	if err := a.Synthesize(w); err != nil {
		w.Close()
		return &CopyWriteError{Path: dst, Err: err}
	}
	if err := w.Close(); err != nil {
		return &CopyWriteError{Path: dst, Err: err}
	}
	return nil
}

// copyTo streams src into dst on target byte for byte, preserving the
// permission bits of src.
func copyTo(target Target, src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return &CopyReadError{Path: src, Err: err}
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return &CopyReadError{Path: src, Err: err}
	}
	if info.IsDir() {
		return &CopyReadError{Path: src, Err: fmt.Errorf("is a directory")}
	}

	out, err := target.Create(dst, info.Mode().Perm())
	if err != nil {
		return &CopyWriteError{Path: dst, Err: err}
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		var pe *os.PathError
		if errors.As(err, &pe) && pe.Path == src {
			return &CopyReadError{Path: src, Err: err}
		}
		return &CopyWriteError{Path: dst, Err: err}
	}
	if err := out.Close(); err != nil {
		return &CopyWriteError{Path: dst, Err: err}
	}
	return nil
}
