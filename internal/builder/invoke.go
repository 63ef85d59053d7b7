package builder

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"sync"

	"github.com/agentx-labs/extbuild/internal/logging"
	"golang.org/x/sync/errgroup"
)

const (
	// DefaultMaxLineBytes caps a single logged output line.
	DefaultMaxLineBytes = 64 * 1024
	// DefaultTailLines is how much output a BuildToolError keeps.
	DefaultTailLines = 20
)

// Invoker runs build commands and streams their output to Logger.
type Invoker struct {
	Logger       *slog.Logger
	MaxLineBytes int
	TailLines    int
}

// Run executes c and blocks until it exits. Exit status 0 returns nil; any
// other status returns *BuildToolError. Output content is never inspected
// for failure. Cancelling ctx kills the process.
func (i *Invoker) Run(ctx context.Context, c Command) error {
	logger := i.Logger
	if logger == nil {
		logger = logging.FromContext(ctx)
	}
	maxLine := i.MaxLineBytes
	if maxLine <= 0 {
		maxLine = DefaultMaxLineBytes
	}
	tailLines := i.TailLines
	if tailLines <= 0 {
		tailLines = DefaultTailLines
	}

	info, err := os.Stat(c.Dir)
	if err != nil {
		return &LaunchError{Op: "chdir", Err: err}
	}
	if !info.IsDir() {
		return &LaunchError{Op: "chdir", Err: fmt.Errorf("%s is not a directory", c.Dir)}
	}

	cmd := exec.CommandContext(ctx, c.Path, c.Args...)
	cmd.Dir = c.Dir
	cmd.Env = c.Env

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return &LaunchError{Op: "stdout pipe", Err: err}
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return &LaunchError{Op: "stderr pipe", Err: err}
	}

	logger.Info("starting build tool", "command", c.Path, "args", c.Args, "dir", c.Dir)
	if err := cmd.Start(); err != nil {
		return &LaunchError{Op: "start", Err: err}
	}

	// A killed build can leave children holding the pipes open; closing the
	// read ends unblocks the readers.
	stop := context.AfterFunc(ctx, func() {
		stdout.Close()
		stderr.Close()
	})
	defer stop()

	tail := newTail(tailLines)
	var g errgroup.Group
	g.Go(func() error { return streamLines(ctx, logger, "stdout", stdout, maxLine, tail) })
	g.Go(func() error { return streamLines(ctx, logger, "stderr", stderr, maxLine, tail) })

	// Pipes must be drained before Wait closes them.
	if err := g.Wait(); err != nil && ctx.Err() == nil {
		logger.Warn("reading build output", "error", err)
	}

	waitErr := cmd.Wait()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return &LaunchError{Op: "wait", Err: ctxErr}
	}
	if waitErr == nil {
		return nil
	}

	var exitErr *exec.ExitError
	if errors.As(waitErr, &exitErr) {
		return &BuildToolError{ExitCode: exitErr.ExitCode(), Tail: tail.lines()}
	}
	return &LaunchError{Op: "wait", Err: waitErr}
}

// streamLines logs each line of r as it arrives. Lines longer than maxLine
// are truncated; the remainder is discarded up to the next newline.
func streamLines(ctx context.Context, logger *slog.Logger, stream string, r io.Reader, maxLine int, tail *tailBuffer) error {
	br := bufio.NewReader(r)
	for {
		line, truncated, err := readLine(br, maxLine)
		if err == nil || line != "" {
			attrs := []slog.Attr{slog.String("stream", stream)}
			if truncated {
				attrs = append(attrs, slog.Bool("truncated", true))
			}
			logger.LogAttrs(ctx, slog.LevelInfo, line, attrs...)
			tail.add(line)
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("%s: %w", stream, err)
		}
	}
}

// readLine reads one newline-terminated line, keeping at most max bytes.
func readLine(br *bufio.Reader, max int) (string, bool, error) {
	var (
		buf       []byte
		truncated bool
	)
	for {
		chunk, err := br.ReadSlice('\n')
		room := max - len(buf)
		switch {
		case room <= 0:
			if len(chunk) > 0 {
				truncated = true
			}
		case len(chunk) > room:
			buf = append(buf, chunk[:room]...)
			truncated = true
		default:
			buf = append(buf, chunk...)
		}
		if err == bufio.ErrBufferFull {
			continue
		}
		return strings.TrimRight(string(buf), "\r\n"), truncated, err
	}
}

// tailBuffer keeps the last n lines written by both stream readers.
type tailBuffer struct {
	mu  sync.Mutex
	n   int
	buf []string
}

func newTail(n int) *tailBuffer {
	return &tailBuffer{n: n}
}

func (t *tailBuffer) add(line string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.buf = append(t.buf, line)
	if len(t.buf) > t.n {
		t.buf = t.buf[len(t.buf)-t.n:]
	}
}

func (t *tailBuffer) lines() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]string, len(t.buf))
	copy(out, t.buf)
	return out
}
