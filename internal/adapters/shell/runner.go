// Package shell provides the child process runner adapter.
package shell

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
	"sync"

	"go.trai.ch/mason/internal/core/ports"
	"go.trai.ch/zerr"
)

// stderrTailLimit bounds how much stderr is retained for error reports.
const stderrTailLimit = 16 * 1024

// Runner implements ports.Runner using os/exec.
type Runner struct {
	log ports.Logger
}

// NewRunner creates a new Runner.
func NewRunner(log ports.Logger) *Runner {
	return &Runner{log: log}
}

// Run executes argv and streams output lines to onLine. Cancellation of ctx
// terminates the child. A non-zero exit returns an error carrying the exit
// code and the retained stderr tail.
func (r *Runner) Run(ctx context.Context, argv []string, onLine ports.LineFunc) error {
	if len(argv) == 0 {
		return zerr.New("empty command")
	}

	r.log.Debug("spawning", "command", strings.Join(argv, " "))

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...) //nolint:gosec // argv comes from the build plan

	var tail tailBuffer
	stdout := &lineWriter{stderr: false, fn: onLine}
	stderr := &lineWriter{stderr: true, fn: onLine, tee: &tail}
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	err := cmd.Run()
	stdout.flush()
	stderr.flush()
	if err == nil {
		return nil
	}

	if ctx.Err() != nil {
		return zerr.With(zerr.Wrap(ctx.Err(), "command cancelled"), "command", argv[0])
	}

	exitCode := -1
	if exitErr, ok := err.(*exec.ExitError); ok {
		exitCode = exitErr.ExitCode()
	}
	return zerr.With(zerr.With(zerr.With(
		zerr.Wrap(err, "command failed"),
		"command", argv[0]),
		"exit_code", exitCode),
		"stderr", tail.String())
}

// lineWriter splits a child process stream into lines and forwards each one.
// Partial lines are buffered until the next write or flush.
type lineWriter struct {
	mu     sync.Mutex
	buf    bytes.Buffer
	stderr bool
	fn     ports.LineFunc
	tee    *tailBuffer
}

func (w *lineWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.tee != nil {
		w.tee.append(p)
	}
	w.buf.Write(p)
	for {
		data := w.buf.Bytes()
		i := bytes.IndexByte(data, '\n')
		if i < 0 {
			break
		}
		line := strings.TrimSuffix(string(data[:i]), "\r")
		w.buf.Next(i + 1)
		w.fn(w.stderr, line)
	}
	return len(p), nil
}

// flush emits any trailing partial line after the process has exited.
func (w *lineWriter) flush() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.buf.Len() > 0 {
		w.fn(w.stderr, w.buf.String())
		w.buf.Reset()
	}
}

// tailBuffer retains the last stderrTailLimit bytes written to it.
type tailBuffer struct {
	buf []byte
}

func (t *tailBuffer) append(p []byte) {
	t.buf = append(t.buf, p...)
	if len(t.buf) > stderrTailLimit {
		t.buf = t.buf[len(t.buf)-stderrTailLimit:]
	}
}

func (t *tailBuffer) String() string {
	return strings.TrimSpace(string(t.buf))
}
