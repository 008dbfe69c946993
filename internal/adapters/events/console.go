package events

import (
	"fmt"
	"io"
	"sync"

	"go.trai.ch/mason/internal/core/domain"
	"go.trai.ch/mason/internal/core/ports"
)

// ConsoleSink renders events for a human terminal. In quiet mode only error
// lines and the final summary are printed. Error lines always print, so a
// failed command and its stderr stay visible without -v.
type ConsoleSink struct {
	mu    sync.Mutex
	w     io.Writer
	quiet bool
	total int
	done  int
}

// NewConsoleSink creates a ConsoleSink writing to w.
func NewConsoleSink(w io.Writer, quiet bool) *ConsoleSink {
	return &ConsoleSink{w: w, quiet: quiet}
}

// RunStart records the total and prints the run header.
func (c *ConsoleSink) RunStart(total int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.total = total
	if !c.quiet {
		fmt.Fprintf(c.w, "Building %d target(s)\n", total)
	}
}

// TargetLine prints one tagged line.
func (c *ConsoleSink) TargetLine(target string, stage ports.Stage, text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.quiet && stage != ports.StageError {
		return
	}
	if stage == ports.StageDetail {
		fmt.Fprintf(c.w, "[%s] %s\n", target, text)
		return
	}
	fmt.Fprintf(c.w, "[%s] [%s] %s\n", target, stage, text)
}

// TargetFinished prints a progress counter line for the target.
func (c *ConsoleSink) TargetFinished(target string, outcome domain.Outcome) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.done++
	if c.quiet {
		return
	}
	percent := 0
	if c.total > 0 {
		percent = c.done * 100 / c.total
	}
	fmt.Fprintf(c.w, "[%d/%d %3d%%] %s: %s\n", c.done, c.total, percent, target, outcome)
}

// RunFinished prints the summary. It prints even in quiet mode.
func (c *ConsoleSink) RunFinished(success bool, counts ports.Counts) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if success {
		fmt.Fprintf(c.w, "Build succeeded: %d built, %d skipped\n", counts.Succeeded, counts.Skipped)
		return
	}
	fmt.Fprintf(c.w, "Build failed: %d failed, %d built, %d skipped\n",
		counts.Failed, counts.Succeeded, counts.Skipped)
}
