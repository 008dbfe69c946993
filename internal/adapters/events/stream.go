// Package events provides the EventSink implementations: a framed line
// stream for programmatic consumers, a human console sink, and a progrock
// recorder for rich terminal progress.
package events

import (
	"fmt"
	"io"
	"sync"

	"go.trai.ch/mason/internal/core/domain"
	"go.trai.ch/mason/internal/core/ports"
)

// StreamSink emits the framed line protocol: a `__TOTAL__\t<N>` control line
// at run start, `[TARGET:<name>] [STAGE] text` lines during the run, and a
// `__FINISH__` control line carrying the outcome counts at run end. Writes
// are serialized.
type StreamSink struct {
	mu sync.Mutex
	w  io.Writer
}

// NewStreamSink creates a StreamSink writing to w.
func NewStreamSink(w io.Writer) *StreamSink {
	return &StreamSink{w: w}
}

// RunStart writes the total-count frame.
func (s *StreamSink) RunStart(total int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.w, "__TOTAL__\t%d\n", total)
}

// TargetLine writes one tagged progress line.
func (s *StreamSink) TargetLine(target string, stage ports.Stage, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.w, "[TARGET:%s] [%s] %s\n", target, stage, text)
}

// TargetFinished writes the terminal outcome as a tagged line.
func (s *StreamSink) TargetFinished(target string, outcome domain.Outcome) {
	stage := ports.StageOk
	switch outcome {
	case domain.OutcomeFailed:
		stage = ports.StageError
	case domain.OutcomeSkipped:
		stage = ports.StageSkip
	}
	s.TargetLine(target, stage, string(outcome))
}

// RunFinished writes the finish frame with the outcome counts.
func (s *StreamSink) RunFinished(success bool, counts ports.Counts) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.w, "__FINISH__\t%d\t%d\t%d\n", counts.Succeeded, counts.Failed, counts.Skipped)
}
