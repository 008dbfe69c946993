package events

import (
	"go.trai.ch/mason/internal/core/domain"
	"go.trai.ch/mason/internal/core/ports"
)

// Multi fans every event out to each sink in order.
type Multi []ports.EventSink

// RunStart forwards to every sink.
func (m Multi) RunStart(total int) {
	for _, s := range m {
		s.RunStart(total)
	}
}

// TargetLine forwards to every sink.
func (m Multi) TargetLine(target string, stage ports.Stage, text string) {
	for _, s := range m {
		s.TargetLine(target, stage, text)
	}
}

// TargetFinished forwards to every sink.
func (m Multi) TargetFinished(target string, outcome domain.Outcome) {
	for _, s := range m {
		s.TargetFinished(target, outcome)
	}
}

// RunFinished forwards to every sink.
func (m Multi) RunFinished(success bool, counts ports.Counts) {
	for _, s := range m {
		s.RunFinished(success, counts)
	}
}
