package events

import (
	"sync"

	"github.com/opencontainers/go-digest"
	"github.com/vito/progrock"
	"go.trai.ch/zerr"

	"go.trai.ch/mason/internal/core/domain"
	"go.trai.ch/mason/internal/core/ports"
)

// ProgrockSink records the run on a progrock tape: one vertex per target,
// stage lines written to the vertex streams.
type ProgrockSink struct {
	mu       sync.Mutex
	w        progrock.Writer
	rec      *progrock.Recorder
	vertices map[string]*progrock.VertexRecorder
}

// NewProgrockSink creates a sink recording to a default tape.
func NewProgrockSink() *ProgrockSink {
	return NewProgrockSinkWriter(progrock.NewTape())
}

// NewProgrockSinkWriter creates a sink recording to the given writer.
func NewProgrockSinkWriter(w progrock.Writer) *ProgrockSink {
	return &ProgrockSink{
		w:        w,
		rec:      progrock.NewRecorder(w),
		vertices: make(map[string]*progrock.VertexRecorder),
	}
}

func (p *ProgrockSink) vertex(target string) *progrock.VertexRecorder {
	if v, ok := p.vertices[target]; ok {
		return v
	}
	v := p.rec.Vertex(digest.FromString(target), target)
	p.vertices[target] = v
	return v
}

// RunStart is a no-op; vertices are created lazily per target.
func (p *ProgrockSink) RunStart(total int) {}

// TargetLine writes the line to the target's vertex stream, error lines to
// stderr and everything else to stdout.
func (p *ProgrockSink) TargetLine(target string, stage ports.Stage, text string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	v := p.vertex(target)
	if stage == ports.StageError {
		_, _ = v.Stderr().Write([]byte(text + "\n"))
		return
	}
	_, _ = v.Stdout().Write([]byte("[" + string(stage) + "] " + text + "\n"))
}

// TargetFinished completes the target's vertex; skipped targets are marked
// cached.
func (p *ProgrockSink) TargetFinished(target string, outcome domain.Outcome) {
	p.mu.Lock()
	defer p.mu.Unlock()
	v := p.vertex(target)
	switch outcome {
	case domain.OutcomeFailed:
		v.Done(zerr.New("target failed"))
	case domain.OutcomeSkipped:
		v.Cached()
		v.Done(nil)
	default:
		v.Done(nil)
	}
}

// RunFinished closes the tape.
func (p *ProgrockSink) RunFinished(success bool, counts ports.Counts) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if c, ok := p.w.(interface{ Close() error }); ok {
		_ = c.Close()
	}
}
