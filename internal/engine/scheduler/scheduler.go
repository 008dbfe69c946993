// Package scheduler implements the parallel target executor.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"golang.org/x/sync/semaphore"

	"go.trai.ch/mason/internal/core/domain"
	"go.trai.ch/mason/internal/core/ports"
	"go.trai.ch/mason/internal/engine/plan"
	"go.trai.ch/zerr"
)

// TargetStatus represents the lifecycle state of a target during a run.
type TargetStatus string

const (
	// StatusWaiting indicates the target still has unfinished dependencies.
	StatusWaiting TargetStatus = "Waiting"
	// StatusReady indicates all dependencies finished and the target awaits a permit.
	StatusReady TargetStatus = "Ready"
	// StatusBuilding indicates the target holds a permit and is executing steps.
	StatusBuilding TargetStatus = "Building"
	// StatusSucceeded indicates at least one step ran and all succeeded.
	StatusSucceeded TargetStatus = "Succeeded"
	// StatusFailed indicates a step failed, an upstream failed, or the run was cancelled.
	StatusFailed TargetStatus = "Failed"
	// StatusSkipped indicates every step was up to date.
	StatusSkipped TargetStatus = "Skipped"
)

// Options control one executor run.
type Options struct {
	// Jobs bounds the number of in-flight targets. Zero or negative means
	// the number of logical CPUs.
	Jobs int64
	// KeepGoing keeps sibling branches running after a failure; downstream
	// targets of a failure still fail transitively.
	KeepGoing bool
	// Verbose echoes every child command line to the sink.
	Verbose bool
}

// Scheduler executes target plans concurrently under a bounded permit pool.
// A target becomes ready as soon as its last dependency finishes with a
// non-failing outcome; there is no level barrier.
type Scheduler struct {
	runner ports.Runner
	cache  ports.StepCache
	log    ports.Logger

	mu     sync.RWMutex
	status map[string]TargetStatus
}

// New creates a new Scheduler.
func New(runner ports.Runner, cache ports.StepCache, log ports.Logger) *Scheduler {
	return &Scheduler{
		runner: runner,
		cache:  cache,
		log:    log,
		status: make(map[string]TargetStatus),
	}
}

// Status returns the current status of a target.
func (s *Scheduler) Status(name string) TargetStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status[name]
}

func (s *Scheduler) setStatus(name string, status TargetStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status[name] = status
}

// Run executes the given plans, which must already be in topological order.
// It emits RunStart first, tagged per-stage lines and TargetFinished events
// during the run, and RunFinished last. The returned counts cover every
// target that reached a terminal state.
func (s *Scheduler) Run(ctx context.Context, plans []plan.TargetPlan, sink ports.EventSink, opts Options) (ports.Counts, error) {
	if opts.Jobs <= 0 {
		opts.Jobs = int64(runtime.NumCPU())
	}

	state := s.newRunState(ctx, plans, sink, opts)
	sink.RunStart(len(plans))

	for !state.done() {
		state.dispatch()
		if state.done() {
			break
		}
		if state.active == 0 {
			// Nothing in flight and nothing dispatchable: the remaining
			// targets are blocked behind failures or a stop.
			break
		}
		if state.cancelled {
			state.handleResult(<-state.resultsCh)
			continue
		}
		select {
		case res := <-state.resultsCh:
			state.handleResult(res)
		case <-ctx.Done():
			state.cancelled = true
		}
	}

	if ctx.Err() != nil {
		state.cancelled = true
		state.errs = errors.Join(state.errs, ctx.Err())
	}

	success := state.counts.Failed == 0 && !state.cancelled
	sink.RunFinished(success, state.counts)
	return state.counts, state.errs
}

type result struct {
	target  string
	outcome domain.Outcome
	err     error
}

type runState struct {
	s          *Scheduler
	ctx        context.Context
	sink       ports.EventSink
	opts       Options
	sem        *semaphore.Weighted
	plans      map[string]plan.TargetPlan
	inDegree   map[string]int
	dependents map[string][]string
	ready      []string
	active     int
	resultsCh  chan result
	counts     ports.Counts
	errs       error
	stop       bool
	cancelled  bool
}

func (s *Scheduler) newRunState(ctx context.Context, plans []plan.TargetPlan, sink ports.EventSink, opts Options) *runState {
	state := &runState{
		s:          s,
		ctx:        ctx,
		sink:       sink,
		opts:       opts,
		sem:        semaphore.NewWeighted(opts.Jobs),
		plans:      make(map[string]plan.TargetPlan, len(plans)),
		inDegree:   make(map[string]int, len(plans)),
		dependents: make(map[string][]string, len(plans)),
		resultsCh:  make(chan result, len(plans)+1),
	}

	inSelection := make(map[string]bool, len(plans))
	for _, p := range plans {
		inSelection[p.Target.Name] = true
	}

	// Dependency edges are counted within the selection only; the filter
	// guarantees the selection is closed over deps anyway.
	for _, p := range plans {
		name := p.Target.Name
		state.plans[name] = p
		s.setStatus(name, StatusWaiting)
		for _, dep := range p.Target.Deps {
			if inSelection[dep] {
				state.inDegree[name]++
				state.dependents[dep] = append(state.dependents[dep], name)
			}
		}
	}

	for _, p := range plans {
		if state.inDegree[p.Target.Name] == 0 {
			state.markReady(p.Target.Name)
		}
	}
	return state
}

func (state *runState) done() bool {
	return state.active == 0 && (len(state.ready) == 0 || state.stop || state.cancelled)
}

func (state *runState) markReady(name string) {
	state.s.setStatus(name, StatusReady)
	state.ready = append(state.ready, name)
}

// dispatch starts ready targets while slots are free and dispatch is still
// allowed. Gating on active keeps a failure from starting targets that were
// ready but never dispatched.
func (state *runState) dispatch() {
	for len(state.ready) > 0 && state.active < int(state.opts.Jobs) && !state.stop && !state.cancelled {
		name := state.ready[0]
		state.ready = state.ready[1:]
		state.active++

		go func(p plan.TargetPlan) {
			state.resultsCh <- state.runTarget(p)
		}(state.plans[name])
	}
}

// runTarget acquires one permit for the whole target and executes its steps.
func (state *runState) runTarget(p plan.TargetPlan) result {
	name := p.Target.Name
	if err := state.sem.Acquire(state.ctx, 1); err != nil {
		return result{target: name, outcome: domain.OutcomeFailed,
			err: zerr.With(zerr.Wrap(err, "run cancelled"), "target", name)}
	}
	defer state.sem.Release(1)

	state.s.setStatus(name, StatusBuilding)
	outcome, err := state.s.buildTarget(state.ctx, p, state.sink, state.opts)
	return result{target: name, outcome: outcome, err: err}
}

func (state *runState) handleResult(res result) {
	state.active--

	if res.err != nil || res.outcome == domain.OutcomeFailed {
		state.s.setStatus(res.target, StatusFailed)
		state.counts.Failed++
		state.sink.TargetFinished(res.target, domain.OutcomeFailed)
		if res.err != nil {
			state.errs = errors.Join(state.errs, res.err)
		}
		state.failDownstream(res.target)
		if !state.opts.KeepGoing {
			state.stop = true
		}
		return
	}

	switch res.outcome {
	case domain.OutcomeSkipped:
		state.s.setStatus(res.target, StatusSkipped)
		state.counts.Skipped++
	default:
		state.s.setStatus(res.target, StatusSucceeded)
		state.counts.Succeeded++
	}
	state.sink.TargetFinished(res.target, res.outcome)

	for _, dep := range state.dependents[res.target] {
		if state.s.Status(dep) != StatusWaiting {
			continue
		}
		state.inDegree[dep]--
		if state.inDegree[dep] == 0 {
			state.markReady(dep)
		}
	}
}

// failDownstream marks every not-yet-started transitive dependent Failed
// without running it.
func (state *runState) failDownstream(name string) {
	for _, dep := range state.dependents[name] {
		status := state.s.Status(dep)
		if status != StatusWaiting && status != StatusReady {
			continue
		}
		state.s.setStatus(dep, StatusFailed)
		state.counts.Failed++
		state.removeReady(dep)
		state.sink.TargetLine(dep, ports.StageError, "dependency failed: "+name)
		state.sink.TargetFinished(dep, domain.OutcomeFailed)
		state.failDownstream(dep)
	}
}

func (state *runState) removeReady(name string) {
	for i, r := range state.ready {
		if r == name {
			state.ready = append(state.ready[:i], state.ready[i+1:]...)
			return
		}
	}
}

// buildTarget compiles the target's sources sequentially, then links or
// archives. It returns Skipped when every decision said up to date.
func (s *Scheduler) buildTarget(ctx context.Context, p plan.TargetPlan, sink ports.EventSink, opts Options) (domain.Outcome, error) {
	name := p.Target.Name
	sink.TargetLine(name, ports.StageDetail,
		fmt.Sprintf("=== Building target '%s' (%s) ===", name, p.Target.Kind))

	ran := 0
	for _, step := range p.Compiles {
		if ctx.Err() != nil {
			return domain.OutcomeFailed, zerr.With(zerr.Wrap(ctx.Err(), "run cancelled"), "target", name)
		}
		if !s.cache.NeedCompile(step.Source, step.Object, step.Digest) {
			sink.TargetLine(name, ports.StageSkip, filepath.Base(step.Source)+" (up-to-date)")
			continue
		}
		sink.TargetLine(name, ports.StageCompile, filepath.Base(step.Source))
		if opts.Verbose {
			sink.TargetLine(name, ports.StageDetail, strings.Join(step.Argv, " "))
		}
		if err := s.runStep(ctx, name, step.Argv, sink); err != nil {
			sink.TargetLine(name, ports.StageError, "command failed: "+strings.Join(step.Argv, " "))
			return domain.OutcomeFailed, zerr.With(zerr.With(
				zerr.Wrap(err, "compile failed"), "target", name), "source", step.Source)
		}
		ran++
	}

	if p.Link == nil {
		sink.TargetLine(name, ports.StageSkip, "no sources, nothing to build")
		return domain.OutcomeSkipped, nil
	}

	link := p.Link
	// A fresh object can share its mtime second with the old artifact, so a
	// compile in this run always forces the link.
	if ran == 0 && !s.cache.NeedLink(link.Artifact, link.Objects, link.DepArtifacts, link.Digest) {
		sink.TargetLine(name, ports.StageSkip, fmt.Sprintf("'%s' (up-to-date)", name))
		return domain.OutcomeSkipped, nil
	}

	if ctx.Err() != nil {
		return domain.OutcomeFailed, zerr.With(zerr.Wrap(ctx.Err(), "run cancelled"), "target", name)
	}

	stage := ports.StageLink
	if p.Target.Kind == domain.StaticLibrary {
		stage = ports.StageArchive
	}
	sink.TargetLine(name, stage, p.Target.Kind.ArtifactName(name))
	if opts.Verbose {
		sink.TargetLine(name, ports.StageDetail, strings.Join(link.Argv, " "))
	}
	if err := s.runStep(ctx, name, link.Argv, sink); err != nil {
		sink.TargetLine(name, ports.StageError, "command failed: "+strings.Join(link.Argv, " "))
		return domain.OutcomeFailed, zerr.With(zerr.Wrap(err, "link failed"), "target", name)
	}

	sink.TargetLine(name, ports.StageOk, fmt.Sprintf("'%s' -> %s", name, link.Artifact))
	return domain.OutcomeSucceeded, nil
}

// runStep spawns one child process and forwards its output to the sink,
// stdout as Detail lines and stderr as Error lines.
func (s *Scheduler) runStep(ctx context.Context, target string, argv []string, sink ports.EventSink) error {
	return s.runner.Run(ctx, argv, func(stderr bool, line string) {
		if stderr {
			sink.TargetLine(target, ports.StageError, line)
		} else {
			sink.TargetLine(target, ports.StageDetail, line)
		}
	})
}
