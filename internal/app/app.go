// Package app implements the application layer for mason: it turns one CLI
// invocation into a load, plan, and scheduled run.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.trai.ch/mason/internal/adapters/events" //nolint:depguard // Wired in app layer
	"go.trai.ch/mason/internal/core/domain"
	"go.trai.ch/mason/internal/core/ports"
	"go.trai.ch/mason/internal/engine/plan"
	"go.trai.ch/mason/internal/engine/scheduler"
	"go.trai.ch/zerr"
)

// Options carry the per-invocation settings from the CLI.
type Options struct {
	// ConfigPath is the root build descriptor.
	ConfigPath string
	// Targets restricts the build to the named targets and their transitive
	// dependencies. Empty means all targets.
	Targets []string
	// Clean removes the selection's output directories before building.
	Clean bool
	// Jobs bounds parallel targets; zero means the number of logical CPUs.
	Jobs int64
	// Verbose echoes every compiler and linker command line.
	Verbose bool
	// Quiet prints only errors and the final summary. Quiet wins over
	// Verbose when both are set.
	Quiet bool
	// NoLDPath suppresses the LD_LIBRARY_PATH hint.
	NoLDPath bool
	// KeepGoing keeps building unaffected targets after a failure.
	KeepGoing bool
	// WarnDuplicateTargets logs a warning when an included file redefines a
	// target name.
	WarnDuplicateTargets bool
	// Stream emits the framed line protocol instead of console output.
	Stream bool
	// Progress additionally records the run on a progrock tape.
	Progress bool
}

// App represents the main application logic.
type App struct {
	loader  ports.ConfigLoader
	cleaner ports.Cleaner
	sched   *scheduler.Scheduler
	log     ports.Logger
	out     io.Writer
}

// New creates a new App instance writing human output to out.
func New(loader ports.ConfigLoader, cleaner ports.Cleaner, sched *scheduler.Scheduler, log ports.Logger, out io.Writer) *App {
	return &App{
		loader:  loader,
		cleaner: cleaner,
		sched:   sched,
		log:     log,
		out:     out,
	}
}

// Build runs one full build: load the configuration, assemble and filter the
// target graph, plan the steps, and execute them. It returns
// domain.ErrBuildFailed when any target failed; the sink has already
// reported the details by then.
func (a *App) Build(ctx context.Context, opts Options) error {
	if opts.Quiet {
		opts.Verbose = false
	}

	project, err := a.loader.Load(opts.ConfigPath, opts.WarnDuplicateTargets)
	if err != nil {
		return err
	}

	graph, err := domain.BuildGraph(project)
	if err != nil {
		return err
	}

	selection, err := graph.Filter(opts.Targets)
	if err != nil {
		return err
	}

	if opts.Clean {
		removed, err := a.cleaner.Clean(selection)
		if err != nil {
			return zerr.Wrap(err, "clean before build")
		}
		if opts.Verbose {
			for _, dir := range removed {
				fmt.Fprintf(a.out, "Removed %s\n", dir)
			}
		}
	}

	plans, err := plan.Build(graph, selection)
	if err != nil {
		return err
	}

	counts, err := a.sched.Run(ctx, plans, a.sink(opts), scheduler.Options{
		Jobs:      opts.Jobs,
		KeepGoing: opts.KeepGoing,
		Verbose:   opts.Verbose,
	})
	if err != nil {
		return errors.Join(domain.ErrBuildFailed, err)
	}
	if counts.Failed > 0 {
		return domain.ErrBuildFailed
	}

	if !opts.NoLDPath && !opts.Quiet {
		a.printLDHint(selection)
	}
	return nil
}

// Clean loads the configuration and removes every target's output
// directory. It is the standalone clean subcommand; Build handles --clean
// itself.
func (a *App) Clean(opts Options) error {
	project, err := a.loader.Load(opts.ConfigPath, false)
	if err != nil {
		return err
	}

	removed, err := a.cleaner.Clean(project.Targets)
	if err != nil {
		return err
	}
	if opts.Verbose {
		for _, dir := range removed {
			fmt.Fprintf(a.out, "Removed %s\n", dir)
		}
	}
	return nil
}

// sink composes the event sinks for one run from the options.
func (a *App) sink(opts Options) ports.EventSink {
	var sinks events.Multi
	if opts.Stream {
		sinks = append(sinks, events.NewStreamSink(a.out))
	} else {
		sinks = append(sinks, events.NewConsoleSink(a.out, opts.Quiet))
	}
	if opts.Progress {
		sinks = append(sinks, events.NewProgrockSink())
	}
	if len(sinks) == 1 {
		return sinks[0]
	}
	return sinks
}

// printLDHint tells the user how to run freshly linked executables against
// the shared libraries the selection produced.
func (a *App) printLDHint(selection []domain.Target) {
	var dirs []string
	seen := make(map[string]bool)
	for _, t := range selection {
		if t.Kind != domain.SharedLibrary || seen[t.OutputDir] {
			continue
		}
		seen[t.OutputDir] = true
		dirs = append(dirs, t.OutputDir)
	}
	if len(dirs) == 0 {
		return
	}
	fmt.Fprintln(a.out, "\nShared libraries were built. To run executables against them:")
	fmt.Fprintf(a.out, "  export LD_LIBRARY_PATH=%s:$LD_LIBRARY_PATH\n", strings.Join(dirs, ":"))
}
