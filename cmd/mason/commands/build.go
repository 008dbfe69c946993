package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/mason/internal/app"
)

func addBuildFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringP("config", "c", "build.yaml", "Path to the root build descriptor")
	f.StringArrayP("target", "t", nil, "Build only this target and its dependencies (repeatable)")
	f.Bool("clean", false, "Remove the selection's output directories before building")
	f.Int64P("jobs", "j", 0, "Maximum number of targets built in parallel (default: logical CPUs)")
	f.BoolP("verbose", "v", false, "Echo every compiler and linker command line")
	f.BoolP("quiet", "q", false, "Print only errors and the final summary")
	f.Bool("no-ld-path", false, "Do not print the LD_LIBRARY_PATH hint")
	f.BoolP("ignore-errors", "i", false, "Keep building unaffected targets after a failure")
	f.Bool("warn-duplicate-targets", false, "Warn when an included file redefines a target")
	f.Bool("stream", false, "Emit the framed line protocol for programmatic consumers")
	f.Bool("progress", false, "Record the run on a progrock tape")
}

func (c *CLI) newBuildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build the configured targets",
		Args:  cobra.NoArgs,
		RunE:  c.runBuild,
	}
	addBuildFlags(cmd)
	return cmd
}

func (c *CLI) runBuild(cmd *cobra.Command, _ []string) error {
	return c.app.Build(cmd.Context(), buildOptions(cmd))
}

func buildOptions(cmd *cobra.Command) app.Options {
	f := cmd.Flags()
	config, _ := f.GetString("config")
	targets, _ := f.GetStringArray("target")
	clean, _ := f.GetBool("clean")
	jobs, _ := f.GetInt64("jobs")
	verbose, _ := f.GetBool("verbose")
	quiet, _ := f.GetBool("quiet")
	noLDPath, _ := f.GetBool("no-ld-path")
	keepGoing, _ := f.GetBool("ignore-errors")
	warnDup, _ := f.GetBool("warn-duplicate-targets")
	stream, _ := f.GetBool("stream")
	progress, _ := f.GetBool("progress")

	return app.Options{
		ConfigPath:           config,
		Targets:              targets,
		Clean:                clean,
		Jobs:                 jobs,
		Verbose:              verbose,
		Quiet:                quiet,
		NoLDPath:             noLDPath,
		KeepGoing:            keepGoing,
		WarnDuplicateTargets: warnDup,
		Stream:               stream,
		Progress:             progress,
	}
}
