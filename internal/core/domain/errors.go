package domain

import "go.trai.ch/zerr"

var (
	// ErrConfigLoad is returned when a descriptor file cannot be read.
	ErrConfigLoad = zerr.New("config load failed")

	// ErrConfigParse is returned when a descriptor file is malformed.
	ErrConfigParse = zerr.New("config parse failed")

	// ErrUnknownDependency is returned when a target's deps reference a name
	// that does not exist in the unified project.
	ErrUnknownDependency = zerr.New("unknown dependency")

	// ErrCycle is returned when the target graph contains a dependency cycle.
	ErrCycle = zerr.New("dependency cycle")

	// ErrUnknownTarget is returned when a requested target name is not found.
	ErrUnknownTarget = zerr.New("unknown target")

	// ErrBuildFailed is returned when at least one target failed to build.
	// The event sink has already reported the failing commands.
	ErrBuildFailed = zerr.New("build failed")
)
