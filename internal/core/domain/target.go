package domain

import "path/filepath"

// Kind classifies the artifact a target produces.
type Kind string

const (
	// Executable produces a runnable binary.
	Executable Kind = "executable"
	// StaticLibrary produces an ar archive.
	StaticLibrary Kind = "static_lib"
	// SharedLibrary produces a shared object.
	SharedLibrary Kind = "shared_lib"
)

// IsLibrary reports whether the kind produces a linkable library artifact.
func (k Kind) IsLibrary() bool {
	return k == StaticLibrary || k == SharedLibrary
}

// ArtifactName returns the file name of the artifact for a target name.
func (k Kind) ArtifactName(target string) string {
	switch k {
	case StaticLibrary:
		return "lib" + target + ".a"
	case SharedLibrary:
		return "lib" + target + ".so"
	default:
		return target
	}
}

// Tool selects the compiler driver for a target.
type Tool string

const (
	// ToolGCC drives the C compiler.
	ToolGCC Tool = "gcc"
	// ToolGXX drives the C++ compiler.
	ToolGXX Tool = "g++"
	// ToolClang drives the clang toolchain.
	ToolClang Tool = "clang"
)

// Command returns the binary name invoked for this tool.
func (t Tool) Command() string {
	switch t {
	case ToolGCC:
		return "gcc"
	case ToolClang:
		return "clang++"
	default:
		return "g++"
	}
}

// Target is one build unit producing a single artifact. All path fields are
// absolute after loading, and the value is immutable once the project is
// constructed.
type Target struct {
	Name         string
	Kind         Kind
	Tool         Tool
	Sources      []string
	IncludeDirs  []string
	LibDirs      []string
	Libs         []string
	CompileFlags []string
	LinkFlags    []string
	LegacyFlags  []string
	Standard     *int
	OutputDir    string
	Deps         []string
}

// Artifact returns the absolute path of the target's final artifact.
func (t Target) Artifact() string {
	return filepath.Join(t.OutputDir, t.Kind.ArtifactName(t.Name))
}

// Project is the unified set of targets produced by loading a descriptor
// tree. Targets appear in declaration order of the depth-first traversal.
type Project struct {
	Name     string
	Version  string
	Standard *int
	Targets  []Target
}
