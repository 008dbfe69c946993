// Package plan synthesizes compile and link steps for selected targets.
package plan

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/mason/internal/core/domain"
	"go.trai.ch/zerr"
)

// archiver is the command used to produce static library artifacts.
const archiver = "ar"

// CompileStep is one compiler invocation producing a single object file.
// Staleness of the step is governed by the source file alone.
type CompileStep struct {
	Source string
	Object string
	Argv   []string
	Digest uint64
}

// LinkStep is the final link or archive invocation of a target.
type LinkStep struct {
	Artifact     string
	Argv         []string
	Objects      []string
	DepArtifacts []string
	Digest       uint64
}

// TargetPlan holds every step of one target. Link is nil for a library with
// no sources, which is reported as up to date without invoking the
// toolchain.
type TargetPlan struct {
	Target   domain.Target
	Compiles []CompileStep
	Link     *LinkStep
}

// Build produces a plan per selected target, in the order given. It creates
// each target's output directory and object subdirectory before any step
// runs. Position-independent code is decided by a single reverse-edge pass
// over the whole graph, so a static library needed by a shared library gets
// -fPIC even when the shared library is outside the selection.
func Build(g *domain.Graph, selection []domain.Target) ([]TargetPlan, error) {
	pic := picTargets(g)

	plans := make([]TargetPlan, 0, len(selection))
	for _, t := range selection {
		objDir := filepath.Join(t.OutputDir, "obj", t.Name)
		if err := os.MkdirAll(objDir, 0o755); err != nil {
			return nil, zerr.With(zerr.With(zerr.Wrap(err, "create output directory"),
				"target", t.Name), "dir", objDir)
		}

		p := TargetPlan{Target: t}
		for _, src := range t.Sources {
			p.Compiles = append(p.Compiles, compileStep(g, t, src, objDir, pic[t.Name]))
		}
		if link := linkStep(g, t, p.Compiles); link != nil {
			p.Link = link
		}
		plans = append(plans, p)
	}
	return plans, nil
}

// picTargets returns the names of targets that must compile with -fPIC:
// every shared library and every static library some shared library
// directly depends on.
func picTargets(g *domain.Graph) map[string]bool {
	pic := make(map[string]bool)
	for _, t := range g.Order() {
		if t.Kind != domain.SharedLibrary {
			continue
		}
		pic[t.Name] = true
		for _, dep := range g.DirectDeps(t.Name) {
			if dep.Kind == domain.StaticLibrary {
				pic[dep.Name] = true
			}
		}
	}
	return pic
}

// compileStep builds the argv for one source file. Include directories cover
// the target's own and those of each direct dependency, one hop only.
func compileStep(g *domain.Graph, t domain.Target, src, objDir string, pic bool) CompileStep {
	stem := strings.TrimSuffix(filepath.Base(src), filepath.Ext(src))
	obj := filepath.Join(objDir, stem+".o")

	argv := []string{t.Tool.Command(), "-c", src, "-o", obj}
	if t.Standard != nil {
		argv = append(argv, fmt.Sprintf("-std=c++%d", *t.Standard))
	}
	if pic {
		argv = append(argv, "-fPIC")
	}
	for _, dir := range t.IncludeDirs {
		argv = append(argv, "-I"+dir)
	}
	for _, dep := range g.DirectDeps(t.Name) {
		for _, dir := range dep.IncludeDirs {
			argv = append(argv, "-I"+dir)
		}
	}
	argv = append(argv, t.CompileFlags...)
	argv = append(argv, t.LegacyFlags...)

	return CompileStep{Source: src, Object: obj, Argv: argv, Digest: digest(argv)}
}

// linkStep builds the link or archive argv for a target. Dependency
// libraries are passed as artifact paths ahead of -L and -l entries. A
// library with no sources yields no step.
func linkStep(g *domain.Graph, t domain.Target, compiles []CompileStep) *LinkStep {
	if len(compiles) == 0 && t.Kind.IsLibrary() {
		return nil
	}

	objects := make([]string, len(compiles))
	for i, c := range compiles {
		objects[i] = c.Object
	}

	var depArtifacts []string
	for _, dep := range g.DirectDeps(t.Name) {
		if dep.Kind.IsLibrary() {
			depArtifacts = append(depArtifacts, dep.Artifact())
		}
	}

	artifact := t.Artifact()

	var argv []string
	if t.Kind == domain.StaticLibrary {
		// The archiver receives no user flags and no external libs.
		argv = append([]string{archiver, "rcs", artifact}, objects...)
	} else {
		argv = []string{t.Tool.Command(), "-o", artifact}
		argv = append(argv, objects...)
		argv = append(argv, depArtifacts...)
		for _, dir := range t.LibDirs {
			argv = append(argv, "-L"+dir)
		}
		for _, lib := range t.Libs {
			argv = append(argv, "-l"+lib)
		}
		argv = append(argv, t.LinkFlags...)
		if t.Kind == domain.SharedLibrary {
			argv = append(argv, "-shared")
		}
	}

	return &LinkStep{
		Artifact:     artifact,
		Argv:         argv,
		Objects:      objects,
		DepArtifacts: depArtifacts,
		Digest:       digest(argv),
	}
}

// digest hashes an argument vector for command-line equivalence checks.
func digest(argv []string) uint64 {
	h := xxhash.New()
	for _, arg := range argv {
		_, _ = h.WriteString(arg)
		_, _ = h.Write([]byte{0})
	}
	return h.Sum64()
}
