// Package config provides the descriptor tree loader for mason.
package config

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.trai.ch/mason/internal/core/domain"
	"go.trai.ch/mason/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// rootFileName is the descriptor name probed during workspace root detection.
const rootFileName = "build.yaml"

// Loader implements ports.ConfigLoader on a YAML descriptor tree.
type Loader struct {
	log ports.Logger
}

// NewLoader creates a new Loader.
func NewLoader(log ports.Logger) *Loader {
	return &Loader{log: log}
}

// Load reads the descriptor tree rooted at path and returns the unified
// project. If an ancestor build.yaml transitively includes the requested
// file, that ancestor is promoted to the actual root so the full target
// graph is always available.
func (l *Loader) Load(path string, warnDuplicates bool) (*domain.Project, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "resolve descriptor path"), "path", path)
	}

	if root := l.findWorkspaceRoot(abs); root != "" && root != abs {
		l.log.Info("using workspace root", "root", root, "requested", abs)
		abs = root
	}

	st := &loadState{
		loader:         l,
		warnDuplicates: warnDuplicates,
		seen:           make(map[string]string),
		visited:        make(map[string]bool),
	}
	project := &domain.Project{}
	if err := st.loadFile(abs, true, project); err != nil {
		return nil, err
	}

	if project.Standard != nil {
		for i := range project.Targets {
			project.Targets[i].Standard = project.Standard
		}
	}
	return project, nil
}

// findWorkspaceRoot walks parent directories of the requested descriptor and
// returns the first ancestor build.yaml whose include closure contains it.
// Probing is best-effort; unreadable or malformed candidates are skipped.
func (l *Loader) findWorkspaceRoot(abs string) string {
	dir := filepath.Dir(abs)
	for {
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent

		candidate := filepath.Join(dir, rootFileName)
		if _, err := os.Stat(candidate); err != nil {
			continue
		}
		closure := make(map[string]bool)
		collectIncludes(candidate, closure)
		if closure[abs] {
			return candidate
		}
	}
}

// collectIncludes gathers the transitive include closure of a descriptor
// into out, keyed by absolute path. Errors are ignored.
func collectIncludes(path string, out map[string]bool) {
	if out[path] {
		return
	}
	out[path] = true

	data, err := os.ReadFile(path) //nolint:gosec // path is provided by user
	if err != nil {
		return
	}
	var file descriptorFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return
	}
	dir := filepath.Dir(path)
	for _, inc := range file.includes() {
		next, err := filepath.Abs(filepath.Join(dir, inc))
		if err != nil {
			continue
		}
		collectIncludes(next, out)
	}
}

type loadState struct {
	loader         *Loader
	warnDuplicates bool
	seen           map[string]string // target name -> descriptor that declared it
	visited        map[string]bool   // descriptor path -> already loaded
}

// loadFile reads one descriptor, appends its targets, and recurses into its
// includes depth-first. A file's own targets are registered before its
// includes are walked, so ancestors win over descendants on duplicates.
func (st *loadState) loadFile(path string, isRoot bool, project *domain.Project) error {
	if st.visited[path] {
		st.loader.log.Debug("descriptor already loaded", "path", path)
		return nil
	}
	st.visited[path] = true

	data, err := os.ReadFile(path) //nolint:gosec // path is provided by user
	if err != nil {
		return zerr.With(zerr.Wrap(domain.ErrConfigLoad, err.Error()), "path", path)
	}
	var file descriptorFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return zerr.With(zerr.Wrap(domain.ErrConfigParse, err.Error()), "path", path)
	}

	if isRoot && file.Project != nil {
		project.Name = file.Project.Name
		project.Version = file.Project.Version
		project.Standard = file.Project.CxxStandard
	}
	if !isRoot && file.Project != nil {
		st.loader.log.Debug("ignoring project block in included descriptor", "path", path)
	}

	dir := filepath.Dir(path)
	for _, dto := range file.Targets {
		if prev, dup := st.seen[dto.Name]; dup {
			if st.warnDuplicates {
				st.loader.log.Warn("duplicate target discarded",
					"target", dto.Name, "kept", prev, "discarded", path)
			}
			continue
		}
		st.seen[dto.Name] = path

		target, err := st.resolveTarget(dto, dir)
		if err != nil {
			return err
		}
		project.Targets = append(project.Targets, target)
	}

	for _, inc := range file.includes() {
		next, err := filepath.Abs(filepath.Join(dir, inc))
		if err != nil {
			return zerr.With(zerr.Wrap(domain.ErrConfigLoad, err.Error()), "path", inc)
		}
		if err := st.loadFile(next, false, project); err != nil {
			return err
		}
	}
	return nil
}

// resolveTarget converts a DTO into an immutable domain target. Path fields
// are resolved against the declaring descriptor's directory and source globs
// are expanded.
func (st *loadState) resolveTarget(dto targetDTO, dir string) (domain.Target, error) {
	kind, err := parseKind(dto.Type)
	if err != nil {
		return domain.Target{}, zerr.With(err, "target", dto.Name)
	}
	tool, err := parseTool(dto.Compiler)
	if err != nil {
		return domain.Target{}, zerr.With(err, "target", dto.Name)
	}

	outputDir := dto.OutputDir
	if outputDir == "" {
		outputDir = "build"
	}

	sources, err := st.expandSources(dto.Name, dto.Sources, dir)
	if err != nil {
		return domain.Target{}, err
	}

	return domain.Target{
		Name:         dto.Name,
		Kind:         kind,
		Tool:         tool,
		Sources:      sources,
		IncludeDirs:  resolveAll(dir, dto.IncludeDirs),
		LibDirs:      resolveAll(dir, dto.LibDirs),
		Libs:         dto.Libs,
		CompileFlags: dto.CompilerFlags,
		LinkFlags:    dto.LinkerFlags,
		LegacyFlags:  dto.Flags,
		Standard:     dto.CxxStandard,
		OutputDir:    resolve(dir, outputDir),
		Deps:         dto.Deps,
	}, nil
}

// expandSources resolves each source entry against dir, expanding glob
// patterns in declaration order. Each expansion is sorted; a pattern with no
// matches is legal and only logged.
func (st *loadState) expandSources(target string, entries []string, dir string) ([]string, error) {
	var out []string
	for _, entry := range entries {
		path := resolve(dir, entry)
		if !strings.ContainsAny(entry, "*?[") {
			out = append(out, path)
			continue
		}
		matches, err := filepath.Glob(path)
		if err != nil {
			return nil, zerr.With(zerr.With(zerr.Wrap(domain.ErrConfigParse, "bad source pattern"),
				"target", target), "pattern", entry)
		}
		if len(matches) == 0 {
			st.loader.log.Warn("source pattern matched nothing", "target", target, "pattern", entry)
			continue
		}
		sort.Strings(matches)
		out = append(out, matches...)
	}
	return out, nil
}

func parseKind(s string) (domain.Kind, error) {
	switch s {
	case "", string(domain.Executable):
		return domain.Executable, nil
	case string(domain.StaticLibrary):
		return domain.StaticLibrary, nil
	case string(domain.SharedLibrary):
		return domain.SharedLibrary, nil
	default:
		return "", zerr.With(zerr.Wrap(domain.ErrConfigParse, "unknown target type"), "type", s)
	}
}

func parseTool(s string) (domain.Tool, error) {
	switch s {
	case "", string(domain.ToolGXX):
		return domain.ToolGXX, nil
	case string(domain.ToolGCC):
		return domain.ToolGCC, nil
	case string(domain.ToolClang):
		return domain.ToolClang, nil
	default:
		return "", zerr.With(zerr.Wrap(domain.ErrConfigParse, "unknown compiler"), "compiler", s)
	}
}

func resolve(dir, path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(dir, path)
}

func resolveAll(dir string, paths []string) []string {
	if len(paths) == 0 {
		return nil
	}
	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = resolve(dir, p)
	}
	return out
}
