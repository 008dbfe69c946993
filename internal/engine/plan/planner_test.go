package plan_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/mason/internal/core/domain"
	"go.trai.ch/mason/internal/engine/plan"
)

func intPtr(v int) *int { return &v }

func buildPlans(t *testing.T, targets []domain.Target) []plan.TargetPlan {
	t.Helper()
	g, err := domain.BuildGraph(&domain.Project{Targets: targets})
	require.NoError(t, err)
	selection, err := g.Filter(nil)
	require.NoError(t, err)
	plans, err := plan.Build(g, selection)
	require.NoError(t, err)
	return plans
}

func planFor(t *testing.T, plans []plan.TargetPlan, name string) plan.TargetPlan {
	t.Helper()
	for _, p := range plans {
		if p.Target.Name == name {
			return p
		}
	}
	t.Fatalf("no plan for target %q", name)
	return plan.TargetPlan{}
}

func TestBuild_CompileArgv(t *testing.T) {
	out := filepath.Join(t.TempDir(), "build")
	targets := []domain.Target{{
		Name:         "app",
		Kind:         domain.Executable,
		Tool:         domain.ToolGXX,
		Sources:      []string{"src/main.cpp"},
		IncludeDirs:  []string{"include"},
		CompileFlags: []string{"-Wall"},
		LegacyFlags:  []string{"-O2"},
		Standard:     intPtr(17),
		OutputDir:    out,
	}}

	plans := buildPlans(t, targets)
	p := planFor(t, plans, "app")
	require.Len(t, p.Compiles, 1)

	obj := filepath.Join(out, "obj", "app", "main.o")
	assert.Equal(t, []string{
		"g++", "-c", "src/main.cpp", "-o", obj,
		"-std=c++17", "-Iinclude", "-Wall", "-O2",
	}, p.Compiles[0].Argv)
	assert.Equal(t, obj, p.Compiles[0].Object)
}

func TestBuild_DependencyIncludesOneHop(t *testing.T) {
	out := t.TempDir()
	targets := []domain.Target{
		{
			Name: "app", Kind: domain.Executable, Tool: domain.ToolGXX,
			Sources: []string{"main.cpp"}, OutputDir: out,
			Deps: []string{"mid"},
		},
		{
			Name: "mid", Kind: domain.StaticLibrary, Tool: domain.ToolGXX,
			Sources: []string{"mid.cpp"}, IncludeDirs: []string{"mid/include"},
			OutputDir: out, Deps: []string{"deep"},
		},
		{
			Name: "deep", Kind: domain.StaticLibrary, Tool: domain.ToolGXX,
			Sources: []string{"deep.cpp"}, IncludeDirs: []string{"deep/include"},
			OutputDir: out,
		},
	}

	plans := buildPlans(t, targets)
	argv := planFor(t, plans, "app").Compiles[0].Argv

	// Direct dependency includes propagate; transitive ones do not.
	assert.Contains(t, argv, "-Imid/include")
	assert.NotContains(t, argv, "-Ideep/include")
}

func TestBuild_PICPropagation(t *testing.T) {
	out := t.TempDir()
	targets := []domain.Target{
		{
			Name: "shared", Kind: domain.SharedLibrary, Tool: domain.ToolGXX,
			Sources: []string{"shared.cpp"}, OutputDir: out, Deps: []string{"inner"},
		},
		{
			Name: "inner", Kind: domain.StaticLibrary, Tool: domain.ToolGXX,
			Sources: []string{"inner.cpp"}, OutputDir: out,
		},
		{
			Name: "plain", Kind: domain.StaticLibrary, Tool: domain.ToolGXX,
			Sources: []string{"plain.cpp"}, OutputDir: out,
		},
	}

	plans := buildPlans(t, targets)
	assert.Contains(t, planFor(t, plans, "shared").Compiles[0].Argv, "-fPIC")
	assert.Contains(t, planFor(t, plans, "inner").Compiles[0].Argv, "-fPIC")
	assert.NotContains(t, planFor(t, plans, "plain").Compiles[0].Argv, "-fPIC")
}

func TestBuild_LinkArgvExecutable(t *testing.T) {
	out := t.TempDir()
	targets := []domain.Target{
		{
			Name: "app", Kind: domain.Executable, Tool: domain.ToolGXX,
			Sources: []string{"main.cpp"}, OutputDir: out,
			LibDirs: []string{"/opt/lib"}, Libs: []string{"m"},
			LinkFlags: []string{"-pthread"}, Deps: []string{"util"},
		},
		{
			Name: "util", Kind: domain.StaticLibrary, Tool: domain.ToolGXX,
			Sources: []string{"util.cpp"}, OutputDir: out,
		},
	}

	plans := buildPlans(t, targets)
	link := planFor(t, plans, "app").Link
	require.NotNil(t, link)

	obj := filepath.Join(out, "obj", "app", "main.o")
	assert.Equal(t, []string{
		"g++", "-o", filepath.Join(out, "app"),
		obj,
		filepath.Join(out, "libutil.a"),
		"-L/opt/lib", "-lm", "-pthread",
	}, link.Argv)
	assert.Equal(t, []string{filepath.Join(out, "libutil.a")}, link.DepArtifacts)
}

func TestBuild_SharedLinkEndsWithShared(t *testing.T) {
	out := t.TempDir()
	targets := []domain.Target{{
		Name: "math", Kind: domain.SharedLibrary, Tool: domain.ToolGXX,
		Sources: []string{"math.cpp"}, OutputDir: out,
	}}

	link := planFor(t, buildPlans(t, targets), "math").Link
	require.NotNil(t, link)
	assert.Equal(t, "-shared", link.Argv[len(link.Argv)-1])
	assert.Equal(t, filepath.Join(out, "libmath.so"), link.Artifact)
}

func TestBuild_ArchiveArgvTakesNoUserFlags(t *testing.T) {
	out := t.TempDir()
	targets := []domain.Target{{
		Name: "util", Kind: domain.StaticLibrary, Tool: domain.ToolGXX,
		Sources: []string{"a.cpp", "b.cpp"}, OutputDir: out,
		LinkFlags: []string{"-pthread"}, Libs: []string{"m"},
	}}

	link := planFor(t, buildPlans(t, targets), "util").Link
	require.NotNil(t, link)
	assert.Equal(t, []string{
		"ar", "rcs", filepath.Join(out, "libutil.a"),
		filepath.Join(out, "obj", "util", "a.o"),
		filepath.Join(out, "obj", "util", "b.o"),
	}, link.Argv)
}

func TestBuild_EmptyLibraryHasNoLink(t *testing.T) {
	out := t.TempDir()
	targets := []domain.Target{
		{Name: "header_only", Kind: domain.StaticLibrary, Tool: domain.ToolGXX, OutputDir: out},
		{Name: "app", Kind: domain.Executable, Tool: domain.ToolGXX, OutputDir: out},
	}

	plans := buildPlans(t, targets)
	assert.Nil(t, planFor(t, plans, "header_only").Link)
	// Executables always link, even without sources.
	assert.NotNil(t, planFor(t, plans, "app").Link)
}

func TestBuild_CreatesObjectDirectory(t *testing.T) {
	out := filepath.Join(t.TempDir(), "build")
	targets := []domain.Target{{
		Name: "app", Kind: domain.Executable, Tool: domain.ToolGXX,
		Sources: []string{"main.cpp"}, OutputDir: out,
	}}

	buildPlans(t, targets)
	info, err := os.Stat(filepath.Join(out, "obj", "app"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestBuild_DigestTracksArgv(t *testing.T) {
	out := t.TempDir()
	base := domain.Target{
		Name: "app", Kind: domain.Executable, Tool: domain.ToolGXX,
		Sources: []string{"main.cpp"}, OutputDir: out,
	}
	changed := base
	changed.CompileFlags = []string{"-Wall"}

	first := planFor(t, buildPlans(t, []domain.Target{base}), "app")
	second := planFor(t, buildPlans(t, []domain.Target{base}), "app")
	third := planFor(t, buildPlans(t, []domain.Target{changed}), "app")

	assert.Equal(t, first.Compiles[0].Digest, second.Compiles[0].Digest)
	assert.NotEqual(t, first.Compiles[0].Digest, third.Compiles[0].Digest)
}
