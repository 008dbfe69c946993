package domain_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/mason/internal/core/domain"
)

func TestKind_ArtifactName(t *testing.T) {
	assert.Equal(t, "app", domain.Executable.ArtifactName("app"))
	assert.Equal(t, "libmath.a", domain.StaticLibrary.ArtifactName("math"))
	assert.Equal(t, "libmath.so", domain.SharedLibrary.ArtifactName("math"))
}

func TestKind_IsLibrary(t *testing.T) {
	assert.False(t, domain.Executable.IsLibrary())
	assert.True(t, domain.StaticLibrary.IsLibrary())
	assert.True(t, domain.SharedLibrary.IsLibrary())
}

func TestTool_Command(t *testing.T) {
	assert.Equal(t, "gcc", domain.ToolGCC.Command())
	assert.Equal(t, "g++", domain.ToolGXX.Command())
	// clang targets use the C++ driver.
	assert.Equal(t, "clang++", domain.ToolClang.Command())
}

func TestTarget_Artifact(t *testing.T) {
	target := domain.Target{
		Name:      "math",
		Kind:      domain.SharedLibrary,
		OutputDir: filepath.Join("work", "build"),
	}
	assert.Equal(t, filepath.Join("work", "build", "libmath.so"), target.Artifact())
}
