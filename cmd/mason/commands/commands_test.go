package commands_test

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/mason/cmd/mason/commands"
	"go.trai.ch/mason/internal/app"
	"go.trai.ch/mason/internal/core/domain"
	"go.trai.ch/mason/internal/core/ports"
	"go.trai.ch/mason/internal/engine/scheduler"
)

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

type emptyLoader struct{}

func (emptyLoader) Load(string, bool) (*domain.Project, error) {
	return &domain.Project{Name: "empty"}, nil
}

type nopCleaner struct{}

func (nopCleaner) Clean([]domain.Target) ([]string, error) { return nil, nil }

type nopRunner struct{}

func (nopRunner) Run(context.Context, []string, ports.LineFunc) error { return nil }

type staleCache struct{}

func (staleCache) NeedCompile(string, string, uint64) bool { return true }

func (staleCache) NeedLink(string, []string, []string, uint64) bool { return true }

func newCLI() *commands.CLI {
	sched := scheduler.New(nopRunner{}, staleCache{}, nopLogger{})
	a := app.New(emptyLoader{}, nopCleaner{}, sched, nopLogger{}, io.Discard)
	return commands.New(a)
}

func TestVersionCommand(t *testing.T) {
	cli := newCLI()
	cli.SetArgs([]string{"version"})
	require.NoError(t, cli.Execute(context.Background()))
}

func TestRootRunsBuild(t *testing.T) {
	cli := newCLI()
	cli.SetArgs([]string{"--quiet"})
	// An empty project builds successfully with nothing to do.
	require.NoError(t, cli.Execute(context.Background()))
}

func TestBuildSubcommand(t *testing.T) {
	cli := newCLI()
	cli.SetArgs([]string{"build", "-q"})
	require.NoError(t, cli.Execute(context.Background()))
}

func TestCleanSubcommand(t *testing.T) {
	cli := newCLI()
	cli.SetArgs([]string{"clean"})
	require.NoError(t, cli.Execute(context.Background()))
}

func TestUnknownCommandFails(t *testing.T) {
	cli := newCLI()
	cli.SetArgs([]string{"nonsense"})
	assert.Error(t, cli.Execute(context.Background()))
}
