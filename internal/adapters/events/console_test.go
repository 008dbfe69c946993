package events_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/mason/internal/adapters/events"
	"go.trai.ch/mason/internal/core/domain"
	"go.trai.ch/mason/internal/core/ports"
)

func TestConsoleSink_FullRun(t *testing.T) {
	var buf bytes.Buffer
	sink := events.NewConsoleSink(&buf, false)

	sink.RunStart(2)
	sink.TargetLine("app", ports.StageCompile, "main.cpp")
	sink.TargetLine("app", ports.StageDetail, "=== Building target 'app' (executable) ===")
	sink.TargetFinished("util", domain.OutcomeSkipped)
	sink.TargetFinished("app", domain.OutcomeSucceeded)
	sink.RunFinished(true, ports.Counts{Succeeded: 1, Skipped: 1})

	out := buf.String()
	assert.Contains(t, out, "Building 2 target(s)\n")
	assert.Contains(t, out, "[app] [COMPILE] main.cpp\n")
	// Detail lines print without a stage tag.
	assert.Contains(t, out, "[app] === Building target 'app' (executable) ===\n")
	assert.Contains(t, out, "[1/2  50%] util: skipped\n")
	assert.Contains(t, out, "[2/2 100%] app: succeeded\n")
	assert.Contains(t, out, "Build succeeded: 1 built, 1 skipped\n")
}

func TestConsoleSink_QuietOnlyErrorsAndSummary(t *testing.T) {
	var buf bytes.Buffer
	sink := events.NewConsoleSink(&buf, true)

	sink.RunStart(1)
	sink.TargetLine("app", ports.StageCompile, "main.cpp")
	sink.TargetLine("app", ports.StageError, "main.cpp:3: error")
	sink.TargetFinished("app", domain.OutcomeFailed)
	sink.RunFinished(false, ports.Counts{Failed: 1})

	out := buf.String()
	assert.NotContains(t, out, "COMPILE")
	assert.NotContains(t, out, "Building 1 target(s)")
	assert.Contains(t, out, "[app] [ERROR] main.cpp:3: error\n")
	assert.Contains(t, out, "Build failed: 1 failed, 0 built, 0 skipped\n")
}
