package domain

import (
	"context"
	"log/slog"
	"strings"

	"forgemut.dev/pkg/forgemut/internal/adapter"
	m "forgemut.dev/pkg/forgemut/internal/model"
)

// DefaultNoMatchMarker is printed by forge when its patterns select no test.
const DefaultNoMatchMarker = "No tests match the provided pattern"

// Orchestrator runs the test suite against the mutant currently injected in
// the project tree and classifies the result.
type Orchestrator interface {
	TestMutant(ctx context.Context, mutant m.Mutant, opts m.RunnerOptions) (m.MutantOutcome, string, error)
}

type orchestrator struct {
	testAdapter adapter.TestRunnerAdapter
	workDir     m.Path
	marker      string
}

// NewOrchestrator constructs an Orchestrator that runs tests in workDir. An
// empty marker falls back to DefaultNoMatchMarker.
func NewOrchestrator(testAdapter adapter.TestRunnerAdapter, workDir m.Path, marker string) Orchestrator {
	if marker == "" {
		marker = DefaultNoMatchMarker
	}

	return &orchestrator{
		testAdapter: testAdapter,
		workDir:     workDir,
		marker:      marker,
	}
}

func (to *orchestrator) TestMutant(ctx context.Context, mutant m.Mutant, opts m.RunnerOptions) (m.MutantOutcome, string, error) {
	if err := ctx.Err(); err != nil {
		return 0, "", err
	}

	result, err := to.testAdapter.RunTests(ctx, string(to.workDir), opts)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return 0, result.Output, ctxErr
		}

		slog.Error("Runner failed to execute", "id", mutant.ID, "error", err)

		return 0, result.Output, &ExecutionError{Mutant: mutant.ID, Output: result.Output, Err: err}
	}

	return to.classify(result), result.Output, nil
}

func (to *orchestrator) classify(result m.RunResult) m.MutantOutcome {
	if result.ExitCode != 0 {
		return m.Killed
	}

	if strings.Contains(result.Output, to.marker) {
		return m.SkippedNoRunnerMatch
	}

	return m.Survived
}
