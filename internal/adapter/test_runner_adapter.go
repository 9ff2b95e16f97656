package adapter

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os/exec"

	m "forgemut.dev/pkg/forgemut/internal/model"
)

// DefaultRunnerBinary is the test runner invoked for every mutant.
const DefaultRunnerBinary = "forge"

// TestRunnerAdapter abstracts test execution for mutation testing.
type TestRunnerAdapter interface {
	// RunTests runs the project's test suite once in workDir.
	//
	// A runner that starts and exits non-zero is not an error: its exit code is
	// reported in the result. The error is reserved for a runner that could not
	// be started or was interrupted.
	RunTests(ctx context.Context, workDir string, opts m.RunnerOptions) (m.RunResult, error)
}

// LocalTestRunnerAdapter runs `forge test` through os/exec.
type LocalTestRunnerAdapter struct {
	binary string
}

// NewLocalTestRunnerAdapter constructs a LocalTestRunnerAdapter for the given
// binary. An empty binary falls back to DefaultRunnerBinary.
func NewLocalTestRunnerAdapter(binary string) *LocalTestRunnerAdapter {
	if binary == "" {
		binary = DefaultRunnerBinary
	}

	return &LocalTestRunnerAdapter{binary: binary}
}

// RunTests runs the test suite and captures stdout and stderr.
func (a *LocalTestRunnerAdapter) RunTests(ctx context.Context, workDir string, opts m.RunnerOptions) (m.RunResult, error) {
	args := RunnerArgs(opts)

	cmd := exec.CommandContext(ctx, a.binary, args...)
	cmd.Dir = workDir

	var stdout, stderr bytes.Buffer

	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	slog.Debug("Running test runner", "binary", a.binary, "args", args, "dir", workDir)

	err := cmd.Run()
	result := m.RunResult{Output: stdout.String() + stderr.String()}

	if err == nil {
		return result, nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return result, ctxErr
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.Exited() {
		result.ExitCode = exitErr.ExitCode()
		return result, nil
	}

	return result, err
}

// RunnerArgs builds the runner arguments. Patterns are passed as separate
// argv entries, so no shell quoting is involved.
func RunnerArgs(opts m.RunnerOptions) []string {
	args := []string{"test"}

	if opts.MatchContract != "" {
		args = append(args, "--match-contract", opts.MatchContract)
	}

	if opts.MatchTest != "" {
		args = append(args, "--match-test", opts.MatchTest)
	}

	if opts.NoMatchContract != "" {
		args = append(args, "--no-match-contract", opts.NoMatchContract)
	}

	if opts.NoMatchTest != "" {
		args = append(args, "--no-match-test", opts.NoMatchTest)
	}

	return append(args, "--fail-fast")
}
