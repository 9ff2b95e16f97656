package cmd

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainmocks "forgemut.dev/pkg/forgemut/internal/domain/mocks"
)

func isolateLogger(t *testing.T) {
	t.Helper()

	t.Setenv("FORGEMUT_LOG_FILENAME", filepath.Join(t.TempDir(), "diag.log"))

	original := slog.Default()
	t.Cleanup(func() { slog.SetDefault(original) })
}

func TestNewRootCmd(t *testing.T) {
	cmd := newRootCmd()
	assert.Equal(t, "forgemut", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	assert.NotEmpty(t, cmd.Long)
	assert.Equal(t, rootLongDescription, cmd.Long)

	for _, name := range []string{sourceRootFlagName, corpusDirFlagName, skipLogFlagName, logsDirFlagName} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(name), name)
	}
}

func TestRootCmd_HelpOutput(t *testing.T) {
	cmd := newRootCmd()
	output := &bytes.Buffer{}
	cmd.SetOut(output)
	cmd.SetErr(&bytes.Buffer{})

	cmd.SetArgs([]string{})
	err := cmd.Execute()

	require.NoError(t, err)
	assert.Contains(t, output.String(), "Usage:")
	assert.Contains(t, output.String(), "gambit_out/mutants/<id>")
}

func TestInit(t *testing.T) {
	// Test that init() created all the shared instances
	assert.NotNil(t, fsAdapter)
	assert.NotNil(t, logStore)
	assert.NotNil(t, reportStore)
	assert.NotNil(t, worktreeAdapter)
}

func TestCurrentWorkflow(t *testing.T) {
	originalWorkflow := workflow
	defer func() { workflow = originalWorkflow }()

	workflow = nil
	assert.NotNil(t, currentWorkflow(newRootCmd()))

	mockWorkflow := domainmocks.NewMockWorkflow(t)
	workflow = mockWorkflow
	assert.Same(t, mockWorkflow, currentWorkflow(newRootCmd()))
}

func TestExecute(t *testing.T) {
	isolateLogger(t)

	// Save original rootCmd
	originalRootCmd := rootCmd

	// Create a mock command that succeeds
	mockCmd := &cobra.Command{
		Use: "test",
		RunE: func(cmd *cobra.Command, args []string) error {
			return nil
		},
	}
	mockCmd.SetOut(&bytes.Buffer{})
	mockCmd.SetErr(&bytes.Buffer{})

	rootCmd = mockCmd

	// Execute should not panic or exit
	Execute()

	// Restore
	rootCmd = originalRootCmd
}

func TestExecute_WithError(t *testing.T) {
	// Save original rootCmd
	originalRootCmd := rootCmd
	defer func() {
		rootCmd = originalRootCmd
	}()

	// Create a mock command that fails
	mockCmd := &cobra.Command{
		Use: "test",
		RunE: func(cmd *cobra.Command, args []string) error {
			return fmt.Errorf("command failed")
		},
	}
	mockCmd.SetOut(&bytes.Buffer{})
	mockCmd.SetErr(&bytes.Buffer{})

	rootCmd = mockCmd

	// Execute would call os.Exit(1), so only check the command errors
	err := rootCmd.Execute()
	require.Error(t, err)
}

func TestExecute_PassesCancellableContext(t *testing.T) {
	isolateLogger(t)

	originalRootCmd := rootCmd
	defer func() { rootCmd = originalRootCmd }()

	var done <-chan struct{}
	rootCmd = &cobra.Command{
		Use: "test",
		RunE: func(cmd *cobra.Command, args []string) error {
			done = cmd.Context().Done()
			return nil
		},
	}
	rootCmd.SetOut(&bytes.Buffer{})
	rootCmd.SetErr(&bytes.Buffer{})

	Execute()

	assert.NotNil(t, done)
}

func TestExecute_ProcessLevel_Success(t *testing.T) {
	if os.Getenv("TEST_EXECUTE_SUBPROCESS") == "1" {
		// This runs in the subprocess
		originalRootCmd := rootCmd
		mockCmd := &cobra.Command{
			Use: "test",
			RunE: func(cmd *cobra.Command, args []string) error {
				fmt.Println("success")
				return nil
			},
		}
		mockCmd.SetOut(os.Stdout)
		mockCmd.SetErr(os.Stderr)
		rootCmd = mockCmd
		defer func() { rootCmd = originalRootCmd }()

		Execute()
		return
	}

	// Parent process: spawn subprocess
	cmd := exec.Command(os.Args[0], "-test.run=TestExecute_ProcessLevel_Success")
	cmd.Env = append(os.Environ(),
		"TEST_EXECUTE_SUBPROCESS=1",
		"FORGEMUT_LOG_FILENAME="+filepath.Join(t.TempDir(), "diag.log"),
	)
	output, err := cmd.CombinedOutput()

	require.NoError(t, err, "output: %s", output)
	assert.Contains(t, string(output), "success")
}

func TestExecute_ProcessLevel_Failure(t *testing.T) {
	if os.Getenv("TEST_EXECUTE_SUBPROCESS_FAIL") == "1" {
		// This runs in the subprocess
		originalRootCmd := rootCmd
		mockCmd := &cobra.Command{
			Use: "test",
			RunE: func(cmd *cobra.Command, args []string) error {
				fmt.Fprintln(os.Stderr, "error occurred")
				return fmt.Errorf("command failed")
			},
		}
		mockCmd.SetOut(os.Stdout)
		mockCmd.SetErr(os.Stderr)
		rootCmd = mockCmd
		defer func() { rootCmd = originalRootCmd }()

		Execute() // This should call os.Exit(1)
		return
	}

	// Parent process: spawn subprocess
	cmd := exec.Command(os.Args[0], "-test.run=TestExecute_ProcessLevel_Failure")
	cmd.Env = append(os.Environ(),
		"TEST_EXECUTE_SUBPROCESS_FAIL=1",
		"FORGEMUT_LOG_FILENAME="+filepath.Join(t.TempDir(), "diag.log"),
	)
	output, err := cmd.CombinedOutput()

	require.Error(t, err)

	if exitErr, ok := err.(*exec.ExitError); ok {
		assert.Equal(t, 1, exitErr.ExitCode())
	} else {
		assert.Fail(t, "expected exec.ExitError", "got %T", err)
	}

	assert.Contains(t, string(output), "error occurred")
}
