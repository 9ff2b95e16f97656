package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func chdirTemp(t *testing.T) string {
	t.Helper()

	tempDir := t.TempDir()
	t.Chdir(tempDir)

	return tempDir
}

func executeInit(t *testing.T, args ...string) (string, error) {
	t.Helper()

	out := &bytes.Buffer{}
	cmd := newRootCmd()
	cmd.AddCommand(newInitCmd())
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(append([]string{"init"}, args...))

	err := cmd.Execute()

	return out.String(), err
}

func TestInitCmd_WritesConfigFile(t *testing.T) {
	tempDir := chdirTemp(t)

	output, err := executeInit(t)
	require.NoError(t, err)
	assert.Contains(t, output, "Wrote forgemut.yaml")

	contents, err := os.ReadFile(filepath.Join(tempDir, configFileName))
	require.NoError(t, err)

	var written map[string]any
	require.NoError(t, yaml.Unmarshal(contents, &written))

	corpus, ok := written["corpus"].(map[string]any)
	require.True(t, ok, "corpus section missing: %s", contents)
	assert.Equal(t, "gambit_out/mutants", corpus["dir"])

	runner, ok := written["runner"].(map[string]any)
	require.True(t, ok, "runner section missing: %s", contents)
	assert.Equal(t, "forge", runner["binary"])
}

func TestInitCmd_KeepsExistingFile(t *testing.T) {
	tempDir := chdirTemp(t)

	targetPath := filepath.Join(tempDir, configFileName)
	require.NoError(t, os.WriteFile(targetPath, []byte("existing: true\n"), 0o644))

	_, err := executeInit(t)
	require.Error(t, err)

	contents, err := os.ReadFile(targetPath)
	require.NoError(t, err)
	assert.Equal(t, "existing: true\n", string(contents))
}

func TestInitCmd_ForceOverwrites(t *testing.T) {
	tempDir := chdirTemp(t)

	targetPath := filepath.Join(tempDir, configFileName)
	require.NoError(t, os.WriteFile(targetPath, []byte("existing: true\n"), 0o644))

	_, err := executeInit(t, "--force")
	require.NoError(t, err)

	contents, err := os.ReadFile(targetPath)
	require.NoError(t, err)
	assert.Contains(t, string(contents), "backup:")
}
