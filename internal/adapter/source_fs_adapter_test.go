package adapter

import (
	"context"
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	m "forgemut.dev/pkg/forgemut/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalSourceFSAdapter_ReadDir(t *testing.T) {
	adapter := NewLocalSourceFSAdapter()

	root := t.TempDir()
	writeTestFile(t, filepath.Join(root, "2", "src", "Token.sol"), "a")
	writeTestFile(t, filepath.Join(root, "1", "src", "Token.sol"), "b")
	writeTestFile(t, filepath.Join(root, "mutants.log"), "c")

	entries, err := adapter.ReadDir(context.Background(), m.Path(root))
	require.NoError(t, err)

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}

	assert.Equal(t, []string{"1", "2", "mutants.log"}, names)
}

func TestLocalSourceFSAdapter_Exists(t *testing.T) {
	adapter := NewLocalSourceFSAdapter()

	root := t.TempDir()
	path := filepath.Join(root, "present.sol")
	writeTestFile(t, path, "x")

	ok, err := adapter.Exists(context.Background(), m.Path(path))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = adapter.Exists(context.Background(), m.Path(filepath.Join(root, "absent.sol")))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLocalSourceFSAdapter_CopyFile(t *testing.T) {
	adapter := NewLocalSourceFSAdapter()

	root := t.TempDir()
	src := filepath.Join(root, "mutant", "Token.sol")
	dst := filepath.Join(root, "project", "src", "Token.sol")

	writeTestFile(t, src, "contract Token { uint a = 2; }\n")
	require.NoError(t, os.Chmod(src, 0o640))
	writeTestFile(t, dst, "contract Token { uint a = 1; /* longer original */ }\n")

	require.NoError(t, adapter.CopyFile(context.Background(), m.Path(src), m.Path(dst)))

	got, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "contract Token { uint a = 2; }\n", string(got))

	info, err := os.Stat(dst)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o640), info.Mode().Perm())
}

func TestLocalSourceFSAdapter_CopyFile_CreatesParents(t *testing.T) {
	adapter := NewLocalSourceFSAdapter()

	root := t.TempDir()
	src := filepath.Join(root, "Token.sol")
	dst := filepath.Join(root, "backup", "src", "nested", "Token.sol")
	writeTestFile(t, src, "x")

	require.NoError(t, adapter.CopyFile(context.Background(), m.Path(src), m.Path(dst)))
	assert.FileExists(t, dst)
}

func TestLocalSourceFSAdapter_CopyFile_RejectsDirectory(t *testing.T) {
	adapter := NewLocalSourceFSAdapter()

	root := t.TempDir()
	err := adapter.CopyFile(context.Background(), m.Path(root), m.Path(filepath.Join(root, "copy")))
	require.Error(t, err)
}

func TestLocalSourceFSAdapter_HashFile(t *testing.T) {
	adapter := NewLocalSourceFSAdapter()

	root := t.TempDir()
	path := filepath.Join(root, "Token.sol")
	content := []byte("contract Token {}\n")
	require.NoError(t, os.WriteFile(path, content, 0o600))

	hash, err := adapter.HashFile(context.Background(), m.Path(path))
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("%x", sha256.Sum256(content)), hash)
}

func TestLocalSourceFSAdapter_CancelledContext(t *testing.T) {
	adapter := NewLocalSourceFSAdapter()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := adapter.ReadFile(ctx, m.Path(t.TempDir()))
	require.ErrorIs(t, err, context.Canceled)

	err = adapter.CopyFile(ctx, "a", "b")
	require.ErrorIs(t, err, context.Canceled)
}

func TestLocalSourceFSAdapter_RelAndJoin(t *testing.T) {
	adapter := NewLocalSourceFSAdapter()
	ctx := context.Background()

	joined := adapter.JoinPath(ctx, "gambit_out", "mutants", "3")
	assert.Equal(t, m.Path(filepath.Join("gambit_out", "mutants", "3")), joined)

	rel, err := adapter.RelPath(ctx, joined, adapter.JoinPath(ctx, string(joined), "src", "Token.sol"))
	require.NoError(t, err)
	assert.Equal(t, m.Path(filepath.Join("src", "Token.sol")), rel)
}
