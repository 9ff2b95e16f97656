package adapter

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	m "forgemut.dev/pkg/forgemut/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedNow() time.Time {
	return time.Date(2024, 3, 1, 12, 30, 45, 123000000, time.UTC)
}

func openTestSession(t *testing.T, cfg LogConfig) (LogSession, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()

	console := &bytes.Buffer{}
	errs := &bytes.Buffer{}

	if cfg.Dir == "" {
		cfg.Dir = t.TempDir()
	}

	if cfg.BaseName == "" {
		cfg.BaseName = "mutationsTestLog"
	}

	cfg.Console = console
	cfg.Errors = errs
	cfg.Now = fixedNow

	session, err := NewLocalLogStore().Open(context.Background(), cfg)
	require.NoError(t, err)

	return session, console, errs
}

func readString(t *testing.T, path m.Path) string {
	t.Helper()

	data, err := os.ReadFile(string(path))
	require.NoError(t, err)

	return string(data)
}

func TestLocalLogStore_Open_AllocatesNextUnusedFolder(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "runLog"), 0o750))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "runLog-1"), 0o750))

	session, _, _ := openTestSession(t, LogConfig{Dir: dir, BaseName: "runLog"})

	assert.Equal(t, m.Path(filepath.Join(dir, "runLog-2")), session.Folder())
	assert.Equal(t, m.Path(filepath.Join(dir, "runLog-2", "runLog-2_1.txt")), session.CurrentPath())
	assert.FileExists(t, string(session.CurrentPath()))
	assert.Equal(t, m.Path(filepath.Join(dir, "runLog-2", "runLog-2-result.txt")), session.ResultPath())
	assert.Equal(t, m.Path(filepath.Join(dir, "runLog-2", "runLog-2-report.yaml")), session.ReportPath())
}

func TestLocalLogSession_Append(t *testing.T) {
	t.Run("log only writes timestamped ansi-free line", func(t *testing.T) {
		session, console, _ := openTestSession(t, LogConfig{})

		session.Append("\x1b[31mkilled\x1b[0m mutant 3", false, true)

		assert.Equal(t, "[2024-03-01T12:30:45.123Z] killed mutant 3\n", readString(t, session.CurrentPath()))
		assert.Empty(t, console.String())
	})

	t.Run("console only echoes raw message", func(t *testing.T) {
		session, console, _ := openTestSession(t, LogConfig{})

		session.Append("\x1b[1mhello\x1b[0m", true, false)

		assert.Equal(t, "\x1b[1mhello\x1b[0m\n", console.String())
		assert.Empty(t, readString(t, session.CurrentPath()))
	})

	t.Run("verbose and debug flags force both sinks", func(t *testing.T) {
		session, console, _ := openTestSession(t, LogConfig{Verbose: true, Debug: true})

		session.Append("processing mutant 1", false, false)

		assert.Contains(t, console.String(), "processing mutant 1")
		assert.Contains(t, readString(t, session.CurrentPath()), "] processing mutant 1\n")
	})

	t.Run("write failure is reported, not fatal", func(t *testing.T) {
		session, _, errs := openTestSession(t, LogConfig{})
		require.NoError(t, os.RemoveAll(string(session.Folder())))

		session.Append("lost line", false, true)

		assert.Contains(t, errs.String(), "Error writing to log file")
		assert.Contains(t, errs.String(), "lost line")
	})
}

func TestLocalLogSession_EnsureCapacity_Rotates(t *testing.T) {
	session, _, _ := openTestSession(t, LogConfig{MaxSize: 100})
	first := session.CurrentPath()

	session.Append(strings.Repeat("x", 50), false, true)
	require.NoError(t, session.EnsureCapacity())
	assert.Equal(t, first, session.CurrentPath(), "below threshold must not rotate")

	session.Append(strings.Repeat("y", 50), false, true)
	require.NoError(t, session.EnsureCapacity())

	second := session.CurrentPath()
	assert.Equal(t, m.Path(strings.TrimSuffix(string(first), "_1.txt")+"_2.txt"), second)

	session.Append("after rotation", false, true)

	assert.NotContains(t, readString(t, first), "after rotation")
	assert.Contains(t, readString(t, second), "after rotation")
}

func TestLocalLogSession_EnsureCapacity_DefaultThreshold(t *testing.T) {
	session, _, _ := openTestSession(t, LogConfig{})
	first := session.CurrentPath()

	for i := 0; i < 60; i++ {
		session.Append(strings.Repeat("z", 1000), false, true)
	}

	info, err := os.Stat(string(first))
	require.NoError(t, err)
	require.Greater(t, info.Size(), int64(DefaultMaxLogSize))

	require.NoError(t, session.EnsureCapacity())
	assert.NotEqual(t, first, session.CurrentPath())
	assert.True(t, strings.HasSuffix(string(session.CurrentPath()), "_2.txt"))
}

func TestLocalLogSession_EnsureCapacity_MissingFileIsNotOverThreshold(t *testing.T) {
	session, _, _ := openTestSession(t, LogConfig{MaxSize: 10})
	current := session.CurrentPath()
	require.NoError(t, os.Remove(string(current)))

	require.NoError(t, session.EnsureCapacity())
	assert.Equal(t, current, session.CurrentPath())
}

func TestLocalLogSession_WriteFinal(t *testing.T) {
	session, _, _ := openTestSession(t, LogConfig{MaxSize: 10})

	session.Append("some lines to force rotation", false, true)
	require.NoError(t, session.EnsureCapacity())
	logFile := session.CurrentPath()

	require.NoError(t, session.WriteFinal("\x1b[32mMutation score: 75.00%\x1b[0m"))

	result := session.CurrentPath()
	assert.Equal(t, m.Path(filepath.Join(string(session.Folder()), filepath.Base(string(session.Folder()))+"-result.txt")), result)
	assert.Equal(t, result, session.ResultPath())
	assert.Equal(t, "[2024-03-01T12:30:45.123Z] Mutation score: 75.00%\n", readString(t, result))

	session.Append("late line", false, true)
	assert.NotContains(t, readString(t, result), "late line")
	assert.NotContains(t, readString(t, logFile), "late line")

	assert.ErrorIs(t, session.WriteFinal("again"), ErrSessionClosed)
	assert.ErrorIs(t, session.EnsureCapacity(), ErrSessionClosed)
}

func TestResultFileName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"mutationsTestLog_1.txt", "mutationsTestLog-result.txt"},
		{"mutationsTestLog-1_12.txt", "mutationsTestLog-1-result.txt"},
		{filepath.Join("logs", "run-3", "run-3_2.txt"), filepath.Join("logs", "run-3", "run-3-result.txt")},
		{"plain.txt", "plain-result.txt"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ResultFileName(tt.in))
		})
	}
}

func TestLocalLogStore_Latest(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"runLog", "runLog-2", "runLog-10", "runLog-x", "other-40"} {
		require.NoError(t, os.MkdirAll(filepath.Join(dir, name), 0o750))
	}

	got, err := NewLocalLogStore().Latest(context.Background(), dir, "runLog")
	require.NoError(t, err)
	assert.Equal(t, m.Path(filepath.Join(dir, "runLog-10")), got)

	_, err = NewLocalLogStore().Latest(context.Background(), dir, "missing")
	require.ErrorIs(t, err, os.ErrNotExist)
}
