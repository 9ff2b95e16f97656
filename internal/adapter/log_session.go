package adapter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	m "forgemut.dev/pkg/forgemut/internal/model"
	"github.com/charmbracelet/x/ansi"
)

const (
	// DefaultMaxLogSize is the byte size above which a session log file is rotated.
	DefaultMaxLogSize = 50000

	logFileExtension = ".txt"
	resultSuffix     = "-result"
	reportSuffix     = "-report.yaml"
)

// ErrSessionClosed is returned when writing to a session after its final write.
var ErrSessionClosed = errors.New("log session closed")

var rotationIndexPattern = regexp.MustCompile(`_\d+$`)

// LogConfig configures a log session.
type LogConfig struct {
	// Dir is the parent directory receiving one folder per run.
	Dir string
	// BaseName names the run folder (BaseName, BaseName-1, ...) and its files.
	BaseName string
	// MaxSize is the rotation threshold in bytes. Zero means DefaultMaxLogSize.
	MaxSize int64
	// Verbose echoes every message to Console.
	Verbose bool
	// Debug writes every message to the log file.
	Debug bool
	// Console receives echoed messages.
	Console io.Writer
	// Errors receives log-write failures.
	Errors io.Writer
	// Now returns the timestamp of each line. Defaults to time.Now.
	Now func() time.Time
}

// LogSession is the append-only, size-rotated log of a single run.
type LogSession interface {
	// Append timestamps message and writes it to the current file when toLog
	// (or debug) is set, and echoes it raw to the console when toConsole (or
	// verbose) is set. Write failures are reported, never returned.
	Append(message string, toConsole, toLog bool)

	// EnsureCapacity rotates to a new file once the current one exceeds the
	// size threshold. A missing current file counts as empty.
	EnsureCapacity() error

	// WriteFinal writes summary to the result file and closes the session.
	WriteFinal(summary string) error

	// Folder is the run folder holding every file of the session.
	Folder() m.Path

	// CurrentPath is the file receiving log lines.
	CurrentPath() m.Path

	// ResultPath is the result file derived from the current file name.
	ResultPath() m.Path

	// ReportPath is the machine-readable report location for this run.
	ReportPath() m.Path
}

// LogStore allocates log sessions and finds the folders of previous runs.
type LogStore interface {
	// Open allocates a fresh run folder and creates its first log file.
	Open(ctx context.Context, cfg LogConfig) (LogSession, error)

	// Latest returns the run folder with the highest numeric suffix.
	Latest(ctx context.Context, dir, baseName string) (m.Path, error)
}

// LocalLogStore is the filesystem-backed LogStore.
type LocalLogStore struct{}

// NewLocalLogStore constructs a LocalLogStore.
func NewLocalLogStore() *LocalLogStore {
	return &LocalLogStore{}
}

// Open probes for the first unused folder name and starts a session in it.
func (s *LocalLogStore) Open(ctx context.Context, cfg LogConfig) (LogSession, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if cfg.MaxSize <= 0 {
		cfg.MaxSize = DefaultMaxLogSize
	}

	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	if cfg.Console == nil {
		cfg.Console = io.Discard
	}

	if cfg.Errors == nil {
		cfg.Errors = os.Stderr
	}

	folder, err := allocateFolder(cfg.Dir, cfg.BaseName)
	if err != nil {
		slog.Error("Failed to allocate log folder", "dir", cfg.Dir, "base", cfg.BaseName, "error", err)
		return nil, fmt.Errorf("allocate log folder: %w", err)
	}

	session := &localLogSession{
		cfg:    cfg,
		folder: folder,
		index:  1,
	}

	if err := session.createFile(); err != nil {
		return nil, err
	}

	return session, nil
}

// Latest returns the most recent run folder under dir.
func (s *LocalLogStore) Latest(ctx context.Context, dir, baseName string) (m.Path, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("read log dir: %w", err)
	}

	best := -1
	bestName := ""

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		n, ok := folderNumber(entry.Name(), baseName)
		if ok && n > best {
			best = n
			bestName = entry.Name()
		}
	}

	if best < 0 {
		return "", fmt.Errorf("no %s folder found in %s: %w", baseName, dir, fs.ErrNotExist)
	}

	return m.Path(filepath.Join(dir, bestName)), nil
}

func folderNumber(name, baseName string) (int, bool) {
	if name == baseName {
		return 0, true
	}

	suffix, ok := strings.CutPrefix(name, baseName+"-")
	if !ok {
		return 0, false
	}

	n, err := strconv.Atoi(suffix)
	if err != nil || n <= 0 {
		return 0, false
	}

	return n, true
}

// allocateFolder creates the first unused folder among base, base-1, base-2, ...
func allocateFolder(dir, baseName string) (string, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", err
	}

	candidate := filepath.Join(dir, baseName)

	for n := 1; ; n++ {
		_, err := os.Stat(candidate)
		if errors.Is(err, fs.ErrNotExist) {
			break
		}

		if err != nil {
			return "", err
		}

		candidate = filepath.Join(dir, fmt.Sprintf("%s-%d", baseName, n))
	}

	if err := os.MkdirAll(candidate, 0o750); err != nil {
		return "", err
	}

	return candidate, nil
}

// ResultFileName derives the result file from a log file name:
// "mutationsTestLog-1_3.txt" becomes "mutationsTestLog-1-result.txt".
func ResultFileName(logFile string) string {
	name := strings.TrimSuffix(logFile, filepath.Ext(logFile))
	name = rotationIndexPattern.ReplaceAllString(name, "")

	return name + resultSuffix + logFileExtension
}

type localLogSession struct {
	mu      sync.Mutex
	cfg     LogConfig
	folder  string
	index   int
	current string
	closed  bool
}

func (s *localLogSession) logFilePath() string {
	base := filepath.Base(s.folder)
	return filepath.Join(s.folder, fmt.Sprintf("%s_%d%s", base, s.index, logFileExtension))
}

func (s *localLogSession) createFile() error {
	path := s.logFilePath()

	if err := os.WriteFile(path, nil, 0o600); err != nil {
		slog.Error("Failed to create log file", "path", path, "error", err)
		return fmt.Errorf("create log file: %w", err)
	}

	s.current = path
	s.append("Creating new log file: "+path, false, false)

	return nil
}

func (s *localLogSession) Append(message string, toConsole, toLog bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.append(message, toConsole, toLog)
}

func (s *localLogSession) append(message string, toConsole, toLog bool) {
	if s.cfg.Verbose || toConsole {
		_, _ = fmt.Fprintln(s.cfg.Console, message)
	}

	if !s.cfg.Debug && !toLog {
		return
	}

	if s.closed {
		slog.Warn("Dropping log line after final write", "message", ansi.Strip(message))
		return
	}

	line := ansi.Strip(fmt.Sprintf("[%s] %s\n", s.timestamp(), message))
	if err := appendFile(s.current, line); err != nil {
		slog.Error("Failed to write log file", "path", s.current, "error", err)
		_, _ = fmt.Fprintf(s.cfg.Errors, "Error writing to log file:\nWhile writing: %s%v\n", line, err)
	}
}

func (s *localLogSession) timestamp() string {
	return s.cfg.Now().UTC().Format("2006-01-02T15:04:05.000Z")
}

func (s *localLogSession) EnsureCapacity() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrSessionClosed
	}

	info, err := os.Stat(s.current)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}

	if err != nil {
		return fmt.Errorf("stat log file: %w", err)
	}

	if info.Size() <= s.cfg.MaxSize {
		return nil
	}

	s.append(fmt.Sprintf("Log file %s exceeds %d KB", s.current, s.cfg.MaxSize/1000), false, false)
	s.index++

	return s.createFile()
}

func (s *localLogSession) WriteFinal(summary string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrSessionClosed
	}

	s.current = ResultFileName(s.current)
	line := ansi.Strip(fmt.Sprintf("[%s] %s\n", s.timestamp(), summary))
	s.closed = true

	if err := appendFile(s.current, line); err != nil {
		slog.Error("Failed to write result file", "path", s.current, "error", err)
		return fmt.Errorf("write result file: %w", err)
	}

	return nil
}

func (s *localLogSession) Folder() m.Path {
	return m.Path(s.folder)
}

func (s *localLogSession) CurrentPath() m.Path {
	s.mu.Lock()
	defer s.mu.Unlock()

	return m.Path(s.current)
}

func (s *localLogSession) ResultPath() m.Path {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return m.Path(s.current)
	}

	return m.Path(ResultFileName(s.current))
}

func (s *localLogSession) ReportPath() m.Path {
	return ReportFileFor(m.Path(s.folder))
}

// ReportFileFor returns the report location inside a run folder.
func ReportFileFor(folder m.Path) m.Path {
	base := filepath.Base(string(folder))
	return m.Path(filepath.Join(string(folder), base+reportSuffix))
}

func appendFile(path, content string) error {
	// #nosec G304 - path is a session file created by this package
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}

	if _, err := f.WriteString(content); err != nil {
		_ = f.Close()
		return err
	}

	return f.Close()
}
