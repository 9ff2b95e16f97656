// Package adapter contains the infrastructure adapters (filesystem, subprocess,
// logs, reports, git) used by the orchestration domain.
package adapter

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	m "forgemut.dev/pkg/forgemut/internal/model"
)

// SourceFSAdapter abstracts the filesystem operations the domain performs on the
// mutant corpus, the project source tree and the backup area. It hides direct
// `os` access so the swap logic can be tested against temporary trees.
//
//nolint:interfacebloat // A richer interface keeps workflow logic decoupled from os/fs.
type SourceFSAdapter interface {
	// ReadDir lists the entries of a directory sorted by name.
	ReadDir(ctx context.Context, path m.Path) ([]fs.DirEntry, error)

	// FileInfo returns metadata for a path, following symlinks.
	FileInfo(ctx context.Context, path m.Path) (os.FileInfo, error)

	// Exists reports whether a path exists. Errors other than "not exist" are returned.
	Exists(ctx context.Context, path m.Path) (bool, error)

	// ReadFile loads a file from disk and returns its contents.
	ReadFile(ctx context.Context, path m.Path) ([]byte, error)

	// HashFile returns the SHA-256 fingerprint of the file at path.
	HashFile(ctx context.Context, path m.Path) (string, error)

	// CopyFile copies src over dst, creating dst's parent directories and
	// keeping src's permission bits.
	CopyFile(ctx context.Context, src, dst m.Path) error

	// Remove removes a single file.
	Remove(ctx context.Context, path m.Path) error

	// RemoveAll removes a directory and all its contents.
	RemoveAll(ctx context.Context, path m.Path) error

	// RelPath returns the relative path from base to target.
	RelPath(ctx context.Context, base, target m.Path) (m.Path, error)

	// JoinPath joins path elements into a single path.
	JoinPath(ctx context.Context, elem ...string) m.Path
}

// LocalSourceFSAdapter is the os-backed SourceFSAdapter.
type LocalSourceFSAdapter struct{}

// NewLocalSourceFSAdapter constructs a LocalSourceFSAdapter instance ready to
// be wired into the workflow.
func NewLocalSourceFSAdapter() *LocalSourceFSAdapter {
	return &LocalSourceFSAdapter{}
}

// ReadDir lists directory entries sorted by file name.
func (a *LocalSourceFSAdapter) ReadDir(ctx context.Context, path m.Path) ([]fs.DirEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return os.ReadDir(string(path))
}

// FileInfo returns os.FileInfo metadata for the given path.
func (a *LocalSourceFSAdapter) FileInfo(ctx context.Context, path m.Path) (os.FileInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return os.Stat(string(path))
}

// Exists checks whether the path exists.
func (a *LocalSourceFSAdapter) Exists(ctx context.Context, path m.Path) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	_, err := os.Stat(string(path))
	if err == nil {
		return true, nil
	}

	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}

	return false, err
}

// ReadFile loads file contents from disk.
func (a *LocalSourceFSAdapter) ReadFile(ctx context.Context, path m.Path) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return os.ReadFile(string(path))
}

// HashFile returns the SHA-256 hash of the file at the provided path.
func (a *LocalSourceFSAdapter) HashFile(ctx context.Context, path m.Path) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	f, err := os.Open(string(path))
	if err != nil {
		return "", err
	}

	defer func() {
		_ = f.Close()
	}()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}

	return fmt.Sprintf("%x", h.Sum(nil)), nil
}

// CopyFile copies a single regular file, overwriting the destination.
func (a *LocalSourceFSAdapter) CopyFile(ctx context.Context, src, dst m.Path) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	srcInfo, err := os.Stat(string(src))
	if err != nil {
		return fmt.Errorf("failed to stat source: %w", err)
	}

	if srcInfo.IsDir() {
		return fmt.Errorf("copy source %q is a directory", src)
	}

	// #nosec G304 - src is a corpus or project file resolved by the domain
	sourceFile, err := os.Open(string(src))
	if err != nil {
		return fmt.Errorf("failed to open source: %w", err)
	}

	defer func() { _ = sourceFile.Close() }()

	if err := os.MkdirAll(filepath.Dir(string(dst)), 0o750); err != nil {
		return fmt.Errorf("failed to create parent directory: %w", err)
	}

	// #nosec G304 - dst is a project or backup path resolved by the domain
	destFile, err := os.OpenFile(string(dst), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, srcInfo.Mode().Perm())
	if err != nil {
		return fmt.Errorf("failed to create destination: %w", err)
	}

	defer func() { _ = destFile.Close() }()

	if _, err := io.Copy(destFile, sourceFile); err != nil {
		return fmt.Errorf("failed to copy file contents: %w", err)
	}

	if err := destFile.Sync(); err != nil {
		return fmt.Errorf("failed to sync destination: %w", err)
	}

	return os.Chmod(string(dst), srcInfo.Mode().Perm())
}

// Remove removes a single file.
func (a *LocalSourceFSAdapter) Remove(ctx context.Context, path m.Path) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return os.Remove(string(path))
}

// RemoveAll removes a directory and all its contents.
func (a *LocalSourceFSAdapter) RemoveAll(ctx context.Context, path m.Path) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return os.RemoveAll(string(path))
}

// RelPath returns the relative path from base to target.
func (a *LocalSourceFSAdapter) RelPath(_ context.Context, base, target m.Path) (m.Path, error) {
	rel, err := filepath.Rel(string(base), string(target))
	if err != nil {
		return "", err
	}

	return m.Path(rel), nil
}

// JoinPath joins path elements into a single path.
func (a *LocalSourceFSAdapter) JoinPath(_ context.Context, elem ...string) m.Path {
	return m.Path(filepath.Join(elem...))
}
