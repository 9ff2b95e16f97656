// Package pkg provides reusable utilities for forgemut.
package pkg

import (
	"encoding/gob"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// Journal is an append-only, gob-encoded record of items of type T kept on disk.
// Items are flushed as they are appended, so a crashed process still leaves
// every appended item readable.
type Journal[T any] interface {
	Len() uint64
	Path() string
	Append(item T) error
	Range(f func(index uint64, item T) error) error
	Close() error
}

type fileJournal[T any] struct {
	path    string
	file    *os.File
	encoder *gob.Encoder
	mu      sync.Mutex
	length  uint64
	closed  bool
	// broken is set when a failed append may have left the encoder out of
	// step with the file; no further item is accepted.
	broken error
}

// OpenJournal creates (or truncates) the journal file name inside dir.
func OpenJournal[T any](dir, name string) (Journal[T], error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		slog.Error("failed to create journal directory", "path", dir, "error", err)
		return nil, fmt.Errorf("failed to create journal directory: %w", err)
	}

	path := filepath.Join(dir, name)

	// #nosec G304 - path is built from the run folder
	file, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		slog.Error("failed to create journal file", "path", path, "error", err)
		return nil, fmt.Errorf("failed to create journal file: %w", err)
	}

	slog.Debug("opened journal", "path", path)

	return &fileJournal[T]{
		path:    path,
		file:    file,
		encoder: gob.NewEncoder(file),
	}, nil
}

// Append implements Journal.
func (j *fileJournal[T]) Append(item T) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.closed {
		return fmt.Errorf("journal %s is closed", j.path)
	}

	if j.broken != nil {
		return fmt.Errorf("journal %s is unusable after a failed append: %w", j.path, j.broken)
	}

	offset, err := j.file.Seek(0, io.SeekCurrent)
	if err != nil {
		return fmt.Errorf("failed to locate journal end: %w", err)
	}

	if err := j.encoder.Encode(item); err != nil {
		slog.Error("failed to encode item", "path", j.path, "index", j.length, "error", err)
		j.discardFrom(offset, err)

		return fmt.Errorf("failed to encode item: %w", err)
	}

	if err := j.file.Sync(); err != nil {
		slog.Error("failed to sync journal", "path", j.path, "error", err)
		return fmt.Errorf("failed to sync journal: %w", err)
	}

	j.length++
	slog.Debug("appended item", "path", j.path, "index", j.length-1)

	return nil
}

// discardFrom drops the bytes a failed append may have written past offset
// and marks the journal broken. Items before offset stay readable.
func (j *fileJournal[T]) discardFrom(offset int64, cause error) {
	j.broken = cause

	if err := j.file.Truncate(offset); err != nil {
		slog.Error("failed to truncate journal", "path", j.path, "offset", offset, "error", err)
		return
	}

	if _, err := j.file.Seek(offset, io.SeekStart); err != nil {
		slog.Error("failed to rewind journal", "path", j.path, "offset", offset, "error", err)
	}
}

// Path implements Journal.
func (j *fileJournal[T]) Path() string {
	return j.path
}

// Len implements Journal.
func (j *fileJournal[T]) Len() uint64 {
	j.mu.Lock()
	defer j.mu.Unlock()

	return j.length
}

// Range implements Journal. It decodes items in append order from a separate
// read handle, so it can run while the journal is still open for writing.
func (j *fileJournal[T]) Range(fn func(index uint64, item T) error) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	file, err := os.Open(j.path)
	if err != nil {
		slog.Error("failed to open journal for range", "path", j.path, "error", err)
		return fmt.Errorf("failed to open file: %w", err)
	}

	defer func() {
		if err := file.Close(); err != nil {
			slog.Error("failed to close journal", "path", j.path, "error", err)
		}
	}()

	decoder := gob.NewDecoder(file)

	for i := range j.length {
		var item T
		if err := decoder.Decode(&item); err != nil {
			slog.Error("failed to decode item during range", "path", j.path, "index", i, "error", err)
			return fmt.Errorf("failed to decode item at index %d: %w", i, err)
		}

		if err := fn(i, item); err != nil {
			return err
		}
	}

	return nil
}

// Close implements Journal. Closing twice is a no-op.
func (j *fileJournal[T]) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.closed {
		return nil
	}

	j.closed = true

	if err := j.file.Close(); err != nil {
		slog.Error("failed to close journal", "path", j.path, "error", err)
		return err
	}

	slog.Debug("closed journal", "path", j.path, "length", j.length)

	return nil
}
