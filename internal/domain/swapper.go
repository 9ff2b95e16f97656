package domain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"forgemut.dev/pkg/forgemut/internal/adapter"
	m "forgemut.dev/pkg/forgemut/internal/model"
)

// DefaultBackupDir holds the single displaced original during a run.
const DefaultBackupDir = "tempBackup"

// SwapConfig locates the live project tree and the backup area.
type SwapConfig struct {
	SourceRoot m.Path
	BackupDir  m.Path
}

// Transition describes the file operations performed by one Inject call.
// Empty fields mean the step did not happen.
type Transition struct {
	Restored m.Path
	BackedUp m.Path
	Injected m.Path
}

// FileSwapper puts mutants into the live project tree one at a time.
//
// At most one target file is swapped at any time and its original is the only
// file held in the backup area.
type FileSwapper interface {
	// Preflight fails when the backup area still holds files, which means a
	// previous run stopped before restoring its original.
	Preflight(ctx context.Context) error

	// Inject copies the mutant over its target. When the target differs from
	// the active one, the active target is restored and the new one backed up first.
	Inject(ctx context.Context, mutant m.Mutant) (Transition, error)

	// Original returns the backed-up content of the active target.
	Original(ctx context.Context) ([]byte, error)

	// Active returns the currently swapped target, if any.
	Active() (m.Path, bool)

	// Cleanup restores the active target and removes the backup area. It runs
	// even when ctx is already cancelled.
	Cleanup(ctx context.Context) error
}

type fileSwapper struct {
	adapter.SourceFSAdapter
	cfg        SwapConfig
	active     m.Path
	backupHash string
}

// NewFileSwapper constructs a FileSwapper in the Idle state.
func NewFileSwapper(fsAdapter adapter.SourceFSAdapter, cfg SwapConfig) FileSwapper {
	if cfg.SourceRoot == "" {
		cfg.SourceRoot = "."
	}

	if cfg.BackupDir == "" {
		cfg.BackupDir = DefaultBackupDir
	}

	return &fileSwapper{SourceFSAdapter: fsAdapter, cfg: cfg}
}

func (s *fileSwapper) Preflight(ctx context.Context) error {
	exists, err := s.Exists(ctx, s.cfg.BackupDir)
	if err != nil {
		return fmt.Errorf("check backup dir: %w", err)
	}

	if !exists {
		return nil
	}

	entries, err := s.ReadDir(ctx, s.cfg.BackupDir)
	if err != nil {
		return fmt.Errorf("read backup dir: %w", err)
	}

	if len(entries) > 0 {
		return &RestoreIntegrityError{
			Target: s.cfg.SourceRoot,
			Backup: s.cfg.BackupDir,
			Reason: "backup directory is not empty, a previous run may have left a mutant in the source tree",
		}
	}

	return nil
}

func (s *fileSwapper) Active() (m.Path, bool) {
	return s.active, s.active != ""
}

func (s *fileSwapper) targetPath(ctx context.Context, rel m.Path) m.Path {
	return s.JoinPath(ctx, string(s.cfg.SourceRoot), string(rel))
}

func (s *fileSwapper) backupPath(ctx context.Context, rel m.Path) m.Path {
	return s.JoinPath(ctx, string(s.cfg.BackupDir), string(rel))
}

func (s *fileSwapper) Inject(ctx context.Context, mutant m.Mutant) (Transition, error) {
	var t Transition

	rel := mutant.TargetRelativePath
	if rel == "" {
		return t, fmt.Errorf("mutant %s has no target", mutant.ID)
	}

	if s.active != rel {
		if s.active != "" {
			restored := s.active
			if err := s.restore(ctx); err != nil {
				return t, err
			}

			t.Restored = s.targetPath(ctx, restored)
		}

		backup, err := s.backup(ctx, rel)
		if err != nil {
			return t, err
		}

		t.BackedUp = backup
	}

	target := s.targetPath(ctx, rel)
	if err := s.CopyFile(ctx, mutant.MutantAbsolutePath, target); err != nil {
		slog.Error("Failed to inject mutant", "id", mutant.ID, "target", target, "error", err)
		return t, fmt.Errorf("inject mutant %s into %s: %w", mutant.ID, target, err)
	}

	t.Injected = target

	return t, nil
}

func (s *fileSwapper) backup(ctx context.Context, rel m.Path) (m.Path, error) {
	target := s.targetPath(ctx, rel)
	backup := s.backupPath(ctx, rel)

	if err := s.CopyFile(ctx, target, backup); err != nil {
		slog.Error("Failed to back up original", "target", target, "backup", backup, "error", err)
		return "", fmt.Errorf("back up original %s: %w", target, err)
	}

	hash, err := s.HashFile(ctx, backup)
	if err != nil {
		return "", fmt.Errorf("hash backup %s: %w", backup, err)
	}

	s.active = rel
	s.backupHash = hash

	slog.Debug("Backed up original", "target", target, "backup", backup)

	return backup, nil
}

func (s *fileSwapper) restore(ctx context.Context) error {
	target := s.targetPath(ctx, s.active)
	backup := s.backupPath(ctx, s.active)

	exists, err := s.Exists(ctx, backup)
	if err != nil || !exists {
		return &RestoreIntegrityError{Target: target, Backup: backup, Reason: "backup file does not exist", Err: err}
	}

	if err := s.CopyFile(ctx, backup, target); err != nil {
		return &RestoreIntegrityError{Target: target, Backup: backup, Reason: "copy failed", Err: err}
	}

	hash, err := s.HashFile(ctx, target)
	if err != nil || hash != s.backupHash {
		return &RestoreIntegrityError{Target: target, Backup: backup, Reason: "restored content differs from backup", Err: err}
	}

	if err := s.Remove(ctx, backup); err != nil {
		slog.Warn("Failed to clear backup slot", "backup", backup, "error", err)
	}

	slog.Debug("Restored original", "target", target, "backup", backup)

	s.active = ""
	s.backupHash = ""

	return nil
}

func (s *fileSwapper) Original(ctx context.Context) ([]byte, error) {
	if s.active == "" {
		return nil, errors.New("no active target")
	}

	return s.ReadFile(ctx, s.backupPath(ctx, s.active))
}

func (s *fileSwapper) Cleanup(ctx context.Context) error {
	ctx = context.WithoutCancel(ctx)

	var restoreErr error
	if s.active != "" {
		restoreErr = s.restore(ctx)
	}

	if restoreErr != nil {
		slog.Error("Failed to restore original during cleanup", "error", restoreErr)
		// The backup is the only remaining copy of the original.
		return restoreErr
	}

	if err := s.RemoveAll(ctx, s.cfg.BackupDir); err != nil {
		slog.Error("Failed to remove backup dir", "dir", s.cfg.BackupDir, "error", err)
		return fmt.Errorf("remove backup dir: %w", err)
	}

	return nil
}
