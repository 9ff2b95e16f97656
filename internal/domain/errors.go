package domain

import (
	"errors"
	"fmt"

	m "forgemut.dev/pkg/forgemut/internal/model"
)

var (
	// ErrCorpusIntegrity indicates a corpus folder does not hold exactly one
	// file or points at a file missing from the source tree.
	ErrCorpusIntegrity = errors.New("corpus integrity")

	// ErrRestoreIntegrity indicates an original file could not be put back.
	ErrRestoreIntegrity = errors.New("restore integrity")

	// ErrExecution indicates the test runner could not be run at all.
	ErrExecution = errors.New("runner execution")
)

// CorpusIntegrityError reports a broken mutant corpus. It is fatal and raised
// before any project file is touched.
type CorpusIntegrityError struct {
	Path   m.Path
	Reason string
	Err    error
}

func (e *CorpusIntegrityError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("corpus integrity: %s: %s: %v", e.Path, e.Reason, e.Err)
	}

	return fmt.Sprintf("corpus integrity: %s: %s", e.Path, e.Reason)
}

// Is matches ErrCorpusIntegrity.
func (e *CorpusIntegrityError) Is(target error) bool { return target == ErrCorpusIntegrity }

func (e *CorpusIntegrityError) Unwrap() error { return e.Err }

// RestoreIntegrityError reports that the project tree may still hold a mutant.
type RestoreIntegrityError struct {
	Target m.Path
	Backup m.Path
	Reason string
	Err    error
}

func (e *RestoreIntegrityError) Error() string {
	msg := fmt.Sprintf("restore integrity: cannot restore %s from %s: %s", e.Target, e.Backup, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}

	return msg
}

// Is matches ErrRestoreIntegrity.
func (e *RestoreIntegrityError) Is(target error) bool { return target == ErrRestoreIntegrity }

func (e *RestoreIntegrityError) Unwrap() error { return e.Err }

// ExecutionError reports a runner that failed to launch, as opposed to one
// that ran and reported failing tests.
type ExecutionError struct {
	Mutant m.MutantID
	Output string
	Err    error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("runner execution failed for mutant %s: %v", e.Mutant, e.Err)
}

// Is matches ErrExecution.
func (e *ExecutionError) Is(target error) bool { return target == ErrExecution }

func (e *ExecutionError) Unwrap() error { return e.Err }
