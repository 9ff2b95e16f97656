// Package controller provides output adapters for displaying mutant runs.
package controller

import (
	"context"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	m "forgemut.dev/pkg/forgemut/internal/model"
)

// UI defines the interface for displaying a run.
// Implementations can use different output methods (simple text, terminal, etc).
type UI interface {
	Start(ctx context.Context) error
	Close(ctx context.Context)
	// Console is where the log session echoes messages.
	Console() io.Writer
	DisplayCorpusListing(ctx context.Context, entries []m.CorpusEntry) error
	DisplayProgress(ctx context.Context, current m.MutantID, done, total int)
	DisplayMessage(ctx context.Context, message string)
	DisplaySummary(ctx context.Context, summary m.Summary)
	DisplayReport(ctx context.Context, report m.RunReport) error
}

// IsTTY reports whether w is an interactive terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}

	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// NewUI picks TerminalUI when the command writes to a terminal and SimpleUI otherwise.
func NewUI(cmd *cobra.Command) UI {
	if IsTTY(cmd.OutOrStdout()) {
		return NewTerminalUI(cmd)
	}

	return NewSimpleUI(cmd)
}
