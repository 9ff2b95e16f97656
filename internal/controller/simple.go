package controller

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	m "forgemut.dev/pkg/forgemut/internal/model"
)

// SimpleUI implements UI using plain lines on the command output.
type SimpleUI struct {
	cmd *cobra.Command
}

// NewSimpleUI creates a new SimpleUI.
func NewSimpleUI(cmd *cobra.Command) *SimpleUI {
	return &SimpleUI{cmd: cmd}
}

// Start initializes the UI.
func (s *SimpleUI) Start(ctx context.Context) error {
	return ctx.Err()
}

// Close finalizes the UI.
func (s *SimpleUI) Close(_ context.Context) {}

// Console returns the command output.
func (s *SimpleUI) Console() io.Writer {
	return s.cmd.OutOrStdout()
}

// DisplayCorpusListing prints the corpus table.
func (s *SimpleUI) DisplayCorpusListing(ctx context.Context, entries []m.CorpusEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if len(entries) == 0 {
		s.printf("No mutant found in corpus\n")
		return nil
	}

	s.printf("\n%s", renderCorpusTable(entries))

	return nil
}

// DisplayProgress prints one line per processed mutant.
func (s *SimpleUI) DisplayProgress(ctx context.Context, current m.MutantID, done, total int) {
	if err := ctx.Err(); err != nil {
		return
	}

	s.printf("Processing mutant: %s (%d/%d)\n", current, done, total)
}

// DisplayMessage prints a message on its own line.
func (s *SimpleUI) DisplayMessage(ctx context.Context, message string) {
	if err := ctx.Err(); err != nil {
		return
	}

	s.printf("%s\n", message)
}

// DisplaySummary prints the uncolored run summary.
func (s *SimpleUI) DisplaySummary(_ context.Context, summary m.Summary) {
	s.printf("%s", RenderSummary(summary, PlainPalette()))
}

// DisplayReport prints a stored run report.
func (s *SimpleUI) DisplayReport(ctx context.Context, report m.RunReport) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.printf("%s\n%s", renderReportHeader(report), renderReportTable(report))

	return nil
}

func (s *SimpleUI) printf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(s.cmd.OutOrStdout(), format, args...)
}
