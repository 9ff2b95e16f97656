package controller

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"

	m "forgemut.dev/pkg/forgemut/internal/model"
)

// TerminalUI implements UI for interactive terminals: an in-place progress
// line, colored summary and a scrollable corpus listing.
type TerminalUI struct {
	cmd     *cobra.Command
	palette Palette
	bar     progress.Model

	mu       sync.Mutex
	progress string
}

// NewTerminalUI creates a new TerminalUI.
func NewTerminalUI(cmd *cobra.Command) *TerminalUI {
	return &TerminalUI{
		cmd:     cmd,
		palette: LipglossPalette(),
		bar:     newProgressBar("6"),
	}
}

// Start initializes the UI.
func (t *TerminalUI) Start(ctx context.Context) error {
	return ctx.Err()
}

// Close ends the progress line, if one is drawn.
func (t *TerminalUI) Close(_ context.Context) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.progress != "" {
		t.write("\n")
		t.progress = ""
	}
}

// Console returns a writer that prints above the progress line.
func (t *TerminalUI) Console() io.Writer {
	return consoleWriter{ui: t}
}

type consoleWriter struct {
	ui *TerminalUI
}

func (w consoleWriter) Write(p []byte) (int, error) {
	w.ui.mu.Lock()
	defer w.ui.mu.Unlock()

	if w.ui.progress != "" {
		w.ui.write("\r" + ansi.EraseEntireLine)
	}

	n, err := w.ui.cmd.OutOrStdout().Write(p)

	if w.ui.progress != "" {
		w.ui.write(w.ui.progress)
	}

	return n, err
}

// DisplayCorpusListing prints the corpus table, paginated when it does not fit the terminal.
func (t *TerminalUI) DisplayCorpusListing(ctx context.Context, entries []m.CorpusEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if len(entries) == 0 {
		t.write(t.palette.Yellow("No mutant found in corpus\n"))
		return nil
	}

	model := newListingModel(renderCorpusTable(entries), len(entries))

	if f, ok := t.cmd.OutOrStdout().(*os.File); ok {
		width, height, err := term.GetSize(f.Fd())
		if err == nil {
			model.height = height
			model.width = width
		}
	}

	if !model.needsPagination() {
		t.write("\n" + model.View())
		return nil
	}

	program := tea.NewProgram(model,
		tea.WithContext(ctx),
		tea.WithOutput(t.cmd.OutOrStdout()),
		tea.WithInput(t.cmd.InOrStdin()),
		tea.WithAltScreen(),
	)
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("corpus listing: %w", err)
	}

	return nil
}

// DisplayProgress redraws the progress line in place.
func (t *TerminalUI) DisplayProgress(ctx context.Context, current m.MutantID, done, total int) {
	if err := ctx.Err(); err != nil {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.progress = renderProgress(t.bar, t.palette, current, done, total)
	t.write("\r" + ansi.EraseEntireLine + t.progress)
}

// DisplayMessage prints a message above the progress line.
func (t *TerminalUI) DisplayMessage(ctx context.Context, message string) {
	if err := ctx.Err(); err != nil {
		return
	}

	_, _ = fmt.Fprintln(t.Console(), message)
}

// DisplaySummary ends the progress line and prints the colored summary.
func (t *TerminalUI) DisplaySummary(ctx context.Context, summary m.Summary) {
	t.Close(ctx)
	t.write(RenderSummary(summary, t.palette))
}

// DisplayReport prints a stored run report.
func (t *TerminalUI) DisplayReport(ctx context.Context, report m.RunReport) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	t.write(t.palette.Bold(renderReportHeader(report)) + "\n" + renderReportTable(report))

	if len(report.Undetected) > 0 {
		t.write(t.palette.Red(fmt.Sprintf("Undetected mutants: %s\n", m.JoinIDs(report.Undetected))))
	}

	return nil
}

func (t *TerminalUI) write(s string) {
	_, _ = io.WriteString(t.cmd.OutOrStdout(), s)
}

// listingModel is a scrollable view over pre-rendered table lines.
type listingModel struct {
	lines    []string
	count    int
	height   int
	width    int
	offset   int
	quitting bool
}

// listingReserved is the number of lines taken by the header and footer.
const listingReserved = 5

func newListingModel(table string, count int) listingModel {
	return listingModel{
		lines: strings.Split(strings.TrimRight(table, "\n"), "\n"),
		count: count,
	}
}

func (lm listingModel) Init() tea.Cmd {
	return nil
}

func (lm listingModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		lm.height = msg.Height
		lm.width = msg.Width

		if lm.offset > lm.maxOffset() {
			lm.offset = lm.maxOffset()
		}

		return lm, nil

	case tea.KeyMsg:
		return lm.handleKeyPress(msg)
	}

	return lm, nil
}

func (lm listingModel) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	//nolint:exhaustive // only navigation keys are handled
	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		lm.quitting = true
		return lm, tea.Quit
	default:
	}

	switch msg.String() {
	case "q":
		lm.quitting = true
		return lm, tea.Quit

	case "down", "j":
		lm.offset = min(lm.offset+1, lm.maxOffset())

	case "up", "k":
		lm.offset = max(lm.offset-1, 0)

	case "g", "home":
		lm.offset = 0

	case "G", "end":
		lm.offset = lm.maxOffset()

	case "d", "pgdown":
		lm.offset = min(lm.offset+lm.itemsPerPage(), lm.maxOffset())

	case "u", "pgup":
		lm.offset = max(lm.offset-lm.itemsPerPage(), 0)
	}

	return lm, nil
}

func (lm listingModel) itemsPerPage() int {
	if lm.height == 0 {
		return len(lm.lines)
	}

	return max(lm.height-listingReserved, 1)
}

func (lm listingModel) maxOffset() int {
	return max(len(lm.lines)-lm.itemsPerPage(), 0)
}

func (lm listingModel) needsPagination() bool {
	return lm.height > 0 && len(lm.lines) > lm.itemsPerPage()
}

func (lm listingModel) View() string {
	if lm.quitting {
		return ""
	}

	var b strings.Builder

	visible := lm.lines
	if lm.needsPagination() {
		end := min(lm.offset+lm.itemsPerPage(), len(lm.lines))
		visible = lm.lines[lm.offset:end]
	}

	for _, line := range visible {
		b.WriteString(line)
		b.WriteString("\n")
	}

	if lm.needsPagination() {
		fmt.Fprintf(&b, "\n  Lines %d-%d of %d | %d mutants\n",
			lm.offset+1, min(lm.offset+lm.itemsPerPage(), len(lm.lines)), len(lm.lines), lm.count)
		b.WriteString("  ↑/k: up | ↓/j: down | g: top | G: bottom | q: quit\n")
	}

	return b.String()
}
