package controller

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	m "forgemut.dev/pkg/forgemut/internal/model"
)

func newTestCommand() (*cobra.Command, *bytes.Buffer) {
	out := &bytes.Buffer{}
	cmd := &cobra.Command{Use: "test"}
	cmd.SetOut(out)

	return cmd, out
}

func TestIsTTY(t *testing.T) {
	assert.False(t, IsTTY(&bytes.Buffer{}))
}

func TestNewUI_NonTerminal(t *testing.T) {
	cmd, _ := newTestCommand()
	assert.IsType(t, &SimpleUI{}, NewUI(cmd))
}

func TestSimpleUI_DisplayCorpusListing(t *testing.T) {
	cmd, out := newTestCommand()
	ui := NewSimpleUI(cmd)

	err := ui.DisplayCorpusListing(context.Background(), []m.CorpusEntry{
		{ID: 1, Target: "src/Token.sol", BaseName: "Token", Decision: DecisionTest},
		{ID: 2, Target: "src/Vault.sol", BaseName: "Vault", Decision: m.SkippedLogged.String()},
	})
	require.NoError(t, err)

	got := out.String()
	assert.Contains(t, got, "src/Token.sol")
	assert.Contains(t, got, "skipped (log)")
	assert.Contains(t, got, "TOTAL 2")
	assert.Contains(t, got, "1 TO TEST")
}

func TestSimpleUI_DisplayCorpusListing_Empty(t *testing.T) {
	cmd, out := newTestCommand()

	require.NoError(t, NewSimpleUI(cmd).DisplayCorpusListing(context.Background(), nil))
	assert.Equal(t, "No mutant found in corpus\n", out.String())
}

func TestSimpleUI_ProgressAndMessages(t *testing.T) {
	cmd, out := newTestCommand()
	ui := NewSimpleUI(cmd)
	ctx := context.Background()

	require.NoError(t, ui.Start(ctx))
	ui.DisplayProgress(ctx, 3, 2, 4)
	ui.DisplayMessage(ctx, "hello")
	_, _ = fmt.Fprint(ui.Console(), "echo\n")
	ui.Close(ctx)

	assert.Equal(t, "Processing mutant: 3 (2/4)\nhello\necho\n", out.String())
}

func TestSimpleUI_CancelledContext(t *testing.T) {
	cmd, out := newTestCommand()
	ui := NewSimpleUI(cmd)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Error(t, ui.Start(ctx))
	ui.DisplayProgress(ctx, 1, 1, 1)
	ui.DisplayMessage(ctx, "dropped")
	assert.Empty(t, out.String())
}

func TestSimpleUI_DisplayReport(t *testing.T) {
	cmd, out := newTestCommand()

	report := m.RunReport{
		RunID:      "0b5f",
		StartedAt:  time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		FinishedAt: time.Date(2026, 1, 2, 3, 5, 5, 0, time.UTC),
		Command:    "forge test",
		Total:      2,
		Killed:     1,
		Survived:   1,
		Score:      "50.00%",
		Mutants: []m.MutantRecord{
			{ID: 1, Target: "src/Token.sol", Status: "killed"},
			{ID: 2, Target: "src/Token.sol", Status: "survived"},
		},
	}

	require.NoError(t, NewSimpleUI(cmd).DisplayReport(context.Background(), report))

	got := out.String()
	assert.Contains(t, got, "Run 0b5f")
	assert.Contains(t, got, "Command: forge test")
	assert.Contains(t, got, "survived")
	assert.Contains(t, got, "50.00%")
}

func TestRenderProgress(t *testing.T) {
	bar := newProgressBar("6")

	got := ansi.Strip(renderProgress(bar, PlainPalette(), 7, 2, 5))
	assert.Equal(t, "["+strings.Repeat("*", 20)+strings.Repeat("-", 30)+"]  40% Processing mutant: 7", got)

	got = ansi.Strip(renderProgress(bar, PlainPalette(), 0, 0, 0))
	assert.Equal(t, "["+strings.Repeat("-", 50)+"]   0% ", got)
}

func TestTerminalUI_ConsoleRedrawsProgress(t *testing.T) {
	cmd, out := newTestCommand()
	ui := NewTerminalUI(cmd)
	ctx := context.Background()

	ui.DisplayProgress(ctx, 1, 1, 2)
	out.Reset()

	_, err := fmt.Fprint(ui.Console(), "runner output\n")
	require.NoError(t, err)

	got := ansi.Strip(out.String())
	assert.Contains(t, got, "runner output\n[")
	assert.Contains(t, got, "Processing mutant: 1")

	out.Reset()
	ui.DisplaySummary(ctx, summaryWith(map[m.MutantID]m.MutantOutcome{1: m.Killed}, 1))
	got = ansi.Strip(out.String())
	assert.True(t, strings.HasPrefix(got, "\n"))
	assert.Contains(t, got, "Congratulations! All mutants were detected.")
}

func TestListingModel_Pagination(t *testing.T) {
	lines := make([]string, 30)
	for i := range lines {
		lines[i] = fmt.Sprintf("row %d", i)
	}

	model := newListingModel(strings.Join(lines, "\n")+"\n", 28)
	assert.False(t, model.needsPagination())

	next, _ := model.Update(tea.WindowSizeMsg{Width: 80, Height: 15})
	model = next.(listingModel)
	assert.True(t, model.needsPagination())
	assert.Equal(t, 10, model.itemsPerPage())
	assert.Contains(t, model.View(), "Lines 1-10 of 30")

	next, _ = model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("G")})
	model = next.(listingModel)
	assert.Equal(t, 20, model.offset)
	assert.Contains(t, model.View(), "row 29")

	next, _ = model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("u")})
	model = next.(listingModel)
	assert.Equal(t, 10, model.offset)

	next, _ = model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("k")})
	model = next.(listingModel)
	assert.Equal(t, 9, model.offset)

	next, cmd := model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	model = next.(listingModel)
	assert.True(t, model.quitting)
	assert.NotNil(t, cmd)
}
