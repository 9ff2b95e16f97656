package domain

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	m "forgemut.dev/pkg/forgemut/internal/model"
)

// FormatList renders ids in ascending order, collapsing consecutive runs to
// "a-b". An empty list renders as "none".
func FormatList(ids []m.MutantID) string {
	sorted := uniqueSorted(ids)
	if len(sorted) == 0 {
		return "none"
	}

	parts := make([]string, 0, len(sorted))
	start, end := sorted[0], sorted[0]

	flush := func() {
		if start == end {
			parts = append(parts, start.String())
		} else {
			parts = append(parts, fmt.Sprintf("%s-%s", start, end))
		}
	}

	for _, id := range sorted[1:] {
		if id == end+1 {
			end = id
			continue
		}

		flush()

		start, end = id, id
	}

	flush()

	return strings.Join(parts, ", ")
}

// MutationScore returns killed/tested as a percentage with two decimals, or
// "N/A." when nothing was tested.
func MutationScore(tally *m.RunTally) string {
	if tally == nil || tally.Tested() == 0 {
		return "N/A."
	}

	return fmt.Sprintf("%.2f%%", float64(tally.Killed())/float64(tally.Tested())*100)
}

// FormatDuration renders d as "<h>h <m>m <s>s <ms>ms".
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}

	ms := d.Milliseconds()

	return fmt.Sprintf("%dh %dm %ds %dms", ms/3_600_000, (ms%3_600_000)/60_000, (ms%60_000)/1000, ms%1000)
}

// RunnerCommand renders the runner invocation as it appears in the summary.
func RunnerCommand(binary string, opts m.RunnerOptions) string {
	if binary == "" {
		binary = "forge"
	}

	var b strings.Builder

	b.WriteString(binary)
	b.WriteString(" test")

	for _, opt := range []struct{ flag, value string }{
		{"--match-contract", opts.MatchContract},
		{"--no-match-contract", opts.NoMatchContract},
		{"--match-test", opts.MatchTest},
		{"--no-match-test", opts.NoMatchTest},
	} {
		if opt.value != "" {
			fmt.Fprintf(&b, " %s \"%s\"", opt.flag, opt.value)
		}
	}

	return b.String()
}

// SummaryInput gathers what a finished run knows about itself.
type SummaryInput struct {
	Elapsed       time.Duration
	Binary        string
	Options       m.RunnerOptions
	SkipLog       m.Path
	Skips         SkipSets
	RunnerSkipped []m.MutantID
	Tally         *m.RunTally
}

// BuildSummary formats the aggregate report of a run.
func BuildSummary(in SummaryInput) m.Summary {
	tally := in.Tally
	if tally == nil {
		tally = m.NewRunTally()
	}

	return m.Summary{
		Duration:       FormatDuration(in.Elapsed),
		Command:        RunnerCommand(in.Binary, in.Options),
		SkipLog:        skipLogName(in.SkipLog),
		LogSkipped:     FormatList(in.Skips.Logged),
		PatternSkipped: FormatList(in.Skips.Pattern),
		RunnerSkipped:  FormatList(in.RunnerSkipped),
		Tally:          *tally,
		Score:          MutationScore(tally),
	}
}

func skipLogName(path m.Path) string {
	if path == "" {
		return "mutants.log"
	}

	return filepath.Base(string(path))
}
