package controller

import (
	"fmt"
	"strings"

	m "forgemut.dev/pkg/forgemut/internal/model"
)

// RenderSummary formats the aggregate report of a run.
func RenderSummary(s m.Summary, p Palette) string {
	var b strings.Builder

	b.WriteString(p.Bold(fmt.Sprintf("\nTests over mutants run in : %s\n\n", s.Duration)))
	b.WriteString(p.Blue(fmt.Sprintf("with command : %s\n\n", s.Command)))

	b.WriteString(p.Blue(fmt.Sprintf("Mutants skipped in '%s': %s\n", s.SkipLog, s.LogSkipped)))
	b.WriteString(p.Blue(fmt.Sprintf("Mutants skipped not matching mutant pattern: %s\n", s.PatternSkipped)))
	b.WriteString(p.Blue(fmt.Sprintf("Mutants skipped due to no matching test pattern: %s\n\n", s.RunnerSkipped)))

	tally := s.Tally
	b.WriteString(p.Bold(fmt.Sprintf("Total of mutants : %s, skipped : %s, tested : %s of which killed : %s, survived : %s\n",
		p.Blue(fmt.Sprint(tally.Total())),
		p.Yellow(fmt.Sprint(tally.Skipped())),
		p.Cyan(fmt.Sprint(tally.Tested())),
		p.Green(fmt.Sprint(tally.Killed())),
		p.Red(fmt.Sprint(tally.Survived())),
	)))
	fmt.Fprintf(&b, "Mutation score: %s\n", s.Score)

	switch undetected := tally.Undetected(); {
	case tally.Tested() == 0:
		b.WriteString(p.Yellow("No mutant tested!\n\n"))
	case len(undetected) == 0:
		b.WriteString(p.Green("Congratulations! All mutants were detected.\n\n"))
	default:
		b.WriteString(p.Red(fmt.Sprintf("Undetected mutants: %s\n\n", m.JoinIDs(undetected))))
	}

	return b.String()
}
