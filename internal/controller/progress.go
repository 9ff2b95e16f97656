package controller

import (
	"fmt"
	"math"

	"github.com/charmbracelet/bubbles/progress"

	m "forgemut.dev/pkg/forgemut/internal/model"
)

const progressWidth = 50

// DecisionTest is the listing decision of a mutant that will be tested.
const DecisionTest = "test"

func newProgressBar(color string) progress.Model {
	bar := progress.New(
		progress.WithWidth(progressWidth),
		progress.WithoutPercentage(),
		progress.WithSolidFill(color),
	)
	bar.Full = '*'
	bar.Empty = '-'

	return bar
}

// renderProgress draws "[***---]  40% Processing mutant: 7".
func renderProgress(bar progress.Model, p Palette, current m.MutantID, done, total int) string {
	ratio := 0.0
	if total > 0 {
		ratio = math.Min(1, float64(done)/float64(total))
	}

	line := fmt.Sprintf("[%s] %3d%% ", bar.ViewAs(ratio), int(math.Round(ratio*100)))
	if current > 0 {
		line += p.Bold("Processing mutant: " + p.Cyan(current.String()))
	}

	return line
}
