package controller

import "github.com/charmbracelet/lipgloss"

// Palette colors the fragments of rendered output.
type Palette struct {
	Bold   func(string) string
	Blue   func(string) string
	Cyan   func(string) string
	Green  func(string) string
	Red    func(string) string
	Yellow func(string) string
}

// PlainPalette leaves text untouched. It is used for log and result files.
func PlainPalette() Palette {
	plain := func(s string) string { return s }

	return Palette{Bold: plain, Blue: plain, Cyan: plain, Green: plain, Red: plain, Yellow: plain}
}

// LipglossPalette colors text with ANSI terminal colors.
func LipglossPalette() Palette {
	color := func(c string) func(string) string {
		style := lipgloss.NewStyle().Foreground(lipgloss.Color(c))
		return func(s string) string { return style.Render(s) }
	}

	bold := lipgloss.NewStyle().Bold(true)

	return Palette{
		Bold:   func(s string) string { return bold.Render(s) },
		Blue:   color("4"),
		Cyan:   color("6"),
		Green:  color("2"),
		Red:    color("1"),
		Yellow: color("3"),
	}
}
