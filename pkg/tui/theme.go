package tui

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme holds the colours the painter uses for classed elements.
type Theme struct {
	Accent lipgloss.Color
	Muted  lipgloss.Color
	Error  lipgloss.Color
}

// DefaultTheme matches the colours used across the app's panels.
func DefaultTheme() Theme {
	return Theme{
		Accent: lipgloss.Color("62"),
		Muted:  lipgloss.Color("241"),
		Error:  lipgloss.Color("196"),
	}
}

// cellStyle is the comparable look of one cell. Runs of equal cellStyle are
// rendered with one lipgloss style.
type cellStyle struct {
	fg        lipgloss.Color
	bold      bool
	faint     bool
	reverse   bool
	underline bool
}

// apply merges the classes of an element into the inherited style.
func (t Theme) apply(st cellStyle, classes []string) cellStyle {
	for _, c := range classes {
		switch c {
		case "selected":
			st.reverse = true
		case "muted":
			st.fg, st.faint = t.Muted, true
		case "error":
			st.fg = t.Error
		case "accent":
			st.fg = t.Accent
		case "bold", "title":
			st.bold = true
		case "underline":
			st.underline = true
		}
	}
	return st
}

func (st cellStyle) render(r *lipgloss.Renderer, s string) string {
	if st == (cellStyle{}) {
		return s
	}
	ls := r.NewStyle().
		Bold(st.bold).
		Faint(st.faint).
		Reverse(st.reverse).
		Underline(st.underline)
	if st.fg != "" {
		ls = ls.Foreground(st.fg)
	}
	return ls.Render(s)
}

func borderFor(kind string) (lipgloss.Border, bool) {
	switch kind {
	case "rounded":
		return lipgloss.RoundedBorder(), true
	case "normal":
		return lipgloss.NormalBorder(), true
	case "thick":
		return lipgloss.ThickBorder(), true
	case "double":
		return lipgloss.DoubleBorder(), true
	}
	return lipgloss.Border{}, false
}
