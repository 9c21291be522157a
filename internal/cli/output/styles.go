package output

import (
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Styles holds the lipgloss styles used across commands.
type Styles struct {
	Header1 lipgloss.Style
	Header2 lipgloss.Style
	Bold    lipgloss.Style
	Muted   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Info    lipgloss.Style

	// Verdict styles for compliance cells.
	StatusOK        lipgloss.Style
	StatusViolation lipgloss.Style
	StatusUnknown   lipgloss.Style
}

// NewStyles builds styles bound to w. With color off every style renders
// its input unchanged.
func NewStyles(w io.Writer, color bool) *Styles {
	renderer := lipgloss.NewRenderer(w)
	if !color {
		renderer.SetColorProfile(termenv.Ascii)
	}

	s := renderer.NewStyle
	return &Styles{
		Header1:         s().Bold(true).Foreground(lipgloss.Color("12")),
		Header2:         s().Bold(true).Foreground(lipgloss.Color("14")),
		Bold:            s().Bold(true),
		Muted:           s().Foreground(lipgloss.Color("8")),
		Success:         s().Foreground(lipgloss.Color("10")),
		Warning:         s().Foreground(lipgloss.Color("11")),
		Error:           s().Foreground(lipgloss.Color("9")),
		Info:            s().Foreground(lipgloss.Color("12")),
		StatusOK:        s().Foreground(lipgloss.Color("10")),
		StatusViolation: s().Bold(true).Foreground(lipgloss.Color("9")),
		StatusUnknown:   s().Foreground(lipgloss.Color("11")),
	}
}
