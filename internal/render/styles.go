// Package render draws conversations and folder listings in the terminal.
package render

import (
	"io"

	"github.com/charmbracelet/lipgloss"
)

type styles struct {
	userRole  lipgloss.Style
	aiRole    lipgloss.Style
	notice    lipgloss.Style
	title     lipgloss.Style
	header    lipgloss.Style
	dim       lipgloss.Style
	queued    lipgloss.Style
	processed lipgloss.Style
}

// newStyles builds styles for w so that color is dropped when w is not a terminal.
func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	return styles{
		userRole: r.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("255")).
			Background(lipgloss.Color("28")),
		aiRole: r.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("255")).
			Background(lipgloss.Color("208")),
		notice: r.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("196")),
		title: r.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")),
		header: r.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("252")),
		dim: r.NewStyle().
			Foreground(lipgloss.Color("242")),
		queued: r.NewStyle().
			Foreground(lipgloss.Color("214")),
		processed: r.NewStyle().
			Foreground(lipgloss.Color("42")),
	}
}
