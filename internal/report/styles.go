package report

import (
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/aezell/nodpts/internal/model"
)

// Color palette.
var (
	colorRed    = lipgloss.Color("#ff5555")
	colorGreen  = lipgloss.Color("#50fa7b")
	colorYellow = lipgloss.Color("#f1fa8c")
	colorBlue   = lipgloss.Color("#8be9fd")
	colorPurple = lipgloss.Color("#bd93f9")
	colorDim    = lipgloss.Color("#6272a4")
	colorOrange = lipgloss.Color("#ffb86c")
)

// styles are bound to the renderer of one output stream, so colour is only
// emitted when that stream is a terminal.
type styles struct {
	header   lipgloss.Style
	file     lipgloss.Style
	dim      lipgloss.Style
	high     lipgloss.Style
	medium   lipgloss.Style
	low      lipgloss.Style
	pass     lipgloss.Style
	fail     lipgloss.Style
	warn     lipgloss.Style
	rationale lipgloss.Style
}

func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	return styles{
		header:   r.NewStyle().Foreground(colorBlue).Bold(true),
		file:     r.NewStyle().Foreground(colorPurple),
		dim:      r.NewStyle().Foreground(colorDim),
		high:     r.NewStyle().Foreground(colorRed).Bold(true),
		medium:   r.NewStyle().Foreground(colorOrange),
		low:      r.NewStyle().Foreground(colorYellow),
		pass:     r.NewStyle().Foreground(colorGreen).Bold(true),
		fail:     r.NewStyle().Foreground(colorRed).Bold(true),
		warn:     r.NewStyle().Foreground(colorYellow),
		rationale: r.NewStyle().Foreground(colorDim).PaddingLeft(4),
	}
}

func (s styles) severity(sev model.Severity) lipgloss.Style {
	switch sev {
	case model.SeverityHigh:
		return s.high
	case model.SeverityMedium:
		return s.medium
	default:
		return s.low
	}
}

func severityIcon(sev model.Severity) string {
	switch sev {
	case model.SeverityHigh:
		return "●"
	case model.SeverityMedium:
		return "◐"
	default:
		return "○"
	}
}
