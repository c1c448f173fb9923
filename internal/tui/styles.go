package tui

import (
	"io"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Color modes accepted by NewRenderer.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// NewRenderer returns a lipgloss renderer for w honoring the color mode.
// Unknown modes behave like ColorAuto.
func NewRenderer(w io.Writer, mode string) *lipgloss.Renderer {
	r := lipgloss.NewRenderer(w)
	switch mode {
	case ColorNever:
		r.SetColorProfile(termenv.Ascii)
	case ColorAlways:
		if r.ColorProfile() == termenv.Ascii {
			r.SetColorProfile(termenv.ANSI256)
		}
	}
	return r
}

// Styles are the rendering styles of the calculator view.
type Styles struct {
	Pane     lipgloss.Style
	Title    lipgloss.Style
	Entry    lipgloss.Style
	Error    lipgloss.Style
	Selected lipgloss.Style
	Input    lipgloss.Style
	Cursor   lipgloss.Style
	Notice   lipgloss.Style

	Modal        lipgloss.Style
	ModalTitle   lipgloss.Style
	ModalHeading lipgloss.Style
	ModalKey     lipgloss.Style

	Help help.Styles

	ScrollThumb lipgloss.Style
	ScrollTrack lipgloss.Style
}

// NewStyles builds the styles on r.
func NewStyles(r *lipgloss.Renderer) Styles {
	var (
		cyan   = lipgloss.Color("6")
		red    = lipgloss.Color("1")
		yellow = lipgloss.Color("3")
		muted  = lipgloss.Color("240")
		white  = lipgloss.Color("7")
	)

	return Styles{
		Pane:     r.NewStyle().Foreground(muted),
		Title:    r.NewStyle().Bold(true),
		Entry:    r.NewStyle().Foreground(white),
		Error:    r.NewStyle().Foreground(red),
		Selected: r.NewStyle().Foreground(cyan).Bold(true),
		Input:    r.NewStyle().Foreground(yellow),
		Cursor:   r.NewStyle().Reverse(true),
		Notice:   r.NewStyle().Foreground(cyan).Italic(true),

		Modal: r.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(cyan).
			Padding(1, 2),
		ModalTitle:   r.NewStyle().Bold(true),
		ModalHeading: r.NewStyle().Foreground(cyan),
		ModalKey:     r.NewStyle().Bold(true),

		Help: help.Styles{
			ShortKey:       r.NewStyle().Foreground(lipgloss.Color("250")),
			ShortDesc:      r.NewStyle().Foreground(muted),
			ShortSeparator: r.NewStyle().Foreground(lipgloss.Color("237")),
			Ellipsis:       r.NewStyle().Foreground(muted),
			FullKey:        r.NewStyle().Foreground(lipgloss.Color("250")),
			FullDesc:       r.NewStyle().Foreground(muted),
			FullSeparator:  r.NewStyle().Foreground(lipgloss.Color("237")),
		},

		ScrollThumb: r.NewStyle().Foreground(cyan),
		ScrollTrack: r.NewStyle().Foreground(muted),
	}
}
