// Package scrollbar renders a vertical scrollbar for a list viewed through a
// fixed-height window, and tracks the window offset for that list.
package scrollbar

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Model is the scroll state of a list of Total rows shown Visible rows at a
// time, starting at row Offset.
type Model struct {
	Total   int
	Visible int
	Offset  int

	ThumbStyle lipgloss.Style
	TrackStyle lipgloss.Style
	ThumbChar  string
	TrackChar  string
}

// Option configures a Model in New.
type Option func(*Model)

// New creates a scrollbar with default glyphs and colors.
func New(opts ...Option) Model {
	m := Model{
		ThumbChar:  "┃",
		TrackChar:  "│",
		ThumbStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("63")),
		TrackStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
	}
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

// WithStyles sets the thumb and track styles.
func WithStyles(thumb, track lipgloss.Style) Option {
	return func(m *Model) {
		m.ThumbStyle = thumb
		m.TrackStyle = track
	}
}

// WithChars sets the thumb and track glyphs.
func WithChars(thumb, track string) Option {
	return func(m *Model) {
		m.ThumbChar = thumb
		m.TrackChar = track
	}
}

// SetSize updates the list length and window height, keeping Offset valid.
func (m *Model) SetSize(total, visible int) {
	m.Total = max(total, 0)
	m.Visible = max(visible, 0)
	m.Offset = m.clampOffset(m.Offset)
}

// Follow scrolls the minimum amount needed for row index to be inside the
// window. Negative indexes leave the offset unchanged.
func (m *Model) Follow(index int) {
	if index >= 0 && m.Visible > 0 {
		switch {
		case index < m.Offset:
			m.Offset = index
		case index >= m.Offset+m.Visible:
			m.Offset = index - m.Visible + 1
		}
	}
	m.Offset = m.clampOffset(m.Offset)
}

// Scrollable reports whether the list is longer than the window.
func (m Model) Scrollable() bool {
	return m.Visible > 0 && m.Total > m.Visible
}

// Window returns the half-open row range [start, end) currently visible.
func (m Model) Window() (start, end int) {
	start = m.clampOffset(m.Offset)
	end = min(start+m.Visible, m.Total)
	return start, max(end, start)
}

func (m Model) clampOffset(offset int) int {
	maxOffset := max(m.Total-m.Visible, 0)
	return min(max(offset, 0), maxOffset)
}

// Thumb returns the first row and height of the thumb within the track.
// A list that fits the window gets a thumb spanning the whole track.
func (m Model) Thumb() (top, height int) {
	if m.Visible <= 0 {
		return 0, 0
	}
	if !m.Scrollable() {
		return 0, m.Visible
	}

	// proportional to the visible fraction, at least one row
	height = min(max(m.Visible*m.Visible/m.Total, 1), m.Visible)

	maxTop := m.Visible - height
	maxOffset := m.Total - m.Visible
	top = m.clampOffset(m.Offset) * maxTop / maxOffset
	return min(top, maxTop), height
}

// View renders the track, exactly Visible rows tall.
func (m Model) View() string {
	if m.Visible <= 0 {
		return ""
	}

	top, height := m.Thumb()
	thumb := visibleGlyph(m.ThumbChar)
	track := visibleGlyph(m.TrackChar)

	rows := make([]string, m.Visible)
	for i := range rows {
		if i >= top && i < top+height {
			rows[i] = m.ThumbStyle.Render(thumb)
		} else {
			rows[i] = m.TrackStyle.Render(track)
		}
	}
	return strings.Join(rows, "\n")
}

// visibleGlyph swaps a plain space for a non-breaking one so a background
// style is still emitted for it.
func visibleGlyph(s string) string {
	if s == " " {
		return "\u00A0"
	}
	return s
}
