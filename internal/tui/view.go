package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rivo/uniseg"

	"github.com/joeycumines/termcalc/internal/session"
)

const (
	inputPaneHeight = 3
	footerHeight    = 1
	selectionMarker = "> "
	ellipsis        = "…"
)

// historyRows is the number of history entries visible at once.
func (m Model) historyRows() int {
	return max(m.height-inputPaneHeight-footerHeight-2, 1)
}

// syncScroll keeps the selected entry inside the history window.
func (m *Model) syncScroll() {
	m.scroll.SetSize(m.session.Len(), m.historyRows())
	if i, ok := m.session.Selected(); ok {
		m.scroll.Follow(i)
	}
}

// View implements tea.Model.
func (m Model) View() string {
	if m.width <= 0 || m.height <= 0 {
		return ""
	}
	if m.session.HelpVisible() {
		return m.renderer.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, m.helpModal())
	}
	return m.zones.Scan(lipgloss.JoinVertical(lipgloss.Left,
		m.historyPane(),
		m.inputPane(),
		m.footer(),
	))
}

func (m Model) historyPane() string {
	inner := max(m.width-2, 1)
	rows := m.historyRows()
	// marker, gap and scrollbar
	textWidth := max(inner-len(selectionMarker)-2, 1)

	history := m.session.History()
	selected, hasSelection := m.session.Selected()
	start, end := m.scroll.Window()

	lines := make([]string, 0, rows)
	if len(history) == 0 {
		lines = append(lines, m.styles.Pane.Render(truncate("  Type an expression and press enter.", inner-2)))
	}
	for i := start; i < end && i < len(history); i++ {
		entry := history[i]
		text := truncate(entry.Expression+" = "+entry.Result, textWidth)
		pad := strings.Repeat(" ", textWidth-uniseg.StringWidth(text))

		var line string
		switch {
		case hasSelection && i == selected:
			line = m.styles.Selected.Render(selectionMarker+text) + pad
		case entry.IsError:
			line = "  " + m.styles.Error.Render(text) + pad
		default:
			line = "  " + m.styles.Entry.Render(text) + pad
		}
		lines = append(lines, m.zones.Mark(m.entryZone(i), line))
	}
	for len(lines) < rows {
		lines = append(lines, "")
	}

	body := strings.Join(lines, "\n")
	if m.scroll.Scrollable() {
		body = lipgloss.JoinHorizontal(lipgloss.Top, body, " ", m.scroll.View())
	}
	return m.pane("History", body, inner)
}

func (m Model) inputPane() string {
	inner := max(m.width-2, 1)
	text := tail(m.session.Input(), inner-1)
	return m.pane("Input", m.styles.Input.Render(text)+m.styles.Cursor.Render(" "), inner)
}

func (m Model) footer() string {
	if m.notice != "" {
		return m.styles.Notice.Render(truncate(m.notice, m.width))
	}
	return m.help.View(m.keys)
}

// pane draws a rounded box with title set into the top edge.
func (m Model) pane(title, body string, inner int) string {
	border := lipgloss.RoundedBorder()
	edge := m.styles.Pane

	title = truncate(title, max(inner-3, 0))
	fill := max(inner-3-uniseg.StringWidth(title), 0)
	top := edge.Render(border.TopLeft+border.Top+" ") +
		m.styles.Title.Render(title) +
		edge.Render(" "+strings.Repeat(border.Top, fill)+border.TopRight)

	box := m.renderer.NewStyle().
		Border(border).
		BorderTop(false).
		BorderForeground(edge.GetForeground()).
		Width(inner).
		Render(body)

	return top + "\n" + box
}

func (m Model) helpModal() string {
	s := m.styles
	var b strings.Builder

	b.WriteString(s.ModalTitle.Render("Comprehensive Calculator"))
	b.WriteString("\n\n")
	b.WriteString(s.ModalHeading.Render("Controls:"))
	b.WriteString("\n")
	for _, group := range m.keys.FullHelp() {
		for _, binding := range group {
			if !binding.Enabled() {
				continue
			}
			h := binding.Help()
			b.WriteString("  " + s.ModalKey.Render(padRight(h.Key, 12)) + h.Desc + "\n")
		}
	}
	b.WriteString("\n")
	b.WriteString(s.ModalHeading.Render("Commands:"))
	for _, c := range session.Commands() {
		b.WriteString("\n  " + s.ModalKey.Render(padRight(strings.Join(c.Names, ", "), 12)) + c.Description)
	}

	return s.Modal.Render(b.String())
}

func padRight(s string, width int) string {
	return s + strings.Repeat(" ", max(width-uniseg.StringWidth(s), 1))
}

// truncate shortens s to at most width display cells, marking the cut with
// an ellipsis. Grapheme clusters are never split.
func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if uniseg.StringWidth(s) <= width {
		return s
	}
	var b strings.Builder
	used := 0
	g := uniseg.NewGraphemes(s)
	for g.Next() {
		w := g.Width()
		if used+w > width-1 {
			break
		}
		b.WriteString(g.Str())
		used += w
	}
	return b.String() + ellipsis
}

// tail keeps the end of s within width display cells, marking the cut with
// a leading ellipsis.
func tail(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if uniseg.StringWidth(s) <= width {
		return s
	}
	var clusters []string
	var widths []int
	g := uniseg.NewGraphemes(s)
	for g.Next() {
		clusters = append(clusters, g.Str())
		widths = append(widths, g.Width())
	}
	used, i := 0, len(clusters)
	for i > 0 && used+widths[i-1] <= width-1 {
		i--
		used += widths[i]
	}
	return ellipsis + strings.Join(clusters[i:], "")
}
