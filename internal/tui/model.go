// Package tui is the interactive terminal front end of the calculator. It
// translates terminal events into session operations and renders session
// state; it holds no calculator state of its own.
package tui

import (
	"log/slog"
	"os"
	"strconv"
	"unicode"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"

	"github.com/joeycumines/termcalc/internal/session"
	"github.com/joeycumines/termcalc/internal/termui/scrollbar"
)

// Model is the bubbletea model driving a session.
type Model struct {
	session   *session.Session
	keys      KeyMap
	help      help.Model
	styles    Styles
	renderer  *lipgloss.Renderer
	scroll    scrollbar.Model
	clipboard Clipboard
	logger    *slog.Logger

	// zones maps screen cells to history rows for click selection.
	zones      *zone.Manager
	zonePrefix string

	width  int
	height int
	notice string
}

// Option configures a Model.
type Option func(*Model)

// WithRenderer sets the renderer used for all styles.
func WithRenderer(r *lipgloss.Renderer) Option {
	return func(m *Model) {
		if r != nil {
			m.renderer = r
		}
	}
}

// WithClipboard sets the copy target.
func WithClipboard(c Clipboard) Option {
	return func(m *Model) {
		if c != nil {
			m.clipboard = c
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Model) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithKeyMap replaces DefaultKeyMap.
func WithKeyMap(k KeyMap) Option {
	return func(m *Model) {
		m.keys = k
	}
}

// New creates a model for s.
func New(s *session.Session, opts ...Option) Model {
	m := Model{
		session:   s,
		keys:      DefaultKeyMap,
		help:      help.New(),
		clipboard: SystemClipboard{},
		logger:    slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(&m)
	}
	if m.renderer == nil {
		m.renderer = NewRenderer(os.Stdout, ColorAuto)
	}
	m.styles = NewStyles(m.renderer)
	m.help.Styles = m.styles.Help
	m.scroll = scrollbar.New(scrollbar.WithStyles(m.styles.ScrollThumb, m.styles.ScrollTrack))
	m.zones = zone.New()
	m.zonePrefix = m.zones.NewPrefix()
	return m
}

// Close stops the zone tracking started by New.
func (m Model) Close() {
	m.zones.Close()
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model. Every event maps to at most one session
// operation; the program quits once the session requests it.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width

	case tea.MouseMsg:
		if msg.Action == tea.MouseActionPress {
			switch msg.Button {
			case tea.MouseButtonWheelUp:
				m.session.SelectPrevious()
			case tea.MouseButtonWheelDown:
				m.session.SelectNext()
			case tea.MouseButtonLeft:
				m.selectAt(msg)
			}
		}

	case tea.KeyMsg:
		m.notice = ""
		m.handleKey(msg)
	}

	m.syncScroll()
	if m.session.QuitRequested() {
		return m, tea.Quit
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) {
	s := m.session

	switch {
	case key.Matches(msg, m.keys.Quit):
		s.Quit()
	case key.Matches(msg, m.keys.Help):
		s.ToggleHelp()
	case key.Matches(msg, m.keys.Close):
		if s.HelpVisible() {
			s.ToggleHelp()
		} else {
			s.Quit()
		}
	case key.Matches(msg, m.keys.Copy):
		if !s.HelpVisible() {
			m.copySelected()
		}
	case key.Matches(msg, m.keys.Submit):
		s.Submit()
	case key.Matches(msg, m.keys.Backspace):
		s.Backspace()
	case key.Matches(msg, m.keys.Older):
		s.SelectPrevious()
	case key.Matches(msg, m.keys.Newer):
		s.SelectNext()
	case msg.Type == tea.KeySpace:
		s.PushChar(' ')
	case msg.Type == tea.KeyRunes:
		// a paste arrives as one message, so the help key is filtered here too
		for _, r := range msg.Runes {
			if !unicode.IsControl(r) && r != helpRune {
				s.PushChar(r)
			}
		}
	}
}

// selectAt selects the visible history row under a click, stepping the
// selection one entry at a time so the session's rules still apply.
func (m *Model) selectAt(msg tea.MouseMsg) {
	if m.session.HelpVisible() {
		return
	}
	start, end := m.scroll.Window()
	for i := start; i < end; i++ {
		if z := m.zones.Get(m.entryZone(i)); z == nil || !z.InBounds(msg) {
			continue
		}
		current, ok := m.session.Selected()
		if !ok {
			return
		}
		for ; current < i; current++ {
			m.session.SelectNext()
		}
		for ; current > i; current-- {
			m.session.SelectPrevious()
		}
		return
	}
}

func (m Model) entryZone(i int) string {
	return m.zonePrefix + "entry-" + strconv.Itoa(i)
}

// copySelected copies the selected result. Failures are logged and shown
// as a notice, never propagated.
func (m *Model) copySelected() {
	entry, ok := m.session.SelectedEntry()
	if !ok {
		return
	}
	if err := m.clipboard.WriteAll(entry.Result); err != nil {
		m.logger.Warn("copy to clipboard failed", "error", err)
		m.notice = "clipboard unavailable"
		return
	}
	m.logger.Debug("copied result to clipboard")
	m.notice = "copied " + entry.Result
}
