// Package session implements the calculator session state machine: the
// input buffer, command dispatch, the history and its selection cursor, the
// evaluation context, and persistence of the history across restarts.
//
// A Session is not safe for concurrent use. The adapter driving it must
// process one event at a time and only read state between events.
package session

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/joeycumines/termcalc/internal/storage"
)

// HistoryEntry is one submitted line and its outcome.
type HistoryEntry = storage.HistoryEntry

// ErrorPrefix is prepended to evaluation errors in history results.
const ErrorPrefix = "Error: "

// Evaluator evaluates an expression against a variables map, which it may
// mutate to record assignments.
type Evaluator interface {
	Evaluate(expression string, vars map[string]any) (fmt.Stringer, error)
}

// Store persists session snapshots. Load returns (nil, nil) when nothing
// has been stored.
type Store interface {
	Load() (*storage.Snapshot, error)
	Save(snapshot *storage.Snapshot) error
}

// Session owns all calculator state.
type Session struct {
	id        string
	evaluator Evaluator
	store     Store
	logger    *slog.Logger

	persistVariables bool

	input    []rune
	history  []HistoryEntry
	selected int // -1 when nothing is selected
	vars     map[string]any
	mode     Mode
	quit     bool
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the logger. Records are tagged with the session ID.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithPersistVariables controls whether the evaluation context is saved
// alongside the history and restored on load.
func WithPersistVariables(enabled bool) Option {
	return func(s *Session) {
		s.persistVariables = enabled
	}
}

// WithID overrides the generated session ID.
func WithID(id string) Option {
	return func(s *Session) {
		if id != "" {
			s.id = id
		}
	}
}

// New creates a Session and restores any history found in store. A missing
// or unreadable snapshot results in an empty session. The evaluator must not
// be nil; a nil store disables persistence.
func New(evaluator Evaluator, store Store, opts ...Option) *Session {
	s := &Session{
		id:        uuid.NewString(),
		evaluator: evaluator,
		store:     store,
		logger:    slog.New(slog.DiscardHandler),
		selected:  -1,
		vars:      make(map[string]any),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("session_id", s.id)
	s.load()
	return s
}

func (s *Session) load() {
	if s.store == nil {
		return
	}

	snapshot, err := s.store.Load()
	if err != nil {
		s.logger.Warn("discarding unreadable session state", "error", err)
		return
	}
	if snapshot == nil {
		s.logger.Debug("no saved session state")
		return
	}

	s.history = slices.Clone(snapshot.History)
	if len(s.history) > 0 {
		s.selected = len(s.history) - 1
	}
	if s.persistVariables && snapshot.Variables != nil {
		s.vars = maps.Clone(snapshot.Variables)
	}

	s.logger.Info("restored session state",
		"entries", len(s.history),
		"variables", len(s.vars),
		"from_session", snapshot.SessionID)
}

func (s *Session) save() {
	if s.store == nil {
		return
	}

	snapshot := &storage.Snapshot{
		SessionID: s.id,
		History:   slices.Clone(s.history),
	}
	if s.persistVariables {
		snapshot.Variables = s.serializableVariables()
	}

	if err := s.store.Save(snapshot); err != nil {
		s.logger.Warn("failed to save session state", "error", err)
		return
	}
	s.logger.Info("saved session state", "entries", len(snapshot.History))
}

// serializableVariables drops values JSON cannot represent (NaN, Inf) so
// one bad variable cannot prevent the history from being saved.
func (s *Session) serializableVariables() map[string]any {
	out := make(map[string]any, len(s.vars))
	for name, value := range s.vars {
		if _, err := json.Marshal(value); err != nil {
			s.logger.Debug("variable not persisted", "name", name, "error", err)
			continue
		}
		out[name] = value
	}
	return out
}

// PushChar appends c to the input buffer.
func (s *Session) PushChar(c rune) {
	s.whenNormal(func() {
		s.input = append(s.input, c)
	})
}

// Backspace removes the last character of the input buffer, if any.
func (s *Session) Backspace() {
	s.whenNormal(func() {
		if len(s.input) > 0 {
			s.input = s.input[:len(s.input)-1]
		}
	})
}

// Submit commits the input buffer. While the modal is open it only closes
// the modal, leaving the input untouched. Blank input is ignored. Input
// starting with CommandPrefix is dispatched as a command; anything else is
// evaluated. The history records the input exactly as typed.
func (s *Session) Submit() {
	if s.mode == ModeModal {
		s.mode = ModeNormal
		return
	}

	raw := string(s.input)
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return
	}

	if strings.HasPrefix(trimmed, CommandPrefix) {
		s.dispatchCommand(raw, trimmed)
		return
	}

	entry := HistoryEntry{Expression: raw}
	value, err := s.evaluator.Evaluate(trimmed, s.vars)
	switch {
	case err != nil:
		entry.Result = ErrorPrefix + err.Error()
		entry.IsError = true
	case value == nil:
		entry.Result = "nil"
	default:
		entry.Result = value.String()
	}

	s.appendEntry(entry)
	s.input = s.input[:0]
}

// appendEntry appends and selects the new entry as one state change.
func (s *Session) appendEntry(entry HistoryEntry) {
	s.history = append(s.history, entry)
	s.selected = len(s.history) - 1
}

// SelectPrevious moves the selection towards older entries, wrapping from
// the oldest to the newest.
func (s *Session) SelectPrevious() {
	s.whenNormal(func() {
		n := len(s.history)
		switch {
		case n == 0:
		case s.selected < 0:
			s.selected = n - 1
		case s.selected == 0:
			s.selected = n - 1
		default:
			s.selected--
		}
	})
}

// SelectNext moves the selection towards newer entries, wrapping from the
// newest to the oldest.
func (s *Session) SelectNext() {
	s.whenNormal(func() {
		n := len(s.history)
		switch {
		case n == 0:
		case s.selected < 0:
			s.selected = 0
		case s.selected >= n-1:
			s.selected = 0
		default:
			s.selected++
		}
	})
}

// ToggleHelp opens or closes the help modal. It is never gated.
func (s *Session) ToggleHelp() {
	if s.mode == ModeModal {
		s.mode = ModeNormal
	} else {
		s.mode = ModeModal
	}
}

// Quit saves the history (best effort) and requests termination. It is
// never gated.
func (s *Session) Quit() {
	s.save()
	s.quit = true
}

// ID returns the session ID used to correlate log records.
func (s *Session) ID() string {
	return s.id
}

// Input returns the current input buffer.
func (s *Session) Input() string {
	return string(s.input)
}

// History returns a copy of the history, oldest first.
func (s *Session) History() []HistoryEntry {
	return slices.Clone(s.history)
}

// Len returns the number of history entries.
func (s *Session) Len() int {
	return len(s.history)
}

// Selected returns the selected history index, if any.
func (s *Session) Selected() (int, bool) {
	if s.selected < 0 || s.selected >= len(s.history) {
		return 0, false
	}
	return s.selected, true
}

// SelectedEntry returns the selected history entry, if any.
func (s *Session) SelectedEntry() (HistoryEntry, bool) {
	i, ok := s.Selected()
	if !ok {
		return HistoryEntry{}, false
	}
	return s.history[i], true
}

// Mode returns the current input mode.
func (s *Session) Mode() Mode {
	return s.mode
}

// HelpVisible reports whether the help modal is open.
func (s *Session) HelpVisible() bool {
	return s.mode == ModeModal
}

// QuitRequested reports whether the session has been asked to terminate.
func (s *Session) QuitRequested() bool {
	return s.quit
}

// Variables returns a copy of the evaluation context.
func (s *Session) Variables() map[string]any {
	return maps.Clone(s.vars)
}
