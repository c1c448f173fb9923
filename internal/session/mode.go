package session

// Mode is the input mode of a Session.
type Mode int

const (
	// ModeNormal accepts editing and navigation.
	ModeNormal Mode = iota
	// ModeModal shows the help overlay; editing and navigation are
	// suppressed until the modal is closed.
	ModeModal
)

func (m Mode) String() string {
	switch m {
	case ModeNormal:
		return "normal"
	case ModeModal:
		return "modal"
	default:
		return "unknown"
	}
}

// whenNormal is the single dispatch gate for mode-dependent operations.
func (s *Session) whenNormal(fn func()) {
	if s.mode != ModeNormal {
		return
	}
	fn()
}
