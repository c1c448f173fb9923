package termtest

import (
	"fmt"
	"regexp"
	"strings"
)

var keySequences = map[string]string{
	"enter":     "\r",
	"tab":       "\t",
	"backspace": "\x7f",
	"esc":       "\x1b",
	"escape":    "\x1b",
	"space":     " ",
	"up":        "\x1b[A",
	"down":      "\x1b[B",
	"right":     "\x1b[C",
	"left":      "\x1b[D",
	"f1":        "\x1bOP",
	"ctrl+c":    "\x03",
	"ctrl+d":    "\x04",
	"ctrl+y":    "\x19",
	"ctrl+z":    "\x1a",
}

// KeySequence returns the bytes a terminal sends for the named key, e.g.
// "enter", "up", "f1" or "ctrl+c". Names are case-insensitive.
func KeySequence(name string) (string, error) {
	if seq, ok := keySequences[strings.ToLower(name)]; ok {
		return seq, nil
	}
	return "", fmt.Errorf("unknown key sequence: %s", name)
}

// WheelSequence returns the SGR encoding of a wheel event at the 1-indexed
// cell x, y. Wheel events are press-only.
func WheelSequence(x, y int, direction string) (string, error) {
	var button int
	switch direction {
	case "up":
		button = 64
	case "down":
		button = 65
	default:
		return "", fmt.Errorf("unknown scroll direction: %s (use 'up' or 'down')", direction)
	}
	return fmt.Sprintf("\x1b[<%d;%d;%dM", button, x, y), nil
}

// ClickSequence returns the SGR encoding of a left button press and release
// at the 1-indexed cell x, y.
func ClickSequence(x, y int) string {
	return fmt.Sprintf("\x1b[<0;%d;%dM\x1b[<0;%d;%dm", x, y, x, y)
}

// CSI and OSC sequences, plus the two-byte ESC forms.
var escapeSequence = regexp.MustCompile(`\x1b\[[0-?]*[ -/]*[@-~]|\x1b\][^\x07\x1b]*(?:\x07|\x1b\\)|\x1b[()][0-9A-Za-z]|\x1b[=>78DEHMNOZc]`)

// Normalize strips terminal escape sequences and carriage returns, leaving
// the printable text.
func Normalize(s string) string {
	s = escapeSequence.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "")
}
