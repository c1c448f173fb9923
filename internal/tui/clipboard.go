package tui

import (
	"errors"

	"github.com/atotto/clipboard"
)

// Clipboard receives copied results.
type Clipboard interface {
	WriteAll(text string) error
}

// ErrClipboardUnavailable is returned when no system clipboard can be used.
var ErrClipboardUnavailable = errors.New("clipboard unavailable")

// SystemClipboard writes to the OS clipboard.
type SystemClipboard struct{}

// WriteAll copies text to the OS clipboard.
func (SystemClipboard) WriteAll(text string) error {
	if clipboard.Unsupported {
		return ErrClipboardUnavailable
	}
	return clipboard.WriteAll(text)
}

// DisabledClipboard rejects every copy.
type DisabledClipboard struct{}

// WriteAll always fails with ErrClipboardUnavailable.
func (DisabledClipboard) WriteAll(string) error {
	return ErrClipboardUnavailable
}
