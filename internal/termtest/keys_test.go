package termtest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeySequence(t *testing.T) {
	tests := map[string]string{
		"enter":  "\r",
		"Enter":  "\r",
		"esc":    "\x1b",
		"up":     "\x1b[A",
		"down":   "\x1b[B",
		"f1":     "\x1bOP",
		"ctrl+c": "\x03",
		"ctrl+y": "\x19",
	}
	for name, want := range tests {
		got, err := KeySequence(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}

	_, err := KeySequence("nope")
	assert.Error(t, err)
}

func TestWheelSequence(t *testing.T) {
	up, err := WheelSequence(3, 7, "up")
	require.NoError(t, err)
	assert.Equal(t, "\x1b[<64;3;7M", up)

	down, err := WheelSequence(1, 1, "down")
	require.NoError(t, err)
	assert.Equal(t, "\x1b[<65;1;1M", down)

	_, err = WheelSequence(1, 1, "left")
	assert.Error(t, err)
}

func TestClickSequence(t *testing.T) {
	assert.Equal(t, "\x1b[<0;4;2M\x1b[<0;4;2m", ClickSequence(4, 2))
}

func TestNormalize(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{"Plain text", "hello world", "hello world"},
		{"Carriage return", "hello\rworld", "helloworld"},
		{"CRLF", "hello\r\nworld", "hello\nworld"},
		{"ANSI color codes", "hello \x1b[31mred\x1b[0m world", "hello red world"},
		{"Truecolor", "\x1b[38;2;1;2;3mx\x1b[m", "x"},
		{"Cursor movement", "hello\x1b[2Aworld", "helloworld"},
		{"Private modes", "\x1b[?1049h\x1b[?25lready", "ready"},
		{"OSC title", "\x1b]0;title\x07text", "text"},
		{"Mixed", "line 1\r\n\x1b[32mline 2\x1b[0m", "line 1\nline 2"},
		{"Empty", "", ""},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Normalize(tc.input))
		})
	}
}
