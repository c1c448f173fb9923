// Package termtest runs a program on a pseudo-terminal so tests can type into
// it and wait for what it draws.
package termtest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/creack/pty"
)

// DefaultTimeout bounds Close's wait for the process to exit.
const DefaultTimeout = 5 * time.Second

// Console is a process attached to the slave side of a PTY.
type Console struct {
	cmd    *exec.Cmd
	ptm    *os.File
	size   pty.Winsize
	cancel context.CancelFunc

	outputMu sync.Mutex
	output   bytes.Buffer

	exited  chan struct{}
	waitErr error

	closeOnce sync.Once
	started   bool
}

// New prepares command to run on a fresh 80x24 PTY. The process starts on
// Start.
func New(ctx context.Context, command string, args ...string) (*Console, error) {
	ctx, cancel := context.WithCancel(ctx)
	cmd := exec.CommandContext(ctx, command, args...)
	cmd.Env = append(os.Environ(), "TERM=xterm-256color")
	return &Console{
		cmd:    cmd,
		size:   pty.Winsize{Rows: 24, Cols: 80},
		cancel: cancel,
		exited: make(chan struct{}),
	}, nil
}

// SetEnv appends environment variables. Only valid before Start.
func (c *Console) SetEnv(env ...string) {
	c.cmd.Env = append(c.cmd.Env, env...)
}

// SetDir sets the working directory. Only valid before Start.
func (c *Console) SetDir(dir string) {
	c.cmd.Dir = dir
}

// SetSize sets the initial window size. Only valid before Start.
func (c *Console) SetSize(cols, rows uint16) {
	c.size = pty.Winsize{Rows: rows, Cols: cols}
}

// Start runs the process with the PTY as its controlling terminal.
func (c *Console) Start() error {
	if c.started {
		return errors.New("console already started")
	}
	ptm, err := pty.StartWithSize(c.cmd, &c.size)
	if err != nil {
		return fmt.Errorf("failed to start command with pty: %w", err)
	}
	c.ptm = ptm
	c.started = true

	go c.readOutput()
	go func() {
		c.waitErr = c.cmd.Wait()
		close(c.exited)
	}()
	return nil
}

func (c *Console) readOutput() {
	buf := make([]byte, 4096)
	for {
		n, err := c.ptm.Read(buf)
		if n > 0 {
			c.outputMu.Lock()
			c.output.Write(buf[:n])
			c.outputMu.Unlock()
		}
		if err != nil {
			return
		}
	}
}

// Type writes input as if typed, one rune at a time.
func (c *Console) Type(input string) error {
	for _, r := range input {
		if err := c.write(string(r)); err != nil {
			return err
		}
		time.Sleep(5 * time.Millisecond)
	}
	return nil
}

// SendKeys writes the sequence for each named key, in order. See KeySequence
// for the names.
func (c *Console) SendKeys(names ...string) error {
	for _, name := range names {
		seq, err := KeySequence(name)
		if err != nil {
			return err
		}
		if err := c.write(seq); err != nil {
			return err
		}
		time.Sleep(20 * time.Millisecond)
	}
	return nil
}

// ScrollWheel sends an SGR mouse wheel event at the 1-indexed cell x, y.
// direction is "up" or "down".
func (c *Console) ScrollWheel(x, y int, direction string) error {
	seq, err := WheelSequence(x, y, direction)
	if err != nil {
		return err
	}
	return c.write(seq)
}

// Click sends a left click at the 1-indexed cell x, y.
func (c *Console) Click(x, y int) error {
	return c.write(ClickSequence(x, y))
}

func (c *Console) write(s string) error {
	if c.ptm == nil {
		return errors.New("console not started")
	}
	if _, err := c.ptm.WriteString(s); err != nil {
		return fmt.Errorf("failed to write input: %w", err)
	}
	return nil
}

// OutputLen returns the length of the raw output so far. Pass it to
// WaitForOutputSince to ignore what was already drawn.
func (c *Console) OutputLen() int {
	c.outputMu.Lock()
	defer c.outputMu.Unlock()
	return c.output.Len()
}

// Output returns the raw output so far.
func (c *Console) Output() string {
	c.outputMu.Lock()
	defer c.outputMu.Unlock()
	return c.output.String()
}

// Text returns the output so far with escape sequences and carriage returns
// removed.
func (c *Console) Text() string {
	return Normalize(c.Output())
}

// WaitForOutput waits until text appears in the normalized output.
func (c *Console) WaitForOutput(text string, timeout time.Duration) error {
	return c.WaitForOutputSince(text, 0, timeout)
}

// WaitForOutputSince waits until text appears in the normalized output
// written after the raw offset start.
func (c *Console) WaitForOutputSince(text string, start int, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for {
		c.outputMu.Lock()
		raw := c.output.Bytes()
		if start > len(raw) {
			start = len(raw)
		}
		got := Normalize(string(raw[start:]))
		c.outputMu.Unlock()

		if strings.Contains(got, text) {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("expected text %q not found in output after %v: %q", text, timeout, got)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

// WaitForExit waits for the process to exit and returns its exit code.
func (c *Console) WaitForExit(timeout time.Duration) (int, error) {
	if !c.started {
		return -1, errors.New("console not started")
	}
	select {
	case <-c.exited:
	case <-time.After(timeout):
		return -1, fmt.Errorf("command timeout after %v", timeout)
	}
	if c.waitErr != nil {
		var exitErr *exec.ExitError
		if errors.As(c.waitErr, &exitErr) {
			return exitErr.ExitCode(), nil
		}
		return -1, c.waitErr
	}
	return 0, nil
}

// Close kills the process if it is still running and releases the PTY. It
// is safe to call more than once.
func (c *Console) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.cancel()
		if !c.started {
			return
		}
		select {
		case <-c.exited:
		case <-time.After(DefaultTimeout):
			err = errors.New("process did not exit")
		}
		if cerr := c.ptm.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close ptm: %w", cerr)
		}
	})
	return err
}
