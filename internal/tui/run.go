package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/joeycumines/termcalc/internal/session"
)

// RunOptions configure Run.
type RunOptions struct {
	AltScreen bool
	Mouse     bool
	Color     string
	Clipboard Clipboard
	Logger    *slog.Logger
	// Input and Output default to the process terminal when nil.
	Input  io.Reader
	Output io.Writer
}

// Run drives s interactively until it requests termination or ctx is
// cancelled. A cancelled run still saves the session.
func Run(ctx context.Context, s *session.Session, opts RunOptions) error {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	modelOpts := []Option{
		WithClipboard(opts.Clipboard),
		WithLogger(logger),
	}
	programOpts := []tea.ProgramOption{tea.WithContext(ctx)}
	var out io.Writer = os.Stdout
	if opts.Output != nil {
		out = opts.Output
		programOpts = append(programOpts, tea.WithOutput(opts.Output))
	}
	modelOpts = append(modelOpts, WithRenderer(NewRenderer(out, opts.Color)))
	if opts.Input != nil {
		programOpts = append(programOpts, tea.WithInput(opts.Input))
	}
	if opts.AltScreen {
		programOpts = append(programOpts, tea.WithAltScreen())
	}
	if opts.Mouse {
		programOpts = append(programOpts, tea.WithMouseCellMotion())
	}

	logger.Info("starting interactive session", "alt_screen", opts.AltScreen, "mouse", opts.Mouse)

	model := New(s, modelOpts...)
	defer model.Close()

	_, err := tea.NewProgram(model, programOpts...).Run()

	if !s.QuitRequested() {
		s.Quit()
	}

	if err != nil && !(errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil) {
		return fmt.Errorf("terminal interface: %w", err)
	}
	return nil
}
