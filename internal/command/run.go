package command

import (
	"context"
	"flag"
	"fmt"
	"io"

	"github.com/joeycumines/termcalc/internal/config"
	"github.com/joeycumines/termcalc/internal/session"
	"github.com/joeycumines/termcalc/internal/tui"
)

// terminalRunner drives a session interactively.
type terminalRunner func(ctx context.Context, s *session.Session, opts tui.RunOptions) error

// RunCommand starts the interactive calculator.
type RunCommand struct {
	*BaseCommand
	config    *config.Config
	statePath string
	noPersist bool
	logFile   string
	logLevel  string

	// Tests replace these to avoid signal handling and a real terminal.
	ctxFactory contextFactory
	terminal   terminalRunner
}

// NewRunCommand creates a new run command.
func NewRunCommand(cfg *config.Config) *RunCommand {
	return &RunCommand{
		BaseCommand: NewBaseCommand(
			"run",
			"Start the interactive calculator (default)",
			"run [options]",
		),
		config:   cfg,
		terminal: tui.Run,
	}
}

// SetupFlags configures the flags for the run command.
func (c *RunCommand) SetupFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.statePath, "state", "", "Path to the session state file (overrides state.file)")
	fs.BoolVar(&c.noPersist, "no-persist", false, "Keep history in memory only")
	fs.StringVar(&c.logFile, "log-file", "", "Path to log file (JSON output)")
	fs.StringVar(&c.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
}

// Execute runs the interactive calculator until the user quits.
func (c *RunCommand) Execute(args []string, stdout, stderr io.Writer) error {
	if err := rejectArgs(args, stderr); err != nil {
		return err
	}

	ctx, cancel := c.ctxFactory.context()
	defer cancel()

	logger, err := setupLogging(c.config, c.logFile, c.logLevel)
	if err != nil {
		return err
	}
	defer logger.Close()

	store, err := openStore(c.config, c.statePath, c.noPersist)
	if err != nil {
		return err
	}
	defer store.Close()

	schema := config.DefaultSchema()
	s := session.New(newEvaluator(c.config, logger.Logger), store,
		session.WithLogger(logger.Logger),
		session.WithPersistVariables(schema.ResolveBool(c.config, config.KeyPersistVariables)),
	)

	var clip tui.Clipboard = tui.SystemClipboard{}
	if !schema.ResolveBool(c.config, config.KeyClipboard) {
		clip = tui.DisabledClipboard{}
	}

	err = c.terminal(ctx, s, tui.RunOptions{
		AltScreen: schema.ResolveBool(c.config, config.KeyAltScreen),
		Mouse:     schema.ResolveBool(c.config, config.KeyMouse),
		Color:     schema.Resolve(c.config, config.KeyColor),
		Clipboard: clip,
		Logger:    logger.Logger,
	})
	if err != nil {
		return err
	}

	logger.Info("session ended", "session_id", s.ID(), "entries", s.Len())
	if ctx.Err() != nil {
		_, _ = fmt.Fprintln(stderr, "Interrupted.")
	}
	return nil
}
