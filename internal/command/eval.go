package command

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/joeycumines/termcalc/internal/batch"
	"github.com/joeycumines/termcalc/internal/config"
	"github.com/joeycumines/termcalc/internal/session"
	"github.com/joeycumines/termcalc/internal/storage"
)

// EvalCommand evaluates expressions without the interactive interface.
type EvalCommand struct {
	*BaseCommand
	config   *config.Config
	echo     bool
	logFile  string
	logLevel string

	stdin      io.Reader
	ctxFactory contextFactory
}

// NewEvalCommand creates a new eval command reading from os.Stdin when no
// expressions are given as arguments.
func NewEvalCommand(cfg *config.Config) *EvalCommand {
	return &EvalCommand{
		BaseCommand: NewBaseCommand(
			"eval",
			"Evaluate expressions from arguments or standard input",
			"eval [options] [expression...]",
		),
		config: cfg,
		stdin:  os.Stdin,
	}
}

// SetupFlags configures the flags for the eval command.
func (c *EvalCommand) SetupFlags(fs *flag.FlagSet) {
	echo := config.DefaultSchema().ResolveCommandBool(c.config, c.Name(), "echo")
	fs.BoolVar(&c.echo, "echo", echo, "Print each expression alongside its result")
	fs.StringVar(&c.logFile, "log-file", "", "Path to log file (JSON output)")
	fs.StringVar(&c.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
}

// Execute evaluates each argument, or each line of standard input, in a
// single session. Variables carry over between expressions; nothing is
// persisted.
func (c *EvalCommand) Execute(args []string, stdout, stderr io.Writer) error {
	ctx, cancel := c.ctxFactory.context()
	defer cancel()

	logger, err := setupLogging(c.config, c.logFile, c.logLevel)
	if err != nil {
		return err
	}
	defer logger.Close()

	input := c.stdin
	if len(args) > 0 {
		input = strings.NewReader(strings.Join(args, "\n"))
	}

	s := session.New(newEvaluator(c.config, logger.Logger), storage.NewInMemoryBackend(),
		session.WithLogger(logger.Logger))

	sum, err := batch.Run(ctx, s, input, stdout, stderr, batch.Options{Echo: c.echo})
	if err != nil {
		return err
	}
	if sum.Failed > 0 {
		return fmt.Errorf("%d of %d expressions failed", sum.Failed, sum.Evaluated)
	}
	return nil
}
