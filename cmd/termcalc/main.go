package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/joeycumines/termcalc/internal/command"
	"github.com/joeycumines/termcalc/internal/config"
)

const version = "0.1.0"

func main() {
	interactive := term.IsTerminal(int(os.Stdin.Fd()))
	if err := run(os.Args[1:], os.Stdout, os.Stderr, interactive); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run dispatches args to a command. Without a command name, the calculator
// starts interactively, or evaluates standard input when it is not a
// terminal.
func run(args []string, stdout, stderr io.Writer, interactive bool) error {
	cfg, err := config.Load()
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Warning: %v\n", err)
		cfg = config.NewConfig()
	}

	registry := command.NewRegistry()
	helpCmd := command.NewHelpCommand(registry)
	registry.Register(helpCmd)
	registry.Register(command.NewVersionCommand(version))
	registry.Register(command.NewConfigCommand(cfg))
	registry.Register(command.NewRunCommand(cfg))
	registry.Register(command.NewEvalCommand(cfg))

	cmdName := "run"
	if !interactive {
		cmdName = "eval"
	}
	if len(args) > 0 {
		switch {
		case args[0] == "-h" || args[0] == "--help":
			return helpCmd.Execute(nil, stdout, stderr)
		case !strings.HasPrefix(args[0], "-"):
			if _, err := registry.Get(args[0]); err == nil || interactive {
				cmdName, args = args[0], args[1:]
			}
		}
	}

	cmd, err := registry.Get(cmdName)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Unknown command: %s\n", cmdName)
		_, _ = fmt.Fprintln(stderr, "Use 'termcalc help' to see available commands.")
		return err
	}

	fs := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		_, _ = fmt.Fprintf(stderr, "Usage: %s\n", cmd.Usage())
		_, _ = fmt.Fprintf(stderr, "\n%s\n\n", cmd.Description())
		_, _ = fmt.Fprintln(stderr, "Options:")
		fs.PrintDefaults()
	}

	cmd.SetupFlags(fs)

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	return cmd.Execute(fs.Args(), stdout, stderr)
}
