// Package batch drives a session from lines of text instead of a terminal.
// Each line is typed into the session and submitted, so commands behave as
// they do interactively.
package batch

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/joeycumines/termcalc/internal/session"
)

// Options control batch output.
type Options struct {
	// Echo prints "expression = result" instead of the bare result.
	Echo bool
}

// Summary counts what a run produced.
type Summary struct {
	Evaluated int
	Failed    int
}

// Run submits every non-blank line of r to s. Results go to stdout, failed
// entries to stderr as "expression = Error: ...". It stops early when the
// session requests termination or ctx is cancelled.
func Run(ctx context.Context, s *session.Session, r io.Reader, stdout, stderr io.Writer, opts Options) (Summary, error) {
	var sum Summary
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return sum, err
		}

		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}

		before := s.Len()
		for _, c := range line {
			s.PushChar(c)
		}
		s.Submit()

		if s.HelpVisible() {
			if err := writeCommands(stdout); err != nil {
				return sum, err
			}
			s.ToggleHelp()
		}

		if s.Len() > before {
			entry, _ := s.SelectedEntry()
			if err := report(entry, stdout, stderr, opts, &sum); err != nil {
				return sum, err
			}
		}

		if s.QuitRequested() {
			return sum, nil
		}
	}

	if err := scanner.Err(); err != nil {
		return sum, fmt.Errorf("reading input: %w", err)
	}
	return sum, nil
}

func report(entry session.HistoryEntry, stdout, stderr io.Writer, opts Options, sum *Summary) error {
	sum.Evaluated++
	if entry.IsError {
		sum.Failed++
		_, err := fmt.Fprintf(stderr, "%s = %s\n", strings.TrimSpace(entry.Expression), entry.Result)
		return err
	}
	var err error
	if opts.Echo {
		_, err = fmt.Fprintf(stdout, "%s = %s\n", strings.TrimSpace(entry.Expression), entry.Result)
	} else {
		_, err = fmt.Fprintln(stdout, entry.Result)
	}
	return err
}

func writeCommands(w io.Writer) error {
	for _, c := range session.Commands() {
		if _, err := fmt.Fprintf(w, "%-14s %s\n", strings.Join(c.Names, ", "), c.Description); err != nil {
			return err
		}
	}
	return nil
}
