package command

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/joeycumines/termcalc/internal/config"
	"github.com/joeycumines/termcalc/internal/session"
	"github.com/joeycumines/termcalc/internal/storage"
	"github.com/joeycumines/termcalc/internal/tui"
)

// scriptedTerminal types each line into the session, then quits.
func scriptedTerminal(got *tui.RunOptions, seen *int, lines ...string) terminalRunner {
	return func(ctx context.Context, s *session.Session, opts tui.RunOptions) error {
		if got != nil {
			*got = opts
		}
		if seen != nil {
			*seen = s.Len()
		}
		for _, line := range lines {
			for _, c := range line {
				s.PushChar(c)
			}
			s.Submit()
		}
		s.Quit()
		return nil
	}
}

func newTestRunCommand(cfg *config.Config, terminal terminalRunner) *RunCommand {
	cmd := NewRunCommand(cfg)
	cmd.ctxFactory = backgroundContext
	cmd.terminal = terminal
	return cmd
}

func TestRunCommand_AppliesConfig(t *testing.T) {
	isolateEnv(t)
	cfg := config.NewConfig()
	cfg.SetGlobalOption(config.KeyMouse, "false")
	cfg.SetGlobalOption(config.KeyColor, "never")
	cfg.SetGlobalOption(config.KeyClipboard, "off")

	var got tui.RunOptions
	cmd := newTestRunCommand(cfg, scriptedTerminal(&got, nil))
	args := parseFlags(t, cmd, "-no-persist")

	var stdout, stderr bytes.Buffer
	if err := cmd.Execute(args, &stdout, &stderr); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if got.Mouse {
		t.Error("expected mouse disabled")
	}
	if !got.AltScreen {
		t.Error("expected alt screen by default")
	}
	if got.Color != "never" {
		t.Errorf("expected color never, got %q", got.Color)
	}
	if _, ok := got.Clipboard.(tui.DisabledClipboard); !ok {
		t.Errorf("expected disabled clipboard, got %T", got.Clipboard)
	}
	if got.Logger == nil {
		t.Error("expected a logger")
	}
}

func TestRunCommand_DefaultClipboard(t *testing.T) {
	isolateEnv(t)
	var got tui.RunOptions
	cmd := newTestRunCommand(config.NewConfig(), scriptedTerminal(&got, nil))
	args := parseFlags(t, cmd, "-no-persist")

	var stdout, stderr bytes.Buffer
	if err := cmd.Execute(args, &stdout, &stderr); err != nil {
		t.Fatal(err)
	}
	if _, ok := got.Clipboard.(tui.SystemClipboard); !ok {
		t.Errorf("expected system clipboard, got %T", got.Clipboard)
	}
	if got.Color != "auto" || !got.Mouse {
		t.Errorf("unexpected defaults %+v", got)
	}
}

func TestRunCommand_PersistsAndRestoresHistory(t *testing.T) {
	isolateEnv(t)
	statePath := filepath.Join(t.TempDir(), "state.json")
	cfg := config.NewConfig()
	cfg.Constants["answer"] = 42

	first := newTestRunCommand(cfg, scriptedTerminal(nil, nil, "answer + 1", "bogus("))
	var stdout, stderr bytes.Buffer
	if err := first.Execute(parseFlags(t, first, "-state", statePath), &stdout, &stderr); err != nil {
		t.Fatalf("first run: %v", err)
	}

	backend, err := storage.NewFileSystemBackend(statePath)
	if err != nil {
		t.Fatal(err)
	}
	snapshot, err := backend.Load()
	if err != nil {
		t.Fatalf("load snapshot: %v", err)
	}
	if snapshot == nil || len(snapshot.History) != 2 {
		t.Fatalf("expected 2 persisted entries, got %+v", snapshot)
	}
	if e := snapshot.History[0]; e.Expression != "answer + 1" || e.Result != "43" || e.IsError {
		t.Errorf("unexpected first entry %+v", e)
	}
	if e := snapshot.History[1]; !e.IsError || !strings.HasPrefix(e.Result, session.ErrorPrefix) {
		t.Errorf("expected error entry, got %+v", e)
	}

	restored := -1
	second := newTestRunCommand(cfg, scriptedTerminal(nil, &restored))
	if err := second.Execute(parseFlags(t, second, "-state", statePath), &stdout, &stderr); err != nil {
		t.Fatalf("second run: %v", err)
	}
	if restored != 2 {
		t.Errorf("expected 2 restored entries, got %d", restored)
	}
}

func TestRunCommand_StateFileFromConfig(t *testing.T) {
	isolateEnv(t)
	statePath := filepath.Join(t.TempDir(), "nested", "state.json")
	cfg := config.NewConfig()
	cfg.SetGlobalOption(config.KeyStateFile, statePath)

	cmd := newTestRunCommand(cfg, scriptedTerminal(nil, nil, "1 + 1"))
	var stdout, stderr bytes.Buffer
	if err := cmd.Execute(nil, &stdout, &stderr); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(statePath); err != nil {
		t.Errorf("expected state file at %s: %v", statePath, err)
	}
}

func TestRunCommand_NoPersist(t *testing.T) {
	isolateEnv(t)
	statePath := filepath.Join(t.TempDir(), "state.json")
	cmd := newTestRunCommand(config.NewConfig(), scriptedTerminal(nil, nil, "1 + 1"))
	args := parseFlags(t, cmd, "-state", statePath, "-no-persist")

	var stdout, stderr bytes.Buffer
	if err := cmd.Execute(args, &stdout, &stderr); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(statePath); !os.IsNotExist(err) {
		t.Errorf("state file should not exist, stat err = %v", err)
	}
}

func TestRunCommand_PersistDisabledInConfig(t *testing.T) {
	isolateEnv(t)
	statePath := filepath.Join(t.TempDir(), "state.json")
	cfg := config.NewConfig()
	cfg.SetGlobalOption(config.KeyStatePersist, "false")
	cmd := newTestRunCommand(cfg, scriptedTerminal(nil, nil, "1 + 1"))

	var stdout, stderr bytes.Buffer
	if err := cmd.Execute(parseFlags(t, cmd, "-state", statePath), &stdout, &stderr); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(statePath); !os.IsNotExist(err) {
		t.Errorf("state file should not exist, stat err = %v", err)
	}
}

func TestRunCommand_PersistVariables(t *testing.T) {
	isolateEnv(t)
	statePath := filepath.Join(t.TempDir(), "state.json")
	cfg := config.NewConfig()
	cfg.SetGlobalOption(config.KeyPersistVariables, "true")

	first := newTestRunCommand(cfg, scriptedTerminal(nil, nil, "x = 5"))
	var stdout, stderr bytes.Buffer
	if err := first.Execute(parseFlags(t, first, "-state", statePath), &stdout, &stderr); err != nil {
		t.Fatal(err)
	}

	var vars map[string]any
	second := newTestRunCommand(cfg, func(ctx context.Context, s *session.Session, opts tui.RunOptions) error {
		vars = s.Variables()
		s.Quit()
		return nil
	})
	if err := second.Execute(parseFlags(t, second, "-state", statePath), &stdout, &stderr); err != nil {
		t.Fatal(err)
	}
	if len(vars) != 1 || vars["x"] == nil {
		t.Errorf("expected x to be restored, got %v", vars)
	}
}

func TestRunCommand_WritesLogFile(t *testing.T) {
	isolateEnv(t)
	logPath := filepath.Join(t.TempDir(), "termcalc.log")
	cmd := newTestRunCommand(config.NewConfig(), scriptedTerminal(nil, nil, "2 * 3"))
	args := parseFlags(t, cmd, "-no-persist", "-log-file", logPath, "-log-level", "debug")

	var stdout, stderr bytes.Buffer
	if err := cmd.Execute(args, &stdout, &stderr); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), `"msg":"session ended"`) {
		t.Errorf("expected session end record, got %s", data)
	}
}

func TestRunCommand_InvalidLogLevel(t *testing.T) {
	isolateEnv(t)
	cmd := newTestRunCommand(config.NewConfig(), scriptedTerminal(nil, nil))
	args := parseFlags(t, cmd, "-no-persist", "-log-level", "loud")

	var stdout, stderr bytes.Buffer
	err := cmd.Execute(args, &stdout, &stderr)
	if err == nil || !strings.Contains(err.Error(), "invalid log level") {
		t.Errorf("expected invalid log level error, got %v", err)
	}
}

func TestRunCommand_TerminalError(t *testing.T) {
	isolateEnv(t)
	boom := errors.New("boom")
	cmd := newTestRunCommand(config.NewConfig(), func(context.Context, *session.Session, tui.RunOptions) error {
		return boom
	})

	var stdout, stderr bytes.Buffer
	if err := cmd.Execute(parseFlags(t, cmd, "-no-persist"), &stdout, &stderr); !errors.Is(err, boom) {
		t.Errorf("expected terminal error, got %v", err)
	}
}

func TestRunCommand_RejectsArguments(t *testing.T) {
	isolateEnv(t)
	called := false
	cmd := newTestRunCommand(config.NewConfig(), func(context.Context, *session.Session, tui.RunOptions) error {
		called = true
		return nil
	})

	var stdout, stderr bytes.Buffer
	if err := cmd.Execute([]string{"1+1"}, &stdout, &stderr); err == nil {
		t.Error("expected error for arguments")
	}
	if called {
		t.Error("terminal should not start")
	}
}

func TestRunCommand_SaveFailureIsNotFatal(t *testing.T) {
	isolateEnv(t)
	parent := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(parent, nil, 0644); err != nil {
		t.Fatal(err)
	}
	statePath := filepath.Join(parent, "state.json")

	cmd := newTestRunCommand(config.NewConfig(), scriptedTerminal(nil, nil, "1 + 1"))
	var stdout, stderr bytes.Buffer
	if err := cmd.Execute(parseFlags(t, cmd, "-state", statePath), &stdout, &stderr); err != nil {
		t.Fatalf("a failed save must not fail the run: %v", err)
	}
}
