package command

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/joeycumines/termcalc/internal/config"
)

func TestHelpCommandListsCommands(t *testing.T) {
	t.Parallel()
	registry := NewRegistry()
	helper := NewHelpCommand(registry)
	registry.Register(helper)
	registry.Register(NewVersionCommand("1.2.3"))
	registry.Register(NewEvalCommand(config.NewConfig()))

	var stdout, stderr bytes.Buffer
	if err := helper.Execute(nil, &stdout, &stderr); err != nil {
		t.Fatalf("help execute returned error: %v", err)
	}

	output := stdout.String()
	for _, want := range []string{"Available commands", "version", "eval", "Evaluate expressions"} {
		if !strings.Contains(output, want) {
			t.Errorf("expected help output to contain %q, got %q", want, output)
		}
	}
	if stderr.Len() != 0 {
		t.Errorf("expected no stderr output, got %q", stderr.String())
	}
}

func TestHelpCommandShowsCommandFlags(t *testing.T) {
	t.Parallel()
	registry := NewRegistry()
	helper := NewHelpCommand(registry)
	registry.Register(helper)
	registry.Register(NewRunCommand(config.NewConfig()))

	var stdout, stderr bytes.Buffer
	if err := helper.Execute([]string{"run"}, &stdout, &stderr); err != nil {
		t.Fatalf("help execute returned error: %v", err)
	}

	out := stdout.String()
	for _, want := range []string{"Command: run", "Usage: run [options]", "Flags:", "-state", "-no-persist", "-log-level"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in %q", want, out)
		}
	}
}

func TestHelpCommandWithoutFlags(t *testing.T) {
	t.Parallel()
	registry := NewRegistry()
	helper := NewHelpCommand(registry)
	registry.Register(NewVersionCommand("1"))

	var stdout, stderr bytes.Buffer
	if err := helper.Execute([]string{"version"}, &stdout, &stderr); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(stdout.String(), "Flags:") {
		t.Errorf("version has no flags, got %q", stdout.String())
	}
}

func TestHelpCommandUnknown(t *testing.T) {
	t.Parallel()
	registry := NewRegistry()
	helper := NewHelpCommand(registry)

	var stdout, stderr bytes.Buffer
	if err := helper.Execute([]string{"nope"}, &stdout, &stderr); err == nil {
		t.Fatal("expected error for unknown command")
	}
	if !strings.Contains(stderr.String(), "Unknown command: nope") {
		t.Errorf("unexpected stderr %q", stderr.String())
	}
}

func TestVersionCommand(t *testing.T) {
	t.Parallel()
	cmd := NewVersionCommand("9.9.9")

	var stdout, stderr bytes.Buffer
	if err := cmd.Execute(nil, &stdout, &stderr); err != nil {
		t.Fatal(err)
	}
	if got := stdout.String(); got != "termcalc version 9.9.9\n" {
		t.Errorf("unexpected output %q", got)
	}

	stdout.Reset()
	if err := cmd.Execute([]string{"extra"}, &stdout, &stderr); err == nil {
		t.Error("expected error for unexpected arguments")
	}
	if !strings.Contains(stderr.String(), "unexpected arguments") {
		t.Errorf("unexpected stderr %q", stderr.String())
	}
}

func TestConfigCommandUsage(t *testing.T) {
	t.Parallel()
	cmd := NewConfigCommand(config.NewConfig())

	var stdout, stderr bytes.Buffer
	if err := cmd.Execute(nil, &stdout, &stderr); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(stdout.String(), "Configuration management:") {
		t.Errorf("expected usage, got %q", stdout.String())
	}
}

func TestConfigCommandShowAll(t *testing.T) {
	t.Parallel()
	cfg, err := config.LoadFromReader(strings.NewReader("color never\nui.mouse off\n[eval]\necho on\n[constants]\ng 9.81\n"))
	if err != nil {
		t.Fatal(err)
	}
	cmd := NewConfigCommand(cfg)
	args := parseFlags(t, cmd, "-all")

	var stdout, stderr bytes.Buffer
	if err := cmd.Execute(args, &stdout, &stderr); err != nil {
		t.Fatal(err)
	}

	out := stdout.String()
	for _, want := range []string{"Global configuration:", "  color: never\n  ui.mouse: off\n", "[eval]", "echo: on", "Constants:", "g: 9.81"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in %q", want, out)
		}
	}
}

func TestConfigCommandShowGlobal(t *testing.T) {
	t.Parallel()
	cfg := config.NewConfig()
	cfg.SetGlobalOption("color", "always")
	cfg.SetCommandOption("eval", "echo", "on")
	cmd := NewConfigCommand(cfg)
	args := parseFlags(t, cmd, "-global")

	var stdout, stderr bytes.Buffer
	if err := cmd.Execute(args, &stdout, &stderr); err != nil {
		t.Fatal(err)
	}
	out := stdout.String()
	if !strings.Contains(out, "color: always") {
		t.Errorf("expected global option in %q", out)
	}
	if strings.Contains(out, "echo") {
		t.Errorf("command options should not be shown, got %q", out)
	}
}

func TestConfigCommandGet(t *testing.T) {
	isolateEnv(t)
	cfg := config.NewConfig()
	cfg.SetGlobalOption(config.KeyColor, "never")
	cmd := NewConfigCommand(cfg)

	tests := []struct {
		key  string
		want string
	}{
		{config.KeyColor, "color: never\n"},
		{config.KeyAltScreen, "ui.alt-screen: true\n"},
		{config.KeyLogFile, "log.file: \n"},
		{"no.such.key", "Configuration key 'no.such.key' not found\n"},
	}
	for _, tt := range tests {
		var stdout, stderr bytes.Buffer
		if err := cmd.Execute([]string{tt.key}, &stdout, &stderr); err != nil {
			t.Fatalf("%s: %v", tt.key, err)
		}
		if stdout.String() != tt.want {
			t.Errorf("%s: got %q, want %q", tt.key, stdout.String(), tt.want)
		}
	}
}

func TestConfigCommandSetPersists(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "config")
	if err := os.WriteFile(path, []byte("# termcalc\ncolor auto\n[constants]\ng 9.81\n"), 0644); err != nil {
		t.Fatal(err)
	}
	cfg := config.NewConfig()
	cmd := NewConfigCommand(cfg, path)

	var stdout, stderr bytes.Buffer
	if err := cmd.Execute([]string{config.KeyColor, "never"}, &stdout, &stderr); err != nil {
		t.Fatal(err)
	}
	if got := stdout.String(); got != "Set configuration: color = never\n" {
		t.Errorf("unexpected output %q", got)
	}
	if v, _ := cfg.GetGlobalOption(config.KeyColor); v != "never" {
		t.Errorf("in-memory config not updated: %q", v)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if want := "# termcalc\ncolor never\n[constants]\ng 9.81\n"; string(data) != want {
		t.Errorf("file = %q, want %q", data, want)
	}
}

func TestConfigCommandSetRejectsInvalidValue(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "config")
	cmd := NewConfigCommand(config.NewConfig(), path)

	var stdout, stderr bytes.Buffer
	if err := cmd.Execute([]string{config.KeyColor, "purple"}, &stdout, &stderr); err == nil {
		t.Fatal("expected error for invalid choice")
	}
	if !strings.Contains(stderr.String(), "Invalid value for color") {
		t.Errorf("unexpected stderr %q", stderr.String())
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("config file should not be written, stat err = %v", err)
	}
}

func TestConfigCommandSetWarnsWhenPersistFails(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	target := filepath.Join(dir, "real")
	link := filepath.Join(dir, "config")
	if err := os.WriteFile(target, nil, 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.Symlink(target, link); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}
	cmd := NewConfigCommand(config.NewConfig(), link)

	var stdout, stderr bytes.Buffer
	if err := cmd.Execute([]string{config.KeyMouse, "off"}, &stdout, &stderr); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(stderr.String(), "Warning: failed to persist config") {
		t.Errorf("expected warning, got %q", stderr.String())
	}
}

func TestConfigCommandValidate(t *testing.T) {
	t.Parallel()
	valid := NewConfigCommand(config.NewConfig())
	var stdout, stderr bytes.Buffer
	if err := valid.Execute([]string{"validate"}, &stdout, &stderr); err != nil {
		t.Fatal(err)
	}
	if stdout.String() != "Configuration is valid.\n" {
		t.Errorf("unexpected output %q", stdout.String())
	}

	cfg := config.NewConfig()
	cfg.SetGlobalOption("colour", "never")
	cfg.SetGlobalOption(config.KeyMouse, "sometimes")
	stdout.Reset()
	if err := NewConfigCommand(cfg).Execute([]string{"validate"}, &stdout, &stderr); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(stdout.String(), "Configuration has 2 issue(s):") {
		t.Errorf("unexpected output %q", stdout.String())
	}
}

func TestConfigCommandSchema(t *testing.T) {
	t.Parallel()
	var stdout, stderr bytes.Buffer
	if err := NewConfigCommand(config.NewConfig()).Execute([]string{"schema"}, &stdout, &stderr); err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{config.KeyStateFile, config.KeyLogLevel, "[constants]"} {
		if !strings.Contains(stdout.String(), want) {
			t.Errorf("expected %q in schema output", want)
		}
	}
}

func TestConfigCommandTooManyArgs(t *testing.T) {
	t.Parallel()
	var stdout, stderr bytes.Buffer
	if err := NewConfigCommand(config.NewConfig()).Execute([]string{"a", "b", "c"}, &stdout, &stderr); err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(stderr.String(), "Invalid number of arguments") {
		t.Errorf("unexpected stderr %q", stderr.String())
	}
}
