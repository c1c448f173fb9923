package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestSetKeyInFile(t *testing.T) {
	tests := []struct {
		name    string
		initial string
		key     string
		value   string
		want    string
	}{
		{
			name:  "missing file",
			key:   KeyColor,
			value: "never",
			want:  "color never\n",
		},
		{
			name:    "append to global section",
			initial: "ui.mouse false\n",
			key:     KeyColor,
			value:   "never",
			want:    "ui.mouse false\ncolor never\n",
		},
		{
			name:    "replace in place keeps comments",
			initial: "# my settings\ncolor auto\nui.mouse false\n",
			key:     KeyColor,
			value:   "always",
			want:    "# my settings\ncolor always\nui.mouse false\n",
		},
		{
			name:    "insert before first section",
			initial: "color auto\n\n[constants]\ng 9.81\n",
			key:     KeyMouse,
			value:   "false",
			want:    "color auto\n\nui.mouse false\n[constants]\ng 9.81\n",
		},
		{
			name:    "section keys are not matched",
			initial: "[eval]\necho true\n",
			key:     "echo",
			value:   "false",
			want:    "echo false\n[eval]\necho true\n",
		},
		{
			name:    "no trailing newline",
			initial: "color auto",
			key:     KeyMouse,
			value:   "false",
			want:    "color auto\nui.mouse false\n",
		},
		{
			name:    "empty value",
			initial: "",
			key:     KeyLogFile,
			want:    "log.file\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "nested", "config")
			if tt.initial != "" {
				if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
					t.Fatal(err)
				}
				if err := os.WriteFile(path, []byte(tt.initial), 0644); err != nil {
					t.Fatal(err)
				}
			}

			if err := SetKeyInFile(path, tt.key, tt.value); err != nil {
				t.Fatalf("SetKeyInFile returned error: %v", err)
			}

			data, err := os.ReadFile(path)
			if err != nil {
				t.Fatal(err)
			}
			if string(data) != tt.want {
				t.Errorf("got:\n%s\nwant:\n%s", data, tt.want)
			}
		})
	}
}

func TestSetKeyInFile_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config")
	if err := SetKeyInFile(path, KeyPersistVariables, "true"); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath returned error: %v", err)
	}
	if !DefaultSchema().ResolveBool(cfg, KeyPersistVariables) {
		t.Error("expected state.persist-variables to be true after round-trip")
	}
	if cfg.HasWarnings() {
		t.Errorf("unexpected warnings: %v", cfg.GetWarnings())
	}
}

func TestSetKeyInFile_Rejects(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config")

	if err := SetKeyInFile(path, "bad key", "x"); err == nil {
		t.Error("expected error for key with whitespace")
	}
	if err := SetKeyInFile(path, KeyColor, "a\nb"); err == nil {
		t.Error("expected error for multi-line value")
	}

	if runtime.GOOS == "windows" {
		return
	}
	target := filepath.Join(dir, "target")
	if err := os.WriteFile(target, nil, 0644); err != nil {
		t.Fatal(err)
	}
	link := filepath.Join(dir, "link")
	if err := os.Symlink(target, link); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}
	if err := SetKeyInFile(link, KeyColor, "never"); err == nil {
		t.Error("expected error for symlinked config")
	}
}
