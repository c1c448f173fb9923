package storage

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func newTestBackend(t *testing.T) *FileSystemBackend {
	t.Helper()
	b, err := NewFileSystemBackend(filepath.Join(t.TempDir(), "data", StateFileName))
	if err != nil {
		t.Fatalf("NewFileSystemBackend failed: %v", err)
	}
	t.Cleanup(func() { _ = b.Close() })
	return b
}

func TestNewFileSystemBackend(t *testing.T) {
	t.Run("empty path returns error", func(t *testing.T) {
		if _, err := NewFileSystemBackend(""); err == nil {
			t.Fatal("expected error for empty path")
		}
	})

	t.Run("does not touch the file system", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "never-created")
		b, err := NewFileSystemBackend(filepath.Join(dir, StateFileName))
		if err != nil {
			t.Fatal(err)
		}
		if _, err := os.Stat(dir); !os.IsNotExist(err) {
			t.Errorf("expected %s not to exist, stat err = %v", dir, err)
		}
		if !strings.HasSuffix(b.LockPath(), StateFileName+".lock") {
			t.Errorf("unexpected lock path %q", b.LockPath())
		}
	})
}

func TestFileSystemBackend_LoadMissing(t *testing.T) {
	b := newTestBackend(t)

	snap, err := b.Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if snap != nil {
		t.Fatalf("expected nil snapshot, got %+v", snap)
	}
}

func TestFileSystemBackend_RoundTrip(t *testing.T) {
	b := newTestBackend(t)

	history := []HistoryEntry{
		{Expression: "1+2", Result: "3"},
		{Expression: "1/0", Result: "Error: division by zero", IsError: true},
		{Expression: ":foo", Result: "Unknown command", IsError: true},
		{Expression: "  x = 10  ", Result: "10"},
	}

	if err := b.Save(&Snapshot{SessionID: "abc", History: history}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	snap, err := b.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if snap == nil {
		t.Fatal("expected snapshot")
	}
	if !reflect.DeepEqual(snap.History, history) {
		t.Errorf("history mismatch:\n got %+v\nwant %+v", snap.History, history)
	}
	if snap.Version != CurrentSchemaVersion {
		t.Errorf("Version = %q, want %q", snap.Version, CurrentSchemaVersion)
	}
	if snap.SessionID != "abc" {
		t.Errorf("SessionID = %q", snap.SessionID)
	}
	if snap.UpdatedAt.IsZero() {
		t.Error("UpdatedAt was not set")
	}
	if snap.Variables != nil {
		t.Errorf("expected no variables, got %v", snap.Variables)
	}
}

func TestFileSystemBackend_SaveOverwrites(t *testing.T) {
	b := newTestBackend(t)

	for i, n := range []int{3, 1, 0} {
		history := make([]HistoryEntry, n)
		for j := range history {
			history[j] = HistoryEntry{Expression: "e", Result: "r"}
		}
		if err := b.Save(&Snapshot{History: history}); err != nil {
			t.Fatalf("save %d failed: %v", i, err)
		}
		snap, err := b.Load()
		if err != nil {
			t.Fatalf("load %d failed: %v", i, err)
		}
		if len(snap.History) != n {
			t.Errorf("save %d: got %d entries, want %d", i, len(snap.History), n)
		}
	}
}

func TestFileSystemBackend_EmptyHistoryIsWrittenAsArray(t *testing.T) {
	b := newTestBackend(t)
	if err := b.Save(&Snapshot{}); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(b.Path())
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"history": []`) {
		t.Errorf("expected empty history array in %s", data)
	}
}

func TestFileSystemBackend_Variables(t *testing.T) {
	b := newTestBackend(t)

	vars := map[string]any{
		"i":    42,
		"f":    2.5,
		"s":    "text",
		"ok":   true,
		"list": []any{1, 1.5},
	}
	if err := b.Save(&Snapshot{Variables: vars}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	snap, err := b.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !reflect.DeepEqual(snap.Variables, vars) {
		t.Errorf("variables mismatch:\n got %#v\nwant %#v", snap.Variables, vars)
	}
}

func TestFileSystemBackend_ErrorScenarios(t *testing.T) {
	t.Run("corrupted file", func(t *testing.T) {
		b := newTestBackend(t)
		if err := AtomicWriteFile(b.Path(), []byte("{not json"), 0644); err != nil {
			t.Fatal(err)
		}
		if _, err := b.Load(); err == nil {
			t.Fatal("expected error for corrupted file")
		}
	})

	t.Run("unsupported version", func(t *testing.T) {
		b := newTestBackend(t)
		if err := AtomicWriteFile(b.Path(), []byte(`{"version":"99","history":[]}`), 0644); err != nil {
			t.Fatal(err)
		}
		_, err := b.Load()
		if !errors.Is(err, ErrUnsupportedVersion) {
			t.Fatalf("expected ErrUnsupportedVersion, got %v", err)
		}
	})

	t.Run("missing version is accepted", func(t *testing.T) {
		b := newTestBackend(t)
		data := `{"history":[{"expression":"1","result":"1","is_error":false}]}`
		if err := AtomicWriteFile(b.Path(), []byte(data), 0644); err != nil {
			t.Fatal(err)
		}
		snap, err := b.Load()
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if len(snap.History) != 1 {
			t.Errorf("expected 1 entry, got %d", len(snap.History))
		}
	})

	t.Run("nil snapshot", func(t *testing.T) {
		if err := newTestBackend(t).Save(nil); err == nil {
			t.Fatal("expected error for nil snapshot")
		}
	})

	t.Run("lock held by another writer", func(t *testing.T) {
		b := newTestBackend(t)
		if err := os.MkdirAll(filepath.Dir(b.Path()), 0755); err != nil {
			t.Fatal(err)
		}
		held, err := acquireFileLock(b.LockPath())
		if err != nil {
			t.Fatalf("failed to take lock: %v", err)
		}
		defer func() { _ = releaseFileLock(held) }()

		err = b.Save(&Snapshot{})
		if !errors.Is(err, ErrWouldBlock) {
			t.Fatalf("expected ErrWouldBlock, got %v", err)
		}
		if _, statErr := os.Stat(b.Path()); !os.IsNotExist(statErr) {
			t.Error("state file should not have been written")
		}
	})

	t.Run("lock is released after save", func(t *testing.T) {
		b := newTestBackend(t)
		if err := b.Save(&Snapshot{}); err != nil {
			t.Fatal(err)
		}
		if err := b.Save(&Snapshot{}); err != nil {
			t.Fatalf("second save failed: %v", err)
		}
		if _, err := os.Stat(b.LockPath()); !os.IsNotExist(err) {
			t.Errorf("lock file should be removed, stat err = %v", err)
		}
	})
}

func TestNormalizeNumbers(t *testing.T) {
	snap, err := decodeSnapshot([]byte(`{"variables":{"a":1,"b":1.25,"c":[2,{"d":3.5}],"big":1e400}}`))
	if err != nil {
		t.Fatalf("decodeSnapshot failed: %v", err)
	}
	want := map[string]any{
		"a":   1,
		"b":   1.25,
		"c":   []any{2, map[string]any{"d": 3.5}},
		"big": "1e400",
	}
	if !reflect.DeepEqual(snap.Variables, want) {
		t.Errorf("got %#v\nwant %#v", snap.Variables, want)
	}
}
