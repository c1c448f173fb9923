package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// FileSystemBackend implements Backend using a single JSON file on the local
// file system. The path is fixed at construction.
type FileSystemBackend struct {
	path string
}

// NewFileSystemBackend creates a new file system storage backend for path.
// Nothing is created on disk until the first Save.
func NewFileSystemBackend(path string) (*FileSystemBackend, error) {
	if path == "" {
		return nil, fmt.Errorf("state path cannot be empty")
	}
	return &FileSystemBackend{path: filepath.Clean(path)}, nil
}

// Path returns the state file path.
func (b *FileSystemBackend) Path() string {
	return b.path
}

// LockPath returns the path of the lock file guarding writes.
func (b *FileSystemBackend) LockPath() string {
	return b.path + ".lock"
}

// Load reads the snapshot from disk.
// It returns (nil, nil) if the state file does not exist.
func (b *FileSystemBackend) Load() (*Snapshot, error) {
	data, err := os.ReadFile(b.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read state file: %w", err)
	}

	return decodeSnapshot(data)
}

// Save atomically persists the snapshot, creating the parent directory first.
// Concurrent writers are excluded by an advisory lock on LockPath.
func (b *FileSystemBackend) Save(snapshot *Snapshot) error {
	if snapshot == nil {
		return fmt.Errorf("snapshot cannot be nil")
	}

	if err := os.MkdirAll(filepath.Dir(b.path), 0755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	lockFile, err := acquireFileLock(b.LockPath())
	if err != nil {
		return fmt.Errorf("failed to acquire state lock: %w", err)
	}
	defer func() { _ = releaseFileLock(lockFile) }()

	snapshot.Version = CurrentSchemaVersion
	snapshot.UpdatedAt = time.Now().UTC()
	if snapshot.History == nil {
		snapshot.History = []HistoryEntry{}
	}

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	if err := AtomicWriteFile(b.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write state file: %w", err)
	}

	return nil
}

// Close is a no-op; locks are only held for the duration of Save.
func (b *FileSystemBackend) Close() error {
	return nil
}

func decodeSnapshot(data []byte) (*Snapshot, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var snapshot Snapshot
	if err := dec.Decode(&snapshot); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}

	if snapshot.Version != "" && snapshot.Version != CurrentSchemaVersion {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedVersion, snapshot.Version)
	}

	for name, value := range snapshot.Variables {
		snapshot.Variables[name] = normalizeNumbers(value)
	}

	return &snapshot, nil
}

// normalizeNumbers converts json.Number values back into int when integral,
// float64 otherwise, so restored variables keep their arithmetic type.
func normalizeNumbers(v any) any {
	switch v := v.(type) {
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return int(i)
		}
		if f, err := v.Float64(); err == nil {
			return f
		}
		return v.String()
	case []any:
		for i := range v {
			v[i] = normalizeNumbers(v[i])
		}
		return v
	case map[string]any:
		for k := range v {
			v[k] = normalizeNumbers(v[k])
		}
		return v
	default:
		return v
	}
}

// Ensure FileSystemBackend implements Backend at compile time
var _ Backend = (*FileSystemBackend)(nil)
