package storage

import (
	"encoding/json"
	"fmt"
	"sync"
)

// InMemoryBackend implements Backend without touching the file system. It is
// used when persistence is disabled, by batch evaluation, and by tests.
type InMemoryBackend struct {
	mu       sync.Mutex
	snapshot []byte
	saves    int
}

// NewInMemoryBackend creates an empty in-memory storage backend.
func NewInMemoryBackend() *InMemoryBackend {
	return &InMemoryBackend{}
}

// Load returns a deep copy of the last saved snapshot, or (nil, nil).
func (b *InMemoryBackend) Load() (*Snapshot, error) {
	b.mu.Lock()
	data := b.snapshot
	b.mu.Unlock()

	if data == nil {
		return nil, nil
	}

	return decodeSnapshot(data)
}

// Save stores a deep copy of the snapshot.
func (b *InMemoryBackend) Save(snapshot *Snapshot) error {
	if snapshot == nil {
		return fmt.Errorf("snapshot cannot be nil")
	}

	copied := *snapshot
	copied.Version = CurrentSchemaVersion
	if copied.History == nil {
		copied.History = []HistoryEntry{}
	}

	data, err := json.Marshal(&copied)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	b.mu.Lock()
	b.snapshot = data
	b.saves++
	b.mu.Unlock()

	return nil
}

// Saves returns how many times Save succeeded.
func (b *InMemoryBackend) Saves() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.saves
}

// Close releases any resources (no-op for in-memory backend).
func (b *InMemoryBackend) Close() error {
	return nil
}

// Ensure InMemoryBackend implements Backend at compile time
var _ Backend = (*InMemoryBackend)(nil)
