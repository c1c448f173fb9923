package storage

import (
	"errors"
)

var (
	// ErrWouldBlock is returned when the state file lock is held by another process.
	ErrWouldBlock = errors.New("file lock would block")

	// ErrUnsupportedVersion is returned when a snapshot was written by an
	// incompatible schema version.
	ErrUnsupportedVersion = errors.New("unsupported snapshot version")
)

// Backend defines the contract for all persistence mechanisms.
type Backend interface {
	// Load retrieves the stored snapshot.
	// It MUST return (nil, nil) if no snapshot has been stored.
	Load() (*Snapshot, error)

	// Save atomically persists the entire snapshot.
	Save(snapshot *Snapshot) error

	// Close releases any resources held by the backend.
	Close() error
}
