package storage

import (
	"time"
)

// CurrentSchemaVersion is written into every saved snapshot. Snapshots with a
// different non-empty version are rejected by the file system backend.
const CurrentSchemaVersion = "1"

// Snapshot is the persisted form of a calculator session.
// This is the top-level object serialized to the state file.
type Snapshot struct {
	Version   string         `json:"version"`
	SessionID string         `json:"session_id,omitempty"` // ID of the session that last wrote the file.
	UpdatedAt time.Time      `json:"updated_at"`
	History   []HistoryEntry `json:"history"`
	// Variables is only populated when variable persistence is enabled.
	Variables map[string]any `json:"variables,omitempty"`
}

// HistoryEntry is an immutable record of one submitted line and its outcome.
type HistoryEntry struct {
	Expression string `json:"expression"`
	Result     string `json:"result"`
	IsError    bool   `json:"is_error"`
}
