// Package ports defines the interfaces that adapters implement. The search
// core never depends on them; only the command layer does.
package ports

import "time"

// History records completed searches in durable storage.
// Writes are transactional: a crash mid-write must not corrupt previously
// recorded entries. Concurrent reads are safe.
type History interface {
	// Record appends one entry. Entries keep insertion order.
	Record(entry HistoryEntry) error

	// Recent returns up to limit entries, newest first. limit <= 0 means all.
	Recent(limit int) ([]HistoryEntry, error)

	// Clear removes every entry. Clearing an empty history is not an error.
	Clear() error

	Close() error
}

// HistoryEntry is one completed search.
type HistoryEntry struct {
	Time     time.Time `json:"time"`
	Query    string    `json:"query"`
	Filename string    `json:"filename"`
	Mode     string    `json:"mode"`
	Matches  int       `json:"matches"`
}
