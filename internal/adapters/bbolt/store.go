// Package bbolt implements the ports.History interface using bbolt (embedded B+ tree).
// Entries live in a single "history" bucket keyed by the bucket's sequence
// number, big-endian, so cursor order is insertion order. Values are JSON.
package bbolt

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/corey/minigrep/internal/ports"
	bolt "go.etcd.io/bbolt"
)

var bucketHistory = []byte("history")

// Store implements ports.History backed by bbolt.
type Store struct {
	db *bolt.DB
}

var _ ports.History = (*Store)(nil)

// NewStore opens (or creates) a bbolt database at the given path.
func NewStore(path string) (*Store, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("bbolt open: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying bbolt database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record appends an entry to the history.
func (s *Store) Record(entry ports.HistoryEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal history entry: %w", err)
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(bucketHistory)
		if err != nil {
			return err
		}
		seq, err := b.NextSequence()
		if err != nil {
			return err
		}
		return b.Put(seqKey(seq), data)
	})
}

// Recent returns up to limit entries, newest first.
func (s *Store) Recent(limit int) ([]ports.HistoryEntry, error) {
	var raw [][]byte

	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketHistory)
		if b == nil {
			return nil
		}
		c := b.Cursor()
		for k, v := c.Last(); k != nil; k, v = c.Prev() {
			if limit > 0 && len(raw) >= limit {
				break
			}
			// Copy bytes out of the transaction (bbolt slices are only valid within tx)
			buf := make([]byte, len(v))
			copy(buf, v)
			raw = append(raw, buf)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	entries := make([]ports.HistoryEntry, 0, len(raw))
	for _, data := range raw {
		var e ports.HistoryEntry
		if err := json.Unmarshal(data, &e); err != nil {
			return nil, fmt.Errorf("unmarshal history entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// Clear removes all entries. Idempotent.
func (s *Store) Clear() error {
	return s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket(bucketHistory); err != nil && !errors.Is(err, bolt.ErrBucketNotFound) {
			return err
		}
		return nil
	})
}

func seqKey(seq uint64) []byte {
	k := make([]byte, 8)
	binary.BigEndian.PutUint64(k, seq)
	return k
}
