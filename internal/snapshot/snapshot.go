// Package snapshot records the full tracked-file state of a commit as
// (name, hash) pairs whose contents live in a content store.
package snapshot

import (
	"fmt"

	"svc/internal/content"
)

// Entry is one tracked file at commit time.
type Entry struct {
	Name string       `json:"name"`
	Hash content.Hash `json:"hash"`
}

// Snapshot is append-only while its commit is being built and read-only
// afterwards.
type Snapshot struct {
	entries []Entry
}

const initialSize = 8

func New() *Snapshot {
	return &Snapshot{entries: make([]Entry, 0, initialSize)}
}

// FromEntries rebuilds a snapshot from persisted entries.
func FromEntries(entries []Entry) *Snapshot {
	s := New()
	s.entries = append(s.entries, entries...)
	return s
}

// Record appends (name, hash) and stores contents under hash. A blob that
// already exists for hash is left untouched.
func (s *Snapshot) Record(store content.Store, name string, hash content.Hash, contents []byte) error {
	if s == nil {
		return fmt.Errorf("snapshot is nil")
	}
	if store == nil {
		return fmt.Errorf("content store is nil")
	}
	if name == "" {
		return fmt.Errorf("file name is required")
	}
	if contents == nil {
		return fmt.Errorf("contents of %s are absent", name)
	}

	if err := store.Put(hash, contents); err != nil {
		return fmt.Errorf("storing %s: %w", name, err)
	}
	s.entries = append(s.entries, Entry{Name: name, Hash: hash})
	return nil
}

// Entries returns a copy of the entries in recording order.
func (s *Snapshot) Entries() []Entry {
	if s == nil {
		return nil
	}
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.entries)
}
