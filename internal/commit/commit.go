// Package commit builds immutable commit records: the per-file change list,
// the snapshot of every tracked file and the derived commit id.
package commit

import (
	"errors"
	"fmt"

	"svc/internal/content"
	"svc/internal/snapshot"
)

var (
	ErrFinalized  = errors.New("commit is finalized")
	ErrNoRecords  = errors.New("commit has no records")
	ErrNoMessage  = errors.New("commit message is required")
	ErrNoFilePath = errors.New("file path is required")
)

// Commit is a DAG node. Parents are indices into the engine's commit log,
// which only ever holds earlier commits, so no commit can be its own
// ancestor.
type Commit struct {
	id        string
	message   string
	branchID  int
	records   []Record
	parents   []int
	snapshot  *snapshot.Snapshot
	store     content.Store
	finalized bool
}

// New starts building a commit. expectedRecords sizes the record list; it
// still grows past that on demand.
func New(message string, branchID, expectedRecords int, store content.Store) (*Commit, error) {
	if message == "" {
		return nil, ErrNoMessage
	}
	if expectedRecords < 1 {
		expectedRecords = 1
	}
	return &Commit{
		message:  message,
		branchID: branchID,
		records:  make([]Record, 0, expectedRecords),
		snapshot: snapshot.New(),
		store:    store,
	}, nil
}

// FromState restores a finalized commit.
func FromState(s State) *Commit {
	records := make([]Record, len(s.Records))
	copy(records, s.Records)
	parents := make([]int, len(s.Parents))
	copy(parents, s.Parents)
	return &Commit{
		id:        s.ID,
		message:   s.Message,
		branchID:  s.BranchID,
		records:   records,
		parents:   parents,
		snapshot:  snapshot.FromEntries(s.Snapshot),
		finalized: true,
	}
}

// State returns the persisted form of the commit.
func (c *Commit) State() State {
	return State{
		ID:       c.id,
		Message:  c.message,
		BranchID: c.branchID,
		Records:  c.Records(),
		Parents:  c.Parents(),
		Snapshot: c.snapshot.Entries(),
	}
}

func (c *Commit) ID() string                   { return c.id }
func (c *Commit) Message() string              { return c.message }
func (c *Commit) BranchID() int                { return c.branchID }
func (c *Commit) Snapshot() *snapshot.Snapshot { return c.snapshot }
func (c *Commit) Len() int                     { return len(c.records) }

// Records returns a copy of the change records.
func (c *Commit) Records() []Record {
	out := make([]Record, len(c.records))
	copy(out, c.records)
	return out
}

// Parents returns the commit-log indices of the parents.
func (c *Commit) Parents() []int {
	out := make([]int, len(c.parents))
	copy(out, c.parents)
	return out
}

func (c *Commit) building() error {
	if c == nil {
		return fmt.Errorf("commit is nil")
	}
	if c.finalized {
		return ErrFinalized
	}
	return nil
}

// RecordRemove records the removal of a path known to be deleted.
func (c *Commit) RecordRemove(path string) error {
	if err := c.building(); err != nil {
		return err
	}
	if path == "" {
		return ErrNoFilePath
	}
	c.records = append(c.records, Record{FileName: path, Change: Remove})
	return nil
}

// RecordAdd hashes and snapshots a newly staged file.
func (c *Commit) RecordAdd(path string, h Hasher) (content.Hash, error) {
	if err := c.building(); err != nil {
		return 0, err
	}
	if path == "" {
		return 0, ErrNoFilePath
	}

	hash, contents, err := h.HashAndCopy(path)
	if err != nil {
		return 0, fmt.Errorf("hashing %s: %w", path, err)
	}

	c.records = append(c.records, Record{FileName: path, Change: Add, NewHash: hash.Ptr()})
	if err := c.snapshot.Record(c.store, path, hash, contents); err != nil {
		return 0, err
	}
	return hash, nil
}

// RecordChange rehashes a tracked file. A Change record is only appended
// when the hash moved, but the file is always snapshotted so the snapshot
// is the complete tracked state.
func (c *Commit) RecordChange(path string, oldHash content.Hash, h Hasher) (content.Hash, error) {
	if err := c.building(); err != nil {
		return 0, err
	}
	if path == "" {
		return 0, ErrNoFilePath
	}

	hash, contents, err := h.HashAndCopy(path)
	if err != nil {
		return 0, fmt.Errorf("hashing %s: %w", path, err)
	}

	if hash != oldHash {
		c.records = append(c.records, Record{
			FileName: path,
			Change:   Change,
			OldHash:  oldHash.Ptr(),
			NewHash:  hash.Ptr(),
		})
	}
	if err := c.snapshot.Record(c.store, path, hash, contents); err != nil {
		return 0, err
	}
	return hash, nil
}

// Link sets the parent commits. Parents do not take part in id derivation.
func (c *Commit) Link(parents ...int) error {
	if err := c.building(); err != nil {
		return err
	}
	c.parents = append(c.parents, parents...)
	return nil
}

// Finalize sorts the records, derives the id and freezes the commit.
func (c *Commit) Finalize(scheme Scheme) (string, error) {
	if err := c.building(); err != nil {
		return "", err
	}
	if len(c.records) == 0 {
		return "", ErrNoRecords
	}

	SortRecords(c.records)
	id, err := DeriveID(scheme, c.message, c.records)
	if err != nil {
		return "", err
	}

	c.id = id
	c.finalized = true
	c.store = nil
	return id, nil
}
