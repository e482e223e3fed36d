// Package branch holds a line of history: the head commit and the roster of
// files known to it.
package branch

import (
	"fmt"

	"svc/internal/content"
	"svc/internal/snapshot"
)

// FileState is the tracking state of a roster entry.
type FileState int

const (
	Tracked FileState = iota
	Staged
	Deleted
)

func (s FileState) String() string {
	switch s {
	case Tracked:
		return "tracked"
	case Staged:
		return "staged"
	case Deleted:
		return "deleted"
	default:
		return fmt.Sprintf("FileState(%d)", int(s))
	}
}

// FileData is one roster entry. For Staged entries LastHash is the hash
// taken at add time.
type FileData struct {
	Path     string       `json:"path"`
	State    FileState    `json:"state"`
	LastHash content.Hash `json:"last_hash"`
}

const (
	// DefaultName is the reserved name of the branch created at init.
	DefaultName = "master"
	// NoCommit marks a branch without commits.
	NoCommit = -1

	initialRosterSize = 8
)

// Branch points at the latest commit on a line of history. Head is an index
// into the engine's commit log.
type Branch struct {
	Name  string     `json:"name"`
	Files []FileData `json:"files"`
	Head  int        `json:"head"`
}

// NewDefault creates the initial branch: empty roster, no commit.
func NewDefault() *Branch {
	return &Branch{
		Name:  DefaultName,
		Files: make([]FileData, 0, initialRosterSize),
		Head:  NoCommit,
	}
}

func (b *Branch) HasCommit() bool {
	return b.Head != NoCommit
}

// Clone deep-copies the roster into a new branch sharing the same head.
func (b *Branch) Clone(name string) *Branch {
	return &Branch{
		Name:  name,
		Files: b.CopyFiles(),
		Head:  b.Head,
	}
}

// CopyFiles returns a copy of the roster with the same capacity.
func (b *Branch) CopyFiles() []FileData {
	files := make([]FileData, len(b.Files), max(cap(b.Files), initialRosterSize))
	copy(files, b.Files)
	return files
}

// IsUnknown reports whether path has no live (non-Deleted) roster entry.
func (b *Branch) IsUnknown(path string) bool {
	for _, fd := range b.Files {
		if fd.Path == path && fd.State != Deleted {
			return false
		}
	}
	return true
}

// Stage appends a Staged entry.
func (b *Branch) Stage(path string, hash content.Hash) {
	b.Files = append(b.Files, FileData{Path: path, State: Staged, LastHash: hash})
}

// Remove drops a Staged entry from the roster or marks a Tracked one
// Deleted, returning its last hash. ok is false when path has no live entry.
func (b *Branch) Remove(path string) (hash content.Hash, ok bool) {
	for i, fd := range b.Files {
		if fd.Path != path {
			continue
		}
		switch fd.State {
		case Staged:
			b.Files = append(b.Files[:i], b.Files[i+1:]...)
			return fd.LastHash, true
		case Tracked:
			b.Files[i].State = Deleted
			return fd.LastHash, true
		}
	}
	return 0, false
}

// CleanFiles removes every Deleted entry, keeping the rest in order. It runs
// once after each successful commit.
func (b *Branch) CleanFiles() {
	cleaned := b.Files[:0]
	for _, fd := range b.Files {
		if fd.State != Deleted {
			cleaned = append(cleaned, fd)
		}
	}
	clear(b.Files[len(cleaned):])
	b.Files = cleaned
}

// ResetFiles replaces the roster with one Tracked entry per snapshot entry.
func (b *Branch) ResetFiles(entries []snapshot.Entry) {
	files := make([]FileData, 0, max(len(entries), initialRosterSize))
	for _, e := range entries {
		files = append(files, FileData{Path: e.Name, State: Tracked, LastHash: e.Hash})
	}
	b.Files = files
}
