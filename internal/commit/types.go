package commit

import (
	"fmt"

	"svc/internal/content"
	"svc/internal/snapshot"
)

// ChangeType is the kind of change a record describes.
type ChangeType int

const (
	Add ChangeType = iota
	Remove
	Change
)

func (t ChangeType) String() string {
	switch t {
	case Add:
		return "add"
	case Remove:
		return "remove"
	case Change:
		return "change"
	default:
		return fmt.Sprintf("ChangeType(%d)", int(t))
	}
}

// Record describes one file that changed since the branch's last commit.
type Record struct {
	FileName string        `json:"file_name"`
	Change   ChangeType    `json:"change"`
	OldHash  *content.Hash `json:"old_hash,omitempty"`
	NewHash  *content.Hash `json:"new_hash,omitempty"`
}

// Hasher hashes a working-tree file and returns a copy of its contents.
type Hasher interface {
	HashAndCopy(path string) (content.Hash, []byte, error)
}

// State is the persisted form of a finalized commit.
type State struct {
	ID       string           `json:"id"`
	Message  string           `json:"message"`
	BranchID int              `json:"branch_id"`
	Records  []Record         `json:"records"`
	Parents  []int            `json:"parents"`
	Snapshot []snapshot.Entry `json:"snapshot"`
}
