// Package shared holds the JSON bodies exchanged by the service and its
// client.
package shared

import (
	"svc/internal/errors"
)

type FileRequest struct {
	Path string `json:"path"`
}

func (r *FileRequest) Validate() error {
	if r.Path == "" {
		return errors.ValidationError("path is required", nil)
	}
	return nil
}

type FileResponse struct {
	Path string `json:"path"`
	Hash int64  `json:"hash"`
}

type CommitRequest struct {
	Message string `json:"message"`
}

func (r *CommitRequest) Validate() error {
	if r.Message == "" {
		return errors.ValidationError("message is required", nil)
	}
	return nil
}

// CommitResponse carries the id of a new commit. Committed is false when
// there was nothing to commit.
type CommitResponse struct {
	ID        string `json:"id"`
	Committed bool   `json:"committed"`
}

type BranchRequest struct {
	Name string `json:"name"`
}

func (r *BranchRequest) Validate() error {
	if r.Name == "" {
		return errors.ValidationError("name is required", nil)
	}
	return nil
}

type ResetRequest struct {
	ID string `json:"id"`
}

func (r *ResetRequest) Validate() error {
	if r.ID == "" {
		return errors.ValidationError("id is required", nil)
	}
	return nil
}

type Resolution struct {
	FileName     string `json:"file_name"`
	ResolvedFile string `json:"resolved_file"`
}

type MergeRequest struct {
	Branch      string       `json:"branch"`
	Resolutions []Resolution `json:"resolutions"`
}

func (r *MergeRequest) Validate() error {
	if r.Branch == "" {
		return errors.ValidationError("Invalid branch name", nil)
	}
	for _, res := range r.Resolutions {
		if res.FileName == "" {
			return errors.ValidationError("resolution file_name is required", nil)
		}
	}
	return nil
}

type BranchesResponse struct {
	Active   string   `json:"active"`
	Branches []string `json:"branches"`
}

type Record struct {
	FileName string `json:"file_name"`
	Change   string `json:"change"`
	OldHash  *int64 `json:"old_hash,omitempty"`
	NewHash  *int64 `json:"new_hash,omitempty"`
}

type SnapshotEntry struct {
	Name string `json:"name"`
	Hash int64  `json:"hash"`
}

type Commit struct {
	ID       string          `json:"id"`
	Message  string          `json:"message"`
	Branch   string          `json:"branch"`
	Parents  []string        `json:"parents"`
	Records  []Record        `json:"records"`
	Snapshot []SnapshotEntry `json:"snapshot"`
}

type FileStatus struct {
	Path     string `json:"path"`
	State    string `json:"state"`
	Status   string `json:"status"`
	LastHash int64  `json:"last_hash"`
}

type StatusResponse struct {
	Branch      string       `json:"branch"`
	Head        string       `json:"head,omitempty"`
	Uncommitted bool         `json:"uncommitted"`
	Files       []FileStatus `json:"files"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Code    int    `json:"code"`
	Details any    `json:"details,omitempty"`
}
