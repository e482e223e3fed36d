package engine

import (
	stderrors "errors"
	"io/fs"

	"svc/internal/branch"
	"svc/internal/content"
	"svc/internal/errors"

	"go.uber.org/zap"
)

// HashFile hashes a working-tree file. A missing file is NotFound (-2),
// any other read failure is an IOFailure (-3).
func (e *Engine) HashFile(path string) (content.Hash, error) {
	if e == nil {
		return 0, errNilEngine()
	}
	if path == "" {
		return 0, errors.InvalidArgument("file path is required")
	}

	hash, _, err := e.fs.HashAndCopy(path)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return 0, errors.NotFound(-2, "file not found: "+path)
		}
		return 0, errors.IOFailure("hashing "+path, err)
	}
	return hash, nil
}

// Add stages path on the active branch and returns its hash.
func (e *Engine) Add(path string) (content.Hash, error) {
	if e == nil {
		return 0, errNilEngine()
	}
	if path == "" {
		return 0, errors.InvalidArgument("file path is required")
	}
	if !e.fs.Exists(path) {
		return 0, errors.NotFound(-3, "file not found: "+path)
	}

	b := e.activeBranch()
	if !b.IsUnknown(path) {
		return 0, errors.Conflict(-2, "file is already staged or tracked: "+path)
	}

	hash, err := e.HashFile(path)
	if err != nil {
		return 0, errors.IOFailure("staging "+path, err)
	}

	b.Stage(path, hash)
	e.logger.Debug("file staged",
		zap.String("branch", b.Name),
		zap.String("path", path),
		zap.Int64("hash", int64(hash)))
	return hash, nil
}

// Remove stops tracking path without touching the working tree. A staged
// file is dropped from the roster; a tracked one is marked deleted and
// removed by the next commit. The last known hash is returned.
func (e *Engine) Remove(path string) (content.Hash, error) {
	if e == nil {
		return 0, errNilEngine()
	}
	if path == "" {
		return 0, errors.InvalidArgument("file path is required")
	}

	b := e.activeBranch()
	hash, ok := b.Remove(path)
	if !ok {
		return 0, errors.NotFound(-2, "file is not tracked: "+path)
	}

	e.logger.Debug("file removed from roster",
		zap.String("branch", b.Name),
		zap.String("path", path))
	return hash, nil
}

// HasUncommittedChanges reports whether the active branch has a staged
// entry, or a tracked entry whose file no longer hashes to its last known
// hash. A tracked file that vanished counts as changed.
func (e *Engine) HasUncommittedChanges() bool {
	if e == nil {
		return false
	}
	for _, fd := range e.activeBranch().Files {
		switch fd.State {
		case branch.Staged:
			return true
		case branch.Tracked:
			hash, err := e.HashFile(fd.Path)
			if err != nil || hash != fd.LastHash {
				return true
			}
		}
	}
	return false
}

// FileStatus is the working-tree view of one roster entry.
type FileStatus struct {
	Path     string           `json:"path"`
	State    branch.FileState `json:"state"`
	Status   WorkStatus       `json:"status"`
	LastHash content.Hash     `json:"last_hash"`
}

// WorkStatus compares a roster entry with the file on disk.
type WorkStatus string

const (
	StatusStaged     WorkStatus = "staged"
	StatusUnmodified WorkStatus = "unmodified"
	StatusModified   WorkStatus = "modified"
	StatusMissing    WorkStatus = "missing"
	StatusDeleted    WorkStatus = "deleted"
)

// Status reports every roster entry of the active branch against the
// working tree.
func (e *Engine) Status() ([]FileStatus, error) {
	if e == nil {
		return nil, errNilEngine()
	}

	files := e.activeBranch().Files
	out := make([]FileStatus, 0, len(files))
	for _, fd := range files {
		st := FileStatus{Path: fd.Path, State: fd.State, LastHash: fd.LastHash}
		switch fd.State {
		case branch.Staged:
			st.Status = StatusStaged
		case branch.Deleted:
			st.Status = StatusDeleted
		default:
			hash, err := e.HashFile(fd.Path)
			switch {
			case errors.CodeOf(err) == -2:
				st.Status = StatusMissing
			case err != nil:
				return nil, err
			case hash != fd.LastHash:
				st.Status = StatusModified
			default:
				st.Status = StatusUnmodified
			}
		}
		out = append(out, st)
	}
	return out, nil
}
