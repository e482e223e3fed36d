package engine

import (
	"svc/internal/branch"
	"svc/internal/commit"
	"svc/internal/errors"

	"go.uber.org/zap"
)

// Commit records every change on the active branch since its last commit.
// When nothing changed no commit is created and the returned id is empty.
func (e *Engine) Commit(message string) (string, error) {
	if e == nil {
		return "", errNilEngine()
	}
	if message == "" {
		return "", errors.InvalidArgument("commit message is required")
	}
	return e.commit(message, branch.NoCommit)
}

// commit builds against a copy of the roster and only installs it once the
// commit is finalized. mergeHead, when set, becomes the second parent.
func (e *Engine) commit(message string, mergeHead int) (string, error) {
	b := e.activeBranch()

	c, err := commit.New(message, e.active, len(b.Files), e.store)
	if err != nil {
		return "", errors.InvalidArgument(err.Error())
	}

	files := b.CopyFiles()
	for i := range files {
		fd := &files[i]
		switch fd.State {
		case branch.Deleted:
			if err := c.RecordRemove(fd.Path); err != nil {
				return "", errors.IOFailure("recording removal", err)
			}
		case branch.Staged:
			if !e.fs.Exists(fd.Path) {
				fd.State = branch.Deleted
				continue
			}
			hash, err := c.RecordAdd(fd.Path, e.fs)
			if err != nil {
				return "", errors.IOFailure("committing "+fd.Path, err)
			}
			fd.State = branch.Tracked
			fd.LastHash = hash
		case branch.Tracked:
			if !e.fs.Exists(fd.Path) {
				if err := c.RecordRemove(fd.Path); err != nil {
					return "", errors.IOFailure("recording removal", err)
				}
				fd.State = branch.Deleted
				continue
			}
			hash, err := c.RecordChange(fd.Path, fd.LastHash, e.fs)
			if err != nil {
				return "", errors.IOFailure("committing "+fd.Path, err)
			}
			fd.LastHash = hash
		}
	}

	if c.Len() == 0 {
		// Only staged files that vanished can have changed state here; they
		// were never committed, so they leave the roster without a record.
		b.Files = files
		b.CleanFiles()
		e.logger.Debug("nothing to commit", zap.String("branch", b.Name))
		return "", nil
	}

	var parents []int
	if b.HasCommit() {
		parents = append(parents, b.Head)
	}
	if mergeHead != branch.NoCommit {
		parents = append(parents, mergeHead)
	}
	if err := c.Link(parents...); err != nil {
		return "", errors.IOFailure("linking commit", err)
	}

	id, err := c.Finalize(e.scheme)
	if err != nil {
		return "", errors.IOFailure("finalizing commit", err)
	}

	e.commits = append(e.commits, c)
	b.Head = len(e.commits) - 1
	b.Files = files
	b.CleanFiles()

	e.logger.Info("commit created",
		zap.String("id", id),
		zap.String("branch", b.Name),
		zap.Int("records", c.Len()),
		zap.Int("parents", len(parents)))
	return id, nil
}

// GetCommit finds a commit by id, scanning from the newest commit to the
// oldest. Ids are checksums, so on a collision the newest match wins.
func (e *Engine) GetCommit(id string) *commit.Commit {
	if i := e.commitIndex(id); i >= 0 {
		return e.commits[i]
	}
	return nil
}

func (e *Engine) commitIndex(id string) int {
	if e == nil || id == "" {
		return -1
	}
	for i := len(e.commits) - 1; i >= 0; i-- {
		if e.commits[i].ID() == id {
			return i
		}
	}
	return -1
}

// ParentIDs returns the ids of a commit's parents: none for a root commit,
// two for a merge. A nil commit has no parents.
func (e *Engine) ParentIDs(c *commit.Commit) []string {
	if e == nil || c == nil {
		return []string{}
	}
	parents := c.Parents()
	ids := make([]string, 0, len(parents))
	for _, p := range parents {
		if pc := e.commitAt(p); pc != nil {
			ids = append(ids, pc.ID())
		}
	}
	return ids
}

// Log walks first parents from the head of the named branch (the active
// branch when name is empty), newest first.
func (e *Engine) Log(name string) ([]*commit.Commit, error) {
	if e == nil {
		return nil, errNilEngine()
	}

	idx := e.active
	if name != "" {
		if idx = e.branchIndex(name); idx < 0 {
			return nil, errors.NotFound(-1, "branch not found: "+name)
		}
	}

	var out []*commit.Commit
	for c := e.commitAt(e.branches[idx].Head); c != nil; {
		out = append(out, c)
		parents := c.Parents()
		if len(parents) == 0 {
			break
		}
		c = e.commitAt(parents[0])
	}
	return out, nil
}
