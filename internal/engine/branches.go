package engine

import (
	"fmt"

	"svc/internal/errors"
	"svc/internal/snapshot"

	"go.uber.org/zap"
)

// Branch creates a branch from the active one: a deep copy of its roster
// sharing its head commit. The active branch does not change.
func (e *Engine) Branch(name string) error {
	if e == nil {
		return errNilEngine()
	}
	if !e.validate(name) {
		return errors.ValidationError("invalid branch name", map[string]string{"name": name})
	}
	if e.branchIndex(name) >= 0 {
		return errors.Conflict(-2, "branch already exists: "+name)
	}
	if e.HasUncommittedChanges() {
		return errors.Conflict(-3, "uncommitted changes")
	}

	e.branches = append(e.branches, e.activeBranch().Clone(name))
	e.logger.Info("branch created",
		zap.String("name", name),
		zap.String("from", e.activeBranch().Name))
	return nil
}

// Checkout switches the active branch and restores the files of its head
// commit to the working tree.
func (e *Engine) Checkout(name string) error {
	if e == nil {
		return errNilEngine()
	}
	idx := e.branchIndex(name)
	if name == "" || idx < 0 {
		return errors.NotFound(-1, "branch not found: "+name)
	}
	if e.HasUncommittedChanges() {
		return errors.Conflict(-2, "uncommitted changes")
	}

	prev := e.active
	e.active = idx
	if head := e.Head(); head != nil {
		if err := e.restore(head.Snapshot()); err != nil {
			e.active = prev
			return err
		}
	}

	e.logger.Info("branch checked out", zap.String("name", name))
	return nil
}

// ListBranches returns every branch name in creation order.
func (e *Engine) ListBranches() []string {
	if e == nil {
		return nil
	}
	names := make([]string, len(e.branches))
	for i, b := range e.branches {
		names[i] = b.Name
	}
	return names
}

// Reset points the active branch at the commit, rebuilds its roster from
// the commit's snapshot with every file tracked, and restores those files.
func (e *Engine) Reset(id string) error {
	if e == nil {
		return errNilEngine()
	}
	if id == "" {
		return errors.InvalidArgument("commit id is required")
	}
	idx := e.commitIndex(id)
	if idx < 0 {
		return errors.NotFound(-2, "commit not found: "+id)
	}

	c := e.commits[idx]
	b := e.activeBranch()
	b.Head = idx
	b.ResetFiles(c.Snapshot().Entries())
	if err := e.restore(c.Snapshot()); err != nil {
		return err
	}

	e.logger.Info("branch reset",
		zap.String("branch", b.Name),
		zap.String("commit", id))
	return nil
}

// Resolution settles a merge conflict on FileName with the contents of
// ResolvedFile. A missing ResolvedFile deletes FileName.
type Resolution struct {
	FileName     string `json:"file_name"`
	ResolvedFile string `json:"resolved_file"`
}

// Merge folds the head of the named branch into the active branch: files
// unknown to the active roster are restored if needed and staged, the
// resolutions are applied in order, and a commit "Merged branch <name>" is
// made with the merged head as second parent. An empty id means there was
// nothing to commit.
func (e *Engine) Merge(name string, resolutions []Resolution) (string, error) {
	if e == nil {
		return "", errNilEngine()
	}
	if name == "" {
		return "", errors.InvalidArgument("Invalid branch name")
	}
	idx := e.branchIndex(name)
	if idx < 0 {
		return "", errors.NotFound(-2, "Branch not found")
	}
	if idx == e.active {
		return "", errors.Conflict(-3, "Cannot merge a branch with itself")
	}
	if e.HasUncommittedChanges() {
		return "", errors.Conflict(-4, "Changes must be committed")
	}

	target := e.branches[idx]
	head := e.commitAt(target.Head)
	if head == nil {
		return "", errors.NotFound(-5, "Branch has no commits")
	}

	for _, entry := range head.Snapshot().Entries() {
		if !e.activeBranch().IsUnknown(entry.Name) {
			continue
		}
		if !e.fs.Exists(entry.Name) {
			if err := e.restoreEntry(entry); err != nil {
				return "", err
			}
		}
		if _, err := e.Add(entry.Name); err != nil {
			return "", err
		}
	}

	for _, r := range resolutions {
		if err := e.resolve(r); err != nil {
			return "", err
		}
	}

	id, err := e.commit(fmt.Sprintf("Merged branch %s", name), target.Head)
	if err != nil {
		return "", err
	}

	e.logger.Info("merge completed",
		zap.String("branch", name),
		zap.String("into", e.activeBranch().Name),
		zap.String("id", id))
	return id, nil
}

func (e *Engine) resolve(r Resolution) error {
	if r.FileName == "" {
		return errors.InvalidArgument("resolution file name is required")
	}
	if r.ResolvedFile == "" || !e.fs.Exists(r.ResolvedFile) {
		if err := e.fs.Delete(r.FileName); err != nil {
			return errors.IOFailure("resolving "+r.FileName, err)
		}
		return nil
	}

	data, err := e.fs.ReadFile(r.ResolvedFile)
	if err != nil {
		return errors.IOFailure("reading resolution "+r.ResolvedFile, err)
	}
	if err := e.fs.Overwrite(r.FileName, data); err != nil {
		return errors.IOFailure("resolving "+r.FileName, err)
	}
	return nil
}

// restore overwrites every file of the snapshot with its stored contents.
func (e *Engine) restore(ss *snapshot.Snapshot) error {
	for _, entry := range ss.Entries() {
		if err := e.restoreEntry(entry); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) restoreEntry(entry snapshot.Entry) error {
	data, err := e.store.Get(entry.Hash)
	if err != nil {
		return errors.IOFailure("reading blob for "+entry.Name, err)
	}
	if err := e.fs.Overwrite(entry.Name, data); err != nil {
		return errors.IOFailure("restoring "+entry.Name, err)
	}
	return nil
}
