// Package engine is the version control engine: it owns every branch and
// every commit ever made and runs add, remove, commit, branch, checkout,
// reset and merge against a working tree.
//
// An Engine assumes exclusive ownership of its state. Callers sharing one
// across goroutines must serialise access themselves.
package engine

import (
	"fmt"

	"svc/internal/branch"
	"svc/internal/commit"
	"svc/internal/content"
	"svc/internal/errors"
	"svc/internal/validation"

	"go.uber.org/zap"
)

// FileSystem is the working tree as the engine sees it.
type FileSystem interface {
	Exists(path string) bool
	HashAndCopy(path string) (content.Hash, []byte, error)
	ReadFile(path string) ([]byte, error)
	Overwrite(path string, contents []byte) error
	Delete(path string) error
}

// NameValidator checks branch name syntax.
type NameValidator func(name string) bool

// Options wires the engine to its collaborators.
type Options struct {
	Store        content.Store
	FS           FileSystem
	ValidateName NameValidator // defaults to validation.BranchName
	Scheme       commit.Scheme // defaults to commit.SchemeChecksum
	Logger       *zap.Logger
}

// Engine is the root of the data model. Branches and commits are
// append-only; their indices are stable and used as references.
type Engine struct {
	branches []*branch.Branch
	active   int
	commits  []*commit.Commit

	store    content.Store
	fs       FileSystem
	validate NameValidator
	scheme   commit.Scheme
	logger   *zap.Logger
}

// State is the persisted form of an engine.
type State struct {
	Branches []*branch.Branch `json:"branches"`
	Active   int              `json:"active"`
	Commits  []commit.State   `json:"commits"`
}

// New creates an engine holding only the default branch.
func New(opts Options) (*Engine, error) {
	e, err := newEngine(opts)
	if err != nil {
		return nil, err
	}
	e.branches = append(e.branches, branch.NewDefault())
	return e, nil
}

func newEngine(opts Options) (*Engine, error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("content store is required")
	}
	if opts.FS == nil {
		return nil, fmt.Errorf("file system is required")
	}
	if opts.ValidateName == nil {
		opts.ValidateName = validation.BranchName
	}
	if opts.Scheme == "" {
		opts.Scheme = commit.SchemeChecksum
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Engine{
		branches: make([]*branch.Branch, 0, 4),
		commits:  make([]*commit.Commit, 0, 16),
		store:    opts.Store,
		fs:       opts.FS,
		validate: opts.ValidateName,
		scheme:   opts.Scheme,
		logger:   opts.Logger,
	}, nil
}

// Load rebuilds an engine from persisted state. Every reference must point
// backwards into the commit log.
func Load(state State, opts Options) (*Engine, error) {
	e, err := newEngine(opts)
	if err != nil {
		return nil, err
	}
	if len(state.Branches) == 0 {
		return nil, fmt.Errorf("state has no branches")
	}
	if state.Active < 0 || state.Active >= len(state.Branches) {
		return nil, fmt.Errorf("active branch %d out of range", state.Active)
	}

	for i, cs := range state.Commits {
		for _, p := range cs.Parents {
			if p < 0 || p >= i {
				return nil, fmt.Errorf("commit %s: parent %d does not precede it", cs.ID, p)
			}
		}
		e.commits = append(e.commits, commit.FromState(cs))
	}

	names := make(map[string]bool, len(state.Branches))
	for _, b := range state.Branches {
		if b == nil {
			return nil, fmt.Errorf("state holds a nil branch")
		}
		if names[b.Name] {
			return nil, fmt.Errorf("duplicate branch %q", b.Name)
		}
		names[b.Name] = true
		if b.Head != branch.NoCommit && (b.Head < 0 || b.Head >= len(e.commits)) {
			return nil, fmt.Errorf("branch %s: head %d out of range", b.Name, b.Head)
		}
		e.branches = append(e.branches, &branch.Branch{Name: b.Name, Files: b.CopyFiles(), Head: b.Head})
	}
	e.active = state.Active
	return e, nil
}

// Export returns a deep copy of the engine state.
func (e *Engine) Export() State {
	state := State{
		Branches: make([]*branch.Branch, len(e.branches)),
		Active:   e.active,
		Commits:  make([]commit.State, len(e.commits)),
	}
	for i, b := range e.branches {
		state.Branches[i] = b.Clone(b.Name)
	}
	for i, c := range e.commits {
		state.Commits[i] = c.State()
	}
	return state
}

func (e *Engine) activeBranch() *branch.Branch {
	return e.branches[e.active]
}

func errNilEngine() error {
	return errors.InvalidArgument("engine is nil")
}

// ActiveBranch returns the name of the checked out branch.
func (e *Engine) ActiveBranch() string {
	if e == nil {
		return ""
	}
	return e.activeBranch().Name
}

// BranchName returns the name of the branch at index id, as recorded in
// Commit.BranchID.
func (e *Engine) BranchName(id int) string {
	if e == nil || id < 0 || id >= len(e.branches) {
		return ""
	}
	return e.branches[id].Name
}

// Head returns the latest commit of the active branch, nil before the
// first commit.
func (e *Engine) Head() *commit.Commit {
	if e == nil {
		return nil
	}
	return e.commitAt(e.activeBranch().Head)
}

// Roster returns a copy of the active branch's file roster.
func (e *Engine) Roster() []branch.FileData {
	if e == nil {
		return nil
	}
	return e.activeBranch().CopyFiles()
}

// Commits returns the commit log in creation order.
func (e *Engine) Commits() []*commit.Commit {
	if e == nil {
		return nil
	}
	out := make([]*commit.Commit, len(e.commits))
	copy(out, e.commits)
	return out
}

func (e *Engine) commitAt(i int) *commit.Commit {
	if i < 0 || i >= len(e.commits) {
		return nil
	}
	return e.commits[i]
}

func (e *Engine) branchIndex(name string) int {
	for i := len(e.branches) - 1; i >= 0; i-- {
		if e.branches[i].Name == name {
			return i
		}
	}
	return -1
}
