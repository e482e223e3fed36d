package main

import (
	"context"

	"svc/client"
	"svc/internal/api"
	"svc/internal/engine"
	"svc/internal/repo"
	shared "svc/shared/types"
)

// backend is what the commands run against: the repository in the current
// directory, or a running svc daemon.
type backend interface {
	Status(ctx context.Context) (*shared.StatusResponse, error)
	Hash(ctx context.Context, path string) (int64, error)
	Add(ctx context.Context, path string) (int64, error)
	Remove(ctx context.Context, path string) (int64, error)
	Commit(ctx context.Context, message string) (string, error)
	GetCommit(ctx context.Context, id string) (*shared.Commit, error)
	Log(ctx context.Context, branch string) ([]shared.Commit, error)
	ListBranches(ctx context.Context) (*shared.BranchesResponse, error)
	CreateBranch(ctx context.Context, name string) error
	Checkout(ctx context.Context, name string) error
	Reset(ctx context.Context, id string) error
	Merge(ctx context.Context, branch string, resolutions []shared.Resolution) (string, error)
	Close() error
}

type remoteBackend struct {
	*client.Client
}

func (remoteBackend) Close() error { return nil }

// localBackend runs commands in process. Paths are taken relative to the
// current directory.
type localBackend struct {
	repo *repo.Repository
}

func (b *localBackend) rel(path string) (string, error) {
	return b.repo.Workspace.Rel(path)
}

func (b *localBackend) Close() error {
	return b.repo.Close()
}

func (b *localBackend) Status(ctx context.Context) (*shared.StatusResponse, error) {
	var resp shared.StatusResponse
	err := b.repo.View(func(e *engine.Engine) error {
		var err error
		resp, err = api.StatusView(e)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func (b *localBackend) Hash(ctx context.Context, path string) (int64, error) {
	rel, err := b.rel(path)
	if err != nil {
		return 0, err
	}
	var hash int64
	err = b.repo.View(func(e *engine.Engine) error {
		h, err := e.HashFile(rel)
		hash = int64(h)
		return err
	})
	return hash, err
}

func (b *localBackend) Add(ctx context.Context, path string) (int64, error) {
	rel, err := b.rel(path)
	if err != nil {
		return 0, err
	}
	var hash int64
	err = b.repo.Update(func(e *engine.Engine) error {
		h, err := e.Add(rel)
		hash = int64(h)
		return err
	})
	return hash, err
}

func (b *localBackend) Remove(ctx context.Context, path string) (int64, error) {
	rel, err := b.rel(path)
	if err != nil {
		return 0, err
	}
	var hash int64
	err = b.repo.Update(func(e *engine.Engine) error {
		h, err := e.Remove(rel)
		hash = int64(h)
		return err
	})
	return hash, err
}

func (b *localBackend) Commit(ctx context.Context, message string) (string, error) {
	var id string
	err := b.repo.Update(func(e *engine.Engine) error {
		var err error
		id, err = e.Commit(message)
		return err
	})
	return id, err
}

func (b *localBackend) GetCommit(ctx context.Context, id string) (*shared.Commit, error) {
	var view *shared.Commit
	err := b.repo.View(func(e *engine.Engine) error {
		if c := e.GetCommit(id); c != nil {
			v := api.CommitView(e, c)
			view = &v
		}
		return nil
	})
	return view, err
}

func (b *localBackend) Log(ctx context.Context, branch string) ([]shared.Commit, error) {
	var views []shared.Commit
	err := b.repo.View(func(e *engine.Engine) error {
		commits, err := e.Log(branch)
		if err != nil {
			return err
		}
		for _, c := range commits {
			views = append(views, api.CommitView(e, c))
		}
		return nil
	})
	return views, err
}

func (b *localBackend) ListBranches(ctx context.Context) (*shared.BranchesResponse, error) {
	var resp shared.BranchesResponse
	err := b.repo.View(func(e *engine.Engine) error {
		resp = shared.BranchesResponse{Active: e.ActiveBranch(), Branches: e.ListBranches()}
		return nil
	})
	return &resp, err
}

func (b *localBackend) CreateBranch(ctx context.Context, name string) error {
	return b.repo.Update(func(e *engine.Engine) error { return e.Branch(name) })
}

func (b *localBackend) Checkout(ctx context.Context, name string) error {
	return b.repo.Update(func(e *engine.Engine) error { return e.Checkout(name) })
}

func (b *localBackend) Reset(ctx context.Context, id string) error {
	return b.repo.Update(func(e *engine.Engine) error { return e.Reset(id) })
}

func (b *localBackend) Merge(ctx context.Context, branch string, resolutions []shared.Resolution) (string, error) {
	converted := make([]engine.Resolution, 0, len(resolutions))
	for _, r := range resolutions {
		name, err := b.rel(r.FileName)
		if err != nil {
			return "", err
		}
		resolved := ""
		if r.ResolvedFile != "" {
			if resolved, err = b.rel(r.ResolvedFile); err != nil {
				return "", err
			}
		}
		converted = append(converted, engine.Resolution{FileName: name, ResolvedFile: resolved})
	}

	var id string
	err := b.repo.Update(func(e *engine.Engine) error {
		var err error
		id, err = e.Merge(branch, converted)
		return err
	})
	return id, err
}
