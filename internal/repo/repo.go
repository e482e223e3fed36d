// Package repo ties an engine to a directory on disk: the working tree, the
// blob store under .svc/objects and the badger database under .svc/db that
// holds branches, commits and the active branch.
package repo

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"svc/internal/branch"
	"svc/internal/commit"
	"svc/internal/content"
	"svc/internal/engine"
	"svc/internal/storage"
	"svc/internal/workspace"

	"github.com/dgraph-io/badger/v4"
	"go.uber.org/zap"
)

const (
	dbDir      = "db"
	objectsDir = "objects"
	metaID     = "head"
)

var (
	ErrNotRepository      = errors.New("not an svc repository")
	ErrAlreadyInitialized = errors.New("repository already initialized")
)

// Options configures how a repository is opened.
type Options struct {
	Logger    *zap.Logger
	Scheme    commit.Scheme // used when the repository is created
	CacheSize int           // blob cache entries
	InMemory  bool          // keep the database in memory
}

// Repository is an engine bound to a working tree and its persisted state.
// Update and View serialise access, so one Repository may be shared across
// goroutines.
type Repository struct {
	Root      string
	Workspace *workspace.LocalWorkspace
	Store     *content.FileStore
	DB        *badger.DB
	Logger    *zap.Logger

	mu        sync.Mutex
	engine    *engine.Engine
	scheme    commit.Scheme
	commits   *storage.BadgerStore
	branches  *storage.BadgerStore
	meta      *storage.BadgerStore
	persisted int
}

type commitEntity struct {
	Index  int          `json:"index"`
	Commit commit.State `json:"commit"`
}

func (c *commitEntity) GetID() string { return indexID(c.Index) }

type branchEntity struct {
	Index  int            `json:"index"`
	Branch *branch.Branch `json:"branch"`
}

func (b *branchEntity) GetID() string { return indexID(b.Index) }

type metaEntity struct {
	ID     string `json:"id"`
	Active int    `json:"active"`
	Scheme string `json:"scheme"`
}

func (m *metaEntity) GetID() string { return m.ID }

func indexID(i int) string {
	return fmt.Sprintf("%08d", i)
}

// Initialize creates the .svc directory layout under root.
func Initialize(root string) error {
	metaDir := filepath.Join(root, workspace.MetaDir)
	if _, err := os.Stat(metaDir); err == nil {
		return fmt.Errorf("%w: %s", ErrAlreadyInitialized, root)
	}

	dirs := []string{
		filepath.Join(metaDir, dbDir),
		filepath.Join(metaDir, objectsDir),
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating directory %s: %w", dir, err)
		}
	}
	return nil
}

// Init creates a repository at root and opens it.
func Init(root string, opts Options) (*Repository, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("getting absolute path for root %s: %w", root, err)
	}
	if err := Initialize(absRoot); err != nil {
		return nil, err
	}

	r, err := Open(absRoot, opts)
	if err != nil {
		return nil, err
	}
	if err := r.meta.Create(&metaEntity{ID: metaID, Scheme: string(r.scheme)}); err != nil {
		r.Close()
		if errors.Is(err, storage.ErrExists) {
			return nil, fmt.Errorf("%w: %s", ErrAlreadyInitialized, absRoot)
		}
		return nil, fmt.Errorf("writing repository metadata: %w", err)
	}
	if err := r.Save(); err != nil {
		r.Close()
		return nil, err
	}
	return r, nil
}

// Open loads the repository at root.
func Open(root string, opts Options) (*Repository, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("getting absolute path for root %s: %w", root, err)
	}
	metaDir := filepath.Join(absRoot, workspace.MetaDir)
	if info, err := os.Stat(metaDir); err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotRepository, absRoot)
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	db, err := openDB(filepath.Join(metaDir, dbDir), opts.InMemory)
	if err != nil {
		return nil, err
	}

	store, err := content.NewFileStore(content.Options{
		Root:      filepath.Join(metaDir, objectsDir),
		CacheSize: opts.CacheSize,
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing content store: %w", err)
	}

	ws, err := workspace.NewLocalWorkspace(absRoot, logger)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating local workspace: %w", err)
	}

	r := &Repository{
		Root:      absRoot,
		Workspace: ws,
		Store:     store,
		DB:        db,
		Logger:    logger,
		commits:   storage.NewBadgerStore(db, "commit"),
		branches:  storage.NewBadgerStore(db, "branch"),
		meta:      storage.NewBadgerStore(db, "meta"),
	}
	if err := r.load(opts.Scheme); err != nil {
		db.Close()
		return nil, err
	}

	logger.Debug("repository opened",
		zap.String("root", absRoot),
		zap.Int("commits", r.persisted),
		zap.String("scheme", string(r.scheme)))
	return r, nil
}

func openDB(path string, inMemory bool) (*badger.DB, error) {
	opts := badger.DefaultOptions(path).
		WithLoggingLevel(badger.WARNING).
		WithNumVersionsToKeep(1)
	if inMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	return db, nil
}

func (r *Repository) engineOptions() engine.Options {
	return engine.Options{
		Store:  r.Store,
		FS:     r.Workspace,
		Scheme: r.scheme,
		Logger: r.Logger,
	}
}

func (r *Repository) load(scheme commit.Scheme) error {
	var meta metaEntity
	err := r.meta.Get(metaID, &meta)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		if scheme == "" {
			scheme = commit.SchemeChecksum
		}
		r.scheme = scheme
		e, err := engine.New(r.engineOptions())
		if err != nil {
			return err
		}
		r.engine = e
		return nil
	case err != nil:
		return fmt.Errorf("reading repository metadata: %w", err)
	}

	if r.scheme, err = commit.ParseScheme(meta.Scheme); err != nil {
		return err
	}

	var commits []commitEntity
	if err := r.commits.List(&commits); err != nil {
		return fmt.Errorf("loading commits: %w", err)
	}
	var branches []branchEntity
	if err := r.branches.List(&branches); err != nil {
		return fmt.Errorf("loading branches: %w", err)
	}

	state := engine.State{Active: meta.Active}
	for i, c := range commits {
		if c.Index != i {
			return fmt.Errorf("commit log has a gap at %d", i)
		}
		state.Commits = append(state.Commits, c.Commit)
	}
	for i, b := range branches {
		if b.Index != i {
			return fmt.Errorf("branch list has a gap at %d", i)
		}
		state.Branches = append(state.Branches, b.Branch)
	}

	e, err := engine.Load(state, r.engineOptions())
	if err != nil {
		return fmt.Errorf("loading engine state: %w", err)
	}
	r.engine = e
	r.persisted = len(state.Commits)
	return nil
}

// Save writes commits created since the last save, every branch and the
// active index in one transaction.
func (r *Repository) Save() error {
	state := r.engine.Export()

	err := r.DB.Update(func(txn *badger.Txn) error {
		for i := r.persisted; i < len(state.Commits); i++ {
			if err := r.commits.PutTxn(txn, &commitEntity{Index: i, Commit: state.Commits[i]}); err != nil {
				return err
			}
		}
		for i, b := range state.Branches {
			if err := r.branches.PutTxn(txn, &branchEntity{Index: i, Branch: b}); err != nil {
				return err
			}
		}
		return r.meta.PutTxn(txn, &metaEntity{
			ID:     metaID,
			Active: state.Active,
			Scheme: string(r.scheme),
		})
	})
	if err != nil {
		return fmt.Errorf("saving repository state: %w", err)
	}

	r.persisted = len(state.Commits)
	return nil
}

// Update runs fn against the engine and saves the resulting state. The
// state is saved even when fn fails, since a failed merge may already have
// staged files.
func (r *Repository) Update(fn func(e *engine.Engine) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	opErr := fn(r.engine)
	if err := r.Save(); err != nil {
		r.Logger.Error("failed to save repository", zap.Error(err))
		if opErr == nil {
			return err
		}
	}
	return opErr
}

// View runs fn against the engine without saving.
func (r *Repository) View(fn func(e *engine.Engine) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return fn(r.engine)
}

// Scheme returns the commit id scheme the repository was created with.
func (r *Repository) Scheme() commit.Scheme {
	return r.scheme
}

// Close releases the database.
func (r *Repository) Close() error {
	if r == nil || r.DB == nil {
		return nil
	}
	if err := r.DB.Close(); err != nil {
		return fmt.Errorf("closing database: %w", err)
	}
	return nil
}

// Discover opens the repository containing dir.
func Discover(dir string, opts Options) (*Repository, error) {
	root, err := workspace.FindRoot(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotRepository, err)
	}
	return Open(root, opts)
}
