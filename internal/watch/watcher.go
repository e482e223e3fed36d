// Package watch reports working tree changes as they happen.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"svc/internal/workspace"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Kind is the kind of change seen on a path.
type Kind int

const (
	Created Kind = iota
	Modified
	Removed
)

func (k Kind) String() string {
	switch k {
	case Created:
		return "created"
	case Modified:
		return "modified"
	case Removed:
		return "removed"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Event is a change to a file, Path being slash-separated and relative to
// the watched root.
type Event struct {
	Path string
	Kind Kind
}

// Watcher watches every directory of a working tree.
type Watcher struct {
	root       string
	watcher    *fsnotify.Watcher
	ignoreDirs map[string]bool
	events     chan Event
	logger     *zap.Logger
}

// New walks root and starts watching each directory that is not ignored.
func New(root string, logger *zap.Logger) (*Watcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("getting absolute path for root %s: %w", root, err)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating file watcher: %w", err)
	}

	w := &Watcher{
		root:    absRoot,
		watcher: fw,
		ignoreDirs: map[string]bool{
			workspace.MetaDir: true,
			".git":            true,
			"node_modules":    true,
			"vendor":          true,
		},
		events: make(chan Event, 64),
		logger: logger,
	}

	if err := w.addTree(absRoot); err != nil {
		fw.Close()
		return nil, err
	}
	return w, nil
}

func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if rel, _ := filepath.Rel(w.root, path); rel != "." && w.ShouldIgnore(rel) {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			return fmt.Errorf("adding directory to watcher: %w", err)
		}
		return nil
	})
}

// ShouldIgnore reports whether a root-relative path lies in an ignored
// directory.
func (w *Watcher) ShouldIgnore(rel string) bool {
	if rel == "" || rel == "." {
		return true
	}
	for _, part := range strings.Split(filepath.ToSlash(rel), "/") {
		if w.ignoreDirs[part] || part == ".." {
			return true
		}
	}
	return false
}

// Events returns the channel events are delivered on. It is closed when Run
// returns.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Run processes filesystem events until ctx is done or the watcher is
// closed.
func (w *Watcher) Run(ctx context.Context) error {
	defer close(w.events)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if ev, ok := w.translate(event); ok {
				select {
				case w.events <- ev:
				case <-ctx.Done():
					return ctx.Err()
				}
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) translate(event fsnotify.Event) (Event, bool) {
	rel, err := filepath.Rel(w.root, event.Name)
	if err != nil {
		w.logger.Error("getting relative path", zap.Error(err))
		return Event{}, false
	}
	if w.ShouldIgnore(rel) {
		return Event{}, false
	}
	ev := Event{Path: filepath.ToSlash(rel)}

	switch {
	case event.Has(fsnotify.Create):
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addTree(event.Name); err != nil {
				w.logger.Error("adding new directory to watcher", zap.Error(err))
			}
			return Event{}, false
		}
		ev.Kind = Created
	case event.Has(fsnotify.Write):
		ev.Kind = Modified
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		ev.Kind = Removed
	default:
		return Event{}, false
	}
	return ev, true
}

// Close stops watching.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}
