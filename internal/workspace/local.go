// internal/workspace/local.go
package workspace

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"svc/internal/content"

	"go.uber.org/zap"
)

// MetaDir is the repository metadata directory at the workspace root.
const MetaDir = ".svc"

var ErrOutsideRoot = errors.New("path is outside the workspace")

// FindRoot searches for the workspace Root by looking for the ".svc" directory.
func FindRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		if info, err := os.Stat(filepath.Join(dir, MetaDir)); err == nil && info.IsDir() {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", errors.New("workspace root not found")
}

// LocalWorkspace is the working tree on disk. Paths handed to it are
// slash-separated and relative to Root.
type LocalWorkspace struct {
	Root   string
	Logger *zap.Logger
}

// NewLocalWorkspace creates a new workspace instance
func NewLocalWorkspace(root string, logger *zap.Logger) (*LocalWorkspace, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("getting absolute path for root %s: %w", root, err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LocalWorkspace{Root: abs, Logger: logger}, nil
}

// Resolve returns the absolute location of a workspace path.
func (w *LocalWorkspace) Resolve(path string) string {
	return filepath.Join(w.Root, filepath.FromSlash(path))
}

// Rel normalises a user supplied path (absolute, or relative to the current
// directory) into the root-relative form the engine tracks.
func (w *LocalWorkspace) Rel(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	rel, err := filepath.Rel(w.Root, abs)
	if err != nil {
		return "", err
	}
	if rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%s: %w", path, ErrOutsideRoot)
	}
	rel = filepath.ToSlash(rel)
	if w.Ignored(rel) {
		return "", fmt.Errorf("%s: path is inside %s", path, MetaDir)
	}
	return rel, nil
}

// Clean validates a root-relative path received from a remote caller and
// returns it in slash form.
func (w *LocalWorkspace) Clean(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("path is required")
	}
	if filepath.IsAbs(path) || strings.HasPrefix(path, "/") {
		return "", fmt.Errorf("%s: %w", path, ErrOutsideRoot)
	}
	clean := filepath.ToSlash(filepath.Clean(filepath.FromSlash(path)))
	if clean == "." || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", fmt.Errorf("%s: %w", path, ErrOutsideRoot)
	}
	if w.Ignored(clean) {
		return "", fmt.Errorf("%s: path is inside %s", path, MetaDir)
	}
	return clean, nil
}

// Ignored reports whether path lies in the metadata directory.
func (w *LocalWorkspace) Ignored(path string) bool {
	first, _, _ := strings.Cut(path, "/")
	return first == MetaDir
}

// Exists reports whether a regular file exists at path.
func (w *LocalWorkspace) Exists(path string) bool {
	info, err := os.Stat(w.Resolve(path))
	return err == nil && !info.IsDir()
}

// HashAndCopy reads path and returns its checksum and contents.
func (w *LocalWorkspace) HashAndCopy(path string) (content.Hash, []byte, error) {
	data, err := w.ReadFile(path)
	if err != nil {
		return 0, nil, err
	}
	return Checksum(path, data), data, nil
}

func (w *LocalWorkspace) ReadFile(path string) ([]byte, error) {
	data, err := os.ReadFile(w.Resolve(path))
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}
	if data == nil {
		data = []byte{}
	}
	return data, nil
}

// Overwrite replaces the contents of path, creating it and its parent
// directories if needed.
func (w *LocalWorkspace) Overwrite(path string, contents []byte) error {
	abs := w.Resolve(path)
	if err := os.MkdirAll(filepath.Dir(abs), 0755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", path, err)
	}
	if err := os.WriteFile(abs, contents, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	w.Logger.Debug("file restored", zap.String("path", path), zap.Int("size", len(contents)))
	return nil
}

// Delete removes path from the working tree. Missing files are not an error.
func (w *LocalWorkspace) Delete(path string) error {
	if err := os.Remove(w.Resolve(path)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing %s: %w", path, err)
	}
	w.Logger.Debug("file removed", zap.String("path", path))
	return nil
}
