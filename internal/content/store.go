// internal/content/store.go
package content

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	lru "github.com/hashicorp/golang-lru/v2"
)

var ErrContentNotFound = errors.New("content not found")

const defaultCacheSize = 256

func NewFileStore(opts Options) (*FileStore, error) {
	if opts.Root == "" {
		return nil, fmt.Errorf("root directory is required")
	}
	if err := os.MkdirAll(opts.Root, 0755); err != nil {
		return nil, fmt.Errorf("creating content store directory: %w", err)
	}

	if opts.CacheSize <= 0 {
		opts.CacheSize = defaultCacheSize
	}
	cache, err := lru.New[Hash, []byte](opts.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("creating cache: %w", err)
	}

	return &FileStore{
		root:  opts.Root,
		cache: cache,
	}, nil
}

// Locator maps a hash to the path of its blob file.
func (s *FileStore) Locator(hash Hash) string {
	hex := hash.Hex()
	return filepath.Join(s.root, hex[:2], hex[2:])
}

// Put writes contents under hash unless a blob for hash already exists.
func (s *FileStore) Put(hash Hash, contents []byte) error {
	if contents == nil {
		contents = []byte{}
	}

	path := s.Locator(hash)
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("checking blob %s: %w", hash.Hex(), err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating content directory: %w", err)
	}
	if err := os.WriteFile(path, contents, 0644); err != nil {
		return fmt.Errorf("writing content: %w", err)
	}

	s.cache.Add(hash, bytes.Clone(contents))
	return nil
}

// Get reads the blob stored under hash. The returned slice is the caller's
// to modify.
func (s *FileStore) Get(hash Hash) ([]byte, error) {
	if contents, ok := s.cache.Get(hash); ok {
		return bytes.Clone(contents), nil
	}

	contents, err := os.ReadFile(s.Locator(hash))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrContentNotFound
		}
		return nil, fmt.Errorf("reading content: %w", err)
	}

	s.cache.Add(hash, contents)
	return bytes.Clone(contents), nil
}

// Exists checks if a blob is stored under hash
func (s *FileStore) Exists(hash Hash) bool {
	if s.cache.Contains(hash) {
		return true
	}
	_, err := os.Stat(s.Locator(hash))
	return err == nil
}
