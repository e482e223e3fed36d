package content

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Hash is the integer content hash a blob is keyed by. Zero is a valid
// hash; absence is expressed with *Hash, never with a zero value.
type Hash int64

// Hex renders the hash as at least eight lowercase hex digits.
func (h Hash) Hex() string {
	return fmt.Sprintf("%08x", uint64(h))
}

// Ptr returns a pointer to a copy of h, for optional hash fields.
func (h Hash) Ptr() *Hash {
	return &h
}

// Store is content-addressed blob storage. Put is idempotent: a blob that
// already exists for a hash is never overwritten.
type Store interface {
	Put(hash Hash, contents []byte) error
	Get(hash Hash) ([]byte, error)
	Exists(hash Hash) bool
	Locator(hash Hash) string
}

// FileStore keeps one flat file per hash under root.
type FileStore struct {
	root  string
	cache *lru.Cache[Hash, []byte]
}

// Options configures a FileStore.
type Options struct {
	Root      string // Root directory for blob files
	CacheSize int    // Number of blobs kept in memory
}
