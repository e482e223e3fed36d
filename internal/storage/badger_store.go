// internal/storage/badger_store.go
package storage

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
)

var (
	ErrNotFound = errors.New("entity not found")
	ErrExists   = errors.New("entity already exists")
)

// Entity represents any storable entity with an ID. IDs sort as keys, so
// numeric IDs should be zero padded.
type Entity interface {
	GetID() string
}

// BadgerStore keeps JSON encoded entities under "<prefix>:<id>".
type BadgerStore struct {
	db     *badger.DB
	prefix string
}

func NewBadgerStore(db *badger.DB, prefix string) *BadgerStore {
	return &BadgerStore{
		db:     db,
		prefix: prefix,
	}
}

func (s *BadgerStore) makeKey(id string) []byte {
	return []byte(fmt.Sprintf("%s:%s", s.prefix, id))
}

func encode(entity Entity) ([]byte, error) {
	if entity.GetID() == "" {
		return nil, fmt.Errorf("entity ID cannot be empty")
	}
	data, err := json.Marshal(entity)
	if err != nil {
		return nil, fmt.Errorf("marshaling entity: %w", err)
	}
	return data, nil
}

// Create stores a new entity and fails if the ID is taken.
func (s *BadgerStore) Create(entity Entity) error {
	data, err := encode(entity)
	if err != nil {
		return err
	}

	key := s.makeKey(entity.GetID())
	return s.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(key)
		if err == nil {
			return fmt.Errorf("%w: %s", ErrExists, entity.GetID())
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}

		return txn.Set(key, data)
	})
}

// PutTxn stores entity inside a caller-managed transaction so several
// stores can be written atomically.
func (s *BadgerStore) PutTxn(txn *badger.Txn, entity Entity) error {
	data, err := encode(entity)
	if err != nil {
		return err
	}
	return txn.Set(s.makeKey(entity.GetID()), data)
}

func (s *BadgerStore) Get(id string, entity Entity) error {
	key := s.makeKey(id)

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, entity)
		})
	})

	if errors.Is(err, badger.ErrKeyNotFound) {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return err
}

// List decodes every entity under the prefix, in key order, into results,
// which must point to a slice.
func (s *BadgerStore) List(results any) error {
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(s.prefix + ":")
		values := make([]json.RawMessage, 0)

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				values = append(values, append([]byte(nil), val...))
				return nil
			})
			if err != nil {
				return err
			}
		}

		data, err := json.Marshal(values)
		if err != nil {
			return err
		}

		return json.Unmarshal(data, results)
	})

	if err != nil {
		return fmt.Errorf("listing entities: %w", err)
	}
	return nil
}
