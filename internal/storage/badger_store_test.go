package storage

import (
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type note struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

func (n *note) GetID() string { return n.ID }

func openTestDB(t *testing.T) *badger.DB {
	t.Helper()
	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = nil
	db, err := badger.Open(opts)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestBadgerStore_CreateGet(t *testing.T) {
	s := NewBadgerStore(openTestDB(t), "note")

	require.NoError(t, s.Create(&note{ID: "1", Text: "hello"}))
	err := s.Create(&note{ID: "1", Text: "again"})
	assert.ErrorIs(t, err, ErrExists)

	var got note
	require.NoError(t, s.Get("1", &got))
	assert.Equal(t, "hello", got.Text)

	err = s.Get("2", &got)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.Error(t, s.Create(&note{}))
}

func TestBadgerStore_PutTxnReplaces(t *testing.T) {
	db := openTestDB(t)
	s := NewBadgerStore(db, "note")

	require.NoError(t, s.Create(&note{ID: "1", Text: "a"}))
	require.NoError(t, db.Update(func(txn *badger.Txn) error {
		return s.PutTxn(txn, &note{ID: "1", Text: "b"})
	}))

	var got note
	require.NoError(t, s.Get("1", &got))
	assert.Equal(t, "b", got.Text)
}

func TestBadgerStore_ListInKeyOrder(t *testing.T) {
	db := openTestDB(t)
	s := NewBadgerStore(db, "note")
	other := NewBadgerStore(db, "other")

	for _, id := range []string{"00000002", "00000000", "00000001"} {
		require.NoError(t, s.Create(&note{ID: id, Text: id}))
	}
	require.NoError(t, other.Create(&note{ID: "00000000", Text: "other"}))

	var notes []note
	require.NoError(t, s.List(&notes))
	require.Len(t, notes, 3)
	assert.Equal(t, "00000000", notes[0].ID)
	assert.Equal(t, "00000001", notes[1].ID)
	assert.Equal(t, "00000002", notes[2].ID)

	var others []note
	require.NoError(t, other.List(&others))
	require.Len(t, others, 1)
	assert.Equal(t, "other", others[0].Text)
}

func TestBadgerStore_ListEmpty(t *testing.T) {
	s := NewBadgerStore(openTestDB(t), "note")

	var notes []note
	require.NoError(t, s.List(&notes))
	assert.Empty(t, notes)
}

func TestBadgerStore_PutTxnIsAtomic(t *testing.T) {
	db := openTestDB(t)
	a := NewBadgerStore(db, "a")
	b := NewBadgerStore(db, "b")

	err := db.Update(func(txn *badger.Txn) error {
		if err := a.PutTxn(txn, &note{ID: "1"}); err != nil {
			return err
		}
		return b.PutTxn(txn, &note{})
	})
	require.Error(t, err)

	var got note
	assert.ErrorIs(t, a.Get("1", &got), ErrNotFound, "failed transaction must not leave partial writes")
}
