package branch

import (
	"testing"

	"svc/internal/content"
	"svc/internal/snapshot"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefault(t *testing.T) {
	b := NewDefault()
	assert.Equal(t, "master", b.Name)
	assert.Empty(t, b.Files)
	assert.False(t, b.HasCommit())
}

func TestBranch_StageAndRemove(t *testing.T) {
	b := NewDefault()
	b.Stage("a.txt", 10)
	b.Stage("b.txt", 20)
	b.Files[1].State = Tracked

	assert.False(t, b.IsUnknown("a.txt"))
	assert.True(t, b.IsUnknown("c.txt"))

	t.Run("staged entry is dropped", func(t *testing.T) {
		hash, ok := b.Remove("a.txt")
		require.True(t, ok)
		assert.Equal(t, content.Hash(10), hash)
		assert.Len(t, b.Files, 1)
		assert.True(t, b.IsUnknown("a.txt"))
	})

	t.Run("tracked entry is marked deleted", func(t *testing.T) {
		hash, ok := b.Remove("b.txt")
		require.True(t, ok)
		assert.Equal(t, content.Hash(20), hash)
		require.Len(t, b.Files, 1)
		assert.Equal(t, Deleted, b.Files[0].State)
		assert.True(t, b.IsUnknown("b.txt"))
	})

	t.Run("deleted or unknown entry is not found", func(t *testing.T) {
		_, ok := b.Remove("b.txt")
		assert.False(t, ok)
		_, ok = b.Remove("nope")
		assert.False(t, ok)
	})
}

func TestBranch_RemovePrefersLiveEntryOverDeleted(t *testing.T) {
	b := NewDefault()
	b.Files = append(b.Files,
		FileData{Path: "a", State: Deleted, LastHash: 1},
		FileData{Path: "a", State: Staged, LastHash: 2},
	)

	hash, ok := b.Remove("a")
	require.True(t, ok)
	assert.Equal(t, content.Hash(2), hash)
	assert.Equal(t, []FileData{{Path: "a", State: Deleted, LastHash: 1}}, b.Files)
}

func TestBranch_CleanFiles(t *testing.T) {
	b := NewDefault()
	b.Files = append(b.Files,
		FileData{Path: "a", State: Tracked, LastHash: 1},
		FileData{Path: "b", State: Deleted, LastHash: 2},
		FileData{Path: "c", State: Tracked, LastHash: 3},
		FileData{Path: "d", State: Deleted, LastHash: 4},
	)

	b.CleanFiles()
	assert.Equal(t, []FileData{
		{Path: "a", State: Tracked, LastHash: 1},
		{Path: "c", State: Tracked, LastHash: 3},
	}, b.Files)
}

func TestBranch_CloneIsDeep(t *testing.T) {
	b := NewDefault()
	b.Stage("a", 1)
	b.Head = 4

	c := b.Clone("dev")
	assert.Equal(t, "dev", c.Name)
	assert.Equal(t, 4, c.Head)
	assert.Equal(t, b.Files, c.Files)

	c.Files[0].State = Deleted
	c.Stage("b", 2)
	assert.Equal(t, Staged, b.Files[0].State)
	assert.Len(t, b.Files, 1)
}

func TestBranch_ResetFiles(t *testing.T) {
	b := NewDefault()
	b.Stage("old", 1)

	b.ResetFiles([]snapshot.Entry{{Name: "a", Hash: 5}, {Name: "b", Hash: 0}})
	assert.Equal(t, []FileData{
		{Path: "a", State: Tracked, LastHash: 5},
		{Path: "b", State: Tracked, LastHash: 0},
	}, b.Files)
}

func TestBranch_RosterGrows(t *testing.T) {
	b := NewDefault()
	for i := 0; i < initialRosterSize*4; i++ {
		b.Stage(string(rune('a'+i)), content.Hash(i))
	}
	assert.Len(t, b.Files, initialRosterSize*4)
}

func TestFileState_String(t *testing.T) {
	assert.Equal(t, "tracked", Tracked.String())
	assert.Equal(t, "staged", Staged.String())
	assert.Equal(t, "deleted", Deleted.String())
}
