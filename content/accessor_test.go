package content

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sitesmith/sitesmith/errs"
)

func TestAccessorRecordsEntryReads(t *testing.T) {
	reg := newTestRegistry(t, NewStaticSource("posts", func() ([]*Entry, error) {
		return testEntries("a", "b"), nil
	}))

	acc := NewAccessor(reg)
	view, err := acc.Source("posts")
	require.NoError(t, err)

	entry, err := view.Entry("a")
	require.NoError(t, err)
	assert.Equal(t, "a", entry.ID)

	// Reading the same entry twice records one dependency.
	_, err = view.Entry("a")
	require.NoError(t, err)

	reads := acc.Reads()
	require.Len(t, reads, 1)
	assert.Equal(t, "posts", reads[0].Source)
	assert.Equal(t, "a", reads[0].EntryID)
	assert.Equal(t, entry.Hash, reads[0].Hash)
}

func TestAccessorRecordsWholeSourceRead(t *testing.T) {
	src := NewStaticSource("posts", func() ([]*Entry, error) {
		return testEntries("a", "b"), nil
	})
	reg := newTestRegistry(t, src)

	acc := NewAccessor(reg)
	view, err := acc.Source("posts")
	require.NoError(t, err)

	entries := view.Entries()
	assert.Len(t, entries, 2)

	reads := acc.Reads()
	require.Len(t, reads, 1)
	assert.Equal(t, "*", reads[0].EntryID)
	assert.Equal(t, src.Hash(), reads[0].Hash)
}

func TestAccessorLenRecordsNothing(t *testing.T) {
	reg := newTestRegistry(t, NewStaticSource("posts", func() ([]*Entry, error) {
		return testEntries("a"), nil
	}))

	acc := NewAccessor(reg)
	view, err := acc.Source("posts")
	require.NoError(t, err)

	assert.Equal(t, 1, view.Len())
	assert.Empty(t, acc.Reads())
}

func TestAccessorMissingEntry(t *testing.T) {
	reg := newTestRegistry(t, NewStaticSource("posts", func() ([]*Entry, error) {
		return testEntries("a"), nil
	}))

	acc := NewAccessor(reg)
	view, err := acc.Source("posts")
	require.NoError(t, err)

	_, err = view.Entry("missing")
	require.Error(t, err)
	assert.True(t, errs.IsCategory(err, errs.CategoryContent))
}

func TestAccessorReadsSorted(t *testing.T) {
	reg := newTestRegistry(t,
		NewStaticSource("b-source", func() ([]*Entry, error) { return testEntries("z", "a"), nil }),
		NewStaticSource("a-source", func() ([]*Entry, error) { return testEntries("m"), nil }),
	)

	acc := NewAccessor(reg)
	bv, err := acc.Source("b-source")
	require.NoError(t, err)
	av, err := acc.Source("a-source")
	require.NoError(t, err)

	_, err = bv.Entry("z")
	require.NoError(t, err)
	_, err = bv.Entry("a")
	require.NoError(t, err)
	_, err = av.Entry("m")
	require.NoError(t, err)

	reads := acc.Reads()
	require.Len(t, reads, 3)
	assert.Equal(t, "a-source", reads[0].Source)
	assert.Equal(t, "a", reads[1].EntryID)
	assert.Equal(t, "z", reads[2].EntryID)
}
