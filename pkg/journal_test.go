package pkg

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type record struct {
	ID     int
	Status string
}

func TestJournal_AppendAndRange(t *testing.T) {
	j, err := OpenJournal[record](t.TempDir(), "outcomes.gob")
	require.NoError(t, err)

	defer func() { _ = j.Close() }()

	want := []record{{1, "killed"}, {2, "survived"}, {3, "skipped"}}
	for _, r := range want {
		require.NoError(t, j.Append(r))
	}

	assert.Equal(t, uint64(3), j.Len())

	var got []record

	err = j.Range(func(index uint64, item record) error {
		assert.Equal(t, uint64(len(got)), index)
		got = append(got, item)

		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestJournal_RangeAfterClose(t *testing.T) {
	j, err := OpenJournal[record](t.TempDir(), "outcomes.gob")
	require.NoError(t, err)

	require.NoError(t, j.Append(record{ID: 7, Status: "killed"}))
	require.NoError(t, j.Close())
	require.NoError(t, j.Close())

	var ids []int

	require.NoError(t, j.Range(func(_ uint64, item record) error {
		ids = append(ids, item.ID)
		return nil
	}))
	assert.Equal(t, []int{7}, ids)

	require.Error(t, j.Append(record{ID: 8}))
}

func TestJournal_RangeCallbackErrorStops(t *testing.T) {
	j, err := OpenJournal[record](t.TempDir(), "outcomes.gob")
	require.NoError(t, err)

	defer func() { _ = j.Close() }()

	require.NoError(t, j.Append(record{ID: 1}))
	require.NoError(t, j.Append(record{ID: 2}))

	stop := errors.New("stop")
	calls := 0

	err = j.Range(func(_ uint64, _ record) error {
		calls++
		return stop
	})
	require.ErrorIs(t, err, stop)
	assert.Equal(t, 1, calls)
}

func TestJournal_Path(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")

	j, err := OpenJournal[record](dir, "outcomes.gob")
	require.NoError(t, err)

	defer func() { _ = j.Close() }()

	assert.Equal(t, filepath.Join(dir, "outcomes.gob"), j.Path())

	_, err = os.Stat(j.Path())
	require.NoError(t, err)
}

func TestJournal_RangeMissingFile(t *testing.T) {
	j, err := OpenJournal[record](t.TempDir(), "outcomes.gob")
	require.NoError(t, err)

	defer func() { _ = j.Close() }()

	require.NoError(t, j.Append(record{ID: 1}))
	require.NoError(t, os.Remove(j.Path()))

	err = j.Range(func(_ uint64, _ record) error { return nil })
	require.Error(t, err)
}

type annotated struct {
	ID    int
	Extra any
}

type unregistered struct {
	Note string
}

func TestJournal_FailedAppendKeepsEarlierItems(t *testing.T) {
	j, err := OpenJournal[annotated](t.TempDir(), "outcomes.gob")
	require.NoError(t, err)

	defer func() { _ = j.Close() }()

	require.NoError(t, j.Append(annotated{ID: 1}))

	info, err := os.Stat(j.Path())
	require.NoError(t, err)

	sizeAfterFirst := info.Size()

	err = j.Append(annotated{ID: 2, Extra: unregistered{Note: "x"}})
	require.Error(t, err)

	info, err = os.Stat(j.Path())
	require.NoError(t, err)
	assert.Equal(t, sizeAfterFirst, info.Size())

	err = j.Append(annotated{ID: 3})
	require.Error(t, err)
	assert.Equal(t, uint64(1), j.Len())

	var got []annotated

	require.NoError(t, j.Range(func(_ uint64, item annotated) error {
		got = append(got, item)
		return nil
	}))
	assert.Equal(t, []annotated{{ID: 1}}, got)
}
