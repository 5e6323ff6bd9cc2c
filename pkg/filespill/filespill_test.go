package filespill

import (
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

type record struct {
	Name   string
	Counts map[string]int
	Tags   []string
}

func TestSpill(t *testing.T) {
	t.Run("New creates the file under dir", func(t *testing.T) {
		dir := t.TempDir()

		spill, err := New[int](dir)
		require.NoError(t, err)
		defer spill.Remove()

		require.Contains(t, spill.Path(), dir)
		require.FileExists(t, spill.Path())
	})

	t.Run("Append and Get", func(t *testing.T) {
		spill, err := New[string](t.TempDir())
		require.NoError(t, err)
		defer spill.Remove()

		require.NoError(t, spill.Append("first"))
		require.NoError(t, spill.Append("second"))

		val1, err := spill.Get(0)
		require.NoError(t, err)
		require.Equal(t, "first", val1)

		val2, err := spill.Get(1)
		require.NoError(t, err)
		require.Equal(t, "second", val2)

		val3, err := spill.Get(3)
		require.Error(t, err)
		require.Equal(t, "", val3)
	})

	t.Run("Len and AppendBatch", func(t *testing.T) {
		spill, err := New[int](t.TempDir())
		require.NoError(t, err)
		defer spill.Remove()

		require.Equal(t, uint64(0), spill.Len())

		require.NoError(t, spill.AppendBatch([]int{1, 2, 3}))
		require.Equal(t, uint64(3), spill.Len())
	})

	t.Run("Range visits items in order", func(t *testing.T) {
		spill, err := New[int](t.TempDir())
		require.NoError(t, err)
		defer spill.Remove()

		require.NoError(t, spill.AppendBatch([]int{10, 20, 30}))

		var got []int
		err = spill.Range(func(index uint64, item int) error {
			require.Equal(t, uint64(len(got)), index)
			got = append(got, item)

			return nil
		})

		require.NoError(t, err)
		require.Equal(t, []int{10, 20, 30}, got)
	})

	t.Run("Range stops on callback error", func(t *testing.T) {
		spill, err := New[int](t.TempDir())
		require.NoError(t, err)
		defer spill.Remove()

		require.NoError(t, spill.AppendBatch([]int{1, 2, 3}))

		boom := errors.New("boom")
		count := 0
		err = spill.Range(func(_ uint64, _ int) error {
			count++
			return boom
		})

		require.ErrorIs(t, err, boom)
		require.Equal(t, 1, count)
	})

	t.Run("maps do not leak between items", func(t *testing.T) {
		spill, err := New[record](t.TempDir())
		require.NoError(t, err)
		defer spill.Remove()

		require.NoError(t, spill.Append(record{Name: "a", Counts: map[string]int{"stub": 2}, Tags: []string{"x", "y"}}))
		require.NoError(t, spill.Append(record{Name: "b", Counts: map[string]int{"calls": 1}}))

		var got []record
		require.NoError(t, spill.Range(func(_ uint64, item record) error {
			got = append(got, item)
			return nil
		}))

		require.Len(t, got, 2)
		require.Equal(t, map[string]int{"calls": 1}, got[1].Counts)
		require.Empty(t, got[1].Tags)
	})

	t.Run("Close keeps items readable and rejects appends", func(t *testing.T) {
		spill, err := New[int](t.TempDir())
		require.NoError(t, err)
		defer spill.Remove()

		require.NoError(t, spill.Append(7))
		require.NoError(t, spill.Close())
		require.NoError(t, spill.Close())

		require.ErrorIs(t, spill.Append(8), ErrClosed)

		val, err := spill.Get(0)
		require.NoError(t, err)
		require.Equal(t, 7, val)
	})

	t.Run("Remove deletes the file", func(t *testing.T) {
		spill, err := New[int](t.TempDir())
		require.NoError(t, err)

		require.NoError(t, spill.Remove())

		_, err = os.Stat(spill.Path())
		require.True(t, os.IsNotExist(err))
	})
}

func TestSpillEdgeCases(t *testing.T) {
	t.Run("empty range returns no items", func(t *testing.T) {
		spill, err := New[int](t.TempDir())
		require.NoError(t, err)
		defer spill.Remove()

		count := 0
		err = spill.Range(func(uint64, int) error {
			count++
			return nil
		})

		require.NoError(t, err)
		require.Equal(t, 0, count)
	})

	t.Run("get on empty spill returns error", func(t *testing.T) {
		spill, err := New[int](t.TempDir())
		require.NoError(t, err)
		defer spill.Remove()

		_, err = spill.Get(0)
		require.Error(t, err)
	})

	t.Run("zero values round trip", func(t *testing.T) {
		spill, err := New[int](t.TempDir())
		require.NoError(t, err)
		defer spill.Remove()

		require.NoError(t, spill.Append(0))

		val, err := spill.Get(0)
		require.NoError(t, err)
		require.Equal(t, 0, val)
	})
}

func FuzzAppendGet(f *testing.F) {
	f.Add(int64(0))
	f.Add(int64(-1))
	f.Add(int64(999))

	f.Fuzz(func(t *testing.T, data int64) {
		spill, err := New[int64](t.TempDir())
		if err != nil {
			t.Skipf("setup failed: %v", err)
		}
		defer spill.Remove()

		if err := spill.Append(data); err != nil {
			t.Fatalf("append failed: %v", err)
		}

		val, err := spill.Get(0)
		if err != nil {
			t.Fatalf("get failed: %v", err)
		}

		if val != data {
			t.Fatalf("value mismatch: expected %d, got %d", data, val)
		}

		if _, err := spill.Get(1); err == nil {
			t.Fatal("expected error for out of bounds get")
		}
	})
}
