package adapter

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	m "mockshift.dev/pkg/mockshift/internal/model"
)

func sampleReport(shard, total int, files ...m.FileResult) m.Report {
	return m.Report{
		RunID:      "run-1",
		StartedAt:  time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Duration:   2 * time.Second,
		ShardIndex: shard,
		ShardCount: total,
		Files:      files,
	}
}

func TestLocalReportStore_SaveAndLoad(t *testing.T) {
	store := NewReportStore()
	dir := m.Path(t.TempDir())

	report := sampleReport(0, 1, m.FileResult{
		Path:      "a.test.js",
		Status:    m.Migrated,
		Mutations: 3,
		Passes:    map[string]int{"stub": 2, "assert": 1},
		Diagnostics: []m.Diagnostic{
			{Path: "a.test.js", Pass: "timers", Message: "boom"},
		},
		Diff: "--- a/a.test.js\n+++ b/a.test.js\n",
	})

	written, err := store.SaveReport(dir, report)
	require.NoError(t, err)
	assert.Equal(t, dir, written)

	patchData, err := os.ReadFile(filepath.Join(string(dir), patchFileName))
	require.NoError(t, err)
	assert.Equal(t, "--- a/a.test.js\n+++ b/a.test.js\n", string(patchData))

	loaded, err := store.LoadReports(dir)
	require.NoError(t, err)
	require.Len(t, loaded, 1)

	got := loaded[0]
	assert.Equal(t, "run-1", got.RunID)
	assert.Equal(t, 2*time.Second, got.Duration)
	require.Len(t, got.Files, 1)
	assert.Equal(t, m.Migrated, got.Files[0].Status)
	assert.Equal(t, 2, got.Files[0].Passes["stub"])
	assert.Equal(t, "timers", got.Files[0].Diagnostics[0].Pass)
	assert.Empty(t, got.Files[0].Diff)
}

func TestLocalReportStore_ShardsAndMerge(t *testing.T) {
	store := NewReportStore()
	dir := m.Path(t.TempDir())

	_, err := store.SaveReport(dir, sampleReport(1, 2, m.FileResult{Path: "b.test.js", Status: m.Unchanged, Diff: "B\n"}))
	require.NoError(t, err)

	written, err := store.SaveReport(dir, sampleReport(0, 2, m.FileResult{Path: "a.test.js", Status: m.Migrated, Mutations: 4, Diff: "A\n"}))
	require.NoError(t, err)
	assert.Equal(t, m.Path(filepath.Join(string(dir), "shard_0")), written)

	loaded, err := store.LoadReports(dir)
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, 0, loaded[0].ShardIndex)
	assert.Equal(t, 1, loaded[1].ShardIndex)

	merged, err := store.MergeReports(dir)
	require.NoError(t, err)

	assert.Equal(t, 1, merged.ShardCount)
	require.Len(t, merged.Files, 2)
	assert.Equal(t, m.Path("a.test.js"), merged.Files[0].Path)
	assert.Equal(t, m.Path("b.test.js"), merged.Files[1].Path)
	assert.Equal(t, 4, merged.Summary().Mutations)

	patchData, err := os.ReadFile(filepath.Join(string(dir), patchFileName))
	require.NoError(t, err)
	assert.Equal(t, "A\nB\n", string(patchData))
}

func TestLocalReportStore_Empty(t *testing.T) {
	store := NewReportStore()
	dir := m.Path(t.TempDir())

	_, err := store.LoadReports(dir)
	assert.True(t, errors.Is(err, ErrNoReports))

	_, err = store.MergeReports(dir)
	assert.True(t, errors.Is(err, ErrNoReports))
}
