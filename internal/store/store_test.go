package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *RunStore {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "runs.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRecordStartAndFinish(t *testing.T) {
	s := openTestStore(t)

	started := time.Date(2025, 11, 3, 12, 0, 0, 0, time.UTC)
	id, err := s.RecordStart("nfl", started)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	finished := started.Add(3 * time.Minute)
	require.NoError(t, s.RecordFinish(id, finished, "", 87, 42, 3, "outputs/nfl_20251103_120000"))

	runs, err := s.RecentRuns(10)
	require.NoError(t, err)
	require.Len(t, runs, 1)

	run := runs[0]
	assert.Equal(t, id, run.ID)
	assert.Equal(t, "nfl", run.Topic)
	assert.True(t, run.StartedAt.Equal(started))
	assert.True(t, run.FinishedAt.Equal(finished))
	assert.Empty(t, run.Error)
	assert.Equal(t, 87, run.RawPosts)
	assert.Equal(t, 42, run.QualityPosts)
	assert.Equal(t, 3, run.Variants)
	assert.Equal(t, "outputs/nfl_20251103_120000", run.OutputDir)
}

func TestRecentRunsOrderAndLimit(t *testing.T) {
	s := openTestStore(t)

	base := time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		_, err := s.RecordStart("tech", base.Add(time.Duration(i)*time.Hour))
		require.NoError(t, err)
	}

	runs, err := s.RecentRuns(3)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	for i := 1; i < len(runs); i++ {
		assert.True(t, runs[i-1].StartedAt.After(runs[i].StartedAt))
	}
}

func TestRecordFailedRun(t *testing.T) {
	s := openTestStore(t)

	started := time.Now().UTC().Truncate(time.Second)
	id, err := s.RecordStart("politics", started)
	require.NoError(t, err)
	require.NoError(t, s.RecordFinish(id, started.Add(time.Second), "no posts found", 0, 0, 0, ""))

	runs, err := s.RecentRuns(1)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "no posts found", runs[0].Error)
	assert.Empty(t, runs[0].OutputDir)
}

func TestUnfinishedRunFallsBackToStart(t *testing.T) {
	s := openTestStore(t)

	started := time.Date(2025, 11, 3, 12, 0, 0, 0, time.UTC)
	_, err := s.RecordStart("nba", started)
	require.NoError(t, err)

	runs, err := s.RecentRuns(1)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.True(t, runs[0].FinishedAt.Equal(started))
}
