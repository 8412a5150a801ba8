// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package history

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "data", "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

// fakeClock advances one minute per call.
func fakeClock(t *testing.T) {
	t.Helper()
	base := time.Date(2025, 10, 31, 12, 0, 0, 0, time.UTC)
	calls := 0
	old := now
	now = func() time.Time {
		calls++
		return base.Add(time.Duration(calls) * time.Minute)
	}
	t.Cleanup(func() { now = old })
}

func TestOpenIsReentrant(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Close())
}

func TestRunLifecycle(t *testing.T) {
	fakeClock(t)
	s := testStore(t)
	ctx := context.Background()

	r, err := s.StartRun(ctx, "2025-10-31")
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, r.ID)
	assert.False(t, r.Finished())

	require.NoError(t, s.FinishRun(ctx, r.ID, Counts{Found: 5, Posted: 3, Skipped: 1, Failed: 1}))

	runs, err := s.Recent(ctx, 5)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	got := runs[0]
	assert.Equal(t, r.ID, got.ID)
	assert.Equal(t, "2025-10-31", got.DateExpr)
	assert.True(t, got.Finished())
	assert.True(t, got.FinishedAt.After(got.StartedAt))
	assert.Equal(t, 5, got.Found)
	assert.Equal(t, 3, got.Posted)
	assert.Equal(t, 1, got.Skipped)
	assert.Equal(t, 1, got.Failed)
}

func TestFinishUnknownRun(t *testing.T) {
	s := testStore(t)
	err := s.FinishRun(context.Background(), uuid.New(), Counts{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestRecentOrderAndLimit(t *testing.T) {
	fakeClock(t)
	s := testStore(t)
	ctx := context.Background()

	var ids []uuid.UUID
	for _, expr := range []string{"a", "b", "c"} {
		r, err := s.StartRun(ctx, expr)
		require.NoError(t, err)
		ids = append(ids, r.ID)
	}

	runs, err := s.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, ids[2], runs[0].ID)
	assert.Equal(t, ids[1], runs[1].ID)
	assert.False(t, runs[0].Finished())
}

func TestMarkPosted(t *testing.T) {
	fakeClock(t)
	s := testStore(t)
	ctx := context.Background()

	first, err := s.StartRun(ctx, "")
	require.NoError(t, err)

	posted, err := s.IsPosted(ctx, "2501.01234")
	require.NoError(t, err)
	assert.False(t, posted)

	require.NoError(t, s.MarkPosted(ctx, first.ID, "2501.01234", "Scaling Sparse Mixtures"))
	posted, err = s.IsPosted(ctx, "2501.01234")
	require.NoError(t, err)
	assert.True(t, posted)

	second, err := s.StartRun(ctx, "")
	require.NoError(t, err)
	require.NoError(t, s.MarkPosted(ctx, second.ID, "2501.01234", "Scaling Sparse Mixtures v2"))

	entries, err := s.Entries(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, second.ID, entries[0].RunID)
	assert.Equal(t, "Scaling Sparse Mixtures v2", entries[0].Title)
}

func TestMarkPostedUnknownRun(t *testing.T) {
	s := testStore(t)
	err := s.MarkPosted(context.Background(), uuid.New(), "2501.01234", "x")
	require.Error(t, err, "foreign key on run_id")
}

func TestExportYAML(t *testing.T) {
	fakeClock(t)
	s := testStore(t)
	ctx := context.Background()

	r, err := s.StartRun(ctx, "2025-10-30..2025-10-31")
	require.NoError(t, err)
	require.NoError(t, s.MarkPosted(ctx, r.ID, "2501.01234", "Scaling Sparse Mixtures"))
	require.NoError(t, s.MarkPosted(ctx, r.ID, "2501.05678", "Dense Retrieval at Scale"))
	require.NoError(t, s.FinishRun(ctx, r.ID, Counts{Found: 2, Posted: 2}))

	var buf bytes.Buffer
	require.NoError(t, s.ExportYAML(ctx, &buf))

	var doc struct {
		Runs []struct {
			ID       string `yaml:"id"`
			DateExpr string `yaml:"date_expr"`
			Posted   int    `yaml:"posted"`
		} `yaml:"runs"`
		Posted []struct {
			PaperID string `yaml:"paper_id"`
			RunID   string `yaml:"run_id"`
		} `yaml:"posted"`
	}
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &doc))

	require.Len(t, doc.Runs, 1)
	assert.Equal(t, r.ID.String(), doc.Runs[0].ID)
	assert.Equal(t, "2025-10-30..2025-10-31", doc.Runs[0].DateExpr)
	assert.Equal(t, 2, doc.Runs[0].Posted)

	require.Len(t, doc.Posted, 2)
	assert.Equal(t, "2501.01234", doc.Posted[0].PaperID)
	assert.Equal(t, "2501.05678", doc.Posted[1].PaperID)
	assert.Equal(t, r.ID.String(), doc.Posted[1].RunID)
}
