package audit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedEvents(t *testing.T) *MemoryStore {
	t.Helper()
	s := NewMemoryStore(0)
	ctx := context.Background()
	base := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	events := []Event{
		{PromptID: "p1", Op: OpVersionCreated, VersionNumber: "1.1", At: base},
		{PromptID: "p1", Op: OpRestored, VersionNumber: "1.0", At: base.Add(time.Hour)},
		{PromptID: "p2", Op: OpVersionCreated, VersionNumber: "1.1", At: base.Add(2 * time.Hour)},
		{PromptID: "p1", Op: OpSoftDeleted, VersionNumber: "1.1", At: base.Add(25 * time.Hour)},
	}
	for _, e := range events {
		require.NoError(t, s.Record(ctx, e))
	}
	return s
}

func TestMemoryStore_Recent(t *testing.T) {
	s := seedEvents(t)
	events, err := s.Recent(context.Background(), Query{PromptID: "p1"})
	require.NoError(t, err)
	require.Len(t, events, 3)
	// Newest first.
	assert.Equal(t, OpSoftDeleted, events[0].Op)
	assert.Equal(t, OpVersionCreated, events[2].Op)
}

func TestMemoryStore_Recent_Limit(t *testing.T) {
	s := seedEvents(t)
	events, err := s.Recent(context.Background(), Query{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, events, 2)
}

func TestMemoryStore_Summary_ByOp(t *testing.T) {
	s := seedEvents(t)
	agg, err := s.Summary(context.Background(), Query{GroupBy: "op"})
	require.NoError(t, err)
	counts := make(map[string]int64)
	for _, a := range agg {
		counts[a.Key] = a.Count
	}
	assert.Equal(t, int64(2), counts[OpVersionCreated])
	assert.Equal(t, int64(1), counts[OpRestored])
	assert.Equal(t, int64(1), counts[OpSoftDeleted])
}

func TestMemoryStore_Summary_ByDay(t *testing.T) {
	s := seedEvents(t)
	agg, err := s.Summary(context.Background(), Query{GroupBy: "day"})
	require.NoError(t, err)
	require.Len(t, agg, 2)
}

func TestMemoryStore_TimeWindow(t *testing.T) {
	s := seedEvents(t)
	from := time.Date(2025, 6, 1, 11, 0, 0, 0, time.UTC)
	to := time.Date(2025, 6, 1, 13, 0, 0, 0, time.UTC)
	events, err := s.Recent(context.Background(), Query{From: from, To: to})
	require.NoError(t, err)
	require.Len(t, events, 2)
}

func TestMemoryStore_Bounded(t *testing.T) {
	s := NewMemoryStore(2)
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		require.NoError(t, s.Record(ctx, Event{PromptID: "p1", Op: OpVersionCreated}))
	}
	events, err := s.Recent(ctx, Query{})
	require.NoError(t, err)
	assert.Len(t, events, 2)
}
