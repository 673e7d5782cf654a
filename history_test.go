package v2md

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestHistory(t *testing.T, limit int) *History {
	t.Helper()
	h, err := OpenHistory(filepath.Join(t.TempDir(), "db", "history.db"), limit)
	require.NoError(t, err)
	t.Cleanup(func() { _ = h.Close() })

	clock := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	h.now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}
	return h
}

func historyIDs(t *testing.T, h *History) []int {
	t.Helper()
	entries, err := h.List(context.Background())
	require.NoError(t, err)
	return lo.Map(entries, func(e HistoryEntry, _ int) int { return e.TopicID })
}

func TestHistoryOrderAndDedupe(t *testing.T) {
	h := openTestHistory(t, 10)
	ctx := context.Background()

	for _, id := range []int{1, 2, 3} {
		require.NoError(t, h.Record(ctx, Topic{ID: id, Title: "t"}))
	}
	assert.Equal(t, []int{3, 2, 1}, historyIDs(t, h))

	require.NoError(t, h.Record(ctx, Topic{ID: 1, Title: "renamed", NodeName: "python", Author: "alice"}))
	assert.Equal(t, []int{1, 3, 2}, historyIDs(t, h), "revisiting moves the topic to the front")

	entries, err := h.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, "renamed", entries[0].Title)
	assert.Equal(t, "python", entries[0].NodeName)
	assert.Equal(t, "alice", entries[0].Author)
	assert.False(t, entries[0].ViewedAt.IsZero())
}

func TestHistoryLimit(t *testing.T) {
	h := openTestHistory(t, 3)
	ctx := context.Background()

	for id := 1; id <= 5; id++ {
		require.NoError(t, h.Record(ctx, Topic{ID: id, Title: "t"}))
	}
	assert.Equal(t, []int{5, 4, 3}, historyIDs(t, h))
}

func TestHistoryClearAndValidation(t *testing.T) {
	h := openTestHistory(t, 0)
	ctx := context.Background()
	assert.Equal(t, DefaultHistoryLimit, h.limit)

	assert.True(t, IsErrorType(h.Record(ctx, Topic{}), ValidationError))

	require.NoError(t, h.Record(ctx, Topic{ID: 1, Title: "t"}))
	require.NoError(t, h.Clear(ctx))
	assert.Empty(t, historyIDs(t, h))
}
