package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weftlabs/weft/core"
)

func seedPrompt(id string) *core.Prompt {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	snap := core.Snapshot{SystemPrompt: "be concise", Model: "gpt-4o", Temperature: 0.5, MaxTokens: 512, Status: "active"}
	vid := id + "-v1"
	return &core.Prompt{
		ID:               id,
		Title:            "Prompt " + id,
		CurrentVersionID: vid,
		Snapshot:         snap,
		Versions: []*core.PromptVersion{
			{ID: vid, PromptID: id, VersionNumber: "1.0", Snapshot: snap, CreatedAt: now},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestMemoryBackend_PutGet(t *testing.T) {
	ctx := context.Background()
	b := NewMemoryBackend()
	require.NoError(t, b.PutPrompt(ctx, seedPrompt("p1")))
	got, err := b.GetPrompt(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "p1", got.ID)
	assert.Len(t, got.Versions, 1)
}

func TestMemoryBackend_GetNotFound(t *testing.T) {
	b := NewMemoryBackend()
	_, err := b.GetPrompt(context.Background(), "missing")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestMemoryBackend_GetReturnsCopy(t *testing.T) {
	ctx := context.Background()
	b := NewMemoryBackend()
	require.NoError(t, b.PutPrompt(ctx, seedPrompt("p1")))
	first, err := b.GetPrompt(ctx, "p1")
	require.NoError(t, err)
	first.Versions[0].ChangeNote = "mutated by caller"
	second, err := b.GetPrompt(ctx, "p1")
	require.NoError(t, err)
	assert.Empty(t, second.Versions[0].ChangeNote)
}

func TestMemoryBackend_Delete(t *testing.T) {
	ctx := context.Background()
	b := NewMemoryBackend()
	require.NoError(t, b.PutPrompt(ctx, seedPrompt("p1")))
	require.NoError(t, b.DeletePrompt(ctx, "p1"))
	assert.ErrorIs(t, b.DeletePrompt(ctx, "p1"), core.ErrNotFound)
}

func TestMemoryBackend_ListFilter(t *testing.T) {
	ctx := context.Background()
	b := NewMemoryBackend()
	p1 := seedPrompt("p1")
	p1.Tags = []string{"support", "email"}
	p2 := seedPrompt("p2")
	p2.Tags = []string{"support"}
	require.NoError(t, b.PutPrompt(ctx, p1))
	require.NoError(t, b.PutPrompt(ctx, p2))

	all, err := b.ListPrompts(ctx, Filter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	tagged, err := b.ListPrompts(ctx, Filter{Tags: []string{"email"}})
	require.NoError(t, err)
	require.Len(t, tagged, 1)
	assert.Equal(t, "p1", tagged[0].ID)

	byID, err := b.ListPrompts(ctx, Filter{IDs: []string{"p2"}})
	require.NoError(t, err)
	require.Len(t, byID, 1)
	assert.Equal(t, "p2", byID[0].ID)

	paged, err := b.ListPrompts(ctx, Filter{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, paged, 1)
	assert.Equal(t, "p2", paged[0].ID)
}
