package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weftlabs/weft/core"
)

func newLocal(t *testing.T, prompts ...*core.Prompt) *Local {
	t.Helper()
	l := NewMemory()
	ctx := context.Background()
	for _, p := range prompts {
		require.NoError(t, l.PutPrompt(ctx, p))
	}
	return l
}

func TestLocal_CreateVersion_MinorBump(t *testing.T) {
	ctx := context.Background()
	l := newLocal(t, seedPrompt("p1"))

	p, err := l.CreateVersion(ctx, "p1", CreateVersionRequest{ChangeNote: "fix typo", Bump: core.BumpMinor})
	require.NoError(t, err)
	require.Len(t, p.Versions, 2)

	cur := p.CurrentVersion()
	require.NotNil(t, cur)
	assert.Equal(t, "1.1", cur.VersionNumber)
	assert.Equal(t, "fix typo", cur.ChangeNote)
	assert.Equal(t, p.Snapshot, cur.Snapshot)

	// Previous current stays in history, active and non-current.
	prev := p.Version("p1-v1")
	require.NotNil(t, prev)
	assert.False(t, prev.Deleted)
	assert.NotEqual(t, prev.ID, p.CurrentVersionID)
	assert.NoError(t, p.Validate())
}

func TestLocal_CreateVersion_MajorAfterMinor(t *testing.T) {
	ctx := context.Background()
	l := newLocal(t, seedPrompt("p1"))
	_, err := l.CreateVersion(ctx, "p1", CreateVersionRequest{Bump: core.BumpMinor})
	require.NoError(t, err)
	p, err := l.CreateVersion(ctx, "p1", CreateVersionRequest{Bump: core.BumpMajor})
	require.NoError(t, err)
	assert.Equal(t, "2.0", p.CurrentVersion().VersionNumber)
}

func TestLocal_CreateVersion_WithContent(t *testing.T) {
	ctx := context.Background()
	l := newLocal(t, seedPrompt("p1"))

	edited := core.Snapshot{SystemPrompt: "be thorough", Model: "gpt-4o", Temperature: 0.5, MaxTokens: 512, Status: "active"}
	p, err := l.CreateVersion(ctx, "p1", CreateVersionRequest{ChangeNote: "tone", Bump: core.BumpMinor, Content: &edited})
	require.NoError(t, err)

	cur := p.CurrentVersion()
	require.NotNil(t, cur)
	assert.Equal(t, edited, cur.Snapshot)
	assert.Equal(t, edited, p.Snapshot)
	// Old version keeps its original content.
	assert.Equal(t, "be concise", p.Version("p1-v1").Snapshot.SystemPrompt)
}

func TestLocal_RestoreVersion_PointerSwitch(t *testing.T) {
	ctx := context.Background()
	l := newLocal(t, seedPrompt("p1"))
	p, err := l.CreateVersion(ctx, "p1", CreateVersionRequest{Bump: core.BumpMinor})
	require.NoError(t, err)
	require.Len(t, p.Versions, 2)

	p, err = l.RestoreVersion(ctx, "p1", "p1-v1")
	require.NoError(t, err)
	// No new entry: a restore is a pointer switch plus mirror copy.
	assert.Len(t, p.Versions, 2)
	assert.Equal(t, "p1-v1", p.CurrentVersionID)
	assert.Equal(t, p.Version("p1-v1").Snapshot, p.Snapshot)
	assert.NoError(t, p.Validate())
}

func TestLocal_RestoreVersion_NotFound(t *testing.T) {
	ctx := context.Background()
	l := newLocal(t, seedPrompt("p1"))
	_, err := l.RestoreVersion(ctx, "p1", "missing")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestLocal_RestoreVersion_DeletedRefused(t *testing.T) {
	ctx := context.Background()
	l := newLocal(t, seedPrompt("p1"))
	p, err := l.CreateVersion(ctx, "p1", CreateVersionRequest{Bump: core.BumpMinor})
	require.NoError(t, err)
	cur := p.CurrentVersionID

	_, err = l.SoftDeleteVersion(ctx, "p1", "p1-v1")
	require.NoError(t, err)

	// Trash entries never become current directly.
	_, err = l.RestoreVersion(ctx, "p1", "p1-v1")
	assert.ErrorIs(t, err, core.ErrDeleted)

	got, err := l.GetPrompt(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, cur, got.CurrentVersionID)
	assert.NoError(t, got.Validate())
}

func TestLocal_SoftDelete_CurrentProtected(t *testing.T) {
	ctx := context.Background()
	l := newLocal(t, seedPrompt("p1"))
	p, err := l.CreateVersion(ctx, "p1", CreateVersionRequest{Bump: core.BumpMinor})
	require.NoError(t, err)

	_, err = l.SoftDeleteVersion(ctx, "p1", p.CurrentVersionID)
	assert.ErrorIs(t, err, core.ErrCurrentVersionProtected)

	// State unchanged.
	got, err := l.GetPrompt(ctx, "p1")
	require.NoError(t, err)
	assert.Len(t, got.ActiveVersions(), 2)
}

func TestLocal_SoftDelete_LastActiveProtected(t *testing.T) {
	ctx := context.Background()
	l := newLocal(t, seedPrompt("p1"))
	p, err := l.CreateVersion(ctx, "p1", CreateVersionRequest{Bump: core.BumpMinor})
	require.NoError(t, err)
	newID := p.CurrentVersionID

	// Delete the non-current version so only one active remains. That
	// survivor is necessarily current, and the last-active protection
	// takes precedence over the current-version one.
	p, err = l.SoftDeleteVersion(ctx, "p1", "p1-v1")
	require.NoError(t, err)
	require.Len(t, p.ActiveVersions(), 1)

	_, err = l.SoftDeleteVersion(ctx, "p1", newID)
	assert.ErrorIs(t, err, core.ErrLastVersionProtected)
}

func TestLocal_SoftDelete_AfterRestore(t *testing.T) {
	// Spec scenario: restore "1.0", then delete the now non-current "1.1".
	ctx := context.Background()
	l := newLocal(t, seedPrompt("p1"))
	p, err := l.CreateVersion(ctx, "p1", CreateVersionRequest{Bump: core.BumpMinor})
	require.NoError(t, err)
	v11 := p.CurrentVersionID

	_, err = l.RestoreVersion(ctx, "p1", "p1-v1")
	require.NoError(t, err)

	p, err = l.SoftDeleteVersion(ctx, "p1", v11)
	require.NoError(t, err)
	deleted := p.Version(v11)
	require.NotNil(t, deleted)
	assert.True(t, deleted.Deleted)
	require.NotNil(t, deleted.DeletedAt)
	assert.NoError(t, p.Validate())

	// Only "1.0" is active now; deleting it must fail last-protected.
	_, err = l.SoftDeleteVersion(ctx, "p1", "p1-v1")
	assert.ErrorIs(t, err, core.ErrLastVersionProtected)
}

func TestLocal_RestoreSoftDeleted_RoundTrip(t *testing.T) {
	ctx := context.Background()
	l := newLocal(t, seedPrompt("p1"))
	p, err := l.CreateVersion(ctx, "p1", CreateVersionRequest{Bump: core.BumpMinor})
	require.NoError(t, err)
	v11 := p.CurrentVersionID
	_, err = l.RestoreVersion(ctx, "p1", "p1-v1")
	require.NoError(t, err)

	before, err := l.GetPrompt(ctx, "p1")
	require.NoError(t, err)
	snapBefore := before.Version(v11).Snapshot

	_, err = l.SoftDeleteVersion(ctx, "p1", v11)
	require.NoError(t, err)
	p, err = l.RestoreSoftDeletedVersion(ctx, "p1", v11)
	require.NoError(t, err)

	v := p.Version(v11)
	require.NotNil(t, v)
	assert.False(t, v.Deleted)
	assert.Nil(t, v.DeletedAt)
	assert.Equal(t, snapBefore, v.Snapshot)
}

func TestLocal_RestoreSoftDeleted_NotDeleted(t *testing.T) {
	ctx := context.Background()
	l := newLocal(t, seedPrompt("p1"))
	_, err := l.RestoreSoftDeletedVersion(ctx, "p1", "p1-v1")
	assert.ErrorIs(t, err, core.ErrNotDeleted)
}

func TestLocal_HardDelete(t *testing.T) {
	ctx := context.Background()
	l := newLocal(t, seedPrompt("p1"))
	p, err := l.CreateVersion(ctx, "p1", CreateVersionRequest{Bump: core.BumpMinor})
	require.NoError(t, err)
	v11 := p.CurrentVersionID

	_, err = l.HardDeleteVersion(ctx, "p1", v11)
	assert.ErrorIs(t, err, core.ErrCurrentVersionProtected)

	// Permitted on an active non-current version; soft delete not required.
	p, err = l.HardDeleteVersion(ctx, "p1", "p1-v1")
	require.NoError(t, err)
	assert.Nil(t, p.Version("p1-v1"))
	assert.Len(t, p.Versions, 1)

	_, err = l.HardDeleteVersion(ctx, "p1", "p1-v1")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestLocal_NumberNeverReused(t *testing.T) {
	ctx := context.Background()
	l := newLocal(t, seedPrompt("p1"))
	p, err := l.CreateVersion(ctx, "p1", CreateVersionRequest{Bump: core.BumpMinor})
	require.NoError(t, err)
	v11 := p.CurrentVersionID

	// Restore "1.0" as current while "1.1" stays in history soft-deleted.
	_, err = l.RestoreVersion(ctx, "p1", "p1-v1")
	require.NoError(t, err)
	_, err = l.SoftDeleteVersion(ctx, "p1", v11)
	require.NoError(t, err)

	// A minor bump from current "1.0" would derive "1.1", which is taken
	// and never reused; the store advances to the next free number.
	p, err = l.CreateVersion(ctx, "p1", CreateVersionRequest{Bump: core.BumpMinor})
	require.NoError(t, err)
	assert.Equal(t, "1.2", p.CurrentVersion().VersionNumber)
	assert.NoError(t, p.Validate())
}

func TestLocal_PutPrompt_RejectsBrokenAggregate(t *testing.T) {
	ctx := context.Background()
	l := NewMemory()
	p := seedPrompt("p1")
	p.CurrentVersionID = "dangling"
	err := l.PutPrompt(ctx, p)
	require.Error(t, err)
	var ie *core.InvariantError
	assert.ErrorAs(t, err, &ie)
}

func TestLocal_ClockControlsTimestamps(t *testing.T) {
	ctx := context.Background()
	l := newLocal(t, seedPrompt("p1"))
	frozen := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	l.SetClock(func() time.Time { return frozen })

	p, err := l.CreateVersion(ctx, "p1", CreateVersionRequest{Bump: core.BumpMinor})
	require.NoError(t, err)
	assert.True(t, p.CurrentVersion().CreatedAt.Equal(frozen))
	assert.True(t, p.UpdatedAt.Equal(frozen))
}
