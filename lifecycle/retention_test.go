package lifecycle

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weftlabs/weft/core"
	"github.com/weftlabs/weft/store"
)

func deletedVersion(deletedAt time.Time) *core.PromptVersion {
	return &core.PromptVersion{ID: "v", Deleted: true, DeletedAt: &deletedAt}
}

func TestPurgeDeadline(t *testing.T) {
	at := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	v := deletedVersion(at)
	assert.Equal(t, at.Add(RetentionPeriod), PurgeDeadline(v))

	assert.True(t, PurgeDeadline(&core.PromptVersion{}).IsZero())
	assert.True(t, PurgeDeadline(nil).IsZero())
}

func TestDaysRemaining(t *testing.T) {
	at := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	v := deletedVersion(at)

	assert.Equal(t, 30, DaysRemaining(v, at))
	assert.Equal(t, 30, DaysRemaining(v, at.Add(time.Minute))) // partial days round up
	assert.Equal(t, 1, DaysRemaining(v, at.Add(29*24*time.Hour+time.Hour)))
	assert.Equal(t, 0, DaysRemaining(v, at.Add(31*24*time.Hour)))
	assert.Equal(t, -1, DaysRemaining(&core.PromptVersion{}, at))
}

func TestExpired(t *testing.T) {
	at := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	v := deletedVersion(at)
	assert.False(t, Expired(v, at.Add(RetentionPeriod-time.Second)))
	assert.True(t, Expired(v, at.Add(RetentionPeriod)))
	assert.False(t, Expired(&core.PromptVersion{}, at))
}

func TestSweepExpired(t *testing.T) {
	ctx := context.Background()
	m, _ := seedManager(t)

	p, err := m.CreateVersion(ctx, "p1", store.CreateVersionRequest{ChangeNote: "a", Bump: core.BumpMinor})
	require.NoError(t, err)
	va := p.CurrentVersionID
	p, err = m.CreateVersion(ctx, "p1", store.CreateVersionRequest{ChangeNote: "b", Bump: core.BumpMinor})
	require.NoError(t, err)
	vb := p.CurrentVersionID
	_, err = m.CreateVersion(ctx, "p1", store.CreateVersionRequest{ChangeNote: "c", Bump: core.BumpMinor})
	require.NoError(t, err)

	_, err = m.DeleteVersion(ctx, "p1", va)
	require.NoError(t, err)
	_, err = m.DeleteVersion(ctx, "p1", vb)
	require.NoError(t, err)

	// Sweep as of "now": nothing has outlived the retention period yet.
	purged, err := m.SweepExpired(ctx, "p1", time.Now())
	require.NoError(t, err)
	assert.Zero(t, purged)

	// Well past the deadline both soft-deleted versions are purged.
	purged, err = m.SweepExpired(ctx, "p1", time.Now().Add(RetentionPeriod+24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 2, purged)

	p, err = m.Get(ctx, "p1")
	require.NoError(t, err)
	assert.Empty(t, p.DeletedVersions())
	assert.NoError(t, p.Validate())
}
