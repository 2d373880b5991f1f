package lifecycle

import (
	"context"
	"time"

	"github.com/weftlabs/weft/core"
)

// RetentionPeriod is how long a soft-deleted version is kept before it is
// eligible for purging.
const RetentionPeriod = 30 * 24 * time.Hour

// PurgeDeadline returns when the soft-deleted version becomes eligible for
// purging, or the zero time if the version is not soft-deleted. This is a
// derived display value; nothing happens at the deadline by itself.
func PurgeDeadline(v *core.PromptVersion) time.Time {
	if v == nil || !v.Deleted || v.DeletedAt == nil {
		return time.Time{}
	}
	return v.DeletedAt.Add(RetentionPeriod)
}

// DaysRemaining returns the whole days left before the purge deadline,
// rounded up, clamped at zero. Returns -1 for versions that are not
// soft-deleted.
func DaysRemaining(v *core.PromptVersion, now time.Time) int {
	deadline := PurgeDeadline(v)
	if deadline.IsZero() {
		return -1
	}
	left := deadline.Sub(now)
	if left <= 0 {
		return 0
	}
	days := int(left / (24 * time.Hour))
	if left%(24*time.Hour) != 0 {
		days++
	}
	return days
}

// Expired reports whether the soft-deleted version has outlived the
// retention period.
func Expired(v *core.PromptVersion, now time.Time) bool {
	deadline := PurgeDeadline(v)
	return !deadline.IsZero() && !now.Before(deadline)
}

// SweepExpired permanently deletes every soft-deleted version of the prompt
// whose retention period has elapsed, and returns how many were purged.
// The displayed countdown never enforces anything; callers that want real
// expiry invoke this on read or on a schedule.
func (m *Manager) SweepExpired(ctx context.Context, promptID string, now time.Time) (int, error) {
	p, err := m.Get(ctx, promptID)
	if err != nil {
		return 0, err
	}
	var purged int
	for _, v := range p.DeletedVersions() {
		if !Expired(v, now) {
			continue
		}
		if _, err := m.PermanentDeleteVersion(ctx, promptID, v.ID); err != nil {
			return purged, err
		}
		purged++
	}
	return purged, nil
}
