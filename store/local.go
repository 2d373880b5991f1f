package store

import (
	"context"
	"fmt"
	"time"

	"github.com/weftlabs/weft/core"
)

// Local implements Store against any document Backend. Mutations are
// read-modify-write: the aggregate is loaded, changed in memory, validated,
// and written back whole. Precondition failures surface as the core
// sentinel errors before anything is persisted.
type Local struct {
	backend Backend
	now     func() time.Time
}

// NewLocal creates a Store over the given backend.
func NewLocal(backend Backend) *Local {
	return &Local{backend: backend, now: time.Now}
}

// SetClock overrides the time source. Used by tests.
func (l *Local) SetClock(now func() time.Time) {
	l.now = now
}

// GetPrompt implements Store.
func (l *Local) GetPrompt(ctx context.Context, id string) (*core.Prompt, error) {
	return l.backend.GetPrompt(ctx, id)
}

// ListPrompts implements Store.
func (l *Local) ListPrompts(ctx context.Context, filter Filter) ([]*core.Prompt, error) {
	return l.backend.ListPrompts(ctx, filter)
}

// PutPrompt implements Store. The aggregate must satisfy the prompt
// invariants; storing a broken aggregate is refused.
func (l *Local) PutPrompt(ctx context.Context, p *core.Prompt) error {
	if p == nil || p.ID == "" {
		return fmt.Errorf("store: prompt id required")
	}
	if err := p.Validate(); err != nil {
		return err
	}
	return l.backend.PutPrompt(ctx, p)
}

// DeletePrompt implements Store.
func (l *Local) DeletePrompt(ctx context.Context, id string) error {
	return l.backend.DeletePrompt(ctx, id)
}

// CreateVersion captures content into a new version numbered relative to the
// current one, and makes it current. The previous current version stays in
// history, active and untouched. Content comes from the request when given,
// otherwise the prompt's current mirror is re-captured.
func (l *Local) CreateVersion(ctx context.Context, promptID string, req CreateVersionRequest) (*core.Prompt, error) {
	p, err := l.backend.GetPrompt(ctx, promptID)
	if err != nil {
		return nil, err
	}
	now := l.now()
	next := core.NextVersionNumber(p.Versions, p.CurrentVersionID, req.Bump)
	// Restoring an old version as current can make the derived number
	// collide with a later entry (current "1.0" with a "1.1" in history).
	// Numbers are never reused, so advance past taken ones.
	for numberTaken(p.Versions, next) {
		major, minor, err := core.ParseVersionNumber(next)
		if err != nil {
			return nil, err
		}
		if req.Bump == core.BumpMajor {
			next = core.FormatVersionNumber(major+1, 0)
		} else {
			next = core.FormatVersionNumber(major, minor+1)
		}
	}
	snap := p.Snapshot
	if req.Content != nil {
		snap = *req.Content
	}
	v := &core.PromptVersion{
		ID:            core.NewID(),
		PromptID:      p.ID,
		VersionNumber: next,
		Snapshot:      snap,
		ChangeNote:    req.ChangeNote,
		CreatedAt:     now,
		CreatedBy:     req.CreatedBy,
	}
	p.Versions = append(p.Versions, v)
	p.CurrentVersionID = v.ID
	p.Snapshot = snap
	p.UpdatedAt = now
	if err := l.persist(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// RestoreVersion makes a historical version current: a pointer switch plus
// a mirror copy. No new version entry is created. Soft-deleted versions
// cannot become current; they must be recovered to the active set first.
func (l *Local) RestoreVersion(ctx context.Context, promptID, versionID string) (*core.Prompt, error) {
	p, err := l.backend.GetPrompt(ctx, promptID)
	if err != nil {
		return nil, err
	}
	v := p.Version(versionID)
	if v == nil {
		return nil, core.ErrNotFound
	}
	if v.Deleted {
		return nil, core.ErrDeleted
	}
	p.Snapshot = v.Snapshot
	p.CurrentVersionID = v.ID
	p.UpdatedAt = l.now()
	if err := l.persist(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// SoftDeleteVersion marks a non-current version deleted while keeping it in
// history for restore. With a single active version left, that version is
// necessarily current and both protections apply; LastVersionProtected wins.
func (l *Local) SoftDeleteVersion(ctx context.Context, promptID, versionID string) (*core.Prompt, error) {
	p, err := l.backend.GetPrompt(ctx, promptID)
	if err != nil {
		return nil, err
	}
	v := p.Version(versionID)
	if v == nil {
		return nil, core.ErrNotFound
	}
	if len(p.ActiveVersions()) <= 1 {
		return nil, core.ErrLastVersionProtected
	}
	if versionID == p.CurrentVersionID {
		return nil, core.ErrCurrentVersionProtected
	}
	now := l.now()
	v.MarkDeleted(now)
	p.UpdatedAt = now
	if err := l.persist(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// RestoreSoftDeletedVersion returns a soft-deleted version to the active
// (non-current) state with its content untouched.
func (l *Local) RestoreSoftDeletedVersion(ctx context.Context, promptID, versionID string) (*core.Prompt, error) {
	p, err := l.backend.GetPrompt(ctx, promptID)
	if err != nil {
		return nil, err
	}
	v := p.Version(versionID)
	if v == nil {
		return nil, core.ErrNotFound
	}
	if !v.Deleted {
		return nil, core.ErrNotDeleted
	}
	v.Undelete()
	p.UpdatedAt = l.now()
	if err := l.persist(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// HardDeleteVersion removes a version from history entirely. Its version
// number is never reused. The operation is permitted on active versions as
// well as soft-deleted ones, but never on the current version.
func (l *Local) HardDeleteVersion(ctx context.Context, promptID, versionID string) (*core.Prompt, error) {
	p, err := l.backend.GetPrompt(ctx, promptID)
	if err != nil {
		return nil, err
	}
	if versionID == p.CurrentVersionID {
		return nil, core.ErrCurrentVersionProtected
	}
	if !p.RemoveVersion(versionID) {
		return nil, core.ErrNotFound
	}
	p.UpdatedAt = l.now()
	if err := l.persist(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func numberTaken(versions []*core.PromptVersion, number string) bool {
	for _, v := range versions {
		if v.VersionNumber == number {
			return true
		}
	}
	return false
}

// persist validates the mutated aggregate and writes it back. Validation
// failing here means a bug in the mutation above, not a caller error.
func (l *Local) persist(ctx context.Context, p *core.Prompt) error {
	if err := p.Validate(); err != nil {
		return err
	}
	return l.backend.PutPrompt(ctx, p)
}

var _ Store = (*Local)(nil)
