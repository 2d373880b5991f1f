// Package lifecycle implements the version lifecycle manager: the single
// gate through which a prompt's version history is mutated. It validates
// the lifecycle invariants before any record-store call and keeps a session
// cache of aggregates that is replaced atomically on success.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/weftlabs/weft/audit"
	"github.com/weftlabs/weft/core"
	"github.com/weftlabs/weft/store"
)

// Manager orchestrates version lifecycle operations over a record store.
// It works identically against a local or remote store; no operation
// branches on the store kind.
type Manager struct {
	store store.Store
	audit audit.Store

	mu      sync.RWMutex
	prompts map[string]*core.Prompt
	lastErr error
}

// NewManager creates a manager over the given record store.
func NewManager(s store.Store) *Manager {
	return &Manager{store: s, prompts: make(map[string]*core.Prompt)}
}

// SetAudit attaches an audit trail. Recording is best-effort: a failing
// trail never fails the lifecycle operation it describes.
func (m *Manager) SetAudit(a audit.Store) {
	m.audit = a
}

func (m *Manager) record(ctx context.Context, op, promptID string, v *core.PromptVersion) {
	if m.audit == nil {
		return
	}
	e := audit.Event{PromptID: promptID, Op: op, At: time.Now()}
	if v != nil {
		e.VersionID = v.ID
		e.VersionNumber = v.VersionNumber
		e.Actor = v.CreatedBy
	}
	_ = m.audit.Record(ctx, e)
}

// Get returns the prompt aggregate, from the session cache when present.
func (m *Manager) Get(ctx context.Context, promptID string) (*core.Prompt, error) {
	m.mu.RLock()
	p, ok := m.prompts[promptID]
	m.mu.RUnlock()
	if ok {
		return p.Copy(), nil
	}
	return m.Refresh(ctx, promptID)
}

// Refresh re-reads the prompt from the store, replacing the cached state.
func (m *Manager) Refresh(ctx context.Context, promptID string) (*core.Prompt, error) {
	p, err := m.store.GetPrompt(ctx, promptID)
	if err != nil {
		return nil, m.fail(storeErr(err))
	}
	m.commit(p)
	return p.Copy(), nil
}

// List returns prompts matching the filter straight from the store.
func (m *Manager) List(ctx context.Context, filter store.Filter) ([]*core.Prompt, error) {
	out, err := m.store.ListPrompts(ctx, filter)
	if err != nil {
		return nil, m.fail(storeErr(err))
	}
	return out, nil
}

// SavePrompt stores a whole aggregate (prompt creation or metadata edits).
func (m *Manager) SavePrompt(ctx context.Context, p *core.Prompt) error {
	if err := p.Validate(); err != nil {
		return m.fail(err)
	}
	if err := m.store.PutPrompt(ctx, p); err != nil {
		return m.fail(storeErr(err))
	}
	m.commit(p)
	m.record(ctx, audit.OpPromptSaved, p.ID, p.CurrentVersion())
	return nil
}

// DeletePrompt hard-deletes a prompt and its whole history. Prompt deletion
// is independent of version deletion rules.
func (m *Manager) DeletePrompt(ctx context.Context, promptID string) error {
	if err := m.store.DeletePrompt(ctx, promptID); err != nil {
		return m.fail(storeErr(err))
	}
	m.mu.Lock()
	delete(m.prompts, promptID)
	m.mu.Unlock()
	m.record(ctx, audit.OpPromptDeleted, promptID, nil)
	return nil
}

// CreateVersion snapshots the prompt's current content into a new version
// and makes it current. The number is bumped relative to the current
// version, not the newest one.
func (m *Manager) CreateVersion(ctx context.Context, promptID string, req store.CreateVersionRequest) (*core.Prompt, error) {
	p, err := m.Get(ctx, promptID)
	if err != nil {
		return nil, err
	}
	if cur := p.CurrentVersion(); cur == nil || cur.Deleted {
		return nil, m.fail(&core.InvariantError{PromptID: promptID, Message: "current version pointer is invalid"})
	}
	if !req.Bump.Valid() {
		req.Bump = core.BumpMinor
	}
	updated, err := m.store.CreateVersion(ctx, promptID, req)
	if err != nil {
		return nil, m.fail(storeErr(err))
	}
	m.commit(updated)
	m.record(ctx, audit.OpVersionCreated, promptID, updated.CurrentVersion())
	return updated, nil
}

// RestoreVersion makes a historical version the current one: the prompt's
// mirrored content is replaced and the current pointer switched. No new
// version entry is created.
func (m *Manager) RestoreVersion(ctx context.Context, promptID, versionID string) (*core.Prompt, error) {
	p, err := m.Get(ctx, promptID)
	if err != nil {
		return nil, err
	}
	v := p.Version(versionID)
	if v == nil {
		return nil, m.fail(core.ErrNotFound)
	}
	if v.Deleted {
		return nil, m.fail(core.ErrDeleted)
	}
	updated, err := m.store.RestoreVersion(ctx, promptID, versionID)
	if err != nil {
		return nil, m.fail(storeErr(err))
	}
	m.commit(updated)
	m.record(ctx, audit.OpRestored, promptID, updated.CurrentVersion())
	return updated, nil
}

// DeleteVersion soft-deletes a version. The current version and the last
// active version are protected; failures are raised before any store I/O.
// A sole remaining active version is necessarily current; that overlap
// reports LastVersionProtected.
func (m *Manager) DeleteVersion(ctx context.Context, promptID, versionID string) (*core.Prompt, error) {
	p, err := m.Get(ctx, promptID)
	if err != nil {
		return nil, err
	}
	if p.Version(versionID) == nil {
		return nil, m.fail(core.ErrNotFound)
	}
	if len(p.ActiveVersions()) <= 1 {
		return nil, m.fail(core.ErrLastVersionProtected)
	}
	if versionID == p.CurrentVersionID {
		return nil, m.fail(core.ErrCurrentVersionProtected)
	}
	updated, err := m.store.SoftDeleteVersion(ctx, promptID, versionID)
	if err != nil {
		return nil, m.fail(storeErr(err))
	}
	m.commit(updated)
	m.record(ctx, audit.OpSoftDeleted, promptID, updated.Version(versionID))
	return updated, nil
}

// RestoreDeletedVersion returns a soft-deleted version to the active set.
// It does not become current; that requires a separate RestoreVersion.
func (m *Manager) RestoreDeletedVersion(ctx context.Context, promptID, versionID string) (*core.Prompt, error) {
	p, err := m.Get(ctx, promptID)
	if err != nil {
		return nil, err
	}
	v := p.Version(versionID)
	if v == nil {
		return nil, m.fail(core.ErrNotFound)
	}
	if !v.Deleted {
		return nil, m.fail(core.ErrNotDeleted)
	}
	updated, err := m.store.RestoreSoftDeletedVersion(ctx, promptID, versionID)
	if err != nil {
		return nil, m.fail(storeErr(err))
	}
	m.commit(updated)
	m.record(ctx, audit.OpRecovered, promptID, updated.Version(versionID))
	return updated, nil
}

// PermanentDeleteVersion removes a version from history for good. Permitted
// on active and soft-deleted versions alike, but never on the current one.
// The removed version's number is never reused.
func (m *Manager) PermanentDeleteVersion(ctx context.Context, promptID, versionID string) (*core.Prompt, error) {
	p, err := m.Get(ctx, promptID)
	if err != nil {
		return nil, err
	}
	if p.Version(versionID) == nil {
		return nil, m.fail(core.ErrNotFound)
	}
	if versionID == p.CurrentVersionID {
		return nil, m.fail(core.ErrCurrentVersionProtected)
	}
	updated, err := m.store.HardDeleteVersion(ctx, promptID, versionID)
	if err != nil {
		return nil, m.fail(storeErr(err))
	}
	m.commit(updated)
	m.record(ctx, audit.OpPurged, promptID, p.Version(versionID))
	return updated, nil
}

// History returns the active versions in display order.
func (m *Manager) History(ctx context.Context, promptID string) ([]*core.PromptVersion, error) {
	p, err := m.Get(ctx, promptID)
	if err != nil {
		return nil, err
	}
	return p.ActiveSorted(), nil
}

// Trash returns the soft-deleted versions in display order.
func (m *Manager) Trash(ctx context.Context, promptID string) ([]*core.PromptVersion, error) {
	p, err := m.Get(ctx, promptID)
	if err != nil {
		return nil, err
	}
	return p.DeletedSorted(), nil
}

// LastError returns the most recent operation failure, or nil. The slot is
// overwritten by each failing call; successes leave it untouched.
func (m *Manager) LastError() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastErr
}

// commit replaces the cached aggregate in one assignment.
func (m *Manager) commit(p *core.Prompt) {
	m.mu.Lock()
	m.prompts[p.ID] = p.Copy()
	m.mu.Unlock()
}

func (m *Manager) fail(err error) error {
	m.mu.Lock()
	m.lastErr = err
	m.mu.Unlock()
	return err
}

// storeErr passes typed lifecycle errors through untouched and wraps
// anything else as a store failure, keeping the collaborator's message.
func storeErr(err error) error {
	if err == nil {
		return nil
	}
	for _, typed := range []error{
		core.ErrNotFound,
		core.ErrCurrentVersionProtected,
		core.ErrLastVersionProtected,
		core.ErrNotDeleted,
		core.ErrDeleted,
		core.ErrStoreFailure,
		core.ErrInvalidVersionNumber,
	} {
		if errors.Is(err, typed) {
			return err
		}
	}
	var ie *core.InvariantError
	if errors.As(err, &ie) {
		return err
	}
	return fmt.Errorf("%w: %v", core.ErrStoreFailure, err)
}
