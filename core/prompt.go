package core

import (
	"fmt"
	"time"
)

// Prompt is the aggregate root for a versioned prompt. The Snapshot field
// mirrors the content of the version identified by CurrentVersionID so reads
// never have to walk the history. All mutation goes through the lifecycle
// manager; callers must treat the fields as read-only.
type Prompt struct {
	ID               string           `json:"id"`
	Title            string           `json:"title"`
	Description      string           `json:"description"`
	Tags             []string         `json:"tags,omitempty"`
	CurrentVersionID string           `json:"current_version_id"`
	Snapshot         Snapshot         `json:"snapshot"`
	Versions         []*PromptVersion `json:"versions"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

// Copy returns a deep copy of the prompt and its version history.
func (p *Prompt) Copy() *Prompt {
	q := *p
	q.Tags = append([]string(nil), p.Tags...)
	q.Versions = make([]*PromptVersion, len(p.Versions))
	for i, v := range p.Versions {
		q.Versions[i] = v.Copy()
	}
	return &q
}

// Version returns the version with the given id, or nil.
func (p *Prompt) Version(id string) *PromptVersion {
	for _, v := range p.Versions {
		if v.ID == id {
			return v
		}
	}
	return nil
}

// CurrentVersion returns the version currently in effect, or nil if the
// pointer is dangling (an invariant violation).
func (p *Prompt) CurrentVersion() *PromptVersion {
	return p.Version(p.CurrentVersionID)
}

// ActiveVersions returns the versions that are not soft-deleted.
func (p *Prompt) ActiveVersions() []*PromptVersion {
	var out []*PromptVersion
	for _, v := range p.Versions {
		if !v.Deleted {
			out = append(out, v)
		}
	}
	return out
}

// DeletedVersions returns the soft-deleted versions.
func (p *Prompt) DeletedVersions() []*PromptVersion {
	var out []*PromptVersion
	for _, v := range p.Versions {
		if v.Deleted {
			out = append(out, v)
		}
	}
	return out
}

// RemoveVersion deletes the version with the given id from the history.
// It reports whether a version was removed.
func (p *Prompt) RemoveVersion(id string) bool {
	for i, v := range p.Versions {
		if v.ID == id {
			p.Versions = append(p.Versions[:i], p.Versions[i+1:]...)
			return true
		}
	}
	return false
}

// Validate checks the aggregate invariants: the current pointer identifies
// an active member of the history, at least one active version exists,
// version numbers are unique, soft-delete flags are consistent, and the
// mirrored snapshot equals the current version's snapshot.
func (p *Prompt) Validate() error {
	cur := p.CurrentVersion()
	if cur == nil {
		return &InvariantError{PromptID: p.ID, Message: "current version pointer is dangling"}
	}
	if cur.Deleted {
		return &InvariantError{PromptID: p.ID, Message: "current version is soft-deleted"}
	}
	if len(p.ActiveVersions()) == 0 {
		return &InvariantError{PromptID: p.ID, Message: "no active versions"}
	}
	seen := make(map[string]bool, len(p.Versions))
	for _, v := range p.Versions {
		if seen[v.VersionNumber] {
			return &InvariantError{PromptID: p.ID, Message: fmt.Sprintf("duplicate version number %q", v.VersionNumber)}
		}
		seen[v.VersionNumber] = true
		if v.Deleted && v.DeletedAt == nil {
			return &InvariantError{PromptID: p.ID, Message: fmt.Sprintf("version %s deleted without deletion time", v.ID)}
		}
		if !v.Deleted && v.DeletedAt != nil {
			return &InvariantError{PromptID: p.ID, Message: fmt.Sprintf("version %s has stale deletion time", v.ID)}
		}
	}
	if p.Snapshot != cur.Snapshot {
		return &InvariantError{PromptID: p.ID, Message: "mirrored snapshot out of sync with current version"}
	}
	return nil
}
