// Package store provides the prompt record-store abstraction and its storage
// backends. The lifecycle manager is written once against the Store
// interface; Local applies mutations against any document Backend, while
// Remote delegates them to a weft server over HTTP.
package store

import (
	"context"

	"github.com/weftlabs/weft/core"
)

// Filter limits which prompts are returned by ListPrompts.
type Filter struct {
	IDs    []string
	Tags   []string
	Limit  int
	Offset int
}

// CreateVersionRequest carries the author-supplied inputs for a new version.
// The version number is always derived from the prompt's current state by
// the store. Content defaults to the prompt's current snapshot; supplying
// Content captures edited content and the new version atomically, so the
// mirrored snapshot never goes out of sync.
type CreateVersionRequest struct {
	ChangeNote string         `json:"change_note"`
	Bump       core.BumpKind  `json:"bump"`
	CreatedBy  string         `json:"created_by,omitempty"`
	Content    *core.Snapshot `json:"content,omitempty"`
}

// Store is the record-store collaborator for prompt version lifecycle
// operations. Mutating calls return the full updated aggregate so callers
// can replace their in-memory state in one atomic assignment; on error the
// stored state is unchanged.
type Store interface {
	GetPrompt(ctx context.Context, id string) (*core.Prompt, error)
	ListPrompts(ctx context.Context, filter Filter) ([]*core.Prompt, error)

	// PutPrompt creates or replaces a whole prompt aggregate.
	PutPrompt(ctx context.Context, p *core.Prompt) error
	// DeletePrompt removes a prompt and its entire version history.
	DeletePrompt(ctx context.Context, id string) error

	CreateVersion(ctx context.Context, promptID string, req CreateVersionRequest) (*core.Prompt, error)
	RestoreVersion(ctx context.Context, promptID, versionID string) (*core.Prompt, error)
	SoftDeleteVersion(ctx context.Context, promptID, versionID string) (*core.Prompt, error)
	RestoreSoftDeletedVersion(ctx context.Context, promptID, versionID string) (*core.Prompt, error)
	HardDeleteVersion(ctx context.Context, promptID, versionID string) (*core.Prompt, error)
}

func contains(slice []string, s string) bool {
	for _, v := range slice {
		if v == s {
			return true
		}
	}
	return false
}

func hasAll(have, need []string) bool {
	for _, n := range need {
		if !contains(have, n) {
			return false
		}
	}
	return true
}

// matches reports whether a prompt passes the filter's id and tag criteria.
func matches(p *core.Prompt, f Filter) bool {
	if len(f.IDs) > 0 && !contains(f.IDs, p.ID) {
		return false
	}
	if len(f.Tags) > 0 && !hasAll(p.Tags, f.Tags) {
		return false
	}
	return true
}
