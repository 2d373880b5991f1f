package store

import (
	"context"

	"github.com/weftlabs/weft/core"
)

// Backend is the narrow document-persistence interface a storage engine must
// implement. Backends store and load whole prompt aggregates; all lifecycle
// semantics live in Local, so a backend never interprets version state.
type Backend interface {
	// GetPrompt returns the aggregate or core.ErrNotFound.
	GetPrompt(ctx context.Context, id string) (*core.Prompt, error)
	// PutPrompt creates or replaces the aggregate.
	PutPrompt(ctx context.Context, p *core.Prompt) error
	// DeletePrompt removes the aggregate, or core.ErrNotFound.
	DeletePrompt(ctx context.Context, id string) error
	// ListPrompts returns aggregates matching the filter.
	ListPrompts(ctx context.Context, filter Filter) ([]*core.Prompt, error)
}
