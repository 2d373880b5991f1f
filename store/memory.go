package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/weftlabs/weft/core"
)

// MemoryBackend keeps prompt aggregates in process memory. Intended for
// tests and single-process use.
type MemoryBackend struct {
	mu      sync.RWMutex
	prompts map[string]*core.Prompt
}

// NewMemoryBackend creates an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{prompts: make(map[string]*core.Prompt)}
}

// NewMemory returns a ready-to-use local Store over a fresh memory backend.
func NewMemory() *Local {
	return NewLocal(NewMemoryBackend())
}

// GetPrompt implements Backend.
func (m *MemoryBackend) GetPrompt(ctx context.Context, id string) (*core.Prompt, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.prompts[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	// Copy so callers cannot mutate stored state.
	return p.Copy(), nil
}

// PutPrompt implements Backend.
func (m *MemoryBackend) PutPrompt(ctx context.Context, p *core.Prompt) error {
	if p == nil || p.ID == "" {
		return fmt.Errorf("memory backend: prompt id required")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prompts[p.ID] = p.Copy()
	return nil
}

// DeletePrompt implements Backend.
func (m *MemoryBackend) DeletePrompt(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.prompts[id]; !ok {
		return core.ErrNotFound
	}
	delete(m.prompts, id)
	return nil
}

// ListPrompts implements Backend. Results are ordered by id for determinism.
func (m *MemoryBackend) ListPrompts(ctx context.Context, filter Filter) ([]*core.Prompt, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.prompts))
	for id := range m.prompts {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	limit := filter.Limit
	if limit <= 0 {
		limit = 1000
	}
	offset := filter.Offset
	var out []*core.Prompt
	for _, id := range ids {
		p := m.prompts[id]
		if !matches(p, filter) {
			continue
		}
		if offset > 0 {
			offset--
			continue
		}
		out = append(out, p.Copy())
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

var _ Backend = (*MemoryBackend)(nil)
