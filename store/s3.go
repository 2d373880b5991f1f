package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/weftlabs/weft/core"
)

// BlobStore is a minimal key-value store for S3-compatible backends
// (e.g. AWS S3, MinIO).
type BlobStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, body []byte) error
	List(ctx context.Context, prefix string) ([]string, error)
	Delete(ctx context.Context, key string) error
}

// S3Backend stores prompt aggregates through a BlobStore.
// Keys: prefix/prompts/{id}.json.
type S3Backend struct {
	store  BlobStore
	prefix string
}

// NewS3Backend creates a backend using the given BlobStore (e.g. from
// store/s3blob) and key prefix.
func NewS3Backend(store BlobStore, prefix string) *S3Backend {
	prefix = strings.Trim(prefix, "/")
	if prefix != "" {
		prefix += "/"
	}
	return &S3Backend{store: store, prefix: prefix}
}

func (s *S3Backend) promptKey(id string) string {
	return s.prefix + "prompts/" + id + ".json"
}

// GetPrompt implements Backend.
func (s *S3Backend) GetPrompt(ctx context.Context, id string) (*core.Prompt, error) {
	data, err := s.store.Get(ctx, s.promptKey(id))
	if err != nil {
		return nil, core.ErrNotFound
	}
	var p core.Prompt
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("s3 backend decode: %w", err)
	}
	return &p, nil
}

// PutPrompt implements Backend.
func (s *S3Backend) PutPrompt(ctx context.Context, p *core.Prompt) error {
	if p == nil || p.ID == "" {
		return fmt.Errorf("s3 backend: prompt id required")
	}
	data, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return s.store.Put(ctx, s.promptKey(p.ID), data)
}

// DeletePrompt implements Backend.
func (s *S3Backend) DeletePrompt(ctx context.Context, id string) error {
	if _, err := s.store.Get(ctx, s.promptKey(id)); err != nil {
		return core.ErrNotFound
	}
	return s.store.Delete(ctx, s.promptKey(id))
}

// ListPrompts implements Backend by listing the prompts prefix.
func (s *S3Backend) ListPrompts(ctx context.Context, filter Filter) ([]*core.Prompt, error) {
	keys, err := s.store.List(ctx, s.prefix+"prompts/")
	if err != nil {
		return nil, err
	}
	sort.Strings(keys)
	limit := filter.Limit
	if limit <= 0 {
		limit = 1000
	}
	offset := filter.Offset
	var out []*core.Prompt
	for _, key := range keys {
		if !strings.HasSuffix(key, ".json") {
			continue
		}
		id := strings.TrimSuffix(strings.TrimPrefix(key, s.prefix+"prompts/"), ".json")
		if len(filter.IDs) > 0 && !contains(filter.IDs, id) {
			continue
		}
		p, err := s.GetPrompt(ctx, id)
		if err != nil {
			continue
		}
		if !matches(p, filter) {
			continue
		}
		if offset > 0 {
			offset--
			continue
		}
		out = append(out, p)
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

var _ Backend = (*S3Backend)(nil)
