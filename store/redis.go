package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/weftlabs/weft/core"
)

const (
	redisKeyPrompt = "prompt:%s"
	redisKeyIDs    = "index:ids"
)

// RedisBackend stores each prompt aggregate as a JSON value.
// Keys: prompt:{id} (JSON), index:ids (SET of prompt ids).
type RedisBackend struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisBackend creates a backend using the given Redis client and an
// optional key prefix (e.g. "weft:").
func NewRedisBackend(client redis.UniversalClient, prefix string) *RedisBackend {
	if prefix != "" && !strings.HasSuffix(prefix, ":") {
		prefix += ":"
	}
	return &RedisBackend{client: client, prefix: prefix}
}

func (r *RedisBackend) key(format string, a ...interface{}) string {
	return r.prefix + fmt.Sprintf(format, a...)
}

// GetPrompt implements Backend.
func (r *RedisBackend) GetPrompt(ctx context.Context, id string) (*core.Prompt, error) {
	data, err := r.client.Get(ctx, r.key(redisKeyPrompt, id)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, core.ErrNotFound
		}
		return nil, err
	}
	var p core.Prompt
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("redis backend decode: %w", err)
	}
	return &p, nil
}

// PutPrompt implements Backend.
func (r *RedisBackend) PutPrompt(ctx context.Context, p *core.Prompt) error {
	if p == nil || p.ID == "" {
		return fmt.Errorf("redis backend: prompt id required")
	}
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("redis backend encode: %w", err)
	}
	if err := r.client.Set(ctx, r.key(redisKeyPrompt, p.ID), data, 0).Err(); err != nil {
		return err
	}
	return r.client.SAdd(ctx, r.key(redisKeyIDs), p.ID).Err()
}

// DeletePrompt implements Backend.
func (r *RedisBackend) DeletePrompt(ctx context.Context, id string) error {
	n, err := r.client.Del(ctx, r.key(redisKeyPrompt, id)).Result()
	if err != nil {
		return err
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return r.client.SRem(ctx, r.key(redisKeyIDs), id).Err()
}

// ListPrompts implements Backend by walking the id index.
func (r *RedisBackend) ListPrompts(ctx context.Context, filter Filter) ([]*core.Prompt, error) {
	ids, err := r.client.SMembers(ctx, r.key(redisKeyIDs)).Result()
	if err != nil {
		return nil, err
	}
	sort.Strings(ids)
	limit := filter.Limit
	if limit <= 0 {
		limit = 1000
	}
	offset := filter.Offset
	var out []*core.Prompt
	for _, id := range ids {
		if len(filter.IDs) > 0 && !contains(filter.IDs, id) {
			continue
		}
		p, err := r.GetPrompt(ctx, id)
		if err != nil {
			if err == core.ErrNotFound {
				continue
			}
			return nil, err
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

var _ Backend = (*RedisBackend)(nil)
