package audit

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultRedisKey = "weft:audit:events"

// RedisStore implements Store using Redis (sorted set by timestamp, member =
// JSON event).
type RedisStore struct {
	client redis.UniversalClient
	key    string
}

// NewRedisStore creates a store that uses the given Redis client.
func NewRedisStore(client redis.UniversalClient, key string) *RedisStore {
	if key == "" {
		key = defaultRedisKey
	}
	return &RedisStore{client: client, key: key}
}

// Record implements Store.
func (r *RedisStore) Record(ctx context.Context, e Event) error {
	if e.At.IsZero() {
		e.At = time.Now()
	}
	raw, err := json.Marshal(e)
	if err != nil {
		return err
	}
	score := float64(e.At.UnixNano()) / 1e9
	return r.client.ZAdd(ctx, r.key, redis.Z{Score: score, Member: string(raw)}).Err()
}

// load reads events in the query's time window, oldest first.
func (r *RedisStore) load(ctx context.Context, q Query) ([]Event, error) {
	min, max := "-inf", "+inf"
	if !q.From.IsZero() {
		min = strconv.FormatFloat(float64(q.From.UnixNano())/1e9, 'f', -1, 64)
	}
	if !q.To.IsZero() {
		max = strconv.FormatFloat(float64(q.To.UnixNano())/1e9, 'f', -1, 64)
	}
	const batch = 10000
	var events []Event
	for offset := int64(0); ; offset += batch {
		vals, err := r.client.ZRangeByScore(ctx, r.key, &redis.ZRangeBy{
			Min: min, Max: max, Offset: offset, Count: batch,
		}).Result()
		if err != nil {
			return nil, err
		}
		for _, raw := range vals {
			var e Event
			if err := json.Unmarshal([]byte(raw), &e); err != nil {
				continue
			}
			events = append(events, e)
		}
		if len(vals) < batch {
			break
		}
	}
	return events, nil
}

// Recent implements Store. Events come back newest first.
func (r *RedisStore) Recent(ctx context.Context, q Query) ([]Event, error) {
	events, err := r.load(ctx, q)
	if err != nil {
		return nil, err
	}
	limit := q.limit()
	out := make([]Event, 0, limit)
	for i := len(events) - 1; i >= 0 && len(out) < limit; i-- {
		if q.matches(events[i]) {
			out = append(out, events[i])
		}
	}
	return out, nil
}

// Summary implements Store, aggregating client-side.
func (r *RedisStore) Summary(ctx context.Context, q Query) ([]Aggregate, error) {
	events, err := r.load(ctx, q)
	if err != nil {
		return nil, err
	}
	return summarize(events, q), nil
}
