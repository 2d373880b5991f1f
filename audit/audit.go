// Package audit records the trail of lifecycle operations applied to
// prompts: version creation, restores, trash moves, recoveries, and purges.
package audit

import (
	"context"
	"sync"
	"time"
)

// Operation names recorded in the trail.
const (
	OpPromptSaved    = "prompt_saved"
	OpPromptDeleted  = "prompt_deleted"
	OpVersionCreated = "version_created"
	OpRestored       = "version_restored"
	OpSoftDeleted    = "version_soft_deleted"
	OpRecovered      = "version_recovered"
	OpPurged         = "version_purged"
)

// Event is one recorded lifecycle operation.
type Event struct {
	PromptID      string    `json:"prompt_id"`
	VersionID     string    `json:"version_id,omitempty"`
	VersionNumber string    `json:"version_number,omitempty"`
	Op            string    `json:"op"`
	Actor         string    `json:"actor,omitempty"`
	At            time.Time `json:"at"`
}

// Store is the interface for recording and querying the audit trail.
type Store interface {
	Record(ctx context.Context, e Event) error
	Recent(ctx context.Context, q Query) ([]Event, error)
	Summary(ctx context.Context, q Query) ([]Aggregate, error)
}

// Query filters events, and for Summary selects the grouping.
type Query struct {
	PromptID string
	Op       string
	From     time.Time
	To       time.Time
	GroupBy  string // "op", "prompt", "day", "hour"
	Limit    int
}

// Aggregate is a bucketed event count (e.g. per operation or per day).
type Aggregate struct {
	Key   string `json:"key"`
	Count int64  `json:"count"`
}

func (q Query) matches(e Event) bool {
	if q.PromptID != "" && e.PromptID != q.PromptID {
		return false
	}
	if q.Op != "" && e.Op != q.Op {
		return false
	}
	if !q.From.IsZero() && e.At.Before(q.From) {
		return false
	}
	if !q.To.IsZero() && e.At.After(q.To) {
		return false
	}
	return true
}

func (q Query) bucket(e Event) string {
	switch q.GroupBy {
	case "op":
		return e.Op
	case "prompt":
		return e.PromptID
	case "day":
		return e.At.Format("2006-01-02")
	case "hour":
		return e.At.Format("2006-01-02-15")
	default:
		return "all"
	}
}

func (q Query) limit() int {
	if q.Limit <= 0 {
		return 100
	}
	return q.Limit
}

// MemoryStore is an in-memory implementation (bounded slice, no persistence).
type MemoryStore struct {
	mu     sync.RWMutex
	max    int
	events []Event
}

// NewMemoryStore creates an in-memory store that keeps at most max events
// (0 = unbounded).
func NewMemoryStore(max int) *MemoryStore {
	return &MemoryStore{max: max, events: make([]Event, 0, 256)}
}

// Record implements Store.
func (m *MemoryStore) Record(ctx context.Context, e Event) error {
	if e.At.IsZero() {
		e.At = time.Now()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, e)
	if m.max > 0 && len(m.events) > m.max {
		m.events = m.events[len(m.events)-m.max:]
	}
	return nil
}

// Recent implements Store. Events come back newest first.
func (m *MemoryStore) Recent(ctx context.Context, q Query) ([]Event, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	limit := q.limit()
	out := make([]Event, 0, limit)
	for i := len(m.events) - 1; i >= 0 && len(out) < limit; i-- {
		if q.matches(m.events[i]) {
			out = append(out, m.events[i])
		}
	}
	return out, nil
}

// Summary implements Store.
func (m *MemoryStore) Summary(ctx context.Context, q Query) ([]Aggregate, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return summarize(m.events, q), nil
}

// summarize buckets events per the query. Shared by the memory and redis
// stores, which both aggregate client-side.
func summarize(events []Event, q Query) []Aggregate {
	agg := make(map[string]*Aggregate)
	for _, e := range events {
		if !q.matches(e) {
			continue
		}
		k := q.bucket(e)
		if agg[k] == nil {
			agg[k] = &Aggregate{Key: k}
		}
		agg[k].Count++
	}
	out := make([]Aggregate, 0, len(agg))
	for _, a := range agg {
		out = append(out, *a)
	}
	if limit := q.limit(); len(out) > limit {
		out = out[:limit]
	}
	return out
}
