package audit

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

const defaultTableName = "prompt_events"

// PostgresStore implements Store using a PostgreSQL table.
type PostgresStore struct {
	db        *sql.DB
	tableName string
}

// NewPostgresStore creates a store over the given *sql.DB (driver
// "postgres"). The table is created if it doesn't exist.
func NewPostgresStore(db *sql.DB, tableName string) (*PostgresStore, error) {
	if tableName == "" {
		tableName = defaultTableName
	}
	s := &PostgresStore{db: db, tableName: tableName}
	if err := s.migrate(context.Background()); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *PostgresStore) migrate(ctx context.Context) error {
	q := `CREATE TABLE IF NOT EXISTS ` + s.tableName + ` (
		id BIGSERIAL PRIMARY KEY,
		prompt_id TEXT NOT NULL,
		version_id TEXT NOT NULL DEFAULT '',
		version_number TEXT NOT NULL DEFAULT '',
		op TEXT NOT NULL,
		actor TEXT NOT NULL DEFAULT '',
		at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	CREATE INDEX IF NOT EXISTS idx_prompt_events_prompt ON ` + s.tableName + ` (prompt_id, at);
	CREATE INDEX IF NOT EXISTS idx_prompt_events_at ON ` + s.tableName + ` (at);`
	_, err := s.db.ExecContext(ctx, q)
	return err
}

// Record implements Store.
func (s *PostgresStore) Record(ctx context.Context, e Event) error {
	if e.At.IsZero() {
		e.At = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO `+s.tableName+` (prompt_id, version_id, version_number, op, actor, at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		e.PromptID, e.VersionID, e.VersionNumber, e.Op, e.Actor, e.At)
	return err
}

func (s *PostgresStore) whereClause(q Query) (string, []interface{}) {
	args := []interface{}{}
	where := "1=1"
	n := 1
	if q.PromptID != "" {
		args = append(args, q.PromptID)
		where += fmt.Sprintf(" AND prompt_id = $%d", n)
		n++
	}
	if q.Op != "" {
		args = append(args, q.Op)
		where += fmt.Sprintf(" AND op = $%d", n)
		n++
	}
	if !q.From.IsZero() {
		args = append(args, q.From)
		where += fmt.Sprintf(" AND at >= $%d", n)
		n++
	}
	if !q.To.IsZero() {
		args = append(args, q.To)
		where += fmt.Sprintf(" AND at <= $%d", n)
		n++
	}
	return where, args
}

// Recent implements Store.
func (s *PostgresStore) Recent(ctx context.Context, q Query) ([]Event, error) {
	where, args := s.whereClause(q)
	args = append(args, q.limit())
	query := `SELECT prompt_id, version_id, version_number, op, actor, at
		FROM ` + s.tableName + `
		WHERE ` + where + `
		ORDER BY at DESC, id DESC
		LIMIT $` + fmt.Sprint(len(args))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.PromptID, &e.VersionID, &e.VersionNumber, &e.Op, &e.Actor, &e.At); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Summary implements Store.
func (s *PostgresStore) Summary(ctx context.Context, q Query) ([]Aggregate, error) {
	where, args := s.whereClause(q)

	groupCol := "'all'"
	switch q.GroupBy {
	case "op":
		groupCol = "op"
	case "prompt":
		groupCol = "prompt_id"
	case "day":
		groupCol = "date_trunc('day', at)::date::text"
	case "hour":
		groupCol = "to_char(date_trunc('hour', at), 'YYYY-MM-DD-HH24')"
	}
	args = append(args, q.limit())
	limitPlaceholder := fmt.Sprintf("$%d", len(args))

	query := `SELECT ` + groupCol + ` AS key, COUNT(*)::bigint AS count
		FROM ` + s.tableName + `
		WHERE ` + where + `
		GROUP BY ` + groupCol + `
		ORDER BY count DESC
		LIMIT ` + limitPlaceholder

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Aggregate
	for rows.Next() {
		var a Aggregate
		if err := rows.Scan(&a.Key, &a.Count); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
