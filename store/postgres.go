package store

// PostgreSQL backend. Callers must register the driver with a blank
// import of github.com/lib/pq before opening the *sql.DB.

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/weftlabs/weft/core"
)

// PostgresBackend stores prompts and their version history in two tables.
type PostgresBackend struct {
	db *sql.DB
}

// NewPostgresBackend creates a backend over the given *sql.DB. If
// createTables is true the schema is created when missing.
func NewPostgresBackend(db *sql.DB, createTables bool) (*PostgresBackend, error) {
	b := &PostgresBackend{db: db}
	if createTables {
		if err := b.createTables(context.Background()); err != nil {
			return nil, err
		}
	}
	return b, nil
}

func (b *PostgresBackend) createTables(ctx context.Context) error {
	q := `CREATE TABLE IF NOT EXISTS prompts (
		id VARCHAR(255) PRIMARY KEY,
		title VARCHAR(255),
		description TEXT,
		tags TEXT[],
		current_version_id VARCHAR(255) NOT NULL,
		system_prompt TEXT,
		user_template TEXT,
		model VARCHAR(128),
		temperature DOUBLE PRECISION,
		max_tokens INT,
		status VARCHAR(32),
		created_at TIMESTAMPTZ,
		updated_at TIMESTAMPTZ
	);
	CREATE TABLE IF NOT EXISTS prompt_versions (
		id VARCHAR(255) PRIMARY KEY,
		prompt_id VARCHAR(255) NOT NULL REFERENCES prompts(id) ON DELETE CASCADE,
		version_number VARCHAR(64) NOT NULL,
		system_prompt TEXT,
		user_template TEXT,
		model VARCHAR(128),
		temperature DOUBLE PRECISION,
		max_tokens INT,
		status VARCHAR(32),
		change_note TEXT,
		created_at TIMESTAMPTZ,
		created_by VARCHAR(255),
		deleted BOOLEAN NOT NULL DEFAULT false,
		deleted_at TIMESTAMPTZ,
		UNIQUE (prompt_id, version_number)
	);
	CREATE INDEX IF NOT EXISTS idx_prompt_versions_prompt ON prompt_versions (prompt_id);`
	_, err := b.db.ExecContext(ctx, q)
	return err
}

// GetPrompt implements Backend.
func (b *PostgresBackend) GetPrompt(ctx context.Context, id string) (*core.Prompt, error) {
	q := `SELECT id, title, description, tags, current_version_id,
		system_prompt, user_template, model, temperature, max_tokens, status,
		created_at, updated_at FROM prompts WHERE id = $1`
	var p core.Prompt
	var tags pq.StringArray
	err := b.db.QueryRowContext(ctx, q, id).Scan(
		&p.ID, &p.Title, &p.Description, &tags, &p.CurrentVersionID,
		&p.Snapshot.SystemPrompt, &p.Snapshot.UserTemplate, &p.Snapshot.Model,
		&p.Snapshot.Temperature, &p.Snapshot.MaxTokens, &p.Snapshot.Status,
		&p.CreatedAt, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	p.Tags = tags
	if p.Versions, err = b.loadVersions(ctx, id); err != nil {
		return nil, err
	}
	return &p, nil
}

func (b *PostgresBackend) loadVersions(ctx context.Context, promptID string) ([]*core.PromptVersion, error) {
	q := `SELECT id, prompt_id, version_number, system_prompt, user_template,
		model, temperature, max_tokens, status, change_note, created_at,
		created_by, deleted, deleted_at
		FROM prompt_versions WHERE prompt_id = $1 ORDER BY created_at, id`
	rows, err := b.db.QueryContext(ctx, q, promptID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*core.PromptVersion
	for rows.Next() {
		var v core.PromptVersion
		var deletedAt sql.NullTime
		if err := rows.Scan(&v.ID, &v.PromptID, &v.VersionNumber,
			&v.Snapshot.SystemPrompt, &v.Snapshot.UserTemplate, &v.Snapshot.Model,
			&v.Snapshot.Temperature, &v.Snapshot.MaxTokens, &v.Snapshot.Status,
			&v.ChangeNote, &v.CreatedAt, &v.CreatedBy, &v.Deleted, &deletedAt); err != nil {
			return nil, err
		}
		if deletedAt.Valid {
			t := deletedAt.Time
			v.DeletedAt = &t
		}
		out = append(out, &v)
	}
	return out, rows.Err()
}

// PutPrompt implements Backend. The aggregate is written transactionally:
// the prompt row is upserted and the version rows are replaced wholesale, so
// the stored history always equals the in-memory history.
func (b *PostgresBackend) PutPrompt(ctx context.Context, p *core.Prompt) error {
	if p == nil || p.ID == "" {
		return fmt.Errorf("postgres backend: prompt id required")
	}
	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	q := `INSERT INTO prompts (id, title, description, tags, current_version_id,
		system_prompt, user_template, model, temperature, max_tokens, status,
		created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title, description = EXCLUDED.description,
			tags = EXCLUDED.tags, current_version_id = EXCLUDED.current_version_id,
			system_prompt = EXCLUDED.system_prompt, user_template = EXCLUDED.user_template,
			model = EXCLUDED.model, temperature = EXCLUDED.temperature,
			max_tokens = EXCLUDED.max_tokens, status = EXCLUDED.status,
			updated_at = EXCLUDED.updated_at`
	if _, err := tx.ExecContext(ctx, q,
		p.ID, p.Title, p.Description, pq.StringArray(p.Tags), p.CurrentVersionID,
		p.Snapshot.SystemPrompt, p.Snapshot.UserTemplate, p.Snapshot.Model,
		p.Snapshot.Temperature, p.Snapshot.MaxTokens, p.Snapshot.Status,
		p.CreatedAt, p.UpdatedAt); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM prompt_versions WHERE prompt_id = $1`, p.ID); err != nil {
		return err
	}
	vq := `INSERT INTO prompt_versions (id, prompt_id, version_number,
		system_prompt, user_template, model, temperature, max_tokens, status,
		change_note, created_at, created_by, deleted, deleted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	for _, v := range p.Versions {
		var deletedAt interface{}
		if v.DeletedAt != nil {
			deletedAt = *v.DeletedAt
		}
		if _, err := tx.ExecContext(ctx, vq,
			v.ID, v.PromptID, v.VersionNumber,
			v.Snapshot.SystemPrompt, v.Snapshot.UserTemplate, v.Snapshot.Model,
			v.Snapshot.Temperature, v.Snapshot.MaxTokens, v.Snapshot.Status,
			v.ChangeNote, v.CreatedAt, v.CreatedBy, v.Deleted, deletedAt); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// DeletePrompt implements Backend. Version rows go with the prompt via
// ON DELETE CASCADE.
func (b *PostgresBackend) DeletePrompt(ctx context.Context, id string) error {
	res, err := b.db.ExecContext(ctx, `DELETE FROM prompts WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}

// ListPrompts implements Backend.
func (b *PostgresBackend) ListPrompts(ctx context.Context, filter Filter) ([]*core.Prompt, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 1000
	}
	q := `SELECT id FROM prompts WHERE 1=1`
	args := []interface{}{}
	argNum := 1
	if len(filter.IDs) > 0 {
		q += ` AND id = ANY($` + fmt.Sprint(argNum) + `)`
		args = append(args, pq.Array(filter.IDs))
		argNum++
	}
	if len(filter.Tags) > 0 {
		q += ` AND tags @> $` + fmt.Sprint(argNum)
		args = append(args, pq.StringArray(filter.Tags))
		argNum++
	}
	q += ` ORDER BY id OFFSET $` + fmt.Sprint(argNum) + ` LIMIT $` + fmt.Sprint(argNum+1)
	args = append(args, filter.Offset, limit)
	rows, err := b.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	out := make([]*core.Prompt, 0, len(ids))
	for _, id := range ids {
		p, err := b.GetPrompt(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// Ping verifies the connection, useful at startup.
func (b *PostgresBackend) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return b.db.PingContext(ctx)
}

var _ Backend = (*PostgresBackend)(nil)
