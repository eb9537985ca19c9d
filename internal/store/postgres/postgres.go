package postgres

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/ronnydonkey/scatterbrain-ai/internal/model"
	"github.com/ronnydonkey/scatterbrain-ai/internal/store"
)

//go:embed schema.sql
var schemaSQL string

// Open opens a PostgreSQL connection using the pgx stdlib driver and verifies connectivity.
func Open(dsn string) (*sql.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres DSN is empty")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// NewWithDB constructs a native Postgres store backed directly by database/sql.
func NewWithDB(db *sql.DB) store.Store { return &pgStore{db: db} }

type pgStore struct{ db *sql.DB }

func (s *pgStore) Boards() store.Boards                 { return &boards{db: s.db} }
func (s *pgStore) CustomPersonas() store.CustomPersonas { return &customPersonas{db: s.db} }
func (s *pgStore) History() store.History               { return &history{db: s.db} }
func (s *pgStore) Templates() store.Templates           { return &templates{db: s.db} }

// HealthPing implements health.HealthPinger for Postgres-backed store.
func (s *pgStore) HealthPing(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *pgStore) Close() error { return s.db.Close() }

// EnsureSchema applies the idempotent schema statements.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range strings.Split(schemaSQL, ";\n") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}

// Bootstrap verifies Postgres is reachable and the schema exists.
func Bootstrap(ctx context.Context, db *sql.DB) error {
	if err := db.PingContext(ctx); err != nil {
		return err
	}
	return EnsureSchema(ctx, db)
}

// --- Boards ---
type boards struct{ db *sql.DB }

func (b *boards) Get(ctx context.Context, userID string) ([]string, error) {
	var raw []byte
	err := b.db.QueryRowContext(ctx, `SELECT advisor_ids FROM user_boards WHERE user_id=$1`, userID).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var ids []string
	if err := json.Unmarshal(raw, &ids); err != nil {
		return nil, fmt.Errorf("decode advisor_ids: %w", err)
	}
	return ids, nil
}

func (b *boards) Upsert(ctx context.Context, userID string, advisorIDs []string) error {
	if advisorIDs == nil {
		advisorIDs = []string{}
	}
	raw, err := json.Marshal(advisorIDs)
	if err != nil {
		return err
	}
	_, err = b.db.ExecContext(ctx, `
        INSERT INTO user_boards (user_id, advisor_ids, updated_at)
        VALUES ($1, $2::jsonb, now())
        ON CONFLICT (user_id) DO UPDATE SET advisor_ids = EXCLUDED.advisor_ids, updated_at = now()
    `, userID, string(raw))
	return err
}

// --- Custom personas ---
type customPersonas struct{ db *sql.DB }

func (c *customPersonas) Create(ctx context.Context, p *model.Persona) (*model.Persona, error) {
	out := *p
	if out.ID == "" {
		out.ID = model.CustomIDPrefix + uuid.New().String()
	}
	var created time.Time
	row := c.db.QueryRowContext(ctx, `
        INSERT INTO custom_advisors (id, user_id, name, role, avatar, voice, category)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING created_at
    `, out.ID, out.UserID, out.Name, out.Role, out.Avatar, out.Voice, out.Category)
	if err := row.Scan(&created); err != nil {
		return nil, err
	}
	out.Tier = model.TierInsider
	out.IsCustom = true
	out.CreatedAt = &created
	return &out, nil
}

func (c *customPersonas) List(ctx context.Context, userID string) ([]*model.Persona, error) {
	rows, err := c.db.QueryContext(ctx, `
        SELECT id, user_id, name, role, avatar, voice, category, created_at
        FROM custom_advisors WHERE user_id=$1
        ORDER BY created_at DESC, id
    `, userID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []*model.Persona
	for rows.Next() {
		var p model.Persona
		var created time.Time
		if err := rows.Scan(&p.ID, &p.UserID, &p.Name, &p.Role, &p.Avatar, &p.Voice, &p.Category, &created); err != nil {
			return nil, err
		}
		p.Tier = model.TierInsider
		p.IsCustom = true
		p.CreatedAt = &created
		out = append(out, &p)
	}
	return out, rows.Err()
}

func (c *customPersonas) Delete(ctx context.Context, userID, personaID string) error {
	_, err := c.db.ExecContext(ctx, `DELETE FROM custom_advisors WHERE id=$1 AND user_id=$2`, personaID, userID)
	return err
}

// --- History ---
type history struct{ db *sql.DB }

func (h *history) Append(ctx context.Context, e *model.HistoryEntry) (*model.HistoryEntry, error) {
	out := *e
	if out.ID == "" {
		out.ID = uuid.New().String()
	}
	ids, err := json.Marshal(nonNil(out.AdvisorIDs))
	if err != nil {
		return nil, err
	}
	results, err := json.Marshal(out.Results)
	if err != nil {
		return nil, err
	}

	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	if err := tx.QueryRowContext(ctx, `
        INSERT INTO synthesis_history (id, user_id, input_text, advisor_ids, results)
        VALUES ($1,$2,$3,$4::jsonb,$5::jsonb)
        RETURNING created_at
    `, out.ID, out.UserID, out.InputText, string(ids), string(results)).Scan(&out.CreatedAt); err != nil {
		return nil, err
	}
	if _, err := tx.ExecContext(ctx, `
        DELETE FROM synthesis_history
        WHERE user_id=$1 AND id NOT IN (
            SELECT id FROM synthesis_history WHERE user_id=$1
            ORDER BY created_at DESC, id DESC LIMIT $2
        )
    `, out.UserID, model.HistoryLimit); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &out, nil
}

func (h *history) ListRecent(ctx context.Context, userID string, limit int) ([]*model.HistoryEntry, error) {
	if limit <= 0 || limit > model.HistoryLimit {
		limit = model.HistoryLimit
	}
	rows, err := h.db.QueryContext(ctx, `
        SELECT id, user_id, input_text, advisor_ids, results, created_at
        FROM synthesis_history WHERE user_id=$1
        ORDER BY created_at DESC, id DESC LIMIT $2
    `, userID, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []*model.HistoryEntry
	for rows.Next() {
		var e model.HistoryEntry
		var ids, results []byte
		if err := rows.Scan(&e.ID, &e.UserID, &e.InputText, &ids, &results, &e.CreatedAt); err != nil {
			return nil, err
		}
		if err := decodeHistoryJSON(&e, ids, results); err != nil {
			return nil, err
		}
		out = append(out, &e)
	}
	return out, rows.Err()
}

// --- Templates ---
type templates struct{ db *sql.DB }

func (t *templates) ListPublic(ctx context.Context) ([]*model.BoardTemplate, error) {
	rows, err := t.db.QueryContext(ctx, `
        SELECT id, name, description, advisor_ids, category, usage_count, is_public
        FROM board_templates WHERE is_public
        ORDER BY usage_count DESC, id
    `)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []*model.BoardTemplate
	for rows.Next() {
		tpl, err := scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, tpl)
	}
	return out, rows.Err()
}

func (t *templates) Get(ctx context.Context, templateID string) (*model.BoardTemplate, error) {
	row := t.db.QueryRowContext(ctx, `
        SELECT id, name, description, advisor_ids, category, usage_count, is_public
        FROM board_templates WHERE id=$1
    `, templateID)
	tpl, err := scanTemplate(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrNotFound
	}
	return tpl, err
}

func (t *templates) IncrementUsage(ctx context.Context, templateID string) error {
	res, err := t.db.ExecContext(ctx, `UPDATE board_templates SET usage_count = usage_count + 1 WHERE id=$1`, templateID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (t *templates) Upsert(ctx context.Context, tpl *model.BoardTemplate) error {
	ids, err := json.Marshal(nonNil(tpl.AdvisorIDs))
	if err != nil {
		return err
	}
	_, err = t.db.ExecContext(ctx, `
        INSERT INTO board_templates (id, name, description, advisor_ids, category, is_public)
        VALUES ($1,$2,$3,$4::jsonb,$5,$6)
        ON CONFLICT (id) DO UPDATE SET
            name = EXCLUDED.name,
            description = EXCLUDED.description,
            advisor_ids = EXCLUDED.advisor_ids,
            category = EXCLUDED.category,
            is_public = EXCLUDED.is_public
    `, tpl.ID, tpl.Name, tpl.Description, string(ids), tpl.Category, tpl.IsPublic)
	return err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTemplate(s scanner) (*model.BoardTemplate, error) {
	var tpl model.BoardTemplate
	var ids []byte
	if err := s.Scan(&tpl.ID, &tpl.Name, &tpl.Description, &ids, &tpl.Category, &tpl.UsageCount, &tpl.IsPublic); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(ids, &tpl.AdvisorIDs); err != nil {
		return nil, fmt.Errorf("decode template advisor_ids: %w", err)
	}
	return &tpl, nil
}

func decodeHistoryJSON(e *model.HistoryEntry, ids, results []byte) error {
	if err := json.Unmarshal(ids, &e.AdvisorIDs); err != nil {
		return fmt.Errorf("decode history advisor_ids: %w", err)
	}
	if len(results) > 0 && string(results) != "null" {
		e.Results = &model.SynthesisResult{}
		if err := json.Unmarshal(results, e.Results); err != nil {
			return fmt.Errorf("decode history results: %w", err)
		}
	}
	return nil
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
