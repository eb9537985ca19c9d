// Package sqlite is the single-file durable store used by BUILD_TARGET=local and tests.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ronnydonkey/scatterbrain-ai/internal/model"
	"github.com/ronnydonkey/scatterbrain-ai/internal/store"
)

// NewWithDB wraps an open database; call EnsureSchema first.
func NewWithDB(db *sql.DB) store.Store {
	return &sqliteStore{db: db, now: func() time.Time { return time.Now().UTC() }}
}

type sqliteStore struct {
	db  *sql.DB
	now func() time.Time
}

func (s *sqliteStore) Boards() store.Boards { return &boards{s} }
func (s *sqliteStore) CustomPersonas() store.CustomPersonas {
	return &customPersonas{s}
}
func (s *sqliteStore) History() store.History     { return &history{s} }
func (s *sqliteStore) Templates() store.Templates { return &templates{s} }

func (s *sqliteStore) HealthPing(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *sqliteStore) Close() error { return s.db.Close() }

type boards struct{ *sqliteStore }

func (b *boards) Get(ctx context.Context, userID string) ([]string, error) {
	var raw string
	err := b.db.QueryRowContext(ctx, `SELECT advisor_ids FROM user_boards WHERE user_id=?`, userID).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var ids []string
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		return nil, fmt.Errorf("decode advisor_ids: %w", err)
	}
	return ids, nil
}

func (b *boards) Upsert(ctx context.Context, userID string, advisorIDs []string) error {
	raw, err := json.Marshal(nonNil(advisorIDs))
	if err != nil {
		return err
	}
	_, err = b.db.ExecContext(ctx, `
        INSERT INTO user_boards (user_id, advisor_ids, updated_at) VALUES (?,?,?)
        ON CONFLICT(user_id) DO UPDATE SET advisor_ids=excluded.advisor_ids, updated_at=excluded.updated_at
    `, userID, string(raw), b.now().UnixNano())
	return err
}

type customPersonas struct{ *sqliteStore }

func (c *customPersonas) Create(ctx context.Context, p *model.Persona) (*model.Persona, error) {
	out := *p
	if out.ID == "" {
		out.ID = model.CustomIDPrefix + uuid.New().String()
	}
	created := c.now()
	if _, err := c.db.ExecContext(ctx, `
        INSERT INTO custom_advisors (id, user_id, name, role, avatar, voice, category, created_at)
        VALUES (?,?,?,?,?,?,?,?)
    `, out.ID, out.UserID, out.Name, out.Role, out.Avatar, out.Voice, out.Category, created.UnixNano()); err != nil {
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
        FROM custom_advisors WHERE user_id=?
        ORDER BY created_at DESC, rowid DESC
    `, userID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []*model.Persona
	for rows.Next() {
		var p model.Persona
		var created int64
		if err := rows.Scan(&p.ID, &p.UserID, &p.Name, &p.Role, &p.Avatar, &p.Voice, &p.Category, &created); err != nil {
			return nil, err
		}
		ts := time.Unix(0, created).UTC()
		p.Tier = model.TierInsider
		p.IsCustom = true
		p.CreatedAt = &ts
		out = append(out, &p)
	}
	return out, rows.Err()
}

func (c *customPersonas) Delete(ctx context.Context, userID, personaID string) error {
	_, err := c.db.ExecContext(ctx, `DELETE FROM custom_advisors WHERE id=? AND user_id=?`, personaID, userID)
	return err
}

type history struct{ *sqliteStore }

func (h *history) Append(ctx context.Context, e *model.HistoryEntry) (*model.HistoryEntry, error) {
	out := *e
	if out.ID == "" {
		out.ID = uuid.New().String()
	}
	out.CreatedAt = h.now()
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

	if _, err := tx.ExecContext(ctx, `
        INSERT INTO synthesis_history (id, user_id, input_text, advisor_ids, results, created_at)
        VALUES (?,?,?,?,?,?)
    `, out.ID, out.UserID, out.InputText, string(ids), string(results), out.CreatedAt.UnixNano()); err != nil {
		return nil, err
	}
	if _, err := tx.ExecContext(ctx, `
        DELETE FROM synthesis_history
        WHERE user_id=? AND id NOT IN (
            SELECT id FROM synthesis_history WHERE user_id=?
            ORDER BY created_at DESC, rowid DESC LIMIT ?
        )
    `, out.UserID, out.UserID, model.HistoryLimit); err != nil {
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
        FROM synthesis_history WHERE user_id=?
        ORDER BY created_at DESC, rowid DESC LIMIT ?
    `, userID, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []*model.HistoryEntry
	for rows.Next() {
		var e model.HistoryEntry
		var ids, results string
		var created int64
		if err := rows.Scan(&e.ID, &e.UserID, &e.InputText, &ids, &results, &created); err != nil {
			return nil, err
		}
		e.CreatedAt = time.Unix(0, created).UTC()
		if err := json.Unmarshal([]byte(ids), &e.AdvisorIDs); err != nil {
			return nil, fmt.Errorf("decode history advisor_ids: %w", err)
		}
		if results != "" && results != "null" {
			e.Results = &model.SynthesisResult{}
			if err := json.Unmarshal([]byte(results), e.Results); err != nil {
				return nil, fmt.Errorf("decode history results: %w", err)
			}
		}
		out = append(out, &e)
	}
	return out, rows.Err()
}

type templates struct{ *sqliteStore }

const templateColumns = `id, name, description, advisor_ids, category, usage_count, is_public`

func (t *templates) ListPublic(ctx context.Context) ([]*model.BoardTemplate, error) {
	rows, err := t.db.QueryContext(ctx, `SELECT `+templateColumns+` FROM board_templates WHERE is_public ORDER BY usage_count DESC, id`)
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
	tpl, err := scanTemplate(t.db.QueryRowContext(ctx, `SELECT `+templateColumns+` FROM board_templates WHERE id=?`, templateID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrNotFound
	}
	return tpl, err
}

func (t *templates) IncrementUsage(ctx context.Context, templateID string) error {
	res, err := t.db.ExecContext(ctx, `UPDATE board_templates SET usage_count = usage_count + 1 WHERE id=?`, templateID)
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
        VALUES (?,?,?,?,?,?)
        ON CONFLICT(id) DO UPDATE SET
            name=excluded.name, description=excluded.description,
            advisor_ids=excluded.advisor_ids, category=excluded.category, is_public=excluded.is_public
    `, tpl.ID, tpl.Name, tpl.Description, string(ids), tpl.Category, tpl.IsPublic)
	return err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTemplate(s scanner) (*model.BoardTemplate, error) {
	var tpl model.BoardTemplate
	var ids string
	if err := s.Scan(&tpl.ID, &tpl.Name, &tpl.Description, &ids, &tpl.Category, &tpl.UsageCount, &tpl.IsPublic); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(ids), &tpl.AdvisorIDs); err != nil {
		return nil, fmt.Errorf("decode template advisor_ids: %w", err)
	}
	return &tpl, nil
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
