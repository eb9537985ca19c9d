// Package localstate is the fallback store used for anonymous sessions and
// whenever the durable store is unreachable.
package localstate

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ronnydonkey/scatterbrain-ai/internal/store/sqlite"
)

// Store keeps one fallback board per owner in a SQLite file.
type Store struct {
	db *sql.DB
}

// Open opens path, creating the file and schema as needed.
// An empty path resolves to DBPath().
func Open(path string) (*Store, error) {
	if path == "" {
		p, err := DBPath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	db, err := sqlite.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open local state %s: %w", path, err)
	}
	if err := EnsureSQLiteSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("local state schema: %w", err)
	}
	return &Store{db: db}, nil
}

// BoardIDs reads owner's fallback selection. A missing row yields an empty selection.
func (s *Store) BoardIDs(ctx context.Context, owner string) ([]string, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT advisor_ids FROM local_boards WHERE owner=?`, owner).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var ids []string
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		return nil, fmt.Errorf("decode local board for %q: %w", owner, err)
	}
	return ids, nil
}

// SetBoardIDs overwrites owner's fallback selection.
func (s *Store) SetBoardIDs(ctx context.Context, owner string, ids []string) error {
	if ids == nil {
		ids = []string{}
	}
	raw, err := json.Marshal(ids)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
        INSERT INTO local_boards (owner, advisor_ids, updated_at) VALUES (?,?,?)
        ON CONFLICT(owner) DO UPDATE SET advisor_ids=excluded.advisor_ids, updated_at=excluded.updated_at
    `, owner, string(raw), time.Now().UnixMilli())
	return err
}

func (s *Store) HealthPing(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Close() error { return s.db.Close() }
