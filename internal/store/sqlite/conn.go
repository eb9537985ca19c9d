package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// Open opens (or creates) a SQLite database at the given path and enables WAL journal mode.
func Open(path string) (*sql.DB, error) {
	// ensure parent directory exists to avoid SQLITE_CANTOPEN errors
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)&_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// EnsureSchema creates the durable-store tables if they do not exist.
func EnsureSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS user_boards (
            user_id TEXT PRIMARY KEY,
            advisor_ids TEXT NOT NULL DEFAULT '[]',
            updated_at INTEGER NOT NULL
        );`,
		`CREATE TABLE IF NOT EXISTS custom_advisors (
            id TEXT PRIMARY KEY,
            user_id TEXT NOT NULL,
            name TEXT NOT NULL,
            role TEXT NOT NULL DEFAULT '',
            avatar TEXT NOT NULL DEFAULT '',
            voice TEXT NOT NULL DEFAULT '',
            category TEXT NOT NULL DEFAULT '',
            created_at INTEGER NOT NULL
        );`,
		`CREATE INDEX IF NOT EXISTS custom_advisors_user_idx ON custom_advisors(user_id, created_at);`,
		`CREATE TABLE IF NOT EXISTS synthesis_history (
            id TEXT PRIMARY KEY,
            user_id TEXT NOT NULL,
            input_text TEXT NOT NULL,
            advisor_ids TEXT NOT NULL DEFAULT '[]',
            results TEXT NOT NULL,
            created_at INTEGER NOT NULL
        );`,
		`CREATE INDEX IF NOT EXISTS synthesis_history_user_idx ON synthesis_history(user_id, created_at);`,
		`CREATE TABLE IF NOT EXISTS board_templates (
            id TEXT PRIMARY KEY,
            name TEXT NOT NULL,
            description TEXT NOT NULL DEFAULT '',
            advisor_ids TEXT NOT NULL DEFAULT '[]',
            category TEXT NOT NULL DEFAULT '',
            usage_count INTEGER NOT NULL DEFAULT 0,
            is_public BOOLEAN NOT NULL DEFAULT 1
        );`,
	}

	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
