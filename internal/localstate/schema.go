package localstate

import (
	"database/sql"
)

// schemaVersion is stored in PRAGMA user_version.
const schemaVersion = 1

// EnsureSQLiteSchema creates the fallback board table. Owner "" is the
// anonymous board; any other owner is a user whose durable save failed.
func EnsureSQLiteSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS local_boards (
            owner       TEXT PRIMARY KEY,
            advisor_ids TEXT NOT NULL CHECK (json_valid(advisor_ids)),
            updated_at  INTEGER NOT NULL
        );`,
		`PRAGMA user_version = 1;`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// SchemaVersion reports PRAGMA user_version of db.
func SchemaVersion(db *sql.DB) (int, error) {
	var v int
	err := db.QueryRow(`PRAGMA user_version`).Scan(&v)
	return v, err
}
