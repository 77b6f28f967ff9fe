package state

import (
	"database/sql"

	"github.com/cockroachdb/errors"
)

const currentSchemaVersion = 1

func initSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY
		);

		CREATE TABLE IF NOT EXISTS queue_state (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			current_index INTEGER NOT NULL DEFAULT 0,
			position REAL NOT NULL DEFAULT 0,
			volume REAL NOT NULL DEFAULT 1,
			saved_at INTEGER NOT NULL DEFAULT 0
		);

		CREATE TABLE IF NOT EXISTS queue_items (
			position INTEGER PRIMARY KEY,
			item_id TEXT NOT NULL,
			locator TEXT NOT NULL,
			kind INTEGER NOT NULL,
			title TEXT,
			artist TEXT,
			album TEXT
		);
	`)
	if err != nil {
		return errors.Wrap(err, "create schema")
	}

	_, err = db.Exec(`
		INSERT OR IGNORE INTO schema_version (version) VALUES (?)
	`, currentSchemaVersion)
	return errors.Wrap(err, "set schema version")
}
