package state

import (
	"database/sql"
)

const currentSchemaVersion = 1

func initSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY
		);

		CREATE TABLE IF NOT EXISTS playback_state (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			source TEXT NOT NULL,
			position_ms INTEGER NOT NULL DEFAULT 0,
			window_index INTEGER NOT NULL DEFAULT 0,
			auto_play INTEGER NOT NULL DEFAULT 1,
			saved_at INTEGER NOT NULL
		);

		CREATE TABLE IF NOT EXISTS playback_snapshots (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			source TEXT NOT NULL,
			position_ms INTEGER NOT NULL,
			window_index INTEGER NOT NULL,
			auto_play INTEGER NOT NULL,
			saved_at INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_playback_snapshots_saved_at ON playback_snapshots(saved_at DESC);
	`)
	if err != nil {
		return err
	}

	// Set initial version if not exists
	_, err = db.Exec(`
		INSERT OR IGNORE INTO schema_version (version) VALUES (?)
	`, currentSchemaVersion)
	return err
}
