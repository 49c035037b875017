package state

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/llehouerou/reel/internal/catalog"
	dbutil "github.com/llehouerou/reel/internal/db"
	"github.com/llehouerou/reel/internal/playback"
)

// maxSnapshots bounds the playback_snapshots history.
const maxSnapshots = 50

// SavedPlayback is a persisted state with the time it was written.
type SavedPlayback struct {
	State   playback.PlaybackState
	SavedAt time.Time
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSaved(row scanner) (SavedPlayback, error) {
	var (
		s          SavedPlayback
		source     string
		positionMS int64
		autoPlay   bool
		savedAt    int64
	)
	if err := row.Scan(&source, &positionMS, &s.State.Window, &autoPlay, &savedAt); err != nil {
		return SavedPlayback{}, err
	}
	s.State.Source = catalog.SourceID(source)
	s.State.Position = time.Duration(positionMS) * time.Millisecond
	s.State.AutoPlay = autoPlay
	s.SavedAt = time.UnixMilli(savedAt)
	return s, nil
}

func getPlayback(db *sql.DB) (*SavedPlayback, error) {
	row := db.QueryRow(`
		SELECT source, position_ms, window_index, auto_play, saved_at
		FROM playback_state WHERE id = 1
	`)
	s, err := scanSaved(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil //nolint:nilnil // no saved state is valid on first run
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// savePlayback replaces the current row and appends to the bounded history.
func savePlayback(db *sql.DB, state playback.PlaybackState, at time.Time) error {
	args := []any{
		string(state.Source),
		state.PositionMillis(),
		state.Window,
		dbutil.BoolToInt(state.AutoPlay),
		at.UnixMilli(),
	}
	return dbutil.WithTx(context.Background(), db, func(tx *sql.Tx) error {
		_, err := tx.Exec(`
			INSERT INTO playback_state (id, source, position_ms, window_index, auto_play, saved_at)
			VALUES (1, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				source = excluded.source,
				position_ms = excluded.position_ms,
				window_index = excluded.window_index,
				auto_play = excluded.auto_play,
				saved_at = excluded.saved_at
		`, args...)
		if err != nil {
			return err
		}

		_, err = tx.Exec(`
			INSERT INTO playback_snapshots (source, position_ms, window_index, auto_play, saved_at)
			VALUES (?, ?, ?, ?, ?)
		`, args...)
		if err != nil {
			return err
		}

		_, err = tx.Exec(`
			DELETE FROM playback_snapshots
			WHERE id NOT IN (SELECT id FROM playback_snapshots ORDER BY id DESC LIMIT ?)
		`, maxSnapshots)
		return err
	})
}

// listSnapshots returns up to limit snapshots, newest first.
func listSnapshots(db *sql.DB, limit int) ([]SavedPlayback, error) {
	rows, err := db.Query(`
		SELECT source, position_ms, window_index, auto_play, saved_at
		FROM playback_snapshots
		ORDER BY id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SavedPlayback
	for rows.Next() {
		s, err := scanSaved(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
