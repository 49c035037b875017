// Package state persists the retained playback state across runs.
package state

import (
	"database/sql"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/adrg/xdg"
	_ "modernc.org/sqlite" // SQLite driver

	dbutil "github.com/llehouerou/reel/internal/db"
	"github.com/llehouerou/reel/internal/playback"
)

const (
	appName      = "reel"
	dbFileName   = "reel.db"
	saveDebounce = 500 * time.Millisecond
)

// DefaultHistory is how many snapshots History returns when asked for none.
const DefaultHistory = 10

type Manager struct {
	db  *sql.DB
	now func() time.Time

	saveMu    sync.Mutex
	saveTimer *time.Timer
	debounce  time.Duration
	pending   *playback.PlaybackState
	lastErr   error
}

// Open opens the store under the xdg data directory.
func Open() (*Manager, error) {
	dbPath, err := DBPath()
	if err != nil {
		return nil, err
	}
	return OpenPath(dbPath)
}

// OpenPath opens or creates the store at dbPath.
func OpenPath(dbPath string) (*Manager, error) {
	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}

	if err := dbutil.Configure(db, dbutil.DefaultPragmas...); err != nil {
		db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Manager{db: db, now: time.Now, debounce: saveDebounce}, nil
}

// DBPath returns the default store location.
func DBPath() (string, error) {
	return xdg.DataFile(filepath.Join(appName, dbFileName))
}

func (m *Manager) Close() error {
	flushErr := m.Flush()
	if err := m.db.Close(); err != nil {
		return err
	}
	return flushErr
}

// SavePlayback schedules a write. Bursts of saves collapse into one write
// of the latest state.
func (m *Manager) SavePlayback(state playback.PlaybackState) {
	m.saveMu.Lock()
	defer m.saveMu.Unlock()

	m.pending = &state

	if m.saveTimer != nil {
		m.saveTimer.Stop()
	}

	m.saveTimer = time.AfterFunc(m.debounce, func() {
		m.saveMu.Lock()
		pending := m.pending
		m.pending = nil
		m.saveMu.Unlock()

		if pending != nil {
			m.write(*pending)
		}
	})
}

// Flush writes any pending state immediately.
func (m *Manager) Flush() error {
	m.saveMu.Lock()
	if m.saveTimer != nil {
		m.saveTimer.Stop()
	}
	pending := m.pending
	m.pending = nil
	m.saveMu.Unlock()

	if pending != nil {
		m.write(*pending)
	}

	m.saveMu.Lock()
	defer m.saveMu.Unlock()
	err := m.lastErr
	m.lastErr = nil
	return err
}

func (m *Manager) write(state playback.PlaybackState) {
	err := savePlayback(m.db, state, m.now())
	if err != nil {
		m.saveMu.Lock()
		m.lastErr = err
		m.saveMu.Unlock()
	}
}

// GetPlayback returns the latest state, including one not yet written.
func (m *Manager) GetPlayback() (*playback.PlaybackState, error) {
	m.saveMu.Lock()
	if m.pending != nil {
		s := *m.pending
		m.saveMu.Unlock()
		return &s, nil
	}
	m.saveMu.Unlock()

	saved, err := getPlayback(m.db)
	if err != nil || saved == nil {
		return nil, err
	}
	return &saved.State, nil
}

// LastSaved returns the written state with its timestamp.
func (m *Manager) LastSaved() (*SavedPlayback, error) {
	return getPlayback(m.db)
}

// History returns up to limit snapshots, newest first.
func (m *Manager) History(limit int) ([]SavedPlayback, error) {
	if limit <= 0 {
		limit = DefaultHistory
	}
	return listSnapshots(m.db, limit)
}
