// internal/state/mock.go
package state

import (
	"sync"
	"time"

	"github.com/llehouerou/reel/internal/playback"
)

// Mock is a test double for Manager. Saves are recorded synchronously.
type Mock struct {
	mu     sync.Mutex
	saves  []playback.PlaybackState
	getErr error
	closed bool
}

// NewMock creates a new mock state manager for testing.
func NewMock() *Mock {
	return &Mock{}
}

func (m *Mock) SavePlayback(state playback.PlaybackState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves = append(m.saves, state)
}

func (m *Mock) GetPlayback() (*playback.PlaybackState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	if len(m.saves) == 0 {
		return nil, nil //nolint:nilnil // nothing saved yet
	}
	s := m.saves[len(m.saves)-1]
	return &s, nil
}

func (m *Mock) LastSaved() (*SavedPlayback, error) {
	s, err := m.GetPlayback()
	if err != nil || s == nil {
		return nil, err
	}
	return &SavedPlayback{State: *s, SavedAt: time.Time{}}, nil
}

func (m *Mock) History(limit int) ([]SavedPlayback, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []SavedPlayback
	for i := len(m.saves) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, SavedPlayback{State: m.saves[i]})
	}
	return out, nil
}

func (m *Mock) Flush() error { return nil }

func (m *Mock) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Test helpers

func (m *Mock) SetPlayback(state *playback.PlaybackState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves = nil
	if state != nil {
		m.saves = append(m.saves, *state)
	}
}

func (m *Mock) SetGetError(err error) { m.mu.Lock(); m.getErr = err; m.mu.Unlock() }

func (m *Mock) Saves() []playback.PlaybackState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]playback.PlaybackState(nil), m.saves...)
}

func (m *Mock) IsClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// Verify Mock implements Interface at compile time.
var _ Interface = (*Mock)(nil)
