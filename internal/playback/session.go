package playback

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/llehouerou/reel/internal/catalog"
	"github.com/llehouerou/reel/internal/player"
)

// Session is one engine bound to one source. It is created Loaded by
// Manager.Start and ends Suspended.
type Session struct {
	token    uuid.UUID
	locators []catalog.Locator
	engine   player.Interface

	mu     sync.Mutex
	status Status
	state  PlaybackState // last known values

	// deliver is held from the live check to the end of the fan-out of
	// one engine event, and while live is cleared.
	deliver sync.Mutex
	live    atomic.Bool
	dropped atomic.Int64
}

func newSession(state PlaybackState, locators []catalog.Locator, engine player.Interface) *Session {
	return &Session{
		token:    uuid.New(),
		locators: locators,
		engine:   engine,
		status:   StatusUninitialized,
		state:    state,
	}
}

// Token identifies the session in forwarded events.
func (s *Session) Token() uuid.UUID { return s.token }

// Source returns the source the session was started with.
func (s *Session) Source() catalog.SourceID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Source
}

// Status returns where the session is in its lifecycle.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// State returns the last known playback state. For a Suspended session it
// is the state captured on suspend.
func (s *Session) State() PlaybackState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Locators returns a copy of the resolved locators.
func (s *Session) Locators() []catalog.Locator {
	return append([]catalog.Locator(nil), s.locators...)
}

// Live reports whether engine events are still forwarded for this session.
func (s *Session) Live() bool { return s.live.Load() }

// Dropped returns how many engine events arrived after the session stopped
// being live.
func (s *Session) Dropped() int64 { return s.dropped.Load() }

// invalidate stops event delivery and reports whether this call did so.
// It waits for an event already past the live check to finish fanning out.
func (s *Session) invalidate() bool {
	s.deliver.Lock()
	defer s.deliver.Unlock()
	return s.live.CompareAndSwap(true, false)
}

func (s *Session) setStatus(st Status) Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.status
	s.status = st
	return prev
}

// observe folds engine events into the last known state.
func (s *Session) observe(e player.Event) {
	if e.Kind != player.Ready {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if e.Window != s.state.Window {
		s.state.Window = e.Window
		s.state.Position = 0
	}
}

// capture reads the engine back into a PlaybackState. Values the engine
// cannot report fall back to the last known ones.
func (s *Session) capture() (PlaybackState, []*StateCaptureWarning) {
	s.mu.Lock()
	state := s.state
	s.mu.Unlock()

	var warnings []*StateCaptureWarning
	if pos, err := s.engine.Position(); err != nil {
		warnings = append(warnings, &StateCaptureWarning{Field: "position", Err: err})
	} else {
		state.Position = max(pos, 0).Truncate(time.Millisecond)
	}
	if win, err := s.engine.WindowIndex(); err != nil {
		warnings = append(warnings, &StateCaptureWarning{Field: "window", Err: err})
	} else if win >= 0 {
		state.Window = win
	}
	if auto, err := s.engine.AutoPlay(); err != nil {
		warnings = append(warnings, &StateCaptureWarning{Field: "auto_play", Err: err})
	} else {
		state.AutoPlay = auto
	}
	return state, warnings
}

// Position reads the engine's current position. Only Loaded sessions have
// an engine to ask.
func (s *Session) Position() (time.Duration, error) {
	if s.Status() != StatusLoaded {
		return 0, ErrSessionNotLoaded
	}
	return s.engine.Position()
}
