// internal/playback/manager.go
package playback

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/llehouerou/reel/internal/catalog"
	"github.com/llehouerou/reel/internal/player"
)

// ErrClosed is returned by operations on a closed Manager.
var ErrClosed = errors.New("playback manager closed")

// Manager starts, suspends and switches sessions against a catalog. Each
// session gets a fresh engine from the factory; engines are never reused.
type Manager struct {
	mu        sync.Mutex
	catalog   *catalog.Catalog
	newEngine player.Factory
	log       logrus.FieldLogger
	sessions  map[uuid.UUID]*Session // Loaded sessions
	closed    bool

	subs   []*Subscription
	subsMu sync.RWMutex

	done chan struct{}
	wg   sync.WaitGroup
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger. The default is the logrus standard logger.
func WithLogger(log logrus.FieldLogger) Option {
	return func(m *Manager) {
		if log != nil {
			m.log = log
		}
	}
}

// NewManager creates a manager resolving sources through c.
func NewManager(c *catalog.Catalog, newEngine player.Factory, opts ...Option) *Manager {
	m := &Manager{
		catalog:   c,
		newEngine: newEngine,
		log:       logrus.StandardLogger(),
		sessions:  make(map[uuid.UUID]*Session),
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.log = m.log.WithField("component", "playback")
	return m
}

// Catalog returns the catalog used to resolve sources.
func (m *Manager) Catalog() *catalog.Catalog {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.catalog
}

// ReplaceCatalog swaps the catalog for later resolutions. Loaded sessions
// keep the locators they were started with.
func (m *Manager) ReplaceCatalog(c *catalog.Catalog) {
	m.mu.Lock()
	m.catalog = c
	m.mu.Unlock()
	m.log.WithField("sources", c.Len()).Info("Catalog replaced")
}

// Subscribe creates a new event subscription.
func (m *Manager) Subscribe() *Subscription {
	m.subsMu.Lock()
	defer m.subsMu.Unlock()
	sub := newSubscription()
	if m.isClosed() {
		sub.close()
		return sub
	}
	m.subs = append(m.subs, sub)
	return sub
}

// Start resolves state.Source, loads a new engine and positions it at
// state.Window and state.Position with state.AutoPlay applied.
//
// On load or seek failure the engine is released and a *PlaybackLoadError
// is returned. Unknown sources return *catalog.UnknownSourceError before
// any engine is created.
func (m *Manager) Start(state PlaybackState) (*Session, error) {
	return m.start(state, "start")
}

// start reports load failures on the error stream under op.
func (m *Manager) start(state PlaybackState, op string) (*Session, error) {
	if err := state.Validate(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil, ErrClosed
	}
	cat := m.catalog
	m.mu.Unlock()

	locators, err := cat.Resolve(state.Source)
	if err != nil {
		return nil, err
	}

	engine := m.newEngine()
	s := newSession(state, locators, engine)
	log := m.log.WithFields(logrus.Fields{
		"session": s.token,
		"source":  state.Source,
	})

	if err := engine.Load(locators); err != nil {
		return nil, m.failStart(s, log, op, err)
	}
	engine.SetAutoPlay(state.AutoPlay)
	if err := engine.Seek(state.Window, state.Position); err != nil {
		return nil, m.failStart(s, log, op, fmt.Errorf("seek window %d to %s: %w", state.Window, state.Position, err))
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		if err := engine.Release(); err != nil {
			log.WithError(err).Warn("Release after close failed")
		}
		return nil, ErrClosed
	}
	s.live.Store(true)
	s.setStatus(StatusLoaded)
	m.sessions[s.token] = s
	m.wg.Add(1)
	m.mu.Unlock()

	go m.pump(s, engine.Events())

	log.WithFields(logrus.Fields{
		"window":    state.Window,
		"position":  state.Position,
		"auto_play": state.AutoPlay,
		"locators":  len(locators),
	}).Info("Session started")
	m.notifyStatus(s, StatusUninitialized, StatusLoaded)
	return s, nil
}

func (m *Manager) failStart(s *Session, log logrus.FieldLogger, op string, cause error) error {
	if err := s.engine.Release(); err != nil {
		log.WithError(err).Warn("Release after failed load")
	}
	err := &PlaybackLoadError{
		Source:   s.state.Source,
		Locators: s.Locators(),
		Err:      cause,
	}
	log.WithError(cause).Error("Session start failed")
	m.notifyError(ErrorEvent{Operation: op, Source: s.state.Source, Err: err})
	return err
}

// Suspend captures the session's state, stops event delivery and releases
// its engine. Values the engine cannot report are replaced by the last
// known ones and reported as *StateCaptureWarning. The engine is released
// even when capture fails; a release failure is logged, never returned.
func (m *Manager) Suspend(s *Session) (PlaybackState, error) {
	if s == nil {
		return PlaybackState{}, ErrSessionNotLoaded
	}
	// Invalidate before touching the engine so that events raised while
	// releasing are discarded.
	if s.Status() != StatusLoaded || !s.invalidate() {
		return PlaybackState{}, ErrSessionNotLoaded
	}

	log := m.log.WithFields(logrus.Fields{
		"session": s.token,
		"source":  s.Source(),
	})

	state, warnings := s.capture()
	for _, w := range warnings {
		log.WithError(w.Err).WithField("field", w.Field).Warn("State capture failed, using last known value")
		m.notifyError(ErrorEvent{Operation: "suspend", Source: state.Source, Err: w})
	}

	if err := s.engine.Release(); err != nil {
		log.WithError(err).Warn("Engine release failed")
		m.notifyError(ErrorEvent{Operation: "suspend", Source: state.Source, Err: err})
	}

	s.mu.Lock()
	s.state = state
	s.status = StatusSuspended
	s.mu.Unlock()

	m.mu.Lock()
	delete(m.sessions, s.token)
	m.mu.Unlock()

	log.WithFields(logrus.Fields{
		"window":    state.Window,
		"position":  state.Position,
		"auto_play": state.AutoPlay,
	}).Info("Session suspended")
	m.notifyStatus(s, StatusLoaded, StatusSuspended)
	return state, nil
}

// SwitchSource moves playback to id. Selecting the session's own source
// returns s unchanged. Otherwise s is suspended and a new session is started
// at the beginning of id with the same auto-play setting.
//
// An unknown id returns *catalog.UnknownSourceError and leaves s untouched.
// If the new source fails to load, s stays Suspended and the error is
// returned.
func (m *Manager) SwitchSource(s *Session, id catalog.SourceID) (*Session, error) {
	if _, err := m.Catalog().Resolve(id); err != nil {
		return nil, err
	}
	if s == nil || s.Status() != StatusLoaded {
		return nil, ErrSessionNotLoaded
	}
	if s.Source() == id {
		return s, nil
	}

	prev, err := m.Suspend(s)
	if err != nil {
		return nil, err
	}
	m.log.WithFields(logrus.Fields{
		"from": prev.Source,
		"to":   id,
	}).Info("Switching source")

	next, err := m.start(prev.WithSource(id), "switch")
	if err != nil {
		return nil, err
	}
	return next, nil
}

// Close suspends every loaded session, stops event delivery and closes all
// subscriptions. Safe to call more than once.
func (m *Manager) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	live := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		live = append(live, s)
	}
	m.mu.Unlock()

	var errs []error
	for _, s := range live {
		if _, err := m.Suspend(s); err != nil {
			errs = append(errs, err)
		}
	}

	close(m.done)
	m.wg.Wait()

	m.subsMu.Lock()
	for _, sub := range m.subs {
		sub.close()
	}
	m.subs = nil
	m.subsMu.Unlock()

	return errors.Join(errs...)
}

func (m *Manager) isClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// pump forwards engine events until the engine closes its stream or the
// manager is closed.
func (m *Manager) pump(s *Session, events <-chan player.Event) {
	defer m.wg.Done()
	for {
		select {
		case e, ok := <-events:
			if !ok {
				return
			}
			m.handleEvent(s, e)
		case <-m.done:
			return
		}
	}
}

func (m *Manager) handleEvent(s *Session, e player.Event) {
	log := m.log.WithFields(logrus.Fields{
		"session": s.token,
		"event":   e.Kind.String(),
		"window":  e.Window,
	})

	s.deliver.Lock()
	defer s.deliver.Unlock()
	if !s.live.Load() {
		s.dropped.Add(1)
		log.Debug("Late event discarded")
		return
	}

	s.observe(e)
	switch {
	case e.Kind == player.Error:
		log.WithError(e.Err).Warn("Player error")
	case e.Kind.IsStateChange():
		log.WithField("auto_play", s.State().AutoPlay).Info("Player state changed")
	default:
		log.Debug("Player event")
	}

	m.subsMu.RLock()
	defer m.subsMu.RUnlock()
	for _, sub := range m.subs {
		sub.sendEvent(SessionEvent{Session: s.token, Source: s.Source(), Event: e})
	}
}

func (m *Manager) notifyStatus(s *Session, prev, cur Status) {
	m.subsMu.RLock()
	defer m.subsMu.RUnlock()
	for _, sub := range m.subs {
		sub.sendStatus(StatusChange{Session: s.token, Source: s.Source(), Previous: prev, Current: cur})
	}
}

func (m *Manager) notifyError(e ErrorEvent) {
	m.subsMu.RLock()
	defer m.subsMu.RUnlock()
	for _, sub := range m.subs {
		sub.sendError(e)
	}
}
