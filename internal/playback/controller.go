package playback

import (
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/llehouerou/reel/internal/catalog"
)

// Store persists the retained playback state between runs.
type Store interface {
	SavePlayback(state PlaybackState)
	GetPlayback() (*PlaybackState, error)
}

// Controller maps host lifecycle and selection events onto a Manager. It
// keeps at most one live session and retains the state to resume from while
// paused.
type Controller struct {
	mu      sync.Mutex
	m       *Manager
	store   Store
	state   PlaybackState
	session *Session
	log     logrus.FieldLogger
}

// ControllerOption configures a Controller.
type ControllerOption func(*Controller)

// WithStore persists the retained state after every pause and selection.
func WithStore(s Store) ControllerOption {
	return func(c *Controller) { c.store = s }
}

// NewController creates a paused controller that will resume from initial.
func NewController(m *Manager, initial PlaybackState, opts ...ControllerOption) *Controller {
	c := &Controller{
		m:     m,
		state: initial,
		log:   m.log.WithField("component", "controller"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// RestoreState returns the state saved in store when it still names a
// source of cat, fallback otherwise.
func RestoreState(store Store, cat *catalog.Catalog, fallback PlaybackState) PlaybackState {
	if store == nil {
		return fallback
	}
	saved, err := store.GetPlayback()
	if err != nil || saved == nil {
		return fallback
	}
	if !cat.Has(saved.Source) || saved.Validate() != nil {
		return fallback
	}
	state, _ := fitWindow(*saved, cat)
	return state
}

// fitWindow moves state to the start of its source when Window points past
// the locators the source resolves to, which happens when a playlist shrinks
// between runs.
func fitWindow(state PlaybackState, cat *catalog.Catalog) (PlaybackState, bool) {
	locators, err := cat.Resolve(state.Source)
	if err != nil || state.Window < len(locators) {
		return state, false
	}
	return state.WithSource(state.Source), true
}

// State returns the retained state while paused, or the live session's
// last known state.
func (c *Controller) State() PlaybackState {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session != nil {
		return c.session.State()
	}
	return c.state
}

// Session returns the live session, or nil while paused.
func (c *Controller) Session() *Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

// Live reports whether a session is loaded.
func (c *Controller) Live() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session != nil
}

// OnResume starts a session from the retained state. It does nothing when
// a session is already live. A retained source that is no longer in the
// catalog falls back to the first source at its beginning, and a window past
// the end of the source restarts it.
func (c *Controller) OnResume() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session != nil {
		return nil
	}

	state := c.state
	if cat := c.m.Catalog(); !cat.Has(state.Source) {
		fallback := state.WithSource(cat.First())
		c.log.WithFields(logrus.Fields{
			"source":   state.Source,
			"fallback": fallback.Source,
		}).Warn("Retained source no longer available")
		state = fallback
		c.state = fallback
	}
	if fitted, changed := fitWindow(state, c.m.Catalog()); changed {
		c.log.WithFields(logrus.Fields{
			"source": state.Source,
			"window": state.Window,
		}).Warn("Retained window out of range, restarting source")
		state = fitted
		c.state = fitted
	}

	s, err := c.m.Start(state)
	if err != nil {
		return err
	}
	c.session = s
	return nil
}

// OnPause suspends the live session and retains its state.
func (c *Controller) OnPause() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return nil
	}
	state, err := c.m.Suspend(c.session)
	c.session = nil
	if err != nil {
		return err
	}
	c.state = state
	c.persist()
	return nil
}

// OnSourceSelected applies a selection. While live the session is switched;
// while paused only the retained state changes, and playback of the new
// source starts on the next resume.
func (c *Controller) OnSourceSelected(raw string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	id, err := c.m.Catalog().ParseSourceID(raw)
	if err != nil {
		return err
	}

	if c.session == nil {
		if id == c.state.Source {
			return nil
		}
		c.state = c.state.WithSource(id)
		c.persist()
		return nil
	}

	prev := c.session
	next, err := c.m.SwitchSource(prev, id)
	if err != nil {
		if prev.Status() == StatusSuspended {
			// the old session was released before the new one failed
			c.session = nil
			c.state = prev.State()
			c.persist()
		}
		return err
	}
	if next != prev {
		c.session = next
		c.state = next.State()
		c.persist()
	}
	return nil
}

func (c *Controller) persist() {
	if c.store != nil {
		c.store.SavePlayback(c.state)
	}
}
