// internal/player/mock.go
package player

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/llehouerou/reel/internal/catalog"
)

const mockEventBuffer = 16

// SeekCall records one Seek invocation.
type SeekCall struct {
	Window   int
	Position time.Duration
}

// Mock is a test double for Player.
type Mock struct {
	mu sync.Mutex

	windows  []catalog.Locator
	window   int
	position time.Duration
	autoPlay bool
	loaded   bool
	released bool

	loadErr     error
	seekErr     error
	positionErr error
	windowErr   error
	autoPlayErr error
	releaseErr  error

	calls     []string
	loadCalls [][]catalog.Locator
	seekCalls []SeekCall
	releases  int

	events chan Event
	closed bool
}

// NewMock creates a new mock engine for testing.
func NewMock() *Mock {
	return &Mock{
		events: make(chan Event, mockEventBuffer),
	}
}

func (m *Mock) Load(locators []catalog.Locator) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("load " + joinLocators(locators))
	m.loadCalls = append(m.loadCalls, append([]catalog.Locator(nil), locators...))
	if m.loadErr != nil {
		return m.loadErr
	}
	m.windows = append([]catalog.Locator(nil), locators...)
	m.loaded = true
	return nil
}

func (m *Mock) SetAutoPlay(enabled bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record(fmt.Sprintf("autoplay %t", enabled))
	m.autoPlay = enabled
}

func (m *Mock) Seek(window int, position time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record(fmt.Sprintf("seek %d %s", window, position))
	m.seekCalls = append(m.seekCalls, SeekCall{Window: window, Position: position})
	if m.seekErr != nil {
		return m.seekErr
	}
	m.window = window
	m.position = position
	return nil
}

func (m *Mock) Position() (time.Duration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.positionErr != nil {
		return 0, m.positionErr
	}
	if m.released {
		return 0, ErrReleased
	}
	return m.position, nil
}

func (m *Mock) WindowIndex() (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.windowErr != nil {
		return 0, m.windowErr
	}
	if m.released {
		return 0, ErrReleased
	}
	return m.window, nil
}

func (m *Mock) AutoPlay() (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.autoPlayErr != nil {
		return false, m.autoPlayErr
	}
	if m.released {
		return false, ErrReleased
	}
	return m.autoPlay, nil
}

func (m *Mock) Release() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("release")
	m.releases++
	m.released = true
	return m.releaseErr
}

func (m *Mock) Events() <-chan Event { return m.events }

func (m *Mock) record(call string) { m.calls = append(m.calls, call) }

func joinLocators(locators []catalog.Locator) string {
	parts := make([]string, len(locators))
	for i, l := range locators {
		parts[i] = string(l)
	}
	return strings.Join(parts, ",")
}

// Test helpers

func (m *Mock) SetLoadError(err error) { m.mu.Lock(); m.loadErr = err; m.mu.Unlock() }

func (m *Mock) SetSeekError(err error) { m.mu.Lock(); m.seekErr = err; m.mu.Unlock() }

func (m *Mock) SetPositionError(err error) { m.mu.Lock(); m.positionErr = err; m.mu.Unlock() }

func (m *Mock) SetWindowError(err error) { m.mu.Lock(); m.windowErr = err; m.mu.Unlock() }

func (m *Mock) SetAutoPlayError(err error) { m.mu.Lock(); m.autoPlayErr = err; m.mu.Unlock() }

func (m *Mock) SetReleaseError(err error) { m.mu.Lock(); m.releaseErr = err; m.mu.Unlock() }

// SetPosition simulates playback progress.
func (m *Mock) SetPosition(window int, position time.Duration) {
	m.mu.Lock()
	m.window = window
	m.position = position
	m.mu.Unlock()
}

// SetPlaying simulates the user toggling play/pause on the engine.
func (m *Mock) SetPlaying(playing bool) {
	m.mu.Lock()
	m.autoPlay = playing
	m.mu.Unlock()
}

// Calls returns the ordered call log, e.g. "load a,b", "autoplay true",
// "seek 0 0s", "release".
func (m *Mock) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

func (m *Mock) LoadCalls() [][]catalog.Locator {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([][]catalog.Locator(nil), m.loadCalls...)
}

func (m *Mock) SeekCalls() []SeekCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]SeekCall(nil), m.seekCalls...)
}

func (m *Mock) Releases() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.releases
}

func (m *Mock) Released() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.released
}

func (m *Mock) Windows() []catalog.Locator {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]catalog.Locator(nil), m.windows...)
}

// Emit delivers an event as the engine would, from the caller's goroutine.
// Emitting after Release is allowed to simulate late callbacks.
func (m *Mock) Emit(e Event) {
	m.events <- e
}

// Close closes the event channel, ending the stream.
func (m *Mock) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.closed {
		m.closed = true
		close(m.events)
	}
}

// MockFactory hands out mocks and remembers them in creation order.
type MockFactory struct {
	mu        sync.Mutex
	mocks     []*Mock
	Configure func(n int, m *Mock) // optional, n is the 0-based creation index
}

// New implements Factory.
func (f *MockFactory) New() Interface {
	f.mu.Lock()
	defer f.mu.Unlock()
	m := NewMock()
	if f.Configure != nil {
		f.Configure(len(f.mocks), m)
	}
	f.mocks = append(f.mocks, m)
	return m
}

// Mocks returns every mock created so far.
func (f *MockFactory) Mocks() []*Mock {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*Mock(nil), f.mocks...)
}

// Last returns the most recently created mock, or nil.
func (f *MockFactory) Last() *Mock {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.mocks) == 0 {
		return nil
	}
	return f.mocks[len(f.mocks)-1]
}

// Verify Mock implements Interface at compile time.
var _ Interface = (*Mock)(nil)
