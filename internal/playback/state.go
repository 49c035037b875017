// internal/playback/state.go
package playback

import (
	"errors"
	"fmt"
	"time"

	"github.com/llehouerou/reel/internal/catalog"
)

// ErrInvalidState is wrapped by PlaybackState.Validate failures.
var ErrInvalidState = errors.New("invalid playback state")

// PlaybackState is what survives between two sessions: the selected source,
// where playback was, and whether it should resume playing on its own.
type PlaybackState struct {
	Source   catalog.SourceID
	Position time.Duration // millisecond resolution
	Window   int
	AutoPlay bool
}

// NewPlaybackState starts src from the beginning with auto-play enabled.
func NewPlaybackState(src catalog.SourceID) PlaybackState {
	return PlaybackState{Source: src, AutoPlay: true}
}

// Validate rejects states that cannot be applied to an engine.
func (s PlaybackState) Validate() error {
	if s.Source == "" {
		return fmt.Errorf("%w: empty source", ErrInvalidState)
	}
	if s.Position < 0 {
		return fmt.Errorf("%w: negative position %s", ErrInvalidState, s.Position)
	}
	if s.Window < 0 {
		return fmt.Errorf("%w: negative window %d", ErrInvalidState, s.Window)
	}
	return nil
}

// WithSource returns the state moved to the start of src, keeping AutoPlay.
func (s PlaybackState) WithSource(src catalog.SourceID) PlaybackState {
	return PlaybackState{Source: src, AutoPlay: s.AutoPlay}
}

// PositionMillis returns the position in whole milliseconds.
func (s PlaybackState) PositionMillis() int64 {
	return s.Position.Milliseconds()
}

// Status is the lifecycle of a Session.
//
//	┌───────────────┐  Start   ┌────────┐  Suspend  ┌───────────┐
//	│ Uninitialized │ ───────▶ │ Loaded │ ────────▶ │ Suspended │
//	└───────────────┘          └────────┘           └───────────┘
//
// Suspended is terminal. SwitchSource is only valid from Loaded and yields a
// new Session in Loaded after suspending the old one.
type Status int

const (
	StatusUninitialized Status = iota
	StatusLoaded
	StatusSuspended
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case StatusUninitialized:
		return "Uninitialized"
	case StatusLoaded:
		return "Loaded"
	case StatusSuspended:
		return "Suspended"
	default:
		return "Unknown"
	}
}
