// internal/player/interface.go
package player

import (
	"errors"
	"time"

	"github.com/llehouerou/reel/internal/catalog"
)

var (
	// ErrNotLoaded is returned by reads and seeks before a successful Load.
	ErrNotLoaded = errors.New("player: nothing loaded")
	// ErrReleased is returned by every call after Release.
	ErrReleased = errors.New("player: released")
)

// Interface is the playback engine capability driven by the session manager.
//
// Load prepares an ordered list of windows (one per locator) that play back
// to back. SetAutoPlay and Seek configure playback after Load; buffering and
// decoding then continue asynchronously and are reported on Events.
type Interface interface {
	Load(locators []catalog.Locator) error
	SetAutoPlay(enabled bool)
	Seek(window int, position time.Duration) error
	Position() (time.Duration, error)
	WindowIndex() (int, error)
	AutoPlay() (bool, error)
	Release() error
	Events() <-chan Event
}

// Factory creates a fresh engine. Each session owns exactly one engine.
type Factory func() Interface

// Verify Player implements Interface at compile time.
var _ Interface = (*Player)(nil)
