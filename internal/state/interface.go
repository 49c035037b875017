// internal/state/interface.go
package state

import "github.com/llehouerou/reel/internal/playback"

// Interface defines the state manager contract for dependency injection and testing.
type Interface interface {
	playback.Store
	LastSaved() (*SavedPlayback, error)
	History(limit int) ([]SavedPlayback, error)
	Flush() error
	Close() error
}

// Verify Manager implements Interface at compile time.
var _ Interface = (*Manager)(nil)
