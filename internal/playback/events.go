package playback

import (
	"github.com/google/uuid"

	"github.com/llehouerou/reel/internal/catalog"
	"github.com/llehouerou/reel/internal/player"
)

// SessionEvent is an engine event forwarded for the session it belongs to.
// Events whose session is no longer live are never delivered.
type SessionEvent struct {
	Session uuid.UUID
	Source  catalog.SourceID
	Event   player.Event
}

// StatusChange is emitted when a session moves through its lifecycle.
type StatusChange struct {
	Session  uuid.UUID
	Source   catalog.SourceID
	Previous Status
	Current  Status
}

// ErrorEvent is emitted when an operation fails or degrades.
//
// Emitted by:
//   - Start: load or seek failures, carrying a *PlaybackLoadError
//   - Suspend: unreadable engine values (*StateCaptureWarning) and release
//     failures
//
// Unknown sources and invalid states are returned to the caller only.
type ErrorEvent struct {
	Operation string // "start", "suspend" or "switch" (a failed start of the new source)
	Source    catalog.SourceID
	Err       error
}
