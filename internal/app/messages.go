// Package app contains the bubbletea host UI driving the playback controller.
package app

import (
	"time"

	"github.com/llehouerou/reel/internal/config"
	"github.com/llehouerou/reel/internal/errmsg"
	"github.com/llehouerou/reel/internal/playback"
)

// SessionEventMsg wraps an engine event forwarded by the manager.
type SessionEventMsg playback.SessionEvent

// StatusChangedMsg wraps a session lifecycle change.
type StatusChangedMsg playback.StatusChange

// ErrorEventMsg wraps a manager error event.
type ErrorEventMsg playback.ErrorEvent

// SubscriptionClosedMsg is sent once the manager has been closed.
type SubscriptionClosedMsg struct{}

// ConfigUpdate is a reloaded configuration, or the error reloading it.
type ConfigUpdate struct {
	Config *config.Config
	Err    error
}

// ConfigReloadedMsg is sent when the watched config file changed.
type ConfigReloadedMsg ConfigUpdate

// LifecycleResultMsg reports the outcome of a controller call run off the
// UI goroutine.
type LifecycleResultMsg struct {
	Op      errmsg.Op
	Context string
	Err     error
	Skipped bool // superseded by a newer pause or resume
}

// NotifiedMsg carries the id of the desktop notification just sent.
type NotifiedMsg struct {
	ID  uint32
	Err error
}

// TickMsg is sent periodically to refresh the position.
type TickMsg time.Time
