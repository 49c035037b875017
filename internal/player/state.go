// internal/player/state.go
package player

import "fmt"

// EventKind is the engine state reported on the event stream.
//
// A healthy engine moves through:
//
//	┌──────┐  load   ┌───────────┐ buffered ┌───────┐  last window  ┌───────┐
//	│ Idle │ ──────▶ │ Buffering │ ───────▶ │ Ready │ ────────────▶ │ Ended │
//	└──────┘         └───────────┘          └───────┘     done      └───────┘
//	                       ▲                    │
//	                       └──── next window ───┘
//
// Error may be reported from any state and is followed by Idle.
// Metadata carries tags read from the current window and does not change state.
type EventKind int

const (
	Idle EventKind = iota
	Buffering
	Ready
	Ended
	Error
	Metadata
)

// String returns the kind name in the STATE_* form used in logs.
func (k EventKind) String() string {
	switch k {
	case Idle:
		return "STATE_IDLE"
	case Buffering:
		return "STATE_BUFFERING"
	case Ready:
		return "STATE_READY"
	case Ended:
		return "STATE_ENDED"
	case Error:
		return "ERROR"
	case Metadata:
		return "METADATA"
	default:
		return "?"
	}
}

// IsStateChange reports whether the kind is a playback state transition.
func (k EventKind) IsStateChange() bool {
	return k == Idle || k == Buffering || k == Ready || k == Ended
}

// Event is one notification from the engine.
type Event struct {
	Kind   EventKind
	Window int
	Err    error    // set for Error
	Tags   *TagInfo // set for Metadata
}

// String formats the event for logs.
func (e Event) String() string {
	switch e.Kind {
	case Error:
		return fmt.Sprintf("%s window=%d: %v", e.Kind, e.Window, e.Err)
	case Metadata:
		if e.Tags != nil {
			return fmt.Sprintf("%s window=%d: %s", e.Kind, e.Window, e.Tags)
		}
	}
	return fmt.Sprintf("%s window=%d", e.Kind, e.Window)
}

// TagInfo holds the descriptive tags of a window.
type TagInfo struct {
	Title  string
	Artist string
	Album  string
	Year   int
}

func (t *TagInfo) String() string {
	if t.Artist == "" {
		return t.Title
	}
	return t.Artist + " - " + t.Title
}
