package playback

import (
	"errors"
	"fmt"
	"strings"

	"github.com/llehouerou/reel/internal/catalog"
)

// ErrSessionNotLoaded is returned when an operation needs a Loaded session.
var ErrSessionNotLoaded = errors.New("session is not loaded")

// PlaybackLoadError reports an engine that failed to open or position the
// resolved locators. It is never retried automatically.
type PlaybackLoadError struct {
	Source   catalog.SourceID
	Locators []catalog.Locator
	Err      error
}

func (e *PlaybackLoadError) Error() string {
	parts := make([]string, len(e.Locators))
	for i, l := range e.Locators {
		parts[i] = string(l)
	}
	return fmt.Sprintf("load %s [%s]: %v", e.Source, strings.Join(parts, ", "), e.Err)
}

func (e *PlaybackLoadError) Unwrap() error { return e.Err }

// StateCaptureWarning describes a value that could not be read back from
// the engine during Suspend. It is logged and the last-known value is used.
type StateCaptureWarning struct {
	Field string // "position", "window" or "auto_play"
	Err   error
}

func (w *StateCaptureWarning) Error() string {
	return fmt.Sprintf("capture %s: %v", w.Field, w.Err)
}

func (w *StateCaptureWarning) Unwrap() error { return w.Err }
