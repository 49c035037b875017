// Package notify provides desktop notifications via D-Bus.
package notify

import (
	"fmt"
	"sync"
)

// Urgency represents notification priority levels per freedesktop spec.
type Urgency byte

const (
	UrgencyLow      Urgency = 0
	UrgencyNormal   Urgency = 1
	UrgencyCritical Urgency = 2
)

// nowPlayingTimeout is how long a "now playing" popup stays up, in ms.
const nowPlayingTimeout = 4000

// Notification contains data for a desktop notification.
type Notification struct {
	Title      string  // Summary text (required)
	Body       string  // Body text (optional, supports basic markup)
	Icon       string  // Path to image file or icon name (optional)
	Timeout    int32   // ms, -1 = server default, 0 = never expire
	ReplacesID uint32  // 0 = new notification, >0 = replace existing
	Urgency    Urgency // Low, Normal, Critical
}

// Notifier sends desktop notifications.
type Notifier interface {
	// Notify sends a notification and returns its ID.
	// Returns 0 and nil error if notifications are disabled or unavailable.
	Notify(n Notification) (uint32, error)
	// Close closes a notification by ID.
	Close(id uint32) error
}

// NowPlaying builds the notification shown when a session starts playing
// label. replaces is the previous now-playing notification, if any.
func NowPlaying(label, detail string, replaces uint32) Notification {
	return Notification{
		Title:      "Now playing",
		Body:       label,
		Icon:       "media-playback-start",
		Timeout:    nowPlayingTimeout,
		ReplacesID: replaces,
		Urgency:    UrgencyLow,
	}.withDetail(detail)
}

// PlaybackFailed builds the notification for a source that could not load.
func PlaybackFailed(label string, err error) Notification {
	return Notification{
		Title:   "Playback failed",
		Body:    fmt.Sprintf("%s: %v", label, err),
		Icon:    "dialog-error",
		Timeout: -1,
		Urgency: UrgencyNormal,
	}
}

func (n Notification) withDetail(detail string) Notification {
	if detail != "" {
		n.Body += "\n" + detail
	}
	return n
}

// Recorder is a Notifier that keeps what it was asked to send.
type Recorder struct {
	mu     sync.Mutex
	sent   []Notification
	closed []uint32
	nextID uint32
}

func (r *Recorder) Notify(n Notification) (uint32, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, n)
	if n.ReplacesID != 0 {
		return n.ReplacesID, nil
	}
	r.nextID++
	return r.nextID, nil
}

func (r *Recorder) Close(id uint32) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = append(r.closed, id)
	return nil
}

// Sent returns a copy of every notification sent so far.
func (r *Recorder) Sent() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notification(nil), r.sent...)
}

// Closed returns the IDs passed to Close.
func (r *Recorder) Closed() []uint32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]uint32(nil), r.closed...)
}
