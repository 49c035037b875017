package app

import (
	"sync"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/llehouerou/reel/internal/catalog"
	"github.com/llehouerou/reel/internal/errmsg"
	"github.com/llehouerou/reel/internal/notify"
	"github.com/llehouerou/reel/internal/playback"
)

const tickInterval = 500 * time.Millisecond

// waitForChannel creates a command that waits for a value from a channel and converts it to a message.
// It gives up with SubscriptionClosedMsg once done is closed.
func waitForChannel[T any](ch <-chan T, done <-chan struct{}, onResult func(T) tea.Msg) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		select {
		case v := <-ch:
			return onResult(v)
		case <-done:
			return SubscriptionClosedMsg{}
		}
	}
}

func (m Model) waitForEvent() tea.Cmd {
	return waitForChannel(m.sub.Events, m.sub.Done, func(e playback.SessionEvent) tea.Msg {
		return SessionEventMsg(e)
	})
}

func (m Model) waitForStatus() tea.Cmd {
	return waitForChannel(m.sub.StatusChanged, m.sub.Done, func(e playback.StatusChange) tea.Msg {
		return StatusChangedMsg(e)
	})
}

func (m Model) waitForError() tea.Cmd {
	return waitForChannel(m.sub.Errors, m.sub.Done, func(e playback.ErrorEvent) tea.Msg {
		return ErrorEventMsg(e)
	})
}

func (m Model) waitForConfig() tea.Cmd {
	return waitForChannel(m.configCh, nil, func(u ConfigUpdate) tea.Msg {
		return ConfigReloadedMsg(u)
	})
}

// TickCmd returns a command that sends TickMsg after tickInterval.
func TickCmd() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// lifecycleQueue runs pause and resume requests one at a time. A request
// that a newer one has superseded by the time it runs is skipped, so the
// last focus change wins whatever order the commands run in.
type lifecycleQueue struct {
	mu     sync.Mutex
	latest atomic.Uint64
}

// enqueue must be called on the UI goroutine so that ticket order is event
// order.
func (q *lifecycleQueue) enqueue(op errmsg.Op, fn func() error) tea.Cmd {
	ticket := q.latest.Add(1)
	return func() tea.Msg {
		q.mu.Lock()
		defer q.mu.Unlock()
		if ticket != q.latest.Load() {
			return LifecycleResultMsg{Op: op, Skipped: true}
		}
		return LifecycleResultMsg{Op: op, Err: fn()}
	}
}

func (m Model) resumeCmd() tea.Cmd {
	return m.lifecycle.enqueue(errmsg.OpSessionStart, m.Ctrl.OnResume)
}

func (m Model) pauseCmd() tea.Cmd {
	return m.lifecycle.enqueue(errmsg.OpSessionSuspend, m.Ctrl.OnPause)
}

func (m Model) selectCmd(id catalog.SourceID) tea.Cmd {
	ctrl := m.Ctrl
	return func() tea.Msg {
		return LifecycleResultMsg{
			Op:      errmsg.OpSourceSelect,
			Context: string(id),
			Err:     ctrl.OnSourceSelected(string(id)),
		}
	}
}

// notifyCmd sends n off the UI goroutine. It is nil without a notifier.
func (m Model) notifyCmd(n notify.Notification) tea.Cmd {
	if m.notifier == nil {
		return nil
	}
	notifier := m.notifier
	return func() tea.Msg {
		id, err := notifier.Notify(n)
		return NotifiedMsg{ID: id, Err: err}
	}
}

func (m Model) nowPlayingCmd(id catalog.SourceID) tea.Cmd {
	cat := m.catalog()
	var detail string
	if e, ok := cat.Entry(id); ok {
		detail = e.Subtitle
	}
	return m.notifyCmd(notify.NowPlaying(cat.Label(id), detail, m.notifyID))
}
