// internal/app/update.go
package app

import (
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/llehouerou/reel/internal/errmsg"
	"github.com/llehouerou/reel/internal/icons"
	"github.com/llehouerou/reel/internal/keymap"
	"github.com/llehouerou/reel/internal/notify"
	"github.com/llehouerou/reel/internal/playback"
	"github.com/llehouerou/reel/internal/player"
)

// Update handles messages and returns updated model and commands.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg.String())

	case tea.WindowSizeMsg:
		m.Width, m.Height = msg.Width, msg.Height
		return m, nil

	// Terminal focus is the host lifecycle: losing it suspends playback.
	case tea.FocusMsg:
		return m, m.resumeCmd()
	case tea.BlurMsg:
		return m, m.pauseCmd()

	case LifecycleResultMsg:
		return m.handleLifecycleResult(msg), nil

	case SessionEventMsg:
		if !m.isCurrent(msg.Session) {
			return m, m.waitForEvent()
		}
		return m.handleSessionEvent(msg), m.waitForEvent()

	case StatusChangedMsg:
		switch msg.Current {
		case playback.StatusSuspended:
			m.Buffering = false
		case playback.StatusLoaded:
			return m, tea.Batch(m.waitForStatus(), m.nowPlayingCmd(msg.Source))
		}
		return m, m.waitForStatus()

	case ErrorEventMsg:
		m.ErrorMsg = errmsg.FormatWith(errorOp(msg.Operation), string(msg.Source), msg.Err)
		if msg.Operation == "start" {
			failed := notify.PlaybackFailed(m.catalog().Label(msg.Source), msg.Err)
			return m, tea.Batch(m.waitForError(), m.notifyCmd(failed))
		}
		return m, m.waitForError()

	case NotifiedMsg:
		if msg.Err != nil {
			m.Log.WithError(msg.Err).Debug("Desktop notification failed")
			return m, nil
		}
		if msg.ID != 0 {
			m.notifyID = msg.ID
		}
		return m, nil

	case ConfigReloadedMsg:
		return m.handleConfigReload(msg), m.waitForConfig()

	case SubscriptionClosedMsg:
		m.Closed = true
		return m, nil

	case TickMsg:
		if s := m.Ctrl.Session(); s != nil {
			if pos, err := s.Position(); err == nil {
				m.Position = pos
			}
		} else {
			m.Position = m.Ctrl.State().Position
		}
		return m, TickCmd()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.Spinner, cmd = m.Spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleKey(key string) (tea.Model, tea.Cmd) {
	ids := m.sourceIDs()
	switch m.Keys.Resolve(key) {
	case keymap.ActionQuit:
		return m, tea.Quit
	case keymap.ActionHelp:
		m.ShowHelp = !m.ShowHelp
	case keymap.ActionMoveUp:
		if m.Cursor > 0 {
			m.Cursor--
		}
	case keymap.ActionMoveDown:
		if m.Cursor < len(ids)-1 {
			m.Cursor++
		}
	case keymap.ActionJumpStart:
		m.Cursor = 0
	case keymap.ActionJumpEnd:
		m.Cursor = len(ids) - 1
	case keymap.ActionSelect:
		if m.Cursor < len(ids) {
			return m, m.selectCmd(ids[m.Cursor])
		}
	case keymap.ActionPauseResume:
		if m.Ctrl.Live() {
			return m, m.pauseCmd()
		}
		return m, m.resumeCmd()
	}
	return m, nil
}

func (m Model) handleLifecycleResult(msg LifecycleResultMsg) Model {
	if msg.Skipped {
		return m
	}
	if msg.Err != nil {
		m.ErrorMsg = errmsg.FormatWith(msg.Op, msg.Context, msg.Err)
		m.Log.WithError(msg.Err).WithField("op", string(msg.Op)).Warn("Lifecycle call failed")
	} else {
		m.ErrorMsg = ""
	}
	if !m.Ctrl.Live() {
		m.Buffering = false
		m.Position = m.Ctrl.State().Position
	}
	return m
}

// isCurrent reports whether token names the live session. Events of
// sessions that were suspended before the message was handled are stale.
func (m Model) isCurrent(token uuid.UUID) bool {
	s := m.Ctrl.Session()
	return s != nil && s.Token() == token
}

func (m Model) handleSessionEvent(msg SessionEventMsg) Model {
	e := msg.Event
	m.LastEvent = e.String()
	switch e.Kind {
	case player.Buffering:
		m.Buffering = true
	case player.Ready, player.Ended, player.Idle:
		m.Buffering = false
	case player.Metadata:
		m.Tags = e.Tags
	case player.Error:
		m.Buffering = false
		m.ErrorMsg = errmsg.FormatWith(errmsg.OpSessionStart, string(msg.Source), e.Err)
	}
	return m
}

func (m Model) handleConfigReload(msg ConfigReloadedMsg) Model {
	if msg.Err != nil {
		m.ErrorMsg = errmsg.Format(errmsg.OpConfigLoad, msg.Err)
		return m
	}
	cat, err := msg.Config.BuildCatalog()
	if err != nil {
		m.ErrorMsg = errmsg.Format(errmsg.OpCatalogReload, err)
		return m
	}
	m.Manager.ReplaceCatalog(cat)
	icons.Init(msg.Config.Icons)
	m.clampCursor()
	m.Log.WithFields(logrus.Fields{"sources": cat.Len()}).Info("Configuration reloaded")
	return m
}

func errorOp(operation string) errmsg.Op {
	switch operation {
	case "suspend":
		return errmsg.OpSessionSuspend
	case "switch":
		return errmsg.OpSourceSwitch
	default:
		return errmsg.OpSessionStart
	}
}
