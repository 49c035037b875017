// internal/app/app_test.go
package app

import (
	"errors"
	"io"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/reel/internal/catalog"
	"github.com/llehouerou/reel/internal/config"
	"github.com/llehouerou/reel/internal/notify"
	"github.com/llehouerou/reel/internal/playback"
	"github.com/llehouerou/reel/internal/player"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newTestModel(t *testing.T) (Model, *player.MockFactory) {
	t.Helper()
	f := &player.MockFactory{}
	cat := catalog.MustNew([]catalog.Entry{
		{ID: "A", Locator: "asset:///a.mp3", Title: "Alpha"},
		{ID: "B", Locator: "asset:///b.flac", Title: "Beta", Subtitle: "Local audio"},
	})
	mgr := playback.NewManager(cat, f.New, playback.WithLogger(quietLogger()))
	t.Cleanup(func() { _ = mgr.Close() })
	ctrl := playback.NewController(mgr, playback.NewPlaybackState("A"))

	return New(Deps{Controller: ctrl, Manager: mgr, Log: quietLogger()}), f
}

func key(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
}

// step sends msg and, when it yields a command, feeds the command's message
// back once.
func step(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, cmd := m.Update(msg)
	m = next.(Model)
	if cmd == nil {
		return m
	}
	next, _ = m.Update(cmd())
	return next.(Model)
}

func TestNew_CursorOnRetainedSource(t *testing.T) {
	f := &player.MockFactory{}
	mgr := playback.NewManager(catalog.Default(), f.New, playback.WithLogger(quietLogger()))
	defer mgr.Close()
	ctrl := playback.NewController(mgr, playback.NewPlaybackState(catalog.HTTPAudio))

	m := New(Deps{Controller: ctrl, Manager: mgr})
	assert.Equal(t, 2, m.Cursor)
}

func TestCursorMovement(t *testing.T) {
	m, _ := newTestModel(t)

	tests := []struct {
		key  string
		want int
	}{
		{"j", 1},
		{"down", 2}, // playlist row
		{"j", 2},
		{"k", 1},
		{"up", 0},
		{"up", 0},
		{"G", 2},
		{"g", 0},
	}
	for _, tt := range tests {
		next, _ := m.Update(key(tt.key))
		m = next.(Model)
		assert.Equal(t, tt.want, m.Cursor, "after %q", tt.key)
	}
}

func TestFocusDrivesLifecycle(t *testing.T) {
	m, f := newTestModel(t)

	m = step(t, m, tea.FocusMsg{})
	require.True(t, m.Ctrl.Live())
	assert.Equal(t, []string{"load asset:///a.mp3", "autoplay true", "seek 0 0s"}, f.Last().Calls())

	m = step(t, m, tea.BlurMsg{})
	assert.False(t, m.Ctrl.Live())
	assert.Equal(t, 1, f.Last().Releases())
	assert.Empty(t, m.ErrorMsg)
}

func TestLifecycle_BlurThenFocusRunOutOfOrder(t *testing.T) {
	m, _ := newTestModel(t)
	m = step(t, m, tea.FocusMsg{})
	require.True(t, m.Ctrl.Live())

	_, pause := m.Update(tea.BlurMsg{})
	_, resume := m.Update(tea.FocusMsg{})

	m = step(t, m, resume())
	msg := pause()
	m = step(t, m, msg)

	assert.True(t, msg.(LifecycleResultMsg).Skipped)
	assert.True(t, m.Ctrl.Live(), "the focus that came last wins")
}

func TestLifecycle_FocusThenBlurRunOutOfOrder(t *testing.T) {
	m, f := newTestModel(t)

	_, resume := m.Update(tea.FocusMsg{})
	_, pause := m.Update(tea.BlurMsg{})

	m = step(t, m, pause())
	m = step(t, m, resume())

	assert.False(t, m.Ctrl.Live(), "the blur that came last wins")
	assert.Empty(t, f.Mocks())
	assert.Empty(t, m.ErrorMsg)
}

func TestPauseResumeKey(t *testing.T) {
	m, f := newTestModel(t)

	m = step(t, m, key("p"))
	assert.True(t, m.Ctrl.Live())

	m = step(t, m, key("p"))
	assert.False(t, m.Ctrl.Live())
	assert.Len(t, f.Mocks(), 1)
}

func TestSelectSwitchesSource(t *testing.T) {
	m, f := newTestModel(t)
	m = step(t, m, tea.FocusMsg{})

	m = step(t, step(t, m, key("j")), key("enter"))

	assert.Equal(t, catalog.SourceID("B"), m.Ctrl.State().Source)
	assert.Len(t, f.Mocks(), 2)
	assert.True(t, f.Mocks()[0].Released())
}

func TestSelectPlaylistWhilePaused(t *testing.T) {
	m, f := newTestModel(t)

	m = step(t, step(t, m, key("G")), key("enter"))

	assert.Equal(t, catalog.Playlist, m.Ctrl.State().Source)
	assert.False(t, m.Ctrl.Live())
	assert.Empty(t, f.Mocks())
}

func TestLifecycleErrorShown(t *testing.T) {
	f := &player.MockFactory{Configure: func(_ int, m *player.Mock) { m.SetLoadError(errors.New("no device")) }}
	mgr := playback.NewManager(catalog.Default(), f.New, playback.WithLogger(quietLogger()))
	defer mgr.Close()
	ctrl := playback.NewController(mgr, playback.NewPlaybackState(catalog.LocalAudio))
	m := New(Deps{Controller: ctrl, Manager: mgr, Log: quietLogger()})

	m = step(t, m, tea.FocusMsg{})

	assert.False(t, m.Ctrl.Live())
	assert.Contains(t, m.ErrorMsg, "Failed to start playback")
	assert.Contains(t, m.ErrorMsg, "no device")
	assert.Contains(t, m.View(), "no device")
}

func TestSessionEvents(t *testing.T) {
	m, _ := newTestModel(t)
	m = step(t, m, tea.FocusMsg{})
	token := m.Ctrl.Session().Token()

	next, _ := m.Update(SessionEventMsg{Session: token, Source: "A", Event: player.Event{Kind: player.Buffering}})
	m = next.(Model)
	assert.True(t, m.Buffering)
	assert.Contains(t, m.View(), "Buffering")

	next, _ = m.Update(SessionEventMsg{Session: token, Source: "A", Event: player.Event{Kind: player.Metadata, Tags: &player.TagInfo{Title: "Cielo", Artist: "Band"}}})
	m = next.(Model)
	next, _ = m.Update(SessionEventMsg{Session: token, Source: "A", Event: player.Event{Kind: player.Ready}})
	m = next.(Model)

	assert.False(t, m.Buffering)
	assert.Equal(t, "STATE_READY window=0", m.LastEvent)
	assert.Contains(t, m.View(), "Band - Cielo")

	next, _ = m.Update(SessionEventMsg{Session: token, Source: "A", Event: player.Event{Kind: player.Error, Err: errors.New("decode")}})
	m = next.(Model)
	assert.Contains(t, m.ErrorMsg, "decode")
}

func TestSessionEvents_StaleSessionIgnored(t *testing.T) {
	m, _ := newTestModel(t)

	next, _ := m.Update(SessionEventMsg{Source: "A", Event: player.Event{Kind: player.Buffering}})
	m = next.(Model)
	assert.False(t, m.Buffering, "no live session")

	m = step(t, m, tea.FocusMsg{})
	old := m.Ctrl.Session().Token()
	m = step(t, step(t, m, key("j")), key("enter"))
	require.NotEqual(t, old, m.Ctrl.Session().Token())

	next, _ = m.Update(SessionEventMsg{Session: old, Source: "A", Event: player.Event{Kind: player.Buffering}})
	m = next.(Model)
	next, _ = m.Update(SessionEventMsg{Session: old, Source: "A", Event: player.Event{Kind: player.Error, Err: errors.New("stale")}})
	m = next.(Model)

	assert.False(t, m.Buffering)
	assert.Empty(t, m.LastEvent)
	assert.Empty(t, m.ErrorMsg)
}

func TestConfigReloadReplacesCatalog(t *testing.T) {
	m, _ := newTestModel(t)
	m.Cursor = 2

	cfg := config.Default()
	cfg.Catalog.Playlist = new(bool)
	cfg.Catalog.Sources = []config.SourceConfig{{ID: "Z", Locator: "file:///z.wav", Title: "Zulu"}}

	next, _ := m.Update(ConfigReloadedMsg{Config: cfg})
	m = next.(Model)

	assert.Equal(t, []catalog.SourceID{"Z"}, m.Manager.Catalog().IDs())
	assert.Equal(t, 0, m.Cursor)
	assert.Contains(t, m.View(), "Zulu")

	next, _ = m.Update(ConfigReloadedMsg{Err: errors.New("parse error")})
	m = next.(Model)
	assert.Contains(t, m.ErrorMsg, "parse error")
}

func TestQuit(t *testing.T) {
	m, _ := newTestModel(t)
	_, cmd := m.Update(key("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestView_Sources(t *testing.T) {
	m, _ := newTestModel(t)
	m.ShowHelp = true

	v := m.View()
	for _, want := range []string{"Alpha", "Beta", "Local audio", "All sources", "Paused Alpha", "auto-play on", "Pause / resume"} {
		assert.True(t, strings.Contains(v, want), "view missing %q", want)
	}
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "0:00", formatDuration(0))
	assert.Equal(t, "1:05", formatDuration(65_500_000_000))
	assert.Equal(t, "1:01:01", formatDuration(3661_000_000_000))
}

func TestNowPlayingNotification(t *testing.T) {
	m, _ := newTestModel(t)
	rec := &notify.Recorder{}
	m.notifier = rec

	msg := m.nowPlayingCmd("B")()
	require.Equal(t, NotifiedMsg{ID: 1}, msg)
	m = step(t, m, msg)

	_ = m.nowPlayingCmd(catalog.Playlist)()

	sent := rec.Sent()
	require.Len(t, sent, 2)
	assert.Equal(t, "Beta\nLocal audio", sent[0].Body)
	assert.Equal(t, "All sources", sent[1].Body)
	assert.Equal(t, uint32(1), sent[1].ReplacesID)
}

func TestNotificationsDisabled(t *testing.T) {
	m, _ := newTestModel(t)
	assert.Nil(t, m.nowPlayingCmd("A"))
}

func TestNotificationFailureIgnored(t *testing.T) {
	m, _ := newTestModel(t)
	m.notifyID = 4

	m = step(t, m, NotifiedMsg{Err: errors.New("no bus")})

	assert.Equal(t, uint32(4), m.notifyID)
	assert.Empty(t, m.ErrorMsg)
}
