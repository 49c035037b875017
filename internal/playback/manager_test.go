// internal/playback/manager_test.go
package playback

import (
	"errors"
	"io"
	"sync"
	"testing"
	"testing/synctest"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/reel/internal/catalog"
	"github.com/llehouerou/reel/internal/player"
)

const (
	srcA catalog.SourceID = "A"
	srcB catalog.SourceID = "B"
)

func testCatalog() *catalog.Catalog {
	return catalog.MustNew([]catalog.Entry{
		{ID: srcA, Locator: "asset:///a.mp3"},
		{ID: srcB, Locator: "asset:///b.mp4"},
	})
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newTestManager(t *testing.T) (*Manager, *player.MockFactory) {
	t.Helper()
	f := &player.MockFactory{}
	m := NewManager(testCatalog(), f.New, WithLogger(quietLogger()))
	t.Cleanup(func() { _ = m.Close() })
	return m, f
}

func TestStart_LoadsSeeksAndAppliesAutoPlay(t *testing.T) {
	m, f := newTestManager(t)

	s, err := m.Start(PlaybackState{Source: srcA, Position: 1500 * time.Millisecond, Window: 0, AutoPlay: false})
	require.NoError(t, err)

	assert.Equal(t, StatusLoaded, s.Status())
	assert.True(t, s.Live())
	assert.Equal(t, []catalog.Locator{"asset:///a.mp3"}, s.Locators())

	mock := f.Last()
	require.NotNil(t, mock)
	assert.Equal(t, []string{"load asset:///a.mp3", "autoplay false", "seek 0 1.5s"}, mock.Calls())
}

func TestStart_Playlist(t *testing.T) {
	m, f := newTestManager(t)

	_, err := m.Start(PlaybackState{Source: catalog.Playlist, Window: 1, Position: time.Second, AutoPlay: true})
	require.NoError(t, err)

	assert.Equal(t, [][]catalog.Locator{{"asset:///a.mp3", "asset:///b.mp4"}}, f.Last().LoadCalls())
	assert.Equal(t, []player.SeekCall{{Window: 1, Position: time.Second}}, f.Last().SeekCalls())
}

func TestStart_UnknownSourceCreatesNoEngine(t *testing.T) {
	m, f := newTestManager(t)

	_, err := m.Start(NewPlaybackState("C"))

	var unknown *catalog.UnknownSourceError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, catalog.SourceID("C"), unknown.ID)
	assert.Empty(t, f.Mocks())
}

func TestStart_InvalidState(t *testing.T) {
	m, f := newTestManager(t)

	tests := []struct {
		name  string
		state PlaybackState
	}{
		{"empty source", PlaybackState{}},
		{"negative position", PlaybackState{Source: srcA, Position: -time.Second}},
		{"negative window", PlaybackState{Source: srcA, Window: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.Start(tt.state)
			assert.ErrorIs(t, err, ErrInvalidState)
		})
	}
	assert.Empty(t, f.Mocks())
}

func TestStart_LoadFailureReleasesEngine(t *testing.T) {
	boom := errors.New("decoder exploded")
	f := &player.MockFactory{Configure: func(_ int, m *player.Mock) { m.SetLoadError(boom) }}
	m := NewManager(testCatalog(), f.New, WithLogger(quietLogger()))
	defer m.Close()
	sub := m.Subscribe()

	s, err := m.Start(NewPlaybackState(srcA))
	assert.Nil(t, s)

	var loadErr *PlaybackLoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, srcA, loadErr.Source)
	assert.Equal(t, []catalog.Locator{"asset:///a.mp3"}, loadErr.Locators)
	assert.ErrorIs(t, err, boom)

	assert.Equal(t, 1, f.Last().Releases())
	assert.Equal(t, []string{"load asset:///a.mp3", "release"}, f.Last().Calls())

	select {
	case e := <-sub.Errors:
		assert.Equal(t, "start", e.Operation)
		assert.ErrorAs(t, e.Err, &loadErr)
	default:
		t.Fatal("expected an error event")
	}
}

func TestStart_SeekFailureIsLoadError(t *testing.T) {
	f := &player.MockFactory{Configure: func(_ int, m *player.Mock) { m.SetSeekError(errors.New("out of range")) }}
	m := NewManager(testCatalog(), f.New, WithLogger(quietLogger()))
	defer m.Close()

	_, err := m.Start(PlaybackState{Source: srcA, Window: 3, AutoPlay: true})

	var loadErr *PlaybackLoadError
	require.ErrorAs(t, err, &loadErr)
	assert.True(t, f.Last().Released())
}

func TestStart_AfterClose(t *testing.T) {
	m, f := newTestManager(t)
	require.NoError(t, m.Close())

	_, err := m.Start(NewPlaybackState(srcA))
	assert.ErrorIs(t, err, ErrClosed)
	assert.Empty(t, f.Mocks())
}

func TestSuspend_CapturesAndReleases(t *testing.T) {
	m, f := newTestManager(t)

	s, err := m.Start(NewPlaybackState(srcA))
	require.NoError(t, err)
	mock := f.Last()
	mock.SetPosition(0, 12345*time.Microsecond)
	mock.SetPlaying(false)

	state, err := m.Suspend(s)
	require.NoError(t, err)

	assert.Equal(t, PlaybackState{Source: srcA, Position: 12 * time.Millisecond, Window: 0, AutoPlay: false}, state)
	assert.Equal(t, StatusSuspended, s.Status())
	assert.False(t, s.Live())
	assert.Equal(t, state, s.State())
	assert.Equal(t, 1, mock.Releases())
}

func TestSuspend_OnlyFromLoaded(t *testing.T) {
	m, f := newTestManager(t)

	s, err := m.Start(NewPlaybackState(srcA))
	require.NoError(t, err)
	_, err = m.Suspend(s)
	require.NoError(t, err)

	_, err = m.Suspend(s)
	assert.ErrorIs(t, err, ErrSessionNotLoaded)
	assert.Equal(t, 1, f.Last().Releases(), "engine must be released exactly once")

	_, err = m.Suspend(nil)
	assert.ErrorIs(t, err, ErrSessionNotLoaded)
}

func TestSuspend_CaptureFailureUsesLastKnown(t *testing.T) {
	m, f := newTestManager(t)
	sub := m.Subscribe()

	s, err := m.Start(PlaybackState{Source: srcA, Position: 7 * time.Second, AutoPlay: true})
	require.NoError(t, err)
	mock := f.Last()
	mock.SetPositionError(errors.New("position unavailable"))
	mock.SetAutoPlayError(errors.New("no answer"))
	mock.SetReleaseError(errors.New("release failed"))

	state, err := m.Suspend(s)
	require.NoError(t, err, "capture and release failures never fail suspend")

	assert.Equal(t, PlaybackState{Source: srcA, Position: 7 * time.Second, AutoPlay: true}, state)
	assert.Equal(t, 1, mock.Releases())
	assert.Equal(t, StatusSuspended, s.Status())

	var fields []string
	for range 3 {
		e := <-sub.Errors
		assert.Equal(t, "suspend", e.Operation)
		var w *StateCaptureWarning
		if errors.As(e.Err, &w) {
			fields = append(fields, w.Field)
		}
	}
	assert.Equal(t, []string{"position", "auto_play"}, fields)
}

func TestStartSuspend_RoundTrip(t *testing.T) {
	m, f := newTestManager(t)

	tests := []PlaybackState{
		{Source: srcA, Position: 0, Window: 0, AutoPlay: true},
		{Source: srcB, Position: 90 * time.Second, Window: 0, AutoPlay: false},
		{Source: catalog.Playlist, Position: 250 * time.Millisecond, Window: 1, AutoPlay: true},
	}
	for _, want := range tests {
		s, err := m.Start(want)
		require.NoError(t, err)

		got, err := m.Suspend(s)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	assert.Len(t, f.Mocks(), len(tests))
}

func TestSwitchSource_SameSourceIsNoOp(t *testing.T) {
	m, f := newTestManager(t)

	s, err := m.Start(NewPlaybackState(srcA))
	require.NoError(t, err)
	before := f.Last().Calls()

	got, err := m.SwitchSource(s, srcA)
	require.NoError(t, err)

	assert.Same(t, s, got)
	assert.Equal(t, before, f.Last().Calls())
	assert.Len(t, f.Mocks(), 1)
	assert.Equal(t, StatusLoaded, s.Status())
}

func TestSwitchSource_ResetsPositionKeepsAutoPlay(t *testing.T) {
	for _, auto := range []bool{true, false} {
		m, f := newTestManager(t)

		s, err := m.Start(PlaybackState{Source: srcA, AutoPlay: auto})
		require.NoError(t, err)
		f.Last().SetPosition(0, 42*time.Second)

		next, err := m.SwitchSource(s, srcB)
		require.NoError(t, err)

		assert.Equal(t, PlaybackState{Source: srcB, AutoPlay: auto}, next.State())
		assert.Equal(t, []player.SeekCall{{Window: 0, Position: 0}}, f.Last().SeekCalls())
		assert.Equal(t, 42*time.Second, s.State().Position, "old session keeps its captured state")
	}
}

func TestSwitchSource_AtoB(t *testing.T) {
	m, f := newTestManager(t)

	s, err := m.Start(NewPlaybackState(srcA))
	require.NoError(t, err)

	first := f.Last()
	assert.Equal(t, []string{"load asset:///a.mp3", "autoplay true", "seek 0 0s"}, first.Calls())

	next, err := m.SwitchSource(s, srcB)
	require.NoError(t, err)

	assert.Equal(t, 1, first.Releases())
	assert.Equal(t, "release", first.Calls()[len(first.Calls())-1])
	assert.Equal(t, StatusSuspended, s.Status())

	second := f.Last()
	assert.NotSame(t, first, second)
	assert.Equal(t, []string{"load asset:///b.mp4", "autoplay true", "seek 0 0s"}, second.Calls())
	assert.Equal(t, StatusLoaded, next.Status())
	assert.NotEqual(t, s.Token(), next.Token())
}

func TestSwitchSource_UnknownLeavesSessionUntouched(t *testing.T) {
	m, f := newTestManager(t)

	s, err := m.Start(NewPlaybackState(srcA))
	require.NoError(t, err)
	before := f.Last().Calls()

	next, err := m.SwitchSource(s, "C")

	assert.Nil(t, next)
	var unknown *catalog.UnknownSourceError
	require.ErrorAs(t, err, &unknown)
	assert.ErrorIs(t, err, catalog.ErrUnknownSource)
	assert.Equal(t, StatusLoaded, s.Status())
	assert.True(t, s.Live())
	assert.Equal(t, before, f.Last().Calls())
	assert.Len(t, f.Mocks(), 1)
}

func TestSwitchSource_FailedStartLeavesOldSuspended(t *testing.T) {
	f := &player.MockFactory{Configure: func(n int, m *player.Mock) {
		if n == 1 {
			m.SetLoadError(errors.New("cannot open"))
		}
	}}
	m := NewManager(testCatalog(), f.New, WithLogger(quietLogger()))
	defer m.Close()

	s, err := m.Start(NewPlaybackState(srcA))
	require.NoError(t, err)

	_, err = m.SwitchSource(s, srcB)

	var loadErr *PlaybackLoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, srcB, loadErr.Source)
	assert.Equal(t, StatusSuspended, s.Status())
	assert.Equal(t, 1, f.Mocks()[0].Releases())
	assert.Equal(t, 1, f.Mocks()[1].Releases())
}

func TestSwitchSource_RequiresLoaded(t *testing.T) {
	m, _ := newTestManager(t)

	s, err := m.Start(NewPlaybackState(srcA))
	require.NoError(t, err)
	_, err = m.Suspend(s)
	require.NoError(t, err)

	_, err = m.SwitchSource(s, srcB)
	assert.ErrorIs(t, err, ErrSessionNotLoaded)
}

func TestEvents_ForwardedWhileLive(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		m, f := newTestManager(t)
		sub := m.Subscribe()

		s, err := m.Start(NewPlaybackState(catalog.Playlist))
		require.NoError(t, err)
		<-sub.StatusChanged

		f.Last().Emit(player.Event{Kind: player.Ready, Window: 1})
		synctest.Wait()

		select {
		case e := <-sub.Events:
			assert.Equal(t, s.Token(), e.Session)
			assert.Equal(t, catalog.Playlist, e.Source)
			assert.Equal(t, player.Ready, e.Event.Kind)
		default:
			t.Fatal("expected a forwarded event")
		}
		assert.Equal(t, 1, s.State().Window, "ready events update the last known window")
	})
}

func TestEvents_LateEventDiscarded(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		m, f := newTestManager(t)
		sub := m.Subscribe()

		s, err := m.Start(NewPlaybackState(srcA))
		require.NoError(t, err)
		mock := f.Last()

		_, err = m.Suspend(s)
		require.NoError(t, err)

		mock.Emit(player.Event{Kind: player.Ended})
		synctest.Wait()

		select {
		case e := <-sub.Events:
			t.Fatalf("late event delivered: %+v", e)
		default:
		}
		assert.Equal(t, int64(1), s.Dropped())
		assert.Equal(t, StatusSuspended, s.Status())
	})
}

// blockingHook parks the logging goroutine on the first entry with msg
// until release is closed.
type blockingHook struct {
	msg     string
	once    sync.Once
	entered chan struct{}
	release chan struct{}
}

func (h *blockingHook) Levels() []logrus.Level { return logrus.AllLevels }

func (h *blockingHook) Fire(e *logrus.Entry) error {
	if e.Message == h.msg {
		h.once.Do(func() {
			close(h.entered)
			<-h.release
		})
	}
	return nil
}

func TestEvents_SuspendWaitsForEventInFlight(t *testing.T) {
	hook := &blockingHook{
		msg:     "Player state changed",
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	logger := quietLogger()
	logger.AddHook(hook)
	f := &player.MockFactory{}
	m := NewManager(testCatalog(), f.New, WithLogger(logger))
	defer m.Close()
	sub := m.Subscribe()

	s, err := m.Start(NewPlaybackState(srcA))
	require.NoError(t, err)
	mock := f.Last()

	mock.Emit(player.Event{Kind: player.Buffering})
	<-hook.entered

	suspended := make(chan struct{})
	go func() {
		defer close(suspended)
		_, _ = m.Suspend(s)
	}()

	select {
	case <-suspended:
		t.Fatal("Suspend returned while an event was being delivered")
	case <-time.After(50 * time.Millisecond):
	}
	assert.False(t, mock.Released(), "engine released while an event was being delivered")

	close(hook.release)
	<-suspended

	select {
	case e := <-sub.Events:
		assert.Equal(t, s.Token(), e.Session)
		assert.Equal(t, player.Buffering, e.Event.Kind)
	default:
		t.Fatal("event in flight was not delivered before the suspend")
	}
	select {
	case e := <-sub.Events:
		t.Fatalf("event delivered after suspend: %+v", e)
	default:
	}
	assert.True(t, mock.Released())
	assert.Equal(t, StatusSuspended, s.Status())
}

func TestEvents_StateChangeLogCarriesAutoPlay(t *testing.T) {
	logger := quietLogger()
	hook := test.NewLocal(logger)
	f := &player.MockFactory{}
	m := NewManager(testCatalog(), f.New, WithLogger(logger))
	defer m.Close()
	sub := m.Subscribe()

	_, err := m.Start(PlaybackState{Source: srcA, AutoPlay: false})
	require.NoError(t, err)
	f.Last().Emit(player.Event{Kind: player.Buffering})

	select {
	case <-sub.Events:
	case <-time.After(time.Second):
		t.Fatal("event not delivered")
	}

	var found bool
	for _, e := range hook.AllEntries() {
		if e.Message == "Player state changed" {
			found = true
			assert.Equal(t, false, e.Data["auto_play"])
			assert.Equal(t, "STATE_BUFFERING", e.Data["event"])
		}
	}
	assert.True(t, found)
}

func TestSwitchSource_FailureReportedAsSwitch(t *testing.T) {
	f := &player.MockFactory{Configure: func(n int, m *player.Mock) {
		if n == 1 {
			m.SetLoadError(errors.New("cannot open"))
		}
	}}
	m := NewManager(testCatalog(), f.New, WithLogger(quietLogger()))
	defer m.Close()
	sub := m.Subscribe()

	s, err := m.Start(NewPlaybackState(srcA))
	require.NoError(t, err)
	_, err = m.SwitchSource(s, srcB)
	require.Error(t, err)

	select {
	case e := <-sub.Errors:
		assert.Equal(t, "switch", e.Operation)
		assert.Equal(t, srcB, e.Source)
	default:
		t.Fatal("expected an error event")
	}
}

func TestEvents_OldSessionEventsDroppedAfterSwitch(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		m, f := newTestManager(t)
		sub := m.Subscribe()

		s, err := m.Start(NewPlaybackState(srcA))
		require.NoError(t, err)
		old := f.Last()

		next, err := m.SwitchSource(s, srcB)
		require.NoError(t, err)

		old.Emit(player.Event{Kind: player.Error, Err: errors.New("stale")})
		f.Last().Emit(player.Event{Kind: player.Buffering})
		synctest.Wait()

		e := <-sub.Events
		assert.Equal(t, next.Token(), e.Session)
		assert.Equal(t, player.Buffering, e.Event.Kind)
		assert.Equal(t, int64(1), s.Dropped())
		assert.Equal(t, int64(0), next.Dropped())
	})
}

func TestEvents_PumpStopsWhenEngineCloses(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		m, f := newTestManager(t)

		_, err := m.Start(NewPlaybackState(srcA))
		require.NoError(t, err)

		f.Last().Close()
		synctest.Wait()
		require.NoError(t, m.Close())
	})
}

func TestStatusChanges(t *testing.T) {
	m, _ := newTestManager(t)
	sub := m.Subscribe()

	s, err := m.Start(NewPlaybackState(srcA))
	require.NoError(t, err)
	_, err = m.Suspend(s)
	require.NoError(t, err)

	first := <-sub.StatusChanged
	second := <-sub.StatusChanged
	assert.Equal(t, StatusChange{Session: s.Token(), Source: srcA, Previous: StatusUninitialized, Current: StatusLoaded}, first)
	assert.Equal(t, StatusChange{Session: s.Token(), Source: srcA, Previous: StatusLoaded, Current: StatusSuspended}, second)
}

func TestReplaceCatalog(t *testing.T) {
	m, f := newTestManager(t)

	s, err := m.Start(NewPlaybackState(srcA))
	require.NoError(t, err)

	m.ReplaceCatalog(catalog.MustNew([]catalog.Entry{{ID: "C", Locator: "file:///c.flac"}}))

	assert.Equal(t, []catalog.Locator{"asset:///a.mp3"}, s.Locators(), "loaded sessions keep their locators")

	next, err := m.SwitchSource(s, "C")
	require.NoError(t, err)
	assert.Equal(t, []catalog.Locator{"file:///c.flac"}, next.Locators())
	assert.Equal(t, "load file:///c.flac", f.Last().Calls()[0])
}

func TestClose_SuspendsLiveSessions(t *testing.T) {
	m, f := newTestManager(t)
	sub := m.Subscribe()

	s, err := m.Start(NewPlaybackState(srcA))
	require.NoError(t, err)

	require.NoError(t, m.Close())
	require.NoError(t, m.Close(), "close is idempotent")

	assert.Equal(t, StatusSuspended, s.Status())
	assert.Equal(t, 1, f.Last().Releases())
	<-sub.Done

	late := m.Subscribe()
	<-late.Done
}

func TestPlaybackLoadError_Message(t *testing.T) {
	err := &PlaybackLoadError{
		Source:   catalog.Playlist,
		Locators: []catalog.Locator{"asset:///a.mp3", "asset:///b.mp4"},
		Err:      errors.New("boom"),
	}
	assert.Equal(t, "load playlist [asset:///a.mp3, asset:///b.mp4]: boom", err.Error())
}

func TestStatus_String(t *testing.T) {
	assert.Equal(t, "Uninitialized", StatusUninitialized.String())
	assert.Equal(t, "Loaded", StatusLoaded.String())
	assert.Equal(t, "Suspended", StatusSuspended.String())
	assert.Equal(t, "Unknown", Status(9).String())
}
