package player

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/sirupsen/logrus"

	"github.com/llehouerou/reel/internal/catalog"
)

const eventBufferSize = 32

var (
	speakerMu          sync.Mutex
	speakerInitialized bool
	speakerSampleRate  = beep.SampleRate(44100)
)

// Player is the beep-backed engine. The windows of a load play back to
// back; the window after the current one is opened ahead of time so the
// transition is gapless.
type Player struct {
	mu sync.Mutex

	opener Opener
	log    logrus.FieldLogger

	locators []catalog.Locator
	window   int
	current  *window
	pending  *window // opened ahead and queued on the chain
	failed   map[int]bool
	chain    *windowChain
	ctrl     *beep.Ctrl
	playing  bool // a sequence is on the speaker and has not finished
	autoPlay bool
	loaded   bool
	released bool

	advanceCh chan struct{}
	endedCh   chan struct{}
	done      chan struct{}
	events    chan Event
}

// New creates an engine that opens locators with opener.
func New(opener Opener, log logrus.FieldLogger) *Player {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Player{
		opener:    opener,
		log:       log.WithField("component", "player"),
		failed:    make(map[int]bool),
		advanceCh: make(chan struct{}, 1),
		endedCh:   make(chan struct{}, 1),
		done:      make(chan struct{}),
		events:    make(chan Event, eventBufferSize),
	}
}

// NewFactory returns a Factory producing Players that share opener and log.
func NewFactory(opener Opener, log logrus.FieldLogger) Factory {
	return func() Interface { return New(opener, log) }
}

func initSpeaker() error {
	speakerMu.Lock()
	defer speakerMu.Unlock()
	if speakerInitialized {
		return nil
	}
	if err := speaker.Init(speakerSampleRate, speakerSampleRate.N(time.Second/10)); err != nil {
		return err
	}
	speakerInitialized = true
	return nil
}

// Load opens the first window and queues it on the speaker, paused until
// auto-play is enabled.
func (p *Player) Load(locators []catalog.Locator) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.released {
		return ErrReleased
	}
	if p.loaded {
		return errors.New("player: already loaded")
	}
	if len(locators) == 0 {
		return errors.New("player: nothing to load")
	}

	p.locators = append([]catalog.Locator(nil), locators...)
	p.emitLocked(Event{Kind: Buffering})

	w, err := p.opener.open(locators[0])
	if err != nil {
		p.emitLocked(Event{Kind: Error, Err: err})
		p.emitLocked(Event{Kind: Idle})
		return err
	}
	if err := initSpeaker(); err != nil {
		w.Close()
		err = fmt.Errorf("player: init speaker: %w", err)
		p.emitLocked(Event{Kind: Error, Err: err})
		p.emitLocked(Event{Kind: Idle})
		return err
	}

	p.current = w
	p.window = 0
	p.chain = &windowChain{current: resampled(w), onAdvance: p.signalAdvance}
	p.loaded = true
	p.startLocked()

	p.emitTagsLocked(w)
	p.emitLocked(Event{Kind: Ready})
	p.prefetchLocked(1)

	go p.run()
	return nil
}

// SetAutoPlay starts or holds playback once the current window is ready.
func (p *Player) SetAutoPlay(enabled bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.autoPlay = enabled
	if p.ctrl != nil && !p.released {
		speaker.Lock()
		p.ctrl.Paused = !enabled
		speaker.Unlock()
	}
}

// Seek moves to position inside window, opening the window if needed.
func (p *Player) Seek(window int, position time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.released {
		return ErrReleased
	}
	if !p.loaded {
		return ErrNotLoaded
	}
	if window < 0 || window >= len(p.locators) {
		return fmt.Errorf("player: window %d out of range [0,%d)", window, len(p.locators))
	}
	position = max(position, 0)

	if window != p.window {
		w, err := p.opener.open(p.locators[window])
		if err != nil {
			p.emitLocked(Event{Kind: Error, Window: window, Err: err})
			return err
		}
		speaker.Lock()
		p.chain.Replace(resampled(w))
		speaker.Unlock()

		p.closeWindowsLocked()
		p.current = w
		p.window = window
		p.emitTagsLocked(w)
		p.prefetchLocked(window + 1)
	}

	speaker.Lock()
	target := p.current.format.SampleRate.N(position)
	if n := p.current.streamer.Len(); n > 0 {
		target = min(target, n)
	}
	var err error
	if target != p.current.streamer.Position() {
		err = p.current.streamer.Seek(target)
	}
	speaker.Unlock()
	if err != nil {
		return fmt.Errorf("player: seek window %d to %s: %w", window, position, err)
	}

	if !p.playing {
		p.startLocked()
	}
	return nil
}

func (p *Player) Position() (time.Duration, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.readableLocked(); err != nil {
		return 0, err
	}
	speaker.Lock()
	pos := p.current.format.SampleRate.D(p.current.streamer.Position())
	speaker.Unlock()
	return pos, nil
}

func (p *Player) WindowIndex() (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.readableLocked(); err != nil {
		return 0, err
	}
	return p.window, nil
}

func (p *Player) AutoPlay() (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.released {
		return false, ErrReleased
	}
	return p.autoPlay, nil
}

// Release stops playback, closes every decoder and the event channel.
// Safe to call more than once.
func (p *Player) Release() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.released {
		return nil
	}
	if p.loaded {
		p.emitLocked(Event{Kind: Idle, Window: p.window})
	}
	p.released = true
	close(p.done)

	if p.playing {
		speaker.Clear()
		p.playing = false
	}
	err := p.closeWindowsLocked()
	p.ctrl = nil
	close(p.events)
	return err
}

func (p *Player) Events() <-chan Event { return p.events }

func (p *Player) readableLocked() error {
	if p.released {
		return ErrReleased
	}
	if !p.loaded {
		return ErrNotLoaded
	}
	return nil
}

// startLocked hands the chain to the speaker.
func (p *Player) startLocked() {
	p.ctrl = &beep.Ctrl{Streamer: p.chain, Paused: !p.autoPlay}
	p.playing = true
	speaker.Play(beep.Seq(p.ctrl, beep.Callback(p.signalEnded)))
}

func (p *Player) closeWindowsLocked() error {
	var errs []error
	if p.current != nil {
		errs = append(errs, p.current.Close())
		p.current = nil
	}
	if p.pending != nil {
		errs = append(errs, p.pending.Close())
		p.pending = nil
	}
	return errors.Join(errs...)
}

// prefetchLocked opens window idx in the background and queues it.
func (p *Player) prefetchLocked(idx int) {
	if idx >= len(p.locators) || p.failed[idx] {
		return
	}
	loc := p.locators[idx]
	go func() {
		w, err := p.opener.open(loc)

		p.mu.Lock()
		defer p.mu.Unlock()
		if p.released || idx != p.window+1 || p.pending != nil {
			if w != nil {
				w.Close()
			}
			return
		}
		if err != nil {
			p.failed[idx] = true
			p.emitLocked(Event{Kind: Error, Window: idx, Err: err})
			return
		}
		p.pending = w
		p.chain.SetNext(resampled(w))
		p.log.WithFields(logrus.Fields{"window": idx, "locator": loc}).Debug("Window prefetched")
	}()
}

// signalAdvance runs on the speaker goroutine.
func (p *Player) signalAdvance() {
	select {
	case p.advanceCh <- struct{}{}:
	default:
	}
}

// signalEnded runs on the speaker goroutine.
func (p *Player) signalEnded() {
	select {
	case p.endedCh <- struct{}{}:
	default:
	}
}

func (p *Player) run() {
	for {
		select {
		case <-p.done:
			return
		case <-p.advanceCh:
			p.handleAdvance()
		case <-p.endedCh:
			p.handleEnded()
		}
	}
}

func (p *Player) handleAdvance() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.released || p.pending == nil {
		return
	}
	if p.current != nil {
		p.current.Close()
	}
	p.current = p.pending
	p.pending = nil
	p.window++
	p.emitTagsLocked(p.current)
	p.emitLocked(Event{Kind: Ready, Window: p.window})
	p.prefetchLocked(p.window + 1)
}

// handleEnded runs when the speaker drained the chain. Windows that could
// not be prefetched are retried here; if none opens, playback has ended.
func (p *Player) handleEnded() {
	p.mu.Lock()
	if p.released {
		p.mu.Unlock()
		return
	}
	p.playing = false
	start := p.window + 1
	locators := p.locators
	p.mu.Unlock()

	for idx := start; idx < len(locators); idx++ {
		p.mu.Lock()
		skip := p.released || p.failed[idx]
		p.mu.Unlock()
		if skip {
			continue
		}

		w, err := p.opener.open(locators[idx])

		p.mu.Lock()
		if p.released {
			p.mu.Unlock()
			if w != nil {
				w.Close()
			}
			return
		}
		if err != nil {
			p.failed[idx] = true
			p.emitLocked(Event{Kind: Error, Window: idx, Err: err})
			p.mu.Unlock()
			continue
		}
		p.closeWindowsLocked()
		p.current = w
		p.window = idx
		p.chain.Replace(resampled(w))
		p.startLocked()
		p.emitTagsLocked(w)
		p.emitLocked(Event{Kind: Ready, Window: idx})
		p.prefetchLocked(idx + 1)
		p.mu.Unlock()
		return
	}

	p.mu.Lock()
	p.emitLocked(Event{Kind: Ended, Window: p.window})
	p.mu.Unlock()
}

func (p *Player) emitTagsLocked(w *window) {
	if w.tags != nil {
		p.emitLocked(Event{Kind: Metadata, Window: p.window, Tags: w.tags})
	}
}

// emitLocked never blocks; events are dropped when nobody drains the stream.
func (p *Player) emitLocked(e Event) {
	if p.released {
		return
	}
	select {
	case p.events <- e:
	default:
		p.log.WithField("event", e.String()).Debug("Event dropped, stream full")
	}
}

func resampled(w *window) beep.Streamer {
	if w.format.SampleRate == speakerSampleRate {
		return w.streamer
	}
	return beep.Resample(4, w.format.SampleRate, speakerSampleRate, w.streamer)
}
