package playback

const eventBufferSize = 16

// Subscription provides event channels for a subscriber.
type Subscription struct {
	Events        <-chan SessionEvent
	StatusChanged <-chan StatusChange
	Errors        <-chan ErrorEvent
	Done          <-chan struct{}

	eventCh  chan SessionEvent
	statusCh chan StatusChange
	errorCh  chan ErrorEvent
	doneCh   chan struct{}
}

func newSubscription() *Subscription {
	s := &Subscription{
		eventCh:  make(chan SessionEvent, eventBufferSize),
		statusCh: make(chan StatusChange, eventBufferSize),
		errorCh:  make(chan ErrorEvent, eventBufferSize),
		doneCh:   make(chan struct{}),
	}
	s.Events = s.eventCh
	s.StatusChanged = s.statusCh
	s.Errors = s.errorCh
	s.Done = s.doneCh
	return s
}

// close signals subscribers to stop by closing doneCh.
func (s *Subscription) close() {
	close(s.doneCh)
}

// sendEvent forwards an engine event (non-blocking).
func (s *Subscription) sendEvent(e SessionEvent) {
	select {
	case s.eventCh <- e:
	default:
		// Drop if buffer full
	}
}

func (s *Subscription) sendStatus(e StatusChange) {
	select {
	case s.statusCh <- e:
	default:
	}
}

func (s *Subscription) sendError(e ErrorEvent) {
	select {
	case s.errorCh <- e:
	default:
	}
}
