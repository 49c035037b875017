package player

import (
	"sync"

	"github.com/gopxl/beep/v2"
)

var _ beep.Streamer = (*windowChain)(nil)

// windowChain streams the current window and, once it is exhausted, moves
// on to a queued next window without a gap. onAdvance runs on the speaker
// goroutine and must not block or take locks that are held around
// speaker.Lock.
type windowChain struct {
	mu        sync.Mutex
	current   beep.Streamer
	next      beep.Streamer
	onAdvance func()
}

// Stream implements beep.Streamer.
func (c *windowChain) Stream(samples [][2]float64) (n int, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current == nil {
		return 0, false
	}

	n, ok = c.current.Stream(samples)
	if n < len(samples) && ok {
		// short read: drain until the window reports exhaustion
		m, more := c.current.Stream(samples[n:])
		n += m
		ok = more
	}

	if !ok && c.next != nil {
		c.current = c.next
		c.next = nil
		if c.onAdvance != nil {
			c.onAdvance()
		}
		if n < len(samples) {
			m, more := c.current.Stream(samples[n:])
			n += m
			ok = more
		} else {
			ok = true
		}
	}

	return n, ok
}

// Err implements beep.Streamer.
func (c *windowChain) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current != nil {
		return c.current.Err()
	}
	return nil
}

// Replace swaps the current window and drops any queued next window.
// Used when seeking to a different window.
func (c *windowChain) Replace(s beep.Streamer) {
	c.mu.Lock()
	c.current = s
	c.next = nil
	c.mu.Unlock()
}

// SetNext queues the window that follows the current one.
func (c *windowChain) SetNext(s beep.Streamer) {
	c.mu.Lock()
	c.next = s
	c.mu.Unlock()
}

// HasNext reports whether a next window is queued.
func (c *windowChain) HasNext() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.next != nil
}
