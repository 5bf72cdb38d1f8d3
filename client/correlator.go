package client

import (
	"sync"

	"github.com/Domenick1991/flightgate/internal/wire"
)

type pending struct {
	action string
	ch     chan *wire.Response
}

// correlator restores the originating action for asynchronous responses.
// The server answers one connection's requests strictly in send order, so a
// FIFO queue of pending actions is the correlation mechanism. When a
// response carries an explicit action_response marker, the marker wins and
// the matching entry is removed wherever it sits, tolerating rare
// reordering.
type correlator struct {
	mu    sync.Mutex
	queue []*pending
}

func (c *correlator) push(p *pending) {
	c.mu.Lock()
	c.queue = append(c.queue, p)
	c.mu.Unlock()
}

// match resolves a response to its pending request, or nil when the
// response is undeliverable (no usable marker and an empty queue).
func (c *correlator) match(action string) *pending {
	c.mu.Lock()
	defer c.mu.Unlock()

	if action == "" {
		// No marker: the head is assumed to be the request being answered.
		if len(c.queue) == 0 {
			return nil
		}
		p := c.queue[0]
		c.queue = c.queue[1:]
		return p
	}

	for i, p := range c.queue {
		if p.action == action {
			c.queue = append(c.queue[:i], c.queue[i+1:]...)
			return p
		}
	}
	return nil
}

// remove withdraws a specific entry, used when its request was never sent.
func (c *correlator) remove(target *pending) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, p := range c.queue {
		if p == target {
			c.queue = append(c.queue[:i], c.queue[i+1:]...)
			return
		}
	}
}

// drain fails every pending request, used on disconnect.
func (c *correlator) drain() []*pending {
	c.mu.Lock()
	defer c.mu.Unlock()

	dropped := c.queue
	c.queue = nil
	return dropped
}

func (c *correlator) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.queue)
}
