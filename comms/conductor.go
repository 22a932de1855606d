package comms

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

// Conductor fans device state out to every subscribed client. Poll is
// normally MarshalState over the device snapshot. Clients are
// slow-consumer-safe: a client that stops draining its channel is dropped
// rather than allowed to stall the fan-out.
type Conductor struct {
	Poll func() ([]byte, error)

	Interval time.Duration

	lock    sync.Mutex
	clients map[chan []byte]struct{}
}

// Subscribe registers a client channel. The returned cancel func detaches
// it again.
func (c *Conductor) Subscribe() (ch chan []byte, cancel func()) {
	c.lock.Lock()
	defer c.lock.Unlock()

	if c.clients == nil {
		c.clients = make(map[chan []byte]struct{})
	}

	ch = make(chan []byte, 4)
	c.clients[ch] = struct{}{}

	return ch, func() {
		c.lock.Lock()
		defer c.lock.Unlock()
		delete(c.clients, ch)
	}
}

// UpdateClients polls the device and pushes the marshalled state to every
// subscriber until the context ends.
func (c *Conductor) UpdateClients(ctx context.Context) {
	interval := c.Interval
	if interval == 0 {
		interval = 250 * time.Millisecond
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		msg, err := c.Poll()
		if err != nil {
			continue
		}

		c.lock.Lock()
		for ch := range c.clients {
			select {
			case ch <- msg:
			default:
				// slow consumer; drop this update for them
			}
		}
		c.lock.Unlock()
	}
}

// MarshalState is the default Poll implementation for anything with a
// GetState-style snapshot.
func MarshalState(fn func() StatePayload) func() ([]byte, error) {
	return func() ([]byte, error) {
		return json.Marshal(fn())
	}
}
