package content

import (
	"context"
	"sync"
	"sync/atomic"
)

// Ticket identifies one generation attempt on a Cell.
type Ticket uint64

// Cell carries the result of a background generation to the frame loop.
// A single background writer publishes once per ticket; the frame loop polls.
// Starting a new attempt or cancelling bumps the epoch, so late results from
// superseded attempts are dropped instead of applied.
type Cell[T any] struct {
	mu     sync.Mutex
	epoch  uint64
	value  T
	cancel context.CancelFunc

	// ready is stored only after value is written.
	ready atomic.Bool
}

// Begin starts a new attempt and invalidates any earlier one.
func (c *Cell[T]) Begin() Ticket {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.beginLocked()
}

func (c *Cell[T]) beginLocked() Ticket {
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.epoch++
	c.ready.Store(false)
	var zero T
	c.value = zero
	return Ticket(c.epoch)
}

// Run begins an attempt and runs fn on its own goroutine, publishing its
// result. The context passed to fn is cancelled when the attempt is superseded.
func (c *Cell[T]) Run(ctx context.Context, fn func(context.Context) T) Ticket {
	c.mu.Lock()
	ticket := c.beginLocked()
	runCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.mu.Unlock()

	go func() {
		defer cancel()
		c.Publish(ticket, fn(runCtx))
	}()
	return ticket
}

// Publish stores v if ticket is still the current attempt. It reports
// whether the value was accepted.
func (c *Cell[T]) Publish(ticket Ticket, v T) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if uint64(ticket) != c.epoch || c.ready.Load() {
		return false
	}
	c.value = v
	c.ready.Store(true)
	return true
}

// Poll returns the published value once it is ready.
func (c *Cell[T]) Poll() (T, bool) {
	var zero T
	if !c.ready.Load() {
		return zero, false
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.ready.Load() {
		return zero, false
	}
	return c.value, true
}

// Pending reports whether an attempt is outstanding.
func (c *Cell[T]) Pending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.epoch > 0 && !c.ready.Load()
}

// Cancel invalidates the current attempt. Its result will be discarded.
func (c *Cell[T]) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.beginLocked()
}
