// Package notice implements a flag that turns itself off a fixed time after
// it was last raised, used for the resume "Coming Soon!" message.
package notice

import (
	"sync"
	"time"
)

// DefaultDelay is how long the notice stays up.
const DefaultDelay = 3 * time.Second

// Timer is a pending callback.
type Timer interface {
	Stop() bool
}

// Clock schedules callbacks.
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

// RealClock schedules with the runtime timer.
type RealClock struct{}

// AfterFunc wraps time.AfterFunc.
func (RealClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Controller owns the notice flag and its pending reset.
type Controller struct {
	clock Clock
	delay time.Duration

	mu      sync.Mutex
	active  bool
	pending Timer
	gen     uint64
	closed  bool
}

// New returns a lowered notice. A zero delay means DefaultDelay.
func New(clock Clock, delay time.Duration) *Controller {
	if clock == nil {
		clock = RealClock{}
	}
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Controller{clock: clock, delay: delay}
}

// Trigger raises the notice and restarts its reset window.
func (c *Controller) Trigger() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	if c.pending != nil {
		c.pending.Stop()
	}
	c.active = true
	c.gen++
	gen := c.gen
	c.pending = c.clock.AfterFunc(c.delay, func() { c.reset(gen) })
}

// Active reports whether the notice is showing.
func (c *Controller) Active() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// Delay returns how long a trigger keeps the notice up.
func (c *Controller) Delay() time.Duration { return c.delay }

// Close cancels any pending reset. Later triggers are ignored.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending != nil {
		c.pending.Stop()
		c.pending = nil
	}
	c.active = false
	c.closed = true
}

// reset only applies for the generation that scheduled it, so a reset that
// already fired its goroutine cannot lower a newer trigger.
func (c *Controller) reset(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen || c.closed {
		return
	}
	c.active = false
	c.pending = nil
}
