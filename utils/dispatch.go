package utils

import (
	"sync"
	"time"

	"github.com/coder/quartz"
)

// Dispatcher is the ordered, rate-limited outbound channel. Enqueue never
// blocks; a single drain task delivers messages strictly in submission
// order with at least the configured delay before each emission, so the
// chat surface is never flooded. The queue is unbounded and nothing is
// ever dropped; production rate is human-driven.
type Dispatcher struct {
	mu       sync.Mutex
	queue    []string
	draining bool

	clock quartz.Clock
	delay time.Duration
	emit  func(string)
}

// NewDispatcher creates a dispatcher that delivers through emit.
func NewDispatcher(clock quartz.Clock, delay time.Duration, emit func(string)) *Dispatcher {
	return &Dispatcher{
		clock: clock,
		delay: delay,
		emit:  emit,
	}
}

// Enqueue appends a message to the tail and starts the drain task if one
// is not already running.
func (d *Dispatcher) Enqueue(text string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.queue = append(d.queue, text)
	if !d.draining {
		d.draining = true
		d.clock.AfterFunc(d.delay, d.step)
	}
}

// Pending returns the number of undelivered messages.
func (d *Dispatcher) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.queue)
}

// step delivers the head of the queue and reschedules itself while
// messages remain. It runs on the clock's timer goroutine, never on a
// caller's.
func (d *Dispatcher) step() {
	d.mu.Lock()
	if len(d.queue) == 0 {
		d.draining = false
		d.mu.Unlock()
		return
	}
	head := d.queue[0]
	d.queue = d.queue[1:]
	d.mu.Unlock()

	d.emit(head)

	d.mu.Lock()
	if len(d.queue) > 0 {
		d.clock.AfterFunc(d.delay, d.step)
	} else {
		d.draining = false
	}
	d.mu.Unlock()
}
