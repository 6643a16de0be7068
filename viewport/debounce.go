package viewport

import (
	"sync"
	"time"
)

// Default debouncing parameters.
const (
	DefaultDelay = 10 * time.Millisecond
	DefaultBatch = 10
)

// Debouncer coalesces requests for window updates. Requests made while a
// signal is pending are merged into it. The debouncer only signals C; the
// receiver does the work on its own goroutine.
type Debouncer struct {
	// C receives one value per coalesced burst of requests.
	C <-chan struct{}

	// Batch is the number of blocks to materialize per signal.
	Batch int

	c     chan struct{}
	delay time.Duration

	mu      sync.Mutex
	timer   *time.Timer
	pending bool
}

// NewDebouncer returns a debouncer that signals delay after the first of a
// burst of requests.
func NewDebouncer(delay time.Duration, batch int) *Debouncer {
	if delay <= 0 {
		delay = DefaultDelay
	}
	if batch <= 0 {
		batch = DefaultBatch
	}
	c := make(chan struct{}, 1)
	return &Debouncer{C: c, c: c, Batch: batch, delay: delay}
}

// Request asks for a signal.
func (d *Debouncer) Request() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.pending {
		return
	}
	d.pending = true
	d.timer = time.AfterFunc(d.delay, d.fire)
}

func (d *Debouncer) fire() {
	d.mu.Lock()
	d.pending = false
	d.mu.Unlock()
	select {
	case d.c <- struct{}{}:
	default:
	}
}

// Pending reports whether a signal is scheduled.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending
}

// Stop cancels a scheduled signal.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.pending = false
}
