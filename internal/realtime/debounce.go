package realtime

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// Debouncer runs fn once, wait after the most recent Schedule call.
// Scheduling again before the timer fires replaces the pending run.
type Debouncer struct {
	clock clockwork.Clock
	wait  time.Duration
	fn    func()

	mu    sync.Mutex
	timer clockwork.Timer
	gen   uint64
}

// NewDebouncer creates a trailing-edge debouncer.
func NewDebouncer(clock clockwork.Clock, wait time.Duration, fn func()) *Debouncer {
	return &Debouncer{clock: clock, wait: wait, fn: fn}
}

// Schedule (re)starts the wait. Only the last call in a burst runs fn.
func (d *Debouncer) Schedule() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.gen++
	gen := d.gen
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = d.clock.AfterFunc(d.wait, func() {
		d.mu.Lock()
		// A timer that lost the race with Stop must not run.
		if gen != d.gen {
			d.mu.Unlock()
			return
		}
		d.timer = nil
		d.mu.Unlock()
		d.fn()
	})
}

// Cancel drops any pending run.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.gen++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

// Pending reports whether a run is scheduled.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timer != nil
}
