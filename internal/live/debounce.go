package live

import (
	"sync"
	"time"
)

// Latest is handed to a debounced callback. It runs publish and returns true
// only if no newer trigger (and no Stop) has happened since the callback was
// scheduled. publish runs under the debouncer's lock and must not call back
// into the Debouncer.
type Latest func(publish func()) bool

// Debouncer delays work until no new trigger has arrived for the configured
// delay. Only the most recent trigger runs; earlier pending ones are dropped,
// and a callback that is already running can no longer publish once it has
// been superseded.
type Debouncer struct {
	mu      sync.Mutex
	delay   time.Duration
	timer   *time.Timer
	gen     uint64
	stopped bool
}

// NewDebouncer returns a Debouncer with the given quiet period. A delay <= 0
// runs triggers immediately on a new goroutine.
func NewDebouncer(delay time.Duration) *Debouncer {
	return &Debouncer{delay: delay}
}

// Trigger schedules fn, cancelling any pending, not yet started trigger.
func (d *Debouncer) Trigger(fn func(latest Latest)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	gen := d.gen
	latest := func(publish func()) bool {
		d.mu.Lock()
		defer d.mu.Unlock()
		if d.stopped || d.gen != gen {
			return false
		}
		publish()
		return true
	}
	d.timer = time.AfterFunc(max(d.delay, 0), func() {
		if !latest(func() {}) {
			return
		}
		fn(latest)
	})
}

// Stop cancels the pending trigger and makes later triggers no-ops.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	d.gen++
	if d.timer != nil {
		d.timer.Stop()
	}
}
