package im

import "time"

// Scheduler runs fn once after d unless cancelled. Hosts implement it so
// that fn runs on the goroutine that owns the document.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) (cancel func())
}

// Debouncer runs the most recently triggered function once the trigger has
// been quiet for its delay. Each Trigger clears the pending timer and starts
// a new one.
type Debouncer struct {
	sched  Scheduler
	delay  time.Duration
	cancel func()
	fn     func()
	gen    uint64
}

// NewDebouncer returns a debouncer with the given delay.
func NewDebouncer(s Scheduler, delay time.Duration) *Debouncer {
	return &Debouncer{sched: s, delay: delay}
}

// Trigger schedules fn, replacing any pending call.
func (d *Debouncer) Trigger(fn func()) {
	d.Stop()
	gen := d.gen
	d.fn = fn
	d.cancel = d.sched.AfterFunc(d.delay, func() {
		// A timer that already fired may still deliver after a reset.
		if gen != d.gen {
			return
		}
		d.run()
	})
}

// Pending reports whether a call is scheduled.
func (d *Debouncer) Pending() bool { return d.fn != nil }

// Flush runs the pending call now, if any.
func (d *Debouncer) Flush() {
	if d.fn == nil {
		return
	}
	if d.cancel != nil {
		d.cancel()
	}
	d.run()
}

// Stop drops the pending call.
func (d *Debouncer) Stop() {
	if d.cancel != nil {
		d.cancel()
	}
	d.cancel, d.fn = nil, nil
	d.gen++
}

// SetDelay changes the delay used by later triggers.
func (d *Debouncer) SetDelay(delay time.Duration) { d.delay = delay }

func (d *Debouncer) run() {
	fn := d.fn
	d.cancel, d.fn = nil, nil
	d.gen++
	fn()
}
