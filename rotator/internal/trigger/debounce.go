// Package trigger coalesces the external signals that should re-run the
// media search: DOM mutation bursts, viewport resizes, navigation. A burst
// of signals inside the quiescence window collapses into a single firing.
package trigger

import "time"

// Debouncer collects signals and fires once the window has been quiet.
// It is not goroutine-safe: it is owned by the session event loop, which is
// the only execution context that touches it.
type Debouncer struct {
	window  time.Duration
	timer   *time.Timer
	timerCh <-chan time.Time
	pending int
}

// NewDebouncer creates a Debouncer with the given quiescence window.
func NewDebouncer(window time.Duration) *Debouncer {
	if window <= 0 {
		window = 300 * time.Millisecond
	}
	return &Debouncer{window: window}
}

// Bump registers one signal and (re)starts the window timer.
func (d *Debouncer) Bump() {
	d.pending++
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.NewTimer(d.window)
	d.timerCh = d.timer.C
}

// C returns the channel that fires when the window expires. It is nil while
// no signal is pending, which conveniently blocks forever in a select.
func (d *Debouncer) C() <-chan time.Time {
	return d.timerCh
}

// Consume returns how many signals were coalesced and resets the debouncer.
func (d *Debouncer) Consume() int {
	n := d.pending
	d.pending = 0
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
		d.timerCh = nil
	}
	return n
}

// Pending reports whether any signal is waiting for the window to expire.
func (d *Debouncer) Pending() bool {
	return d.pending > 0
}
