// Package clock isolates the simulation engine from wall-clock time.
package clock

import "time"

// Timer is a handle to a deferred callback. Stop reports whether the call
// prevented the callback from running; stopping a fired timer is a no-op.
type Timer interface {
	Stop() bool
}

// Clock is a source of the current time and deferred callbacks.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

// Real is a Clock backed by the runtime timer wheel.
type Real struct{}

// New returns the wall clock.
func New() Clock {
	return Real{}
}

// Now returns the current local time.
func (Real) Now() time.Time {
	return time.Now()
}

// AfterFunc runs f in its own goroutine after d elapses.
func (Real) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}
