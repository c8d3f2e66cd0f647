// Package clock abstracts the wall clock so time-dependent code can be tested with fixed instants.
package clock

import "time"

// Clock reports the current instant
type Clock interface {
	Now() time.Time
}

// System reads the machine clock
type System struct{}

// Now returns time.Now in UTC
func (System) Now() time.Time { return time.Now().UTC() }

// Fixed always reports the same instant
type Fixed time.Time

// Now returns the fixed instant
func (f Fixed) Now() time.Time { return time.Time(f) }
