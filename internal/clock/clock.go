// Package clock abstracts time so merge timestamps can be pinned in tests.
package clock

import "time"

// Clock returns the current time.
type Clock interface {
	Now() time.Time
}

// System reads the real wall clock in UTC.
type System struct{}

// Now returns the current UTC time.
func (System) Now() time.Time {
	return time.Now().UTC()
}

// Frozen returns a Clock stuck at t.
func Frozen(t time.Time) Clock {
	return frozen{t: t}
}

type frozen struct {
	t time.Time
}

func (f frozen) Now() time.Time {
	return f.t
}
