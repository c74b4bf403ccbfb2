package engine

import "time"

// Clock abstracts time.Now() to allow deterministic testing.
// The upcoming window and the daily announcement pass derive "today"
// from Clock.Now().UTC(), never from an ambient read.
type Clock interface {
	Now() time.Time
}

// RealClock implements Clock using the standard time package.
type RealClock struct{}

// Now returns the current local time.
func (RealClock) Now() time.Time {
	return time.Now()
}
