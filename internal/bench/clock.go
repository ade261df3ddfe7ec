// Package bench times repeated forward passes of a model and aggregates the
// results.
package bench

import "time"

// Instant is a reading of a Clock in nanoseconds since the clock's epoch.
type Instant int64

// Sub returns the duration t - u.
func (t Instant) Sub(u Instant) time.Duration {
	return time.Duration(t - u)
}

// Clock is a monotonic instant source.
type Clock interface {
	Now() Instant
}

// MonotonicClock reads the runtime's monotonic clock. Readings are immune to
// wall-clock adjustments.
type MonotonicClock struct {
	epoch time.Time
}

func NewMonotonicClock() *MonotonicClock {
	return &MonotonicClock{epoch: time.Now()}
}

func (c *MonotonicClock) Now() Instant {
	return Instant(time.Since(c.epoch))
}

// Millis truncates d to whole milliseconds.
func Millis(d time.Duration) int64 {
	return d.Milliseconds()
}
