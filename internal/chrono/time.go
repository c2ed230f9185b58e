package chrono

import (
	"time"
)

// TimeAPI is the interface that anything depending on the system clock should use.
type TimeAPI interface {
	// Now returns the current time in UTC, Twitch sends every timestamp in UTC so
	// everything persisted is compared in UTC as well.
	Now() time.Time
}

// StandardTime is the standard implementation of TimeAPI using the standard library.
type StandardTime struct{}

// NewStandardTime is the constructor of StandardTime.
func NewStandardTime() StandardTime {
	return StandardTime{}
}

func (StandardTime) Now() time.Time {
	return time.Now().UTC()
}

// FixedTime is a TimeAPI frozen at a single instant, it is mostly useful in tests.
type FixedTime struct {
	At time.Time
}

func (f *FixedTime) Now() time.Time {
	return f.At
}

// Advance moves the frozen instant forward by d.
func (f *FixedTime) Advance(d time.Duration) {
	f.At = f.At.Add(d)
}
