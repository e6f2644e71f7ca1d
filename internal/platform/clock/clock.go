package clock

import "time"

// Clock abstracts time so "today" is injected rather than read ambiently.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock in Location, or time.Local when nil.
type SystemClock struct {
	Location *time.Location
}

func (c SystemClock) Now() time.Time {
	loc := c.Location
	if loc == nil {
		loc = time.Local
	}
	return time.Now().In(loc)
}

// Fixed always returns the same instant.
type Fixed time.Time

func (f Fixed) Now() time.Time {
	return time.Time(f)
}
