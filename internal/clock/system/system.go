// Package system provides the wall clock used for record timestamps.
package system

import "time"

// Clock stamps logo records with the current UTC time.
type Clock struct{}

// New creates a new Clock.
func New() *Clock {
	return &Clock{}
}

// Now returns the current time.
func (Clock) Now() time.Time {
	return time.Now().UTC()
}
