package coalesce

import (
	"time"

	"saevis/ports"
)

// systemClock implements ports.Clock over the runtime's real timers.
type systemClock struct{}

// NewSystemClock returns the production clock.
func NewSystemClock() ports.Clock {
	return systemClock{}
}

func (systemClock) Now() time.Time {
	return time.Now()
}

func (systemClock) AfterFunc(d time.Duration, fn func()) ports.Timer {
	return time.AfterFunc(d, fn)
}
