package app

import "time"

// PeriodicEvent fires at most once per interval. The zero value fires on
// its first check.
type PeriodicEvent struct {
	lastTriggered time.Time
	triggered     bool
}

// TryTakeEvent reports whether wait has passed since the event last fired,
// and if so records now as the new firing time.
func (e *PeriodicEvent) TryTakeEvent(now time.Time, wait time.Duration) bool {
	if e.triggered && now.Sub(e.lastTriggered) < wait {
		return false
	}
	e.lastTriggered = now
	e.triggered = true
	return true
}
