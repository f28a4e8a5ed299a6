package coalesce

import (
	"sync"
	"time"

	"saevis/ports"
)

// Scheduler coalesces bursts of triggers into a single trailing-edge
// callback per key. Each logical key (e.g. one per refresh kind) owns one
// slot: scheduling while a slot is pending cancels and restarts its
// timer, so only the final state after a burst triggers downstream work,
// and never more than one callback per key is outstanding.
type Scheduler struct {
	clock ports.Clock
	delay time.Duration

	mu    sync.Mutex
	slots map[string]ports.Timer
}

// NewScheduler creates a scheduler with the given settle delay.
func NewScheduler(clock ports.Clock, delay time.Duration) *Scheduler {
	return &Scheduler{
		clock: clock,
		delay: delay,
		slots: make(map[string]ports.Timer),
	}
}

// Schedule arms (or re-arms) the key's slot. fn runs once, after the
// delay elapses without another Schedule call for the same key.
func (s *Scheduler) Schedule(key string, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if timer, ok := s.slots[key]; ok {
		timer.Stop()
	}

	var timer ports.Timer
	timer = s.clock.AfterFunc(s.delay, func() {
		s.mu.Lock()
		// Only the slot's current timer may fire: a timer that lost a
		// re-arm or cancel race stays silent.
		if current, ok := s.slots[key]; !ok || current != timer {
			s.mu.Unlock()
			return
		}
		delete(s.slots, key)
		s.mu.Unlock()
		fn()
	})
	s.slots[key] = timer
}

// Cancel stops the key's pending slot, if any, with no callback
// invocation. It reports whether something was pending.
func (s *Scheduler) Cancel(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	timer, ok := s.slots[key]
	if !ok {
		return false
	}
	timer.Stop()
	delete(s.slots, key)
	return true
}

// CancelAll stops every pending slot. Used on unmount/deactivation so no
// orphaned refresh fires afterwards.
func (s *Scheduler) CancelAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, timer := range s.slots {
		timer.Stop()
		delete(s.slots, key)
	}
}

// Pending reports whether the key currently has an armed slot.
func (s *Scheduler) Pending(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.slots[key]
	return ok
}
