// Package clock abstracts time so the monitor loop and the search
// debouncer can be driven deterministically in tests.
package clock

import (
	"sync"
	"time"
)

// Clock provides the current time and interval waits.
type Clock interface {
	Now() time.Time

	// After returns a channel that receives once after d elapses.
	After(d time.Duration) <-chan time.Time
}

// System is the production clock backed by the time package.
type System struct{}

func (System) Now() time.Time {
	return time.Now()
}

func (System) After(d time.Duration) <-chan time.Time {
	return time.After(d)
}

// Manual is a test clock. Time only moves when Advance is called, and
// every pending After wait fires on each advance regardless of duration,
// so a test step corresponds to one tick.
type Manual struct {
	mu      sync.Mutex
	now     time.Time
	waiters []chan time.Time
}

// NewManual creates a manual clock starting at the given time.
func NewManual(start time.Time) *Manual {
	return &Manual{now: start}
}

func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

func (m *Manual) After(d time.Duration) <-chan time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()

	ch := make(chan time.Time, 1)
	m.waiters = append(m.waiters, ch)
	return ch
}

// Advance moves the clock forward and releases all pending waits.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	m.now = m.now.Add(d)
	now := m.now
	waiters := m.waiters
	m.waiters = nil
	m.mu.Unlock()

	for _, ch := range waiters {
		ch <- now
	}
}

// Waiters reports how many After calls are pending, letting tests
// synchronize with a loop that is about to sleep.
func (m *Manual) Waiters() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.waiters)
}
