package search

import (
	"time"
)

// DefaultDebounceWindow is how long a query must be stable before it
// executes. Callers firing a query per keystroke coalesce to one search.
const DefaultDebounceWindow = 200 * time.Millisecond

// ShouldExecute is the pure debounce decision: execute when the window has
// elapsed since the last executed query, or when the query repeats
// verbatim (re-running an identical query is always cheap and keeps
// results fresh after history changes). lastQuery is the zero time when
// nothing has executed yet.
func ShouldExecute(query, lastExecuted string, now, lastQuery time.Time, window time.Duration) bool {
	if lastQuery.IsZero() {
		return true
	}
	if query == lastExecuted {
		return true
	}
	return !now.Before(lastQuery.Add(window))
}

// Debouncer tracks the last executed query so stateful callers can gate
// keystroke-driven searches without a timer.
type Debouncer struct {
	window       time.Duration
	lastExecuted string
	lastQuery    time.Time
}

// NewDebouncer creates a debouncer; a non-positive window uses the default.
func NewDebouncer(window time.Duration) *Debouncer {
	if window <= 0 {
		window = DefaultDebounceWindow
	}
	return &Debouncer{window: window}
}

// Allow reports whether the query should execute now, recording it when it
// does. Suppressed queries leave the debouncer unchanged, so a superseded
// query never delays its successor.
func (d *Debouncer) Allow(query string, now time.Time) bool {
	if !ShouldExecute(query, d.lastExecuted, now, d.lastQuery, d.window) {
		return false
	}
	d.lastExecuted = query
	d.lastQuery = now
	return true
}
