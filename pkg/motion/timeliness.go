package motion

import (
	"errors"
	"time"
)

// ErrTimeliness is returned when the loop missed its period more times than
// the configured budget allows.
var ErrTimeliness = errors.New("loop timeliness check failed too many times")

// Timeliness defaults.
const (
	// DefaultTickTolerance is the allowed overrun as a fraction of the period.
	DefaultTickTolerance = 0.2
	// DefaultMissBudget is how many late ticks are tolerated before aborting.
	DefaultMissBudget = 10
)

// TimelinessMonitor measures the interval between consecutive ticks against
// the nominal period. A tick later than period*(1+tolerance) counts as a
// miss; once misses exceed the budget the monitor trips and the loop should
// abort.
type TimelinessMonitor struct {
	period    time.Duration
	tolerance float64
	budget    int

	misses int
	last   time.Time
	count  uint64
	total  time.Duration
}

// NewTimelinessMonitor creates a monitor for the given nominal period.
func NewTimelinessMonitor(period time.Duration, tolerance float64, budget int) *TimelinessMonitor {
	if tolerance <= 0 {
		tolerance = DefaultTickTolerance
	}
	if budget <= 0 {
		budget = DefaultMissBudget
	}
	return &TimelinessMonitor{
		period:    period,
		tolerance: tolerance,
		budget:    budget,
	}
}

// Observe records a tick occurring at now. It reports whether the tick was
// late, and returns ErrTimeliness once the miss budget is exhausted.
func (m *TimelinessMonitor) Observe(now time.Time) (late bool, err error) {
	if m.last.IsZero() {
		m.last = now
		return false, nil
	}

	interval := now.Sub(m.last)
	m.last = now
	m.count++
	m.total += interval

	limit := m.period + time.Duration(float64(m.period)*m.tolerance)
	if interval > limit {
		m.misses++
		if m.misses > m.budget {
			return true, ErrTimeliness
		}
		return true, nil
	}
	return false, nil
}

// Misses returns the number of late ticks observed so far.
func (m *TimelinessMonitor) Misses() int {
	return m.misses
}

// Average returns the mean measured tick interval.
func (m *TimelinessMonitor) Average() time.Duration {
	if m.count == 0 {
		return 0
	}
	return m.total / time.Duration(m.count)
}
