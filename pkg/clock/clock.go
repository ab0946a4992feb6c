// Package clock abstracts time access so that time-dependent logic can be
// driven by a simulated clock in tests.
package clock

import (
	"sync"
	"time"
)

// Clock provides the current time and the ability to sleep
type Clock interface {
	// Now returns the current time
	Now() time.Time
	// Sleep blocks the caller for the given duration
	Sleep(d time.Duration)
}

// System is a Clock backed by the real wall clock
type System struct{}

// NewSystem returns a Clock backed by the time package
func NewSystem() *System {
	return &System{}
}

// Now returns the current wall-clock time
func (s *System) Now() time.Time {
	return time.Now()
}

// Sleep pauses the calling goroutine for at least d
func (s *System) Sleep(d time.Duration) {
	if d <= 0 {
		return
	}
	time.Sleep(d)
}

// Fake is a deterministic Clock for tests. Sleep advances the fake time
// immediately and records the requested duration.
type Fake struct {
	mu     sync.Mutex
	now    time.Time
	sleeps []time.Duration
}

// NewFake creates a fake clock starting at the given time
func NewFake(start time.Time) *Fake {
	return &Fake{now: start}
}

// Now returns the fake current time
func (f *Fake) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

// Sleep advances the fake time by d without blocking
func (f *Fake) Sleep(d time.Duration) {
	if d < 0 {
		d = 0
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
	f.sleeps = append(f.sleeps, d)
}

// Advance moves the fake time forward without recording a sleep
func (f *Fake) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

// Sleeps returns a copy of all durations passed to Sleep so far
func (f *Fake) Sleeps() []time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]time.Duration, len(f.sleeps))
	copy(out, f.sleeps)
	return out
}

// TotalSlept returns the sum of all recorded sleeps
func (f *Fake) TotalSlept() time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	var total time.Duration
	for _, d := range f.sleeps {
		total += d
	}
	return total
}

// Reset clears recorded sleeps and sets the fake time
func (f *Fake) Reset(start time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = start
	f.sleeps = nil
}
