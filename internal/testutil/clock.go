package testutil

import (
	"sync"
	"time"
)

// Epoch is the first instant reported by test clocks.
var Epoch = time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)

// StepClock is a deterministic clock for tests.
//
// The first call to Now returns Epoch; every later call advances by step.
// The same sequence of calls always yields the same timestamps, so history
// entries and golden output stay byte-stable.
//
// Thread-safety: all methods are safe for concurrent use.
type StepClock struct {
	mu    sync.Mutex
	step  time.Duration
	calls int64
}

// NewStepClock creates a clock that advances by step per call.
func NewStepClock(step time.Duration) *StepClock {
	return &StepClock{step: step}
}

// Now returns Epoch + calls*step and counts the call.
func (c *StepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := Epoch.Add(time.Duration(c.calls) * c.step)
	c.calls++
	return t
}

// Calls returns how many times Now has been called.
func (c *StepClock) Calls() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

// Reset rewinds the clock so the next Now returns Epoch again.
func (c *StepClock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = 0
}

// FixedClock always reports the same instant, like a coarse system clock.
type FixedClock struct {
	t time.Time
}

// NewFixedClock creates a clock stuck at t.
func NewFixedClock(t time.Time) FixedClock {
	return FixedClock{t: t}
}

func (c FixedClock) Now() time.Time {
	return c.t
}
