package engine

import (
	"sync"
	"time"
)

// Clock tracks a search's time budget. It is safe to read from another
// goroutine while the search runs.
type Clock struct {
	mu          sync.Mutex
	budget      time.Duration
	used        time.Duration
	lastStarted time.Time // When the clock was last started
	isRunning   bool
}

func NewClock(budget time.Duration) *Clock {
	return &Clock{
		budget:    budget,
		isRunning: false,
	}
}

func (c *Clock) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.isRunning {
		c.lastStarted = time.Now()
		c.isRunning = true
	}
}

func (c *Clock) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.isRunning {
		c.used += time.Since(c.lastStarted)
		c.isRunning = false
	}
}

// Elapsed is the running time so far, including the current run.
func (c *Clock) Elapsed() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.isRunning {
		return c.used + time.Since(c.lastStarted)
	}
	return c.used
}

func (c *Clock) Remaining() time.Duration {
	return c.budget - c.Elapsed()
}

// Expired reports whether the budget is spent. A non-positive budget never expires.
func (c *Clock) Expired() bool {
	if c.budget <= 0 {
		return false
	}
	return c.Elapsed() > c.budget
}
