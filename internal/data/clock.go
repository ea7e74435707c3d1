package data

import (
	"sync"
	"time"
)

// Clock stamps newly inserted accounts.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// StoppedClock reports the same instant until Advance moves it.
type StoppedClock struct {
	mu sync.Mutex
	at time.Time
}

// NewStoppedClock returns a clock frozen at at.
func NewStoppedClock(at time.Time) *StoppedClock {
	return &StoppedClock{at: at}
}

func (c *StoppedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.at
}

// Advance moves the clock forward by d.
func (c *StoppedClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.at = c.at.Add(d)
	c.mu.Unlock()
}
