// Copyright 2026 The Sealbox Authors
// SPDX-License-Identifier: Apache-2.0

package clock

import (
	"sync"
	"time"
)

// Fake returns a FakeClock pinned to initial. Time stands still until
// Advance is called; every After, NewTicker, and Sleep registers a
// pending waiter that fires when the clock advances past its deadline.
//
// FakeClock is safe for concurrent use.
func Fake(initial time.Time) *FakeClock {
	clock := &FakeClock{current: initial}
	clock.waitersChanged = sync.NewCond(&clock.mu)
	return clock
}

// FakeClock is a deterministic Clock for tests.
type FakeClock struct {
	mu             sync.Mutex
	current        time.Time
	waiters        []*fakeWaiter
	waitersChanged *sync.Cond
}

// fakeWaiter is one pending timer, ticker, or sleep.
type fakeWaiter struct {
	deadline time.Time
	channel  chan time.Time

	// interval is non-zero for tickers; after firing, the waiter is
	// rescheduled at deadline+interval.
	interval time.Duration

	stopped bool
}

// Now returns the current fake time.
func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// After registers a one-shot waiter. If d <= 0, the channel receives
// immediately.
func (c *FakeClock) After(d time.Duration) <-chan time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	channel := make(chan time.Time, 1)
	if d <= 0 {
		channel <- c.current
		return channel
	}
	c.waiters = append(c.waiters, &fakeWaiter{
		deadline: c.current.Add(d),
		channel:  channel,
	})
	c.waitersChanged.Broadcast()
	return channel
}

// NewTicker registers a repeating waiter. Panics if d <= 0, matching
// time.NewTicker.
func (c *FakeClock) NewTicker(d time.Duration) *Ticker {
	if d <= 0 {
		panic("clock: non-positive ticker interval")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	waiter := &fakeWaiter{
		deadline: c.current.Add(d),
		channel:  make(chan time.Time, 1),
		interval: d,
	}
	c.waiters = append(c.waiters, waiter)
	c.waitersChanged.Broadcast()

	return &Ticker{
		C: waiter.channel,
		stopFunc: func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			waiter.stopped = true
		},
	}
}

// Sleep blocks until the clock advances past the deadline.
func (c *FakeClock) Sleep(d time.Duration) {
	<-c.After(d)
}

// Advance moves the clock forward by d, firing every waiter whose
// deadline falls within the new window in deadline order. Tickers are
// rescheduled and may fire multiple times in one Advance; ticks that
// overflow the channel buffer are dropped.
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.current = c.current.Add(d)
	target := c.current
	c.mu.Unlock()

	for {
		waiter := c.nextExpired(target)
		if waiter == nil {
			return
		}
		select {
		case waiter.channel <- target:
		default:
		}
	}
}

// nextExpired pops the earliest-deadline expired waiter, rescheduling
// tickers and discarding fired one-shots and stopped waiters.
func (c *FakeClock) nextExpired(target time.Time) *fakeWaiter {
	c.mu.Lock()
	defer c.mu.Unlock()

	var earliest *fakeWaiter
	for _, waiter := range c.waiters {
		if waiter.stopped || waiter.deadline.After(target) {
			continue
		}
		if earliest == nil || waiter.deadline.Before(earliest.deadline) {
			earliest = waiter
		}
	}
	if earliest == nil {
		return nil
	}

	if earliest.interval > 0 {
		earliest.deadline = earliest.deadline.Add(earliest.interval)
	} else {
		remaining := c.waiters[:0]
		for _, waiter := range c.waiters {
			if waiter != earliest {
				remaining = append(remaining, waiter)
			}
		}
		c.waiters = remaining
	}
	return earliest
}

// WaitForTimers blocks until at least n waiters are pending. Call it
// after starting a goroutine that registers timers and before
// Advance, so the registration/advance race cannot occur.
func (c *FakeClock) WaitForTimers(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for c.pendingCountLocked() < n {
		c.waitersChanged.Wait()
	}
}

// PendingCount returns the number of active pending waiters.
func (c *FakeClock) PendingCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pendingCountLocked()
}

func (c *FakeClock) pendingCountLocked() int {
	count := 0
	for _, waiter := range c.waiters {
		if !waiter.stopped {
			count++
		}
	}
	return count
}
