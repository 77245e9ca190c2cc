// Copyright 2026 The Sealbox Authors
// SPDX-License-Identifier: Apache-2.0

package clock

import "time"

// Clock abstracts the time operations the retention subsystem uses.
// Production code injects Real(); tests inject Fake() and advance it
// deterministically. Anything that reads the current time or waits on
// it takes a Clock instead of calling the time package directly.
type Clock interface {
	// Now returns the current time.
	Now() time.Time

	// After returns a channel that receives the current time once
	// duration d has elapsed. If d <= 0, it receives immediately.
	After(d time.Duration) <-chan time.Time

	// NewTicker returns a Ticker delivering ticks at the given
	// interval. Panics if d <= 0.
	NewTicker(d time.Duration) *Ticker

	// Sleep pauses the calling goroutine for at least d.
	Sleep(d time.Duration)
}

// Ticker wraps a periodic timer. Read ticks from C; call Stop when
// done. C has capacity 1 — if the consumer falls behind, ticks are
// dropped, not queued.
type Ticker struct {
	C <-chan time.Time

	stopFunc func()
}

// Stop turns the ticker off. No ticks arrive on C after Stop returns;
// C is not closed.
func (t *Ticker) Stop() { t.stopFunc() }
