// Copyright 2026 The Sealbox Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock provides an injectable time abstraction so the
// retention scheduler can be tested without wall-clock sleeps.
//
// In production:
//
//	s := retention.NewScheduler(..., clock.Real(), ...)
//
// In tests:
//
//	c := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
//	s := retention.NewScheduler(..., c, ...)
//	// start the scheduler goroutine, then:
//	c.WaitForTimers(1)       // block until it registers its ticker
//	c.Advance(time.Hour)     // fire the tick deterministically
//
// WaitForTimers removes the race between a goroutine registering a
// timer and the test advancing the clock; no test should synchronize
// on real sleeps.
package clock
