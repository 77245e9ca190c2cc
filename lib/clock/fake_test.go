// Copyright 2026 The Sealbox Authors
// SPDX-License-Identifier: Apache-2.0

package clock

import (
	"testing"
	"time"
)

var testEpoch = time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)

func TestFakeNowAdvances(t *testing.T) {
	c := Fake(testEpoch)
	if !c.Now().Equal(testEpoch) {
		t.Errorf("Now = %v, want %v", c.Now(), testEpoch)
	}
	c.Advance(90 * time.Second)
	if want := testEpoch.Add(90 * time.Second); !c.Now().Equal(want) {
		t.Errorf("Now = %v, want %v", c.Now(), want)
	}
}

func TestFakeAfterFiresOnAdvance(t *testing.T) {
	c := Fake(testEpoch)
	done := c.After(time.Minute)

	select {
	case <-done:
		t.Fatal("After fired before the clock advanced")
	default:
	}

	c.Advance(time.Minute)
	select {
	case fired := <-done:
		if !fired.Equal(testEpoch.Add(time.Minute)) {
			t.Errorf("fired at %v", fired)
		}
	default:
		t.Fatal("After did not fire after Advance")
	}
}

func TestFakeAfterNonPositiveFiresImmediately(t *testing.T) {
	c := Fake(testEpoch)
	select {
	case <-c.After(0):
	default:
		t.Fatal("After(0) should fire immediately")
	}
}

func TestFakeTickerRepeats(t *testing.T) {
	c := Fake(testEpoch)
	ticker := c.NewTicker(time.Minute)
	defer ticker.Stop()

	for i := 0; i < 3; i++ {
		c.Advance(time.Minute)
		select {
		case <-ticker.C:
		default:
			t.Fatalf("tick %d missing", i+1)
		}
	}
}

func TestFakeTickerStop(t *testing.T) {
	c := Fake(testEpoch)
	ticker := c.NewTicker(time.Minute)
	ticker.Stop()
	c.Advance(5 * time.Minute)
	select {
	case <-ticker.C:
		t.Fatal("stopped ticker fired")
	default:
	}
	if c.PendingCount() != 0 {
		t.Errorf("PendingCount = %d, want 0", c.PendingCount())
	}
}

func TestFakeWaitForTimers(t *testing.T) {
	c := Fake(testEpoch)
	released := make(chan struct{})
	go func() {
		c.Sleep(time.Second)
		close(released)
	}()

	c.WaitForTimers(1)
	c.Advance(time.Second)

	select {
	case <-released:
	case <-time.After(5 * time.Second):
		t.Fatal("Sleep goroutine never released")
	}
}
