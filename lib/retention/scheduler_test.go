// Copyright 2026 The Sealbox Authors
// SPDX-License-Identifier: Apache-2.0

package retention

import (
	"errors"
	"testing"
	"time"

	"github.com/sealbox-foundation/sealbox/lib/clock"
)

// recordingRunner counts sweeps and can be made to block mid-sweep.
type recordingRunner struct {
	swept   chan struct{}
	release chan struct{}
}

func newRecordingRunner(blocking bool) *recordingRunner {
	runner := &recordingRunner{swept: make(chan struct{}, 16)}
	if blocking {
		runner.release = make(chan struct{})
	}
	return runner
}

func (r *recordingRunner) Sweep() Stats {
	r.swept <- struct{}{}
	if r.release != nil {
		<-r.release
	}
	return Stats{}
}

func waitForSweep(t *testing.T, runner *recordingRunner) {
	t.Helper()
	select {
	case <-runner.swept:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for a sweep")
	}
}

func assertNoSweep(t *testing.T, runner *recordingRunner) {
	t.Helper()
	select {
	case <-runner.swept:
		t.Fatal("unexpected sweep")
	default:
	}
}

func TestSchedulerSweepsOnEachTick(t *testing.T) {
	fake := clock.Fake(testNow)
	runner := newRecordingRunner(false)
	scheduler := NewScheduler(runner, time.Hour, fake, testLogger())

	if err := scheduler.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer scheduler.Stop(5 * time.Second)
	fake.WaitForTimers(1)

	// No sweep before the first full interval elapses.
	fake.Advance(30 * time.Minute)
	assertNoSweep(t, runner)

	fake.Advance(30 * time.Minute)
	waitForSweep(t, runner)

	fake.Advance(time.Hour)
	waitForSweep(t, runner)
}

func TestSchedulerRejectsSecondStart(t *testing.T) {
	scheduler := NewScheduler(newRecordingRunner(false), time.Hour, clock.Fake(testNow), testLogger())

	if err := scheduler.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer scheduler.Stop(5 * time.Second)

	if err := scheduler.Start(); !errors.Is(err, ErrAlreadyRunning) {
		t.Errorf("second Start error = %v, want ErrAlreadyRunning", err)
	}
}

func TestSchedulerStopIdleIsNoOp(t *testing.T) {
	scheduler := NewScheduler(newRecordingRunner(false), time.Hour, clock.Fake(testNow), testLogger())
	if !scheduler.Stop(time.Millisecond) {
		t.Error("Stop of an idle scheduler reported failure")
	}
}

func TestSchedulerStopWaitsOutRunningSweep(t *testing.T) {
	fake := clock.Fake(testNow)
	runner := newRecordingRunner(true)
	scheduler := NewScheduler(runner, time.Hour, fake, testLogger())

	if err := scheduler.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	fake.WaitForTimers(1)
	fake.Advance(time.Hour)
	waitForSweep(t, runner)

	// The runner is blocked inside Sweep; a short Stop cannot succeed.
	if scheduler.Stop(10 * time.Millisecond) {
		t.Fatal("Stop reported success while a sweep was in flight")
	}
	if !scheduler.Running() {
		t.Fatal("Running() = false while the loop is still alive")
	}

	close(runner.release)
	if !scheduler.Stop(5 * time.Second) {
		t.Fatal("Stop failed after the sweep was released")
	}
	if scheduler.Running() {
		t.Error("Running() = true after a successful Stop")
	}
}

func TestSchedulerRestartsAfterStop(t *testing.T) {
	fake := clock.Fake(testNow)
	runner := newRecordingRunner(false)
	scheduler := NewScheduler(runner, time.Hour, fake, testLogger())

	if err := scheduler.Start(); err != nil {
		t.Fatalf("first Start: %v", err)
	}
	if !scheduler.Stop(5 * time.Second) {
		t.Fatal("Stop failed")
	}
	if err := scheduler.Start(); err != nil {
		t.Fatalf("restart: %v", err)
	}
	defer scheduler.Stop(5 * time.Second)

	fake.WaitForTimers(1)
	fake.Advance(time.Hour)
	waitForSweep(t, runner)
}

func TestSweeperImplementsSweepRunner(t *testing.T) {
	var _ SweepRunner = NewSweeper(SweeperConfig{Root: t.TempDir(), Logger: testLogger()})
}
