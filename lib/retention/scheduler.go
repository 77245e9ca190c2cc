// Copyright 2026 The Sealbox Authors
// SPDX-License-Identifier: Apache-2.0

package retention

import (
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/sealbox-foundation/sealbox/lib/clock"
)

// ErrAlreadyRunning is returned by Start while a previous background
// task is still active.
var ErrAlreadyRunning = errors.New("retention scheduler already running")

// SweepRunner is the unit of work the scheduler repeats. *Sweeper
// implements it.
type SweepRunner interface {
	Sweep() Stats
}

// Scheduler runs sweeps on a fixed interval in a single background
// goroutine. It is an owned value: every Scheduler carries its own
// cancellation state, so independent schedulers can coexist and be
// tested in isolation — there is no process-wide current task.
//
// Cancellation is cooperative: the stop signal is checked between
// sweeps, never delivered preemptively into one.
type Scheduler struct {
	runner   SweepRunner
	interval time.Duration
	clock    clock.Clock
	logger   *slog.Logger

	// mu guards running, stop, and done. Single-writer: only Start
	// and Stop mutate them.
	mu      sync.Mutex
	running bool
	stop    chan struct{}
	done    chan struct{}
}

// NewScheduler builds a Scheduler. Nil clock or logger get defaults.
func NewScheduler(runner SweepRunner, interval time.Duration, clk clock.Clock, logger *slog.Logger) *Scheduler {
	if clk == nil {
		clk = clock.Real()
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Scheduler{
		runner:   runner,
		interval: interval,
		clock:    clk,
		logger:   logger,
	}
}

// Start launches the background task. The first sweep runs after one
// full interval. Starting while a task is active returns
// ErrAlreadyRunning.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return ErrAlreadyRunning
	}
	s.running = true
	s.stop = make(chan struct{})
	s.done = make(chan struct{})

	go s.run(s.stop, s.done)
	s.logger.Info("retention scheduler started", "interval", s.interval)
	return nil
}

// run is the background loop. It owns no scheduler state beyond the
// two channels handed to it.
func (s *Scheduler) run(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := s.clock.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
		}
		stats := s.runner.Sweep()
		s.logger.Debug("scheduled sweep finished",
			"removed", stats.Removed, "failed", stats.Failed)
	}
}

// Stop signals cancellation and waits up to timeout for the task to
// terminate. The return value reports whether it actually did: false
// means the task is still finishing a sweep and the caller should not
// assume it has exited. Stopping an idle scheduler is a no-op success.
func (s *Scheduler) Stop(timeout time.Duration) bool {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return true
	}
	if s.stop != nil {
		close(s.stop)
		s.stop = nil
	}
	done := s.done
	s.mu.Unlock()

	stopped := false
	select {
	case <-done:
		stopped = true
	case <-time.After(timeout):
	}

	s.mu.Lock()
	if stopped {
		s.running = false
	}
	s.mu.Unlock()

	if stopped {
		s.logger.Info("retention scheduler stopped")
	} else {
		s.logger.Warn("retention scheduler did not stop within timeout", "timeout", timeout)
	}
	return stopped
}

// Running reports whether the background task is active.
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}
