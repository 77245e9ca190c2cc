// Copyright 2026 The Sealbox Authors
// SPDX-License-Identifier: Apache-2.0

// sealbox-retention runs the artifact retention service: periodic
// sweeps of the storage tree, removing evidence bundles whose
// retention period has lapsed.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sealbox-foundation/sealbox/lib/config"
	"github.com/sealbox-foundation/sealbox/lib/retention"
	"github.com/sealbox-foundation/sealbox/lib/version"
)

// stopTimeout bounds how long shutdown waits for an in-flight sweep.
const stopTimeout = 30 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		showVersion bool
		configPath  string
		sweepOnce   bool
	)
	flag.BoolVar(&showVersion, "version", false, "print version information and exit")
	flag.StringVar(&configPath, "config", "", "path to the YAML config file (default: $"+config.EnvConfigPath+")")
	flag.BoolVar(&sweepOnce, "once", false, "run a single sweep and exit instead of scheduling")
	flag.Parse()

	if showVersion {
		fmt.Printf("sealbox-retention %s\n", version.Info())
		return nil
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := newLogger()

	policies := retention.DefaultPolicyTable()
	if cfg.PolicyFile != "" {
		policies, err = retention.LoadPolicyTable(cfg.PolicyFile)
		if err != nil {
			return err
		}
	}

	sweeper := retention.NewSweeper(retention.SweeperConfig{
		Root:          cfg.StorageRoot,
		RetentionDays: cfg.RetentionDaysOrDefault(),
		DryRun:        cfg.DryRun,
		Policies:      policies,
		Logger:        logger,
	})

	if sweepOnce {
		stats := sweeper.Sweep()
		if stats.Failed > 0 {
			return fmt.Errorf("sweep finished with %d failed removals", stats.Failed)
		}
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	scheduler := retention.NewScheduler(sweeper, cfg.SweepInterval, nil, logger)
	if err := scheduler.Start(); err != nil {
		return err
	}
	logger.Info("retention service running",
		"storage_root", cfg.StorageRoot,
		"retention_days", cfg.RetentionDaysOrDefault(),
		"sweep_interval", cfg.SweepInterval,
		"dry_run", cfg.DryRun,
	)

	<-ctx.Done()
	logger.Info("shutdown signal received")
	if !scheduler.Stop(stopTimeout) {
		return fmt.Errorf("scheduler did not stop within %s", stopTimeout)
	}
	return nil
}

// newLogger creates the service logger: a JSON handler writing to
// stderr at Info level, also installed as the slog default.
func newLogger() *slog.Logger {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)
	return logger
}
