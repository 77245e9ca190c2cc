// Copyright 2026 The Sealbox Authors
// SPDX-License-Identifier: Apache-2.0

// sealbox-verify checks a sealed evidence bundle: archive integrity,
// manifest digests, and the advisory timestamp. The report is printed
// as JSON on stdout; the exit code mirrors the verdict.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/sealbox-foundation/sealbox/lib/verify"
	"github.com/sealbox-foundation/sealbox/lib/version"
)

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	os.Exit(code)
}

func run() (int, error) {
	flags := pflag.NewFlagSet("sealbox-verify", pflag.ContinueOnError)
	showVersion := flags.Bool("version", false, "print version information and exit")
	quiet := flags.Bool("quiet", false, "suppress the JSON report, exit code only")
	verbose := flags.Bool("verbose", false, "log verification stages to stderr")

	if err := flags.Parse(os.Args[1:]); err != nil {
		return 1, err
	}
	if *showVersion {
		fmt.Printf("sealbox-verify %s\n", version.Info())
		return 0, nil
	}
	if flags.NArg() != 1 {
		return 1, fmt.Errorf("usage: sealbox-verify [flags] <bundle.zip>")
	}
	bundlePath := flags.Arg(0)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if *verbose {
		logger = slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// No normalizer or decision engine is wired into the standalone
	// tool; decision recomputation is skipped with a warning in the
	// report. Integrity checks do not depend on it.
	verifier := verify.New(nil, nil, nil, logger)
	report := verifier.Verify(ctx, bundlePath)

	if !*quiet {
		encoded, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return 1, fmt.Errorf("encoding report: %w", err)
		}
		fmt.Println(string(encoded))
	}

	if !report.IsValid {
		return 2, nil
	}
	return 0, nil
}
