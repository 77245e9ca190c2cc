// Copyright 2026 The Sealbox Authors
// SPDX-License-Identifier: Apache-2.0

// Package verify re-checks an evidence bundle end to end: archive
// integrity against its manifest, an independent recomputation of the
// stored pass/fail decision, and an advisory check of the proof
// document's embedded timestamp. The result is a single Report whose
// IsValid field is the verdict.
//
// Verification is total: a bad bundle produces a report, never an
// error. The stages run in a fixed order — existence, extraction,
// integrity, decision recompute (only when integrity held), timestamp
// (only when a proof document is present), finalize — and every stage
// failure still reaches finalize with its issues recorded. The one
// exception is extraction: when the archive cannot be unpacked,
// nothing downstream is possible.
package verify

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/sealbox-foundation/sealbox/lib/bundle"
	"github.com/sealbox-foundation/sealbox/lib/clock"
)

// Verifier runs the verification pipeline. The zero value is not
// usable; construct with New.
type Verifier struct {
	// Normalizer and Engine are the external collaborators used to
	// recompute the decision. When either is nil, the decision stage
	// is skipped with a warning and the report's DecisionRecomputed
	// stays false — which does not by itself invalidate the bundle.
	Normalizer Normalizer
	Engine     DecisionEngine

	// Window bounds the advisory timestamp check.
	Window TimestampWindow

	clock  clock.Clock
	logger *slog.Logger
}

// New constructs a Verifier. Logger may be nil (logging is then
// discarded); clk may be nil (the real clock is used).
func New(normalizer Normalizer, engine DecisionEngine, clk clock.Clock, logger *slog.Logger) *Verifier {
	if clk == nil {
		clk = clock.Real()
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Verifier{
		Normalizer: normalizer,
		Engine:     engine,
		Window:     DefaultTimestampWindow,
		clock:      clk,
		logger:     logger,
	}
}

// Verify checks the bundle at bundlePath and returns the report. It
// never returns an error for problems found in the bundle; the report
// carries them. The extraction working directory is private to this
// call and removed before it returns.
func (v *Verifier) Verify(ctx context.Context, bundlePath string) *Report {
	var outcomes stageOutcomes

	// CHECK_EXISTS
	info, err := os.Stat(bundlePath)
	if err != nil || info.IsDir() {
		outcomes.issues = append(outcomes.issues, fmt.Sprintf("bundle does not exist: %s", bundlePath))
		return finalize(outcomes)
	}
	outcomes.bundleExists = true

	// EXTRACT — the only stage whose failure aborts the pipeline:
	// nothing downstream is possible without extracted files.
	workDir, err := os.MkdirTemp("", "sealbox-verify-*")
	if err != nil {
		outcomes.issues = append(outcomes.issues, fmt.Sprintf("allocating working directory: %v", err))
		return finalize(outcomes)
	}
	defer os.RemoveAll(workDir)

	extracted, err := bundle.Extract(bundlePath, workDir)
	if err != nil {
		outcomes.issues = append(outcomes.issues, fmt.Sprintf("extraction failed: %v", err))
		return finalize(outcomes)
	}

	// INTEGRITY
	outcomes.integrity = checkIntegrity(extracted)
	v.logger.Debug("integrity stage complete",
		"bundle", bundlePath,
		"files_total", outcomes.integrity.filesTotal,
		"files_verified", outcomes.integrity.filesVerified,
	)

	// DECISION_RECOMPUTE — gated on integrity: comparing a decision
	// recomputed from tampered inputs proves nothing.
	if outcomes.integrity.valid() {
		if v.Normalizer == nil || v.Engine == nil {
			outcomes.warnings = append(outcomes.warnings,
				"decision recompute skipped: no decision collaborators configured")
		} else {
			outcomes.decision = v.recomputeDecision(ctx, extracted)
		}
	}

	// TIMESTAMP_CHECK — advisory, only when the proof is present.
	if proofPath, ok := extracted[bundle.EntryProof]; ok {
		outcomes.warnings = append(outcomes.warnings,
			checkTimestamp(proofPath, v.clock.Now(), v.Window)...)
	} else {
		outcomes.warnings = append(outcomes.warnings,
			"timestamp check skipped: no proof document in bundle")
	}

	// FINALIZE
	report := finalize(outcomes)
	v.logger.Info("verification complete",
		"bundle", bundlePath,
		"is_valid", report.IsValid,
		"issues", len(report.Issues),
		"warnings", len(report.Warnings),
	)
	return report
}
