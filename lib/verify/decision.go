// Copyright 2026 The Sealbox Authors
// SPDX-License-Identifier: Apache-2.0

package verify

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"os"
	"sort"

	"github.com/sealbox-foundation/sealbox/lib/bundle"
	"github.com/sealbox-foundation/sealbox/lib/schema/validation"
)

// Tolerance is the maximum absolute difference accepted between the
// original and recomputed values of a tolerance-compared decision
// field, in the field's native unit.
const Tolerance = 0.1

// Normalizer is the external data-normalization collaborator:
// resampling, gap handling, unit conversion. Consumed as a black box.
type Normalizer interface {
	Normalize(ctx context.Context, raw []validation.Sample, spec *validation.Specification) ([]validation.Sample, error)
}

// DecisionEngine is the external pass/fail algorithm. Consumed as a
// black box.
type DecisionEngine interface {
	Evaluate(ctx context.Context, normalized []validation.Sample, spec *validation.Specification) (*validation.Decision, error)
}

// decisionOutcome is the folded result of the decision stage.
type decisionOutcome struct {
	recomputed    bool
	matches       bool
	discrepancies []string
	issues        []string
}

// recomputeDecision locates the raw input, specification, and original
// decision in the extracted set, re-runs the normalization and
// decision collaborators, and compares. It never returns an error:
// every failure mode — missing piece, unparseable artifact,
// collaborator fault — is reported as an issue in the outcome.
func (v *Verifier) recomputeDecision(ctx context.Context, extracted map[string]string) decisionOutcome {
	var outcome decisionOutcome

	required := []string{bundle.EntryRawData, bundle.EntrySpecification, bundle.EntryDecision}
	pieces := make(map[string][]byte, len(required))
	for _, entry := range required {
		path, ok := extracted[entry]
		if !ok {
			outcome.issues = append(outcome.issues, fmt.Sprintf("decision recompute: %s missing from bundle", entry))
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			outcome.issues = append(outcome.issues, fmt.Sprintf("decision recompute: reading %s: %v", entry, err))
			continue
		}
		pieces[entry] = data
	}
	if len(outcome.issues) > 0 {
		return outcome
	}

	spec, err := validation.ParseSpecification(pieces[bundle.EntrySpecification])
	if err != nil {
		outcome.issues = append(outcome.issues, fmt.Sprintf("decision recompute: %v", err))
		return outcome
	}
	original, err := validation.ParseDecision(pieces[bundle.EntryDecision])
	if err != nil {
		outcome.issues = append(outcome.issues, fmt.Sprintf("decision recompute: %v", err))
		return outcome
	}
	raw, err := validation.ParseSeries(bytes.NewReader(pieces[bundle.EntryRawData]))
	if err != nil {
		outcome.issues = append(outcome.issues, fmt.Sprintf("decision recompute: %v", err))
		return outcome
	}

	normalized, err := v.Normalizer.Normalize(ctx, raw, spec)
	if err != nil {
		outcome.issues = append(outcome.issues, fmt.Sprintf("decision recompute: normalizer: %v", err))
		return outcome
	}
	recomputed, err := v.Engine.Evaluate(ctx, normalized, spec)
	if err != nil {
		outcome.issues = append(outcome.issues, fmt.Sprintf("decision recompute: decision engine: %v", err))
		return outcome
	}

	outcome.recomputed = true
	outcome.matches, outcome.discrepancies = CompareDecisions(original, recomputed)
	return outcome
}

// CompareDecisions compares an original stored decision against an
// independently recomputed one. Three policies apply: exact equality
// for the verdict and its derivation (pass, target, threshold,
// required duration), an absolute tolerance of [Tolerance] for
// measured quantities (achieved duration, max/min observed value),
// and order-independent set equality for the reasons list. The
// comparison matches only when the discrepancy list is empty — any
// divergence, reasons included, is a mismatch.
func CompareDecisions(original, recomputed *validation.Decision) (bool, []string) {
	var discrepancies []string

	if original.Pass != recomputed.Pass {
		discrepancies = append(discrepancies,
			fmt.Sprintf("pass: original=%t recomputed=%t", original.Pass, recomputed.Pass))
	}
	exactFields := []struct {
		name                 string
		original, recomputed float64
	}{
		{"target_value", original.TargetValue, recomputed.TargetValue},
		{"threshold", original.Threshold, recomputed.Threshold},
		{"required_duration_seconds", original.RequiredDurationSeconds, recomputed.RequiredDurationSeconds},
	}
	for _, field := range exactFields {
		if field.original != field.recomputed {
			discrepancies = append(discrepancies,
				fmt.Sprintf("%s: original=%v recomputed=%v", field.name, field.original, field.recomputed))
		}
	}

	toleranceFields := []struct {
		name                 string
		original, recomputed float64
	}{
		{"achieved_duration_seconds", original.AchievedDurationSeconds, recomputed.AchievedDurationSeconds},
		{"max_value", original.MaxValue, recomputed.MaxValue},
		{"min_value", original.MinValue, recomputed.MinValue},
	}
	for _, field := range toleranceFields {
		if math.Abs(field.original-field.recomputed) > Tolerance {
			discrepancies = append(discrepancies,
				fmt.Sprintf("%s: original=%v recomputed=%v exceeds tolerance %v",
					field.name, field.original, field.recomputed, Tolerance))
		}
	}

	discrepancies = append(discrepancies, compareReasons(original.Reasons, recomputed.Reasons)...)

	return len(discrepancies) == 0, discrepancies
}

// compareReasons reports one-sided differences between the two
// free-text reason lists, order-independently.
func compareReasons(original, recomputed []string) []string {
	originalSet := make(map[string]bool, len(original))
	for _, reason := range original {
		originalSet[reason] = true
	}
	recomputedSet := make(map[string]bool, len(recomputed))
	for _, reason := range recomputed {
		recomputedSet[reason] = true
	}

	var differences []string
	for reason := range originalSet {
		if !recomputedSet[reason] {
			differences = append(differences, fmt.Sprintf("reason only in original: %q", reason))
		}
	}
	for reason := range recomputedSet {
		if !originalSet[reason] {
			differences = append(differences, fmt.Sprintf("reason only in recomputed: %q", reason))
		}
	}
	sort.Strings(differences)
	return differences
}
