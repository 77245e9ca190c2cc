// Copyright 2026 The Sealbox Authors
// SPDX-License-Identifier: Apache-2.0

package verify

// HashMismatch records one file whose recomputed digest diverged from
// the digest the manifest declares for it.
type HashMismatch struct {
	Path     string `json:"path"`
	Expected string `json:"expected"`
	Actual   string `json:"actual"`
}

// Report is the complete outcome of one verification call. It is
// created fresh per call and never persisted. IsValid is derived once,
// in finalize, from the other fields — no stage writes it directly.
type Report struct {
	BundleExists  bool `json:"bundle_exists"`
	ManifestFound bool `json:"manifest_found"`
	ManifestValid bool `json:"manifest_valid"`
	RootHashValid bool `json:"root_hash_valid"`

	FilesTotal     int            `json:"files_total"`
	FilesVerified  int            `json:"files_verified"`
	MissingFiles   []string       `json:"missing_files"`
	HashMismatches []HashMismatch `json:"hash_mismatches"`

	// ExtraFiles lists extracted paths the manifest does not track.
	// Informational only: extra files never fail verification.
	ExtraFiles []string `json:"extra_files"`

	DecisionRecomputed    bool     `json:"decision_recomputed"`
	DecisionMatches       bool     `json:"decision_matches"`
	DecisionDiscrepancies []string `json:"decision_discrepancies"`

	Issues   []string `json:"issues"`
	Warnings []string `json:"warnings"`

	IsValid bool `json:"is_valid"`
}

// stageOutcomes accumulates what each verification stage produced.
// finalize folds it into the immutable Report handed to the caller.
type stageOutcomes struct {
	bundleExists bool
	integrity    integrityResult
	decision     decisionOutcome
	warnings     []string
	issues       []string
}

// finalize derives the report from the folded stage outcomes. IsValid
// is the conjunction of: the bundle exists, the manifest was found and
// parsed, the root hash matches, every listed file verified with zero
// missing or mismatched, the decision either was not recomputed or
// matched, and no hard issues were recorded. Timestamp-check outcomes
// are warnings and deliberately excluded.
func finalize(outcomes stageOutcomes) *Report {
	integrity := outcomes.integrity

	report := &Report{
		BundleExists:   outcomes.bundleExists,
		ManifestFound:  integrity.manifestFound,
		ManifestValid:  integrity.manifestValid,
		RootHashValid:  integrity.rootHashValid,
		FilesTotal:     integrity.filesTotal,
		FilesVerified:  integrity.filesVerified,
		MissingFiles:   integrity.missingFiles,
		HashMismatches: integrity.hashMismatches,
		ExtraFiles:     integrity.extraFiles,

		DecisionRecomputed:    outcomes.decision.recomputed,
		DecisionMatches:       outcomes.decision.matches,
		DecisionDiscrepancies: outcomes.decision.discrepancies,

		Issues:   append(append([]string{}, outcomes.issues...), integrity.issues...),
		Warnings: outcomes.warnings,
	}
	report.Issues = append(report.Issues, outcomes.decision.issues...)

	decisionAcceptable := !report.DecisionRecomputed || report.DecisionMatches

	report.IsValid = report.BundleExists &&
		report.ManifestFound &&
		report.ManifestValid &&
		report.RootHashValid &&
		report.FilesVerified == report.FilesTotal &&
		len(report.MissingFiles) == 0 &&
		len(report.HashMismatches) == 0 &&
		decisionAcceptable &&
		len(report.Issues) == 0

	return report
}
