// Copyright 2026 The Sealbox Authors
// SPDX-License-Identifier: Apache-2.0

package validation

// PolicyTagLiveQA marks a stored artifact as belonging to a live
// quality-assurance job. Tagged artifacts keep a minimum retention
// floor regardless of the configured retention period.
const PolicyTagLiveQA = "live-qa"

// ArtifactMetadata is the optional metadata.json written next to a
// stored bundle by the packer's caller. The retention scanner is its
// only consumer inside this repository.
type ArtifactMetadata struct {
	// JobID is the job identifier the artifact directory is named by.
	JobID string `json:"job_id"`

	// PolicyTag selects a retention policy ("live-qa" raises the
	// retention floor). Empty means the global default applies.
	PolicyTag string `json:"policy_tag,omitempty"`

	// Operator is the person or system that produced the run.
	Operator string `json:"operator,omitempty"`
}
