// Copyright 2026 The Sealbox Authors
// SPDX-License-Identifier: Apache-2.0

package validation

import (
	"encoding/json"
	"fmt"
)

// Specification is the process specification a run was validated
// against. Only the fields the verifier's collaborators consume are
// modeled; producers may include more.
type Specification struct {
	// Name identifies the process or equipment under validation.
	Name string `json:"name"`

	// AllowedGaps is the number of missing samples the normalizer may
	// bridge before the series is considered broken.
	AllowedGaps int `json:"allowed_gaps"`

	// MaxSamplePeriodSeconds is the maximum spacing between raw
	// samples the normalizer accepts.
	MaxSamplePeriodSeconds float64 `json:"max_sample_period_seconds"`

	// TargetValue is the process value the run must reach.
	TargetValue float64 `json:"target_value"`

	// HoldSeconds is how long the value must be held at target.
	HoldSeconds float64 `json:"hold_seconds"`
}

// ParseSpecification decodes and validates specification JSON.
func ParseSpecification(data []byte) (*Specification, error) {
	var spec Specification
	if err := json.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("parsing specification: %w", err)
	}
	if spec.AllowedGaps < 0 {
		return nil, fmt.Errorf("specification: allowed_gaps %d is negative", spec.AllowedGaps)
	}
	if spec.MaxSamplePeriodSeconds <= 0 {
		return nil, fmt.Errorf("specification: max_sample_period_seconds %v is not positive", spec.MaxSamplePeriodSeconds)
	}
	return &spec, nil
}
