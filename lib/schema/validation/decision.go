// Copyright 2026 The Sealbox Authors
// SPDX-License-Identifier: Apache-2.0

package validation

import (
	"encoding/json"
	"fmt"
)

// Decision is the pass/fail verdict of the external decision engine
// over a normalized series and its specification.
type Decision struct {
	// Pass is the overall verdict.
	Pass bool `json:"pass"`

	// TargetValue is the target the decision was evaluated against.
	TargetValue float64 `json:"target_value"`

	// Threshold is the computed acceptance threshold (target minus
	// the engine's tolerance band).
	Threshold float64 `json:"threshold"`

	// RequiredDurationSeconds is how long the value had to hold.
	RequiredDurationSeconds float64 `json:"required_duration_seconds"`

	// AchievedDurationSeconds is how long it actually held.
	AchievedDurationSeconds float64 `json:"achieved_duration_seconds"`

	// MaxValue and MinValue are the observed extremes.
	MaxValue float64 `json:"max_value"`
	MinValue float64 `json:"min_value"`

	// Reasons lists the engine's free-text findings. Order carries no
	// meaning.
	Reasons []string `json:"reasons"`
}

// ParseDecision decodes decision JSON.
func ParseDecision(data []byte) (*Decision, error) {
	var decision Decision
	if err := json.Unmarshal(data, &decision); err != nil {
		return nil, fmt.Errorf("parsing decision: %w", err)
	}
	return &decision, nil
}
