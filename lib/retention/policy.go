// Copyright 2026 The Sealbox Authors
// SPDX-License-Identifier: Apache-2.0

package retention

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/tidwall/jsonc"

	"github.com/sealbox-foundation/sealbox/lib/schema/validation"
)

// LiveQAFloorDays is the minimum retention period for artifacts tagged
// live-qa. The floor applies regardless of how short the configured
// retention period is.
const LiveQAFloorDays = 7

// PolicyTable maps a policy tag to its retention floor in days.
type PolicyTable map[string]int

// DefaultPolicyTable returns the built-in table: only the live-qa tag.
func DefaultPolicyTable() PolicyTable {
	return PolicyTable{validation.PolicyTagLiveQA: LiveQAFloorDays}
}

// LoadPolicyTable reads a policies.jsonc table of tag → floor-days and
// merges it over the defaults. Operators annotate these files by hand,
// so comments are tolerated. The built-in live-qa floor cannot be
// lowered below its fixed value.
func LoadPolicyTable(path string) (PolicyTable, error) {
	table := DefaultPolicyTable()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading policy table %s: %w", path, err)
	}
	var loaded map[string]int
	if err := json.Unmarshal(jsonc.ToJSON(data), &loaded); err != nil {
		return nil, fmt.Errorf("parsing policy table %s: %w", path, err)
	}

	for tag, floorDays := range loaded {
		if tag == validation.PolicyTagLiveQA && floorDays < LiveQAFloorDays {
			continue
		}
		if floorDays > 0 {
			table[tag] = floorDays
		}
	}
	return table, nil
}

// floorDays returns the retention floor for an artifact's metadata, or
// zero when no tagged policy applies. A nil metadata (no metadata.json
// next to the bundle) carries no floor.
func (t PolicyTable) floorDays(metadata *validation.ArtifactMetadata) int {
	if metadata == nil || metadata.PolicyTag == "" {
		return 0
	}
	return t[metadata.PolicyTag]
}

// effectiveRetentionDays applies the policy floor to the configured
// retention period: the larger of the two wins.
func (t PolicyTable) effectiveRetentionDays(configured int, metadata *validation.ArtifactMetadata) int {
	if floor := t.floorDays(metadata); floor > configured {
		return floor
	}
	return configured
}
