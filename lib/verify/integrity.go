// Copyright 2026 The Sealbox Authors
// SPDX-License-Identifier: Apache-2.0

package verify

import (
	"fmt"
	"os"
	"sort"

	"github.com/sealbox-foundation/sealbox/lib/bundle"
	"github.com/sealbox-foundation/sealbox/lib/digest"
	"github.com/sealbox-foundation/sealbox/lib/manifest"
)

// integrityResult is the outcome of the integrity stage over an
// extracted file set.
type integrityResult struct {
	manifestFound  bool
	manifestValid  bool
	rootHashValid  bool
	filesTotal     int
	filesVerified  int
	missingFiles   []string
	hashMismatches []HashMismatch
	extraFiles     []string
	issues         []string

	// parsed is the manifest, for downstream stages. Nil when the
	// manifest was absent or invalid.
	parsed *manifest.Manifest
}

// checkIntegrity re-hashes the extracted content and compares it
// against the manifest. Problems with the data are recorded in the
// result, never returned as errors — a bad bundle is a finding, not a
// failure of the verifier.
func checkIntegrity(extracted map[string]string) integrityResult {
	var result integrityResult

	manifestPath, ok := extracted[bundle.EntryManifest]
	if !ok {
		result.issues = append(result.issues, "manifest.json missing from bundle")
		return result
	}
	result.manifestFound = true

	manifestBytes, err := os.ReadFile(manifestPath)
	if err != nil {
		result.issues = append(result.issues, fmt.Sprintf("reading manifest: %v", err))
		return result
	}
	parsed, err := manifest.Parse(manifestBytes)
	if err != nil {
		result.issues = append(result.issues, fmt.Sprintf("invalid manifest: %v", err))
		return result
	}
	result.manifestValid = true
	result.parsed = parsed
	result.filesTotal = len(parsed.Files)

	// Per-file digest comparison, in sorted order for stable reports.
	// The digests recomputed here also feed the root-hash check below,
	// so a single flipped bit in any listed file fails both.
	paths := make([]string, 0, len(parsed.Files))
	for path := range parsed.Files {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	recomputed := make(map[string]manifest.FileEntry, len(parsed.Files))
	for _, path := range paths {
		entry := parsed.Files[path]
		// Fall back to the listed digest when the file cannot be
		// rehashed; missing files fail verification on their own.
		recomputed[path] = entry

		extractedPath, present := extracted[path]
		if !present {
			result.missingFiles = append(result.missingFiles, path)
			continue
		}
		actual, err := digest.HashFile(extractedPath)
		if err != nil {
			result.issues = append(result.issues, fmt.Sprintf("hashing %s: %v", path, err))
			continue
		}
		if actual.String() != entry.SHA256 {
			entry.SHA256 = actual.String()
			recomputed[path] = entry
			result.hashMismatches = append(result.hashMismatches, HashMismatch{
				Path:     path,
				Expected: parsed.Files[path].SHA256,
				Actual:   actual.String(),
			})
			continue
		}
		result.filesVerified++
	}

	// Root hash over the recomputed digests must reproduce the stored
	// root. Every listed file contributes, so this is the aggregate
	// tamper signal alongside the per-file mismatches.
	result.rootHashValid = manifest.RootHash(recomputed) == parsed.RootHash
	if !result.rootHashValid {
		result.issues = append(result.issues, "root hash does not match recomputed file digests")
	}

	// Extra files are informational, never a failure condition. The
	// manifest itself is expected and not counted.
	extraCandidates := make([]string, 0, len(extracted))
	for path := range extracted {
		if path == bundle.EntryManifest {
			continue
		}
		if _, listed := parsed.Files[path]; !listed {
			extraCandidates = append(extraCandidates, path)
		}
	}
	sort.Strings(extraCandidates)
	result.extraFiles = extraCandidates

	return result
}

// valid reports whether the integrity stage passed overall: every
// listed file counted, zero mismatches, zero missing, root hash
// matches.
func (r integrityResult) valid() bool {
	return r.manifestFound && r.manifestValid && r.rootHashValid &&
		r.filesVerified == r.filesTotal &&
		len(r.missingFiles) == 0 && len(r.hashMismatches) == 0
}
