// Copyright 2026 The Sealbox Authors
// SPDX-License-Identifier: Apache-2.0

// Package storage defines the on-disk layout of archived evidence
// bundles: a two-character hex shard directory derived from the job
// identifier, then one directory per job holding the bundle and an
// optional metadata.json. The packer's caller creates these
// directories; the retention subsystem reads and destroys them.
package storage

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/jsonc"
	"github.com/zeebo/blake3"

	"github.com/sealbox-foundation/sealbox/lib/schema/validation"
)

// shardDomainKey is the BLAKE3 keyed-hash domain for shard derivation.
// Fixed constant — changing it relocates every stored artifact. The
// bytes are the ASCII domain name, zero-padded to 32 bytes, so the key
// is inspectable in hex dumps.
var shardDomainKey = [32]byte{
	's', 'e', 'a', 'l', 'b', 'o', 'x', '.', 's', 't', 'o', 'r', 'a', 'g', 'e', '.',
	's', 'h', 'a', 'r', 'd', 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
}

// MetadataFileName is the optional per-artifact metadata file.
const MetadataFileName = "metadata.json"

// ShardPrefix derives the two-character lowercase-hex shard directory
// name for a job identifier: the first byte of a domain-keyed BLAKE3
// hash. Spreads artifacts evenly across 256 directories regardless of
// job-ID structure.
func ShardPrefix(jobID string) string {
	hasher, err := blake3.NewKeyed(shardDomainKey[:])
	if err != nil {
		panic("storage: BLAKE3 keyed hash initialization failed: " + err.Error())
	}
	hasher.Write([]byte(jobID))
	sum := hasher.Sum(nil)
	return hex.EncodeToString(sum[:1])
}

// ArtifactDir returns the directory an artifact for jobID occupies
// under the storage root.
func ArtifactDir(root, jobID string) string {
	return filepath.Join(root, ShardPrefix(jobID), jobID)
}

// ReadMetadata loads the optional metadata.json inside an artifact
// directory. A missing file is not an error and yields nil. The file
// is parsed comment-tolerantly: operators annotate these by hand.
func ReadMetadata(artifactDir string) (*validation.ArtifactMetadata, error) {
	data, err := os.ReadFile(filepath.Join(artifactDir, MetadataFileName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading artifact metadata: %w", err)
	}

	var metadata validation.ArtifactMetadata
	if err := json.Unmarshal(jsonc.ToJSON(data), &metadata); err != nil {
		return nil, fmt.Errorf("parsing artifact metadata: %w", err)
	}
	return &metadata, nil
}

// IsSafe reports whether candidate, after resolving symlinks in both
// paths, remains contained within base. Any resolution failure is
// treated as unsafe — deletion gates on this, so it fails closed.
func IsSafe(candidate, base string) bool {
	resolvedBase, err := filepath.EvalSymlinks(base)
	if err != nil {
		return false
	}
	resolvedCandidate, err := filepath.EvalSymlinks(candidate)
	if err != nil {
		return false
	}
	relative, err := filepath.Rel(resolvedBase, resolvedCandidate)
	if err != nil {
		return false
	}
	if relative == "." {
		// The base itself is never a deletable candidate.
		return false
	}
	return relative != ".." && !strings.HasPrefix(relative, ".."+string(filepath.Separator))
}
