// Copyright 2026 The Sealbox Authors
// SPDX-License-Identifier: Apache-2.0

// Package manifest builds and parses the JSON index at the heart of an
// evidence bundle: one entry per bundled file carrying its SHA-256
// digest and size, plus an aggregate root hash over all per-file
// digests. Any mutation of a listed file's bytes invalidates the root
// hash without changing the manifest itself — that divergence is the
// tamper signal.
package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/sealbox-foundation/sealbox/lib/digest"
)

// Version is the manifest schema version written by this package.
const Version = "1.0"

// deterministicCreatedAt is the pinned creation timestamp used in
// deterministic mode. Pinning it (together with the packer's fixed
// entry timestamps) makes byte-identical inputs produce byte-identical
// archives.
var deterministicCreatedAt = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

// FileEntry describes one bundled file.
type FileEntry struct {
	// SHA256 is the lowercase-hex content digest.
	SHA256 string `json:"sha256"`

	// SizeBytes is the file size measured at manifest-build time.
	SizeBytes int64 `json:"size_bytes"`

	// SourceName is the base name of the source file the entry was
	// packed from. Informational only; verification keys on the
	// archive path.
	SourceName string `json:"source_name"`
}

// Manifest is the bundle index. Files maps archive paths (forward
// slashes, relative) to their entries.
type Manifest struct {
	Version   string               `json:"version"`
	CreatedAt time.Time            `json:"created_at"`
	Metadata  map[string]string    `json:"metadata"`
	Files     map[string]FileEntry `json:"files"`
	RootHash  string               `json:"root_hash"`
}

// Input is one file to be listed in a manifest.
type Input struct {
	// ArchivePath is the path the file will occupy inside the bundle.
	ArchivePath string

	// SourcePath is the on-disk file the entry is built from.
	SourcePath string

	// Digest is the precomputed content digest of SourcePath.
	Digest digest.Digest
}

// Build assembles a manifest from the given inputs. Each entry's size
// is read from its source file now, not re-measured later. When
// deterministic is true, CreatedAt is pinned to a fixed constant;
// otherwise it is the current UTC time.
func Build(inputs []Input, metadata map[string]string, deterministic bool) (*Manifest, error) {
	files := make(map[string]FileEntry, len(inputs))
	for _, input := range inputs {
		info, err := os.Stat(input.SourcePath)
		if err != nil {
			return nil, fmt.Errorf("measuring %s: %w", input.SourcePath, err)
		}
		files[input.ArchivePath] = FileEntry{
			SHA256:     input.Digest.String(),
			SizeBytes:  info.Size(),
			SourceName: info.Name(),
		}
	}

	createdAt := deterministicCreatedAt
	if !deterministic {
		createdAt = time.Now().UTC()
	}
	if metadata == nil {
		metadata = map[string]string{}
	}

	return &Manifest{
		Version:   Version,
		CreatedAt: createdAt,
		Metadata:  metadata,
		Files:     files,
		RootHash:  RootHash(files),
	}, nil
}

// RootHash computes the aggregate fingerprint: archive paths are
// sorted, their lowercase-hex digests concatenated in that order, and
// the concatenation hashed. Every listed file contributes, so a single
// flipped bit anywhere in the bundle changes the root.
//
// This is the primary formula. A legacy line-oriented format
// ("algorithm size path") exists in older tooling and is deliberately
// not supported — bundles must not be cross-verified between the two.
func RootHash(files map[string]FileEntry) string {
	paths := make([]string, 0, len(files))
	for path := range files {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	var concatenated []byte
	for _, path := range paths {
		concatenated = append(concatenated, files[path].SHA256...)
	}
	return digest.HashBytes(concatenated).String()
}

// Encode serializes the manifest as deterministic JSON: fixed struct
// field order, lexicographically sorted map keys (encoding/json's map
// behavior), two-space indentation, trailing newline. Identical
// manifests always encode to identical bytes.
func (m *Manifest) Encode() ([]byte, error) {
	encoded, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding manifest: %w", err)
	}
	return append(encoded, '\n'), nil
}

// Parse decodes and validates manifest JSON. The version must match,
// and the files map and root hash must be present.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}
	if m.Version != Version {
		return nil, fmt.Errorf("unsupported manifest version %q, want %q", m.Version, Version)
	}
	if m.Files == nil {
		return nil, fmt.Errorf("manifest has no files map")
	}
	if m.RootHash == "" {
		return nil, fmt.Errorf("manifest has no root hash")
	}
	for path, entry := range m.Files {
		if _, err := digest.Parse(entry.SHA256); err != nil {
			return nil, fmt.Errorf("manifest entry %s: %w", path, err)
		}
	}
	return &m, nil
}
