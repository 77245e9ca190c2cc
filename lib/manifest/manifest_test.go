// Copyright 2026 The Sealbox Authors
// SPDX-License-Identifier: Apache-2.0

package manifest

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/sealbox-foundation/sealbox/lib/digest"
)

// writeInput creates a file and returns a manifest Input for it.
func writeInput(t *testing.T, dir, archivePath, name string, content []byte) Input {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatal(err)
	}
	return Input{
		ArchivePath: archivePath,
		SourcePath:  path,
		Digest:      digest.HashBytes(content),
	}
}

func TestBuildRecordsSizeAndDigest(t *testing.T) {
	dir := t.TempDir()
	content := []byte("t,v\n0,1.0\n")
	input := writeInput(t, dir, "inputs/raw_data.csv", "raw.csv", content)

	m, err := Build([]Input{input}, map[string]string{"job": "j-1"}, true)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	entry, ok := m.Files["inputs/raw_data.csv"]
	if !ok {
		t.Fatal("entry for inputs/raw_data.csv missing")
	}
	if entry.SizeBytes != int64(len(content)) {
		t.Errorf("SizeBytes = %d, want %d", entry.SizeBytes, len(content))
	}
	if entry.SHA256 != digest.HashBytes(content).String() {
		t.Error("entry digest does not match content")
	}
	if entry.SourceName != "raw.csv" {
		t.Errorf("SourceName = %q, want raw.csv", entry.SourceName)
	}
	if m.Metadata["job"] != "j-1" {
		t.Error("caller metadata not carried through")
	}
}

func TestBuildDeterministicPinnedTimestamp(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, dir, "inputs/raw_data.csv", "raw.csv", []byte("x"))

	first, err := Build([]Input{input}, nil, true)
	if err != nil {
		t.Fatal(err)
	}
	second, err := Build([]Input{input}, nil, true)
	if err != nil {
		t.Fatal(err)
	}

	firstBytes, err := first.Encode()
	if err != nil {
		t.Fatal(err)
	}
	secondBytes, err := second.Encode()
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(firstBytes, secondBytes) {
		t.Error("two deterministic builds over identical inputs encode differently")
	}
	if !first.CreatedAt.Equal(deterministicCreatedAt) {
		t.Errorf("CreatedAt = %v, want pinned constant", first.CreatedAt)
	}
}

func TestBuildMissingSource(t *testing.T) {
	_, err := Build([]Input{{
		ArchivePath: "inputs/raw_data.csv",
		SourcePath:  filepath.Join(t.TempDir(), "absent"),
	}}, nil, true)
	if err == nil {
		t.Fatal("Build with a missing source file should fail")
	}
}

func TestRootHashOrderIndependence(t *testing.T) {
	// RootHash sorts by path internally, so insertion order into the
	// map must not matter — and a digest change must change the root.
	a := FileEntry{SHA256: digest.HashBytes([]byte("a")).String()}
	b := FileEntry{SHA256: digest.HashBytes([]byte("b")).String()}

	forward := RootHash(map[string]FileEntry{"p1": a, "p2": b})
	reverse := RootHash(map[string]FileEntry{"p2": b, "p1": a})
	if forward != reverse {
		t.Error("root hash depends on map construction order")
	}

	mutated := RootHash(map[string]FileEntry{
		"p1": {SHA256: digest.HashBytes([]byte("a'")).String()},
		"p2": b,
	})
	if mutated == forward {
		t.Error("changing one digest did not change the root hash")
	}
}

func TestEncodeParseRoundtrip(t *testing.T) {
	dir := t.TempDir()
	inputs := []Input{
		writeInput(t, dir, "inputs/raw_data.csv", "raw.csv", []byte("csv")),
		writeInput(t, dir, "outputs/decision.json", "decision.json", []byte("{}")),
	}
	original, err := Build(inputs, map[string]string{"operator": "qa"}, true)
	if err != nil {
		t.Fatal(err)
	}

	encoded, err := original.Encode()
	if err != nil {
		t.Fatal(err)
	}
	parsed, err := Parse(encoded)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if diff := cmp.Diff(original, parsed); diff != "" {
		t.Errorf("round-trip mismatch (-want +got):\n%s", diff)
	}
}

func TestParseRejectsBadManifests(t *testing.T) {
	cases := map[string]string{
		"not json":        "{",
		"wrong version":   `{"version":"2.0","files":{},"root_hash":"x"}`,
		"no files":        `{"version":"1.0","root_hash":"x"}`,
		"no root hash":    `{"version":"1.0","files":{}}`,
		"invalid digest":  `{"version":"1.0","files":{"p":{"sha256":"zz"}},"root_hash":"x"}`,
		"truncated input": "",
	}
	for name, input := range cases {
		if _, err := Parse([]byte(input)); err == nil {
			t.Errorf("%s: Parse should fail", name)
		}
	}
}
