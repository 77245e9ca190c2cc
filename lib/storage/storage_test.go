// Copyright 2026 The Sealbox Authors
// SPDX-License-Identifier: Apache-2.0

package storage

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
)

func TestShardPrefixShape(t *testing.T) {
	pattern := regexp.MustCompile(`^[0-9a-f]{2}$`)
	for _, jobID := range []string{"j-1", "j-2", "", "a very long job identifier 0123456789"} {
		prefix := ShardPrefix(jobID)
		if !pattern.MatchString(prefix) {
			t.Errorf("ShardPrefix(%q) = %q, want two lowercase hex chars", jobID, prefix)
		}
	}
}

func TestShardPrefixStable(t *testing.T) {
	if ShardPrefix("j-1") != ShardPrefix("j-1") {
		t.Error("shard prefix must be deterministic")
	}
}

func TestArtifactDirLayout(t *testing.T) {
	dir := ArtifactDir("/srv/sealbox", "j-42")
	want := filepath.Join("/srv/sealbox", ShardPrefix("j-42"), "j-42")
	if dir != want {
		t.Errorf("ArtifactDir = %s, want %s", dir, want)
	}
}

func TestReadMetadata(t *testing.T) {
	dir := t.TempDir()
	content := "{\n  // tagged by QA\n  \"job_id\": \"j-1\",\n  \"policy_tag\": \"live-qa\"\n}\n"
	if err := os.WriteFile(filepath.Join(dir, MetadataFileName), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	metadata, err := ReadMetadata(dir)
	if err != nil {
		t.Fatalf("ReadMetadata failed: %v", err)
	}
	if metadata == nil || metadata.PolicyTag != "live-qa" {
		t.Errorf("metadata = %+v, want live-qa tag", metadata)
	}
}

func TestReadMetadataAbsent(t *testing.T) {
	metadata, err := ReadMetadata(t.TempDir())
	if err != nil {
		t.Fatalf("absent metadata should not error: %v", err)
	}
	if metadata != nil {
		t.Errorf("metadata = %+v, want nil", metadata)
	}
}

func TestReadMetadataMalformed(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, MetadataFileName), []byte("{broken"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadMetadata(dir); err == nil {
		t.Fatal("malformed metadata should error")
	}
}

func TestIsSafeContainment(t *testing.T) {
	base := t.TempDir()
	inside := filepath.Join(base, "ab", "j-1")
	if err := os.MkdirAll(inside, 0o755); err != nil {
		t.Fatal(err)
	}

	if !IsSafe(inside, base) {
		t.Error("contained path should be safe")
	}
	if IsSafe(base, base) {
		t.Error("the base itself is not a deletable candidate")
	}
	if IsSafe(filepath.Dir(base), base) {
		t.Error("parent of base should be unsafe")
	}
	if IsSafe(filepath.Join(base, "missing"), base) {
		t.Error("unresolvable candidate should be unsafe (fail closed)")
	}
}

func TestIsSafeSymlinkEscape(t *testing.T) {
	base := t.TempDir()
	outside := t.TempDir()
	escapeLink := filepath.Join(base, "ab")
	if err := os.Symlink(outside, escapeLink); err != nil {
		t.Fatal(err)
	}

	if IsSafe(escapeLink, base) {
		t.Error("symlink resolving outside the base should be unsafe")
	}
	if !strings.HasPrefix(escapeLink, base) {
		t.Fatal("test setup: link must lexically sit under base")
	}
}
