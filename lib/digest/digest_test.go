// Copyright 2026 The Sealbox Authors
// SPDX-License-Identifier: Apache-2.0

package digest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestHashBytesKnownVector(t *testing.T) {
	// SHA-256 of the empty string is a published constant.
	got := HashBytes(nil).String()
	want := "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
	if got != want {
		t.Errorf("HashBytes(nil) = %s, want %s", got, want)
	}

	got = HashBytes([]byte("abc")).String()
	want = "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"
	if got != want {
		t.Errorf("HashBytes(abc) = %s, want %s", got, want)
	}
}

func TestHashFileMatchesHashBytes(t *testing.T) {
	content := []byte(strings.Repeat("temperature,42.1\n", 50_000))
	path := filepath.Join(t.TempDir(), "raw_data.csv")
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatal(err)
	}

	fromFile, err := HashFile(path)
	if err != nil {
		t.Fatalf("HashFile failed: %v", err)
	}
	if fromFile != HashBytes(content) {
		t.Error("HashFile digest diverges from HashBytes over identical content")
	}
}

func TestHashFileMissing(t *testing.T) {
	_, err := HashFile(filepath.Join(t.TempDir(), "absent"))
	if err == nil {
		t.Fatal("HashFile on a missing file should fail")
	}
}

func TestParseRoundtrip(t *testing.T) {
	original := HashBytes([]byte("evidence"))
	parsed, err := Parse(original.String())
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if parsed != original {
		t.Error("Parse(String()) is not the identity")
	}
}

func TestParseRejectsBadInput(t *testing.T) {
	for _, input := range []string{"", "zz", "abcd", strings.Repeat("g", 64)} {
		if _, err := Parse(input); err == nil {
			t.Errorf("Parse(%q) should fail", input)
		}
	}
}
