// Copyright 2026 The Sealbox Authors
// SPDX-License-Identifier: Apache-2.0

package bundle

import (
	"archive/zip"
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestExtractRoundtrip(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "bundle.zip")
	if _, err := Pack(writeRunInputs(t, dir), out, nil, true); err != nil {
		t.Fatal(err)
	}

	dest := filepath.Join(dir, "work")
	extracted, err := Extract(out, dest)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if len(extracted) != len(PayloadEntries)+1 {
		t.Fatalf("extracted %d files, want %d", len(extracted), len(PayloadEntries)+1)
	}
	for _, entry := range append(append([]string{}, PayloadEntries...), EntryManifest) {
		path, ok := extracted[entry]
		if !ok {
			t.Errorf("entry %s missing from extraction map", entry)
			continue
		}
		if !strings.HasPrefix(path, dest) {
			t.Errorf("entry %s extracted outside destination: %s", entry, path)
		}
		if _, err := os.Stat(path); err != nil {
			t.Errorf("entry %s not on disk: %v", entry, err)
		}
	}
}

func TestExtractAllocatesTempDir(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "bundle.zip")
	if _, err := Pack(writeRunInputs(t, dir), out, nil, true); err != nil {
		t.Fatal(err)
	}

	extracted, err := Extract(out, "")
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	workDir := filepath.Dir(extracted[EntryManifest])
	defer os.RemoveAll(workDir)
	if !strings.Contains(filepath.Base(workDir), "sealbox-extract-") {
		t.Errorf("unexpected temp dir name %s", workDir)
	}
}

func TestExtractMissingBundle(t *testing.T) {
	_, err := Extract(filepath.Join(t.TempDir(), "absent.zip"), "")
	if !errors.Is(err, ErrBundleNotFound) {
		t.Fatalf("err = %v, want ErrBundleNotFound", err)
	}
}

func TestExtractRejectsCorruptArchive(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "bundle.zip")
	if _, err := Pack(writeRunInputs(t, dir), out, nil, true); err != nil {
		t.Fatal(err)
	}

	// Flip one byte in the middle of the archive. Depending on where
	// it lands this breaks either an entry's CRC or the archive
	// structure; both must be rejected before any entry is trusted.
	raw, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	raw[len(raw)/3] ^= 0x01
	if err := os.WriteFile(out, raw, 0o644); err != nil {
		t.Fatal(err)
	}

	dest := filepath.Join(dir, "work")
	if _, err := Extract(out, dest); err == nil {
		t.Fatal("Extract of a corrupted archive should fail")
	}
}

// hostileArchive builds a zip with a single attacker-controlled entry
// name.
func hostileArchive(t *testing.T, entryName string) string {
	t.Helper()
	var buffer bytes.Buffer
	writer := zip.NewWriter(&buffer)
	entry, err := writer.Create(entryName)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := entry.Write([]byte("owned")); err != nil {
		t.Fatal(err)
	}
	if err := writer.Close(); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "hostile.zip")
	if err := os.WriteFile(path, buffer.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestExtractRejectsTraversalEntries(t *testing.T) {
	for _, name := range []string{
		"../escape.txt",
		"inputs/../../escape.txt",
		"/etc/passwd",
		`inputs\..\escape.txt`,
	} {
		t.Run(name, func(t *testing.T) {
			dest := t.TempDir()
			if _, err := Extract(hostileArchive(t, name), dest); err == nil {
				t.Fatalf("entry %q should be rejected", name)
			}
			// Nothing may have been written anywhere under dest.
			entries, err := os.ReadDir(dest)
			if err != nil {
				t.Fatal(err)
			}
			if len(entries) != 0 {
				t.Errorf("rejected archive still wrote %d entries", len(entries))
			}
		})
	}
}
