// Copyright 2026 The Sealbox Authors
// SPDX-License-Identifier: Apache-2.0

package bundle

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Extract unpacks the archive at bundlePath and returns a map from
// archive path to extracted on-disk path. If destDir is empty, a
// private temporary directory is allocated; its cleanup is the
// caller's responsibility either way.
//
// Before any entry is written to disk, every entry is fully read once
// so the archive's internal CRC32 checksums are verified — a corrupt
// archive is rejected whole rather than partially extracted. Entry
// names are screened for traversal: absolute paths, parent-directory
// segments, backslashes, and volume prefixes are all rejected before
// any write.
//
// Extract never mutates the source archive.
func Extract(bundlePath, destDir string) (map[string]string, error) {
	if _, err := os.Stat(bundlePath); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrBundleNotFound, bundlePath)
		}
		return nil, fmt.Errorf("checking bundle: %w", err)
	}

	reader, err := zip.OpenReader(bundlePath)
	if err != nil {
		return nil, fmt.Errorf("opening bundle %s: %w", bundlePath, err)
	}
	defer reader.Close()

	// Self-test pass: read every entry to EOF so the zip layer checks
	// each CRC, and screen every name, before trusting anything.
	for _, entry := range reader.File {
		if err := checkEntryName(entry.Name); err != nil {
			return nil, err
		}
		if err := verifyEntryCRC(entry); err != nil {
			return nil, err
		}
	}

	if destDir == "" {
		destDir, err = os.MkdirTemp("", "sealbox-extract-*")
		if err != nil {
			return nil, fmt.Errorf("allocating extraction directory: %w", err)
		}
	}

	extracted := make(map[string]string, len(reader.File))
	for _, entry := range reader.File {
		if entry.FileInfo().IsDir() {
			continue
		}
		target := filepath.Join(destDir, filepath.FromSlash(entry.Name))
		if err := writeEntry(entry, target); err != nil {
			return nil, err
		}
		extracted[entry.Name] = target
	}
	return extracted, nil
}

// checkEntryName rejects entry names that could escape the extraction
// directory. Fail closed: anything suspicious is an error.
func checkEntryName(name string) error {
	if name == "" {
		return fmt.Errorf("unsafe archive entry: empty name")
	}
	if strings.Contains(name, `\`) {
		return fmt.Errorf("unsafe archive entry %q: backslash in path", name)
	}
	if strings.HasPrefix(name, "/") || filepath.IsAbs(name) || filepath.VolumeName(name) != "" {
		return fmt.Errorf("unsafe archive entry %q: absolute path", name)
	}
	for _, segment := range strings.Split(name, "/") {
		if segment == ".." {
			return fmt.Errorf("unsafe archive entry %q: parent-directory segment", name)
		}
	}
	return nil
}

// verifyEntryCRC reads the entry to EOF, which makes the zip reader
// check the stored CRC32 against the decompressed bytes.
func verifyEntryCRC(entry *zip.File) error {
	reader, err := entry.Open()
	if err != nil {
		return fmt.Errorf("opening entry %s: %w", entry.Name, err)
	}
	defer reader.Close()
	if _, err := io.Copy(io.Discard, reader); err != nil {
		return fmt.Errorf("entry %s failed checksum self-test: %w", entry.Name, err)
	}
	return nil
}

func writeEntry(entry *zip.File, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", entry.Name, err)
	}
	reader, err := entry.Open()
	if err != nil {
		return fmt.Errorf("opening entry %s: %w", entry.Name, err)
	}
	defer reader.Close()

	out, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("creating %s: %w", target, err)
	}
	if _, err := io.Copy(out, reader); err != nil {
		out.Close()
		return fmt.Errorf("extracting %s: %w", entry.Name, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", target, err)
	}
	return nil
}
