// Copyright 2026 The Sealbox Authors
// SPDX-License-Identifier: Apache-2.0

package bundle

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/klauspost/compress/flate"

	"github.com/sealbox-foundation/sealbox/lib/digest"
	"github.com/sealbox-foundation/sealbox/lib/manifest"
)

// deterministicModTime is the per-entry modification timestamp written
// in deterministic mode: the zip epoch. Combined with fixed permission
// bits, path-sorted entries, a pinned manifest timestamp, and a fixed
// compression level, byte-identical inputs yield byte-identical
// archives.
var deterministicModTime = time.Date(1980, time.January, 1, 0, 0, 0, 0, time.UTC)

// entryMode is the permission bits recorded on every archive entry.
const entryMode = 0o644

// compressionLevel is the Deflate level used for every entry. A single
// fixed level is part of the determinism contract; it never varies by
// content.
const compressionLevel = 6

// Validate checks that each of the six required inputs exists, is a
// regular file, and is readable. All failures are accumulated — a
// caller with three broken inputs sees three errors, not one.
func Validate(inputs Inputs) []error {
	var problems []error
	sources := inputs.Sources()
	for _, entry := range PayloadEntries {
		source := sources[entry]
		if source == "" {
			problems = append(problems, fmt.Errorf("%s: no source file given", entry))
			continue
		}
		info, err := os.Stat(source)
		if err != nil {
			problems = append(problems, fmt.Errorf("%s: %w", entry, err))
			continue
		}
		if !info.Mode().IsRegular() {
			problems = append(problems, fmt.Errorf("%s: %s is not a regular file", entry, source))
			continue
		}
		file, err := os.Open(source)
		if err != nil {
			problems = append(problems, fmt.Errorf("%s: %w", entry, err))
			continue
		}
		file.Close()
	}
	return problems
}

// Pack validates the inputs, hashes them, builds the manifest, and
// writes the archive to outputPath. Returns the output path on
// success. On any failure the error is a *PackError and no file exists
// at outputPath claiming success: the archive is written to a
// temporary sibling path and renamed only once fully written.
func Pack(inputs Inputs, outputPath string, metadata map[string]string, deterministic bool) (string, error) {
	if problems := Validate(inputs); len(problems) > 0 {
		return "", &PackError{Problems: problems}
	}

	sources := inputs.Sources()
	manifestInputs := make([]manifest.Input, 0, len(PayloadEntries))
	for _, entry := range PayloadEntries {
		fileDigest, err := digest.HashFile(sources[entry])
		if err != nil {
			return "", &PackError{Problems: []error{err}}
		}
		manifestInputs = append(manifestInputs, manifest.Input{
			ArchivePath: entry,
			SourcePath:  sources[entry],
			Digest:      fileDigest,
		})
	}

	built, err := manifest.Build(manifestInputs, metadata, deterministic)
	if err != nil {
		return "", &PackError{Problems: []error{err}}
	}
	manifestBytes, err := built.Encode()
	if err != nil {
		return "", &PackError{Problems: []error{err}}
	}

	if err := writeArchive(sources, manifestBytes, outputPath, deterministic); err != nil {
		return "", &PackError{Problems: []error{err}}
	}
	return outputPath, nil
}

// writeArchive writes the zip to a temporary path in the output
// directory and renames it into place. The temporary file is removed
// on any failure, so a crashed or failed pack never leaves a file that
// could pass an existence check.
func writeArchive(sources map[string]string, manifestBytes []byte, outputPath string, deterministic bool) (err error) {
	temp, err := os.CreateTemp(filepath.Dir(outputPath), filepath.Base(outputPath)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temporary archive: %w", err)
	}
	tempPath := temp.Name()
	defer func() {
		if err != nil {
			temp.Close()
			os.Remove(tempPath)
		}
	}()

	writer := zip.NewWriter(temp)
	// Fixed-level Deflate for every entry. klauspost/compress produces
	// stable output for a given level, which stock compress/flate does
	// not guarantee across releases.
	writer.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(out, compressionLevel)
	})

	// Payload entries in path-sorted order, manifest last.
	entries := make([]string, 0, len(sources))
	for entry := range sources {
		entries = append(entries, entry)
	}
	sort.Strings(entries)

	for _, entry := range entries {
		if err = copyEntry(writer, entry, sources[entry], deterministic); err != nil {
			return err
		}
	}

	manifestWriter, err := writer.CreateHeader(entryHeader(EntryManifest, deterministic))
	if err != nil {
		return fmt.Errorf("creating %s entry: %w", EntryManifest, err)
	}
	if _, err = manifestWriter.Write(manifestBytes); err != nil {
		return fmt.Errorf("writing %s: %w", EntryManifest, err)
	}

	if err = writer.Close(); err != nil {
		return fmt.Errorf("finalizing archive: %w", err)
	}
	if err = temp.Close(); err != nil {
		return fmt.Errorf("closing temporary archive: %w", err)
	}
	if err = os.Rename(tempPath, outputPath); err != nil {
		return fmt.Errorf("publishing archive: %w", err)
	}
	return nil
}

// entryHeader builds the zip header for one entry. Deterministic mode
// pins the modification time; permission bits are fixed either way.
func entryHeader(name string, deterministic bool) *zip.FileHeader {
	header := &zip.FileHeader{
		Name:   name,
		Method: zip.Deflate,
	}
	header.SetMode(entryMode)
	if deterministic {
		header.Modified = deterministicModTime
	} else {
		header.Modified = time.Now().UTC()
	}
	return header
}

func copyEntry(writer *zip.Writer, entry, source string, deterministic bool) error {
	file, err := os.Open(source)
	if err != nil {
		return fmt.Errorf("opening %s: %w", source, err)
	}
	defer file.Close()

	entryWriter, err := writer.CreateHeader(entryHeader(entry, deterministic))
	if err != nil {
		return fmt.Errorf("creating %s entry: %w", entry, err)
	}
	if _, err := io.Copy(entryWriter, file); err != nil {
		return fmt.Errorf("writing %s: %w", entry, err)
	}
	return nil
}
