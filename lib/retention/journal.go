// Copyright 2026 The Sealbox Authors
// SPDX-License-Identifier: Apache-2.0

package retention

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/sealbox-foundation/sealbox/lib/codec"
)

// journalDirName is the directory under the storage root holding
// per-sweep audit records. Its name is not a valid shard name, so the
// scanner never walks into it.
const journalDirName = "journal"

// JournalRecord is the audit record written after each sweep:
// deterministic CBOR, zstd-compressed, one file per sweep.
type JournalRecord struct {
	SweptAt       time.Time `json:"swept_at"`
	Root          string    `json:"root"`
	RetentionDays int       `json:"retention_days"`
	DryRun        bool      `json:"dry_run"`
	Stats         Stats     `json:"stats"`
	Removed       []string  `json:"removed"`
}

// journalEncoder is shared across sweeps; zstd.Encoder is safe for
// concurrent EncodeAll use.
var journalEncoder *zstd.Encoder

func init() {
	var err error
	journalEncoder, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		panic("retention: zstd encoder initialization failed: " + err.Error())
	}
}

// writeJournalRecord persists one sweep record. Failure here is the
// caller's warning, never a sweep failure: the journal is evidence
// about cleanup, not a gate on it.
func (s *Sweeper) writeJournalRecord(sweptAt time.Time, stats Stats, removed []string) error {
	record := JournalRecord{
		SweptAt:       sweptAt.UTC(),
		Root:          s.root,
		RetentionDays: s.retentionDays,
		DryRun:        s.dryRun,
		Stats:         stats,
		Removed:       removed,
	}
	encoded, err := codec.Marshal(record)
	if err != nil {
		return fmt.Errorf("encoding journal record: %w", err)
	}
	compressed := journalEncoder.EncodeAll(encoded, nil)

	dir := filepath.Join(s.root, journalDirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating journal directory: %w", err)
	}
	name := fmt.Sprintf("sweep-%d.cbor.zst", sweptAt.UTC().UnixNano())
	if err := os.WriteFile(filepath.Join(dir, name), compressed, 0o644); err != nil {
		return fmt.Errorf("writing journal record: %w", err)
	}
	return nil
}

// ReadJournalRecord decodes one journal file, for inspection tooling
// and tests.
func ReadJournalRecord(path string) (*JournalRecord, error) {
	compressed, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading journal record: %w", err)
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("initializing zstd decoder: %w", err)
	}
	defer decoder.Close()

	encoded, err := decoder.DecodeAll(compressed, nil)
	if err != nil {
		return nil, fmt.Errorf("decompressing journal record: %w", err)
	}
	var record JournalRecord
	if err := codec.Unmarshal(encoded, &record); err != nil {
		return nil, fmt.Errorf("decoding journal record: %w", err)
	}
	return &record, nil
}
