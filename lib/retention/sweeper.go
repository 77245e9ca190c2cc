// Copyright 2026 The Sealbox Authors
// SPDX-License-Identifier: Apache-2.0

package retention

import (
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/sealbox-foundation/sealbox/lib/clock"
	"github.com/sealbox-foundation/sealbox/lib/storage"
)

// Artifact is one stored bundle directory the scanner selected for
// removal.
type Artifact struct {
	// Path is the artifact directory.
	Path string

	// CreatedAt is the directory's creation time as the filesystem
	// reports it (modification time — Linux exposes no portable
	// birth time, and artifact directories are written once).
	CreatedAt time.Time
}

// Stats summarizes one sweep.
type Stats struct {
	Scanned    int   `json:"scanned"`
	Expired    int   `json:"expired"`
	Removed    int   `json:"removed"`
	Failed     int   `json:"failed"`
	FreedBytes int64 `json:"freed_bytes"`
}

// SweeperConfig configures a Sweeper.
type SweeperConfig struct {
	// Root is the storage tree base directory.
	Root string

	// RetentionDays is the configured retention period. Policy tags
	// may raise the effective period per artifact, never lower it
	// below their floor.
	RetentionDays int

	// DryRun reports what a sweep would remove without touching disk.
	DryRun bool

	// Policies maps policy tags to retention floors. Nil means the
	// built-in defaults.
	Policies PolicyTable

	// Clock supplies "now" for cutoff computation. Nil means the real
	// clock.
	Clock clock.Clock

	// Logger receives per-artifact skip/failure logs. Nil discards.
	Logger *slog.Logger

	// DisableJournal turns off the per-sweep audit record.
	DisableJournal bool
}

// Sweeper scans and removes expired artifacts under one storage root.
// Safe for concurrent use: sweeps share no mutable state, and removal
// is idempotent.
type Sweeper struct {
	root          string
	retentionDays int
	dryRun        bool
	policies      PolicyTable
	clock         clock.Clock
	logger        *slog.Logger
	journal       bool
}

// NewSweeper builds a Sweeper from cfg, applying defaults for nil
// fields.
func NewSweeper(cfg SweeperConfig) *Sweeper {
	policies := cfg.Policies
	if policies == nil {
		policies = DefaultPolicyTable()
	}
	clk := cfg.Clock
	if clk == nil {
		clk = clock.Real()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Sweeper{
		root:          cfg.Root,
		retentionDays: cfg.RetentionDays,
		dryRun:        cfg.DryRun,
		policies:      policies,
		clock:         clk,
		logger:        logger,
		journal:       !cfg.DisableJournal,
	}
}

// validShardName is the structural filter: a first-level directory
// participates in the storage tree only when its name is exactly two
// lowercase hex characters.
func validShardName(name string) bool {
	if len(name) != 2 {
		return false
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}

// Scan walks exactly two directory levels under the root and returns
// the artifacts whose creation time precedes the applicable cutoff at
// the given "now". Per-artifact filesystem errors are logged and the
// artifact skipped; they never fail the scan.
func (s *Sweeper) Scan(now time.Time) []Artifact {
	var expired []Artifact

	shards, err := os.ReadDir(s.root)
	if err != nil {
		s.logger.Error("reading storage root", "root", s.root, "error", err)
		return nil
	}

	for _, shard := range shards {
		if !shard.IsDir() || !validShardName(shard.Name()) {
			continue
		}
		shardPath := filepath.Join(s.root, shard.Name())

		artifacts, err := os.ReadDir(shardPath)
		if err != nil {
			s.logger.Warn("reading shard directory", "shard", shardPath, "error", err)
			continue
		}
		for _, entry := range artifacts {
			if !entry.IsDir() {
				continue
			}
			artifactPath := filepath.Join(shardPath, entry.Name())
			if artifact, ok := s.expiredArtifact(artifactPath, entry, now); ok {
				expired = append(expired, artifact)
			}
		}
	}
	return expired
}

// expiredArtifact applies the policy filter and age cutoff to one
// artifact directory.
func (s *Sweeper) expiredArtifact(path string, entry fs.DirEntry, now time.Time) (Artifact, bool) {
	info, err := entry.Info()
	if err != nil {
		s.logger.Warn("stat artifact", "artifact", path, "error", err)
		return Artifact{}, false
	}

	metadata, err := storage.ReadMetadata(path)
	if err != nil {
		// An unreadable metadata file is suspicious; keep the artifact
		// and move on rather than applying the wrong policy to it.
		s.logger.Warn("reading artifact metadata", "artifact", path, "error", err)
		return Artifact{}, false
	}

	retentionDays := s.policies.effectiveRetentionDays(s.retentionDays, metadata)
	cutoff := now.AddDate(0, 0, -retentionDays)

	createdAt := info.ModTime()
	if !createdAt.Before(cutoff) {
		return Artifact{}, false
	}
	return Artifact{Path: path, CreatedAt: createdAt}, true
}

// Remove deletes one artifact directory, returning the bytes freed and
// whether the removal (or dry-run) succeeded. Already-absent paths are
// success: removal is idempotent. Dry-run never touches disk but still
// measures and reports. A path that fails the containment check is
// never deleted.
func (s *Sweeper) Remove(path string) (int64, bool) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return 0, true
	}

	if !storage.IsSafe(path, s.root) {
		s.logger.Error("artifact path escapes storage root, refusing to remove",
			"artifact", path, "root", s.root)
		return 0, false
	}

	size := directorySize(path)
	if s.dryRun {
		s.logger.Info("dry run: would remove artifact", "artifact", path, "bytes", size)
		return size, true
	}

	if err := os.RemoveAll(path); err != nil {
		s.logger.Error("removing artifact", "artifact", path, "error", err)
		return 0, false
	}
	s.logger.Info("removed expired artifact", "artifact", path, "bytes", size)
	return size, true
}

// Sweep scans and removes every expired artifact independently: one
// failed removal is counted and the sweep continues. The sweep record
// is journaled best-effort.
func (s *Sweeper) Sweep() Stats {
	now := s.clock.Now()
	expired := s.Scan(now)

	stats := Stats{
		Scanned: s.countArtifacts(),
		Expired: len(expired),
	}

	removed := make([]string, 0, len(expired))
	for _, artifact := range expired {
		freed, ok := s.Remove(artifact.Path)
		if !ok {
			stats.Failed++
			continue
		}
		stats.Removed++
		stats.FreedBytes += freed
		removed = append(removed, artifact.Path)
	}

	s.logger.Info("sweep complete",
		"root", s.root,
		"scanned", stats.Scanned,
		"expired", stats.Expired,
		"removed", stats.Removed,
		"failed", stats.Failed,
		"freed_bytes", stats.FreedBytes,
		"dry_run", s.dryRun,
	)

	if s.journal {
		if err := s.writeJournalRecord(now, stats, removed); err != nil {
			s.logger.Warn("writing sweep journal record", "error", err)
		}
	}
	return stats
}

// countArtifacts counts second-level directories under valid shards.
func (s *Sweeper) countArtifacts() int {
	count := 0
	shards, err := os.ReadDir(s.root)
	if err != nil {
		return 0
	}
	for _, shard := range shards {
		if !shard.IsDir() || !validShardName(shard.Name()) {
			continue
		}
		entries, err := os.ReadDir(filepath.Join(s.root, shard.Name()))
		if err != nil {
			continue
		}
		for _, entry := range entries {
			if entry.IsDir() {
				count++
			}
		}
	}
	return count
}

// directorySize sums the file sizes under path. Unreadable entries
// contribute zero; the size is for reporting, not accounting.
func directorySize(path string) int64 {
	var total int64
	filepath.WalkDir(path, func(_ string, entry fs.DirEntry, err error) error {
		if err != nil || entry.IsDir() {
			return nil
		}
		if info, err := entry.Info(); err == nil {
			total += info.Size()
		}
		return nil
	})
	return total
}
