// Copyright 2026 The Sealbox Authors
// SPDX-License-Identifier: Apache-2.0

// Package retention reclaims storage from archived evidence bundles
// past their lifecycle. A sweep scans the two-level storage tree
// (shard directory, then one directory per job), selects artifacts
// older than the applicable cutoff, and removes them one by one.
//
// Two predicates gate scanning, deliberately kept independent: a
// structural filter (a shard directory's name must be exactly two
// lowercase hex characters) and a policy filter (an artifact whose
// metadata carries the live-QA tag keeps a minimum retention floor
// regardless of the configured retention days).
//
// Everything here is best-effort and per-artifact: a stat failure, an
// unreadable metadata file, or a removal error is logged and counted,
// never allowed to stop the sweep. Removal is idempotent and gated by
// a fail-closed path-containment check, so concurrent sweeps cannot
// damage anything outside the storage root.
//
// Each completed sweep appends one zstd-compressed, deterministically
// CBOR-encoded record to <root>/journal/ as an audit trail.
package retention
