// Copyright 2026 The Sealbox Authors
// SPDX-License-Identifier: Apache-2.0

// Package validation defines the JSON schemas of the artifacts a
// validation run produces: the process specification, the pass/fail
// decision, the sample series exchanged with the normalization and
// decision collaborators, and the metadata file stored next to an
// archived bundle.
//
// The packer and verifier treat most of these as opaque payloads; the
// fields defined here are exactly the ones the verifier touches when
// recomputing and comparing a decision.
package validation
