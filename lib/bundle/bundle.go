// Copyright 2026 The Sealbox Authors
// SPDX-License-Identifier: Apache-2.0

// Package bundle writes and unpacks evidence bundles: deterministic
// zip archives holding the six artifacts of a validation run plus the
// manifest that indexes them.
//
// The archive layout is fixed. Every bundle contains exactly:
//
//	inputs/raw_data.csv
//	inputs/specification.json
//	outputs/normalized_data.csv
//	outputs/decision.json
//	outputs/proof.pdf
//	outputs/plot.png
//	manifest.json
//
// Bundles are immutable once written. Any change to a bundled byte
// produces, for verification purposes, a different bundle.
//
// Packing and extraction have deliberately different failure
// contracts: Pack is fatal on any problem and never leaves a partial
// archive behind (write to a temporary path, rename on success), while
// Extract treats a damaged or hostile archive as data to be reported,
// not a reason to trust any entry.
package bundle

import (
	"errors"
	"fmt"
	"strings"
)

// Archive entry paths. Fixed layout; verification keys on these.
const (
	EntryRawData        = "inputs/raw_data.csv"
	EntrySpecification  = "inputs/specification.json"
	EntryNormalizedData = "outputs/normalized_data.csv"
	EntryDecision       = "outputs/decision.json"
	EntryProof          = "outputs/proof.pdf"
	EntryPlot           = "outputs/plot.png"
	EntryManifest       = "manifest.json"
)

// PayloadEntries lists the six tracked payload paths in archive order.
// The manifest itself is the container, not a tracked payload, and is
// not included.
var PayloadEntries = []string{
	EntryRawData,
	EntrySpecification,
	EntryNormalizedData,
	EntryDecision,
	EntryProof,
	EntryPlot,
}

// ErrBundleNotFound reports that the archive path does not exist.
var ErrBundleNotFound = errors.New("bundle does not exist")

// Inputs names the six source files to pack, keyed by their archive
// paths via Sources.
type Inputs struct {
	RawData        string
	Specification  string
	NormalizedData string
	Decision       string
	Proof          string
	Plot           string
}

// Sources returns the archive-path → source-path mapping.
func (in Inputs) Sources() map[string]string {
	return map[string]string{
		EntryRawData:        in.RawData,
		EntrySpecification:  in.Specification,
		EntryNormalizedData: in.NormalizedData,
		EntryDecision:       in.Decision,
		EntryProof:          in.Proof,
		EntryPlot:           in.Plot,
	}
}

// PackError is the structured failure returned by Pack. Validation
// problems are accumulated so the caller sees everything wrong with
// the inputs at once rather than one failure per attempt.
type PackError struct {
	// Problems holds every validation or I/O failure encountered.
	Problems []error
}

func (e *PackError) Error() string {
	if len(e.Problems) == 1 {
		return "pack: " + e.Problems[0].Error()
	}
	messages := make([]string, len(e.Problems))
	for i, problem := range e.Problems {
		messages[i] = problem.Error()
	}
	return fmt.Sprintf("pack: %d problems: %s", len(e.Problems), strings.Join(messages, "; "))
}

// Unwrap exposes the accumulated problems to errors.Is/errors.As.
func (e *PackError) Unwrap() []error { return e.Problems }
