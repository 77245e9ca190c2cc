// Copyright 2026 The Sealbox Authors
// SPDX-License-Identifier: Apache-2.0

package verify

import (
	"fmt"
	"os"
	"regexp"
	"time"
)

// TimestampWindow bounds the acceptable distance between the proof
// document's embedded timestamp and "now". The zero value of MaxAge
// disables the age bound — a bundle verified years after creation
// should not warn merely for being old.
type TimestampWindow struct {
	// MaxFutureSkew is how far into the future the timestamp may sit
	// before a warning is recorded (clock skew allowance).
	MaxFutureSkew time.Duration

	// MaxAge, when non-zero, warns for timestamps older than now-MaxAge.
	MaxAge time.Duration
}

// DefaultTimestampWindow allows five minutes of clock skew and places
// no age bound.
var DefaultTimestampWindow = TimestampWindow{MaxFutureSkew: 5 * time.Minute}

// sealTimePattern matches the trusted-timestamp marker the proof
// renderer embeds in the PDF: an RFC 3339 instant inside a
// "/SealTime (...)" metadata entry.
var sealTimePattern = regexp.MustCompile(`/SealTime \(([^)]+)\)`)

// checkTimestamp looks for the embedded timestamp marker in the proof
// document and validates it against the window. Every failure mode —
// unreadable proof, no marker, unparseable instant, out-of-window
// instant — is advisory: the returned strings are warnings, and this
// layer never contributes to hard issues or flips a report invalid.
func checkTimestamp(proofPath string, now time.Time, window TimestampWindow) []string {
	content, err := os.ReadFile(proofPath)
	if err != nil {
		return []string{fmt.Sprintf("timestamp check: reading proof document: %v", err)}
	}

	match := sealTimePattern.FindSubmatch(content)
	if match == nil {
		return []string{"timestamp check: no embedded timestamp marker in proof document"}
	}
	instant, err := time.Parse(time.RFC3339, string(match[1]))
	if err != nil {
		return []string{fmt.Sprintf("timestamp check: unparseable timestamp %q", match[1])}
	}

	var warnings []string
	if instant.After(now.Add(window.MaxFutureSkew)) {
		warnings = append(warnings, fmt.Sprintf(
			"timestamp check: proof timestamp %s is beyond the skew window", instant.Format(time.RFC3339)))
	}
	if window.MaxAge > 0 && instant.Before(now.Add(-window.MaxAge)) {
		warnings = append(warnings, fmt.Sprintf(
			"timestamp check: proof timestamp %s is older than the allowed age", instant.Format(time.RFC3339)))
	}
	return warnings
}
