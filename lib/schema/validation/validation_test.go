// Copyright 2026 The Sealbox Authors
// SPDX-License-Identifier: Apache-2.0

package validation

import (
	"strings"
	"testing"
)

func TestParseSpecification(t *testing.T) {
	spec, err := ParseSpecification([]byte(
		`{"name":"oven-7","allowed_gaps":2,"max_sample_period_seconds":5,"target_value":180,"hold_seconds":600}`))
	if err != nil {
		t.Fatalf("ParseSpecification failed: %v", err)
	}
	if spec.AllowedGaps != 2 || spec.MaxSamplePeriodSeconds != 5 {
		t.Errorf("unexpected fields: %+v", spec)
	}
}

func TestParseSpecificationRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"not json":      "{",
		"negative gaps": `{"allowed_gaps":-1,"max_sample_period_seconds":5}`,
		"zero period":   `{"allowed_gaps":0,"max_sample_period_seconds":0}`,
	}
	for name, input := range cases {
		if _, err := ParseSpecification([]byte(input)); err == nil {
			t.Errorf("%s: should fail", name)
		}
	}
}

func TestParseSeries(t *testing.T) {
	samples, err := ParseSeries(strings.NewReader("t,v\n0,20.0\n1.5,21.0\n"))
	if err != nil {
		t.Fatalf("ParseSeries failed: %v", err)
	}
	if len(samples) != 2 {
		t.Fatalf("got %d samples, want 2", len(samples))
	}
	if samples[1].Value != 21.0 {
		t.Errorf("samples[1].Value = %v, want 21.0", samples[1].Value)
	}
	if !samples[1].Timestamp.After(samples[0].Timestamp) {
		t.Error("offset timestamps not increasing")
	}
}

func TestParseSeriesRFC3339Timestamps(t *testing.T) {
	samples, err := ParseSeries(strings.NewReader(
		"2026-08-29T10:00:00Z,20.0\n2026-08-29T10:00:05Z,21.0\n"))
	if err != nil {
		t.Fatalf("ParseSeries failed: %v", err)
	}
	if len(samples) != 2 {
		t.Fatalf("got %d samples, want 2", len(samples))
	}
}

func TestParseSeriesEmpty(t *testing.T) {
	if _, err := ParseSeries(strings.NewReader("t,v\n")); err == nil {
		t.Fatal("header-only series should fail")
	}
}
