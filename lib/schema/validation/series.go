// Copyright 2026 The Sealbox Authors
// SPDX-License-Identifier: Apache-2.0

package validation

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"
)

// Sample is one timestamped process reading.
type Sample struct {
	Timestamp time.Time
	Value     float64
}

// ParseSeries reads a two-column CSV time series (RFC 3339 timestamp
// or float seconds offset, then value). A header row is detected and
// skipped. This is the raw-data format bundled at inputs/raw_data.csv.
func ParseSeries(r io.Reader) ([]Sample, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = 2

	var samples []Sample
	row := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading series row %d: %w", row+1, err)
		}
		row++

		sample, err := parseSampleRecord(record)
		if err != nil {
			if row == 1 {
				// Header row.
				continue
			}
			return nil, fmt.Errorf("series row %d: %w", row, err)
		}
		samples = append(samples, sample)
	}
	if len(samples) == 0 {
		return nil, fmt.Errorf("series has no samples")
	}
	return samples, nil
}

func parseSampleRecord(record []string) (Sample, error) {
	value, err := strconv.ParseFloat(record[1], 64)
	if err != nil {
		return Sample{}, fmt.Errorf("invalid value %q: %w", record[1], err)
	}

	if timestamp, err := time.Parse(time.RFC3339, record[0]); err == nil {
		return Sample{Timestamp: timestamp, Value: value}, nil
	}
	offset, err := strconv.ParseFloat(record[0], 64)
	if err != nil {
		return Sample{}, fmt.Errorf("invalid timestamp %q", record[0])
	}
	return Sample{
		Timestamp: time.Unix(0, int64(offset*float64(time.Second))).UTC(),
		Value:     value,
	}, nil
}
