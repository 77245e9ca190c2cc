// Copyright 2026 The Sealbox Authors
// SPDX-License-Identifier: Apache-2.0

// sealbox-pack assembles the six artifacts of one validation run into
// a sealed evidence bundle.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/pflag"

	"github.com/sealbox-foundation/sealbox/lib/bundle"
	"github.com/sealbox-foundation/sealbox/lib/version"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	flags := pflag.NewFlagSet("sealbox-pack", pflag.ContinueOnError)
	showVersion := flags.Bool("version", false, "print version information and exit")

	var inputs bundle.Inputs
	flags.StringVar(&inputs.RawData, "raw-data", "", "raw sensor data CSV (required)")
	flags.StringVar(&inputs.Specification, "specification", "", "run specification JSON (required)")
	flags.StringVar(&inputs.NormalizedData, "normalized-data", "", "normalized data CSV (required)")
	flags.StringVar(&inputs.Decision, "decision", "", "decision document JSON (required)")
	flags.StringVar(&inputs.Proof, "proof", "", "sealed proof PDF (required)")
	flags.StringVar(&inputs.Plot, "plot", "", "summary plot PNG (required)")

	output := flags.String("output", "", "bundle output path (required)")
	deterministic := flags.Bool("deterministic", false, "produce byte-identical output for identical inputs")
	metadataPairs := flags.StringArray("metadata", nil, "manifest metadata as key=value (repeatable)")

	if err := flags.Parse(os.Args[1:]); err != nil {
		return err
	}
	if *showVersion {
		fmt.Printf("sealbox-pack %s\n", version.Info())
		return nil
	}
	if *output == "" {
		return fmt.Errorf("--output is required")
	}

	metadata, err := parseMetadata(*metadataPairs)
	if err != nil {
		return err
	}

	path, err := bundle.Pack(inputs, *output, metadata, *deterministic)
	if err != nil {
		return err
	}
	fmt.Println(path)
	return nil
}

// parseMetadata splits repeated key=value flags into a map, rejecting
// duplicates and malformed pairs.
func parseMetadata(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	metadata := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("malformed --metadata %q: want key=value", pair)
		}
		if _, exists := metadata[key]; exists {
			return nil, fmt.Errorf("duplicate --metadata key %q", key)
		}
		metadata[key] = value
	}
	return metadata, nil
}
