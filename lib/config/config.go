// Copyright 2026 The Sealbox Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads the retention service configuration.
//
// Configuration comes from a single YAML file named by the --config
// flag or the SEALBOX_CONFIG environment variable. There is no
// discovery chain and no hidden override: a deployment's behavior is
// fully determined by one auditable file.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvConfigPath is the environment variable naming the config file
// when no --config flag is given.
const EnvConfigPath = "SEALBOX_CONFIG"

// DefaultRetentionDays is the retention period applied when the
// configured value is missing or unusable.
const DefaultRetentionDays = 30

// DefaultSweepInterval is how often the scheduler runs a sweep when
// the config does not say otherwise.
const DefaultSweepInterval = time.Hour

// Config is the retention service configuration.
type Config struct {
	// StorageRoot is the base directory of the artifact storage tree.
	StorageRoot string `yaml:"storage_root"`

	// RetentionDays is how long artifacts are kept. Non-positive or
	// unparseable values fall back to DefaultRetentionDays; see
	// RetentionDaysOrDefault.
	RetentionDays RetentionDays `yaml:"retention_days"`

	// SweepInterval is the pause between scheduled sweeps.
	SweepInterval time.Duration `yaml:"sweep_interval"`

	// DryRun makes sweeps report what they would remove without
	// touching disk.
	DryRun bool `yaml:"dry_run"`

	// PolicyFile optionally names a policies.jsonc table of
	// per-policy-tag retention floors.
	PolicyFile string `yaml:"policy_file"`
}

// Load reads the configuration from path. When path is empty, the
// SEALBOX_CONFIG environment variable is consulted. A missing or
// malformed file is an error; unusable individual values inside a
// well-formed file are not — they fall back per field.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv(EnvConfigPath)
	}
	if path == "" {
		return nil, fmt.Errorf("no config file: pass --config or set %s", EnvConfigPath)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if cfg.StorageRoot == "" {
		return nil, fmt.Errorf("config %s: storage_root is required", path)
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = DefaultSweepInterval
	}
	return &cfg, nil
}

// RetentionDays is an integer day count that tolerates bad input: a
// value that fails to parse decodes as zero instead of failing the
// whole config file, and zero resolves to the default. Cleanup must
// keep running on a deployment with one mistyped line.
type RetentionDays int

// UnmarshalYAML decodes an integer, swallowing parse failures.
func (d *RetentionDays) UnmarshalYAML(value *yaml.Node) error {
	var parsed int
	if err := value.Decode(&parsed); err != nil {
		*d = 0
		return nil
	}
	*d = RetentionDays(parsed)
	return nil
}

// RetentionDaysOrDefault returns the configured retention period, or
// DefaultRetentionDays when the configured value is not positive.
func (c *Config) RetentionDaysOrDefault() int {
	if c.RetentionDays <= 0 {
		return DefaultRetentionDays
	}
	return int(c.RetentionDays)
}
