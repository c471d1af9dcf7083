// ItemKNN - Sparse Item Similarity Models
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/itemknn

package config

import (
	"time"
)

// Config holds all configuration for a model build, loaded from defaults, an
// optional YAML file, and environment variables.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: Built-in defaults for every setting
//  2. Config File: Optional YAML file (config.yaml or ITEMKNN_CONFIG)
//  3. Environment Variables: ITEMKNN_* variables override any setting
//  4. Overrides: Values passed by the caller, usually command-line flags
//
// Example:
//
//	cfg, err := config.Load(config.LoadOptions{})
//	if err != nil {
//	    logging.Fatal().Err(err).Msg("Failed to load configuration")
//	}
type Config struct {
	Logging LoggingConfig `koanf:"logging"`
	Model   ModelConfig   `koanf:"model"`
	Input   InputConfig   `koanf:"input"`
	Metrics MetricsConfig `koanf:"metrics"`
	Output  OutputConfig  `koanf:"output"`
	Store   StoreConfig   `koanf:"store"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	// Default: info
	Level string `koanf:"level" validate:"oneof=trace debug info warn error"`

	// Format is the output format: json or console.
	// Default: json
	Format string `koanf:"format" validate:"oneof=json console"`

	// Caller includes caller file and line number in logs.
	Caller bool `koanf:"caller"`

	// ProgressInterval is the minimum time between build progress lines.
	// Default: 5s
	ProgressInterval time.Duration `koanf:"progress_interval" validate:"gte=0"`
}

// ModelConfig selects and tunes the model builder.
type ModelConfig struct {
	// Builder is the build algorithm: direct (pairwise over item vectors) or
	// userwise (single pass over user vectors, cosine only).
	// Default: direct
	Builder string `koanf:"builder" validate:"oneof=direct userwise"`

	// Similarity is the similarity function for the direct builder.
	// Default: cosine
	Similarity string `koanf:"similarity" validate:"oneof=cosine pearson jaccard conditional"`

	// ModelSize is the maximum number of neighbors kept per item; 0 keeps all.
	// Default: 50
	ModelSize int `koanf:"model_size" validate:"gte=0"`

	// MinCommonUsers is the minimum number of shared users before a pair is scored.
	// Default: 1
	MinCommonUsers int `koanf:"min_common_users" validate:"gte=0"`

	// Threshold is the score cutoff applied according to ThresholdMode.
	// Default: 0
	Threshold float64 `koanf:"threshold"`

	// ThresholdMode is real (score > threshold), absolute (|score| > threshold)
	// or none.
	// Default: real
	ThresholdMode string `koanf:"threshold_mode" validate:"oneof=real absolute none"`

	// NeighborStrategy picks candidate pairs: auto, all or sparse.
	// Default: auto
	NeighborStrategy string `koanf:"neighbor_strategy" validate:"oneof=auto all sparse"`

	// NumWorkers is the number of build goroutines; 0 uses the builder default.
	// Default: 0
	NumWorkers int `koanf:"num_workers" validate:"gte=0"`

	// Damping is added to the cosine denominator.
	// Default: 0
	Damping float64 `koanf:"damping" validate:"gte=0"`

	// Alpha discounts popular neighbors for conditional probability.
	// Default: 0
	Alpha float64 `koanf:"alpha" validate:"gte=0"`

	// Shrinkage scales scores by n/(n+shrinkage) for n common users; 0 disables.
	// Default: 0
	Shrinkage float64 `koanf:"shrinkage" validate:"gte=0"`

	// Normalizer rewrites user vectors for the userwise builder:
	// identity, mean_center or unit.
	// Default: identity
	Normalizer string `koanf:"normalizer" validate:"oneof=identity mean_center unit"`
}

// InputConfig describes the ratings file.
type InputConfig struct {
	// Path is the CSV file of user,item,rating rows. Required.
	Path string `koanf:"path" validate:"required"`

	// Delimiter is the single field separator character.
	// Default: ","
	Delimiter string `koanf:"delimiter" validate:"len=1"`

	// Header skips the first row.
	// Default: false
	Header bool `koanf:"header"`
}

// MetricsConfig holds metrics export settings.
type MetricsConfig struct {
	// Textfile is where build metrics are written in Prometheus text format
	// after the build. Empty disables the export.
	Textfile string `koanf:"textfile"`
}

// OutputConfig controls which model rows are written.
type OutputConfig struct {
	// Path is the JSON-lines output file. Empty writes to stdout.
	Path string `koanf:"path"`

	// Items restricts output to these item ids. Empty writes every item.
	Items []int64 `koanf:"items"`
}

// StoreConfig controls model persistence in BadgerDB.
type StoreConfig struct {
	// Path is the BadgerDB directory. Empty disables saving.
	Path string `koanf:"path"`

	// Name is the key the model is saved under. Saving again under the
	// same name replaces the previous model.
	// Default: default
	Name string `koanf:"name" validate:"required,excludes=:"`
}
