// ItemKNN - Sparse Item Similarity Models
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/itemknn

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "ITEMKNN_CONFIG"

// envPrefix is the prefix of every environment variable read by Load.
const envPrefix = "ITEMKNN_"

// LoadOptions adjusts a Load call.
type LoadOptions struct {
	// ConfigPath is an explicit config file. It must exist when set and takes
	// precedence over ITEMKNN_CONFIG and DefaultConfigPaths.
	ConfigPath string

	// Overrides are koanf paths set after every other source, e.g.
	// {"input.path": "ratings.csv"}.
	Overrides map[string]any
}

// defaultConfig returns a Config struct with all default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:            "info",
			Format:           "json",
			Caller:           false,
			ProgressInterval: 5 * time.Second,
		},
		Model: ModelConfig{
			Builder:          "direct",
			Similarity:       "cosine",
			ModelSize:        50,
			MinCommonUsers:   1,
			Threshold:        0,
			ThresholdMode:    "real",
			NeighborStrategy: "auto",
			NumWorkers:       0, // builder default
			Normalizer:       "identity",
		},
		Input: InputConfig{
			Delimiter: ",",
		},
		Store: StoreConfig{
			Name: "default",
		},
	}
}

// Load loads configuration using Koanf v2 with layered sources:
//  1. Defaults: Built-in defaults
//  2. Config File: Optional YAML config file (if exists)
//  3. Environment Variables: ITEMKNN_* variables
//  4. Overrides: opts.Overrides
//
// The result is validated before it is returned.
func Load(opts LoadOptions) (*Config, error) {
	k := koanf.New(".")

	// Layer 1: Load defaults from struct
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: Load config file (optional)
	configPath, err := findConfigFile(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: Load environment variables
	// ITEMKNN_MODEL_SIZE -> model.model_size
	if err := k.Load(env.Provider(envPrefix, ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	// Layer 4: Caller overrides
	for path, value := range opts.Overrides {
		if err := k.Set(path, value); err != nil {
			return nil, fmt.Errorf("failed to set %s: %w", path, err)
		}
	}

	// Post-process slice fields from comma-separated strings
	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile returns the config file to load, or "" if there is none.
// An explicit path that does not exist is an error; the search paths are
// optional.
func findConfigFile(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file %s: %w", explicit, err)
		}
		return explicit, nil
	}

	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath, nil
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}

	return "", nil
}

// sliceConfigPaths defines which config paths should be parsed as comma-separated slices
var sliceConfigPaths = []string{
	"output.items",
}

// processSliceFields converts comma-separated string values to slices for known slice fields.
// This is necessary because env vars come in as strings, but the config expects slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok {
			continue
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// envMappings maps lower-cased environment variable names to koanf paths.
var envMappings = map[string]string{
	// Logging
	"itemknn_log_level":         "logging.level",
	"itemknn_log_format":        "logging.format",
	"itemknn_log_caller":        "logging.caller",
	"itemknn_progress_interval": "logging.progress_interval",

	// Model
	"itemknn_builder":           "model.builder",
	"itemknn_similarity":        "model.similarity",
	"itemknn_model_size":        "model.model_size",
	"itemknn_min_common_users":  "model.min_common_users",
	"itemknn_threshold":         "model.threshold",
	"itemknn_threshold_mode":    "model.threshold_mode",
	"itemknn_neighbor_strategy": "model.neighbor_strategy",
	"itemknn_workers":           "model.num_workers",
	"itemknn_damping":           "model.damping",
	"itemknn_alpha":             "model.alpha",
	"itemknn_shrinkage":         "model.shrinkage",
	"itemknn_normalizer":        "model.normalizer",

	// Input
	"itemknn_input":           "input.path",
	"itemknn_input_delimiter": "input.delimiter",
	"itemknn_input_header":    "input.header",

	// Metrics
	"itemknn_metrics_textfile": "metrics.textfile",

	// Output
	"itemknn_output":       "output.path",
	"itemknn_output_items": "output.items",

	// Store
	"itemknn_store":      "store.path",
	"itemknn_model_name": "store.name",
}

// envTransformFunc transforms environment variable names to koanf config paths.
//
// Examples:
//   - ITEMKNN_LOG_LEVEL -> logging.level
//   - ITEMKNN_MODEL_SIZE -> model.model_size
//   - ITEMKNN_INPUT -> input.path
func envTransformFunc(key string) string {
	if mapped, ok := envMappings[strings.ToLower(key)]; ok {
		return mapped
	}

	// Unmapped keys are skipped, including ITEMKNN_CONFIG itself.
	return ""
}
