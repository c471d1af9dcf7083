// ItemKNN - Sparse Item Similarity Models
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/itemknn

/*
Package config loads and validates build configuration.

# Configuration Sources

Load layers, from lowest to highest priority:
  - Built-in defaults
  - A YAML file: LoadOptions.ConfigPath, else $ITEMKNN_CONFIG, else ./config.yaml
  - ITEMKNN_* environment variables
  - LoadOptions.Overrides (command-line flags)

# Configuration File

	logging:
	  level: info
	  format: console
	  progress_interval: 10s
	model:
	  builder: direct
	  similarity: cosine
	  model_size: 20
	  min_common_users: 2
	  threshold: 0
	  threshold_mode: real
	  neighbor_strategy: auto
	  num_workers: 8
	input:
	  path: ratings.csv
	  header: true
	metrics:
	  textfile: /var/lib/node_exporter/itemknn.prom
	output:
	  items: [10, 42]
	store:
	  path: /var/lib/itemknn/models
	  name: movies

# Environment Variables

Logging:
  - ITEMKNN_LOG_LEVEL: trace, debug, info, warn, error (default: info)
  - ITEMKNN_LOG_FORMAT: json or console (default: json)
  - ITEMKNN_LOG_CALLER: include caller (default: false)
  - ITEMKNN_PROGRESS_INTERVAL: time between progress lines (default: 5s)

Model:
  - ITEMKNN_BUILDER: direct or userwise (default: direct)
  - ITEMKNN_SIMILARITY: cosine, pearson, jaccard, conditional (default: cosine)
  - ITEMKNN_MODEL_SIZE: neighbors kept per item, 0 for all (default: 50)
  - ITEMKNN_MIN_COMMON_USERS: shared users required (default: 1)
  - ITEMKNN_THRESHOLD, ITEMKNN_THRESHOLD_MODE: score cutoff (default: 0, real)
  - ITEMKNN_NEIGHBOR_STRATEGY: auto, all, sparse (default: auto)
  - ITEMKNN_WORKERS: build goroutines (default: builder default)
  - ITEMKNN_DAMPING, ITEMKNN_ALPHA, ITEMKNN_SHRINKAGE: similarity tuning
  - ITEMKNN_NORMALIZER: identity, mean_center, unit (default: identity)

Input and output:
  - ITEMKNN_INPUT: ratings CSV path (required)
  - ITEMKNN_INPUT_DELIMITER: field separator (default: ,)
  - ITEMKNN_INPUT_HEADER: skip the first row (default: false)
  - ITEMKNN_OUTPUT: JSON-lines output path (default: stdout)
  - ITEMKNN_OUTPUT_ITEMS: comma-separated item ids to write
  - ITEMKNN_METRICS_TEXTFILE: Prometheus textfile path

Model store:
  - ITEMKNN_STORE: BadgerDB directory; set to save built models
  - ITEMKNN_MODEL_NAME: name to save under (default: default)

# Validation

Field values are checked with struct tags through the validation package.
Validate also rejects settings the user-wise builder cannot honor, such as a
similarity other than cosine.
*/
package config
