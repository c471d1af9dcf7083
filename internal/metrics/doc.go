// ItemKNN - Sparse Item Similarity Models
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/itemknn

/*
Package metrics provides Prometheus metrics for item-item model builds.

Collectors are registered with the default registry through promauto.
Model builds are batch jobs, so instead of serving /metrics the CLI writes
the registry to a file with WriteTextfile when metrics.textfile is set.

# Available Metrics

  - itemknn_build_duration_seconds{builder}: build latency histogram
  - itemknn_builds_total{builder,status}: builds by outcome
  - itemknn_similarity_pairs_total{builder}: pairs that passed the threshold
  - itemknn_candidate_pairs_skipped_total{reason}: pairs rejected for too few
    common users or by the threshold
  - itemknn_model_items: item count of the last successful build
  - itemknn_matrix_row_upgrades_total: compact-to-full row upgrades

# Usage

	start := time.Now()
	model, err := builder.Build(ctx, src)
	metrics.RecordBuild("direct", time.Since(start), model.Len(), err)
*/
package metrics
