// ItemKNN - Sparse Item Similarity Models
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/itemknn

package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Skip reasons for CandidatePairsSkipped.
const (
	SkipMinCommon = "min_common"
	SkipThreshold = "threshold"
)

var (
	// Model Build Metrics
	BuildDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "itemknn_build_duration_seconds",
			Help:    "Duration of item-item model builds in seconds",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 16), // 10ms .. ~5.5min
		},
		[]string{"builder"},
	)

	BuildsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "itemknn_builds_total",
			Help: "Total number of model builds by outcome",
		},
		[]string{"builder", "status"}, // "success", "error"
	)

	SimilarityPairs = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "itemknn_similarity_pairs_total",
			Help: "Total number of scored pairs that passed the threshold",
		},
		[]string{"builder"},
	)

	CandidatePairsSkipped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "itemknn_candidate_pairs_skipped_total",
			Help: "Total number of candidate pairs rejected before accumulation",
		},
		[]string{"reason"},
	)

	ModelItems = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "itemknn_model_items",
			Help: "Number of items in the most recently built model",
		},
	)

	// Sparse Matrix Metrics
	MatrixRowUpgrades = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "itemknn_matrix_row_upgrades_total",
			Help: "Total number of matrix rows upgraded from compact to full keys",
		},
	)
)

// RecordBuild records the outcome of a model build.
func RecordBuild(builder string, duration time.Duration, items int, err error) {
	BuildDuration.WithLabelValues(builder).Observe(duration.Seconds())
	if err != nil {
		BuildsTotal.WithLabelValues(builder, "error").Inc()
		return
	}
	BuildsTotal.WithLabelValues(builder, "success").Inc()
	ModelItems.Set(float64(items))
}

// RecordRetainedPairs adds n retained pairs for a builder.
func RecordRetainedPairs(builder string, n int64) {
	if n > 0 {
		SimilarityPairs.WithLabelValues(builder).Add(float64(n))
	}
}

// RecordSkippedPairs adds n skipped candidate pairs for a reason.
func RecordSkippedPairs(reason string, n int64) {
	if n > 0 {
		CandidatePairsSkipped.WithLabelValues(reason).Add(float64(n))
	}
}

// RecordRowUpgrades adds n compact-to-full row upgrades.
func RecordRowUpgrades(n int) {
	if n > 0 {
		MatrixRowUpgrades.Add(float64(n))
	}
}

// WriteTextfile writes all registered metrics to path in the Prometheus text
// format, for pickup by the node_exporter textfile collector.
func WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, prometheus.DefaultGatherer); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
