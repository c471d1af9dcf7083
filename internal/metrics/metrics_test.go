// ItemKNN - Sparse Item Similarity Models
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/itemknn

package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	io_prometheus_client "github.com/prometheus/client_model/go"
)

// getGaugeValue extracts the value from a Prometheus gauge
func getGaugeValue(gauge prometheus.Gauge) float64 {
	var m io_prometheus_client.Metric
	if err := gauge.Write(&m); err != nil {
		return 0
	}
	return m.GetGauge().GetValue()
}

func TestRecordBuild(t *testing.T) {
	tests := []struct {
		name    string
		builder string
		items   int
		err     error
		status  string
	}{
		{"successful direct build", "test_direct", 42, nil, "success"},
		{"failed userwise build", "test_userwise", 0, errors.New("stream failed"), "error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := testutil.ToFloat64(BuildsTotal.WithLabelValues(tt.builder, tt.status))

			RecordBuild(tt.builder, 250*time.Millisecond, tt.items, tt.err)

			after := testutil.ToFloat64(BuildsTotal.WithLabelValues(tt.builder, tt.status))
			if after != before+1 {
				t.Errorf("expected builds_total{%s,%s} to increase by 1, got %v -> %v", tt.builder, tt.status, before, after)
			}
			if tt.err == nil && getGaugeValue(ModelItems) != float64(tt.items) {
				t.Errorf("expected model items gauge %d, got %v", tt.items, getGaugeValue(ModelItems))
			}
		})
	}
}

func TestRecordPairsAndUpgrades(t *testing.T) {
	retained := testutil.ToFloat64(SimilarityPairs.WithLabelValues("test_pairs"))
	skipped := testutil.ToFloat64(CandidatePairsSkipped.WithLabelValues(SkipMinCommon))
	upgrades := testutil.ToFloat64(MatrixRowUpgrades)

	RecordRetainedPairs("test_pairs", 10)
	RecordRetainedPairs("test_pairs", 0)
	RecordSkippedPairs(SkipMinCommon, 3)
	RecordRowUpgrades(2)
	RecordRowUpgrades(0)

	if got := testutil.ToFloat64(SimilarityPairs.WithLabelValues("test_pairs")); got != retained+10 {
		t.Errorf("retained pairs = %v, want %v", got, retained+10)
	}
	if got := testutil.ToFloat64(CandidatePairsSkipped.WithLabelValues(SkipMinCommon)); got != skipped+3 {
		t.Errorf("skipped pairs = %v, want %v", got, skipped+3)
	}
	if got := testutil.ToFloat64(MatrixRowUpgrades); got != upgrades+2 {
		t.Errorf("row upgrades = %v, want %v", got, upgrades+2)
	}
}

func TestWriteTextfile(t *testing.T) {
	RecordBuild("test_textfile", time.Second, 1, nil)

	path := filepath.Join(t.TempDir(), "itemknn.prom")
	if err := WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read textfile: %v", err)
	}
	if !strings.Contains(string(data), `itemknn_builds_total{builder="test_textfile",status="success"}`) {
		t.Errorf("textfile missing build counter:\n%s", data)
	}
}

func TestWriteTextfile_BadPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "dir", "itemknn.prom")
	if err := WriteTextfile(path); err == nil {
		t.Error("expected error for unwritable path")
	}
}

func TestMetricsLint(t *testing.T) {
	problems, err := testutil.GatherAndLint(prometheus.DefaultGatherer,
		"itemknn_build_duration_seconds",
		"itemknn_builds_total",
		"itemknn_similarity_pairs_total",
		"itemknn_candidate_pairs_skipped_total",
		"itemknn_model_items",
		"itemknn_matrix_row_upgrades_total",
	)
	if err != nil {
		t.Fatalf("gather failed: %v", err)
	}
	for _, p := range problems {
		t.Errorf("lint problem in %s: %s", p.Metric, p.Text)
	}
}
