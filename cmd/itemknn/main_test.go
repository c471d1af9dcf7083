// ItemKNN - Sparse Item Similarity Models
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/itemknn

package main

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/itemknn/internal/config"
	"github.com/tomtom215/itemknn/internal/recommend"
	"github.com/tomtom215/itemknn/internal/recommend/itemitem"
	"github.com/tomtom215/itemknn/internal/recommend/storage"
	"github.com/tomtom215/itemknn/internal/sparse"
)

func TestParseRatings(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		delim   rune
		header  bool
		want    []recommend.Interaction
		wantErr string
	}{
		{
			name:  "three columns",
			input: "1,10,5\n2,10,3.5\n",
			delim: ',',
			want: []recommend.Interaction{
				{UserID: 1, ItemID: 10, Value: 5},
				{UserID: 2, ItemID: 10, Value: 3.5},
			},
		},
		{
			name:   "header and comments",
			input:  "user,item,rating\n# skipped\n1, 10, 2\n",
			delim:  ',',
			header: true,
			want:   []recommend.Interaction{{UserID: 1, ItemID: 10, Value: 2}},
		},
		{
			name:  "implicit feedback",
			input: "7\t8\n",
			delim: '\t',
			want:  []recommend.Interaction{{UserID: 7, ItemID: 8, Value: 1}},
		},
		{
			name:  "timestamps",
			input: "1,2,4,1700000000\n",
			delim: ',',
			want: []recommend.Interaction{
				{UserID: 1, ItemID: 2, Value: 4, Timestamp: time.Unix(1700000000, 0).UTC()},
			},
		},
		{
			name:    "header not skipped",
			input:   "user,item,rating\n1,10,2\n",
			delim:   ',',
			wantErr: "ratings line 1: user id",
		},
		{
			name:    "bad rating",
			input:   "1,10,5\n1,11,lots\n",
			delim:   ',',
			wantErr: "ratings line 2: rating",
		},
		{
			name:    "too few fields",
			input:   "1\n",
			delim:   ',',
			wantErr: "expected 2 to 4 fields",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseRatings(strings.NewReader(tt.input), tt.delim, tt.header)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("error = %v, want it to contain %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %d interactions, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("interaction %d = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func decodeRows(t *testing.T, out []byte) []neighborRow {
	t.Helper()
	var rows []neighborRow
	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		var row neighborRow
		if err := json.Unmarshal(sc.Bytes(), &row); err != nil {
			t.Fatalf("bad JSON line %q: %v", sc.Text(), err)
		}
		rows = append(rows, row)
	}
	return rows
}

func TestWriteModel(t *testing.T) {
	m := itemitem.NewModel(map[int64]sparse.Vector{
		1: sparse.FromMap(map[int64]float64{2: 0.5, 3: 0.75}),
		2: sparse.FromMap(map[int64]float64{1: 0.5}),
		3: nil,
	})

	t.Run("all items", func(t *testing.T) {
		var buf bytes.Buffer
		if err := writeModel(&buf, m, nil); err != nil {
			t.Fatal(err)
		}
		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		want := []string{
			`{"item":1,"neighbors":[{"item":3,"score":0.75},{"item":2,"score":0.5}]}`,
			`{"item":2,"neighbors":[{"item":1,"score":0.5}]}`,
			`{"item":3,"neighbors":[]}`,
		}
		if len(lines) != len(want) {
			t.Fatalf("got %d lines, want %d:\n%s", len(lines), len(want), buf.String())
		}
		for i := range want {
			if lines[i] != want[i] {
				t.Errorf("line %d = %s, want %s", i, lines[i], want[i])
			}
		}
	})

	t.Run("selected items", func(t *testing.T) {
		var buf bytes.Buffer
		if err := writeModel(&buf, m, []int64{2, 99}); err != nil {
			t.Fatal(err)
		}
		rows := decodeRows(t, buf.Bytes())
		if len(rows) != 2 || rows[0].Item != 2 || rows[1].Item != 99 {
			t.Fatalf("rows = %+v", rows)
		}
		if len(rows[1].Neighbors) != 0 {
			t.Errorf("unknown item should have no neighbors, got %v", rows[1].Neighbors)
		}
	})
}

func testConfig(dir string) *config.Config {
	return &config.Config{
		Logging: config.LoggingConfig{Level: "error", Format: "json"},
		Model: config.ModelConfig{
			Builder:          "direct",
			Similarity:       "cosine",
			MinCommonUsers:   1,
			ThresholdMode:    "real",
			NeighborStrategy: "auto",
			Normalizer:       "identity",
		},
		Input: config.InputConfig{
			Path:      filepath.Join(dir, "ratings.csv"),
			Delimiter: ",",
			Header:    true,
		},
		Metrics: config.MetricsConfig{Textfile: filepath.Join(dir, "itemknn.prom")},
		Store:   config.StoreConfig{Name: "default"},
	}
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	csv := "user,item,rating\n1,10,5\n1,20,4\n2,10,3\n2,20,1\n"
	if err := os.WriteFile(filepath.Join(dir, "ratings.csv"), []byte(csv), 0o600); err != nil {
		t.Fatal(err)
	}
	want := 23 / (math.Sqrt(34) * math.Sqrt(17))

	tests := []struct {
		name    string
		builder string
	}{
		{"direct", "direct"},
		{"userwise", "userwise"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(dir)
			cfg.Model.Builder = tt.builder

			var out bytes.Buffer
			if err := run(context.Background(), cfg, &out); err != nil {
				t.Fatalf("run() error = %v", err)
			}

			rows := decodeRows(t, out.Bytes())
			if len(rows) != 2 {
				t.Fatalf("got %d rows, want 2", len(rows))
			}
			for _, row := range rows {
				if len(row.Neighbors) != 1 {
					t.Fatalf("item %d: %d neighbors, want 1", row.Item, len(row.Neighbors))
				}
				if got := row.Neighbors[0].Score; math.Abs(got-want) > 1e-12 {
					t.Errorf("item %d score = %v, want %v", row.Item, got, want)
				}
			}

			if _, err := os.Stat(cfg.Metrics.Textfile); err != nil {
				t.Errorf("metrics textfile not written: %v", err)
			}
		})
	}
}

func TestRun_OutputFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "ratings.csv"), []byte("u,i,r\n1,10,1\n1,20,1\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg := testConfig(dir)
	cfg.Output.Path = filepath.Join(dir, "model.jsonl")
	cfg.Output.Items = []int64{20}

	var stdout bytes.Buffer
	if err := run(context.Background(), cfg, &stdout); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if stdout.Len() != 0 {
		t.Errorf("stdout should be empty when output.path is set, got %q", stdout.String())
	}

	data, err := os.ReadFile(cfg.Output.Path)
	if err != nil {
		t.Fatal(err)
	}
	rows := decodeRows(t, data)
	if len(rows) != 1 || rows[0].Item != 20 || len(rows[0].Neighbors) != 1 || rows[0].Neighbors[0].Item != 10 {
		t.Errorf("rows = %+v", rows)
	}
}

func TestRun_MissingInput(t *testing.T) {
	cfg := testConfig(t.TempDir())
	if err := run(context.Background(), cfg, &bytes.Buffer{}); err == nil {
		t.Fatal("run() should fail when the ratings file is missing")
	}
}

func TestRun_Store(t *testing.T) {
	dir := t.TempDir()
	csv := "user,item,rating\n1,10,5\n1,20,4\n2,10,3\n2,20,1\n"
	if err := os.WriteFile(filepath.Join(dir, "ratings.csv"), []byte(csv), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg := testConfig(dir)
	cfg.Store = config.StoreConfig{Path: filepath.Join(dir, "models"), Name: "ratings"}

	var built bytes.Buffer
	if err := run(context.Background(), cfg, &built); err != nil {
		t.Fatalf("run() error = %v", err)
	}

	s, err := storage.Open(cfg.Store.Path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer s.Close()
	ctx := context.Background()

	t.Run("neighbors match build output", func(t *testing.T) {
		var out bytes.Buffer
		if err := printNeighbors(ctx, s, "ratings", []int64{10, 20}, &out); err != nil {
			t.Fatalf("printNeighbors() error = %v", err)
		}
		if out.String() != built.String() {
			t.Errorf("stored rows differ from build output:\n got: %s\nwant: %s", out.String(), built.String())
		}
	})

	t.Run("unknown model", func(t *testing.T) {
		err := printNeighbors(ctx, s, "missing", []int64{10}, &bytes.Buffer{})
		if !errors.Is(err, storage.ErrModelNotFound) {
			t.Errorf("printNeighbors() error = %v, want ErrModelNotFound", err)
		}
	})

	t.Run("models", func(t *testing.T) {
		var out bytes.Buffer
		if err := printModels(ctx, s, &out); err != nil {
			t.Fatalf("printModels() error = %v", err)
		}
		var meta storage.ModelMetadata
		if err := json.Unmarshal(bytes.TrimSpace(out.Bytes()), &meta); err != nil {
			t.Fatalf("bad JSON %q: %v", out.String(), err)
		}
		if meta.Name != "ratings" || meta.Builder != "direct" || meta.ItemCount != 2 || meta.PairCount != 2 {
			t.Errorf("metadata = %+v", meta)
		}
		if len(meta.BuildID) != 8 {
			t.Errorf("BuildID = %q, want the build's 8-character correlation ID", meta.BuildID)
		}
		if meta.InteractionCount != 4 || meta.UserCount != 2 {
			t.Errorf("InteractionCount, UserCount = %d, %d, want 4, 2", meta.InteractionCount, meta.UserCount)
		}
	})
}

func TestLogLevelFlag(t *testing.T) {
	original := zerolog.GlobalLevel()
	defer zerolog.SetGlobalLevel(original)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	defer rootCmd.SetOut(nil)
	rootCmd.SetArgs([]string{"models", "--store", t.TempDir(), "--log-level", "error"})
	defer rootCmd.SetArgs(nil)

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("models error = %v", err)
	}
	if zerolog.GlobalLevel() != zerolog.ErrorLevel {
		t.Errorf("global level = %v, want error", zerolog.GlobalLevel())
	}
	if out.Len() != 0 {
		t.Errorf("empty store listed models: %q", out.String())
	}
}
