// ItemKNN - Sparse Item Similarity Models
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/itemknn

package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

func TestBadgerLogger_Levels(t *testing.T) {
	tests := []struct {
		name      string
		log       func(b *BadgerLogger)
		wantLevel string
		wantMsg   string
	}{
		{
			name:      "error",
			log:       func(b *BadgerLogger) { b.Errorf("compaction failed: %s\n", "disk full") },
			wantLevel: "error",
			wantMsg:   "compaction failed: disk full",
		},
		{
			name:      "warning",
			log:       func(b *BadgerLogger) { b.Warningf("slow write %d\n", 3) },
			wantLevel: "warn",
			wantMsg:   "slow write 3",
		},
		{
			name:      "info is demoted to debug",
			log:       func(b *BadgerLogger) { b.Infof("All %d tables opened\n", 2) },
			wantLevel: "debug",
			wantMsg:   "All 2 tables opened",
		},
		{
			name:      "debug is demoted to trace",
			log:       func(b *BadgerLogger) { b.Debugf("flush") },
			wantLevel: "trace",
			wantMsg:   "flush",
		},
	}

	original := zerolog.GlobalLevel()
	zerolog.SetGlobalLevel(zerolog.TraceLevel)
	defer zerolog.SetGlobalLevel(original)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			b := NewBadgerLoggerWithLogger(zerolog.New(&buf).Level(zerolog.TraceLevel))
			tt.log(b)

			var entry map[string]interface{}
			if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
				t.Fatalf("output is not JSON: %q: %v", buf.String(), err)
			}
			if entry["level"] != tt.wantLevel {
				t.Errorf("level = %v, want %s", entry["level"], tt.wantLevel)
			}
			if entry["message"] != tt.wantMsg {
				t.Errorf("message = %q, want %q", entry["message"], tt.wantMsg)
			}
		})
	}
}

func TestBadgerLogger_RespectsLevel(t *testing.T) {
	original := zerolog.GlobalLevel()
	zerolog.SetGlobalLevel(zerolog.TraceLevel)
	defer zerolog.SetGlobalLevel(original)

	var buf bytes.Buffer
	b := NewBadgerLoggerWithLogger(zerolog.New(&buf).Level(zerolog.InfoLevel))

	b.Infof("noise\n")
	b.Debugf("more noise\n")
	if buf.Len() != 0 {
		t.Errorf("expected no output at info level, got %q", buf.String())
	}

	b.Warningf("kept\n")
	if !strings.Contains(buf.String(), "kept") {
		t.Errorf("warning missing from output: %q", buf.String())
	}
}
