// ItemKNN - Sparse Item Similarity Models
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/itemknn

package logging

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestProgressLogger_EveryCall(t *testing.T) {
	var buf bytes.Buffer
	setLogger(zerolog.New(&buf))

	p := NewProgressLogger(context.Background(), "items", 3, 0)
	p.Advance()
	p.Advance()
	p.Advance()

	if got := strings.Count(buf.String(), `"message":"Progress"`); got != 3 {
		t.Errorf("expected 3 progress lines, got %d: %s", got, buf.String())
	}
	if !strings.Contains(buf.String(), `"done":3`) {
		t.Errorf("expected final count in output: %s", buf.String())
	}
}

func TestProgressLogger_Throttled(t *testing.T) {
	var buf bytes.Buffer
	setLogger(zerolog.New(&buf))

	p := NewProgressLogger(context.Background(), "items", 1000, time.Hour)

	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 250; i++ {
				p.Advance()
			}
		}()
	}
	wg.Wait()

	if p.Done() != 1000 {
		t.Errorf("expected 1000 units, got %d", p.Done())
	}
	if got := strings.Count(buf.String(), `"message":"Progress"`); got != 1 {
		t.Errorf("expected a single throttled progress line, got %d", got)
	}

	buf.Reset()
	p.Finish(2 * time.Second)
	output := buf.String()
	if !strings.Contains(output, `"message":"Finished"`) || !strings.Contains(output, `"task":"items"`) {
		t.Errorf("unexpected completion line: %s", output)
	}
}
