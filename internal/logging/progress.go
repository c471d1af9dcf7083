// ItemKNN - Sparse Item Similarity Models
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/itemknn

package logging

import (
	"context"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

// ProgressLogger reports progress through a fixed number of units of work.
// Advance may be called from many goroutines; at most one progress line is
// written per interval.
type ProgressLogger struct {
	ctx      context.Context
	label    string
	total    int
	done     atomic.Int64
	start    time.Time
	throttle rate.Sometimes
}

// NewProgressLogger creates a progress logger for total units of work.
// A non-positive interval logs on every call to Advance.
func NewProgressLogger(ctx context.Context, label string, total int, interval time.Duration) *ProgressLogger {
	p := &ProgressLogger{
		ctx:   ctx,
		label: label,
		total: total,
		start: time.Now(),
	}
	if interval > 0 {
		p.throttle = rate.Sometimes{Interval: interval}
	} else {
		p.throttle = rate.Sometimes{Every: 1}
	}
	return p
}

// Advance records one finished unit of work.
func (p *ProgressLogger) Advance() {
	n := p.done.Add(1)
	p.throttle.Do(func() {
		ev := Ctx(p.ctx).Info().
			Str("task", p.label).
			Int64("done", n).
			Int("total", p.total)
		if p.total > 0 {
			ev = ev.Float64("percent", 100*float64(n)/float64(p.total))
		}
		ev.Dur("elapsed", time.Since(p.start)).Msg("Progress")
	})
}

// Finish logs the completion line.
func (p *ProgressLogger) Finish(elapsed time.Duration) {
	Ctx(p.ctx).Info().
		Str("task", p.label).
		Int64("done", p.done.Load()).
		Int("total", p.total).
		Dur("elapsed", elapsed).
		Msg("Finished")
}

// Done returns the number of units recorded so far.
func (p *ProgressLogger) Done() int64 {
	return p.done.Load()
}
