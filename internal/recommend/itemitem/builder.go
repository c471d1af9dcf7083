// ItemKNN - Sparse Item Similarity Models
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/itemknn

package itemitem

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/itemknn/internal/accum"
	"github.com/tomtom215/itemknn/internal/logging"
	"github.com/tomtom215/itemknn/internal/metrics"
	"github.com/tomtom215/itemknn/internal/recommend"
	"github.com/tomtom215/itemknn/internal/sparse"
)

// ErrNoSimilarity is returned when a builder is configured without a
// similarity function.
var ErrNoSimilarity = errors.New("itemitem: no similarity function configured")

// DefaultNumWorkers is used when Config.NumWorkers is not positive.
const DefaultNumWorkers = 4

// Progress observes a build. It is notified once per processed item and once
// at the end; it has no effect on the result.
type Progress interface {
	Advance()
	Finish(elapsed time.Duration)
}

type noProgress struct{}

func (noProgress) Advance() {}

func (noProgress) Finish(time.Duration) {}

// Config configures the direct item-item builder.
type Config struct {
	// Similarity scores item pairs. Required.
	Similarity Similarity

	// Threshold filters raw scores. Default: RealThreshold(0).
	Threshold Threshold

	// Strategy enumerates candidate neighbors. Default: SparseNeighbors for
	// sparse similarity functions, AllNeighbors otherwise.
	Strategy NeighborStrategy

	// ModelSize is the maximum number of neighbors kept per item.
	// 0 keeps every neighbor that passes the threshold.
	ModelSize int

	// MinCommonUsers is the minimum number of users two items must share
	// before they are scored.
	MinCommonUsers int

	// NumWorkers is the number of parallel workers. Default: 4.
	NumWorkers int

	// Progress is notified as items finish. Optional.
	Progress Progress
}

// Builder computes item-item models by scoring item vectors pairwise.
//
// Items are processed in parallel. Each item's neighbor row is guarded by its
// own mutex, held only while a score is added; the similarity function runs
// outside any lock. For symmetric similarity functions each unordered pair is
// scored once and written to both rows.
type Builder struct {
	cfg Config
}

// NewBuilder validates cfg, fills in defaults, and returns a Builder.
func NewBuilder(cfg Config) (*Builder, error) {
	if cfg.Similarity == nil {
		return nil, ErrNoSimilarity
	}
	if cfg.ModelSize < 0 {
		return nil, fmt.Errorf("model size must be >= 0, got %d", cfg.ModelSize)
	}
	if cfg.MinCommonUsers < 0 {
		return nil, fmt.Errorf("min common users must be >= 0, got %d", cfg.MinCommonUsers)
	}
	if cfg.Threshold == nil {
		cfg.Threshold = RealThreshold(0)
	}
	if cfg.Strategy == nil {
		if cfg.Similarity.Sparse() {
			cfg.Strategy = SparseNeighbors{}
		} else {
			cfg.Strategy = AllNeighbors{}
		}
	}
	if cfg.NumWorkers <= 0 {
		cfg.NumWorkers = DefaultNumWorkers
	}
	if cfg.Progress == nil {
		cfg.Progress = noProgress{}
	}
	return &Builder{cfg: cfg}, nil
}

// newAccumulator picks the accumulator variant for a model size.
func newAccumulator(modelSize int) accum.Accumulator {
	if modelSize == 0 {
		return accum.NewUnlimited()
	}
	return accum.NewTopN(modelSize)
}

// lockedRow is one item's accumulator and the mutex guarding it.
type lockedRow struct {
	mu  sync.Mutex
	acc accum.Accumulator
}

func (r *lockedRow) put(key int64, value float64) {
	r.mu.Lock()
	r.acc.Put(key, value)
	r.mu.Unlock()
}

// buildStats accumulates pair counts across workers.
type buildStats struct {
	retained      atomic.Int64
	skipCommon    atomic.Int64
	skipThreshold atomic.Int64
}

// Build reads item vectors from src and computes the model.
// No model is returned if the source fails or ctx is cancelled.
func (b *Builder) Build(ctx context.Context, src recommend.Source) (*Model, error) {
	ctx = logging.EnsureCorrelationID(ctx)
	start := time.Now()

	bc, err := NewBuildContext(ctx, src)
	if err != nil {
		metrics.RecordBuild("direct", time.Since(start), 0, err)
		logging.Ctx(ctx).Error().Err(err).Msg("Item-item build failed")
		return nil, err
	}
	return b.BuildFromContext(ctx, bc)
}

// BuildFromContext computes the model over already loaded item vectors.
func (b *Builder) BuildFromContext(ctx context.Context, bc *BuildContext) (*Model, error) {
	ctx = logging.EnsureCorrelationID(ctx)
	logger := logging.Ctx(ctx)
	start := time.Now()

	symmetric := b.cfg.Similarity.Symmetric()
	logger.Info().
		Int("items", bc.Len()).
		Int("workers", b.cfg.NumWorkers).
		Int("model_size", b.cfg.ModelSize).
		Int("min_common_users", b.cfg.MinCommonUsers).
		Bool("symmetric", symmetric).
		Str("similarity", fmt.Sprintf("%T", b.cfg.Similarity)).
		Str("strategy", fmt.Sprintf("%T", b.cfg.Strategy)).
		Msg("Building item-item model")

	rows := make([]lockedRow, bc.Len())
	for p := range rows {
		rows[p].acc = newAccumulator(b.cfg.ModelSize)
	}

	var stats buildStats
	var next atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < b.cfg.NumWorkers; w++ {
		g.Go(func() error {
			for {
				if err := gctx.Err(); err != nil {
					return err
				}
				p := int(next.Add(1) - 1)
				if p >= bc.Len() {
					return nil
				}
				b.scoreItem(bc, p, symmetric, rows, &stats)
				b.cfg.Progress.Advance()
			}
		})
	}
	if err := g.Wait(); err != nil {
		metrics.RecordBuild("direct", time.Since(start), 0, err)
		logger.Error().Err(err).Msg("Item-item build failed")
		return nil, err
	}

	finished := make([]sparse.Vector, len(rows))
	for p := range rows {
		finished[p] = rows[p].acc.Finish()
	}
	model := newModel(bc.Items(), finished)

	elapsed := time.Since(start)
	b.cfg.Progress.Finish(elapsed)
	metrics.RecordRetainedPairs("direct", stats.retained.Load())
	metrics.RecordSkippedPairs(metrics.SkipMinCommon, stats.skipCommon.Load())
	metrics.RecordSkippedPairs(metrics.SkipThreshold, stats.skipThreshold.Load())
	metrics.RecordBuild("direct", elapsed, model.Len(), nil)

	logger.Info().
		Int("items", model.Len()).
		Int("pairs", model.PairCount()).
		Int64("retained", stats.retained.Load()).
		Int64("skipped_min_common", stats.skipCommon.Load()).
		Int64("skipped_threshold", stats.skipThreshold.Load()).
		Dur("elapsed", elapsed).
		Msg("Item-item model built")
	return model, nil
}

// scoreItem scores item p against its candidates and records retained pairs.
func (b *Builder) scoreItem(bc *BuildContext, p int, symmetric bool, rows []lockedRow, stats *buildStats) {
	vi := bc.Vector(p)
	minCommon := b.cfg.MinCommonUsers
	if vi.Len() == 0 || vi.Len() < minCommon {
		return
	}
	id := bc.ItemID(p)

	var retained, skipCommon, skipThreshold int64
	for q := range b.cfg.Strategy.Neighbors(bc, p, symmetric) {
		vj := bc.Vector(q)
		if !sparse.HasNCommonKeys(vi, vj, minCommon) {
			skipCommon++
			continue
		}

		nid := bc.ItemID(q)
		sim := b.cfg.Similarity.Similarity(id, vi, nid, vj)
		if !b.cfg.Threshold.Retain(sim) {
			skipThreshold++
			continue
		}

		rows[p].put(nid, sim)
		retained++
		if symmetric {
			rows[q].put(id, sim)
			retained++
		}
	}

	stats.retained.Add(retained)
	stats.skipCommon.Add(skipCommon)
	stats.skipThreshold.Add(skipThreshold)
}
