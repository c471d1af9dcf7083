// ItemKNN - Sparse Item Similarity Models
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/itemknn

package itemitem

import (
	"context"
	"fmt"
	"maps"
	"math"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/itemknn/internal/logging"
	"github.com/tomtom215/itemknn/internal/matrix"
	"github.com/tomtom215/itemknn/internal/metrics"
	"github.com/tomtom215/itemknn/internal/recommend"
	"github.com/tomtom215/itemknn/internal/sparse"
)

// UserwiseConfig configures the user-wise cosine builder.
type UserwiseConfig struct {
	// Normalizer rewrites each user vector before accumulation.
	// Default: recommend.IdentityNormalizer.
	Normalizer recommend.Normalizer

	// Threshold filters cosine scores. Default: RealThreshold(0).
	Threshold Threshold

	// ModelSize is the maximum number of neighbors kept per item.
	// 0 keeps every neighbor that passes the threshold.
	ModelSize int

	// Damping is added to the cosine denominator, as in Cosine.
	Damping float64

	// NumWorkers is the number of parallel workers for the finishing pass.
	// Default: 4.
	NumWorkers int

	// Progress is notified as item rows finish. Optional.
	Progress Progress
}

// UserwiseBuilder computes cosine item-item models from user vectors.
//
// It makes one pass over the users, adding every co-rating product into a
// sparse dot-product matrix and every squared rating into per-item sums of
// squares. A second, parallel pass turns each matrix row into cosine scores.
// Only items that share a user ever get a matrix cell, so the cost follows
// the number of co-ratings rather than the number of item pairs.
//
// For the same input it yields the same neighbors as Builder with Cosine.
type UserwiseBuilder struct {
	cfg UserwiseConfig
}

// NewUserwiseBuilder validates cfg, fills in defaults, and returns a builder.
func NewUserwiseBuilder(cfg UserwiseConfig) (*UserwiseBuilder, error) {
	if cfg.ModelSize < 0 {
		return nil, fmt.Errorf("model size must be >= 0, got %d", cfg.ModelSize)
	}
	if cfg.Normalizer == nil {
		cfg.Normalizer = recommend.IdentityNormalizer{}
	}
	if cfg.Threshold == nil {
		cfg.Threshold = RealThreshold(0)
	}
	if cfg.NumWorkers <= 0 {
		cfg.NumWorkers = DefaultNumWorkers
	}
	if cfg.Progress == nil {
		cfg.Progress = noProgress{}
	}
	return &UserwiseBuilder{cfg: cfg}, nil
}

// Build streams user vectors from users once and computes the model.
// No model is returned if the source fails or ctx is cancelled.
func (b *UserwiseBuilder) Build(ctx context.Context, users recommend.Source) (*Model, error) {
	ctx = logging.EnsureCorrelationID(ctx)
	logger := logging.Ctx(ctx)
	start := time.Now()

	logger.Info().
		Int("users", users.Count()).
		Int("workers", b.cfg.NumWorkers).
		Int("model_size", b.cfg.ModelSize).
		Str("normalizer", fmt.Sprintf("%T", b.cfg.Normalizer)).
		Msg("Building user-wise cosine model")

	dots, sumsOfSquares, err := b.accumulate(ctx, users)
	if err != nil {
		metrics.RecordBuild("userwise", time.Since(start), 0, err)
		logger.Error().Err(err).Msg("User-wise build failed")
		return nil, err
	}
	metrics.RecordRowUpgrades(dots.Upgrades())

	model, retained, skipped, err := b.finish(ctx, dots, sumsOfSquares)
	if err != nil {
		metrics.RecordBuild("userwise", time.Since(start), 0, err)
		logger.Error().Err(err).Msg("User-wise build failed")
		return nil, err
	}

	elapsed := time.Since(start)
	b.cfg.Progress.Finish(elapsed)
	metrics.RecordRetainedPairs("userwise", retained)
	metrics.RecordSkippedPairs(metrics.SkipThreshold, skipped)
	metrics.RecordBuild("userwise", elapsed, model.Len(), nil)

	logger.Info().
		Int("items", model.Len()).
		Int("pairs", model.PairCount()).
		Int("row_upgrades", dots.Upgrades()).
		Dur("elapsed", elapsed).
		Msg("User-wise cosine model built")
	return model, nil
}

// accumulate streams the users and fills the dot-product matrix and the
// per-item sums of squares.
func (b *UserwiseBuilder) accumulate(ctx context.Context, users recommend.Source) (*matrix.Matrix, map[int64]float64, error) {
	s, err := users.Stream(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("open user stream: %w", err)
	}
	defer s.Close() //nolint:errcheck // read-only stream

	dots := matrix.New()
	sumsOfSquares := make(map[int64]float64)
	for s.Next() {
		v := b.cfg.Normalizer.Normalize(s.ID(), s.Vector())
		n := v.Len()
		for a := 0; a < n; a++ {
			i, xi := v.KeyAt(a), v.ValueAt(a)
			sumsOfSquares[i] += xi * xi
			for c := 0; c < n; c++ {
				if c == a {
					continue
				}
				dots.AddTo(i, v.KeyAt(c), xi*v.ValueAt(c))
			}
		}
	}
	if err := s.Err(); err != nil {
		return nil, nil, fmt.Errorf("read user stream: %w", err)
	}
	return dots, sumsOfSquares, nil
}

// finish converts each dot-product row to cosine scores. Rows are taken out
// of the matrix one at a time under a lock, so the matrix shrinks as the
// pass proceeds; scoring happens outside the lock.
func (b *UserwiseBuilder) finish(ctx context.Context, dots *matrix.Matrix, sumsOfSquares map[int64]float64) (*Model, int64, int64, error) {
	ids := slices.Sorted(maps.Keys(sumsOfSquares))
	items, err := sparse.FromSorted(ids)
	if err != nil {
		return nil, 0, 0, err
	}
	norms := make(map[int64]float64, len(ids))
	for _, id := range ids {
		norms[id] = math.Sqrt(sumsOfSquares[id])
	}

	var mu sync.Mutex
	take := func(id int64) *sparse.Map {
		mu.Lock()
		defer mu.Unlock()
		row := dots.Row(id, false)
		if view, ok := row.(*matrix.RowView); ok {
			frozen := view.Freeze()
			dots.ClearRow(id)
			return frozen
		}
		return sparse.Empty()
	}

	rows := make([]sparse.Vector, len(ids))
	var retained, skipped atomic.Int64
	var next atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < b.cfg.NumWorkers; w++ {
		g.Go(func() error {
			for {
				if err := gctx.Err(); err != nil {
					return err
				}
				p := int(next.Add(1) - 1)
				if p >= len(ids) {
					return nil
				}
				id := ids[p]
				row := take(id)
				normI := norms[id]
				if normI == 0 || row.Len() == 0 {
					rows[p] = sparse.Empty()
					b.cfg.Progress.Advance()
					continue
				}

				acc := newAccumulator(b.cfg.ModelSize)
				var kept, dropped int64
				for j, dot := range row.All() {
					denom := normI*norms[j] + b.cfg.Damping
					if denom == 0 {
						continue
					}
					sim := dot / denom
					if !b.cfg.Threshold.Retain(sim) {
						dropped++
						continue
					}
					acc.Put(j, sim)
					kept++
				}
				rows[p] = acc.Finish()
				retained.Add(kept)
				skipped.Add(dropped)
				b.cfg.Progress.Advance()
			}
		})
	}
	if err := g.Wait(); err != nil {
		return nil, 0, 0, err
	}
	return newModel(items, rows), retained.Load(), skipped.Load(), nil
}
