// ItemKNN - Sparse Item Similarity Models
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/itemknn

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/tomtom215/itemknn/internal/config"
	"github.com/tomtom215/itemknn/internal/logging"
	"github.com/tomtom215/itemknn/internal/metrics"
	"github.com/tomtom215/itemknn/internal/recommend"
	"github.com/tomtom215/itemknn/internal/recommend/itemitem"
	"github.com/tomtom215/itemknn/internal/recommend/storage"
)

// run executes one build: read ratings, build the model, write rows, save
// the model, export metrics. Rows go to stdout unless cfg.Output.Path is
// set; the model is saved only when cfg.Store.Path is set.
func run(ctx context.Context, cfg *config.Config, stdout io.Writer) error {
	ctx = logging.ContextWithNewCorrelationID(ctx)
	logger := logging.Ctx(ctx)

	start := time.Now()
	delim := []rune(cfg.Input.Delimiter)[0]
	interactions, err := readRatings(cfg.Input.Path, delim, cfg.Input.Header)
	if err != nil {
		return err
	}
	data := recommend.NewDataset(interactions)
	logger.Info().
		Str("path", cfg.Input.Path).
		Int("rows", len(interactions)).
		Int("ratings", data.Len()).
		Int("users", len(data.UserIDs())).
		Int("items", len(data.ItemIDs())).
		Dur("elapsed", time.Since(start)).
		Msg("Ratings loaded")

	progress := logging.NewProgressLogger(ctx, "similarity", len(data.ItemIDs()), cfg.Logging.ProgressInterval)
	buildStart := time.Now()
	model, err := buildModel(ctx, cfg.Model, data, progress)
	if err != nil {
		return err
	}
	buildTime := time.Since(buildStart)

	if err := writeOutput(cfg.Output, model, stdout); err != nil {
		return err
	}

	if cfg.Store.Path != "" {
		meta := storage.ModelMetadata{
			Builder:          cfg.Model.Builder,
			Similarity:       cfg.Model.Similarity,
			BuildID:          logging.CorrelationIDFromContext(ctx),
			BuiltAt:          buildStart.Add(buildTime).UTC(),
			InteractionCount: data.Len(),
			UserCount:        len(data.UserIDs()),
			BuildDurationMS:  buildTime.Milliseconds(),
		}
		if err := saveModel(ctx, cfg.Store, model, meta); err != nil {
			return err
		}
	}

	if cfg.Metrics.Textfile != "" {
		if err := metrics.WriteTextfile(cfg.Metrics.Textfile); err != nil {
			return err
		}
		logger.Debug().Str("path", cfg.Metrics.Textfile).Msg("Metrics written")
	}
	return nil
}

// buildModel builds a model from data with the configured builder.
func buildModel(ctx context.Context, cfg config.ModelConfig, data *recommend.Dataset, progress itemitem.Progress) (*itemitem.Model, error) {
	threshold, err := itemitem.ThresholdByMode(cfg.ThresholdMode, cfg.Threshold)
	if err != nil {
		return nil, err
	}

	if cfg.Builder == "userwise" {
		normalizer, err := recommend.NormalizerByName(cfg.Normalizer)
		if err != nil {
			return nil, err
		}
		b, err := itemitem.NewUserwiseBuilder(itemitem.UserwiseConfig{
			Normalizer: normalizer,
			Threshold:  threshold,
			ModelSize:  cfg.ModelSize,
			Damping:    cfg.Damping,
			NumWorkers: cfg.NumWorkers,
			Progress:   progress,
		})
		if err != nil {
			return nil, err
		}
		return b.Build(ctx, data.Users())
	}

	sim, err := itemitem.SimilarityByName(cfg.Similarity, cfg.Damping, cfg.Alpha, cfg.Shrinkage)
	if err != nil {
		return nil, err
	}
	strategy, err := itemitem.StrategyByName(cfg.NeighborStrategy)
	if err != nil {
		return nil, err
	}
	b, err := itemitem.NewBuilder(itemitem.Config{
		Similarity:     sim,
		Threshold:      threshold,
		Strategy:       strategy,
		ModelSize:      cfg.ModelSize,
		MinCommonUsers: cfg.MinCommonUsers,
		NumWorkers:     cfg.NumWorkers,
		Progress:       progress,
	})
	if err != nil {
		return nil, err
	}
	return b.Build(ctx, data.Items())
}

func writeOutput(cfg config.OutputConfig, model *itemitem.Model, stdout io.Writer) error {
	if cfg.Path == "" {
		return writeModel(stdout, model, cfg.Items)
	}

	f, err := os.Create(cfg.Path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	if err := writeModel(f, model, cfg.Items); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close output: %w", err)
	}
	return nil
}
