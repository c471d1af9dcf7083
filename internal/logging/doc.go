// ItemKNN - Sparse Item Similarity Models
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/itemknn

// Package logging provides centralized zerolog-based structured logging for ItemKNN.
//
// # Quick Start
//
//	import "github.com/tomtom215/itemknn/internal/logging"
//
//	// Initialize at application startup
//	logging.Init(logging.Config{
//	    Level:  "info",
//	    Format: "json",
//	})
//
//	// Log messages with structured fields
//	logging.Info().Int("items", n).Msg("Dataset loaded")
//	logging.Warn().Err(err).Msg("Close model store")
//
//	// Context-aware logging
//	ctx = logging.ContextWithNewCorrelationID(ctx)
//	logging.Ctx(ctx).Info().Msg("Build started")
//
// # Progress Reporting
//
// ProgressLogger counts finished units of work from any number of
// goroutines and emits a progress line at most once per interval, using
// golang.org/x/time/rate.Sometimes for throttling:
//
//	p := logging.NewProgressLogger(ctx, "item-item", len(items), 5*time.Second)
//	for range items {
//	    p.Advance()
//	}
//	p.Finish(time.Since(start))
//
// # Third-Party Loggers
//
// BadgerLogger adapts zerolog to BadgerDB's Logger interface, so the model
// store logs through the same pipeline:
//
//	opts := badger.DefaultOptions(dir).WithLogger(logging.NewBadgerLogger())
//
// # Best Practices
//
// Always terminate log chains with .Msg() or .Send():
//
//	logging.Info().Str("key", "value").Msg("message")  // Correct
//	logging.Info().Str("key", "value")                 // WRONG - log not emitted
package logging
