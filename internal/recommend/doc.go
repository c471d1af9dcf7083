// ItemKNN - Sparse Item Similarity Models
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/itemknn

// Package recommend defines the rating data consumed by the model builders.
//
// # Data Flow
//
// Raw Interaction records are collected into a Dataset, which freezes one
// sparse vector per item (keyed by user) and one per user (keyed by item).
// Model builders never see the Dataset directly; they read vectors through
// the Source interface:
//
//	ds := recommend.NewDataset(interactions)
//	model, err := builder.Build(ctx, ds.Items())
//
// A Source may be backed by anything that can produce (id, vector) pairs.
// Each pass is a Stream that is consumed once and closed.
//
// # Normalization
//
// Normalizers rewrite user vectors before the user-wise cosine builder
// accumulates them. MeanCenteringNormalizer turns plain cosine into an
// adjusted cosine.
//
// # Thread Safety
//
// Dataset and every vector it returns are immutable and safe for concurrent
// use. Streams are not.
package recommend
