// ItemKNN - Sparse Item Similarity Models
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/itemknn

// Package itemitem builds item-item similarity models.
//
// # Builders
//
// Builder scores item vectors pairwise with any Similarity. For each item it
// asks a NeighborStrategy for candidates, drops pairs with fewer than
// MinCommonUsers shared users, scores the rest, filters them through a
// Threshold, and adds survivors to the item's accumulator. Symmetric
// functions score each unordered pair once and write both rows.
//
// UserwiseBuilder computes cosine similarity from user vectors in a single
// streaming pass, accumulating dot products in a matrix.Matrix. For cosine
// it produces the same neighbors as Builder.
//
//	b, err := itemitem.NewBuilder(itemitem.Config{
//	    Similarity:     itemitem.Cosine{},
//	    ModelSize:      50,
//	    MinCommonUsers: 2,
//	})
//	if err != nil {
//	    return err
//	}
//	model, err := b.Build(ctx, dataset.Items())
//
// # Model Size
//
// A ModelSize of 0 keeps every retained neighbor. Otherwise each row keeps
// the ModelSize highest scores; a candidate equal to the current lowest score
// does not displace it.
//
// # Concurrency
//
// Items are spread over NumWorkers goroutines with an errgroup. Each row has
// its own mutex, taken only around accumulator writes. The first error or a
// cancelled context stops the build and no model is returned.
//
// Results do not depend on scheduling except for exact score ties at the
// ModelSize boundary of a row that also receives mirrored scores from other
// workers. With NumWorkers set to 1 every build is fully deterministic.
package itemitem
