// ItemKNN - Sparse Item Similarity Models
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/itemknn

// Package sparse provides compact, immutable, array-backed sparse vectors
// keyed by int64 identifiers.
//
// # Building Blocks
//
//   - Index: a sorted array of unique keys with binary-search lookup. An
//     index is immutable and may be shared by any number of maps that use the
//     same key domain.
//   - Map: an Index plus a parallel value slice, iterated in key order.
//   - ValueSortedMap: the same storage plus a permutation that orders entries
//     by descending value.
//
// All three satisfy the read-only Vector interface. None of them expose
// mutators, so a frozen vector can be shared across goroutines without locks.
//
// # Positions
//
// Index positions are absolute offsets into the backing key array, in the
// half-open range [LowerBound, UpperBound). Sub-indexes share the backing
// array with their parent and only narrow the bounds.
//
// # Iteration
//
// Iterators are range-over-func sequences. Each yielded key and value is a
// copy, so callers may retain them past the current step. Because maps are
// immutable, every sequence is restartable.
//
//	for k, v := range m.All() {
//	    fmt.Println(k, v)
//	}
package sparse
