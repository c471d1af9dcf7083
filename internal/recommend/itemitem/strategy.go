// ItemKNN - Sparse Item Similarity Models
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/itemknn

package itemitem

import (
	"fmt"
	"iter"

	"github.com/RoaringBitmap/roaring/v2"
)

// NeighborStrategy enumerates candidate neighbors for one item.
//
// Candidates are item positions in the build context, never including the
// item itself. When onlyAfter is true only positions greater than item are
// produced; symmetric builds use this to visit each unordered pair once.
// Candidates are produced in ascending position order.
type NeighborStrategy interface {
	Neighbors(bc *BuildContext, item int, onlyAfter bool) iter.Seq[int]
}

// AllNeighbors yields every other item.
type AllNeighbors struct{}

// Neighbors implements NeighborStrategy.
func (AllNeighbors) Neighbors(bc *BuildContext, item int, onlyAfter bool) iter.Seq[int] {
	return func(yield func(int) bool) {
		start := 0
		if onlyAfter {
			start = item + 1
		}
		for p := start; p < bc.Len(); p++ {
			if p == item {
				continue
			}
			if !yield(p) {
				return
			}
		}
	}
}

// SparseNeighbors yields only items that share at least one user with the
// given item, found by unioning per-user roaring bitmaps of item positions.
// It is only correct for sparse similarity functions.
type SparseNeighbors struct{}

// Neighbors implements NeighborStrategy.
func (SparseNeighbors) Neighbors(bc *BuildContext, item int, onlyAfter bool) iter.Seq[int] {
	return func(yield func(int) bool) {
		users := bc.userBitmaps()
		vec := bc.Vector(item)
		bms := make([]*roaring.Bitmap, 0, vec.Len())
		for u := range vec.Keys() {
			if bm, ok := users[u]; ok {
				bms = append(bms, bm)
			}
		}
		if len(bms) == 0 {
			return
		}

		// The union must be a fresh bitmap; the per-user ones are shared.
		var candidates *roaring.Bitmap
		if len(bms) == 1 {
			candidates = bms[0].Clone()
		} else {
			candidates = roaring.FastOr(bms...)
		}
		if onlyAfter {
			candidates.RemoveRange(0, uint64(item)+1)
		} else {
			candidates.Remove(uint32(item))
		}

		it := candidates.Iterator()
		for it.HasNext() {
			if !yield(int(it.Next())) {
				return
			}
		}
	}
}

// StrategyByName maps a configuration name to a NeighborStrategy. "auto"
// returns nil, which lets the builder pick one from the similarity function.
func StrategyByName(name string) (NeighborStrategy, error) {
	switch name {
	case "", "auto":
		return nil, nil
	case "all":
		return AllNeighbors{}, nil
	case "sparse":
		return SparseNeighbors{}, nil
	default:
		return nil, fmt.Errorf("unknown neighbor strategy %q", name)
	}
}
