// ItemKNN - Sparse Item Similarity Models
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/itemknn

package sparse

import (
	"cmp"
	"iter"
	"math"
	"slices"
)

// Vector is the read-only view shared by every sparse vector in this module.
type Vector interface {
	// Get returns the value for key, or a default when key is absent.
	Get(key int64) float64
	// Lookup returns the value for key and whether it is present.
	Lookup(key int64) (float64, bool)
	// Len returns the number of stored entries.
	Len() int
	// All yields every stored entry exactly once.
	All() iter.Seq2[int64, float64]
}

var (
	_ Vector = (*Map)(nil)
	_ Vector = (*ValueSortedMap)(nil)
)

// Dot computes the dot product of two vectors. Sorted maps use a merge join;
// other vectors iterate the shorter side and look up the longer one.
func Dot(a, b Vector) float64 {
	if ma, ok := a.(*Map); ok {
		if mb, ok := b.(*Map); ok {
			return ma.Dot(mb)
		}
	}
	if a.Len() > b.Len() {
		a, b = b, a
	}
	var sum float64
	for k, v := range a.All() {
		if w, ok := b.Lookup(k); ok {
			sum += v * w
		}
	}
	return sum
}

// SumOfSquares returns the sum of squared values.
func SumOfSquares(v Vector) float64 {
	var ss float64
	for _, x := range v.All() {
		ss += x * x
	}
	return ss
}

// Norm returns the Euclidean norm.
func Norm(v Vector) float64 {
	return math.Sqrt(SumOfSquares(v))
}

// Sum returns the sum of values.
func Sum(v Vector) float64 {
	var s float64
	for _, x := range v.All() {
		s += x
	}
	return s
}

// Mean returns the mean of the stored values, or 0 for an empty vector.
func Mean(v Vector) float64 {
	n := v.Len()
	if n == 0 {
		return 0
	}
	return Sum(v) / float64(n)
}

// CommonKeys counts keys present in both maps.
func CommonKeys(a, b *Map) int {
	n := 0
	forCommon(a, b, func(int, int) bool {
		n++
		return true
	})
	return n
}

// HasNCommonKeys reports whether a and b share at least n keys.
// The scan stops as soon as the answer is known.
func HasNCommonKeys(a, b *Map, n int) bool {
	if n <= 0 {
		return true
	}
	if a.Len() < n || b.Len() < n {
		return false
	}
	found := 0
	forCommon(a, b, func(int, int) bool {
		found++
		return found < n
	})
	return found >= n
}

// forCommon calls fn with the value offsets of every key present in both maps.
func forCommon(a, b *Map, fn func(ia, ib int) bool) {
	ka, kb := a.index.keys, b.index.keys
	i, ub1 := a.index.lo, a.index.hi
	j, ub2 := b.index.lo, b.index.hi
	for i < ub1 && j < ub2 {
		switch x, y := ka[i], kb[j]; {
		case x < y:
			i++
		case y < x:
			j++
		default:
			if !fn(i-a.index.lo, j-b.index.lo) {
				return
			}
			i++
			j++
		}
	}
}

// Freeze returns an immutable key-ordered copy of any vector.
// A *Map is returned as-is.
func Freeze(v Vector) *Map {
	switch t := v.(type) {
	case *Map:
		return t
	case *ValueSortedMap:
		return t.SortedByKey()
	}
	if v.Len() == 0 {
		return emptyMap
	}
	entries := make([]Entry, 0, v.Len())
	for k, x := range v.All() {
		entries = append(entries, Entry{Key: k, Value: x})
	}
	slices.SortFunc(entries, func(a, b Entry) int {
		return cmp.Compare(a.Key, b.Key)
	})
	keys := make([]int64, len(entries))
	values := make([]float64, len(entries))
	for i, e := range entries {
		keys[i] = e.Key
		values[i] = e.Value
	}
	return &Map{index: &Index{keys: keys, hi: len(keys)}, values: values}
}
