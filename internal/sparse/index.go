// ItemKNN - Sparse Item Similarity Models
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/itemknn

package sparse

import (
	"errors"
	"fmt"
	"iter"
	"slices"
)

// ErrUnsorted is returned when keys passed as pre-sorted are not strictly increasing.
var ErrUnsorted = errors.New("sparse: keys are not strictly increasing")

// Index is an immutable sorted array of distinct int64 keys.
//
// Positions are absolute offsets into the backing array and lie in
// [LowerBound(), UpperBound()).
type Index struct {
	keys []int64
	lo   int
	hi   int
}

var emptyIndex = &Index{}

// EmptyIndex returns the shared empty index.
func EmptyIndex() *Index {
	return emptyIndex
}

// NewIndex builds an index from an arbitrary key collection.
// The input is copied, sorted, and deduplicated; the caller keeps ownership of keys.
func NewIndex(keys []int64) *Index {
	if len(keys) == 0 {
		return emptyIndex
	}
	ks := slices.Clone(keys)
	slices.Sort(ks)
	ks = slices.Compact(ks)
	return &Index{keys: ks, hi: len(ks)}
}

// FromSorted wraps keys that are already strictly increasing.
// The slice is not copied and must not be modified afterwards.
func FromSorted(keys []int64) (*Index, error) {
	for i := 1; i < len(keys); i++ {
		if keys[i] <= keys[i-1] {
			return nil, fmt.Errorf("%w: key %d at position %d follows %d", ErrUnsorted, keys[i], i, keys[i-1])
		}
	}
	if len(keys) == 0 {
		return emptyIndex, nil
	}
	return &Index{keys: keys, hi: len(keys)}, nil
}

// Len returns the number of keys in the index.
func (x *Index) Len() int {
	return x.hi - x.lo
}

// LowerBound returns the first valid position.
func (x *Index) LowerBound() int {
	return x.lo
}

// UpperBound returns one past the last valid position.
func (x *Index) UpperBound() int {
	return x.hi
}

// Key returns the key at an absolute position.
// It panics if pos is outside [LowerBound, UpperBound).
func (x *Index) Key(pos int) int64 {
	if pos < x.lo || pos >= x.hi {
		panic(fmt.Sprintf("sparse: position %d out of range [%d, %d)", pos, x.lo, x.hi))
	}
	return x.keys[pos]
}

// TryFind searches for key. It returns the key's absolute position when present.
// Otherwise it returns -(insertion point)-1, where the insertion point is the
// absolute position at which key would be inserted.
func (x *Index) TryFind(key int64) int {
	pos, found := slices.BinarySearch(x.keys[x.lo:x.hi], key)
	if found {
		return x.lo + pos
	}
	return -(x.lo + pos) - 1
}

// Find returns the absolute position of key and whether it is present.
func (x *Index) Find(key int64) (int, bool) {
	pos := x.TryFind(key)
	if pos < 0 {
		return -pos - 1, false
	}
	return pos, true
}

// Contains reports whether key is in the index.
func (x *Index) Contains(key int64) bool {
	return x.TryFind(key) >= 0
}

// Sub returns the sub-index of keys in the half-open range [from, to).
// The result shares the backing array.
func (x *Index) Sub(from, to int64) *Index {
	if to <= from {
		return x.slice(x.lo, x.lo)
	}
	start, _ := x.Find(from)
	end, _ := x.Find(to)
	return x.slice(start, end)
}

// After returns the sub-index of keys strictly greater than key.
func (x *Index) After(key int64) *Index {
	pos, found := x.Find(key)
	if found {
		pos++
	}
	return x.slice(pos, x.hi)
}

func (x *Index) slice(start, end int) *Index {
	if start == x.lo && end == x.hi {
		return x
	}
	if start >= end {
		return emptyIndex
	}
	return &Index{keys: x.keys, lo: start, hi: end}
}

// Keys returns the keys in ascending order.
func (x *Index) Keys() iter.Seq[int64] {
	return func(yield func(int64) bool) {
		for i := x.lo; i < x.hi; i++ {
			if !yield(x.keys[i]) {
				return
			}
		}
	}
}

// KeySlice returns a copy of the keys in ascending order.
func (x *Index) KeySlice() []int64 {
	return slices.Clone(x.keys[x.lo:x.hi])
}

// Equal reports whether two indexes hold the same keys.
func (x *Index) Equal(other *Index) bool {
	if x == other {
		return true
	}
	return slices.Equal(x.keys[x.lo:x.hi], other.keys[other.lo:other.hi])
}

// sameDomain reports whether two indexes share their backing storage and bounds.
func (x *Index) sameDomain(other *Index) bool {
	if x == other {
		return true
	}
	if x.Len() != other.Len() || x.Len() == 0 {
		return x.Len() == other.Len()
	}
	return &x.keys[x.lo] == &other.keys[other.lo]
}
