// ItemKNN - Sparse Item Similarity Models
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/itemknn

package sparse

import (
	"cmp"
	"fmt"
	"iter"
	"slices"
)

// ValueSortedMap is an immutable sparse vector iterated in descending value order.
// Lookups by key still go through the sorted index.
type ValueSortedMap struct {
	index  *Index
	values []float64
	order  []int32
	def    float64
}

// NewValueSortedMap pairs an index with values in key order and precomputes
// the descending-value permutation. Equal values are ordered by ascending key.
func NewValueSortedMap(idx *Index, values []float64) (*ValueSortedMap, error) {
	if idx == nil {
		idx = emptyIndex
	}
	if len(values) != idx.Len() {
		return nil, fmt.Errorf("%w: %d values for %d keys", ErrLengthMismatch, len(values), idx.Len())
	}
	return newValueSortedMap(idx, values, 0), nil
}

func newValueSortedMap(idx *Index, values []float64, def float64) *ValueSortedMap {
	order := make([]int32, len(values))
	for i := range order {
		order[i] = int32(i)
	}
	slices.SortStableFunc(order, func(a, b int32) int {
		return cmp.Compare(values[b], values[a])
	})
	return &ValueSortedMap{index: idx, values: values, order: order, def: def}
}

// Index returns the key index backing this map.
func (m *ValueSortedMap) Index() *Index {
	return m.index
}

// Len returns the number of entries.
func (m *ValueSortedMap) Len() int {
	return len(m.values)
}

// Get returns the value for key, or the default when absent.
func (m *ValueSortedMap) Get(key int64) float64 {
	if pos := m.index.TryFind(key); pos >= 0 {
		return m.values[pos-m.index.lo]
	}
	return m.def
}

// Lookup returns the value for key and whether it is present.
func (m *ValueSortedMap) Lookup(key int64) (float64, bool) {
	if pos := m.index.TryFind(key); pos >= 0 {
		return m.values[pos-m.index.lo], true
	}
	return 0, false
}

// Contains reports whether key is present.
func (m *ValueSortedMap) Contains(key int64) bool {
	return m.index.Contains(key)
}

// At returns the entry with the given rank, where rank 0 has the highest value.
func (m *ValueSortedMap) At(rank int) Entry {
	i := int(m.order[rank])
	return Entry{Key: m.index.keys[m.index.lo+i], Value: m.values[i]}
}

// All returns the entries in descending value order.
func (m *ValueSortedMap) All() iter.Seq2[int64, float64] {
	return func(yield func(int64, float64) bool) {
		lo := m.index.lo
		for _, i := range m.order {
			if !yield(m.index.keys[lo+int(i)], m.values[i]) {
				return
			}
		}
	}
}

// Keys returns the keys in descending value order.
func (m *ValueSortedMap) Keys() iter.Seq[int64] {
	return func(yield func(int64) bool) {
		for k := range m.All() {
			if !yield(k) {
				return
			}
		}
	}
}

// Entries returns the entries in descending value order as a slice.
func (m *ValueSortedMap) Entries() []Entry {
	out := make([]Entry, 0, m.Len())
	for k, v := range m.All() {
		out = append(out, Entry{Key: k, Value: v})
	}
	return out
}

// SortedByKey returns the same entries as a key-ordered Map.
// The index and values are shared, not copied.
func (m *ValueSortedMap) SortedByKey() *Map {
	return &Map{index: m.index, values: m.values, def: m.def}
}
