// ItemKNN - Sparse Item Similarity Models
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/itemknn

package sparse

import (
	"cmp"
	"errors"
	"fmt"
	"iter"
	"slices"
)

// ErrLengthMismatch is returned when a value slice does not match its index.
var ErrLengthMismatch = errors.New("sparse: value count does not match index size")

// Entry is a single key/value pair.
type Entry struct {
	Key   int64
	Value float64
}

// Map is an immutable sparse vector stored in key order.
type Map struct {
	index  *Index
	values []float64
	def    float64
}

var emptyMap = &Map{index: emptyIndex}

// Empty returns the shared empty map.
func Empty() *Map {
	return emptyMap
}

// NewMap pairs an index with a value slice of the same length.
// values[i] belongs to the key at position idx.LowerBound()+i.
// The slice is not copied and must not be modified afterwards.
func NewMap(idx *Index, values []float64) (*Map, error) {
	if idx == nil {
		idx = emptyIndex
	}
	if len(values) != idx.Len() {
		return nil, fmt.Errorf("%w: %d values for %d keys", ErrLengthMismatch, len(values), idx.Len())
	}
	return &Map{index: idx, values: values}, nil
}

// FromMap freezes a Go map into a sorted sparse map.
func FromMap(m map[int64]float64) *Map {
	if len(m) == 0 {
		return emptyMap
	}
	keys := make([]int64, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	values := make([]float64, len(keys))
	for i, k := range keys {
		values[i] = m[k]
	}
	return &Map{index: &Index{keys: keys, hi: len(keys)}, values: values}
}

// FromEntries builds a map from unordered entries. When a key repeats, the
// last entry wins.
func FromEntries(entries []Entry) *Map {
	if len(entries) == 0 {
		return emptyMap
	}
	sorted := slices.Clone(entries)
	slices.SortStableFunc(sorted, func(a, b Entry) int {
		return cmp.Compare(a.Key, b.Key)
	})
	keys := make([]int64, 0, len(sorted))
	values := make([]float64, 0, len(sorted))
	for _, e := range sorted {
		if n := len(keys); n > 0 && keys[n-1] == e.Key {
			values[n-1] = e.Value
			continue
		}
		keys = append(keys, e.Key)
		values = append(values, e.Value)
	}
	return &Map{index: &Index{keys: keys, hi: len(keys)}, values: values}
}

// Index returns the key index backing this map.
func (m *Map) Index() *Index {
	return m.index
}

// Len returns the number of entries.
func (m *Map) Len() int {
	return len(m.values)
}

// Get returns the value for key, or the map's default (0 unless changed
// with WithDefault) when key is absent.
func (m *Map) Get(key int64) float64 {
	if pos := m.index.TryFind(key); pos >= 0 {
		return m.values[pos-m.index.lo]
	}
	return m.def
}

// Lookup returns the value for key and whether it is present.
func (m *Map) Lookup(key int64) (float64, bool) {
	if pos := m.index.TryFind(key); pos >= 0 {
		return m.values[pos-m.index.lo], true
	}
	return 0, false
}

// Contains reports whether key is present.
func (m *Map) Contains(key int64) bool {
	return m.index.Contains(key)
}

// KeyAt returns the i-th key in key order, 0 <= i < Len().
func (m *Map) KeyAt(i int) int64 {
	return m.index.Key(m.index.lo + i)
}

// ValueAt returns the i-th value in key order, 0 <= i < Len().
func (m *Map) ValueAt(i int) float64 {
	return m.values[i]
}

// WithDefault returns a view of m that reports d for absent keys.
func (m *Map) WithDefault(d float64) *Map {
	return &Map{index: m.index, values: m.values, def: d}
}

// All returns the entries in ascending key order.
func (m *Map) All() iter.Seq2[int64, float64] {
	return func(yield func(int64, float64) bool) {
		lo := m.index.lo
		for i, v := range m.values {
			if !yield(m.index.keys[lo+i], v) {
				return
			}
		}
	}
}

// Keys returns the keys in ascending order.
func (m *Map) Keys() iter.Seq[int64] {
	return m.index.Keys()
}

// Values returns a copy of the values in key order.
func (m *Map) Values() []float64 {
	return slices.Clone(m.values)
}

// Entries returns the entries in ascending key order as a slice.
func (m *Map) Entries() []Entry {
	out := make([]Entry, 0, m.Len())
	for k, v := range m.All() {
		out = append(out, Entry{Key: k, Value: v})
	}
	return out
}

// ByValue returns a view of the same entries ordered by descending value.
func (m *Map) ByValue() *ValueSortedMap {
	return newValueSortedMap(m.index, m.values, m.def)
}

// Dot computes the dot product with another sorted map by merging both key arrays.
// Maps that share an index are multiplied position by position.
func (m *Map) Dot(o *Map) float64 {
	var result float64
	if m.index.sameDomain(o.index) {
		for i, v := range m.values {
			result += v * o.values[i]
		}
		return result
	}

	k1, k2 := m.index.keys, o.index.keys
	i1, ub1 := m.index.lo, m.index.hi
	i2, ub2 := o.index.lo, o.index.hi
	for i1 < ub1 && i2 < ub2 {
		switch a, b := k1[i1], k2[i2]; {
		case a < b:
			i1++
		case b < a:
			i2++
		default:
			result += m.values[i1-m.index.lo] * o.values[i2-o.index.lo]
			i1++
			i2++
		}
	}
	return result
}

// Transform returns a new map over the same index with fn applied to every value.
// The index is shared, not copied.
func (m *Map) Transform(fn func(key int64, value float64) float64) *Map {
	if m.Len() == 0 {
		return m
	}
	values := make([]float64, len(m.values))
	lo := m.index.lo
	for i, v := range m.values {
		values[i] = fn(m.index.keys[lo+i], v)
	}
	return &Map{index: m.index, values: values, def: m.def}
}
