// ItemKNN - Sparse Item Similarity Models
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/itemknn

package itemitem

import (
	"cmp"
	"iter"
	"maps"
	"slices"

	"github.com/tomtom215/itemknn/internal/sparse"
)

// Model is an immutable item-item similarity model: for every item, the
// sparse vector of its retained neighbors and their scores.
type Model struct {
	items *sparse.Index
	rows  []sparse.Vector
}

// NewModel assembles a model from finished rows. Nil rows become empty.
func NewModel(rows map[int64]sparse.Vector) *Model {
	ids := slices.Sorted(maps.Keys(rows))
	idx, _ := sparse.FromSorted(ids) // sorted map keys are unique
	vs := make([]sparse.Vector, len(ids))
	for p, id := range ids {
		vs[p] = rowOrEmpty(rows[id])
	}
	return &Model{items: idx, rows: vs}
}

// newModel wraps rows that are already aligned with an item index.
func newModel(items *sparse.Index, rows []sparse.Vector) *Model {
	for p := range rows {
		rows[p] = rowOrEmpty(rows[p])
	}
	return &Model{items: items, rows: rows}
}

func rowOrEmpty(v sparse.Vector) sparse.Vector {
	if v == nil {
		return sparse.Empty()
	}
	return v
}

// Len returns the number of items in the model.
func (m *Model) Len() int {
	return len(m.rows)
}

// ItemIDs returns the item ids in ascending order.
func (m *Model) ItemIDs() []int64 {
	return m.items.KeySlice()
}

// Neighbors returns the neighbor row of item, or an empty row if the item is
// not in the model.
func (m *Model) Neighbors(item int64) sparse.Vector {
	if p, ok := m.items.Find(item); ok {
		return m.rows[p-m.items.LowerBound()]
	}
	return sparse.Empty()
}

// Ranked returns the neighbors of item ordered by descending score.
// Equal scores are ordered by ascending neighbor id.
func (m *Model) Ranked(item int64) []sparse.Entry {
	return Rank(m.Neighbors(item))
}

// Rank returns the entries of a neighbor row by descending score, breaking
// ties by ascending neighbor id.
func Rank(row sparse.Vector) []sparse.Entry {
	if vs, ok := row.(*sparse.ValueSortedMap); ok {
		return vs.Entries()
	}
	out := make([]sparse.Entry, 0, row.Len())
	for k, v := range row.All() {
		out = append(out, sparse.Entry{Key: k, Value: v})
	}
	slices.SortFunc(out, func(a, b sparse.Entry) int {
		if c := cmp.Compare(b.Value, a.Value); c != 0 {
			return c
		}
		return cmp.Compare(a.Key, b.Key)
	})
	return out
}

// Similarity returns the score of j in i's row, or 0 if j was not retained.
func (m *Model) Similarity(i, j int64) float64 {
	return m.Neighbors(i).Get(j)
}

// All yields every (item, row) pair in ascending item order.
func (m *Model) All() iter.Seq2[int64, sparse.Vector] {
	return func(yield func(int64, sparse.Vector) bool) {
		lo := m.items.LowerBound()
		for p, row := range m.rows {
			if !yield(m.items.Key(lo+p), row) {
				return
			}
		}
	}
}

// PairCount returns the total number of retained (item, neighbor) entries.
func (m *Model) PairCount() int {
	n := 0
	for _, row := range m.rows {
		n += row.Len()
	}
	return n
}
