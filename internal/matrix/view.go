// ItemKNN - Sparse Item Similarity Models
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/itemknn

package matrix

import (
	"iter"

	"github.com/tomtom215/itemknn/internal/sparse"
)

// RowView is a live, read-write projection of one matrix row.
//
// A view holds only the matrix and the row id. Every call looks the row up
// again, so a view stays valid across compact-to-full upgrades. After the row
// is cleared, reads behave as if the row were empty and the next write
// recreates it.
type RowView struct {
	m  *Matrix
	id int64
}

var _ sparse.Vector = (*RowView)(nil)

// ID returns the row id.
func (v *RowView) ID() int64 {
	return v.id
}

// Get returns the value at column c, or 0 if absent.
func (v *RowView) Get(c int64) float64 {
	return v.m.Get(v.id, c)
}

// Lookup returns the value at column c and whether it is present.
func (v *RowView) Lookup(c int64) (float64, bool) {
	return v.m.Lookup(v.id, c)
}

// Len returns the number of cells in the row.
func (v *RowView) Len() int {
	if rw, ok := v.m.rows[v.id]; ok {
		return rw.len()
	}
	return 0
}

// All yields the row's cells in unspecified order.
func (v *RowView) All() iter.Seq2[int64, float64] {
	return func(yield func(int64, float64) bool) {
		rw, ok := v.m.rows[v.id]
		if !ok {
			return
		}
		for c, x := range rw.all() {
			if !yield(c, x) {
				return
			}
		}
	}
}

// Put stores x at column c and returns the previous value.
func (v *RowView) Put(c int64, x float64) float64 {
	return v.m.Put(v.id, c, x)
}

// AddTo adds delta to column c and returns the previous value.
func (v *RowView) AddTo(c int64, delta float64) float64 {
	return v.m.AddTo(v.id, c, delta)
}

// Freeze copies the current contents into an immutable key-ordered map.
func (v *RowView) Freeze() *sparse.Map {
	rw, ok := v.m.rows[v.id]
	if !ok || rw.len() == 0 {
		return sparse.Empty()
	}
	entries := make([]sparse.Entry, 0, rw.len())
	for c, x := range rw.all() {
		entries = append(entries, sparse.Entry{Key: c, Value: x})
	}
	return sparse.FromEntries(entries)
}
