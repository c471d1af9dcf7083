// ItemKNN - Sparse Item Similarity Models
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/itemknn

// Package matrix provides a mutable sparse matrix of float64 cells keyed by
// (row, column) int64 pairs.
//
// Each row starts out compact, storing its column keys as int32. The first
// write to a column outside the int32 range upgrades the row to a full
// representation with int64 keys. The upgrade copies every existing entry,
// replaces the row in the matrix, and is invisible to callers: row views
// resolve their row by id on every call, so a view obtained before an upgrade
// keeps working against the upgraded row.
//
// A Matrix is not safe for concurrent mutation. Concurrent readers are fine
// once all writes have finished.
package matrix

import (
	"iter"
	"maps"
	"math"
	"slices"

	"github.com/tomtom215/itemknn/internal/sparse"
)

type rowKind uint8

const (
	compactRow rowKind = iota
	fullRow
)

// row is a tagged variant: exactly one of compact and full is in use,
// selected by kind.
type row struct {
	kind    rowKind
	compact map[int32]float64
	full    map[int64]float64
}

func newRow() *row {
	return &row{kind: compactRow, compact: make(map[int32]float64)}
}

// fits reports whether col can be stored without upgrading.
func (r *row) fits(col int64) bool {
	return r.kind == fullRow || (col >= math.MinInt32 && col <= math.MaxInt32)
}

func (r *row) lookup(col int64) (float64, bool) {
	if r.kind == fullRow {
		v, ok := r.full[col]
		return v, ok
	}
	if col < math.MinInt32 || col > math.MaxInt32 {
		return 0, false
	}
	v, ok := r.compact[int32(col)]
	return v, ok
}

// set stores v and returns the previous value. The column must fit.
func (r *row) set(col int64, v float64) float64 {
	if r.kind == fullRow {
		prev := r.full[col]
		r.full[col] = v
		return prev
	}
	k := int32(col)
	prev := r.compact[k]
	r.compact[k] = v
	return prev
}

func (r *row) len() int {
	if r.kind == fullRow {
		return len(r.full)
	}
	return len(r.compact)
}

func (r *row) all() iter.Seq2[int64, float64] {
	return func(yield func(int64, float64) bool) {
		if r.kind == fullRow {
			for k, v := range r.full {
				if !yield(k, v) {
					return
				}
			}
			return
		}
		for k, v := range r.compact {
			if !yield(int64(k), v) {
				return
			}
		}
	}
}

// upgraded returns a full row holding the same entries.
func (r *row) upgraded() *row {
	full := make(map[int64]float64, len(r.compact)+1)
	for k, v := range r.compact {
		full[int64(k)] = v
	}
	return &row{kind: fullRow, full: full}
}

// Matrix is a sparse row-keyed matrix with auto-upgrading rows.
type Matrix struct {
	rows     map[int64]*row
	upgrades int
}

// New creates an empty matrix.
func New() *Matrix {
	return &Matrix{rows: make(map[int64]*row)}
}

// Len returns the number of active rows.
func (m *Matrix) Len() int {
	return len(m.rows)
}

// Upgrades returns how many rows have been upgraded from compact to full.
func (m *Matrix) Upgrades() int {
	return m.upgrades
}

// Get returns the value at (r, c), or 0 if the row or cell is absent.
func (m *Matrix) Get(r, c int64) float64 {
	rw, ok := m.rows[r]
	if !ok {
		return 0
	}
	v, _ := rw.lookup(c)
	return v
}

// Lookup returns the value at (r, c) and whether the cell is present.
func (m *Matrix) Lookup(r, c int64) (float64, bool) {
	rw, ok := m.rows[r]
	if !ok {
		return 0, false
	}
	return rw.lookup(c)
}

// Put stores v at (r, c) and returns the previous value (0 if absent).
// The row is created on first write.
func (m *Matrix) Put(r, c int64, v float64) float64 {
	return m.writable(r, c).set(c, v)
}

// AddTo adds delta to the cell at (r, c) and returns the previous value.
// An absent cell starts from 0.
func (m *Matrix) AddTo(r, c int64, delta float64) float64 {
	rw := m.writable(r, c)
	prev, _ := rw.lookup(c)
	rw.set(c, prev+delta)
	return prev
}

// writable resolves row r for a write to column c, creating the row if
// needed and upgrading it when c does not fit the compact key range.
func (m *Matrix) writable(r, c int64) *row {
	rw, ok := m.rows[r]
	if !ok {
		rw = newRow()
		m.rows[r] = rw
	}
	if !rw.fits(c) {
		rw = rw.upgraded()
		m.rows[r] = rw
		m.upgrades++
	}
	return rw
}

// Row returns a view of row r. When the row is absent and insert is false it
// returns the shared empty map, which has no mutators. Otherwise it returns a
// *RowView, creating an empty compact row first if necessary.
func (m *Matrix) Row(r int64, insert bool) sparse.Vector {
	if _, ok := m.rows[r]; !ok {
		if !insert {
			return sparse.Empty()
		}
		m.rows[r] = newRow()
	}
	return &RowView{m: m, id: r}
}

// ClearRow removes row r. Later reads treat it as absent.
func (m *Matrix) ClearRow(r int64) {
	delete(m.rows, r)
}

// RowIDs returns the ids of the active rows in unspecified order.
// The sequence is live: rows removed before they are reached are skipped.
func (m *Matrix) RowIDs() iter.Seq[int64] {
	return maps.Keys(m.rows)
}

// SortedRowIDs returns a snapshot of the active row ids in ascending order.
func (m *Matrix) SortedRowIDs() []int64 {
	return slices.Sorted(maps.Keys(m.rows))
}

// Rows returns the active rows as (id, view) pairs in unspecified order.
// Callers must not add rows while iterating; clearing rows is allowed.
func (m *Matrix) Rows() iter.Seq2[int64, *RowView] {
	return func(yield func(int64, *RowView) bool) {
		for id := range m.rows {
			if !yield(id, &RowView{m: m, id: id}) {
				return
			}
		}
	}
}
