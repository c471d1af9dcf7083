// ItemKNN - Sparse Item Similarity Models
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/itemknn

package itemitem

import (
	"slices"
	"testing"

	"github.com/tomtom215/itemknn/internal/sparse"
)

func TestModel_Queries(t *testing.T) {
	m := NewModel(map[int64]sparse.Vector{
		3: vec(map[int64]float64{1: 0.2, 2: 0.9, 7: 0.2}),
		1: vec(map[int64]float64{3: 0.2}),
		2: nil,
	})

	if m.Len() != 3 {
		t.Fatalf("Len = %d, want 3", m.Len())
	}
	if got := m.ItemIDs(); !slices.Equal(got, []int64{1, 2, 3}) {
		t.Errorf("ItemIDs = %v, want [1 2 3]", got)
	}
	if got := m.PairCount(); got != 4 {
		t.Errorf("PairCount = %d, want 4", got)
	}

	if got := m.Similarity(3, 2); got != 0.9 {
		t.Errorf("Similarity(3, 2) = %v, want 0.9", got)
	}
	if got := m.Similarity(3, 99); got != 0 {
		t.Errorf("Similarity(3, 99) = %v, want 0", got)
	}
	if got := m.Neighbors(2).Len(); got != 0 {
		t.Errorf("nil row has %d neighbors, want 0", got)
	}
	if got := m.Neighbors(42).Len(); got != 0 {
		t.Errorf("unknown item has %d neighbors, want 0", got)
	}

	want := []sparse.Entry{{Key: 2, Value: 0.9}, {Key: 1, Value: 0.2}, {Key: 7, Value: 0.2}}
	if got := m.Ranked(3); !slices.Equal(got, want) {
		t.Errorf("Ranked(3) = %v, want %v", got, want)
	}
}

func TestModel_RankedFromValueSortedRow(t *testing.T) {
	row := vec(map[int64]float64{5: 0.1, 6: 0.8, 4: 0.8}).ByValue()
	m := NewModel(map[int64]sparse.Vector{9: row})

	want := []sparse.Entry{{Key: 4, Value: 0.8}, {Key: 6, Value: 0.8}, {Key: 5, Value: 0.1}}
	if got := m.Ranked(9); !slices.Equal(got, want) {
		t.Errorf("Ranked(9) = %v, want %v", got, want)
	}
}

func TestModel_AllStopsEarly(t *testing.T) {
	m := NewModel(map[int64]sparse.Vector{
		1: sparse.Empty(),
		2: sparse.Empty(),
		3: sparse.Empty(),
	})

	var seen []int64
	for id := range m.All() {
		seen = append(seen, id)
		if id == 2 {
			break
		}
	}
	if !slices.Equal(seen, []int64{1, 2}) {
		t.Errorf("seen = %v, want [1 2]", seen)
	}
}
