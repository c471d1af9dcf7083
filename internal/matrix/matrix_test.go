// ItemKNN - Sparse Item Similarity Models
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/itemknn

package matrix

import (
	"math"
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/tomtom215/itemknn/internal/sparse"
)

func TestMatrix_Empty(t *testing.T) {
	m := New()

	if m.Len() != 0 {
		t.Errorf("Expected no rows, got %d", m.Len())
	}
	if got := m.Get(42, 37); got != 0 {
		t.Errorf("Get on empty matrix = %v, want 0", got)
	}
	row := m.Row(42, false)
	if row != sparse.Vector(sparse.Empty()) {
		t.Errorf("Expected shared empty row, got %T", row)
	}
	if m.Len() != 0 {
		t.Error("Row(id, false) must not create a row")
	}
}

func TestMatrix_PutGet(t *testing.T) {
	m := New()

	if prev := m.Put(42, 37, 3.5); prev != 0 {
		t.Errorf("Expected previous value 0, got %v", prev)
	}
	if got := m.Get(42, 37); got != 3.5 {
		t.Errorf("Get(42, 37) = %v, want 3.5", got)
	}
	if got := m.Get(37, 42); got != 0 {
		t.Errorf("Get(37, 42) = %v, want 0", got)
	}

	count := 0
	for id, row := range m.Rows() {
		count++
		if id != 42 {
			t.Errorf("Unexpected row id %d", id)
		}
		if row.Len() != 1 || row.Get(37) != 3.5 {
			t.Errorf("Unexpected row contents: len=%d, [37]=%v", row.Len(), row.Get(37))
		}
	}
	if count != 1 {
		t.Errorf("Expected 1 row, got %d", count)
	}

	if prev := m.Put(42, 37, 1); prev != 3.5 {
		t.Errorf("Expected previous value 3.5, got %v", prev)
	}
}

func TestMatrix_AddTo(t *testing.T) {
	m := New()

	if prev := m.AddTo(42, 37, 3.5); prev != 0 {
		t.Errorf("First AddTo returned %v, want 0", prev)
	}
	if prev := m.AddTo(42, 37, 2.0); prev != 3.5 {
		t.Errorf("Second AddTo returned %v, want 3.5", prev)
	}
	if got := m.Get(42, 37); got != 5.5 {
		t.Errorf("Cell = %v, want 5.5", got)
	}
}

func TestMatrix_UpgradeKeepsEntries(t *testing.T) {
	m := New()

	m.Put(1, 10, 1)
	m.Put(1, -20, 2)
	if m.Upgrades() != 0 {
		t.Fatalf("Unexpected upgrade for small keys")
	}

	tests := []struct {
		name string
		col  int64
		val  float64
	}{
		{"max int32", math.MaxInt32, 3},
		{"min int32", math.MinInt32, 4},
		{"above int32", math.MaxInt32 + 1, 5},
		{"below int32", math.MinInt32 - 1, 6},
		{"max int64", math.MaxInt64, 7},
		{"min int64", math.MinInt64, 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m.Put(1, tt.col, tt.val)
			if got := m.Get(1, tt.col); got != tt.val {
				t.Errorf("Get(1, %d) = %v, want %v", tt.col, got, tt.val)
			}
		})
	}

	if m.Upgrades() != 1 {
		t.Errorf("Expected exactly one upgrade, got %d", m.Upgrades())
	}
	if m.Get(1, 10) != 1 || m.Get(1, -20) != 2 {
		t.Error("Upgrade lost compact entries")
	}
	if got := m.Row(1, false).Len(); got != 8 {
		t.Errorf("Expected 8 entries, got %d", got)
	}
}

func TestMatrix_CompactRowIgnoresWideLookups(t *testing.T) {
	m := New()
	m.Put(1, 5, 1)

	// A wide key must not alias a truncated compact key
	wide := int64(5) + (int64(1) << 32)
	if got := m.Get(1, wide); got != 0 {
		t.Errorf("Get(1, %d) = %v, want 0", wide, got)
	}
	if m.Upgrades() != 0 {
		t.Error("Reads must not upgrade a row")
	}
}

func TestRowView_LiveAcrossUpgrade(t *testing.T) {
	m := New()

	view, ok := m.Row(7, true).(*RowView)
	if !ok {
		t.Fatalf("Row(id, true) returned %T, want *RowView", m.Row(7, true))
	}
	view.Put(1, 1.5)

	// Upgrade through the matrix, not the view
	big := int64(math.MaxInt32) * 4
	m.Put(7, big, 2.5)

	if got := view.Get(big); got != 2.5 {
		t.Errorf("View did not see upgraded row: Get(%d) = %v", big, got)
	}
	if got := view.Get(1); got != 1.5 {
		t.Errorf("View lost entry after upgrade: %v", got)
	}

	// Writes through the old view land on the upgraded row
	view.AddTo(big, 1)
	if got := m.Get(7, big); got != 3.5 {
		t.Errorf("Matrix cell = %v, want 3.5", got)
	}

	frozen := view.Freeze()
	if !slices.Equal(frozen.Index().KeySlice(), []int64{1, big}) {
		t.Errorf("Frozen keys = %v", frozen.Index().KeySlice())
	}
}

func TestMatrix_ClearRow(t *testing.T) {
	m := New()
	m.Put(1, 1, 1)
	m.Put(2, 2, 2)
	view := m.Row(1, false).(*RowView)

	m.ClearRow(1)

	if m.Len() != 1 {
		t.Errorf("Expected 1 row after clear, got %d", m.Len())
	}
	if m.Get(1, 1) != 0 {
		t.Error("Cleared row still readable")
	}
	if view.Len() != 0 || view.Get(1) != 0 {
		t.Error("View of cleared row should read as empty")
	}
	if m.Row(1, false) != sparse.Vector(sparse.Empty()) {
		t.Error("Cleared row should resolve to the empty row")
	}
	if ids := m.SortedRowIDs(); !slices.Equal(ids, []int64{2}) {
		t.Errorf("Expected row ids [2], got %v", ids)
	}
}

func TestMatrix_ClearDuringIteration(t *testing.T) {
	m := New()
	for i := int64(0); i < 10; i++ {
		m.Put(i, i, float64(i))
	}

	for id := range m.RowIDs() {
		m.ClearRow(id)
	}
	if m.Len() != 0 {
		t.Errorf("Expected all rows cleared, got %d", m.Len())
	}
}

func TestMatrix_RandomAgainstReference(t *testing.T) {
	rng := rand.New(rand.NewPCG(42, 37))
	m := New()
	ref := make(map[[2]int64]float64)

	for i := 0; i < 5000; i++ {
		r := rng.Int64N(20)
		var c int64
		if rng.IntN(10) == 0 {
			c = rng.Int64() - math.MaxInt64/2
		} else {
			c = rng.Int64N(1000)
		}
		d := float64(rng.IntN(7) - 3)

		key := [2]int64{r, c}
		if prev := m.AddTo(r, c, d); prev != ref[key] {
			t.Fatalf("AddTo(%d, %d) returned %v, want %v", r, c, prev, ref[key])
		}
		ref[key] += d
	}

	for key, want := range ref {
		if got := m.Get(key[0], key[1]); got != want {
			t.Fatalf("Get(%d, %d) = %v, want %v", key[0], key[1], got, want)
		}
	}

	rows := make(map[int64]int)
	for key := range ref {
		rows[key[0]]++
	}
	for id, n := range rows {
		if got := m.Row(id, false).Len(); got != n {
			t.Errorf("Row %d has %d cells, want %d", id, got, n)
		}
	}
}
