// ItemKNN - Sparse Item Similarity Models
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/itemknn

package accum

import (
	"cmp"
	"slices"

	"github.com/tomtom215/itemknn/internal/sparse"
)

// candidate is a heap entry.
type candidate struct {
	key   int64
	value float64
	index int // position in the heap slice
}

// TopN keeps the n strongest candidates it has been offered, where a higher
// value is stronger and, among equal values, a smaller key is stronger.
//
// Entries live in a min-heap whose root is the weakest entry. A new
// candidate displaces the root only when it is strictly stronger, so the
// retained set does not depend on the order of the offers. A parallel map
// gives O(1) access by key.
type TopN struct {
	n     int
	heap  []*candidate
	byKey map[int64]*candidate
}

// NewTopN creates a bounded accumulator holding at most n entries.
// An accumulator with n < 1 retains nothing.
func NewTopN(n int) *TopN {
	return &TopN{
		n:     n,
		heap:  make([]*candidate, 0, max(n, 0)),
		byKey: make(map[int64]*candidate),
	}
}

// Put offers a candidate. A key already held keeps the higher of its two
// values.
func (t *TopN) Put(key int64, value float64) {
	if t.n < 1 {
		return
	}

	if existing, ok := t.byKey[key]; ok {
		if value > existing.value {
			existing.value = value
			t.bubbleDown(existing.index)
		}
		return
	}

	if len(t.heap) < t.n {
		c := &candidate{key: key, value: value, index: len(t.heap)}
		t.heap = append(t.heap, c)
		t.byKey[key] = c
		t.bubbleUp(c.index)
		return
	}

	// Strictly stronger than the current minimum, or dropped
	root := t.heap[0]
	if !stronger(key, value, root) {
		return
	}
	delete(t.byKey, root.key)
	root.key = key
	root.value = value
	t.byKey[key] = root
	t.bubbleDown(0)
}

// Len returns the number of retained entries.
func (t *TopN) Len() int {
	return len(t.heap)
}

// Min returns the weakest retained entry, or false if empty.
func (t *TopN) Min() (sparse.Entry, bool) {
	if len(t.heap) == 0 {
		return sparse.Entry{}, false
	}
	return sparse.Entry{Key: t.heap[0].key, Value: t.heap[0].value}, true
}

// Finish returns the retained entries as a value-sorted map, highest first.
func (t *TopN) Finish() sparse.Vector {
	if len(t.heap) == 0 {
		return sparse.Empty().ByValue()
	}
	slices.SortFunc(t.heap, func(a, b *candidate) int {
		return cmp.Compare(a.key, b.key)
	})
	keys := make([]int64, len(t.heap))
	values := make([]float64, len(t.heap))
	for i, c := range t.heap {
		keys[i] = c.key
		values[i] = c.value
	}
	t.heap = t.heap[:0]
	clear(t.byKey)

	idx, err := sparse.FromSorted(keys)
	if err != nil {
		// keys come from a map and cannot repeat
		panic(err)
	}
	m, err := sparse.NewValueSortedMap(idx, values)
	if err != nil {
		panic(err)
	}
	return m
}

// stronger reports whether (key, value) outranks c.
func stronger(key int64, value float64, c *candidate) bool {
	if value != c.value {
		return value > c.value
	}
	return key < c.key
}

// less orders the heap weakest first.
func (t *TopN) less(i, j int) bool {
	a, b := t.heap[i], t.heap[j]
	return stronger(b.key, b.value, a)
}

func (t *TopN) bubbleUp(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if !t.less(i, parent) {
			break
		}
		t.swap(i, parent)
		i = parent
	}
}

func (t *TopN) bubbleDown(i int) {
	n := len(t.heap)
	for {
		smallest := i
		left := 2*i + 1
		right := 2*i + 2

		if left < n && t.less(left, smallest) {
			smallest = left
		}
		if right < n && t.less(right, smallest) {
			smallest = right
		}
		if smallest == i {
			break
		}
		t.swap(i, smallest)
		i = smallest
	}
}

func (t *TopN) swap(i, j int) {
	t.heap[i], t.heap[j] = t.heap[j], t.heap[i]
	t.heap[i].index = i
	t.heap[j].index = j
}
