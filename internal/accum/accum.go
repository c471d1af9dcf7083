// ItemKNN - Sparse Item Similarity Models
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/itemknn

// Package accum collects scored (key, value) candidates for one row of a
// similarity model and freezes them into an immutable sparse vector.
//
// Accumulators are not safe for concurrent use. The model builders guard
// each row's accumulator with its own mutex.
package accum

import (
	"github.com/tomtom215/itemknn/internal/sparse"
)

// Accumulator gathers candidate entries for a single row.
type Accumulator interface {
	// Put offers a candidate. A repeated key keeps the highest value offered.
	Put(key int64, value float64)
	// Len returns the number of entries currently held.
	Len() int
	// Finish freezes the held entries and resets the accumulator.
	Finish() sparse.Vector
}

// Unlimited keeps every candidate it is offered.
type Unlimited struct {
	entries map[int64]float64
}

// NewUnlimited creates an unbounded accumulator.
func NewUnlimited() *Unlimited {
	return &Unlimited{entries: make(map[int64]float64)}
}

// Put stores the entry for key, keeping the higher value on a repeat.
func (u *Unlimited) Put(key int64, value float64) {
	if old, ok := u.entries[key]; ok && old >= value {
		return
	}
	u.entries[key] = value
}

// Len returns the number of entries.
func (u *Unlimited) Len() int {
	return len(u.entries)
}

// Finish returns the entries as a key-ordered map.
func (u *Unlimited) Finish() sparse.Vector {
	m := sparse.FromMap(u.entries)
	u.entries = make(map[int64]float64)
	return m
}
