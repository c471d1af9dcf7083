// ItemKNN - Sparse Item Similarity Models
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/itemknn

package recommend

import (
	"context"
	"time"

	"github.com/tomtom215/itemknn/internal/sparse"
)

// Interaction represents a single user-item rating or implicit feedback event.
type Interaction struct {
	// UserID is the user identifier.
	UserID int64 `json:"user_id"`

	// ItemID is the item identifier.
	ItemID int64 `json:"item_id"`

	// Value is the rating or confidence value.
	Value float64 `json:"value"`

	// Timestamp is when the interaction occurred. When a user rates the same
	// item more than once, the latest interaction wins.
	Timestamp time.Time `json:"timestamp"`
}

// Source provides sparse vectors keyed by entity id, one per user or item.
//
// Implementations backed by files or databases should stream; each call to
// Stream starts a fresh pass that must be consumed exactly once and closed.
type Source interface {
	// Count returns the number of vectors a full pass yields.
	Count() int

	// Stream opens a pass over all (id, vector) pairs.
	Stream(ctx context.Context) (Stream, error)
}

// Stream is a single forward pass over a Source.
//
//	s, err := src.Stream(ctx)
//	if err != nil {
//	    return err
//	}
//	defer s.Close()
//	for s.Next() {
//	    use(s.ID(), s.Vector())
//	}
//	if err := s.Err(); err != nil {
//	    return err
//	}
type Stream interface {
	// Next advances to the next vector and reports whether there is one.
	Next() bool

	// ID returns the id of the current vector.
	ID() int64

	// Vector returns the current vector. Vectors are immutable.
	Vector() *sparse.Map

	// Err returns the error that ended the pass early, if any.
	Err() error

	// Close releases resources held by the stream.
	Close() error
}
