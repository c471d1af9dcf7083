// ItemKNN - Sparse Item Similarity Models
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/itemknn

package itemitem

import (
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/tomtom215/itemknn/internal/recommend"
	"github.com/tomtom215/itemknn/internal/sparse"
)

// BuildContext holds the item vectors for one model build.
//
// Items are addressed by dense position: position p is the p-th smallest
// item id. Neighbor strategies and the builder work on positions and only
// translate back to ids when writing results.
type BuildContext struct {
	items   *sparse.Index
	vectors []*sparse.Map

	usersOnce sync.Once
	userItems map[int64]*roaring.Bitmap
}

// NewBuildContext reads every item vector from src. The source is streamed
// exactly once.
func NewBuildContext(ctx context.Context, src recommend.Source) (*BuildContext, error) {
	s, err := src.Stream(ctx)
	if err != nil {
		return nil, fmt.Errorf("open item stream: %w", err)
	}
	defer s.Close() //nolint:errcheck // read-only stream

	byID := make(map[int64]*sparse.Map, max(src.Count(), 0))
	ids := make([]int64, 0, max(src.Count(), 0))
	for s.Next() {
		id := s.ID()
		if _, dup := byID[id]; !dup {
			ids = append(ids, id)
		}
		byID[id] = s.Vector()
	}
	if err := s.Err(); err != nil {
		return nil, fmt.Errorf("read item stream: %w", err)
	}
	if uint64(len(ids)) > math.MaxUint32 {
		return nil, fmt.Errorf("too many items: %d", len(ids))
	}

	idx := sparse.NewIndex(ids)
	vectors := make([]*sparse.Map, idx.Len())
	for p := range vectors {
		v := byID[idx.Key(p)]
		if v == nil {
			v = sparse.Empty()
		}
		vectors[p] = v
	}
	return &BuildContext{items: idx, vectors: vectors}, nil
}

// Len returns the number of items.
func (bc *BuildContext) Len() int {
	return len(bc.vectors)
}

// Items returns the sorted item ids.
func (bc *BuildContext) Items() *sparse.Index {
	return bc.items
}

// ItemID returns the id of the item at position p.
func (bc *BuildContext) ItemID(p int) int64 {
	return bc.items.Key(p)
}

// Vector returns the user vector of the item at position p.
func (bc *BuildContext) Vector(p int) *sparse.Map {
	return bc.vectors[p]
}

// ItemVector returns the user vector of an item id, or an empty map.
func (bc *BuildContext) ItemVector(item int64) *sparse.Map {
	if p, ok := bc.items.Find(item); ok {
		return bc.vectors[p]
	}
	return sparse.Empty()
}

// userBitmaps returns, for every user, the bitmap of item positions that user
// rated. It is built on first use and shared by all workers.
func (bc *BuildContext) userBitmaps() map[int64]*roaring.Bitmap {
	bc.usersOnce.Do(func() {
		users := make(map[int64]*roaring.Bitmap)
		for p, v := range bc.vectors {
			for u := range v.Keys() {
				bm, ok := users[u]
				if !ok {
					bm = roaring.New()
					users[u] = bm
				}
				bm.Add(uint32(p))
			}
		}
		for _, bm := range users {
			bm.RunOptimize()
		}
		bc.userItems = users
	})
	return bc.userItems
}
