// ItemKNN - Sparse Item Similarity Models
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/itemknn

package recommend

import (
	"context"
	"maps"
	"slices"

	"github.com/tomtom215/itemknn/internal/sparse"
)

// Dataset is an in-memory rating matrix viewable by item or by user.
type Dataset struct {
	interactions int
	items        vectorSet
	users        vectorSet
}

// vectorSet holds one frozen vector per id, in ascending id order.
type vectorSet struct {
	ids     []int64
	vectors []*sparse.Map
}

func (s vectorSet) get(id int64) *sparse.Map {
	if i, ok := slices.BinarySearch(s.ids, id); ok {
		return s.vectors[i]
	}
	return sparse.Empty()
}

// NewDataset builds a dataset from raw interactions. If a user rated an item
// more than once, the interaction with the latest timestamp is used, and for
// equal timestamps the one appearing later in the slice.
func NewDataset(interactions []Interaction) *Dataset {
	type cell struct{ user, item int64 }
	latest := make(map[cell]Interaction, len(interactions))
	for _, in := range interactions {
		key := cell{in.UserID, in.ItemID}
		if prev, ok := latest[key]; ok && in.Timestamp.Before(prev.Timestamp) {
			continue
		}
		latest[key] = in
	}

	byItem := make(map[int64]map[int64]float64)
	byUser := make(map[int64]map[int64]float64)
	for key, in := range latest {
		if byItem[key.item] == nil {
			byItem[key.item] = make(map[int64]float64)
		}
		byItem[key.item][key.user] = in.Value
		if byUser[key.user] == nil {
			byUser[key.user] = make(map[int64]float64)
		}
		byUser[key.user][key.item] = in.Value
	}

	return &Dataset{
		interactions: len(latest),
		items:        freezeAll(byItem),
		users:        freezeAll(byUser),
	}
}

func freezeAll(rows map[int64]map[int64]float64) vectorSet {
	ids := slices.Sorted(maps.Keys(rows))
	vectors := make([]*sparse.Map, len(ids))
	for i, id := range ids {
		vectors[i] = sparse.FromMap(rows[id])
	}
	return vectorSet{ids: ids, vectors: vectors}
}

// Len returns the number of distinct (user, item) ratings.
func (d *Dataset) Len() int {
	return d.interactions
}

// ItemIDs returns the item ids in ascending order.
func (d *Dataset) ItemIDs() []int64 {
	return slices.Clone(d.items.ids)
}

// UserIDs returns the user ids in ascending order.
func (d *Dataset) UserIDs() []int64 {
	return slices.Clone(d.users.ids)
}

// ItemVector returns the user->value vector for an item, or an empty map.
func (d *Dataset) ItemVector(item int64) *sparse.Map {
	return d.items.get(item)
}

// UserVector returns the item->value vector for a user, or an empty map.
func (d *Dataset) UserVector(user int64) *sparse.Map {
	return d.users.get(user)
}

// Items returns a Source over item vectors (keyed by user).
func (d *Dataset) Items() Source {
	return sliceSource{set: d.items}
}

// Users returns a Source over user vectors (keyed by item).
func (d *Dataset) Users() Source {
	return sliceSource{set: d.users}
}

// SourceFromMap wraps pre-built vectors as a Source. Ids are streamed in
// ascending order.
func SourceFromMap(vectors map[int64]*sparse.Map) Source {
	ids := slices.Sorted(maps.Keys(vectors))
	vs := make([]*sparse.Map, len(ids))
	for i, id := range ids {
		vs[i] = vectors[id]
	}
	return sliceSource{set: vectorSet{ids: ids, vectors: vs}}
}

type sliceSource struct {
	set vectorSet
}

func (s sliceSource) Count() int {
	return len(s.set.ids)
}

func (s sliceSource) Stream(ctx context.Context) (Stream, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &sliceStream{ctx: ctx, set: s.set, pos: -1}, nil
}

// sliceStream walks a vectorSet. It checks ctx on every step so that long
// passes stop promptly on cancellation.
type sliceStream struct {
	ctx context.Context
	set vectorSet
	pos int
	err error
}

func (s *sliceStream) Next() bool {
	if s.err != nil {
		return false
	}
	if err := s.ctx.Err(); err != nil {
		s.err = err
		return false
	}
	s.pos++
	return s.pos < len(s.set.ids)
}

func (s *sliceStream) ID() int64 {
	return s.set.ids[s.pos]
}

func (s *sliceStream) Vector() *sparse.Map {
	return s.set.vectors[s.pos]
}

func (s *sliceStream) Err() error {
	return s.err
}

func (s *sliceStream) Close() error {
	s.pos = len(s.set.ids)
	return nil
}
