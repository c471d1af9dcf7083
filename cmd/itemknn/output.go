// ItemKNN - Sparse Item Similarity Models
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/itemknn

package main

import (
	"bufio"
	"fmt"
	"io"

	"github.com/goccy/go-json"

	"github.com/tomtom215/itemknn/internal/recommend/itemitem"
	"github.com/tomtom215/itemknn/internal/sparse"
)

type neighborRow struct {
	Item      int64      `json:"item"`
	Neighbors []neighbor `json:"neighbors"`
}

type neighbor struct {
	Item  int64   `json:"item"`
	Score float64 `json:"score"`
}

// writeModel writes one JSON line per item, neighbors ranked by score.
// With items set, only those rows are written, in the given order; unknown
// items get an empty neighbor list.
func writeModel(w io.Writer, m *itemitem.Model, items []int64) error {
	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)

	write := func(id int64) error {
		return encodeRow(enc, id, m.Neighbors(id))
	}

	if len(items) == 0 {
		for id := range m.All() {
			if err := write(id); err != nil {
				return err
			}
		}
	} else {
		for _, id := range items {
			if err := write(id); err != nil {
				return err
			}
		}
	}
	return bw.Flush()
}

func encodeRow(enc *json.Encoder, id int64, row sparse.Vector) error {
	ranked := itemitem.Rank(row)
	out := neighborRow{Item: id, Neighbors: make([]neighbor, len(ranked))}
	for i, e := range ranked {
		out.Neighbors[i] = neighbor{Item: e.Key, Score: e.Value}
	}
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode item %d: %w", id, err)
	}
	return nil
}
