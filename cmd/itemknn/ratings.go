// ItemKNN - Sparse Item Similarity Models
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/itemknn

package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/tomtom215/itemknn/internal/recommend"
)

// readRatings loads interactions from a delimited file of
// user,item[,rating[,unix_timestamp]] rows. A missing rating counts as 1.
func readRatings(path string, delim rune, header bool) ([]recommend.Interaction, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open ratings: %w", err)
	}
	defer f.Close() //nolint:errcheck // read-only file

	return parseRatings(f, delim, header)
}

func parseRatings(r io.Reader, delim rune, header bool) ([]recommend.Interaction, error) {
	cr := csv.NewReader(r)
	cr.Comma = delim
	cr.Comment = '#'
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true

	var out []recommend.Interaction
	first := true
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read ratings: %w", err)
		}
		if first {
			first = false
			if header {
				continue
			}
		}

		in, err := parseRecord(rec)
		if err != nil {
			line, _ := cr.FieldPos(0)
			return nil, fmt.Errorf("ratings line %d: %w", line, err)
		}
		out = append(out, in)
	}
	return out, nil
}

func parseRecord(rec []string) (recommend.Interaction, error) {
	if len(rec) < 2 || len(rec) > 4 {
		return recommend.Interaction{}, fmt.Errorf("expected 2 to 4 fields, got %d", len(rec))
	}

	user, err := strconv.ParseInt(strings.TrimSpace(rec[0]), 10, 64)
	if err != nil {
		return recommend.Interaction{}, fmt.Errorf("user id: %w", err)
	}
	item, err := strconv.ParseInt(strings.TrimSpace(rec[1]), 10, 64)
	if err != nil {
		return recommend.Interaction{}, fmt.Errorf("item id: %w", err)
	}

	in := recommend.Interaction{UserID: user, ItemID: item, Value: 1}
	if len(rec) >= 3 {
		if in.Value, err = strconv.ParseFloat(strings.TrimSpace(rec[2]), 64); err != nil {
			return recommend.Interaction{}, fmt.Errorf("rating: %w", err)
		}
	}
	if len(rec) == 4 {
		ts, err := strconv.ParseInt(strings.TrimSpace(rec[3]), 10, 64)
		if err != nil {
			return recommend.Interaction{}, fmt.Errorf("timestamp: %w", err)
		}
		in.Timestamp = time.Unix(ts, 0).UTC()
	}
	return in, nil
}
