// ItemKNN - Sparse Item Similarity Models
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/itemknn

package recommend

import (
	"fmt"

	"github.com/tomtom215/itemknn/internal/sparse"
)

// Normalizer rewrites a rating vector before it is used for similarity.
// Implementations return a vector over the same index as the input.
type Normalizer interface {
	Normalize(id int64, v *sparse.Map) *sparse.Map
}

// IdentityNormalizer returns vectors unchanged.
type IdentityNormalizer struct{}

// Normalize implements Normalizer.
func (IdentityNormalizer) Normalize(_ int64, v *sparse.Map) *sparse.Map {
	return v
}

// MeanCenteringNormalizer subtracts the vector's mean from every value.
type MeanCenteringNormalizer struct{}

// Normalize implements Normalizer.
func (MeanCenteringNormalizer) Normalize(_ int64, v *sparse.Map) *sparse.Map {
	mean := sparse.Mean(v)
	return v.Transform(func(_ int64, x float64) float64 {
		return x - mean
	})
}

// UnitNormalizer scales vectors to unit Euclidean length.
// Zero vectors are returned unchanged.
type UnitNormalizer struct{}

// Normalize implements Normalizer.
func (UnitNormalizer) Normalize(_ int64, v *sparse.Map) *sparse.Map {
	norm := sparse.Norm(v)
	if norm == 0 {
		return v
	}
	return v.Transform(func(_ int64, x float64) float64 {
		return x / norm
	})
}

// NormalizerByName maps a configuration name to a Normalizer.
func NormalizerByName(name string) (Normalizer, error) {
	switch name {
	case "", "identity":
		return IdentityNormalizer{}, nil
	case "mean_center":
		return MeanCenteringNormalizer{}, nil
	case "unit":
		return UnitNormalizer{}, nil
	default:
		return nil, fmt.Errorf("unknown normalizer %q", name)
	}
}
