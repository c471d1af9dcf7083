// ItemKNN - Sparse Item Similarity Models
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/itemknn

package itemitem

import (
	"fmt"
	"math"

	"github.com/tomtom215/itemknn/internal/sparse"
)

// Similarity scores a pair of items from their user vectors.
//
// Symmetric and Sparse are fixed for the life of a value. A symmetric
// function satisfies Similarity(i, vi, j, vj) == Similarity(j, vj, i, vi),
// which lets the builder score each unordered pair once. A sparse function
// returns 0 for items without common users, which lets the builder skip them.
type Similarity interface {
	Similarity(i int64, vi *sparse.Map, j int64, vj *sparse.Map) float64
	Symmetric() bool
	Sparse() bool
}

// Cosine is the cosine of the angle between two item vectors. Damping is
// added to the denominator to pull scores of sparse items toward zero.
type Cosine struct {
	Damping float64
}

// Similarity implements Similarity.
func (c Cosine) Similarity(_ int64, vi *sparse.Map, _ int64, vj *sparse.Map) float64 {
	dot := vi.Dot(vj)
	if dot == 0 {
		return 0
	}
	denom := sparse.Norm(vi)*sparse.Norm(vj) + c.Damping
	if denom == 0 {
		return 0
	}
	return dot / denom
}

// Symmetric implements Similarity.
func (Cosine) Symmetric() bool { return true }

// Sparse implements Similarity.
func (Cosine) Sparse() bool { return true }

// Pearson is the Pearson correlation over the users both items share.
type Pearson struct{}

// Similarity implements Similarity.
func (Pearson) Similarity(_ int64, vi *sparse.Map, _ int64, vj *sparse.Map) float64 {
	var xs, ys []float64
	for k, x := range vi.All() {
		if y, ok := vj.Lookup(k); ok {
			xs = append(xs, x)
			ys = append(ys, y)
		}
	}
	if len(xs) == 0 {
		return 0
	}

	var sumX, sumY float64
	for i := range xs {
		sumX += xs[i]
		sumY += ys[i]
	}
	meanX := sumX / float64(len(xs))
	meanY := sumY / float64(len(ys))

	var num, denX, denY float64
	for i := range xs {
		dx := xs[i] - meanX
		dy := ys[i] - meanY
		num += dx * dy
		denX += dx * dx
		denY += dy * dy
	}
	if denX == 0 || denY == 0 {
		return 0
	}
	return num / (math.Sqrt(denX) * math.Sqrt(denY))
}

// Symmetric implements Similarity.
func (Pearson) Symmetric() bool { return true }

// Sparse implements Similarity.
func (Pearson) Sparse() bool { return true }

// Jaccard is the ratio of shared users to all users of either item.
// Rating values are ignored.
type Jaccard struct{}

// Similarity implements Similarity.
func (Jaccard) Similarity(_ int64, vi *sparse.Map, _ int64, vj *sparse.Map) float64 {
	common := sparse.CommonKeys(vi, vj)
	if common == 0 {
		return 0
	}
	return float64(common) / float64(vi.Len()+vj.Len()-common)
}

// Symmetric implements Similarity.
func (Jaccard) Symmetric() bool { return true }

// Sparse implements Similarity.
func (Jaccard) Sparse() bool { return true }

// ConditionalProbability scores j as a neighbor of i by the share of i's
// users who also have j, discounted by j's popularity:
//
//	sim(i, j) = |U(i) ∩ U(j)| / (|U(i)| * |U(j)|^Alpha)
//
// With Alpha 0 this is P(j | i). It is not symmetric.
type ConditionalProbability struct {
	Alpha float64
}

// Similarity implements Similarity.
func (c ConditionalProbability) Similarity(_ int64, vi *sparse.Map, _ int64, vj *sparse.Map) float64 {
	common := sparse.CommonKeys(vi, vj)
	if common == 0 {
		return 0
	}
	denom := float64(vi.Len())
	if c.Alpha != 0 {
		denom *= math.Pow(float64(vj.Len()), c.Alpha)
	}
	return float64(common) / denom
}

// Symmetric implements Similarity.
func (ConditionalProbability) Symmetric() bool { return false }

// Sparse implements Similarity.
func (ConditionalProbability) Sparse() bool { return true }

// Shrunk scales a base similarity by n/(n+Shrinkage), where n is the number
// of common users, so that scores backed by few users are discounted.
type Shrunk struct {
	Base      Similarity
	Shrinkage float64
}

// Similarity implements Similarity.
func (s Shrunk) Similarity(i int64, vi *sparse.Map, j int64, vj *sparse.Map) float64 {
	sim := s.Base.Similarity(i, vi, j, vj)
	if s.Shrinkage <= 0 || sim == 0 {
		return sim
	}
	n := float64(sparse.CommonKeys(vi, vj))
	return sim * n / (n + s.Shrinkage)
}

// Symmetric implements Similarity.
func (s Shrunk) Symmetric() bool { return s.Base.Symmetric() }

// Sparse implements Similarity.
func (s Shrunk) Sparse() bool { return s.Base.Sparse() }

// SimilarityByName maps a configuration name to a Similarity. damping only
// applies to cosine, alpha to conditional. A positive shrinkage wraps the
// result in Shrunk.
func SimilarityByName(name string, damping, alpha, shrinkage float64) (Similarity, error) {
	var sim Similarity
	switch name {
	case "", "cosine":
		sim = Cosine{Damping: damping}
	case "pearson":
		sim = Pearson{}
	case "jaccard":
		sim = Jaccard{}
	case "conditional":
		sim = ConditionalProbability{Alpha: alpha}
	default:
		return nil, fmt.Errorf("unknown similarity %q", name)
	}
	if shrinkage > 0 {
		sim = Shrunk{Base: sim, Shrinkage: shrinkage}
	}
	return sim, nil
}
