// ItemKNN - Sparse Item Similarity Models
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/itemknn

package itemitem

import (
	"fmt"
	"math"
)

// Threshold decides whether a raw similarity score is kept.
type Threshold interface {
	Retain(sim float64) bool
}

// RealThreshold keeps scores strictly greater than its value.
type RealThreshold float64

// Retain implements Threshold.
func (t RealThreshold) Retain(sim float64) bool {
	return sim > float64(t)
}

// AbsoluteThreshold keeps scores whose magnitude is strictly greater than its
// value, so strong negative correlations survive too.
type AbsoluteThreshold float64

// Retain implements Threshold.
func (t AbsoluteThreshold) Retain(sim float64) bool {
	return math.Abs(sim) > float64(t)
}

// NoThreshold keeps every score except NaN.
type NoThreshold struct{}

// Retain implements Threshold.
func (NoThreshold) Retain(sim float64) bool {
	return !math.IsNaN(sim)
}

// ThresholdFunc adapts a plain function to Threshold.
type ThresholdFunc func(sim float64) bool

// Retain implements Threshold.
func (f ThresholdFunc) Retain(sim float64) bool {
	return f(sim)
}

// ThresholdByMode maps a configuration mode to a Threshold.
func ThresholdByMode(mode string, value float64) (Threshold, error) {
	switch mode {
	case "", "real":
		return RealThreshold(value), nil
	case "absolute":
		return AbsoluteThreshold(value), nil
	case "none":
		return NoThreshold{}, nil
	default:
		return nil, fmt.Errorf("unknown threshold mode %q", mode)
	}
}
