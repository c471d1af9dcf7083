// ItemKNN - Sparse Item Similarity Models
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/itemknn

package config

import (
	"fmt"

	"github.com/tomtom215/itemknn/internal/validation"
)

// Validate checks field values and the combinations the builders support.
func (c *Config) Validate() error {
	if verr := validation.ValidateStruct(c); verr != nil {
		return verr
	}

	return c.validateModel()
}

// validateModel rejects settings the selected builder cannot honor.
func (c *Config) validateModel() error {
	m := c.Model
	if m.Builder != "userwise" {
		return nil
	}

	if m.Similarity != "cosine" {
		return fmt.Errorf("model.builder=userwise only supports cosine similarity, got %q", m.Similarity)
	}
	if m.Shrinkage != 0 {
		return fmt.Errorf("model.shrinkage is not supported by model.builder=userwise")
	}
	if m.MinCommonUsers > 1 {
		return fmt.Errorf("model.min_common_users > 1 is not supported by model.builder=userwise")
	}
	if m.NeighborStrategy != "auto" {
		return fmt.Errorf("model.neighbor_strategy is not used by model.builder=userwise, got %q", m.NeighborStrategy)
	}
	return nil
}
