// ItemKNN - Sparse Item Similarity Models
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/itemknn

package config

import (
	"strings"
	"testing"
)

func validConfig() *Config {
	cfg := defaultConfig()
	cfg.Input.Path = "ratings.csv"
	return cfg
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "defaults with input",
			mutate: func(*Config) {},
		},
		{
			name: "userwise cosine",
			mutate: func(c *Config) {
				c.Model.Builder = "userwise"
				c.Model.Normalizer = "unit"
			},
		},
		{
			name:    "bad log level",
			mutate:  func(c *Config) { c.Logging.Level = "loud" },
			wantErr: "logging.level must be one of",
		},
		{
			name:    "bad builder",
			mutate:  func(c *Config) { c.Model.Builder = "magic" },
			wantErr: "model.builder must be one of",
		},
		{
			name:    "bad threshold mode",
			mutate:  func(c *Config) { c.Model.ThresholdMode = "relative" },
			wantErr: "model.threshold_mode must be one of",
		},
		{
			name:    "negative min common users",
			mutate:  func(c *Config) { c.Model.MinCommonUsers = -1 },
			wantErr: "model.min_common_users must be greater than or equal to 0",
		},
		{
			name:    "negative shrinkage",
			mutate:  func(c *Config) { c.Model.Shrinkage = -4 },
			wantErr: "model.shrinkage must be greater than or equal to 0",
		},
		{
			name:    "multi-character delimiter",
			mutate:  func(c *Config) { c.Input.Delimiter = "::" },
			wantErr: "input.delimiter must have length 1",
		},
		{
			name: "userwise with shrinkage",
			mutate: func(c *Config) {
				c.Model.Builder = "userwise"
				c.Model.Shrinkage = 10
			},
			wantErr: "shrinkage is not supported",
		},
		{
			name: "userwise with min common users",
			mutate: func(c *Config) {
				c.Model.Builder = "userwise"
				c.Model.MinCommonUsers = 3
			},
			wantErr: "min_common_users > 1",
		},
		{
			name: "userwise with strategy",
			mutate: func(c *Config) {
				c.Model.Builder = "userwise"
				c.Model.NeighborStrategy = "all"
			},
			wantErr: "neighbor_strategy is not used",
		},
		{
			name:    "empty model name",
			mutate:  func(c *Config) { c.Store.Name = "" },
			wantErr: "store.name is required",
		},
		{
			name:    "model name with colon",
			mutate:  func(c *Config) { c.Store.Name = "movies:v2" },
			wantErr: `store.name must not contain ":"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() should fail with %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %q, want it to contain %q", err.Error(), tt.wantErr)
			}
		})
	}
}
