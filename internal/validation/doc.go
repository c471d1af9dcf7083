// ItemKNN - Sparse Item Similarity Models
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/itemknn

// Package validation provides struct validation using go-playground/validator v10.
//
// The package wraps a thread-safe singleton validator and turns field errors
// into readable messages. Fields carrying a koanf tag are reported by their
// config path, so a bad model size reads as
//
//	model.model_size must be greater than or equal to 0
//
// # Usage
//
//	type ModelConfig struct {
//	    Similarity string `koanf:"similarity" validate:"oneof=cosine pearson jaccard conditional"`
//	    ModelSize  int    `koanf:"model_size" validate:"gte=0"`
//	}
//
//	if verr := validation.ValidateStruct(&cfg); verr != nil {
//	    for _, e := range verr.Errors() {
//	        fmt.Println(e.Path(), e.Tag())
//	    }
//	}
//
// # Thread Safety
//
// ValidateStruct is safe for concurrent use. The shared validator
// caches struct metadata after the first call for each type.
package validation
