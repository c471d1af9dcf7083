// ItemKNN - Sparse Item Similarity Models
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/itemknn

// Package storage persists item-item similarity models in BadgerDB.
//
// Each model is stored under a name as one metadata record plus one record
// per item holding that item's neighbor row. Rows can be read back one at a
// time with Store.Neighbors, so serving a lookup does not require loading
// the whole model.
//
// # Storage Format
//
//	meta:<name>              ModelMetadata as JSON
//	row:<name>:<item id>     {"n":[neighbor ids...],"s":[scores...]}
//
// Item ids are encoded as 8 big-endian bytes with the sign bit flipped, so
// rows iterate in ascending id order. Neighbor ids within a row are
// ascending.
//
// # Integrity
//
// Save records a SHA-256 checksum over every row key and value. Load
// recomputes it and fails with ErrChecksumMismatch on any difference.
// The metadata record is written last; a save that fails part way leaves
// rows without metadata, which Load and List ignore and the next Save or
// Delete of that name removes.
//
// # Usage Example
//
//	store, err := storage.Open("/var/lib/itemknn/models")
//	if err != nil {
//	    return err
//	}
//	defer store.Close()
//
//	if err := store.Save(ctx, "movies", model, storage.ModelMetadata{
//	    Builder:    "direct",
//	    Similarity: "cosine",
//	    BuiltAt:    time.Now(),
//	}); err != nil {
//	    return err
//	}
//
//	row, err := store.Neighbors(ctx, "movies", 42)
//
// # Thread Safety
//
// A Store is safe for concurrent use; BadgerDB transactions provide
// isolation. Concurrent Saves of the same name are not serialized and
// should be avoided.
package storage
