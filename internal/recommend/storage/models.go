// ItemKNN - Sparse Item Similarity Models
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/itemknn

package storage

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/tomtom215/itemknn/internal/logging"
	"github.com/tomtom215/itemknn/internal/recommend/itemitem"
	"github.com/tomtom215/itemknn/internal/sparse"
)

// Key layout:
//
//	meta:<name>                metadata JSON
//	row:<name>:<8-byte id>     neighbor row JSON
//
// Item ids are stored big-endian with the sign bit flipped, so badger's
// byte order matches ascending int64 order.
const (
	metaPrefix = "meta:"
	rowPrefix  = "row:"
)

var (
	// ErrModelNotFound is returned when no model is stored under a name.
	ErrModelNotFound = errors.New("model not found")

	// ErrChecksumMismatch is returned when stored rows do not match the
	// checksum recorded at save time.
	ErrChecksumMismatch = errors.New("model checksum mismatch")

	// ErrInvalidName is returned for empty names or names containing ':'.
	ErrInvalidName = errors.New("invalid model name")
)

// ModelMetadata describes a stored model.
type ModelMetadata struct {
	// Name is the key the model is stored under.
	Name string `json:"name"`

	// Builder and Similarity record how the model was built
	// (e.g. "direct", "cosine").
	Builder    string `json:"builder,omitempty"`
	Similarity string `json:"similarity,omitempty"`

	// BuildID is the correlation ID the build logged under.
	BuildID string `json:"build_id,omitempty"`

	// BuiltAt is when the build finished.
	BuiltAt time.Time `json:"built_at"`

	// SavedAt is set by Save.
	SavedAt time.Time `json:"saved_at"`

	InteractionCount int `json:"interaction_count"`
	UserCount        int `json:"user_count"`

	// ItemCount and PairCount are set by Save from the model.
	ItemCount int `json:"item_count"`
	PairCount int `json:"pair_count"`

	// Checksum is the hex SHA-256 over every row key and value, in key order.
	Checksum string `json:"checksum"`

	BuildDurationMS int64 `json:"build_duration_ms"`
}

// storedRow is the on-disk form of one neighbor row, keys ascending.
type storedRow struct {
	Neighbors []int64   `json:"n"`
	Scores    []float64 `json:"s"`
}

// Store persists item-item models in BadgerDB.
type Store struct {
	db     *badger.DB
	ownsDB bool
}

// Open opens (or creates) a BadgerDB at path and returns a Store that
// closes it on Close. An empty path opens an in-memory database.
func Open(path string) (*Store, error) {
	opts := badger.DefaultOptions(path).WithLogger(logging.NewBadgerLogger())
	if path == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open BadgerDB: %w", err)
	}

	logging.Info().Str("path", path).Msg("Model store opened")
	return &Store{db: db, ownsDB: true}, nil
}

// NewStore wraps an already open database. Close leaves db open.
func NewStore(db *badger.DB) *Store {
	return &Store{db: db}
}

// Close closes the underlying database if the store opened it.
func (s *Store) Close() error {
	if !s.ownsDB {
		return nil
	}
	logging.Debug().Msg("Model store closed")
	return s.db.Close()
}

// Save stores m under name, replacing any model already stored there.
// The metadata row is written last, so an interrupted save leaves no
// loadable model.
func (s *Store) Save(ctx context.Context, name string, m *itemitem.Model, meta ModelMetadata) error {
	if err := validateName(name); err != nil {
		return err
	}

	if err := s.Delete(ctx, name); err != nil && !errors.Is(err, ErrModelNotFound) {
		return err
	}

	wb := s.db.NewWriteBatch()
	defer wb.Cancel()

	h := sha256.New()
	for id, row := range m.All() {
		if err := ctx.Err(); err != nil {
			return err
		}
		key := rowKey(name, id)
		val, err := json.Marshal(encodeRow(row))
		if err != nil {
			return fmt.Errorf("marshal row %d: %w", id, err)
		}
		h.Write(key)
		h.Write(val)
		if err := wb.Set(key, val); err != nil {
			return fmt.Errorf("write row %d: %w", id, err)
		}
	}

	meta.Name = name
	meta.ItemCount = m.Len()
	meta.PairCount = m.PairCount()
	meta.Checksum = hex.EncodeToString(h.Sum(nil))
	meta.SavedAt = time.Now().UTC()

	data, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}
	if err := wb.Set([]byte(metaPrefix+name), data); err != nil {
		return fmt.Errorf("write metadata: %w", err)
	}
	if err := wb.Flush(); err != nil {
		return fmt.Errorf("flush model %s: %w", name, err)
	}

	logging.Ctx(ctx).Info().
		Str("model", name).
		Int("items", meta.ItemCount).
		Int("pairs", meta.PairCount).
		Str("checksum", meta.Checksum[:12]).
		Msg("Model saved")
	return nil
}

// Load reads the model stored under name and verifies its checksum.
func (s *Store) Load(ctx context.Context, name string) (*itemitem.Model, *ModelMetadata, error) {
	if err := validateName(name); err != nil {
		return nil, nil, err
	}

	var meta ModelMetadata
	rows := make(map[int64]sparse.Vector)

	err := s.db.View(func(txn *badger.Txn) error {
		if err := getMeta(txn, name, &meta); err != nil {
			return err
		}

		opts := badger.DefaultIteratorOptions
		prefix := rowKeyPrefix(name)
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		h := sha256.New()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			item := it.Item()
			key := item.Key()
			if len(key) != len(prefix)+8 {
				return fmt.Errorf("model %s: malformed row key %q", name, key)
			}
			id := decodeID(key[len(prefix):])

			err := item.Value(func(val []byte) error {
				h.Write(key)
				h.Write(val)
				var r storedRow
				if err := json.Unmarshal(val, &r); err != nil {
					return err
				}
				row, err := decodeRow(r)
				if err != nil {
					return err
				}
				rows[id] = row
				return nil
			})
			if err != nil {
				return fmt.Errorf("model %s: row %d: %w", name, id, err)
			}
		}

		if sum := hex.EncodeToString(h.Sum(nil)); sum != meta.Checksum {
			return fmt.Errorf("%w: model %s: stored %s, computed %s", ErrChecksumMismatch, name, meta.Checksum, sum)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	return itemitem.NewModel(rows), &meta, nil
}

// Neighbors reads a single row of the model stored under name. Items
// without a row get an empty vector.
func (s *Store) Neighbors(ctx context.Context, name string, item int64) (sparse.Vector, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var row sparse.Vector = sparse.Empty()
	err := s.db.View(func(txn *badger.Txn) error {
		var meta ModelMetadata
		if err := getMeta(txn, name, &meta); err != nil {
			return err
		}

		it, err := txn.Get(rowKey(name, item))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return it.Value(func(val []byte) error {
			var r storedRow
			if err := json.Unmarshal(val, &r); err != nil {
				return fmt.Errorf("model %s: row %d: %w", name, item, err)
			}
			m, err := decodeRow(r)
			if err != nil {
				return fmt.Errorf("model %s: row %d: %w", name, item, err)
			}
			row = m
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return row, nil
}

// Metadata returns the metadata of the model stored under name.
func (s *Store) Metadata(_ context.Context, name string) (*ModelMetadata, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	var meta ModelMetadata
	err := s.db.View(func(txn *badger.Txn) error {
		return getMeta(txn, name, &meta)
	})
	if err != nil {
		return nil, err
	}
	return &meta, nil
}

// List returns the metadata of every stored model, ordered by name.
func (s *Store) List(ctx context.Context) ([]ModelMetadata, error) {
	var out []ModelMetadata
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		prefix := []byte(metaPrefix)
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			var meta ModelMetadata
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &meta)
			})
			if err != nil {
				return fmt.Errorf("metadata %q: %w", it.Item().Key(), err)
			}
			out = append(out, meta)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes the model stored under name.
func (s *Store) Delete(ctx context.Context, name string) error {
	if err := validateName(name); err != nil {
		return err
	}

	var found bool
	err := s.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get([]byte(metaPrefix + name))
		switch {
		case errors.Is(err, badger.ErrKeyNotFound):
		case err != nil:
			return err
		default:
			found = true
			if err := txn.Delete([]byte(metaPrefix + name)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete model %s: %w", name, err)
	}

	// Rows of an interrupted save may exist without metadata.
	dropped, err := s.dropRows(ctx, name)
	if err != nil {
		return err
	}
	if !found {
		if dropped > 0 {
			logging.Ctx(ctx).Warn().
				Str("model", name).
				Int("rows", dropped).
				Msg("Dropped rows left without metadata")
		}
		return fmt.Errorf("%w: %s", ErrModelNotFound, name)
	}
	return nil
}

// dropRows deletes every row of name and returns how many it removed.
func (s *Store) dropRows(ctx context.Context, name string) (int, error) {
	prefix := rowKeyPrefix(name)
	var keys [][]byte
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			keys = append(keys, it.Item().KeyCopy(nil))
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("list rows of %s: %w", name, err)
	}
	if len(keys) == 0 {
		return 0, nil
	}

	wb := s.db.NewWriteBatch()
	defer wb.Cancel()
	for _, k := range keys {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		if err := wb.Delete(k); err != nil {
			return 0, fmt.Errorf("delete rows of %s: %w", name, err)
		}
	}
	if err := wb.Flush(); err != nil {
		return 0, fmt.Errorf("delete rows of %s: %w", name, err)
	}
	return len(keys), nil
}

func getMeta(txn *badger.Txn, name string, meta *ModelMetadata) error {
	item, err := txn.Get([]byte(metaPrefix + name))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return fmt.Errorf("%w: %s", ErrModelNotFound, name)
	}
	if err != nil {
		return err
	}
	return item.Value(func(val []byte) error {
		return json.Unmarshal(val, meta)
	})
}

func validateName(name string) error {
	if name == "" || strings.ContainsRune(name, ':') {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

func rowKeyPrefix(name string) []byte {
	return []byte(rowPrefix + name + ":")
}

func rowKey(name string, id int64) []byte {
	prefix := rowKeyPrefix(name)
	key := make([]byte, len(prefix)+8)
	copy(key, prefix)
	binary.BigEndian.PutUint64(key[len(prefix):], uint64(id)^(1<<63)) //nolint:gosec // order-preserving bit flip
	return key
}

func decodeID(b []byte) int64 {
	return int64(binary.BigEndian.Uint64(b) ^ (1 << 63)) //nolint:gosec // inverse of rowKey
}

func encodeRow(row sparse.Vector) storedRow {
	m := sparse.Freeze(row)
	return storedRow{Neighbors: m.Index().KeySlice(), Scores: m.Values()}
}

func decodeRow(r storedRow) (sparse.Vector, error) {
	idx, err := sparse.FromSorted(r.Neighbors)
	if err != nil {
		return nil, err
	}
	m, err := sparse.NewMap(idx, r.Scores)
	if err != nil {
		return nil, err
	}
	return m, nil
}
