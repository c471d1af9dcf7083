// ItemKNN - Sparse Item Similarity Models
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/itemknn

package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/tomtom215/itemknn/internal/config"
	"github.com/tomtom215/itemknn/internal/logging"
	"github.com/tomtom215/itemknn/internal/recommend/itemitem"
	"github.com/tomtom215/itemknn/internal/recommend/storage"
)

var (
	storePath string
	modelName string
)

var neighborsCmd = &cobra.Command{
	Use:   "neighbors ITEM...",
	Short: "print stored neighbor rows",
	Long: `
  Reads the rows of the given items from a model saved by "itemknn build"
  and prints them in the same JSON-lines format as build output.
`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		items := make([]int64, len(args))
		for i, a := range args {
			id, err := strconv.ParseInt(a, 10, 64)
			if err != nil {
				return fmt.Errorf("item %q: %w", a, err)
			}
			items[i] = id
		}
		return withStore(func(s *storage.Store) error {
			return printNeighbors(cmd.Context(), s, modelName, items, cmd.OutOrStdout())
		})
	},
}

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "list stored models",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withStore(func(s *storage.Store) error {
			return printModels(cmd.Context(), s, cmd.OutOrStdout())
		})
	},
}

func init() {
	for _, c := range []*cobra.Command{neighborsCmd, modelsCmd} {
		f := c.Flags()
		f.StringVar(&storePath, "store", "", "model store directory")
		_ = c.MarkFlagRequired("store")
		rootCmd.AddCommand(c)
	}
	neighborsCmd.Flags().StringVar(&modelName, "name", "default", "stored model name")
}

func withStore(fn func(*storage.Store) error) error {
	s, err := storage.Open(storePath)
	if err != nil {
		return err
	}
	if err := fn(s); err != nil {
		closeAfterError(s)
		return err
	}
	return s.Close()
}

// closeAfterError closes s while another error is being returned.
func closeAfterError(s *storage.Store) {
	if err := s.Close(); err != nil {
		logging.Warn().Err(err).Msg("Close model store")
	}
}

// saveModel writes model to the store configured in cfg.
func saveModel(ctx context.Context, cfg config.StoreConfig, model *itemitem.Model, meta storage.ModelMetadata) error {
	s, err := storage.Open(cfg.Path)
	if err != nil {
		return err
	}
	if err := s.Save(ctx, cfg.Name, model, meta); err != nil {
		closeAfterError(s)
		return err
	}
	return s.Close()
}

func printNeighbors(ctx context.Context, s *storage.Store, name string, items []int64, w io.Writer) error {
	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)
	for _, id := range items {
		row, err := s.Neighbors(ctx, name, id)
		if err != nil {
			return err
		}
		if err := encodeRow(enc, id, row); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func printModels(ctx context.Context, s *storage.Store, w io.Writer) error {
	list, err := s.List(ctx)
	if err != nil {
		return err
	}
	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)
	for i := range list {
		if err := enc.Encode(&list[i]); err != nil {
			return fmt.Errorf("encode model %s: %w", list[i].Name, err)
		}
	}
	return bw.Flush()
}
