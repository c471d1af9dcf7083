// ItemKNN - Sparse Item Similarity Models
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/itemknn

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tomtom215/itemknn/internal/config"
	"github.com/tomtom215/itemknn/internal/logging"
)

var (
	configPath string
	inputPath  string
	outputPath string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:           "itemknn",
	Short:         "item-item similarity models",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, _ []string) {
		if cmd.Flags().Changed("log-level") {
			logging.SetLevelString(logLevel)
		}
	},
}

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "build an item-item model from a ratings file",
	Long: `
  Reads user,item,rating rows, computes item-item similarities with the
  configured builder, and writes one JSON line per item:

    {"item":42,"neighbors":[{"item":7,"score":0.91}, ...]}

  With a store directory set, the model is also saved to BadgerDB for
  "itemknn neighbors" and "itemknn models".

  Settings come from the config file, ITEMKNN_* environment variables and
  the flags below, in increasing priority.
`,
	Args: cobra.NoArgs,
	RunE: runBuildCmd,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: trace, debug, info, warn, error")

	f := buildCmd.Flags()
	f.StringVar(&configPath, "config", "", "config file (default: $ITEMKNN_CONFIG or ./config.yaml)")
	f.StringVar(&inputPath, "input", "", "ratings file, overrides input.path")
	f.StringVar(&outputPath, "output", "", "output file, overrides output.path")
	f.StringVar(&storePath, "store", "", "model store directory, overrides store.path")
	f.StringVar(&modelName, "name", "", "stored model name, overrides store.name")

	rootCmd.AddCommand(buildCmd)
}

func runBuildCmd(cmd *cobra.Command, _ []string) error {
	overrides := make(map[string]any)
	if cmd.Flags().Changed("input") {
		overrides["input.path"] = inputPath
	}
	if cmd.Flags().Changed("output") {
		overrides["output.path"] = outputPath
	}
	if cmd.Flags().Changed("store") {
		overrides["store.path"] = storePath
	}
	if cmd.Flags().Changed("name") {
		overrides["store.name"] = modelName
	}
	if cmd.Flags().Changed("log-level") {
		overrides["logging.level"] = logLevel
	}

	cfg, err := config.Load(config.LoadOptions{ConfigPath: configPath, Overrides: overrides})
	if err != nil {
		return err
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
		Output:    os.Stderr,
	})

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return run(ctx, cfg, cmd.OutOrStdout())
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		logging.Fatal().Err(err).Msg("itemknn failed")
	}
}
