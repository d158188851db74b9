// SPDX-FileCopyrightText: Copyright (c) 2016-2025, CloudZero, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	config "github.com/cloudzero/signal-store/app/config/store"
	"github.com/cloudzero/signal-store/app/domain/export"
	"github.com/cloudzero/signal-store/app/domain/migrate"
	"github.com/cloudzero/signal-store/app/types"
)

func newMigrateCmd(a *app) *cobra.Command {
	var (
		dataset string
		to      config.Dataset
	)

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Copy a dataset into another storage context",
		Long: `Copies every signal of a configured dataset into the context named by
--to-kind and --to-path, for example to move text records into sqlite.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			from, err := a.dataset(dataset)
			if err != nil {
				return err
			}
			if to.Kind == "" || to.Path == "" {
				return fmt.Errorf("--to-kind and --to-path are required")
			}
			if from.Kind == to.Kind && from.Path == to.Path {
				return fmt.Errorf("source and target are the same context")
			}

			source, ssc, err := a.open(from)
			if err != nil {
				return fmt.Errorf("source: %w", err)
			}
			defer ssc.Close()
			target, tsc, err := a.open(to)
			if err != nil {
				return fmt.Errorf("target: %w", err)
			}
			defer tsc.Close()

			m, err := migrate.NewMigrator(source, target, types.NewSignal, a.settings.Processing.Workers)
			if err != nil {
				return err
			}
			result, err := m.Run(cmd.Context())
			fmt.Fprintf(cmd.OutOrStdout(), "copied %d of %d signals (%d partial, %d failed)\n",
				result.Copied, result.Total, result.Partial, result.Failed)
			return err
		},
	}

	cmd.Flags().StringVarP(&dataset, "dataset", "d", "acquired", "Dataset to copy: acquired or processed")
	cmd.Flags().StringVar(&to.Kind, "to-kind", "", "Kind of the target context")
	cmd.Flags().StringVar(&to.Path, "to-path", "", "Resource path of the target context")
	return cmd
}

func newConfigCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			raw, err := a.settings.ToYAML()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(raw)
			return err
		},
	}
}

func newExportCmd(a *app) *cobra.Command {
	var dataset string

	cmd := &cobra.Command{
		Use:   "export <output.parquet>",
		Short: "Write a dataset as a Parquet file, one row per sample",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := a.dataset(dataset)
			if err != nil {
				return err
			}
			repo, sc, err := a.open(ds)
			if err != nil {
				return err
			}
			defer sc.Close()

			f, err := os.Create(args[0])
			if err != nil {
				return fmt.Errorf("failed to create output: %w", err)
			}
			summary, err := export.WriteParquet(cmd.Context(), repo, f)
			if cerr := f.Close(); err == nil {
				err = cerr
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "exported %d signals as %d rows\n", summary.Signals, summary.Rows)
			return nil
		},
	}

	cmd.Flags().StringVarP(&dataset, "dataset", "d", "processed", "Dataset to export: acquired or processed")
	return cmd
}
