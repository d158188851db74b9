// SPDX-FileCopyrightText: Copyright (c) 2016-2025, CloudZero, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/cloudzero/signal-store/app/build"
	config "github.com/cloudzero/signal-store/app/config/store"
	"github.com/cloudzero/signal-store/app/domain/pipeline"
	"github.com/cloudzero/signal-store/app/logging"
	"github.com/cloudzero/signal-store/app/storage/core"
	"github.com/cloudzero/signal-store/app/storage/factory"
	"github.com/cloudzero/signal-store/app/storage/repository"
	"github.com/cloudzero/signal-store/app/types"
)

// app holds what the root command prepares for its subcommands.
type app struct {
	configFiles     []string
	logLevel        string
	metricsTextfile string

	settings *config.Settings
	logger   *zerolog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "signal-store",
		Short: "Acquire, process and inspect stored signals",
		Long: `signal-store keeps sampled signals in pluggable storage contexts.

Signals are acquired from plain sample files into the acquired dataset and
processed with a threshold filter into the processed dataset. Each dataset is
stored by the context kind named in the configuration: archivo (text records),
pickle (binary records) or sqlite.`,
		Version:       build.GetVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			if a.metricsTextfile == "" {
				return nil
			}
			core.StorageMetrics()
			if err := prometheus.WriteToTextfile(a.metricsTextfile, prometheus.DefaultGatherer); err != nil {
				return fmt.Errorf("failed to write metrics: %w", err)
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().StringSliceVarP(&a.configFiles, "config", "c", nil, "Path to a YAML configuration file, may be repeated")
	rootCmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Override the configured logging level")
	rootCmd.PersistentFlags().StringVar(&a.metricsTextfile, "metrics-textfile", "", "Write the storage metrics to this file on success, in the Prometheus text format")

	rootCmd.AddCommand(
		newAcquireCmd(a),
		newProcessCmd(a),
		newWatchCmd(a),
		newListCmd(a),
		newShowCmd(a),
		newMigrateCmd(a),
		newExportCmd(a),
		newConfigCmd(a),
	)
	return rootCmd
}

func (a *app) setup(cmd *cobra.Command) error {
	settings, err := config.NewSettings(a.configFiles...)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if a.logLevel != "" {
		settings.Logging.Level = a.logLevel
	}

	// stdout carries command output, so logs go to stderr
	logger, err := logging.NewLogger(
		logging.WithLevel(settings.Logging.Level),
		logging.WithSink(os.Stderr),
		logging.WithAttrs(func(c zerolog.Context) zerolog.Context {
			return c.Str("command", cmd.Name())
		}),
	)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	zerolog.DefaultContextLogger = logger

	a.settings = settings
	a.logger = logger
	cmd.SetContext(logger.WithContext(cmd.Context()))
	return nil
}

// dataset resolves a dataset name of the configuration.
func (a *app) dataset(name string) (config.Dataset, error) {
	switch name {
	case "acquired":
		return a.settings.Datasets.Acquired, nil
	case "processed":
		return a.settings.Datasets.Processed, nil
	}
	return config.Dataset{}, fmt.Errorf("unknown dataset %q, expected acquired or processed", name)
}

// open opens the repository of a dataset. The returned context must be closed.
func (a *app) open(ds config.Dataset) (*pipeline.SignalRepository, types.StorageContext, error) {
	opts := append(a.settings.ContextOptions(), factory.WithLogger(a.logger))
	sc, err := factory.Open(ds.Kind, ds.Path, opts...)
	if err != nil {
		return nil, nil, err
	}
	repo, err := repository.New[*types.Signal](sc)
	if err != nil {
		_ = sc.Close()
		return nil, nil, err
	}
	return repo, sc, nil
}

// service opens both datasets and builds the pipeline over them.
func (a *app) service() (*pipeline.Service, func(), error) {
	acquired, asc, err := a.open(a.settings.Datasets.Acquired)
	if err != nil {
		return nil, nil, fmt.Errorf("acquired dataset: %w", err)
	}
	processed, psc, err := a.open(a.settings.Datasets.Processed)
	if err != nil {
		_ = asc.Close()
		return nil, nil, fmt.Errorf("processed dataset: %w", err)
	}
	closer := func() {
		_ = asc.Close()
		_ = psc.Close()
	}

	svc, err := pipeline.NewService(acquired, processed,
		pipeline.NewAcquirer(),
		pipeline.NewProcessor(a.settings.Processing.Threshold))
	if err != nil {
		closer()
		return nil, nil, err
	}
	return svc, closer, nil
}
