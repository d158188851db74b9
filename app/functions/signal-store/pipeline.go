// SPDX-FileCopyrightText: Copyright (c) 2016-2025, CloudZero, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/cloudzero/signal-store/app/domain/pipeline"
	"github.com/cloudzero/signal-store/app/types"
)

func newAcquireCmd(a *app) *cobra.Command {
	var req pipeline.Request

	cmd := &cobra.Command{
		Use:   "acquire <samples-file>",
		Short: "Acquire a samples file into the acquired dataset",
		Long: `Reads whitespace separated numbers from the samples file and stores them as a
new signal. The id of the new signal is printed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closer, err := a.service()
			if err != nil {
				return err
			}
			defer closer()

			sig, err := svc.Acquire(cmd.Context(), args[0], req)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), sig.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&req.ID, "id", "", "Id of the new signal (generated when empty)")
	cmd.Flags().StringVar(&req.Comment, "comment", "", "Free text comment")
	cmd.Flags().Float64Var(&req.SampleRate, "sample-rate", 0, "Sample rate in Hz")
	cmd.Flags().StringVar(&req.Source.Name, "source", "", "Name of the source")
	cmd.Flags().IntVar(&req.Source.Channel, "channel", 0, "Source channel")
	cmd.Flags().StringVar(&req.Source.Sensor.Model, "sensor-model", "", "Sensor model")
	cmd.Flags().Float64Var(&req.Source.Sensor.Gain, "sensor-gain", 1, "Sensor gain")
	return cmd
}

func newProcessCmd(a *app) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "process [id...]",
		Short: "Apply the threshold filter to acquired signals",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closer, err := a.service()
			if err != nil {
				return err
			}
			defer closer()

			ids := args
			if all {
				if ids, err = svc.Acquired(cmd.Context()); err != nil {
					return err
				}
				sort.Strings(ids)
			}
			if len(ids) == 0 {
				return fmt.Errorf("no signal to process: pass ids or --all")
			}

			for _, id := range ids {
				if _, err := svc.Process(cmd.Context(), id); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), id)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Process every acquired signal")
	return cmd
}

func newListCmd(a *app) *cobra.Command {
	var dataset string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the ids of a dataset",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ds, err := a.dataset(dataset)
			if err != nil {
				return err
			}
			repo, sc, err := a.open(ds)
			if err != nil {
				return err
			}
			defer sc.Close()

			ids, err := repo.ListIDs(cmd.Context())
			if err != nil {
				return err
			}
			sort.Strings(ids)
			for _, id := range ids {
				fmt.Fprintln(cmd.OutOrStdout(), id)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&dataset, "dataset", "d", "acquired", "Dataset to list: acquired or processed")
	return cmd
}

// describeReport renders the skipped tokens of a partial decode for stderr.
func describeReport(id string, report types.DecodeReport) string {
	s := fmt.Sprintf("%s: %d tokens skipped", id, report.SkippedCount())
	for _, tok := range report.Skipped {
		s += fmt.Sprintf("\n  line %d: %q: %s", tok.Line, tok.Token, tok.Reason)
	}
	return s
}

func newWatchCmd(a *app) *cobra.Command {
	var (
		req     pipeline.Request
		ext     string
		settle  time.Duration
		process bool
	)

	cmd := &cobra.Command{
		Use:   "watch <dir>",
		Short: "Acquire samples files as they are dropped into a directory",
		Long: `Watches the directory and acquires every samples file written into it once
it stays unchanged for the settle time. The file name without its extension
becomes the signal id. Runs until interrupted.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closer, err := a.service()
			if err != nil {
				return err
			}
			defer closer()

			opts := []pipeline.WatcherOption{
				pipeline.WithExtension(ext),
				pipeline.WithSettleTime(settle),
				pipeline.WithRequest(req),
			}
			if process {
				opts = append(opts, pipeline.WithProcessing())
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return pipeline.NewWatcher(svc, args[0], opts...).Run(ctx)
		},
	}

	cmd.Flags().StringVar(&ext, "extension", pipeline.DefaultSamplesExtension, "Extension of the samples files")
	cmd.Flags().DurationVar(&settle, "settle", pipeline.DefaultSettleTime, "Quiet time before a file is acquired")
	cmd.Flags().BoolVar(&process, "process", false, "Process every signal right after acquiring it")
	cmd.Flags().StringVar(&req.Comment, "comment", "", "Comment of the acquired signals")
	cmd.Flags().Float64Var(&req.SampleRate, "sample-rate", 0, "Sample rate in Hz")
	cmd.Flags().StringVar(&req.Source.Name, "source", "", "Name of the source")
	return cmd
}
