// SPDX-FileCopyrightText: Copyright (c) 2016-2025, CloudZero, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/itchyny/gojq"
	"github.com/spf13/cobra"

	"github.com/cloudzero/signal-store/app/types"
)

func newShowCmd(a *app) *cobra.Command {
	var (
		dataset string
		query   string
	)

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Print a stored signal as JSON",
		Long: `Retrieves a signal and prints it as JSON. With --query the JSON is filtered
through a jq expression, for example --query '.values | max'.`,
		Args: cobra.ExactArgs(1),
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

			signal, report, err := repo.Fetch(cmd.Context(), types.NewSignal(), args[0])
			if err != nil {
				return err
			}
			if report.Partial() {
				fmt.Fprintln(cmd.ErrOrStderr(), describeReport(args[0], report))
			}
			return render(cmd.Context(), cmd.OutOrStdout(), signal, query)
		},
	}

	cmd.Flags().StringVarP(&dataset, "dataset", "d", "acquired", "Dataset to read: acquired or processed")
	cmd.Flags().StringVarP(&query, "query", "q", "", "jq expression applied to the JSON output")
	return cmd
}

// render writes value as indented JSON, or every result of the jq query
// applied to it.
func render(ctx context.Context, w io.Writer, value any, query string) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	if query == "" {
		return enc.Encode(value)
	}

	parsed, err := gojq.Parse(query)
	if err != nil {
		return fmt.Errorf("invalid query: %w", err)
	}
	code, err := gojq.Compile(parsed)
	if err != nil {
		return fmt.Errorf("invalid query: %w", err)
	}

	// gojq only accepts the generic JSON shapes
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	var input any
	if err := json.Unmarshal(raw, &input); err != nil {
		return err
	}

	iter := code.RunWithContext(ctx, input)
	for {
		v, ok := iter.Next()
		if !ok {
			return nil
		}
		if err, isErr := v.(error); isErr {
			var halt *gojq.HaltError
			if errors.As(err, &halt) && halt.Value() == nil {
				return nil
			}
			return fmt.Errorf("query failed: %w", err)
		}
		if err := enc.Encode(v); err != nil {
			return err
		}
	}
}
