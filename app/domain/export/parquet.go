// SPDX-FileCopyrightText: Copyright (c) 2016-2025, CloudZero, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package export writes a dataset as a Parquet file for analysis tools.
//
// Every sample becomes one row, so a signal of n values yields n rows sharing
// the signal's metadata columns. Signals are written in id order and samples in
// index order.
package export

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/parquet-go/parquet-go"
	"github.com/rs/zerolog/log"

	"github.com/cloudzero/signal-store/app/storage/repository"
	"github.com/cloudzero/signal-store/app/types"
)

// SampleRow is the Parquet row of one sample.
type SampleRow struct {
	ID           string  `parquet:"id,dict"`
	Index        int64   `parquet:"sample_index"`
	Value        float64 `parquet:"value"`
	AcquiredAtMs int64   `parquet:"acquired_at_ms"`
	SampleRate   float64 `parquet:"sample_rate"`
	Processed    bool    `parquet:"processed"`
	Source       string  `parquet:"source,dict"`
	Channel      int64   `parquet:"channel"`
	SensorModel  string  `parquet:"sensor_model,dict"`
}

// Summary counts what an export wrote.
type Summary struct {
	Signals int
	Rows    int
	Partial int
}

// batchRows bounds the rows buffered before a write.
const batchRows = 4096

// Rows returns the rows of one signal.
func Rows(s *types.Signal) []SampleRow {
	rows := make([]SampleRow, len(s.Values))
	for i, v := range s.Values {
		rows[i] = SampleRow{
			ID:           s.ID,
			Index:        int64(i),
			Value:        v,
			AcquiredAtMs: s.AcquiredAt.UnixMilli(),
			SampleRate:   s.SampleRate,
			Processed:    s.Processed,
			Source:       s.Source.Name,
			Channel:      int64(s.Source.Channel),
			SensorModel:  s.Source.Sensor.Model,
		}
	}
	return rows
}

// WriteParquet writes every signal of repo to w.
func WriteParquet(ctx context.Context, repo *repository.Repository[*types.Signal], w io.Writer) (Summary, error) {
	var summary Summary

	ids, err := repo.ListIDs(ctx)
	if err != nil {
		return summary, fmt.Errorf("failed to list ids: %w", err)
	}
	sort.Strings(ids)

	pw := parquet.NewGenericWriter[SampleRow](w)
	batch := make([]SampleRow, 0, batchRows)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if _, err := pw.Write(batch); err != nil {
			return fmt.Errorf("failed to write rows: %w", err)
		}
		summary.Rows += len(batch)
		batch = batch[:0]
		return nil
	}

	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		signal, report, err := repo.Fetch(ctx, types.NewSignal(), id)
		if err != nil {
			return summary, fmt.Errorf("failed to fetch %s: %w", id, err)
		}
		if report.Partial() {
			summary.Partial++
		}
		summary.Signals++

		batch = append(batch, Rows(signal)...)
		if len(batch) >= batchRows {
			if err := flush(); err != nil {
				return summary, err
			}
		}
	}
	if err := flush(); err != nil {
		return summary, err
	}
	if err := pw.Close(); err != nil {
		return summary, fmt.Errorf("failed to finish parquet file: %w", err)
	}

	log.Ctx(ctx).Info().
		Int("signals", summary.Signals).
		Int("rows", summary.Rows).
		Msg("dataset exported")
	return summary, nil
}
