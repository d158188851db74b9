// SPDX-FileCopyrightText: Copyright (c) 2016-2025, CloudZero, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package pipeline acquires signals into one dataset and processes them into
// another.
//
//	acquire: samples file -> Acquirer -> acquired repository
//	process: acquired repository -> Processor -> processed repository
//
// Processing keeps the id, so a processed signal replaces earlier processing
// results for the same acquisition.
package pipeline

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/cloudzero/signal-store/app/storage/repository"
	"github.com/cloudzero/signal-store/app/types"
)

// SignalRepository is the repository of signals used on both sides of the
// pipeline.
type SignalRepository = repository.Repository[*types.Signal]

// Service wires the acquirer and the processor to their datasets.
type Service struct {
	acquired  *SignalRepository
	processed *SignalRepository
	acquirer  *Acquirer
	processor *Processor
}

// NewService creates a Service. Both repositories are required.
func NewService(acquired, processed *SignalRepository, acquirer *Acquirer, processor *Processor) (*Service, error) {
	if acquired == nil || processed == nil {
		return nil, types.ErrContextNotConfigured
	}
	if acquirer == nil {
		acquirer = NewAcquirer()
	}
	if processor == nil {
		return nil, fmt.Errorf("processor is required")
	}
	return &Service{
		acquired:  acquired,
		processed: processed,
		acquirer:  acquirer,
		processor: processor,
	}, nil
}

// Acquire reads the samples file at path and saves the new signal into the
// acquired dataset.
func (s *Service) Acquire(ctx context.Context, path string, req Request) (*types.Signal, error) {
	signal, err := s.acquirer.AcquireFile(ctx, path, req)
	if err != nil {
		return nil, err
	}
	if err := s.acquired.Save(ctx, signal); err != nil {
		return nil, fmt.Errorf("failed to save acquired signal %s: %w", signal.ID, err)
	}
	log.Ctx(ctx).Info().
		Str("id", signal.ID).
		Int("samples", signal.SampleCount).
		Msg("signal acquired")
	return signal, nil
}

// Process filters the acquired signal id and saves the result into the
// processed dataset.
func (s *Service) Process(ctx context.Context, id string) (*types.Signal, error) {
	in, report, err := s.acquired.Fetch(ctx, types.NewSignal(), id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch acquired signal %s: %w", id, err)
	}
	if report.Partial() {
		log.Ctx(ctx).Warn().
			Str("id", id).
			Int("skipped", report.SkippedCount()).
			Msg("acquired signal was partially reconstructed")
	}

	out := s.processor.Process(in)
	if err := s.processed.Save(ctx, out); err != nil {
		return nil, fmt.Errorf("failed to save processed signal %s: %w", id, err)
	}
	log.Ctx(ctx).Info().
		Str("id", id).
		Float64("threshold", s.processor.Threshold()).
		Msg("signal processed")
	return out, nil
}

// Acquired returns the ids of the acquired dataset.
func (s *Service) Acquired(ctx context.Context) ([]string, error) {
	return s.acquired.ListIDs(ctx)
}

// Processed returns the ids of the processed dataset.
func (s *Service) Processed(ctx context.Context) ([]string, error) {
	return s.processed.ListIDs(ctx)
}
