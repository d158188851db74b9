// SPDX-FileCopyrightText: Copyright (c) 2016-2025, CloudZero, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package migrate copies a dataset from one storage context into another, for
// example from the text kind to sqlite.
package migrate

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/cloudzero/signal-store/app/storage/repository"
	"github.com/cloudzero/signal-store/app/types"
	"github.com/cloudzero/signal-store/app/utils/parallel"
)

// Result summarizes a migration.
type Result struct {
	Total   int
	Copied  int
	Partial int
	Failed  int
}

// Migrator copies every entity of source into target.
type Migrator[T types.Identifiable] struct {
	source   *repository.Repository[T]
	target   *repository.Repository[T]
	template func() T
	workers  int
}

// NewMigrator creates a Migrator. template returns a fresh retrieval template
// for each entity.
func NewMigrator[T types.Identifiable](source, target *repository.Repository[T], template func() T, workers int) (*Migrator[T], error) {
	if source == nil || target == nil {
		return nil, types.ErrContextNotConfigured
	}
	if template == nil {
		return nil, fmt.Errorf("template constructor is required")
	}
	return &Migrator[T]{
		source:   source,
		target:   target,
		template: template,
		workers:  workers,
	}, nil
}

// transactor is implemented by contexts backed by a database, see
// core.RawBaseRepoImpl.
type transactor interface {
	Tx(ctx context.Context, block func(ctxTx context.Context) error) error
}

// Run copies every id listed by the source. An entity that decodes partially
// is still copied and counted in Result.Partial. Failures do not stop the
// other copies; they are returned joined.
func (m *Migrator[T]) Run(ctx context.Context) (Result, error) {
	begin := time.Now()

	ids, err := m.source.ListIDs(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("failed to list source ids: %w", err)
	}

	var copied, partial atomic.Int64
	pm := parallel.New(m.workers)
	defer pm.Close()

	waiter := parallel.NewWaiter()
	for _, id := range ids {
		pm.Run(func() error {
			if err := ctx.Err(); err != nil {
				return fmt.Errorf("%s: %w", id, err)
			}
			entity, report, err := m.source.Fetch(ctx, m.template(), id)
			if err != nil {
				return fmt.Errorf("%s: fetch: %w", id, err)
			}
			if report.Partial() {
				partial.Add(1)
				log.Ctx(ctx).Warn().Str("id", id).Int("skipped", report.SkippedCount()).Msg("migrating partially decoded entity")
			}
			if err := m.save(ctx, entity, id); err != nil {
				return fmt.Errorf("%s: save: %w", id, err)
			}
			copied.Add(1)
			return nil
		}, waiter)
	}
	err = waiter.Wait()

	result := Result{
		Total:   len(ids),
		Copied:  int(copied.Load()),
		Partial: int(partial.Load()),
		Failed:  len(waiter.Errors()),
	}
	log.Ctx(ctx).Info().
		Str("source", m.source.Context().Kind()).
		Str("target", m.target.Context().Kind()).
		Int("total", result.Total).
		Int("copied", result.Copied).
		Int("failed", result.Failed).
		Dur("elapsed", time.Since(begin)).
		Msg("migration finished")
	return result, err
}

// save persists entity under the id the source listed it by, which survives a
// partially decoded id field. Database targets write each copy in its own
// transaction.
func (m *Migrator[T]) save(ctx context.Context, entity T, id string) error {
	sc := m.target.Context()
	persist := func(ctx context.Context) error {
		return sc.Persist(ctx, entity, id)
	}
	if tx, ok := sc.(transactor); ok {
		return tx.Tx(ctx, persist)
	}
	return persist(ctx)
}
