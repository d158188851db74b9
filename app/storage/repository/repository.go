// SPDX-FileCopyrightText: Copyright (c) 2016-2025, CloudZero, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package repository is the domain-facing entry point to a storage context.
//
// A Repository adds no caching and no transactions: every call goes to the
// context and its errors are returned unchanged.
package repository

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/cloudzero/signal-store/app/types"
)

// Repository saves and fetches entities of type T.
type Repository[T types.Identifiable] struct {
	sc types.StorageContext
}

// New creates a repository over sc. A nil sc, as returned by factory.Create
// for an unknown kind, fails with types.ErrContextNotConfigured.
func New[T types.Identifiable](sc types.StorageContext) (*Repository[T], error) {
	if sc == nil {
		return nil, types.ErrContextNotConfigured
	}
	return &Repository[T]{sc: sc}, nil
}

// Context returns the underlying storage context.
func (r *Repository[T]) Context() types.StorageContext {
	if r == nil {
		return nil
	}
	return r.sc
}

// Save stores entity under its own id.
func (r *Repository[T]) Save(ctx context.Context, entity T) error {
	if r == nil || r.sc == nil {
		return types.ErrContextNotConfigured
	}
	id := entity.EntityID()
	log.Ctx(ctx).Debug().Str("kind", r.sc.Kind()).Str("id", id).Msg("saving entity")
	return r.sc.Persist(ctx, entity, id)
}

// Fetch fills template with the entity stored under id and returns it along
// with the decode report.
func (r *Repository[T]) Fetch(ctx context.Context, template T, id string) (T, types.DecodeReport, error) {
	if r == nil || r.sc == nil {
		return template, types.DecodeReport{}, types.ErrContextNotConfigured
	}
	report, err := r.sc.Retrieve(ctx, template, id)
	return template, report, err
}

// ListIDs returns the ids present in the context.
func (r *Repository[T]) ListIDs(ctx context.Context) ([]string, error) {
	if r == nil || r.sc == nil {
		return nil, types.ErrContextNotConfigured
	}
	return r.sc.List(ctx)
}
