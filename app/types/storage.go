// SPDX-FileCopyrightText: Copyright (c) 2016-2025, CloudZero, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package types defines the core interfaces and data structures for the signal store.
//
// This package serves as the foundation for the storage architecture by providing:
//
//   - Storage interfaces: the StorageContext contract shared by every backend
//   - Data models: the Entity descriptor model and the Signal domain entity
//   - Error types: DataAccessError and FormatError, used by every backend
//
// Storage abstraction hierarchy:
//   - Persister/Retriever/Lister: single-operation interfaces
//   - Journal: the audit and trace side channels
//   - StorageContext: the complete contract combining all of the above
//
// Usage patterns:
//   Implementations in app/storage/ provide concrete backends (text files, binary
//   files, sqlite) that implement these interfaces, allowing the domain layer to
//   work with any of them through the repository package.
package types

import (
	"context"
)

//go:generate mockgen -destination=mocks/storage_context_mock.go -package=mocks . StorageContext

// StorageContext is the storage backend for one logical dataset (for example
// "acquired signals" or "processed signals").
//
// Each entity is stored under exactly one id. Persist replaces any previous
// record for the same id atomically from the caller's point of view. At most one
// writer per id is assumed; implementations that can enforce this do so with
// advisory per-id locks.
type StorageContext interface {
	Persister
	Retriever
	Lister
	Journal

	// Kind returns the factory kind that created this context.
	Kind() string

	// Close releases resources held by the context.
	Close() error
}

// Persister stores an entity under an id.
type Persister interface {
	// Persist serializes entity and stores it under id, replacing any previous
	// record. Failures are reported as *DataAccessError.
	Persist(ctx context.Context, entity Entity, id string) error
}

// Retriever reads an entity back.
type Retriever interface {
	// Retrieve fills template with the record stored under id. An unknown id
	// fails with a *DataAccessError whose FileExists is false.
	//
	// The returned report lists the tokens that could not be applied; in lenient
	// mode a partial reconstruction is not an error.
	Retrieve(ctx context.Context, template Entity, id string) (DecodeReport, error)
}

// Lister enumerates stored ids.
type Lister interface {
	// List returns the ids currently present. Every call re-reads the backend;
	// no ordering is guaranteed.
	List(ctx context.Context) ([]string, error)
}

// Journal is the append-only observability side channel of a context. Failures
// are never returned.
type Journal interface {
	Audit(ctx context.Context, subject, message string)
	Trace(ctx context.Context, subject, action, message string)
}
