// SPDX-FileCopyrightText: Copyright (c) 2016-2025, CloudZero, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package factory selects a storage context implementation by kind name.
//
// Kinds:
//   - "archivo": text records, disk.TextContext
//   - "pickle":  binary records, disk.BinaryContext
//   - "sqlite":  text records in a SQLite database, sqlite.Context
//
// Create is permissive and returns nil for a kind it does not know, leaving
// the failure to the first use (repository.New reports it). Open returns the
// configuration error right away.
package factory

import (
	"fmt"
	"sort"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/cloudzero/signal-store/app/storage/disk"
	"github.com/cloudzero/signal-store/app/storage/sqlite"
	"github.com/cloudzero/signal-store/app/types"
	"github.com/cloudzero/signal-store/app/utils/lock"
)

type config struct {
	logger      *zerolog.Logger
	strict      bool
	compression int
	snappy      bool
	lockOpts    []lock.Option
	noLocking   bool
}

// Option configures the contexts built by Create and Open. Options that do
// not apply to a kind are ignored by it.
type Option func(c *config)

// WithLogger sets the fallback logger of the context.
func WithLogger(logger *zerolog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithStrictDecoding makes text-record contexts fail on skipped tokens.
func WithStrictDecoding(strict bool) Option {
	return func(c *config) {
		c.strict = strict
	}
}

// WithCompressionLevel sets the brotli level of binary records.
func WithCompressionLevel(level int) Option {
	return func(c *config) {
		c.compression = level
	}
}

// WithSnappyCompression snappy-compresses binary records.
func WithSnappyCompression() Option {
	return func(c *config) {
		c.snappy = true
	}
}

// WithLockOptions configures the per-id writer locks of file contexts.
func WithLockOptions(opts ...lock.Option) Option {
	return func(c *config) {
		c.lockOpts = append(c.lockOpts, opts...)
	}
}

// WithoutLocking disables the per-id writer locks of file contexts.
func WithoutLocking() Option {
	return func(c *config) {
		c.noLocking = true
	}
}

type builder func(resourcePath string, c *config) (types.StorageContext, error)

var builders = map[string]builder{
	disk.TextKind: func(resourcePath string, c *config) (types.StorageContext, error) {
		return disk.NewTextContext(resourcePath, c.diskOptions()...), nil
	},
	disk.BinaryKind: func(resourcePath string, c *config) (types.StorageContext, error) {
		return disk.NewBinaryContext(resourcePath, c.diskOptions()...)
	},
	sqlite.Kind: func(resourcePath string, c *config) (types.StorageContext, error) {
		return sqlite.NewContext(resourcePath, c.sqliteOptions()...)
	},
}

// Kinds returns the supported kind names, sorted.
func Kinds() []string {
	kinds := make([]string, 0, len(builders))
	for k := range builders {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

// Open returns the context of kind over resourcePath, or
// types.ErrUnknownContextKind for an unsupported kind.
func Open(kind, resourcePath string, opts ...Option) (types.StorageContext, error) {
	build, ok := builders[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q (supported: %v)", types.ErrUnknownContextKind, kind, Kinds())
	}

	c := &config{compression: disk.NoCompression}
	for _, opt := range opts {
		opt(c)
	}

	sc, err := build(resourcePath, c)
	if err != nil {
		return nil, err
	}
	return sc, nil
}

// Create is the permissive variant of Open: it returns nil, after logging the
// reason, when the kind is unknown or the context cannot be opened.
func Create(kind, resourcePath string, opts ...Option) types.StorageContext {
	sc, err := Open(kind, resourcePath, opts...)
	if err != nil {
		log.Warn().Err(err).Str("kind", kind).Str("path", resourcePath).Msg("no storage context created")
		return nil
	}
	return sc
}

func (c *config) diskOptions() []disk.Option {
	opts := []disk.Option{disk.WithCompressionLevel(c.compression)}
	if c.snappy {
		opts = append(opts, disk.WithSnappyCompression())
	}
	if c.logger != nil {
		opts = append(opts, disk.WithLogger(c.logger))
	}
	if c.strict {
		opts = append(opts, disk.WithStrictDecoding())
	}
	if c.noLocking {
		opts = append(opts, disk.WithoutLocking())
	}
	if len(c.lockOpts) > 0 {
		opts = append(opts, disk.WithLockOptions(c.lockOpts...))
	}
	return opts
}

func (c *config) sqliteOptions() []sqlite.Option {
	var opts []sqlite.Option
	if c.logger != nil {
		opts = append(opts, sqlite.WithLogger(c.logger))
	}
	if c.strict {
		opts = append(opts, sqlite.WithStrictDecoding())
	}
	return opts
}
