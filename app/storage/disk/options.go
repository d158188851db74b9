// SPDX-FileCopyrightText: Copyright (c) 2016-2025, CloudZero, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package disk

import (
	"github.com/andybalholm/brotli"
	"github.com/rs/zerolog"

	"github.com/cloudzero/signal-store/app/storage/mapper"
	"github.com/cloudzero/signal-store/app/utils/lock"
)

// NoCompression disables compression of binary records.
const NoCompression = -1

type options struct {
	logger      *zerolog.Logger
	registry    *mapper.Registry
	strict      bool
	compression int
	snappy      bool
	locking     bool
	lockOpts    []lock.Option
}

func defaultOptions() *options {
	return &options{
		registry:    mapper.DefaultRegistry,
		compression: NoCompression,
		locking:     true,
	}
}

// Option configures a disk storage context.
type Option func(o *options)

// WithLogger sets the logger used when the operation context carries none.
func WithLogger(logger *zerolog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithRegistry sets the type registry of the text context's mapper.
func WithRegistry(r *mapper.Registry) Option {
	return func(o *options) {
		o.registry = r
	}
}

// WithStrictDecoding makes the text context fail Retrieve with a
// *types.FormatError when a record has tokens that cannot be applied.
func WithStrictDecoding() Option {
	return func(o *options) {
		o.strict = true
	}
}

// WithCompressionLevel brotli-compresses binary records at level, from
// brotli.BestSpeed to brotli.BestCompression. NoCompression turns it off.
// The text context ignores it.
func WithCompressionLevel(level int) Option {
	return func(o *options) {
		o.snappy = false
		switch {
		case level == NoCompression:
			o.compression = NoCompression
		case level < brotli.BestSpeed:
			o.compression = brotli.BestSpeed
		case level > brotli.BestCompression:
			o.compression = brotli.BestCompression
		default:
			o.compression = level
		}
	}
}

// WithSnappyCompression snappy-compresses binary records instead. It replaces
// an earlier WithCompressionLevel, and a later one replaces it.
func WithSnappyCompression() Option {
	return func(o *options) {
		o.snappy = true
		o.compression = NoCompression
	}
}

// WithLockOptions configures the per-id writer locks.
func WithLockOptions(opts ...lock.Option) Option {
	return func(o *options) {
		o.lockOpts = append(o.lockOpts, opts...)
	}
}

// WithoutLocking disables the per-id writer locks. Persist is then only safe
// when the caller guarantees a single writer per id.
func WithoutLocking() Option {
	return func(o *options) {
		o.locking = false
	}
}
