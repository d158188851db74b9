// SPDX-FileCopyrightText: Copyright (c) 2016-2025, CloudZero, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package core

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ZeroLogAdapter routes GORM's logging through the zerolog logger carried by the
// query context (see zerolog.Ctx). Queries without a logger in their context
// are discarded unless zerolog.DefaultContextLogger is set.
type ZeroLogAdapter struct{}

var _ logger.Interface = ZeroLogAdapter{}

// LogMode is a no-op: levels are controlled by the zerolog logger.
func (l ZeroLogAdapter) LogMode(logger.LogLevel) logger.Interface {
	return l
}

func (l ZeroLogAdapter) Info(ctx context.Context, msg string, args ...interface{}) {
	zerolog.Ctx(ctx).Info().Msgf(msg, args...)
}

func (l ZeroLogAdapter) Warn(ctx context.Context, msg string, args ...interface{}) {
	zerolog.Ctx(ctx).Warn().Msgf(msg, args...)
}

func (l ZeroLogAdapter) Error(ctx context.Context, msg string, args ...interface{}) {
	zerolog.Ctx(ctx).Error().Msgf(msg, args...)
}

// Trace logs one entry per executed statement. Missing records are logged at
// debug level since they are an expected outcome of lookups.
func (l ZeroLogAdapter) Trace(ctx context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	zl := zerolog.Ctx(ctx)

	var event *zerolog.Event
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		event = zl.Error().Err(err)
	} else {
		event = zl.Debug()
	}
	if !event.Enabled() {
		return
	}

	sql, rows := fc()
	event.
		Str("sql", sql).
		Int64("rows", rows).
		Dur("elapsed", time.Since(begin)).
		Msg("query")
}
