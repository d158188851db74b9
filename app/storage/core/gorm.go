// SPDX-FileCopyrightText: Copyright (c) 2016-2025, CloudZero, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package core

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// NewDriver creates a standardized GORM database instance for the database-backed
// storage contexts.
//
// Applied configurations:
//   - SingularTable: Uses singular table names ("record" not "records")
//   - NowFunc: UTC timestamps with millisecond precision for consistency
//   - Logger: Structured logging through the zerolog adapter
//   - TranslateError: Dialect errors surface as gorm sentinels, which
//     TranslateError maps onward to the types package
//
// Usage:
//   db, err := NewDriver(sqlite.Open("records.sqlite"))
func NewDriver(dialector gorm.Dialector) (*gorm.DB, error) {
	return gorm.Open(dialector, &gorm.Config{
		NamingStrategy: schema.NamingStrategy{
			SingularTable: true,
		},
		NowFunc:        DatabaseNow, // For timestamps, use UTC, truncated to milliseconds
		Logger:         &ZeroLogAdapter{},
		TranslateError: true,
	})
}

// DatabaseNow returns the current time in UTC, truncated to millisecond precision.
// It is used by GORM for all created_at and updated_at fields.
func DatabaseNow() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}
