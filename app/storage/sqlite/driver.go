// SPDX-FileCopyrightText: Copyright (c) 2016-2025, CloudZero, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package sqlite provides the SQLite backed storage context and the driver
// setup it shares with tests.
//
// Every dataset directory holds its own database file. Records keep the text
// format of the mapper, so a dataset can be moved between the text and the
// sqlite context without conversion.
package sqlite

import (
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/cloudzero/signal-store/app/storage/core"
)

const (
	// InMemoryDSN configures an in-memory SQLite database that exists only in RAM.
	// Each connection gets its own isolated database instance.
	InMemoryDSN = ":memory:"

	// MemorySharedCached configures a shared in-memory SQLite database.
	// Multiple connections can access the same database instance through shared cache.
	MemorySharedCached = "file:memory?mode=memory&cache=shared"

	// fileParams make concurrent writers wait for each other instead of failing
	// with SQLITE_BUSY.
	fileParams = "?_busy_timeout=5000&_journal_mode=WAL"
)

// FileDSN returns the DSN of the database file at path.
func FileDSN(path string) string {
	return "file:" + path + fileParams
}

// NewSQLiteDriver creates a GORM database configured through core.NewDriver:
// singular table names, UTC millisecond timestamps, zerolog query logging and
// error translation.
func NewSQLiteDriver(dsn string) (*gorm.DB, error) {
	db, err := core.NewDriver(sqlite.Open(dsn))
	if err != nil {
		return nil, err
	}
	return db, nil
}
