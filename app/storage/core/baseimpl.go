// SPDX-FileCopyrightText: Copyright (c) 2016-2025, CloudZero, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package core

import (
	"context"

	"github.com/ccoveille/go-safecast"
	"gorm.io/gorm"
)

// RawBaseRepoImpl provides context-aware database access for the database-backed
// storage contexts. Operations performed with a context returned by Tx
// participate in that transaction.
//
// Usage:
//   type Context struct {
//       core.BaseRepoImpl
//   }
//
//   func (c *Context) lookup(ctx context.Context, id string) error {
//       return c.DB(ctx).Where("id = ?", id).First(&rec).Error
//   }
type RawBaseRepoImpl struct {
	db *gorm.DB
}

// NewRawBaseRepoImpl creates a new RawBaseRepoImpl over db.
func NewRawBaseRepoImpl(db *gorm.DB) RawBaseRepoImpl {
	return RawBaseRepoImpl{
		db: db,
	}
}

// DB returns the transaction carried by ctx if any, the default connection
// otherwise. The context is always applied for cancellation.
func (b *RawBaseRepoImpl) DB(ctx context.Context) *gorm.DB {
	if tx, found := FromContext(ctx); found {
		return tx.WithContext(ctx)
	}

	return b.db.WithContext(ctx)
}

// Tx executes block within a database transaction. The transaction commits when
// block returns nil and rolls back otherwise.
func (b *RawBaseRepoImpl) Tx(ctx context.Context, block func(ctxTx context.Context) error) error {
	db := b.DB(ctx)
	err := db.Transaction(func(tx *gorm.DB) error {
		ctxTx := NewContext(ctx, tx)
		return block(ctxTx)
	})
	return err
}

// Close closes the underlying connection pool.
func (b *RawBaseRepoImpl) Close() error {
	sqlDB, err := b.db.DB()
	if err != nil {
		return TranslateError(err)
	}
	return sqlDB.Close()
}

// BaseRepoImpl extends RawBaseRepoImpl with operations on a single model table.
type BaseRepoImpl struct {
	RawBaseRepoImpl
	model interface{}
}

// NewBaseRepoImpl creates a new BaseRepoImpl for the table of model.
func NewBaseRepoImpl(db *gorm.DB, model interface{}) BaseRepoImpl {
	return BaseRepoImpl{
		RawBaseRepoImpl: NewRawBaseRepoImpl(db),
		model:           model,
	}
}

// Count returns the number of rows in the model's table matching the optional
// query and args.
func (b *BaseRepoImpl) Count(ctx context.Context, query ...interface{}) (int, error) {
	var count int64
	db := b.DB(ctx).Model(b.model)
	if len(query) > 0 {
		db = db.Where(query[0], query[1:]...)
	}
	if err := db.Count(&count).Error; err != nil {
		return 0, TranslateError(err)
	}
	return safecast.Convert[int](count)
}

// key is an unexported type for context keys defined in this package.
type key int

// dbKey is the context key for storing *gorm.DB transaction instances.
var dbKey key

// NewContext returns a context carrying the database transaction db.
func NewContext(ctx context.Context, db *gorm.DB) context.Context {
	return context.WithValue(ctx, dbKey, db)
}

// FromContext retrieves the database transaction from the context, if present.
func FromContext(ctx context.Context) (*gorm.DB, bool) {
	db, ok := ctx.Value(dbKey).(*gorm.DB)
	return db, ok
}
