// SPDX-FileCopyrightText: Copyright (c) 2016-2025, CloudZero, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package sqlite

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm/clause"

	"github.com/cloudzero/signal-store/app/storage/core"
	"github.com/cloudzero/signal-store/app/storage/mapper"
	"github.com/cloudzero/signal-store/app/types"
)

const (
	// Kind is the factory kind of Context.
	Kind = "sqlite"
	// DatabaseName is the file name of the database within the base directory.
	DatabaseName = "records.sqlite"
)

// Record is one stored entity.
type Record struct {
	Dataset   string `gorm:"primaryKey"`
	ID        string `gorm:"primaryKey"`
	Body      string `gorm:"not null"`
	UpdatedAt time.Time
}

// Context stores entities as mapper records in {base}/records.sqlite. The
// dataset column is the name of the base directory.
type Context struct {
	core.BaseRepoImpl
	*core.Journal
	dataset string
	dbPath  string
	mapper  *mapper.Mapper
}

var _ types.StorageContext = (*Context)(nil)

type options struct {
	logger   *zerolog.Logger
	registry *mapper.Registry
	strict   bool
}

// Option configures a Context.
type Option func(o *options)

// WithLogger sets the logger used when the operation context carries none.
func WithLogger(logger *zerolog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithRegistry sets the type registry of the mapper.
func WithRegistry(r *mapper.Registry) Option {
	return func(o *options) {
		o.registry = r
	}
}

// WithStrictDecoding makes Retrieve fail with a *types.FormatError when a
// record has tokens that cannot be applied.
func WithStrictDecoding() Option {
	return func(o *options) {
		o.strict = true
	}
}

// NewContext opens, creating if needed, the database of the dataset at base.
func NewContext(base string, opts ...Option) (*Context, error) {
	o := &options{registry: mapper.DefaultRegistry}
	for _, opt := range opts {
		opt(o)
	}

	dbPath := filepath.Join(base, DatabaseName)
	if err := os.MkdirAll(base, 0o755); err != nil {
		return nil, core.AccessError("open", base, err)
	}

	db, err := NewSQLiteDriver(FileDSN(dbPath))
	if err != nil {
		return nil, core.AccessError("open", dbPath, core.TranslateError(err))
	}
	// one connection serializes writers of this process; other processes wait
	// on the busy timeout
	sqlDB, err := db.DB()
	if err != nil {
		return nil, core.AccessError("open", dbPath, core.TranslateError(err))
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&Record{}); err != nil {
		return nil, core.AccessError("open", dbPath, core.TranslateError(err))
	}

	mopts := []mapper.Option{mapper.WithRegistry(o.registry)}
	if o.strict {
		mopts = append(mopts, mapper.WithStrict())
	}

	return &Context{
		BaseRepoImpl: core.NewBaseRepoImpl(db, &Record{}),
		Journal:      core.NewJournal(Kind, base, o.logger),
		dataset:      filepath.Base(filepath.Clean(base)),
		dbPath:       dbPath,
		mapper:       mapper.New(mopts...),
	}, nil
}

// Kind implements types.StorageContext.
func (c *Context) Kind() string {
	return Kind
}

// Dataset returns the dataset name the context reads and writes.
func (c *Context) Dataset() string {
	return c.dataset
}

// Persist implements types.Persister. An existing record of id is replaced.
func (c *Context) Persist(ctx context.Context, entity types.Entity, id string) (err error) {
	begin := time.Now()
	defer func() { c.Finish(ctx, "persist", id, begin, err, "persisted") }()

	if err := core.ValidateID(id); err != nil {
		return core.AccessError("persist", c.dbPath, err)
	}

	body, err := c.mapper.Marshal(entity)
	if err != nil {
		return err
	}

	rec := &Record{Dataset: c.dataset, ID: id, Body: body}
	err = c.DB(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "dataset"}, {Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"body", "updated_at"}),
	}).Create(rec).Error
	if err != nil {
		return core.AccessError("persist", c.dbPath, core.TranslateError(err))
	}
	return nil
}

// Retrieve implements types.Retriever.
func (c *Context) Retrieve(ctx context.Context, template types.Entity, id string) (report types.DecodeReport, err error) {
	begin := time.Now()
	defer func() {
		msg := "retrieved"
		if report.Partial() {
			msg = fmt.Sprintf("retrieved with %d skipped tokens", report.SkippedCount())
		}
		c.Finish(ctx, "retrieve", id, begin, err, msg)
	}()

	if err := core.ValidateID(id); err != nil {
		return report, core.AccessError("retrieve", c.dbPath, err)
	}

	var rec Record
	err = c.DB(ctx).Where("dataset = ? AND id = ?", c.dataset, id).Take(&rec).Error
	if err != nil {
		return report, core.AccessError("retrieve", c.dbPath, core.TranslateError(err))
	}

	return c.mapper.Unmarshal(template, rec.Body)
}

// List implements types.Lister.
func (c *Context) List(ctx context.Context) (ids []string, err error) {
	begin := time.Now()
	defer func() {
		c.Finish(ctx, "list", "*", begin, err, fmt.Sprintf("listed %d ids", len(ids)))
	}()

	ids = []string{}
	err = c.DB(ctx).Model(&Record{}).Where("dataset = ?", c.dataset).Pluck("id", &ids).Error
	if err != nil {
		return nil, core.AccessError("list", c.dbPath, core.TranslateError(err))
	}
	return ids, nil
}
