// SPDX-FileCopyrightText: Copyright (c) 2016-2025, CloudZero, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package disk

import (
	"context"

	"github.com/cloudzero/signal-store/app/storage/mapper"
	"github.com/cloudzero/signal-store/app/types"
)

const (
	// TextKind is the factory kind of TextContext.
	TextKind = "archivo"
	// TextExtension is the record file extension of TextContext.
	TextExtension = ".dat"
)

// TextContext stores entities as mapper records in {base}/{id}.dat.
type TextContext struct {
	*fileStore
	mapper *mapper.Mapper
}

var _ types.StorageContext = (*TextContext)(nil)

// NewTextContext creates a text context over base. The directory is created on
// the first Persist.
func NewTextContext(base string, opts ...Option) *TextContext {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	mopts := []mapper.Option{mapper.WithRegistry(o.registry)}
	if o.strict {
		mopts = append(mopts, mapper.WithStrict())
	}

	return &TextContext{
		fileStore: newFileStore(TextKind, base, TextExtension, o),
		mapper:    mapper.New(mopts...),
	}
}

// Persist implements types.Persister.
func (c *TextContext) Persist(ctx context.Context, entity types.Entity, id string) error {
	return c.persist(ctx, id, func() ([]byte, error) {
		text, err := c.mapper.Marshal(entity)
		if err != nil {
			return nil, err
		}
		return []byte(text), nil
	})
}

// Retrieve implements types.Retriever. The template is filled in place; in
// lenient mode tokens that cannot be applied are only listed in the report.
func (c *TextContext) Retrieve(ctx context.Context, template types.Entity, id string) (types.DecodeReport, error) {
	return c.retrieve(ctx, id, func(data []byte) (types.DecodeReport, error) {
		return c.mapper.Unmarshal(template, string(data))
	})
}
