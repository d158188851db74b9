// SPDX-FileCopyrightText: Copyright (c) 2016-2025, CloudZero, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package disk

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/andybalholm/brotli"
	"github.com/fxamacker/cbor/v2"
	"github.com/golang/snappy"

	"github.com/cloudzero/signal-store/app/types"
)

const (
	// BinaryKind is the factory kind of BinaryContext.
	BinaryKind = "pickle"
	// BinaryExtension is the record file extension of BinaryContext.
	BinaryExtension = ".bin"
)

// Leading byte of a binary record, naming how the CBOR body is stored.
const (
	codecCBOR       byte = 'c'
	codecBrotliCBOR byte = 'b'
	codecSnappyCBOR byte = 's'
)

// BinaryContext stores entities as CBOR documents in {base}/{id}.bin.
//
// Records are the encoding of the entity's Go value, not of its schema, so
// they can only be read back into the same Go type. Time values are encoded as
// RFC 3339 strings with nanoseconds.
type BinaryContext struct {
	*fileStore
	enc         cbor.EncMode
	dec         cbor.DecMode
	compression int
	snappy      bool
}

var _ types.StorageContext = (*BinaryContext)(nil)

// NewBinaryContext creates a binary context over base.
func NewBinaryContext(base string, opts ...Option) (*BinaryContext, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	enc, err := cbor.EncOptions{
		Time:    cbor.TimeRFC3339Nano,
		TimeTag: cbor.EncTagRequired,
		Sort:    cbor.SortCanonical,
	}.EncMode()
	if err != nil {
		return nil, fmt.Errorf("failed to build cbor encoder: %w", err)
	}
	dec, err := cbor.DecOptions{}.DecMode()
	if err != nil {
		return nil, fmt.Errorf("failed to build cbor decoder: %w", err)
	}

	return &BinaryContext{
		fileStore:   newFileStore(BinaryKind, base, BinaryExtension, o),
		enc:         enc,
		dec:         dec,
		compression: o.compression,
		snappy:      o.snappy,
	}, nil
}

// Persist implements types.Persister.
func (c *BinaryContext) Persist(ctx context.Context, entity types.Entity, id string) error {
	return c.persist(ctx, id, func() ([]byte, error) {
		return c.encode(entity)
	})
}

// Retrieve implements types.Retriever. Binary records are either decoded
// completely or not at all, so the report is always empty.
func (c *BinaryContext) Retrieve(ctx context.Context, template types.Entity, id string) (types.DecodeReport, error) {
	return c.retrieve(ctx, id, func(data []byte) (types.DecodeReport, error) {
		return types.DecodeReport{}, c.decode(data, template)
	})
}

func (c *BinaryContext) encode(entity types.Entity) ([]byte, error) {
	body, err := c.enc.Marshal(entity)
	if err != nil {
		return nil, &types.FormatError{Err: fmt.Errorf("%w: %w", types.ErrUnsupportedValue, err)}
	}

	switch {
	case c.snappy:
		return append([]byte{codecSnappyCBOR}, snappy.Encode(nil, body)...), nil
	case c.compression == NoCompression:
		return append([]byte{codecCBOR}, body...), nil
	}

	var buf bytes.Buffer
	buf.WriteByte(codecBrotliCBOR)
	w := brotli.NewWriterLevel(&buf, c.compression)
	if _, err := w.Write(body); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (c *BinaryContext) decode(data []byte, template types.Entity) error {
	if len(data) == 0 {
		return &types.FormatError{Err: fmt.Errorf("%w: empty record", types.ErrInvalidData)}
	}

	body := data[1:]
	switch data[0] {
	case codecCBOR:
	case codecBrotliCBOR:
		raw, err := io.ReadAll(brotli.NewReader(bytes.NewReader(body)))
		if err != nil {
			return &types.FormatError{Err: fmt.Errorf("%w: %w", types.ErrInvalidData, err)}
		}
		body = raw
	case codecSnappyCBOR:
		raw, err := snappy.Decode(nil, body)
		if err != nil {
			return &types.FormatError{Err: fmt.Errorf("%w: %w", types.ErrInvalidData, err)}
		}
		body = raw
	default:
		return &types.FormatError{Err: fmt.Errorf("%w: unknown record codec %#x", types.ErrInvalidData, data[0])}
	}

	if err := types.ResetCollections(template); err != nil {
		return err
	}
	if err := c.dec.Unmarshal(body, template); err != nil {
		return &types.FormatError{Err: fmt.Errorf("%w: %w", types.ErrInvalidData, err)}
	}
	return nil
}
