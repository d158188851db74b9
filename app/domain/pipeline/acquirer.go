// SPDX-FileCopyrightText: Copyright (c) 2016-2025, CloudZero, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package pipeline

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/cloudzero/signal-store/app/types"
)

// Request describes the signal being acquired. Only the samples come from the
// input; everything else is taken from the request.
type Request struct {
	// ID of the new signal. A random id is generated when empty.
	ID         string
	Comment    string
	SampleRate float64
	Source     types.Source
}

// AcquirerOption configures an Acquirer.
type AcquirerOption func(a *Acquirer)

// WithClock sets the clock used for AcquiredAt.
func WithClock(now func() time.Time) AcquirerOption {
	return func(a *Acquirer) {
		a.now = now
	}
}

// WithIDGenerator sets the generator of ids for requests without one.
func WithIDGenerator(newID func() string) AcquirerOption {
	return func(a *Acquirer) {
		a.newID = newID
	}
}

// Acquirer turns raw sample files into signals.
type Acquirer struct {
	now   func() time.Time
	newID func() string
}

// NewAcquirer creates an Acquirer.
func NewAcquirer(opts ...AcquirerOption) *Acquirer {
	a := &Acquirer{
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// AcquireFile reads the samples of the file at path.
func (a *Acquirer) AcquireFile(ctx context.Context, path string, req Request) (*types.Signal, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open samples: %w", err)
	}
	defer f.Close()

	if req.Comment == "" {
		req.Comment = "acquired from " + sanitizeComment(path)
	}
	return a.Acquire(ctx, f, req)
}

// Acquire reads whitespace separated numbers from r into a new signal.
func (a *Acquirer) Acquire(ctx context.Context, r io.Reader, req Request) (*types.Signal, error) {
	scanner := bufio.NewScanner(r)
	scanner.Split(bufio.ScanWords)

	var values []float64
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		v, err := strconv.ParseFloat(scanner.Text(), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: sample %d: %q is not a number", types.ErrInvalidData, len(values)+1, scanner.Text())
		}
		values = append(values, v)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read samples: %w", err)
	}

	id := req.ID
	if id == "" {
		id = a.newID()
	}

	signal := &types.Signal{
		ID:          id,
		Comment:     sanitizeComment(req.Comment),
		AcquiredAt:  a.now().UTC().Truncate(time.Second),
		SampleRate:  req.SampleRate,
		SampleCount: len(values),
		Source:      req.Source,
		Values:      values,
	}

	log.Ctx(ctx).Debug().
		Str("id", id).
		Int("samples", len(values)).
		Msg("acquired signal")
	return signal, nil
}
