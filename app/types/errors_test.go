// SPDX-FileCopyrightText: Copyright (c) 2016-2025, CloudZero, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package types_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cloudzero/signal-store/app/types"
)

func TestUnit_Types_DataAccessError(t *testing.T) {
	err := &types.DataAccessError{
		Path:       "/data/acquired/7.dat",
		Operation:  "retrieve",
		FileExists: false,
		Err:        types.ErrNotFound,
	}

	assert.Equal(t, "retrieve /data/acquired/7.dat: record not found (exists=false, retryable=false)", err.Error())
	assert.ErrorIs(t, fmt.Errorf("fetch: %w", err), types.ErrNotFound)
	assert.False(t, types.IsRetryable(err))

	err.Retryable = true
	assert.True(t, types.IsRetryable(fmt.Errorf("wrapped: %w", err)))
	assert.False(t, types.IsRetryable(errors.New("plain")))
}

func TestUnit_Types_FormatError(t *testing.T) {
	report := types.DecodeReport{Skipped: []types.SkippedToken{
		{Line: 1, Token: "garbage", Reason: "missing ':' separator"},
		{Line: 2, Token: "x:1", Reason: `unknown field "x"`},
	}}
	assert.True(t, report.Partial())
	assert.Equal(t, 2, report.SkippedCount())
	assert.False(t, types.DecodeReport{}.Partial())

	err := &types.FormatError{Report: report}
	assert.Contains(t, err.Error(), "2 tokens skipped")
	assert.Contains(t, err.Error(), `line 1: "garbage": missing ':' separator`)
	assert.Nil(t, errors.Unwrap(err))

	wrapped := &types.FormatError{Err: fmt.Errorf("%w: comma", types.ErrUnsupportedValue)}
	assert.ErrorIs(t, wrapped, types.ErrUnsupportedValue)
	assert.Equal(t, "malformed record: value cannot be represented in the record format: comma", wrapped.Error())
}
