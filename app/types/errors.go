// SPDX-FileCopyrightText: Copyright (c) 2016-2025, CloudZero, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package types

import (
	"errors"
	"fmt"
	"strings"
)

// Application-level errors returned by storage implementations. Backend specific
// errors (gorm, os) are translated to these before leaving the storage layer.
var (
	ErrNotFound           = errors.New("record not found")
	ErrDuplicateKey       = errors.New("duplicate key")
	ErrInvalidTransaction = errors.New("invalid transaction")
	ErrInvalidData        = errors.New("invalid data")
	ErrInvalidDB          = errors.New("invalid database")
	ErrInvalidID          = errors.New("invalid entity id")
	ErrLockContention     = errors.New("entity is locked by another writer")
	ErrUnsupportedValue   = errors.New("value cannot be represented in the record format")

	// ErrUnknownContextKind is returned when a storage context is requested for a
	// kind no implementation handles.
	ErrUnknownContextKind = errors.New("unknown storage context kind")
	// ErrContextNotConfigured is returned when a repository is used without a
	// storage context, typically because the factory returned none.
	ErrContextNotConfigured = errors.New("storage context not configured")
)

// DataAccessError reports a failed storage operation on a single resource.
//
// It never exposes the platform error type directly: the cause is available via
// Unwrap, and is one of the sentinels above or a translated error.
type DataAccessError struct {
	Path       string
	Operation  string
	FileExists bool
	Retryable  bool
	Err        error
}

func (e *DataAccessError) Error() string {
	return fmt.Sprintf("%s %s: %v (exists=%t, retryable=%t)", e.Operation, e.Path, e.Err, e.FileExists, e.Retryable)
}

// Unwrap returns the underlying error
func (e *DataAccessError) Unwrap() error {
	return e.Err
}

// IsRetryable reports whether err is a DataAccessError flagged as transient.
func IsRetryable(err error) bool {
	var dae *DataAccessError
	if errors.As(err, &dae) {
		return dae.Retryable
	}
	return false
}

// SkippedToken is one piece of a serialized record the decoder could not apply.
type SkippedToken struct {
	Line   int
	Token  string
	Reason string
}

func (s SkippedToken) String() string {
	return fmt.Sprintf("line %d: %q: %s", s.Line, s.Token, s.Reason)
}

// DecodeReport describes how completely a record was reconstructed.
type DecodeReport struct {
	Skipped []SkippedToken
}

// Partial reports whether any token was skipped.
func (r DecodeReport) Partial() bool {
	return len(r.Skipped) > 0
}

// SkippedCount returns the number of skipped tokens.
func (r DecodeReport) SkippedCount() int {
	return len(r.Skipped)
}

// FormatError reports a malformed or unrepresentable record.
type FormatError struct {
	Report DecodeReport
	Err    error
}

func (e *FormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed record: %v", e.Err)
	}
	parts := make([]string, 0, len(e.Report.Skipped))
	for _, s := range e.Report.Skipped {
		parts = append(parts, s.String())
	}
	return fmt.Sprintf("malformed record: %d tokens skipped (%s)", len(e.Report.Skipped), strings.Join(parts, "; "))
}

// Unwrap returns the underlying error
func (e *FormatError) Unwrap() error {
	return e.Err
}
