// SPDX-FileCopyrightText: Copyright (c) 2016-2025, CloudZero, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package core provides error translation utilities that map backend-specific errors
// (GORM and operating system I/O errors) to application-level error types for
// consistent error handling across every storage context.
//
// Error translation ensures that:
//   - Storage contexts return consistent error types
//   - Repositories and domain code never depend on os or gorm error types
//   - Retry decisions are made once, where the platform error is still visible
//
// Usage:
//   err := db.First(&rec, id).Error
//   return core.TranslateError(err)  // Returns types.ErrNotFound instead of gorm.ErrRecordNotFound
//
//   if _, err := os.ReadFile(path); err != nil {
//       return core.AccessError("retrieve", path, err)
//   }
package core

import (
	"errors"
	"io/fs"
	"syscall"

	"gorm.io/gorm"

	"github.com/cloudzero/signal-store/app/types"
)

// TranslateError converts GORM-specific database errors to application-level error types.
//
// Behavior:
//   - Returns nil if input error is nil
//   - Maps known GORM errors to types package error constants
//   - Returns original error unchanged if no mapping is available
func TranslateError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return types.ErrNotFound
	}

	switch {
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return types.ErrDuplicateKey
	case errors.Is(err, gorm.ErrInvalidTransaction):
		return types.ErrInvalidTransaction
	case errors.Is(err, gorm.ErrInvalidData), errors.Is(err, gorm.ErrInvalidValue), errors.Is(err, gorm.ErrInvalidField):
		return types.ErrInvalidData
	case errors.Is(err, gorm.ErrInvalidDB):
		return types.ErrInvalidDB
	}
	return err
}

// AccessError wraps a failed storage operation on path into a *types.DataAccessError.
//
// The platform error is kept as the cause but classified first, so callers only
// ever see the taxonomy:
//   - not found: FileExists=false, not retryable, cause types.ErrNotFound
//   - not a directory while retrieving: treated as not found
//   - permission, disk full, busy, interrupted, lock contention: retryable
//   - invalid path, not a directory, name too long and anything else: not retryable
//
// A nil err returns nil. An err that is already a *types.DataAccessError is
// returned unchanged.
func AccessError(operation, path string, err error) error {
	if err == nil {
		return nil
	}

	var existing *types.DataAccessError
	if errors.As(err, &existing) {
		return existing
	}

	dae := &types.DataAccessError{
		Path:       path,
		Operation:  operation,
		FileExists: true,
		Err:        err,
	}

	switch {
	case errors.Is(err, fs.ErrNotExist), errors.Is(err, types.ErrNotFound):
		dae.FileExists = false
		dae.Err = types.ErrNotFound
	case operation == "retrieve" && errors.Is(err, syscall.ENOTDIR):
		// a path component is a regular file, so the record cannot exist
		dae.FileExists = false
		dae.Err = types.ErrNotFound
	case errors.Is(err, types.ErrInvalidID):
		dae.FileExists = false
	default:
		dae.Retryable = IsTransient(err)
	}
	return dae
}

// IsTransient reports whether an I/O error is worth retrying.
func IsTransient(err error) bool {
	switch {
	case errors.Is(err, types.ErrLockContention):
		return true
	case errors.Is(err, fs.ErrPermission):
		return true
	case errors.Is(err, syscall.ENOSPC),
		errors.Is(err, syscall.EAGAIN),
		errors.Is(err, syscall.EBUSY),
		errors.Is(err, syscall.EINTR):
		return true
	}
	return false
}
