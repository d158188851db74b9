// SPDX-FileCopyrightText: Copyright (c) 2016-2025, CloudZero, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package lock

import (
	"context"
	"path/filepath"
)

// Keyed hands out one FileLock per key, stored as hidden files in a directory.
type Keyed struct {
	dir  string
	opts []Option
}

// NewKeyed creates a Keyed lock set rooted at dir. The options apply to every
// lock it creates.
func NewKeyed(dir string, opts ...Option) *Keyed {
	return &Keyed{dir: dir, opts: opts}
}

// PathFor returns the lock file path of key.
func (k *Keyed) PathFor(key string) string {
	return filepath.Join(k.dir, "."+key+".lock")
}

// Lock acquires the lock of key. The caller must Release the returned lock.
func (k *Keyed) Lock(ctx context.Context, key string) (*FileLock, error) {
	fl := NewFileLock(k.PathFor(key), k.opts...)
	if err := fl.Acquire(ctx); err != nil {
		return nil, err
	}
	return fl, nil
}
