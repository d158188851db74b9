// SPDX-FileCopyrightText: Copyright (c) 2016-2025, CloudZero, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package lock_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudzero/signal-store/app/utils/lock"
)

func TestUnit_Lock_AcquireRelease(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".7.lock")
	l := lock.NewFileLock(path)

	require.NoError(t, l.Acquire(context.Background()))
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var content map[string]any
	require.NoError(t, json.Unmarshal(data, &content))
	assert.EqualValues(t, os.Getpid(), content["pid"])

	require.NoError(t, l.Release())
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	// releasing twice is harmless
	assert.NoError(t, l.Release())
}

func TestUnit_Lock_Contention(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".7.lock")
	holder := lock.NewFileLock(path)
	require.NoError(t, holder.Acquire(context.Background()))
	defer holder.Release()

	contender := lock.NewFileLock(path, lock.WithMaxRetry(2), lock.WithRetryInterval(time.Millisecond))
	err := contender.Acquire(context.Background())
	assert.ErrorIs(t, err, lock.ErrMaxRetryExceeded)
}

func TestUnit_Lock_StaleLockIsTakenOver(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".7.lock")
	stale, err := json.Marshal(map[string]any{
		"hostname":  "gone",
		"pid":       1,
		"timestamp": time.Now().Add(-time.Hour),
	})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, stale, 0o644))

	l := lock.NewFileLock(path, lock.WithStaleTimeout(time.Second), lock.WithMaxRetry(0))
	require.NoError(t, l.Acquire(context.Background()))
	require.NoError(t, l.Release())
}

func TestUnit_Lock_ContextCancelled(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".7.lock")
	holder := lock.NewFileLock(path)
	require.NoError(t, holder.Acquire(context.Background()))
	defer holder.Release()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := lock.NewFileLock(path, lock.WithNoMaxRetry()).Acquire(ctx)
	assert.ErrorIs(t, err, lock.ErrLockContextCancelled)
}

func TestUnit_Lock_RefreshKeepsLockFresh(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".7.lock")
	holder := lock.NewFileLock(path,
		lock.WithRefreshInterval(10*time.Millisecond),
	)
	require.NoError(t, holder.Acquire(context.Background()))
	defer holder.Release()

	time.Sleep(150 * time.Millisecond)

	// the holder keeps refreshing, so a contender with a short stale timeout
	// still sees a live lock
	contender := lock.NewFileLock(path,
		lock.WithStaleTimeout(100*time.Millisecond),
		lock.WithMaxRetry(0),
	)
	assert.ErrorIs(t, contender.Acquire(context.Background()), lock.ErrMaxRetryExceeded)
}

func TestUnit_Lock_MissingDirectory(t *testing.T) {
	l := lock.NewFileLock(filepath.Join(t.TempDir(), "missing", ".7.lock"))
	assert.ErrorIs(t, l.Acquire(context.Background()), lock.ErrLockAcquire)
}

func TestUnit_Lock_Keyed(t *testing.T) {
	dir := t.TempDir()
	k := lock.NewKeyed(dir, lock.WithRetryInterval(time.Millisecond), lock.WithNoMaxRetry())
	assert.Equal(t, filepath.Join(dir, ".abc.lock"), k.PathFor("abc"))

	var (
		wg     sync.WaitGroup
		inside atomic.Int32
		peak   atomic.Int32
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l, err := k.Lock(context.Background(), "abc")
			if !assert.NoError(t, err) {
				return
			}
			n := inside.Add(1)
			if n > peak.Load() {
				peak.Store(n)
			}
			time.Sleep(2 * time.Millisecond)
			inside.Add(-1)
			assert.NoError(t, l.Release())
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), peak.Load())

	// different keys do not contend
	a, err := k.Lock(context.Background(), "a")
	require.NoError(t, err)
	b, err := k.Lock(context.Background(), "b")
	require.NoError(t, err)
	require.NoError(t, a.Release())
	require.NoError(t, b.Release())
}
