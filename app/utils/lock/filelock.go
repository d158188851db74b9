// SPDX-FileCopyrightText: Copyright (c) 2016-2025, CloudZero, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package lock provides advisory file locks used to keep a single writer per
// stored entity, across goroutines and across processes sharing a directory.
//
// A lock is a file created with O_EXCL. Its content records the owner and a
// timestamp that a background goroutine refreshes while the lock is held:
//
//	{
//	  "hostname": "worker-node-1",
//	  "pid": 12345,
//	  "timestamp": "2025-03-15T10:30:00Z"
//	}
//
// A lock whose timestamp is older than the stale timeout belongs to a process
// that died without releasing it and is removed by the next contender.
//
// Usage:
//
//	l := lock.NewFileLock("/data/acquired/.7.lock", lock.WithMaxRetry(3))
//	if err := l.Acquire(ctx); err != nil {
//	    return err
//	}
//	defer l.Release()
package lock

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const lockFilePermissions = 0o644

var (
	ErrLockLost             = errors.New("lock lost")
	ErrLockAcquire          = errors.New("failed to acquire lock")
	ErrLockContextCancelled = errors.New("context was cancelled while obtaining the lock")
	ErrLockCorrupt          = errors.New("corrupt lock file")
	ErrMaxRetryExceeded     = errors.New("failed to acquire lock, max retries exceeded")

	// DefaultStaleTimeout is the age after which an unrefreshed lock is abandoned.
	DefaultStaleTimeout = 5 * time.Second
	// DefaultRefreshInterval is how often a held lock proves its owner is alive.
	DefaultRefreshInterval = time.Second
	// DefaultRetryInterval is the wait between acquisition attempts.
	DefaultRetryInterval = 50 * time.Millisecond
	// DefaultMaxRetry is the number of retries after the first attempt.
	DefaultMaxRetry = 40
)

// FileLock is an advisory lock backed by a single file.
//
// A FileLock is safe for use by multiple goroutines, but a single instance
// represents one holder: use one instance per writer.
type FileLock struct {
	path            string
	staleTimeout    time.Duration
	refreshInterval time.Duration
	retryInterval   time.Duration
	maxRetry        int

	hostname string
	pid      int

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// Option configures a FileLock.
type Option func(fl *FileLock)

// WithStaleTimeout sets the age after which a lock may be taken over. It should
// be several times the refresh interval.
func WithStaleTimeout(timeout time.Duration) Option {
	return func(fl *FileLock) {
		fl.staleTimeout = timeout
	}
}

// WithRefreshInterval sets how often the held lock's timestamp is rewritten.
func WithRefreshInterval(interval time.Duration) Option {
	return func(fl *FileLock) {
		fl.refreshInterval = interval
	}
}

// WithRetryInterval sets the wait between acquisition attempts.
func WithRetryInterval(interval time.Duration) Option {
	return func(fl *FileLock) {
		fl.retryInterval = interval
	}
}

// WithMaxRetry sets the number of retries after the first attempt; 0 tries
// exactly once.
func WithMaxRetry(retry int) Option {
	return func(fl *FileLock) {
		fl.maxRetry = retry
	}
}

// WithNoMaxRetry retries until the lock is acquired or the context ends.
func WithNoMaxRetry() Option {
	return func(fl *FileLock) {
		fl.maxRetry = math.MaxInt
	}
}

type lockContent struct {
	Hostname  string    `json:"hostname"`
	PID       int       `json:"pid"`
	Timestamp time.Time `json:"timestamp"`
}

// NewFileLock creates an unacquired lock on path.
func NewFileLock(path string, opts ...Option) *FileLock {
	hostname, _ := os.Hostname()

	fl := &FileLock{
		path:            path,
		staleTimeout:    DefaultStaleTimeout,
		refreshInterval: DefaultRefreshInterval,
		retryInterval:   DefaultRetryInterval,
		maxRetry:        DefaultMaxRetry,
		hostname:        hostname,
		pid:             os.Getpid(),
	}
	for _, opt := range opts {
		opt(fl)
	}
	return fl
}

// Path returns the lock file path.
func (fl *FileLock) Path() string {
	return fl.path
}

// Acquire obtains the lock, removing a stale one if found and retrying while
// another holder has it. The directory of the lock file must exist.
//
// Errors:
//   - ErrMaxRetryExceeded: another holder kept the lock for every attempt
//   - ErrLockContextCancelled: ctx ended while waiting
//   - ErrLockAcquire: the lock file could not be created or inspected
func (fl *FileLock) Acquire(ctx context.Context) error {
	fl.mu.Lock()
	defer fl.mu.Unlock()

	for attempt := 0; ; {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%w: %w", ErrLockContextCancelled, err)
		}

		file, err := os.OpenFile(fl.path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, lockFilePermissions)
		if err == nil {
			werr := fl.writeLock(file)
			_ = file.Close()
			if werr != nil {
				_ = os.Remove(fl.path)
				return fmt.Errorf("%w: %w", ErrLockAcquire, werr)
			}
			fl.startRefresh()
			return nil
		}
		if !errors.Is(err, os.ErrExist) {
			return fmt.Errorf("%w: %w", ErrLockAcquire, err)
		}

		current, err := fl.readLockContent()
		switch {
		case errors.Is(err, os.ErrNotExist):
			// released between our create and read
			continue
		case err != nil && !errors.Is(err, ErrLockCorrupt):
			return fmt.Errorf("%w: %w", ErrLockAcquire, err)
		case err == nil && time.Since(current.Timestamp) >= fl.staleTimeout:
			if rerr := os.Remove(fl.path); rerr != nil && !errors.Is(rerr, os.ErrNotExist) {
				return fmt.Errorf("%w: failed to remove stale lock: %w", ErrLockAcquire, rerr)
			}
			continue
		}

		// held by someone else, or being written right now
		if attempt >= fl.maxRetry {
			return ErrMaxRetryExceeded
		}
		attempt++

		timer := time.NewTimer(fl.retryInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("%w: %w", ErrLockContextCancelled, ctx.Err())
		case <-timer.C:
		}
	}
}

// Release stops the refresh goroutine and removes the lock file. Releasing an
// unheld lock is a no-op.
func (fl *FileLock) Release() error {
	fl.mu.Lock()
	defer fl.mu.Unlock()

	if fl.cancel == nil {
		return nil
	}
	fl.cancel()
	fl.cancel = nil
	fl.wg.Wait()

	if err := os.Remove(fl.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to release lock: %w", err)
	}
	return nil
}

func (fl *FileLock) startRefresh() {
	ctx, cancel := context.WithCancel(context.Background())
	fl.cancel = cancel
	fl.wg.Add(1)
	go func() {
		defer fl.wg.Done()
		ticker := time.NewTicker(fl.refreshInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				// a lost lock is not re-taken; Release will find nothing to remove
				if err := fl.updateLock(); err != nil {
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()
}

// updateLock rewrites the timestamp through a rename so contenders never read
// a half-written lock.
func (fl *FileLock) updateLock() error {
	current, err := fl.readLockContent()
	if err != nil || current.Hostname != fl.hostname || current.PID != fl.pid {
		return ErrLockLost
	}

	tmp, err := os.CreateTemp(filepath.Dir(fl.path), ".lock-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := fl.writeLock(tmp); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), fl.path)
}

func (fl *FileLock) readLockContent() (*lockContent, error) {
	data, err := os.ReadFile(fl.path)
	if err != nil {
		return nil, err
	}

	var lc lockContent
	if err := json.Unmarshal(data, &lc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLockCorrupt, err)
	}
	return &lc, nil
}

func (fl *FileLock) writeLock(f *os.File) error {
	data, err := json.Marshal(lockContent{
		Hostname:  fl.hostname,
		PID:       fl.pid,
		Timestamp: time.Now(),
	})
	if err != nil {
		return fmt.Errorf("failed to encode lock content to json: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("failed to write lock file: %w", err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("failed to sync lock file: %w", err)
	}
	return nil
}
