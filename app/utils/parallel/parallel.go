// SPDX-FileCopyrightText: Copyright (c) 2016-2025, CloudZero, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package parallel runs tasks on a bounded number of goroutines.
//
// A Manager owns the concurrency limit and may be shared by several batches;
// a Waiter tracks one batch and collects its failures:
//
//	pm := parallel.New(4)
//	defer pm.Close()
//
//	waiter := parallel.NewWaiter()
//	for _, id := range ids {
//	    pm.Run(func() error { return copyOne(ctx, id) }, waiter)
//	}
//	err := waiter.Wait() // every task failure, joined
package parallel

import (
	"errors"
	"runtime"
	"sync"
)

const minNumWorkers = 2

// Task is a function type for parallel manager.
type Task func() error

// Manager is a structure for running tasks in parallel.
type Manager struct {
	wg        *sync.WaitGroup
	semaphore chan struct{}
}

// New creates a new parallel.Manager. A negative workercount means that many
// workers per CPU; the result is never below two.
func New(workercount int) *Manager {
	if workercount < 0 {
		workercount = runtime.NumCPU() * -workercount
	}

	if workercount < minNumWorkers {
		workercount = minNumWorkers
	}

	return &Manager{
		wg:        &sync.WaitGroup{},
		semaphore: make(chan struct{}, workercount),
	}
}

// Workers returns the concurrency limit.
func (p *Manager) Workers() int {
	return cap(p.semaphore)
}

func (p *Manager) acquire() {
	p.semaphore <- struct{}{}
	p.wg.Add(1)
}

func (p *Manager) release() {
	p.wg.Done()
	<-p.semaphore
}

// Run starts fn once a worker slot is free, blocking until then. A returned
// error is recorded on waiter.
func (p *Manager) Run(fn Task, waiter *Waiter) {
	waiter.wg.Add(1)
	p.acquire()
	go func() {
		defer waiter.wg.Done()
		defer p.release()

		if err := fn(); err != nil {
			waiter.record(err)
		}
	}()
}

// Close waits all tasks to finish. The Manager cannot be used afterwards.
func (p *Manager) Close() {
	p.wg.Wait()
	close(p.semaphore)
}

// Waiter collects the outcome of one batch of tasks.
type Waiter struct {
	wg   sync.WaitGroup
	mu   sync.Mutex
	errs []error
}

// NewWaiter creates a new parallel.Waiter.
func NewWaiter() *Waiter {
	return &Waiter{}
}

func (w *Waiter) record(err error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.errs = append(w.errs, err)
}

// Wait blocks until every task of the batch finished and returns their errors
// joined, or nil.
func (w *Waiter) Wait() error {
	w.wg.Wait()
	return errors.Join(w.Errors()...)
}

// Errors returns a copy of the failures recorded so far, in completion order.
func (w *Waiter) Errors() []error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]error(nil), w.errs...)
}
