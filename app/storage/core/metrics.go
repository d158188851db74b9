// SPDX-FileCopyrightText: Copyright (c) 2016-2025, CloudZero, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package core

import (
	"errors"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/cloudzero/signal-store/app/types"
)

// Result label values of the operation counter.
const (
	ResultOK       = "ok"
	ResultNotFound = "not_found"
	ResultError    = "error"
)

var (
	operationsTotal   *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
	metricsOnce       sync.Once
)

// StorageMetrics returns the storage context instrumentation, creating and
// registering it with the default registry only once.
func StorageMetrics() (*prometheus.CounterVec, *prometheus.HistogramVec) {
	metricsOnce.Do(func() {
		operationsTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: types.StorageMetric("operations_total"),
				Help: "Count of storage context operations, labeled by context kind, operation and result.",
			},
			[]string{"kind", "operation", "result"},
		)
		operationDuration = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    types.StorageMetric("operation_duration_seconds"),
				Help:    "Duration of storage context operations in seconds.",
				Buckets: prometheus.ExponentialBuckets(0.0005, 4, 8),
			},
			[]string{"kind", "operation"},
		)
		// Register metrics with error handling to avoid panics on duplicate registration
		if err := prometheus.Register(operationsTotal); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				panic(err)
			}
		}
		if err := prometheus.Register(operationDuration); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				panic(err)
			}
		}
	})
	return operationsTotal, operationDuration
}

// ObserveOperation records the outcome and duration of one storage operation.
func ObserveOperation(kind, operation string, begin time.Time, err error) {
	counter, duration := StorageMetrics()
	counter.WithLabelValues(kind, operation, Result(err)).Inc()
	duration.WithLabelValues(kind, operation).Observe(time.Since(begin).Seconds())
}

// Result classifies err into a result label value.
func Result(err error) string {
	switch {
	case err == nil:
		return ResultOK
	case errors.Is(err, types.ErrNotFound):
		return ResultNotFound
	default:
		return ResultError
	}
}
