// SPDX-FileCopyrightText: Copyright (c) 2016-2025, CloudZero, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package types

import "strings"

// MetricPrefix is prepended to every metric exported by the signal store.
const MetricPrefix = "signal_store_"

// StorageMetric takes a metric name as input and returns a new metric name
// prefixed with "signal_store_". It is used when registering the storage
// context instrumentation (e.g., "operations_total").
//
// The input metric name must not be empty and must not start with the
// forbidden prefixes "" or "signal". If these conditions are violated, the
// function will panic.
//
// Example usage:
//
//	metric := StorageMetric("operations_total") // Returns "signal_store_operations_total"
func StorageMetric(metricName string) string {
	parts := strings.SplitN(metricName, "_", 2)
	if len(parts) == 0 {
		panic("metricName is invalid: no parts found after splitting")
	}
	prefix := parts[0]
	if prefix == "" || prefix == "signal" {
		panic("metricName contains a forbidden prefix or is empty")
	}
	return MetricPrefix + metricName
}
