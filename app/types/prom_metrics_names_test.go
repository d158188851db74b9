// SPDX-FileCopyrightText: Copyright (c) 2016-2025, CloudZero, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package types_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cloudzero/signal-store/app/types"
)

func TestStorageMetric(t *testing.T) {
	testCases := []struct {
		name        string
		metricName  string
		expected    string
		expectPanic bool
	}{
		{
			name:       "Valid metric name",
			metricName: "operations_total",
			expected:   "signal_store_operations_total",
		},
		{
			name:        "Empty metric name",
			metricName:  "",
			expectPanic: true,
		},
		{
			name:        "Metric name with forbidden prefix 'signal'",
			metricName:  "signal_operations",
			expectPanic: true,
		},
		{
			name:        "Metric name with empty prefix",
			metricName:  "_metric",
			expectPanic: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if tc.expectPanic {
				assert.Panics(t, func() { types.StorageMetric(tc.metricName) })
				return
			}
			assert.Equal(t, tc.expected, types.StorageMetric(tc.metricName))
		})
	}
}
