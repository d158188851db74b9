// SPDX-FileCopyrightText: Copyright (c) 2016-2025, CloudZero, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package pipeline

import (
	"strings"

	"github.com/cloudzero/signal-store/app/types"
)

// Processor applies a simple threshold filter: every sample below the
// threshold is replaced by zero.
type Processor struct {
	threshold float64
}

// NewProcessor creates a Processor with the given threshold.
func NewProcessor(threshold float64) *Processor {
	return &Processor{threshold: threshold}
}

// Threshold returns the configured threshold.
func (p *Processor) Threshold() float64 {
	return p.threshold
}

// Process returns the filtered copy of in. The input is not modified.
func (p *Processor) Process(in *types.Signal) *types.Signal {
	out := *in
	out.Values = make([]float64, len(in.Values))
	for i, v := range in.Values {
		if v < p.threshold {
			v = 0
		}
		out.Values[i] = v
	}
	out.SampleCount = len(out.Values)
	out.Processed = true
	return &out
}

// sanitizeComment keeps a comment representable in the text record format.
func sanitizeComment(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ',', '\r', '\n':
			return ' '
		}
		return r
	}, s)
}
