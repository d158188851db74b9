// SPDX-FileCopyrightText: Copyright (c) 2016-2025, CloudZero, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package logging

import (
	"bytes"
	"encoding/json"
	"io"
)

type fieldFilterWriter struct {
	out    io.Writer
	fields []string
}

// NewFieldFilterWriter returns a writer that removes the named top-level fields
// from each JSON log line before passing it to out. Lines that are not JSON
// objects are written unchanged.
func NewFieldFilterWriter(out io.Writer, fields []string) io.Writer {
	return &fieldFilterWriter{out: out, fields: fields}
}

// Write implements io.Writer. It always reports len(p) unless the underlying
// writer fails.
func (w *fieldFilterWriter) Write(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	body := bytes.TrimRight(p, "\n")
	newline := len(body) != len(p)

	var entry map[string]json.RawMessage
	if err := json.Unmarshal(body, &entry); err != nil {
		if _, werr := w.out.Write(p); werr != nil {
			return 0, werr
		}
		return len(p), nil
	}

	for _, f := range w.fields {
		delete(entry, f)
	}

	filtered, err := json.Marshal(entry)
	if err != nil {
		return 0, err
	}
	if newline {
		filtered = append(filtered, '\n')
	}
	if _, err := w.out.Write(filtered); err != nil {
		return 0, err
	}
	return len(p), nil
}
