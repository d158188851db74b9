// SPDX-FileCopyrightText: Copyright (c) 2016-2025, CloudZero, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package logging

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// EventLog is an append-only file of one JSON object per line. The file is
// opened for every event and closed before Append returns, so several
// processes can share it and nothing stays open between events.
type EventLog struct {
	path   string
	filter []string
	mu     sync.Mutex
}

// NewEventLog creates an event log writing to path. The file and its parent
// directory are created on the first event.
func NewEventLog(path string) *EventLog {
	return &EventLog{
		path:   path,
		filter: []string{zerolog.LevelFieldName},
	}
}

// Path returns the file the log appends to.
func (l *EventLog) Path() string {
	return l.path
}

// Append writes one event carrying msg and whatever fields fn adds to it.
//
// Write failures are reported through the logger in ctx and otherwise
// dropped; an event log never fails the operation it describes.
func (l *EventLog) Append(ctx context.Context, msg string, fn func(ev *zerolog.Event)) {
	var buf bytes.Buffer
	zl := zerolog.New(NewFieldFilterWriter(&buf, l.filter))
	ev := zl.Log().Timestamp()
	if fn != nil {
		fn(ev)
	}
	ev.Msg(msg)

	if err := l.write(buf.Bytes()); err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("path", l.path).Msg("failed to append event")
	}
}

func (l *EventLog) write(line []byte) error {
	if len(line) == 0 {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	if _, err := f.Write(line); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
