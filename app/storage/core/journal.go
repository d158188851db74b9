// SPDX-FileCopyrightText: Copyright (c) 2016-2025, CloudZero, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package core

import (
	"context"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/cloudzero/signal-store/app/logging"
)

const (
	// AuditLogName is the file name of the audit log within a base directory.
	AuditLogName = "audit.log"
	// TraceLogName is the file name of the trace log within a base directory.
	TraceLogName = "trace.log"
)

// Journal implements types.Journal over the audit and trace logs of a base
// directory, and records the outcome of every storage operation on them.
//
// The audit log receives one line per successful operation. The trace log
// receives one line per attempt, with "ok" or the error text as message.
type Journal struct {
	kind   string
	logger *zerolog.Logger
	audit  *logging.EventLog
	trace  *logging.EventLog
}

// NewJournal creates the journal of a context of the given kind. logger is
// used when an operation context carries no logger and may be nil.
func NewJournal(kind, base string, logger *zerolog.Logger) *Journal {
	return &Journal{
		kind:   kind,
		logger: logger,
		audit:  logging.NewEventLog(filepath.Join(base, AuditLogName)),
		trace:  logging.NewEventLog(filepath.Join(base, TraceLogName)),
	}
}

// Audit implements types.Journal.
func (j *Journal) Audit(ctx context.Context, subject, message string) {
	j.audit.Append(ctx, message, func(ev *zerolog.Event) {
		ev.Str("kind", j.kind).Str("subject", subject)
	})
}

// Trace implements types.Journal.
func (j *Journal) Trace(ctx context.Context, subject, action, message string) {
	j.trace.Append(ctx, message, func(ev *zerolog.Event) {
		ev.Str("kind", j.kind).Str("subject", subject).Str("action", action)
	})
}

// Finish records one operation: metrics, a trace line, and an audit line with
// the success message when err is nil.
func (j *Journal) Finish(ctx context.Context, operation, subject string, begin time.Time, err error, success string) {
	ObserveOperation(j.kind, operation, begin, err)

	if err != nil {
		j.Trace(ctx, subject, operation, err.Error())
		j.Logger(ctx).Debug().
			Err(err).
			Str("kind", j.kind).
			Str("op", operation).
			Str("id", subject).
			Msg("storage operation failed")
		return
	}
	j.Trace(ctx, subject, operation, "ok")
	j.Audit(ctx, subject, success)
}

// Logger returns the logger carried by ctx, falling back to the journal's own.
func (j *Journal) Logger(ctx context.Context) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		return l
	}
	if j.logger != nil {
		return j.logger
	}
	return zerolog.Ctx(ctx)
}
