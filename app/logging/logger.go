// SPDX-FileCopyrightText: Copyright (c) 2016-2025, CloudZero, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package logging builds the process logger and the file sinks used by the
// storage contexts.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"github.com/cloudzero/signal-store/app/build"
)

// LoggerOpt configures NewLogger.
type LoggerOpt func(l *loggerConfig) error

type loggerConfig struct {
	level   zerolog.Level
	sinks   []io.Writer
	attrs   []func(c zerolog.Context) zerolog.Context
	version string
}

// WithLevel sets the minimum level by name. An empty name keeps the default
// (info).
func WithLevel(level string) LoggerOpt {
	return func(l *loggerConfig) error {
		if level == "" {
			return nil
		}
		parsed, err := zerolog.ParseLevel(strings.ToLower(level))
		if err != nil {
			return err
		}
		l.level = parsed
		return nil
	}
}

// WithSink adds an output. When no sink is given, the logger writes to stdout.
func WithSink(w io.Writer) LoggerOpt {
	return func(l *loggerConfig) error {
		l.sinks = append(l.sinks, w)
		return nil
	}
}

// WithAttrs adds fields to every event.
func WithAttrs(fn func(c zerolog.Context) zerolog.Context) LoggerOpt {
	return func(l *loggerConfig) error {
		l.attrs = append(l.attrs, fn)
		return nil
	}
}

// WithVersion overrides the version field, which defaults to the build version.
func WithVersion(version string) LoggerOpt {
	return func(l *loggerConfig) error {
		l.version = version
		return nil
	}
}

// NewLogger creates a JSON logger with a timestamp and a version field.
func NewLogger(opts ...LoggerOpt) (*zerolog.Logger, error) {
	cfg := &loggerConfig{
		level:   zerolog.InfoLevel,
		version: build.GetVersion(),
	}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	var w io.Writer
	switch len(cfg.sinks) {
	case 0:
		w = os.Stdout
	case 1:
		w = cfg.sinks[0]
	default:
		w = zerolog.MultiLevelWriter(cfg.sinks...)
	}

	c := zerolog.New(w).Level(cfg.level).With().Timestamp().Str("version", cfg.version)
	for _, fn := range cfg.attrs {
		c = fn(c)
	}
	logger := c.Logger()
	return &logger, nil
}
