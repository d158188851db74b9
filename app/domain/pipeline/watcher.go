// SPDX-FileCopyrightText: Copyright (c) 2016-2025, CloudZero, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
)

const (
	// DefaultSettleTime is how long a samples file must stay unchanged before
	// it is acquired.
	DefaultSettleTime = 500 * time.Millisecond

	// DefaultSamplesExtension selects the files a Watcher acquires.
	DefaultSamplesExtension = ".txt"

	settleCheckInterval = 100 * time.Millisecond
)

// WatcherOption configures a Watcher.
type WatcherOption func(w *Watcher)

// WithSettleTime sets how long a file must be quiet before it is acquired.
func WithSettleTime(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		w.settle = d
	}
}

// WithExtension sets the extension of the files to acquire.
func WithExtension(ext string) WatcherOption {
	return func(w *Watcher) {
		w.ext = ext
	}
}

// WithProcessing makes the watcher process every signal right after
// acquiring it.
func WithProcessing() WatcherOption {
	return func(w *Watcher) {
		w.process = true
	}
}

// WithRequest sets the request template of acquired files. The id is always
// taken from the file name.
func WithRequest(req Request) WatcherOption {
	return func(w *Watcher) {
		w.request = req
	}
}

// Watcher acquires samples files as they are dropped into a directory. The
// file name without its extension becomes the signal id.
type Watcher struct {
	svc     *Service
	dir     string
	ext     string
	settle  time.Duration
	process bool
	request Request
}

// NewWatcher creates a Watcher of dir.
func NewWatcher(svc *Service, dir string, opts ...WatcherOption) *Watcher {
	w := &Watcher{
		svc:    svc,
		dir:    dir,
		ext:    DefaultSamplesExtension,
		settle: DefaultSettleTime,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run watches until ctx is done. Failures to acquire a file are logged and
// do not stop the watcher.
func (w *Watcher) Run(ctx context.Context) error {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create watched directory: %w", err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer fsw.Close()

	if err := fsw.Add(w.dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.dir, err)
	}
	log.Ctx(ctx).Info().Str("dir", w.dir).Str("extension", w.ext).Msg("watching for samples")

	ticker := time.NewTicker(settleCheckInterval)
	defer ticker.Stop()

	// last change of every file waiting to settle
	pending := map[string]time.Time{}
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			if w.wanted(event.Name) {
				pending[event.Name] = time.Now()
			}

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			log.Ctx(ctx).Error().Err(err).Str("dir", w.dir).Msg("watcher error")

		case now := <-ticker.C:
			for path, changed := range pending {
				if now.Sub(changed) < w.settle {
					continue
				}
				delete(pending, path)
				w.acquire(ctx, path)
			}
		}
	}
}

func (w *Watcher) wanted(path string) bool {
	base := filepath.Base(path)
	return !strings.HasPrefix(base, ".") && filepath.Ext(base) == w.ext
}

func (w *Watcher) acquire(ctx context.Context, path string) {
	logger := log.Ctx(ctx).With().Str("file", path).Logger()

	req := w.request
	req.ID = strings.TrimSuffix(filepath.Base(path), w.ext)
	signal, err := w.svc.Acquire(ctx, path, req)
	if err != nil {
		logger.Error().Err(err).Msg("failed to acquire samples file")
		return
	}
	if !w.process {
		return
	}
	if _, err := w.svc.Process(ctx, signal.ID); err != nil {
		logger.Error().Err(err).Str("id", signal.ID).Msg("failed to process acquired signal")
	}
}
