// SPDX-FileCopyrightText: Copyright (c) 2016-2025, CloudZero, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package disk provides the file-backed storage contexts: one file per entity
// in a base directory, named by the entity id.
//
//	{base}/{id}.dat    text records written by the mapper (TextContext)
//	{base}/{id}.bin    binary records (BinaryContext)
//	{base}/audit.log   one line per completed operation
//	{base}/trace.log   one line per operation attempt, failures included
//	{base}/.{id}.lock  writer lock, present only while a Persist runs
//
// Writes go to a temporary file in the base directory that is synced and then
// renamed over the target, so readers see either the old or the new record.
package disk

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cloudzero/signal-store/app/storage/core"
	"github.com/cloudzero/signal-store/app/types"
	"github.com/cloudzero/signal-store/app/utils/lock"
)

const (
	dirPermissions  = 0o755
	filePermissions = 0o644
)

// fileStore holds what the text and binary contexts share: the directory
// layout, atomic writes, locking, the side channels and instrumentation.
type fileStore struct {
	*core.Journal
	kind  string
	base  string
	ext   string
	locks *lock.Keyed
}

func newFileStore(kind, base, ext string, o *options) *fileStore {
	s := &fileStore{
		Journal: core.NewJournal(kind, base, o.logger),
		kind:    kind,
		base:    base,
		ext:     ext,
	}
	if o.locking {
		s.locks = lock.NewKeyed(base, o.lockOpts...)
	}
	return s
}

// Kind implements types.StorageContext.
func (s *fileStore) Kind() string {
	return s.kind
}

// BaseDir returns the directory holding the records.
func (s *fileStore) BaseDir() string {
	return s.base
}

// Close implements types.StorageContext. File contexts hold no open handles.
func (s *fileStore) Close() error {
	return nil
}

// PathFor returns the record file of id.
func (s *fileStore) PathFor(id string) string {
	return filepath.Join(s.base, id+s.ext)
}

// List implements types.Lister. The directory is read on every call; a base
// directory that does not exist yet holds no records.
func (s *fileStore) List(ctx context.Context) (ids []string, err error) {
	begin := time.Now()
	defer func() {
		s.Finish(ctx, "list", "*", begin, err, fmt.Sprintf("listed %d ids", len(ids)))
	}()

	entries, err := os.ReadDir(s.base)
	if errors.Is(err, os.ErrNotExist) {
		return []string{}, nil
	}
	if err != nil {
		return nil, core.AccessError("list", s.base, err)
	}

	ids = make([]string, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") || !strings.HasSuffix(name, s.ext) {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, s.ext))
	}
	return ids, nil
}

// persist runs one Persist: id validation, encoding, the writer lock and the
// atomic write.
func (s *fileStore) persist(ctx context.Context, id string, encode func() ([]byte, error)) (err error) {
	begin := time.Now()
	path := s.PathFor(id)
	defer func() { s.Finish(ctx, "persist", id, begin, err, "persisted") }()

	if err := core.ValidateID(id); err != nil {
		return core.AccessError("persist", path, err)
	}

	data, err := encode()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(s.base, dirPermissions); err != nil {
		return core.AccessError("persist", s.base, err)
	}

	if s.locks != nil {
		fl, err := s.locks.Lock(ctx, id)
		if err != nil {
			if errors.Is(err, lock.ErrMaxRetryExceeded) {
				err = fmt.Errorf("%w: %w", types.ErrLockContention, err)
			}
			return core.AccessError("persist", s.locks.PathFor(id), err)
		}
		defer func() {
			if rerr := fl.Release(); rerr != nil {
				s.Logger(ctx).Warn().Err(rerr).Str("path", fl.Path()).Msg("failed to release writer lock")
			}
		}()
	}

	if err := writeAtomic(path, data); err != nil {
		return core.AccessError("persist", path, err)
	}
	return nil
}

// retrieve reads the record of id and hands it to decode.
func (s *fileStore) retrieve(ctx context.Context, id string, decode func(data []byte) (types.DecodeReport, error)) (report types.DecodeReport, err error) {
	begin := time.Now()
	path := s.PathFor(id)
	defer func() {
		msg := "retrieved"
		if report.Partial() {
			msg = fmt.Sprintf("retrieved with %d skipped tokens", report.SkippedCount())
		}
		s.Finish(ctx, "retrieve", id, begin, err, msg)
	}()

	if err := core.ValidateID(id); err != nil {
		return report, core.AccessError("retrieve", path, err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return report, core.AccessError("retrieve", path, err)
	}

	report, err = decode(data)
	if report.Partial() {
		s.Logger(ctx).Warn().
			Str("kind", s.kind).
			Str("id", id).
			Int("skipped", report.SkippedCount()).
			Msg("record decoded partially")
	}
	return report, err
}

func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, filePermissions); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	return nil
}
