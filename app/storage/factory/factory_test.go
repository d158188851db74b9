// SPDX-FileCopyrightText: Copyright (c) 2016-2025, CloudZero, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package factory_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudzero/signal-store/app/storage/disk"
	"github.com/cloudzero/signal-store/app/storage/factory"
	"github.com/cloudzero/signal-store/app/storage/sqlite"
	"github.com/cloudzero/signal-store/app/types"
	"github.com/cloudzero/signal-store/app/utils/lock"
)

func TestUnit_Storage_Factory_Kinds(t *testing.T) {
	assert.Equal(t, []string{"archivo", "pickle", "sqlite"}, factory.Kinds())
}

func TestUnit_Storage_Factory_Create(t *testing.T) {
	tests := []struct {
		kind string
		want any
	}{
		{kind: disk.TextKind, want: &disk.TextContext{}},
		{kind: disk.BinaryKind, want: &disk.BinaryContext{}},
		{kind: sqlite.Kind, want: &sqlite.Context{}},
	}
	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			sc := factory.Create(tt.kind, filepath.Join(t.TempDir(), "acquired"))
			require.NotNil(t, sc)
			defer sc.Close()

			assert.IsType(t, tt.want, sc)
			assert.Equal(t, tt.kind, sc.Kind())

			in := &types.Signal{ID: "7", Comment: "test", Values: []float64{1.0, 2.5, 3.0}}
			require.NoError(t, sc.Persist(context.Background(), in, in.ID))
			out := types.NewSignal()
			_, err := sc.Retrieve(context.Background(), out, "7")
			require.NoError(t, err)
			assert.Equal(t, in.Values, out.Values)
		})
	}
}

func TestUnit_Storage_Factory_UnknownKind(t *testing.T) {
	sc := factory.Create("xml", t.TempDir())
	assert.Nil(t, sc)

	sc, err := factory.Open("xml", t.TempDir())
	assert.Nil(t, sc)
	assert.ErrorIs(t, err, types.ErrUnknownContextKind)
	assert.Contains(t, err.Error(), `"xml"`)
}

func TestUnit_Storage_Factory_OpenFailure(t *testing.T) {
	// the base path is a regular file, so no database can be created below it
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	sc, err := factory.Open(sqlite.Kind, blocker)
	assert.Nil(t, sc)
	assert.Error(t, err)
	assert.Nil(t, factory.Create(sqlite.Kind, blocker))
}

func TestUnit_Storage_Factory_Options(t *testing.T) {
	base := filepath.Join(t.TempDir(), "acquired")
	require.NoError(t, os.MkdirAll(base, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(base, "7.dat"), []byte("id:7,junk,\n"), 0o644))

	strict, err := factory.Open(disk.TextKind, base, factory.WithStrictDecoding(true))
	require.NoError(t, err)
	_, err = strict.Retrieve(context.Background(), types.NewSignal(), "7")
	var fe *types.FormatError
	assert.ErrorAs(t, err, &fe)

	lenient, err := factory.Open(disk.TextKind, base, factory.WithStrictDecoding(false))
	require.NoError(t, err)
	_, err = lenient.Retrieve(context.Background(), types.NewSignal(), "7")
	assert.NoError(t, err)

	packed, err := factory.Open(disk.BinaryKind, base, factory.WithCompressionLevel(brotli.BestSpeed))
	require.NoError(t, err)
	require.NoError(t, packed.Persist(context.Background(), &types.Signal{ID: "p"}, "p"))
	data, err := os.ReadFile(filepath.Join(base, "p.bin"))
	require.NoError(t, err)
	assert.Equal(t, byte('b'), data[0])

	locked, err := factory.Open(disk.TextKind, base, factory.WithLockOptions(lock.WithMaxRetry(0), lock.WithStaleTimeout(time.Hour)))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(base, ".q.lock"), []byte("being written"), 0o644))
	assert.ErrorIs(t, locked.Persist(context.Background(), &types.Signal{ID: "q"}, "q"), types.ErrLockContention)

	unlocked, err := factory.Open(disk.TextKind, base, factory.WithoutLocking())
	require.NoError(t, err)
	assert.NoError(t, unlocked.Persist(context.Background(), &types.Signal{ID: "q"}, "q"))
}
