// SPDX-FileCopyrightText: Copyright (c) 2016-2025, CloudZero, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package disk_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudzero/signal-store/app/storage/disk"
	"github.com/cloudzero/signal-store/app/types"
)

func binarySignal() *types.Signal {
	return &types.Signal{
		ID:          "bin-1",
		Comment:     "commas, and\nnewlines are fine here",
		AcquiredAt:  time.Date(2024, 5, 17, 9, 45, 12, 123456789, time.UTC),
		SampleRate:  44100,
		Processed:   true,
		SampleCount: 4,
		Source:      types.Source{Name: "probe", Channel: 3, Sensor: types.Sensor{Model: "x1", Gain: 0.5}},
		Values:      []float64{0.25, -1, 3.5, 1e-9},
	}
}

func TestUnit_Storage_Disk_Binary_RoundTrip(t *testing.T) {
	base := datasetDir(t)
	sc, err := disk.NewBinaryContext(base)
	require.NoError(t, err)
	assert.Equal(t, disk.BinaryKind, sc.Kind())

	in := binarySignal()
	require.NoError(t, sc.Persist(bg, in, in.ID))
	assert.FileExists(t, filepath.Join(base, "bin-1.bin"))

	out := &types.Signal{Values: []float64{42}}
	report, err := sc.Retrieve(bg, out, in.ID)
	require.NoError(t, err)
	assert.False(t, report.Partial())
	if diff := cmp.Diff(in, out); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}

	ids, err := sc.List(bg)
	require.NoError(t, err)
	assert.Equal(t, []string{"bin-1"}, ids)
}

func TestUnit_Storage_Disk_Binary_Compression(t *testing.T) {
	plainDir, packedDir := datasetDir(t), datasetDir(t)
	plain, err := disk.NewBinaryContext(plainDir)
	require.NoError(t, err)
	packed, err := disk.NewBinaryContext(packedDir, disk.WithCompressionLevel(brotli.BestCompression))
	require.NoError(t, err)

	in := binarySignal()
	in.Values = make([]float64, 2048)
	require.NoError(t, plain.Persist(bg, in, in.ID))
	require.NoError(t, packed.Persist(bg, in, in.ID))

	plainInfo, err := os.Stat(plain.PathFor(in.ID))
	require.NoError(t, err)
	packedInfo, err := os.Stat(packed.PathFor(in.ID))
	require.NoError(t, err)
	assert.Less(t, packedInfo.Size(), plainInfo.Size())

	// the record names its codec, so any binary context reads it
	reader, err := disk.NewBinaryContext(packedDir)
	require.NoError(t, err)
	out := types.NewSignal()
	_, err = reader.Retrieve(bg, out, in.ID)
	require.NoError(t, err)
	assert.Equal(t, in.Values, out.Values)
}

func TestUnit_Storage_Disk_Binary_Snappy(t *testing.T) {
	base := datasetDir(t)
	sc, err := disk.NewBinaryContext(base, disk.WithSnappyCompression())
	require.NoError(t, err)

	in := binarySignal()
	in.Values = make([]float64, 1024)
	require.NoError(t, sc.Persist(bg, in, in.ID))

	raw, err := os.ReadFile(sc.PathFor(in.ID))
	require.NoError(t, err)
	assert.Equal(t, byte('s'), raw[0])

	reader, err := disk.NewBinaryContext(base, disk.WithCompressionLevel(brotli.BestSpeed))
	require.NoError(t, err)
	out := types.NewSignal()
	_, err = reader.Retrieve(bg, out, in.ID)
	require.NoError(t, err)
	assert.Equal(t, in.Values, out.Values)

	// a damaged snappy body is a format error
	require.NoError(t, os.WriteFile(sc.PathFor("damaged"), []byte("s\xff\xff\xff"), 0o644))
	_, err = reader.Retrieve(bg, types.NewSignal(), "damaged")
	var fe *types.FormatError
	assert.ErrorAs(t, err, &fe)
}

func TestUnit_Storage_Disk_Binary_Corrupt(t *testing.T) {
	base := datasetDir(t)
	require.NoError(t, os.MkdirAll(base, 0o755))
	sc, err := disk.NewBinaryContext(base)
	require.NoError(t, err)

	for name, body := range map[string][]byte{
		"empty":   {},
		"unknown": []byte("zzz"),
		"cbor":    {'c', 0xff, 0x00},
		"brotli":  []byte("bnot brotli"),
	} {
		require.NoError(t, os.WriteFile(sc.PathFor(name), body, 0o644))
		_, err := sc.Retrieve(bg, types.NewSignal(), name)
		var fe *types.FormatError
		assert.ErrorAs(t, err, &fe, name)
		assert.ErrorIs(t, err, types.ErrInvalidData, name)
	}
}

func TestUnit_Storage_Disk_Binary_UnknownID(t *testing.T) {
	sc, err := disk.NewBinaryContext(datasetDir(t))
	require.NoError(t, err)

	_, err = sc.Retrieve(bg, types.NewSignal(), "missing")
	var dae *types.DataAccessError
	require.ErrorAs(t, err, &dae)
	assert.False(t, dae.FileExists)
}
