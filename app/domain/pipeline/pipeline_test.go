// SPDX-FileCopyrightText: Copyright (c) 2016-2025, CloudZero, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package pipeline_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudzero/signal-store/app/domain/pipeline"
	"github.com/cloudzero/signal-store/app/storage/factory"
	"github.com/cloudzero/signal-store/app/storage/repository"
	"github.com/cloudzero/signal-store/app/types"
)

var fixedNow = time.Date(2024, 5, 17, 9, 45, 12, 0, time.UTC)

func newRepo(t *testing.T, kind, base string) *pipeline.SignalRepository {
	t.Helper()
	sc, err := factory.Open(kind, base)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sc.Close() })
	repo, err := repository.New[*types.Signal](sc)
	require.NoError(t, err)
	return repo
}

func writeSamples(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "samples.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestUnit_Pipeline_Acquirer_ParsesSamples(t *testing.T) {
	a := pipeline.NewAcquirer(pipeline.WithClock(func() time.Time { return fixedNow }))

	sig, err := a.Acquire(context.Background(), strings.NewReader("0.1 2.5\n-3\t4e2\n"), pipeline.Request{
		ID:         "s1",
		Comment:    "bench, run",
		SampleRate: 100,
	})
	require.NoError(t, err)
	assert.Equal(t, "s1", sig.ID)
	assert.Equal(t, "bench  run", sig.Comment)
	assert.Equal(t, fixedNow, sig.AcquiredAt)
	assert.Equal(t, []float64{0.1, 2.5, -3, 400}, sig.Values)
	assert.Equal(t, 4, sig.SampleCount)
	assert.False(t, sig.Processed)
}

func TestUnit_Pipeline_Acquirer_GeneratesID(t *testing.T) {
	a := pipeline.NewAcquirer()
	sig, err := a.Acquire(context.Background(), strings.NewReader("1"), pipeline.Request{})
	require.NoError(t, err)
	_, err = uuid.Parse(sig.ID)
	assert.NoError(t, err)

	a = pipeline.NewAcquirer(pipeline.WithIDGenerator(func() string { return "fixed" }))
	sig, err = a.Acquire(context.Background(), strings.NewReader(""), pipeline.Request{})
	require.NoError(t, err)
	assert.Equal(t, "fixed", sig.ID)
	assert.Empty(t, sig.Values)
}

func TestUnit_Pipeline_Acquirer_RejectsNonNumbers(t *testing.T) {
	a := pipeline.NewAcquirer()
	_, err := a.Acquire(context.Background(), strings.NewReader("1 two 3"), pipeline.Request{})
	assert.ErrorIs(t, err, types.ErrInvalidData)
	assert.Contains(t, err.Error(), "sample 2")

	_, err = a.AcquireFile(context.Background(), filepath.Join(t.TempDir(), "missing.txt"), pipeline.Request{})
	assert.Error(t, err)
}

func TestUnit_Pipeline_Processor_Threshold(t *testing.T) {
	p := pipeline.NewProcessor(0.5)
	in := &types.Signal{ID: "7", Comment: "c", Values: []float64{0.1, 0.5, 0.9, -2}}

	out := p.Process(in)
	assert.Equal(t, []float64{0, 0.5, 0.9, 0}, out.Values)
	assert.True(t, out.Processed)
	assert.Equal(t, 4, out.SampleCount)
	assert.Equal(t, "7", out.ID)
	assert.Equal(t, "c", out.Comment)

	// the input is left alone
	assert.Equal(t, []float64{0.1, 0.5, 0.9, -2}, in.Values)
	assert.False(t, in.Processed)
}

func TestUnit_Pipeline_Service_AcquireAndProcess(t *testing.T) {
	for _, kinds := range [][2]string{
		{"archivo", "archivo"},
		{"archivo", "sqlite"},
		{"pickle", "archivo"},
	} {
		t.Run(kinds[0]+"_to_"+kinds[1], func(t *testing.T) {
			root := t.TempDir()
			acquired := newRepo(t, kinds[0], filepath.Join(root, "acquired"))
			processed := newRepo(t, kinds[1], filepath.Join(root, "processed"))

			svc, err := pipeline.NewService(acquired, processed,
				pipeline.NewAcquirer(pipeline.WithClock(func() time.Time { return fixedNow })),
				pipeline.NewProcessor(1))
			require.NoError(t, err)

			ctx := context.Background()
			sig, err := svc.Acquire(ctx, writeSamples(t, "0.5 1.5 2.5 0.25"), pipeline.Request{
				ID:     "run-1",
				Source: types.Source{Name: "probe", Channel: 2, Sensor: types.Sensor{Model: "x1", Gain: 0.5}},
			})
			require.NoError(t, err)
			assert.Equal(t, "run-1", sig.ID)

			ids, err := svc.Acquired(ctx)
			require.NoError(t, err)
			assert.Equal(t, []string{"run-1"}, ids)

			out, err := svc.Process(ctx, "run-1")
			require.NoError(t, err)
			assert.Equal(t, []float64{0, 1.5, 2.5, 0}, out.Values)

			stored, _, err := processed.Fetch(ctx, types.NewSignal(), "run-1")
			require.NoError(t, err)
			assert.True(t, stored.Processed)
			assert.Equal(t, out.Values, stored.Values)
			assert.Equal(t, "x1", stored.Source.Sensor.Model)
			assert.True(t, fixedNow.Equal(stored.AcquiredAt))

			ids, err = svc.Processed(ctx)
			require.NoError(t, err)
			assert.Equal(t, []string{"run-1"}, ids)
		})
	}
}

func TestUnit_Pipeline_Service_ProcessUnknown(t *testing.T) {
	root := t.TempDir()
	svc, err := pipeline.NewService(
		newRepo(t, "archivo", filepath.Join(root, "a")),
		newRepo(t, "archivo", filepath.Join(root, "p")),
		nil, pipeline.NewProcessor(0))
	require.NoError(t, err)

	_, err = svc.Process(context.Background(), "ghost")
	var dae *types.DataAccessError
	require.ErrorAs(t, err, &dae)
	assert.False(t, dae.FileExists)
}

func TestUnit_Pipeline_Service_RequiresRepositories(t *testing.T) {
	_, err := pipeline.NewService(nil, nil, nil, pipeline.NewProcessor(0))
	assert.ErrorIs(t, err, types.ErrContextNotConfigured)
}
