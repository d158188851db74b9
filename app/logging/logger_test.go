// SPDX-FileCopyrightText: Copyright (c) 2016-2025, CloudZero, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package logging_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudzero/signal-store/app/build"
	"github.com/cloudzero/signal-store/app/logging"
)

func TestUnit_Logging_NewLogger_Defaults(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.NewLogger(logging.WithSink(&buf))
	require.NoError(t, err)

	logger.Debug().Msg("hidden")
	logger.Info().Msg("shown")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "shown", entry[zerolog.MessageFieldName])
	assert.Equal(t, build.GetVersion(), entry["version"])
	assert.NotEmpty(t, entry[zerolog.TimestampFieldName])
}

func TestUnit_Logging_NewLogger_Options(t *testing.T) {
	var first, second bytes.Buffer
	logger, err := logging.NewLogger(
		logging.WithSink(&first),
		logging.WithSink(&second),
		logging.WithLevel("DEBUG"),
		logging.WithVersion("v1.2.3"),
		logging.WithAttrs(func(c zerolog.Context) zerolog.Context {
			return c.Str("dataset", "acquired")
		}),
	)
	require.NoError(t, err)

	logger.Debug().Msg("both")

	for _, buf := range []*bytes.Buffer{&first, &second} {
		var entry map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.Equal(t, "debug", entry[zerolog.LevelFieldName])
		assert.Equal(t, "v1.2.3", entry["version"])
		assert.Equal(t, "acquired", entry["dataset"])
	}
}

func TestUnit_Logging_NewLogger_InvalidLevel(t *testing.T) {
	_, err := logging.NewLogger(logging.WithLevel("loud"))
	assert.Error(t, err)
}
