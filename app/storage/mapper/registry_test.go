// SPDX-FileCopyrightText: Copyright (c) 2016-2025, CloudZero, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package mapper_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudzero/signal-store/app/storage/mapper"
	"github.com/cloudzero/signal-store/app/types"
)

func TestUnit_Mapper_Registry_Parse(t *testing.T) {
	r := mapper.NewRegistry()

	tests := []struct {
		name     string
		typ      types.BaseType
		token    string
		expected any
	}{
		{name: "int", typ: types.TypeInt, token: "42", expected: 42},
		{name: "negative int", typ: types.TypeInt, token: "-7", expected: -7},
		{name: "str", typ: types.TypeStr, token: " spaced ", expected: " spaced "},
		{name: "float", typ: types.TypeFloat, token: "2.5", expected: 2.5},
		{name: "bool python style", typ: types.TypeBool, token: "True", expected: true},
		{name: "bool lower", typ: types.TypeBool, token: "false", expected: false},
		{name: "date only", typ: types.TypeDate, token: "2024-03-01", expected: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
		{name: "date time", typ: types.TypeDate, token: "2024-03-01 10:30:00", expected: time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC)},
		{name: "none", typ: types.TypeNone, token: "None", expected: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Parse(tt.typ, tt.token)
			require.NoError(t, err)
			if want, ok := tt.expected.(time.Time); ok {
				gotTime, isTime := got.(time.Time)
				require.True(t, isTime)
				assert.True(t, want.Equal(gotTime), "got %v, want %v", gotTime, want)
				return
			}
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestUnit_Mapper_Registry_ParseErrors(t *testing.T) {
	r := mapper.NewRegistry()

	for typ, token := range map[types.BaseType]string{
		types.TypeInt:   "4.2",
		types.TypeFloat: "abc",
		types.TypeBool:  "maybe",
		types.TypeDate:  "yesterday",
	} {
		_, err := r.Parse(typ, token)
		assert.Error(t, err, "type %s token %q", typ, token)
	}
}

func TestUnit_Mapper_Registry_UnknownTypeIsAbsent(t *testing.T) {
	r := mapper.NewRegistry()

	v, err := r.Parse("complex", "1+2i")
	assert.NoError(t, err)
	assert.Nil(t, v)
	assert.False(t, r.Known("complex"))
	assert.True(t, r.Known(types.TypeNone))
}

func TestUnit_Mapper_Registry_Format(t *testing.T) {
	r := mapper.NewRegistry()

	tests := []struct {
		value    any
		expected string
	}{
		{value: 7, expected: "7"},
		{value: int64(-3), expected: "-3"},
		{value: "text", expected: "text"},
		{value: 1.0, expected: "1.0"},
		{value: 2.5, expected: "2.5"},
		{value: 1e21, expected: "1e+21"},
		{value: true, expected: "True"},
		{value: false, expected: "False"},
		{value: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), expected: "2024-03-01"},
		{value: time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC), expected: "2024-03-01T10:30:00Z"},
		{value: nil, expected: "None"},
	}

	for _, tt := range tests {
		got, ok := r.Format(tt.value)
		require.True(t, ok, "value %v", tt.value)
		assert.Equal(t, tt.expected, got)
	}

	_, ok := r.Format(struct{}{})
	assert.False(t, ok)
}

type celsius float32

func TestUnit_Mapper_Registry_Register(t *testing.T) {
	r := mapper.NewRegistry()
	r.Register("celsius", mapper.Codec{
		Parse: func(token string) (any, error) {
			return celsius(len(strings.TrimSuffix(token, "C"))), nil
		},
		Format: func(value any) (string, bool) {
			c, ok := value.(celsius)
			if !ok {
				return "", false
			}
			return strings.Repeat("x", int(c)) + "C", true
		},
	})

	assert.True(t, r.Known("celsius"))

	s, ok := r.Format(celsius(3))
	require.True(t, ok)
	assert.Equal(t, "xxxC", s)

	v, err := r.Parse("celsius", s)
	require.NoError(t, err)
	assert.Equal(t, celsius(3), v)
}

func TestUnit_Mapper_TypeOf(t *testing.T) {
	cases := map[types.BaseType]any{
		types.TypeInt:   1,
		types.TypeStr:   "a",
		types.TypeFloat: 1.5,
		types.TypeBool:  true,
		types.TypeDate:  time.Now(),
		types.TypeNone:  nil,
	}
	for want, value := range cases {
		got, ok := mapper.TypeOf(value)
		assert.True(t, ok)
		assert.Equal(t, want, got)
	}

	assert.False(t, mapper.IsBase([]int{1}))
	assert.False(t, mapper.IsBase(types.NewSignal()))
}
