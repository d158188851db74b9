// SPDX-FileCopyrightText: Copyright (c) 2016-2025, CloudZero, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package mapper

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/ccoveille/go-safecast"

	"github.com/cloudzero/signal-store/app/types"
)

const (
	noneToken      = "None"
	dateTimeLayout = "2006-01-02 15:04:05"
)

// Codec converts one base type between its typed value and its text token.
type Codec struct {
	Parse  func(token string) (any, error)
	Format func(value any) (string, bool)
}

// Registry is the table of recognized scalar types.
//
// The zero value is not usable; create registries with NewRegistry. A registry
// is safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	codecs map[types.BaseType]Codec
	custom []types.BaseType
}

// builtinOrder is the lookup order used when formatting a value of unknown type.
var builtinOrder = []types.BaseType{
	types.TypeInt,
	types.TypeStr,
	types.TypeFloat,
	types.TypeBool,
	types.TypeDate,
	types.TypeNone,
}

// NewRegistry returns a registry preloaded with the five base types and none.
func NewRegistry() *Registry {
	return &Registry{
		codecs: map[types.BaseType]Codec{
			types.TypeInt:   {Parse: parseInt, Format: formatInt},
			types.TypeStr:   {Parse: parseStr, Format: formatStr},
			types.TypeFloat: {Parse: parseFloat, Format: formatFloat},
			types.TypeBool:  {Parse: parseBool, Format: formatBool},
			types.TypeDate:  {Parse: parseDate, Format: formatDate},
			types.TypeNone:  {Parse: parseNone, Format: formatNone},
		},
	}
}

// DefaultRegistry is shared by mappers created without WithRegistry.
var DefaultRegistry = NewRegistry()

// Register adds or replaces the codec for a type name.
func (r *Registry) Register(t types.BaseType, c Codec) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.codecs[t]; !exists {
		r.custom = append(r.custom, t)
	}
	r.codecs[t] = c
}

// Known reports whether a codec is registered for t.
func (r *Registry) Known(t types.BaseType) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.codecs[t]
	return ok
}

// Parse converts token into a value of type t.
//
// An unregistered type name yields (nil, nil): an absent result, not a failure.
// Callers that need to tell "absent" from the none type use Known.
func (r *Registry) Parse(t types.BaseType, token string) (any, error) {
	r.mu.RLock()
	c, ok := r.codecs[t]
	r.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	return c.Parse(token)
}

// Format returns the text token of a scalar value. The boolean is false when
// no registered type accepts the value.
func (r *Registry) Format(value any) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if t, ok := TypeOf(value); ok {
		if c, found := r.codecs[t]; found {
			return c.Format(value)
		}
	}
	for _, t := range r.custom {
		if s, ok := r.codecs[t].Format(value); ok {
			return s, true
		}
	}
	return "", false
}

// TypeOf returns the base type of a runtime value.
func TypeOf(value any) (types.BaseType, bool) {
	switch value.(type) {
	case nil:
		return types.TypeNone, true
	case int, int64, int32:
		return types.TypeInt, true
	case string:
		return types.TypeStr, true
	case float64, float32:
		return types.TypeFloat, true
	case bool:
		return types.TypeBool, true
	case time.Time:
		return types.TypeDate, true
	}
	return "", false
}

// IsBase reports whether value is of one of the built-in base types.
func IsBase(value any) bool {
	_, ok := TypeOf(value)
	return ok
}

func parseInt(token string) (any, error) {
	i, err := strconv.ParseInt(strings.TrimSpace(token), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid int %q: %w", token, err)
	}
	v, err := safecast.Convert[int](i)
	if err != nil {
		return nil, fmt.Errorf("int %q out of range: %w", token, err)
	}
	return v, nil
}

func formatInt(value any) (string, bool) {
	switch v := value.(type) {
	case int:
		return strconv.Itoa(v), true
	case int64:
		return strconv.FormatInt(v, 10), true
	case int32:
		return strconv.FormatInt(int64(v), 10), true
	}
	return "", false
}

func parseStr(token string) (any, error) {
	return token, nil
}

func formatStr(value any) (string, bool) {
	s, ok := value.(string)
	return s, ok
}

func parseFloat(token string) (any, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(token), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid float %q: %w", token, err)
	}
	return f, nil
}

// formatFloat always keeps a fractional part for finite integral values, so that
// 1.0 is written as "1.0" and reads back as a float.
func formatFloat(value any) (string, bool) {
	var f float64
	switch v := value.(type) {
	case float64:
		f = v
	case float32:
		f = float64(v)
	default:
		return "", false
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !math.IsInf(f, 0) && !math.IsNaN(f) && !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s, true
}

func parseBool(token string) (any, error) {
	b, err := strconv.ParseBool(strings.TrimSpace(token))
	if err != nil {
		return nil, fmt.Errorf("invalid bool %q: %w", token, err)
	}
	return b, nil
}

func formatBool(value any) (string, bool) {
	b, ok := value.(bool)
	if !ok {
		return "", false
	}
	if b {
		return "True", true
	}
	return "False", true
}

func parseDate(token string) (any, error) {
	token = strings.TrimSpace(token)
	for _, layout := range []string{time.DateOnly, dateTimeLayout, time.RFC3339Nano} {
		if t, err := time.Parse(layout, token); err == nil {
			return t, nil
		}
	}
	return nil, fmt.Errorf("invalid date %q", token)
}

// formatDate writes plain dates for UTC midnight values and RFC3339 otherwise.
func formatDate(value any) (string, bool) {
	t, ok := value.(time.Time)
	if !ok {
		return "", false
	}
	if t.Location() == time.UTC && t.Equal(t.Truncate(24*time.Hour)) {
		return t.Format(time.DateOnly), true
	}
	return t.Format(time.RFC3339Nano), true
}

func parseNone(string) (any, error) {
	return nil, nil
}

func formatNone(value any) (string, bool) {
	if value != nil {
		return "", false
	}
	return noneToken, true
}
