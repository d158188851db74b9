// SPDX-FileCopyrightText: Copyright (c) 2016-2025, CloudZero, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package types

import (
	"fmt"
	"time"
)

// Signal is a sampled signal, either as acquired or after processing.
type Signal struct {
	ID          string    `cbor:"id" json:"id"`
	Comment     string    `cbor:"comment" json:"comment"`
	AcquiredAt  time.Time `cbor:"acquired_at" json:"acquired_at"`
	SampleRate  float64   `cbor:"sample_rate" json:"sample_rate"`
	Processed   bool      `cbor:"processed" json:"processed"`
	SampleCount int       `cbor:"sample_count" json:"sample_count"`
	Source      Source    `cbor:"source" json:"source"`
	Values      []float64 `cbor:"values" json:"values"`
}

// Source identifies where a signal was acquired from.
type Source struct {
	Name    string `cbor:"name" json:"name"`
	Channel int    `cbor:"channel" json:"channel"`
	Sensor  Sensor `cbor:"sensor" json:"sensor"`
}

// Sensor describes the probe attached to a source channel.
type Sensor struct {
	Model string  `cbor:"model" json:"model"`
	Gain  float64 `cbor:"gain" json:"gain"`
}

var (
	signalSchema = Schema{
		Scalar("id", TypeStr),
		Scalar("comment", TypeStr),
		Scalar("acquired_at", TypeDate),
		Scalar("sample_rate", TypeFloat),
		Scalar("processed", TypeBool),
		Scalar("sample_count", TypeInt),
		Composite("source"),
		Collection("values", TypeFloat),
	}
	sourceSchema = Schema{
		Scalar("name", TypeStr),
		Scalar("channel", TypeInt),
		Composite("sensor"),
	}
	sensorSchema = Schema{
		Scalar("model", TypeStr),
		Scalar("gain", TypeFloat),
	}
)

// NewSignal returns a zero-valued signal, suitable as a retrieval template.
func NewSignal() *Signal {
	return &Signal{}
}

// EntityID implements Identifiable.
func (s *Signal) EntityID() string { return s.ID }

// Schema implements Entity.
func (s *Signal) Schema() Schema { return signalSchema }

// Field implements Entity.
func (s *Signal) Field(name string) (any, bool) {
	switch name {
	case "id":
		return s.ID, true
	case "comment":
		return s.Comment, true
	case "acquired_at":
		return s.AcquiredAt, true
	case "sample_rate":
		return s.SampleRate, true
	case "processed":
		return s.Processed, true
	case "sample_count":
		return s.SampleCount, true
	case "source":
		return &s.Source, true
	case "values":
		out := make([]any, len(s.Values))
		for i, v := range s.Values {
			out[i] = v
		}
		return out, true
	}
	return nil, false
}

// SetField implements Entity.
func (s *Signal) SetField(name string, value any) error {
	switch name {
	case "id":
		return assign(&s.ID, name, value)
	case "comment":
		return assign(&s.Comment, name, value)
	case "acquired_at":
		return assign(&s.AcquiredAt, name, value)
	case "sample_rate":
		return assign(&s.SampleRate, name, value)
	case "processed":
		return assign(&s.Processed, name, value)
	case "sample_count":
		return assign(&s.SampleCount, name, value)
	case "source":
		switch v := value.(type) {
		case *Source:
			s.Source = *v
		case Source:
			s.Source = v
		default:
			return fieldTypeError(name, value)
		}
		return nil
	case "values":
		switch v := value.(type) {
		case nil:
			s.Values = nil
		case []float64:
			s.Values = append([]float64(nil), v...)
		case []any:
			if len(v) == 0 {
				s.Values = nil
				return nil
			}
			values := make([]float64, 0, len(v))
			for _, elem := range v {
				f, ok := elem.(float64)
				if !ok {
					return fieldTypeError(name, elem)
				}
				values = append(values, f)
			}
			s.Values = values
		default:
			return fieldTypeError(name, value)
		}
		return nil
	}
	return unknownFieldError(name)
}

// AppendElement implements Entity.
func (s *Signal) AppendElement(name string, value any) error {
	if name != "values" {
		return unknownFieldError(name)
	}
	f, ok := value.(float64)
	if !ok {
		return fieldTypeError(name, value)
	}
	s.Values = append(s.Values, f)
	return nil
}

// Schema implements Entity.
func (s *Source) Schema() Schema { return sourceSchema }

// Field implements Entity.
func (s *Source) Field(name string) (any, bool) {
	switch name {
	case "name":
		return s.Name, true
	case "channel":
		return s.Channel, true
	case "sensor":
		return &s.Sensor, true
	}
	return nil, false
}

// SetField implements Entity.
func (s *Source) SetField(name string, value any) error {
	switch name {
	case "name":
		return assign(&s.Name, name, value)
	case "channel":
		return assign(&s.Channel, name, value)
	case "sensor":
		switch v := value.(type) {
		case *Sensor:
			s.Sensor = *v
		case Sensor:
			s.Sensor = v
		default:
			return fieldTypeError(name, value)
		}
		return nil
	}
	return unknownFieldError(name)
}

// AppendElement implements Entity. Source has no collections.
func (s *Source) AppendElement(name string, _ any) error {
	return unknownFieldError(name)
}

// Schema implements Entity.
func (s *Sensor) Schema() Schema { return sensorSchema }

// Field implements Entity.
func (s *Sensor) Field(name string) (any, bool) {
	switch name {
	case "model":
		return s.Model, true
	case "gain":
		return s.Gain, true
	}
	return nil, false
}

// SetField implements Entity.
func (s *Sensor) SetField(name string, value any) error {
	switch name {
	case "model":
		return assign(&s.Model, name, value)
	case "gain":
		return assign(&s.Gain, name, value)
	}
	return unknownFieldError(name)
}

// AppendElement implements Entity. Sensor has no collections.
func (s *Sensor) AppendElement(name string, _ any) error {
	return unknownFieldError(name)
}

func assign[T any](dst *T, name string, value any) error {
	v, ok := value.(T)
	if !ok {
		return fieldTypeError(name, value)
	}
	*dst = v
	return nil
}

func fieldTypeError(name string, value any) error {
	return fmt.Errorf("%w: field %q cannot hold %T", ErrInvalidData, name, value)
}

func unknownFieldError(name string) error {
	return fmt.Errorf("%w: unknown field %q", ErrInvalidData, name)
}
