// SPDX-FileCopyrightText: Copyright (c) 2016-2025, CloudZero, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package mapper converts entity graphs to and from the flat text record format
// used by the text storage context.
//
// Record format, one entity per record:
//
//	id:7,comment:test,
//	values>0:1.0
//	values>1:2.5
//	source,name:probe,channel:3,
//	source.sensor,model:x1,gain:0.5,
//
// The first line holds the top-level scalar fields as name:value pairs, each
// followed by a comma. Every collection element gets its own line in
// name>index:value notation, in index order. A nested entity is written on its
// own lines, prefixed by the dotted path of field names that leads to it.
//
// Values are not escaped: a value containing a comma or a line break cannot be
// represented and Marshal rejects it.
//
// Decoding is driven by the template's Schema with exact field-name lookup.
// Tokens that cannot be applied are skipped and listed in the returned
// types.DecodeReport; WithStrict turns any skipped token into a
// *types.FormatError.
package mapper

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cloudzero/signal-store/app/types"
)

const (
	pairSeparator    = ","
	valueSeparator   = ":"
	elementSeparator = ">"
	pathSeparator    = "."
	lineTerminator   = "\n"
)

// Mapper serializes entities into records and reconstructs them from records.
type Mapper struct {
	registry *Registry
	strict   bool
}

// Option configures a Mapper.
type Option func(m *Mapper)

// WithRegistry sets the type registry used for scalar conversion.
func WithRegistry(r *Registry) Option {
	return func(m *Mapper) {
		m.registry = r
	}
}

// WithStrict makes Unmarshal fail with a *types.FormatError when any token is
// skipped. The partially filled template and the report are still returned.
func WithStrict() Option {
	return func(m *Mapper) {
		m.strict = true
	}
}

// New creates a Mapper.
func New(opts ...Option) *Mapper {
	m := &Mapper{registry: DefaultRegistry}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Marshal returns the record text of value.
//
// A base-type value is returned in its text form. An entity is written as a
// full record, recursing into nested entities.
func (m *Mapper) Marshal(value any) (string, error) {
	if e, ok := value.(types.Entity); ok {
		var b strings.Builder
		if err := m.marshalEntity(&b, e, ""); err != nil {
			return "", err
		}
		return b.String(), nil
	}
	return m.formatScalar("", value)
}

func (m *Mapper) marshalEntity(b *strings.Builder, e types.Entity, path string) error {
	type nestedEntity struct {
		path   string
		entity types.Entity
	}
	var (
		collections []types.Field
		nested      []nestedEntity
	)

	if path != "" {
		b.WriteString(path)
		b.WriteString(pairSeparator)
	}

	for _, f := range e.Schema() {
		value, ok := e.Field(f.Name)
		if !ok {
			return fmt.Errorf("%w: schema field %q has no value", types.ErrInvalidData, f.Name)
		}

		switch f.Kind {
		case types.KindScalar:
			s, err := m.formatScalar(f.Name, value)
			if err != nil {
				return err
			}
			b.WriteString(f.Name)
			b.WriteString(valueSeparator)
			b.WriteString(s)
			b.WriteString(pairSeparator)
		case types.KindCollection:
			collections = append(collections, f)
		case types.KindComposite:
			child, isEntity := value.(types.Entity)
			if !isEntity {
				return fmt.Errorf("%w: composite field %q holds %T", types.ErrInvalidData, f.Name, value)
			}
			nested = append(nested, nestedEntity{path: joinPath(path, f.Name), entity: child})
		}
	}
	b.WriteString(lineTerminator)

	for _, f := range collections {
		value, _ := e.Field(f.Name)
		elements, ok := value.([]any)
		if !ok && value != nil {
			return fmt.Errorf("%w: collection field %q holds %T", types.ErrInvalidData, f.Name, value)
		}
		for i, elem := range elements {
			s, err := m.formatScalar(f.Name, elem)
			if err != nil {
				return err
			}
			if path != "" {
				b.WriteString(path)
				b.WriteString(pairSeparator)
			}
			b.WriteString(f.Name)
			b.WriteString(elementSeparator)
			b.WriteString(strconv.Itoa(i))
			b.WriteString(valueSeparator)
			b.WriteString(s)
			b.WriteString(lineTerminator)
		}
	}

	for _, n := range nested {
		if err := m.marshalEntity(b, n.entity, n.path); err != nil {
			return err
		}
	}
	return nil
}

func (m *Mapper) formatScalar(name string, value any) (string, error) {
	s, ok := m.registry.Format(value)
	if !ok {
		return "", &types.FormatError{Err: fmt.Errorf("%w: field %q holds %T", types.ErrUnsupportedValue, name, value)}
	}
	if strings.ContainsAny(s, ",\r\n") {
		return "", &types.FormatError{Err: fmt.Errorf("%w: field %q value %q contains a separator", types.ErrUnsupportedValue, name, s)}
	}
	return s, nil
}

// Unmarshal fills template from a record and returns it along with a report of
// skipped tokens.
//
// The template is modified in place: collections are emptied first, then every
// applicable token is written into it. The caller must not reuse the template
// for another record.
func (m *Mapper) Unmarshal(template types.Entity, text string) (types.DecodeReport, error) {
	var report types.DecodeReport

	if err := types.ResetCollections(template); err != nil {
		return report, err
	}

	for i, raw := range strings.Split(text, lineTerminator) {
		lineNo := i + 1
		line := strings.TrimSuffix(raw, "\r")
		if line == "" {
			continue
		}

		tokens := strings.Split(line, pairSeparator)
		target := template
		if first := tokens[0]; first != "" && !strings.Contains(first, valueSeparator) {
			// an unresolvable prefix is a malformed token; the rest of the
			// line still applies to the top-level entity.
			if nested, err := resolvePath(template, first); err != nil {
				report.Skipped = append(report.Skipped, skipped(lineNo, first, "%v", err))
			} else {
				target = nested
			}
			tokens = tokens[1:]
		}

		for _, tok := range tokens {
			if tok == "" {
				continue
			}
			if reason := m.applyToken(target, tok); reason != "" {
				report.Skipped = append(report.Skipped, types.SkippedToken{Line: lineNo, Token: tok, Reason: reason})
			}
		}
	}

	if m.strict && report.Partial() {
		return report, &types.FormatError{Report: report}
	}
	return report, nil
}

// applyToken writes a single name:value or name>index:value token into target,
// returning a non-empty reason when the token has to be skipped.
func (m *Mapper) applyToken(target types.Entity, tok string) string {
	key, value, found := strings.Cut(tok, valueSeparator)
	if !found {
		return "missing ':' separator"
	}

	name, index, isElement := strings.Cut(key, elementSeparator)
	f, ok := target.Schema().Lookup(name)
	if !ok {
		return fmt.Sprintf("unknown field %q", name)
	}

	if isElement {
		if f.Kind != types.KindCollection {
			return fmt.Sprintf("field %q is not a collection", name)
		}
		if _, err := strconv.Atoi(index); err != nil {
			return fmt.Sprintf("invalid element index %q", index)
		}
		v, reason := m.parse(f.ElemType(), value)
		if reason != "" {
			return reason
		}
		if err := target.AppendElement(name, v); err != nil {
			return err.Error()
		}
		return ""
	}

	if f.Kind != types.KindScalar {
		return fmt.Sprintf("field %q is a %s", name, f.Kind)
	}
	v, reason := m.parse(f.Type, value)
	if reason != "" {
		return reason
	}
	if err := target.SetField(name, v); err != nil {
		return err.Error()
	}
	return ""
}

func (m *Mapper) parse(t types.BaseType, token string) (any, string) {
	if !m.registry.Known(t) {
		return nil, fmt.Sprintf("unknown type %q", t)
	}
	v, err := m.registry.Parse(t, token)
	if err != nil {
		return nil, err.Error()
	}
	return v, ""
}

func resolvePath(root types.Entity, path string) (types.Entity, error) {
	current := root
	for _, name := range strings.Split(path, pathSeparator) {
		f, ok := current.Schema().Lookup(name)
		if !ok || f.Kind != types.KindComposite {
			return nil, fmt.Errorf("unknown nested field %q", name)
		}
		value, _ := current.Field(name)
		child, ok := value.(types.Entity)
		if !ok {
			return nil, fmt.Errorf("nested field %q holds %T", name, value)
		}
		current = child
	}
	return current, nil
}

func joinPath(parent, name string) string {
	if parent == "" {
		return name
	}
	return parent + pathSeparator + name
}

func skipped(line int, tok, format string, args ...any) types.SkippedToken {
	return types.SkippedToken{Line: line, Token: tok, Reason: fmt.Sprintf(format, args...)}
}
