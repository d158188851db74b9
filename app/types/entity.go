// SPDX-FileCopyrightText: Copyright (c) 2016-2025, CloudZero, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package types

// BaseType names one of the primitive scalar types understood without recursion.
type BaseType string

const (
	TypeInt   BaseType = "int"
	TypeStr   BaseType = "str"
	TypeFloat BaseType = "float"
	TypeBool  BaseType = "bool"
	TypeDate  BaseType = "date"
	TypeNone  BaseType = "none"
)

// FieldKind describes how a field participates in serialization.
type FieldKind int

const (
	// KindScalar fields hold a single base-type value.
	KindScalar FieldKind = iota
	// KindComposite fields hold a nested Entity.
	KindComposite
	// KindCollection fields hold an ordered list of base-type values.
	KindCollection
)

// String returns the string representation of FieldKind
func (k FieldKind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindComposite:
		return "composite"
	case KindCollection:
		return "collection"
	default:
		return "unknown"
	}
}

// Field is one entry in an entity's field descriptor list.
//
// Type is only meaningful for scalars. Elem is the element type of a collection;
// an empty Elem decodes as TypeFloat for compatibility with records written before
// element types were declared.
type Field struct {
	Name string
	Kind FieldKind
	Type BaseType
	Elem BaseType
}

// ElemType returns the declared collection element type, defaulting to float.
func (f Field) ElemType() BaseType {
	if f.Elem == "" {
		return TypeFloat
	}
	return f.Elem
}

// Schema is the ordered list of fields of an entity type. Order is the
// serialization order.
type Schema []Field

// Lookup finds a field by exact name.
func (s Schema) Lookup(name string) (Field, bool) {
	for _, f := range s {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Scalar declares a scalar field.
func Scalar(name string, t BaseType) Field {
	return Field{Name: name, Kind: KindScalar, Type: t}
}

// Composite declares a nested entity field.
func Composite(name string) Field {
	return Field{Name: name, Kind: KindComposite}
}

// Collection declares an ordered collection field of the given element type.
func Collection(name string, elem BaseType) Field {
	return Field{Name: name, Kind: KindCollection, Elem: elem}
}

// Entity is an object graph that can be persisted by a StorageContext.
//
// Implementations expose their shape through Schema and their values through
// explicit accessors, so that the mapper never needs reflection. Values returned
// by Field are typed per the schema: base-type values for scalars, an Entity for
// composites and a []any for collections.
//
// Implementations are expected to be pointer types so that SetField and
// AppendElement mutate the receiver.
type Entity interface {
	Schema() Schema
	Field(name string) (any, bool)
	SetField(name string, value any) error
	AppendElement(name string, value any) error
}

// Identifiable is an Entity that knows the id it is stored under.
type Identifiable interface {
	Entity
	EntityID() string
}

// ResetCollections sets every collection field of e, and of the entities
// nested in it, to nil so that decoding fills them from scratch instead of appending
// to leftovers in a template.
func ResetCollections(e Entity) error {
	for _, f := range e.Schema() {
		switch f.Kind {
		case KindCollection:
			if err := e.SetField(f.Name, nil); err != nil {
				return err
			}
		case KindComposite:
			value, _ := e.Field(f.Name)
			if child, ok := value.(Entity); ok {
				if err := ResetCollections(child); err != nil {
					return err
				}
			}
		}
	}
	return nil
}
