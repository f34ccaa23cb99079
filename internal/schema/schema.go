// Package schema defines the target field schema for normalization and the
// structured record the pipeline produces. The schema is fixed at startup
// (configuration, not runtime input) and read-only afterwards.
package schema

import (
	"fmt"
	"regexp"
)

// FieldKind selects the format expectation attached to a field.
type FieldKind string

const (
	Text    FieldKind = "text"    // free text, no format check
	Date    FieldKind = "date"    // must parse under a recognized date grammar
	Pattern FieldKind = "pattern" // must match the field's regexp
)

// Field is one expected field: name, format expectation, required flag.
type Field struct {
	Name     string    `json:"name" yaml:"name"`
	Kind     FieldKind `json:"kind" yaml:"kind"`
	Required bool      `json:"required" yaml:"required"`
	Pattern  string    `json:"pattern,omitempty" yaml:"pattern,omitempty"` // kind=pattern only
}

// FieldSchema is an ordered set of fields. Findings and report lines follow
// the field order.
type FieldSchema struct {
	fields   []Field
	index    map[string]int
	patterns map[string]*regexp.Regexp
}

// New builds a FieldSchema from an ordered field list. The schema must be
// non-empty, names must be unique, and patterns must compile.
func New(fields ...Field) (*FieldSchema, error) {
	if len(fields) == 0 {
		return nil, fmt.Errorf("schema must have at least one field")
	}
	s := &FieldSchema{
		fields:   make([]Field, len(fields)),
		index:    make(map[string]int, len(fields)),
		patterns: make(map[string]*regexp.Regexp),
	}
	copy(s.fields, fields)
	for i, f := range s.fields {
		if f.Name == "" {
			return nil, fmt.Errorf("field %d: name is required", i)
		}
		if _, dup := s.index[f.Name]; dup {
			return nil, fmt.Errorf("duplicate field name %q", f.Name)
		}
		s.index[f.Name] = i

		switch f.Kind {
		case Text, Date:
		case Pattern:
			if f.Pattern == "" {
				return nil, fmt.Errorf("field %q: kind=pattern requires a pattern", f.Name)
			}
			re, err := regexp.Compile(f.Pattern)
			if err != nil {
				return nil, fmt.Errorf("field %q: compile pattern: %w", f.Name, err)
			}
			s.patterns[f.Name] = re
		case "":
			s.fields[i].Kind = Text
		default:
			return nil, fmt.Errorf("field %q: unknown kind %q", f.Name, f.Kind)
		}
	}
	return s, nil
}

// MustNew is New for schemas known at compile time.
func MustNew(fields ...Field) *FieldSchema {
	s, err := New(fields...)
	if err != nil {
		panic(err)
	}
	return s
}

// Fields returns the fields in schema order. The slice is a copy.
func (s *FieldSchema) Fields() []Field {
	out := make([]Field, len(s.fields))
	copy(out, s.fields)
	return out
}

// Names returns the field names in schema order.
func (s *FieldSchema) Names() []string {
	out := make([]string, len(s.fields))
	for i, f := range s.fields {
		out[i] = f.Name
	}
	return out
}

// Lookup returns the field definition by name.
func (s *FieldSchema) Lookup(name string) (Field, bool) {
	i, ok := s.index[name]
	if !ok {
		return Field{}, false
	}
	return s.fields[i], true
}

// CompiledPattern returns the compiled regexp for a kind=pattern field.
func (s *FieldSchema) CompiledPattern(name string) *regexp.Regexp {
	return s.patterns[name]
}

func (s *FieldSchema) Len() int {
	return len(s.fields)
}

// Default is the identity-document schema: the fields a KYC audit needs,
// with a permissive id format (alphanumeric/hyphen, length >= 5).
func Default() *FieldSchema {
	return MustNew(
		Field{Name: "name", Kind: Text, Required: true},
		Field{Name: "dob", Kind: Date, Required: true},
		Field{Name: "id_number", Kind: Pattern, Required: true, Pattern: `^[A-Za-z0-9\-]{5,}$`},
		Field{Name: "address", Kind: Text, Required: true},
		Field{Name: "document_type", Kind: Text},
		Field{Name: "email", Kind: Text},
		Field{Name: "phone", Kind: Text},
		Field{Name: "nationality", Kind: Text},
	)
}
