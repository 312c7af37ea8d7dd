package record

import (
	"fmt"

	"github.com/google/go-cmp/cmp"
)

// Field describes how one attribute of T moves between its in-memory form
// and its wire form.
type Field[T any] struct {
	// Name is the wire key.
	Name string

	// Encode returns the wire value and whether the attribute is set.
	// Unset attributes are omitted from ToDict output.
	Encode func(v *T) (any, bool)

	// Decode stores a non-nil wire value into v.
	Decode func(v *T, raw any) error

	// Default, if set, runs when the key is absent or null on decode.
	Default func(v *T)
}

// Schema is the static codec table for a record type.
type Schema[T any] struct {
	name   string
	fields []Field[T]
	index  map[string]int
	extras func(v *T) *map[string]any
}

// NewSchema builds a codec table. Field names must be unique.
func NewSchema[T any](name string, fields ...Field[T]) *Schema[T] {
	s := &Schema[T]{
		name:   name,
		fields: fields,
		index:  make(map[string]int, len(fields)),
	}
	for i, f := range fields {
		if _, dup := s.index[f.Name]; dup {
			panic(fmt.Sprintf("record: duplicate field %q in schema %s", f.Name, name))
		}
		s.index[f.Name] = i
	}
	return s
}

// WithExtras makes the schema keep unknown keys in the map returned by fn
// instead of dropping them.
func (s *Schema[T]) WithExtras(fn func(v *T) *map[string]any) *Schema[T] {
	s.extras = fn
	return s
}

// Name returns the record name used in error messages.
func (s *Schema[T]) Name() string {
	return s.name
}

// Keys returns the wire keys in declaration order.
func (s *Schema[T]) Keys() []string {
	keys := make([]string, len(s.fields))
	for i, f := range s.fields {
		keys[i] = f.Name
	}
	return keys
}

// Known reports whether key is a declared field.
func (s *Schema[T]) Known(key string) bool {
	_, ok := s.index[key]
	return ok
}

// ToDict encodes v, emitting set attributes and any retained extras.
func (s *Schema[T]) ToDict(v *T) map[string]any {
	out := make(map[string]any)
	if v == nil {
		return out
	}
	for _, f := range s.fields {
		if val, ok := f.Encode(v); ok {
			out[f.Name] = val
		}
	}
	if s.extras != nil {
		if extra := s.extras(v); extra != nil {
			for k, val := range *extra {
				if !s.Known(k) {
					out[k] = DeepCopy(val)
				}
			}
		}
	}
	return out
}

// FromDict decodes a new record from m.
func (s *Schema[T]) FromDict(m map[string]any) (*T, error) {
	v := new(T)
	if err := s.Decode(v, m); err != nil {
		return nil, err
	}
	return v, nil
}

// Decode populates v from m. Absent and null keys take the field default.
func (s *Schema[T]) Decode(v *T, m map[string]any) error {
	for _, f := range s.fields {
		raw, ok := m[f.Name]
		if !ok || raw == nil {
			if f.Default != nil {
				f.Default(v)
			}
			continue
		}
		if err := f.Decode(v, raw); err != nil {
			return &DecodeError{Record: s.name, Field: f.Name, Err: err}
		}
	}
	if s.extras == nil {
		return nil
	}
	extra := s.extras(v)
	for k, raw := range m {
		if s.Known(k) {
			continue
		}
		if *extra == nil {
			*extra = make(map[string]any)
		}
		(*extra)[k] = DeepCopy(raw)
	}
	return nil
}

// Clone returns an independent copy of v through its wire form.
func (s *Schema[T]) Clone(v *T) (*T, error) {
	if v == nil {
		return nil, nil
	}
	return s.FromDict(s.ToDict(v))
}

// Equal compares the encoded attribute sets of a and b.
func (s *Schema[T]) Equal(a, b *T) bool {
	return cmp.Equal(s.ToDict(a), s.ToDict(b))
}

// Diff returns a human-readable difference between the wire forms of a and b,
// or "" when they are equal.
func (s *Schema[T]) Diff(a, b *T) string {
	return cmp.Diff(s.ToDict(a), s.ToDict(b))
}

// DecodeError reports a wire value that could not be coerced to its field.
type DecodeError struct {
	Record string
	Field  string
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode %s.%s: %v", e.Record, e.Field, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
