package record

import (
	"fmt"
	"reflect"

	"github.com/spf13/cast"
)

// String declares a string-like field. The empty string is unset.
func String[T any, S ~string](name string, get func(v *T) *S) Field[T] {
	return Field[T]{
		Name: name,
		Encode: func(v *T) (any, bool) {
			s := *get(v)
			return string(s), s != ""
		},
		Decode: func(v *T, raw any) error {
			s, err := cast.ToStringE(raw)
			if err != nil {
				return err
			}
			*get(v) = S(s)
			return nil
		},
	}
}

// Int declares an int field. Zero is unset.
func Int[T any](name string, get func(v *T) *int) Field[T] {
	return Field[T]{
		Name: name,
		Encode: func(v *T) (any, bool) {
			n := *get(v)
			return n, n != 0
		},
		Decode: func(v *T, raw any) error {
			n, err := cast.ToIntE(raw)
			if err != nil {
				return err
			}
			*get(v) = n
			return nil
		},
	}
}

// Int64 declares an int64 field. Zero is unset.
func Int64[T any](name string, get func(v *T) *int64) Field[T] {
	return Field[T]{
		Name: name,
		Encode: func(v *T) (any, bool) {
			n := *get(v)
			return n, n != 0
		},
		Decode: func(v *T, raw any) error {
			n, err := cast.ToInt64E(raw)
			if err != nil {
				return err
			}
			*get(v) = n
			return nil
		},
	}
}

// Bool declares a bool field. False is unset.
func Bool[T any](name string, get func(v *T) *bool) Field[T] {
	return Field[T]{
		Name: name,
		Encode: func(v *T) (any, bool) {
			b := *get(v)
			return b, b
		},
		Decode: func(v *T, raw any) error {
			b, err := cast.ToBoolE(raw)
			if err != nil {
				return err
			}
			*get(v) = b
			return nil
		},
	}
}

// OptBool declares a tri-state bool field. Nil is unset.
func OptBool[T any](name string, get func(v *T) **bool) Field[T] {
	return Field[T]{
		Name: name,
		Encode: func(v *T) (any, bool) {
			p := *get(v)
			if p == nil {
				return nil, false
			}
			return *p, true
		},
		Decode: func(v *T, raw any) error {
			b, err := cast.ToBoolE(raw)
			if err != nil {
				return err
			}
			*get(v) = &b
			return nil
		},
	}
}

// Float declares an optional float field. Nil is unset.
func Float[T any](name string, get func(v *T) **float64) Field[T] {
	return Field[T]{
		Name: name,
		Encode: func(v *T) (any, bool) {
			p := *get(v)
			if p == nil {
				return nil, false
			}
			return *p, true
		},
		Decode: func(v *T, raw any) error {
			f, err := cast.ToFloat64E(raw)
			if err != nil {
				return err
			}
			*get(v) = &f
			return nil
		},
	}
}

// Strings declares a list of string-like values. Nil is unset; an empty
// list is set and encodes to an empty sequence.
func Strings[T any, S ~string](name string, get func(v *T) *[]S) Field[T] {
	return Field[T]{
		Name: name,
		Encode: func(v *T) (any, bool) {
			list := *get(v)
			if list == nil {
				return nil, false
			}
			out := make([]string, len(list))
			for i, s := range list {
				out[i] = string(s)
			}
			return out, true
		},
		Decode: func(v *T, raw any) error {
			items, err := ToList(raw)
			if err != nil {
				return err
			}
			out := make([]S, 0, len(items))
			for i, item := range items {
				s, err := cast.ToStringE(item)
				if err != nil {
					return fmt.Errorf("element %d: %w", i, err)
				}
				out = append(out, S(s))
			}
			*get(v) = out
			return nil
		},
	}
}

// Set declares an IntSet field. Unset encodes to an empty sequence and an
// absent key decodes to an empty set, so a second round trip is a no-op.
func Set[T any](name string, get func(v *T) *IntSet) Field[T] {
	return Field[T]{
		Name: name,
		Encode: func(v *T) (any, bool) {
			return (*get(v)).Sorted(), true
		},
		Decode: func(v *T, raw any) error {
			items, err := ToList(raw)
			if err != nil {
				return err
			}
			set := NewIntSet()
			for i, item := range items {
				n, err := cast.ToIntE(item)
				if err != nil {
					return fmt.Errorf("element %d: %w", i, err)
				}
				set.Add(n)
			}
			*get(v) = set
			return nil
		},
		Default: func(v *T) {
			*get(v) = NewIntSet()
		},
	}
}

// Params declares a free-form parameter map. Nil is unset.
func Params[T any, P ~map[string]any](name string, get func(v *T) *P) Field[T] {
	return Field[T]{
		Name: name,
		Encode: func(v *T) (any, bool) {
			p := *get(v)
			if p == nil {
				return nil, false
			}
			return CopyMap(p), true
		},
		Decode: func(v *T, raw any) error {
			m, err := ToMap(raw)
			if err != nil {
				return err
			}
			*get(v) = P(CopyMap(m))
			return nil
		},
	}
}

// ParamsMap declares a parameter map keyed by a string-like type, such as
// hypervisor parameters keyed by hypervisor.
func ParamsMap[T any, K ~string, P ~map[string]any](name string, get func(v *T) *map[K]P) Field[T] {
	return Field[T]{
		Name: name,
		Encode: func(v *T) (any, bool) {
			pm := *get(v)
			if pm == nil {
				return nil, false
			}
			return encodeParamsMap(pm), true
		},
		Decode: func(v *T, raw any) error {
			pm, err := decodeParamsMap[K, P](raw)
			if err != nil {
				return err
			}
			*get(v) = pm
			return nil
		},
	}
}

// ParamsMapMap declares a two-level keyed parameter map.
func ParamsMapMap[T any, K1 ~string, K2 ~string, P ~map[string]any](name string, get func(v *T) *map[K1]map[K2]P) Field[T] {
	return Field[T]{
		Name: name,
		Encode: func(v *T) (any, bool) {
			outer := *get(v)
			if outer == nil {
				return nil, false
			}
			out := make(map[string]any, len(outer))
			for k, inner := range outer {
				out[string(k)] = encodeParamsMap(inner)
			}
			return out, true
		},
		Decode: func(v *T, raw any) error {
			m, err := ToMap(raw)
			if err != nil {
				return err
			}
			out := make(map[K1]map[K2]P, len(m))
			for k, item := range m {
				if item == nil {
					continue
				}
				inner, err := decodeParamsMap[K2, P](item)
				if err != nil {
					return fmt.Errorf("key %q: %w", k, err)
				}
				out[K1(k)] = inner
			}
			*get(v) = out
			return nil
		},
	}
}

func encodeParamsMap[K ~string, P ~map[string]any](pm map[K]P) map[string]any {
	out := make(map[string]any, len(pm))
	for k, p := range pm {
		out[string(k)] = CopyMap(p)
	}
	return out
}

func decodeParamsMap[K ~string, P ~map[string]any](raw any) (map[K]P, error) {
	m, err := ToMap(raw)
	if err != nil {
		return nil, err
	}
	out := make(map[K]P, len(m))
	for k, item := range m {
		if item == nil {
			out[K(k)] = P{}
			continue
		}
		p, err := ToMap(item)
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", k, err)
		}
		out[K(k)] = P(CopyMap(p))
	}
	return out, nil
}

// Object declares a nested record. Nil is unset.
func Object[T, U any](name string, schema *Schema[U], get func(v *T) **U) Field[T] {
	return Field[T]{
		Name: name,
		Encode: func(v *T) (any, bool) {
			p := *get(v)
			if p == nil {
				return nil, false
			}
			return schema.ToDict(p), true
		},
		Decode: func(v *T, raw any) error {
			m, err := ToMap(raw)
			if err != nil {
				return err
			}
			obj, err := schema.FromDict(m)
			if err != nil {
				return err
			}
			*get(v) = obj
			return nil
		},
	}
}

// ObjectList declares an ordered list of nested records. The schema is
// resolved lazily so that recursive records can refer to their own schema.
func ObjectList[T, U any](name string, schema func() *Schema[U], get func(v *T) *[]*U) Field[T] {
	return Field[T]{
		Name: name,
		Encode: func(v *T) (any, bool) {
			list := *get(v)
			if list == nil {
				return nil, false
			}
			s := schema()
			out := make([]any, len(list))
			for i, item := range list {
				out[i] = s.ToDict(item)
			}
			return out, true
		},
		Decode: func(v *T, raw any) error {
			items, err := ToList(raw)
			if err != nil {
				return err
			}
			s := schema()
			out := make([]*U, 0, len(items))
			for i, item := range items {
				m, err := ToMap(item)
				if err != nil {
					return fmt.Errorf("element %d: %w", i, err)
				}
				obj, err := s.FromDict(m)
				if err != nil {
					return fmt.Errorf("element %d: %w", i, err)
				}
				out = append(out, obj)
			}
			*get(v) = out
			return nil
		},
	}
}

// ObjectMap declares nested records keyed by a string-like type.
func ObjectMap[T any, K ~string, U any](name string, schema *Schema[U], get func(v *T) *map[K]*U) Field[T] {
	return Field[T]{
		Name: name,
		Encode: func(v *T) (any, bool) {
			m := *get(v)
			if m == nil {
				return nil, false
			}
			return encodeObjectMap(schema, m), true
		},
		Decode: func(v *T, raw any) error {
			m, err := decodeObjectMap[K](schema, raw)
			if err != nil {
				return err
			}
			*get(v) = m
			return nil
		},
	}
}

// ObjectMapMap declares nested records under a two-level key.
func ObjectMapMap[T any, K1 ~string, K2 ~string, U any](name string, schema *Schema[U], get func(v *T) *map[K1]map[K2]*U) Field[T] {
	return Field[T]{
		Name: name,
		Encode: func(v *T) (any, bool) {
			outer := *get(v)
			if outer == nil {
				return nil, false
			}
			out := make(map[string]any, len(outer))
			for k, inner := range outer {
				out[string(k)] = encodeObjectMap(schema, inner)
			}
			return out, true
		},
		Decode: func(v *T, raw any) error {
			m, err := ToMap(raw)
			if err != nil {
				return err
			}
			out := make(map[K1]map[K2]*U, len(m))
			for k, item := range m {
				if item == nil {
					continue
				}
				inner, err := decodeObjectMap[K2](schema, item)
				if err != nil {
					return fmt.Errorf("key %q: %w", k, err)
				}
				out[K1(k)] = inner
			}
			*get(v) = out
			return nil
		},
	}
}

func encodeObjectMap[K ~string, U any](schema *Schema[U], m map[K]*U) map[string]any {
	out := make(map[string]any, len(m))
	for k, obj := range m {
		out[string(k)] = schema.ToDict(obj)
	}
	return out
}

func decodeObjectMap[K ~string, U any](schema *Schema[U], raw any) (map[K]*U, error) {
	m, err := ToMap(raw)
	if err != nil {
		return nil, err
	}
	out := make(map[K]*U, len(m))
	for k, item := range m {
		var fields map[string]any
		if item != nil {
			if fields, err = ToMap(item); err != nil {
				return nil, fmt.Errorf("key %q: %w", k, err)
			}
		}
		obj, err := schema.FromDict(fields)
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", k, err)
		}
		out[K(k)] = obj
	}
	return out, nil
}

// ToMap coerces a wire value to a string-keyed map.
func ToMap(raw any) (map[string]any, error) {
	switch m := raw.(type) {
	case map[string]any:
		return m, nil
	case map[any]any:
		return cast.ToStringMapE(m)
	}
	rv := reflect.ValueOf(raw)
	if rv.Kind() == reflect.Map && rv.Type().Key().Kind() == reflect.String {
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out[iter.Key().String()] = iter.Value().Interface()
		}
		return out, nil
	}
	return nil, fmt.Errorf("expected a mapping, got %T", raw)
}

// ToList coerces a wire value to a list. Any slice or array kind is accepted.
func ToList(raw any) ([]any, error) {
	if l, ok := raw.([]any); ok {
		return l, nil
	}
	rv := reflect.ValueOf(raw)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, fmt.Errorf("expected a list, got %T", raw)
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, nil
}
