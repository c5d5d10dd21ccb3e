package schema

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/aretw0/vigil/pkg/object"
)

// Type validates property values.
type Type interface {
	// Name returns the type as written in type maps, e.g. "[int]".
	Name() string
	Validate(value any) error
}

// scalar is a named predicate over values.
type scalar struct {
	name  string
	check func(v any) bool
}

func (t scalar) Name() string { return t.name }

func (t scalar) Validate(v any) error {
	if t.check(v) {
		return nil
	}
	if v == nil {
		return fmt.Errorf("expected %s, got nil", t.name)
	}
	return fmt.Errorf("expected %s, got %T", t.name, v)
}

func isString(v any) bool {
	_, ok := v.(string)
	return ok
}

// isInt accepts whole floats, as decoded from JSON and YAML.
func isInt(v any) bool {
	switch n := v.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return true
	case float64:
		return n == float64(int64(n))
	}
	return false
}

func isFloat(v any) bool {
	switch v.(type) {
	case float32, float64:
		return true
	}
	return isInt(v)
}

func isBool(v any) bool {
	_, ok := v.(bool)
	return ok
}

// String accepts strings.
func String() Type { return scalar{"string", isString} }

// Int accepts integers and whole floats.
func Int() Type { return scalar{"int", isInt} }

// Float accepts any number.
func Float() Type { return scalar{"float", isFloat} }

// Bool accepts booleans.
func Bool() Type { return scalar{"bool", isBool} }

// Method accepts object.Func values.
func Method() Type { return scalar{"method", object.IsCallable} }

// Any accepts every value, including nil.
func Any() Type { return scalar{"any", func(any) bool { return true }} }

type sliceType struct{ elem Type }

// Slice accepts slices and arrays whose elements all satisfy elem.
func Slice(elem Type) Type { return sliceType{elem} }

func (t sliceType) Name() string { return "[" + t.elem.Name() + "]" }

func (t sliceType) Validate(v any) error {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() || (rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array) {
		return fmt.Errorf("expected %s, got %T", t.Name(), v)
	}
	for i := 0; i < rv.Len(); i++ {
		if err := t.elem.Validate(rv.Index(i).Interface()); err != nil {
			return fmt.Errorf("element %d: %w", i, err)
		}
	}
	return nil
}

type nullable struct{ inner Type }

// Nullable accepts nil in addition to the values of inner.
func Nullable(inner Type) Type { return nullable{inner} }

func (t nullable) Name() string { return "?" + t.inner.Name() }

func (t nullable) Validate(v any) error {
	if v == nil {
		return nil
	}
	return t.inner.Validate(v)
}

// Custom wraps a validation function under a name. Custom types cannot be parsed back from
// their name.
func Custom(name string, validate func(any) error) Type {
	return custom{name, validate}
}

type custom struct {
	name     string
	validate func(any) error
}

func (t custom) Name() string         { return t.name }
func (t custom) Validate(v any) error { return t.validate(v) }

// ParseType converts a type name to a Type.
func ParseType(name string) (Type, error) {
	name = strings.TrimSpace(name)
	switch {
	case strings.HasPrefix(name, "?"):
		inner, err := ParseType(name[1:])
		if err != nil {
			return nil, err
		}
		return Nullable(inner), nil
	case len(name) > 2 && name[0] == '[' && name[len(name)-1] == ']':
		elem, err := ParseType(name[1 : len(name)-1])
		if err != nil {
			return nil, err
		}
		return Slice(elem), nil
	}

	switch name {
	case "string":
		return String(), nil
	case "int":
		return Int(), nil
	case "float", "number":
		return Float(), nil
	case "bool":
		return Bool(), nil
	case "method":
		return Method(), nil
	case "any":
		return Any(), nil
	}
	return nil, fmt.Errorf("unsupported type: %s", name)
}
