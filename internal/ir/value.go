package ir

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// Value is a sealed interface representing scenario values.
// Only Undefined, Null, String, Int, Bool, Array and Object implement it.
// There is no float type: scenario traces must render identically on every run.
type Value interface {
	irValue() // Sealed - only these types implement it
}

// Undefined is the absence of a value. Writing it to a guarded property is
// what the ignore_initial_undefined option may suppress.
type Undefined struct{}

func (Undefined) irValue() {}

// Null is an explicit null. Unlike Undefined it is an ordinary defined value.
type Null struct{}

func (Null) irValue() {}

// String represents a string value.
type String string

func (String) irValue() {}

// Int represents an integer value. Always int64, never float64.
type Int int64

func (Int) irValue() {}

// Bool represents a boolean value.
type Bool bool

func (Bool) irValue() {}

// Array represents an ordered list of values.
type Array []Value

func (Array) irValue() {}

// Object represents a map of string keys to values.
// Use SortedKeys() for deterministic iteration.
type Object map[string]Value

func (Object) irValue() {}

// SortedKeys returns the object keys in lexicographic order.
func (o Object) SortedKeys() []string {
	keys := make([]string, 0, len(o))
	for k := range o {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// FromYAML converts a value decoded by gopkg.in/yaml.v3 into a Value.
// YAML null becomes Null. Non-integral numbers are rejected.
func FromYAML(val any) (Value, error) {
	if val == nil {
		return Null{}, nil
	}

	switch v := val.(type) {
	case Value:
		return v, nil
	case string:
		return String(v), nil
	case int:
		return Int(int64(v)), nil
	case int64:
		return Int(v), nil
	case uint64:
		if v > 1<<63-1 {
			return nil, fmt.Errorf("integer %d overflows int64", v)
		}
		return Int(int64(v)), nil
	case float64:
		// Integral floats are accepted; anything else is forbidden.
		if v == float64(int64(v)) {
			return Int(int64(v)), nil
		}
		return nil, fmt.Errorf("floats are not supported in scenarios: %v", v)
	case bool:
		return Bool(v), nil
	case []any:
		arr := make(Array, len(v))
		for i, elem := range v {
			e, err := FromYAML(elem)
			if err != nil {
				return nil, fmt.Errorf("array[%d]: %w", i, err)
			}
			arr[i] = e
		}
		return arr, nil
	case map[string]any:
		obj := make(Object, len(v))
		for key, elem := range v {
			e, err := FromYAML(elem)
			if err != nil {
				return nil, fmt.Errorf("field %q: %w", key, err)
			}
			obj[key] = e
		}
		return obj, nil
	default:
		return nil, fmt.Errorf("unsupported type %T", val)
	}
}

// Render formats a value deterministically for traces, golden files and
// the store. Strings are Go-quoted, object keys are sorted, and Undefined
// renders as "undefined".
func Render(v Value) string {
	var b strings.Builder
	render(&b, v)
	return b.String()
}

func render(b *strings.Builder, v Value) {
	switch val := v.(type) {
	case nil, Undefined:
		b.WriteString("undefined")
	case Null:
		b.WriteString("null")
	case String:
		b.WriteString(strconv.Quote(string(val)))
	case Int:
		b.WriteString(strconv.FormatInt(int64(val), 10))
	case Bool:
		b.WriteString(strconv.FormatBool(bool(val)))
	case Array:
		b.WriteByte('[')
		for i, elem := range val {
			if i > 0 {
				b.WriteString(", ")
			}
			render(b, elem)
		}
		b.WriteByte(']')
	case Object:
		b.WriteByte('{')
		for i, k := range val.SortedKeys() {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(strconv.Quote(k))
			b.WriteString(": ")
			render(b, val[k])
		}
		b.WriteByte('}')
	}
}

// Equal reports whether two values are structurally equal.
// A nil Value is treated as Undefined.
func Equal(a, b Value) bool {
	return Render(a) == Render(b)
}
