package payload

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"strconv"
	"unicode/utf16"
)

// Value is a sealed interface over the value types a payload may carry.
// Floats and nulls are not representable: numbers that are not integral are
// kept as their literal text, nulls are dropped on conversion.
type Value interface {
	payloadValue()
}

// String is a string payload value.
type String string

func (String) payloadValue() {}

// Int is an integer payload value.
type Int int64

func (Int) payloadValue() {}

// Bool is a boolean payload value.
type Bool bool

func (Bool) payloadValue() {}

// List is an ordered list of payload values.
type List []Value

func (List) payloadValue() {}

// Map is a string-keyed mapping of payload values.
// Use SortedKeys for deterministic iteration.
type Map map[string]Value

func (Map) payloadValue() {}

// SortedKeys returns keys in RFC 8785 order (UTF-16 code units).
// Go's native string ordering compares UTF-8 bytes, which differs for
// characters outside the BMP.
func (m Map) SortedKeys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareUTF16)
	return keys
}

func compareUTF16(a, b string) int {
	a16 := utf16.Encode([]rune(a))
	b16 := utf16.Encode([]rune(b))

	n := min(len(a16), len(b16))
	for i := 0; i < n; i++ {
		if a16[i] != b16[i] {
			if a16[i] < b16[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(a16) < len(b16):
		return -1
	case len(a16) > len(b16):
		return 1
	}
	return 0
}

// MarshalJSON renders the map with sorted keys.
func (m Map) MarshalJSON() ([]byte, error) {
	return MarshalCanonical(m)
}

// MarshalJSON renders the list in canonical form.
func (l List) MarshalJSON() ([]byte, error) {
	return MarshalCanonical(l)
}

// FromAny converts a decoded Go value into a payload Value.
// The second result is false for nil, which callers drop.
//
// Conversion never fails: integral numbers become Int, other numbers keep
// their literal text as String, and unknown types are rendered with %v.
func FromAny(v any) (Value, bool) {
	switch val := v.(type) {
	case nil:
		return nil, false
	case Value:
		return clone(val), true
	case string:
		return String(val), true
	case bool:
		return Bool(val), true
	case int:
		return Int(val), true
	case int32:
		return Int(val), true
	case int64:
		return Int(val), true
	case json.Number:
		if n, err := val.Int64(); err == nil {
			return Int(n), true
		}
		return String(val.String()), true
	case float64:
		if val == math.Trunc(val) && val >= math.MinInt64 && val < math.MaxInt64 {
			return Int(int64(val)), true
		}
		return String(strconv.FormatFloat(val, 'f', -1, 64)), true
	case []any:
		out := make(List, 0, len(val))
		for _, elem := range val {
			if pv, ok := FromAny(elem); ok {
				out = append(out, pv)
			}
		}
		return out, true
	case []string:
		out := make(List, len(val))
		for i, s := range val {
			out[i] = String(s)
		}
		return out, true
	case map[string]any:
		out := make(Map, len(val))
		for k, elem := range val {
			if pv, ok := FromAny(elem); ok {
				out[k] = pv
			}
		}
		return out, true
	case map[string]string:
		out := make(Map, len(val))
		for k, s := range val {
			out[k] = String(s)
		}
		return out, true
	default:
		return String(fmt.Sprintf("%v", val)), true
	}
}

// ToAny converts a payload Value back to plain Go values
// (string, int64, bool, []any, map[string]any).
func ToAny(v Value) any {
	switch val := v.(type) {
	case String:
		return string(val)
	case Int:
		return int64(val)
	case Bool:
		return bool(val)
	case List:
		out := make([]any, len(val))
		for i, elem := range val {
			out[i] = ToAny(elem)
		}
		return out
	case Map:
		out := make(map[string]any, len(val))
		for k, elem := range val {
			out[k] = ToAny(elem)
		}
		return out
	default:
		return nil
	}
}

// clone deep-copies composite values so a Payload never shares storage
// with its caller.
func clone(v Value) Value {
	switch val := v.(type) {
	case List:
		out := make(List, len(val))
		for i, elem := range val {
			out[i] = clone(elem)
		}
		return out
	case Map:
		out := make(Map, len(val))
		for k, elem := range val {
			out[k] = clone(elem)
		}
		return out
	default:
		return v
	}
}

// decodeJSON decodes raw JSON keeping numbers as json.Number.
func decodeJSON(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	return raw, nil
}
