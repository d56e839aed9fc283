// Package value defines the typed configuration value model shared by every source.
//
// Overview:
//   - Responsibility: Immutable tagged values with an origin label, plus lossy conversions
//   - Key Types: Kind (closed tag set), Value, Map, TypeError
//   - Concurrency Model: Values are immutable and safe to share between goroutines
//   - Error Semantics: Conversions return *TypeError describing the unexpected value
//   - Performance Notes: Arrays and tables are copied on construction and on access
//
// Usage:
//
//	v := value.NewStrings("cli", []string{"tagone", "tagtwo"})
//	tags, err := v.AsStrings()
package value

import (
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Kind is the tag of a Value.
type Kind int

const (
	KindNil Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindArray
	KindTable
)

var kindNames = [...]string{
	KindNil:    "nil",
	KindBool:   "bool",
	KindInt:    "int",
	KindFloat:  "float",
	KindString: "string",
	KindArray:  "array",
	KindTable:  "table",
}

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("kind(%d)", int(k))
	}
	return kindNames[k]
}

// ParseKind parses a kind name as printed by Kind.String. "sequence" and
// "list" are accepted as synonyms of "array", "scalar" of "string".
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "nil":
		return KindNil, nil
	case "bool", "boolean":
		return KindBool, nil
	case "int", "integer":
		return KindInt, nil
	case "float":
		return KindFloat, nil
	case "string", "scalar":
		return KindString, nil
	case "array", "sequence", "list":
		return KindArray, nil
	case "table", "map":
		return KindTable, nil
	}
	return KindNil, fmt.Errorf("unknown value kind %q", s)
}

// Value is an immutable configuration value tagged with the source it came from.
type Value struct {
	origin string
	kind   Kind
	b      bool
	i      int64
	f      float64
	s      string
	arr    []Value
	table  map[string]Value
}

// NewNil returns an explicit null value.
func NewNil(origin string) Value {
	return Value{origin: origin, kind: KindNil}
}

// NewBool returns a boolean value.
func NewBool(origin string, b bool) Value {
	return Value{origin: origin, kind: KindBool, b: b}
}

// NewInt returns an integer value.
func NewInt(origin string, i int64) Value {
	return Value{origin: origin, kind: KindInt, i: i}
}

// NewFloat returns a floating point value.
func NewFloat(origin string, f float64) Value {
	return Value{origin: origin, kind: KindFloat, f: f}
}

// NewString returns a string value.
func NewString(origin, s string) Value {
	return Value{origin: origin, kind: KindString, s: s}
}

// NewStrings returns an array whose elements are strings carrying the same origin.
// A nil or empty input yields an empty array, never a nil value.
func NewStrings(origin string, ss []string) Value {
	arr := make([]Value, len(ss))
	for i, s := range ss {
		arr[i] = NewString(origin, s)
	}
	return Value{origin: origin, kind: KindArray, arr: arr}
}

// NewArray returns an array value holding a copy of elems.
func NewArray(origin string, elems []Value) Value {
	arr := make([]Value, len(elems))
	copy(arr, elems)
	return Value{origin: origin, kind: KindArray, arr: arr}
}

// NewTable returns a table value holding a copy of entries.
func NewTable(origin string, entries map[string]Value) Value {
	table := make(map[string]Value, len(entries))
	for k, v := range entries {
		table[k] = v
	}
	return Value{origin: origin, kind: KindTable, table: table}
}

// From converts a plain Go value into a Value. Nested slices and maps are
// converted recursively and every element carries origin.
func From(origin string, v any) (Value, error) {
	switch t := v.(type) {
	case nil:
		return NewNil(origin), nil
	case Value:
		return t, nil
	case bool:
		return NewBool(origin, t), nil
	case int:
		return NewInt(origin, int64(t)), nil
	case int8:
		return NewInt(origin, int64(t)), nil
	case int16:
		return NewInt(origin, int64(t)), nil
	case int32:
		return NewInt(origin, int64(t)), nil
	case int64:
		return NewInt(origin, t), nil
	case uint:
		return fromUint(origin, uint64(t))
	case uint8:
		return NewInt(origin, int64(t)), nil
	case uint16:
		return NewInt(origin, int64(t)), nil
	case uint32:
		return NewInt(origin, int64(t)), nil
	case uint64:
		return fromUint(origin, t)
	case float32:
		return NewFloat(origin, float64(t)), nil
	case float64:
		return NewFloat(origin, t), nil
	case string:
		return NewString(origin, t), nil
	case time.Duration:
		return NewString(origin, t.String()), nil
	case []string:
		return NewStrings(origin, t), nil
	case []any:
		arr := make([]Value, len(t))
		for i, e := range t {
			ev, err := From(origin, e)
			if err != nil {
				return Value{}, err
			}
			arr[i] = ev
		}
		return Value{origin: origin, kind: KindArray, arr: arr}, nil
	case map[string]any:
		table := make(map[string]Value, len(t))
		for k, e := range t {
			ev, err := From(origin, e)
			if err != nil {
				return Value{}, fmt.Errorf("%s: %w", k, err)
			}
			table[k] = ev
		}
		return Value{origin: origin, kind: KindTable, table: table}, nil
	case map[string]string:
		table := make(map[string]Value, len(t))
		for k, e := range t {
			table[k] = NewString(origin, e)
		}
		return Value{origin: origin, kind: KindTable, table: table}, nil
	}
	return Value{}, fmt.Errorf("unsupported value type %T", v)
}

func fromUint(origin string, u uint64) (Value, error) {
	if u > math.MaxInt64 {
		return Value{}, fmt.Errorf("integer %d overflows int64", u)
	}
	return NewInt(origin, int64(u)), nil
}

// Kind returns the tag of the value.
func (v Value) Kind() Kind { return v.kind }

// Origin returns the label of the source that produced the value.
func (v Value) Origin() string { return v.origin }

// IsNil reports whether the value is an explicit null.
func (v Value) IsNil() bool { return v.kind == KindNil }

// Len returns the number of elements of an array or entries of a table, 0 otherwise.
func (v Value) Len() int {
	switch v.kind {
	case KindArray:
		return len(v.arr)
	case KindTable:
		return len(v.table)
	}
	return 0
}

// Equal reports whether both values have the same kind, payload and origin.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind || v.origin != o.origin {
		return false
	}
	switch v.kind {
	case KindBool:
		return v.b == o.b
	case KindInt:
		return v.i == o.i
	case KindFloat:
		return v.f == o.f
	case KindString:
		return v.s == o.s
	case KindArray:
		if len(v.arr) != len(o.arr) {
			return false
		}
		for i := range v.arr {
			if !v.arr[i].Equal(o.arr[i]) {
				return false
			}
		}
	case KindTable:
		if len(v.table) != len(o.table) {
			return false
		}
		for k, e := range v.table {
			oe, ok := o.table[k]
			if !ok || !e.Equal(oe) {
				return false
			}
		}
	}
	return true
}

// String renders the value for humans. Strings are not quoted.
func (v Value) String() string {
	switch v.kind {
	case KindNil:
		return "nil"
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'f', -1, 64)
	case KindString:
		return v.s
	case KindArray:
		parts := make([]string, len(v.arr))
		for i, e := range v.arr {
			parts[i] = e.String()
		}
		return "[" + strings.Join(parts, " ") + "]"
	case KindTable:
		keys := make([]string, 0, len(v.table))
		for k := range v.table {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = k + ":" + v.table[k].String()
		}
		return "{" + strings.Join(parts, " ") + "}"
	}
	return v.kind.String()
}

// LogValue implements slog.LogValuer.
func (v Value) LogValue() slog.Value {
	switch v.kind {
	case KindBool:
		return slog.BoolValue(v.b)
	case KindInt:
		return slog.Int64Value(v.i)
	case KindFloat:
		return slog.Float64Value(v.f)
	}
	return slog.StringValue(v.String())
}

// Interface returns the payload as plain Go data: nil, bool, int64, float64,
// string, []any or map[string]any.
func (v Value) Interface() any {
	switch v.kind {
	case KindBool:
		return v.b
	case KindInt:
		return v.i
	case KindFloat:
		return v.f
	case KindString:
		return v.s
	case KindArray:
		out := make([]any, len(v.arr))
		for i, e := range v.arr {
			out[i] = e.Interface()
		}
		return out
	case KindTable:
		out := make(map[string]any, len(v.table))
		for k, e := range v.table {
			out[k] = e.Interface()
		}
		return out
	}
	return nil
}

// AsBool converts the value to a bool. Strings accept true/false, yes/no,
// on/off and 1/0 in any case; numbers are true when non-zero.
func (v Value) AsBool() (bool, error) {
	switch v.kind {
	case KindBool:
		return v.b, nil
	case KindInt:
		return v.i != 0, nil
	case KindFloat:
		return v.f != 0, nil
	case KindString:
		switch strings.ToLower(v.s) {
		case "1", "true", "on", "yes":
			return true, nil
		case "0", "false", "off", "no":
			return false, nil
		}
	}
	return false, v.typeError("a boolean")
}

// AsInt converts the value to an int64. Floats are rounded to the nearest integer.
func (v Value) AsInt() (int64, error) {
	switch v.kind {
	case KindInt:
		return v.i, nil
	case KindBool:
		if v.b {
			return 1, nil
		}
		return 0, nil
	case KindFloat:
		if i, ok := roundToInt(v.f); ok {
			return i, nil
		}
	case KindString:
		if i, err := strconv.ParseInt(v.s, 0, 64); err == nil {
			return i, nil
		}
		if f, err := strconv.ParseFloat(v.s, 64); err == nil {
			if i, ok := roundToInt(f); ok {
				return i, nil
			}
		}
	}
	return 0, v.typeError("an integer")
}

// roundToInt rounds f to the nearest int64. NaN, infinities and values
// outside the int64 range fail.
func roundToInt(f float64) (int64, bool) {
	r := math.Round(f)
	if math.IsNaN(r) || r < math.MinInt64 || r >= math.MaxInt64 {
		return 0, false
	}
	return int64(r), true
}

// AsFloat converts the value to a float64.
func (v Value) AsFloat() (float64, error) {
	switch v.kind {
	case KindFloat:
		return v.f, nil
	case KindInt:
		return float64(v.i), nil
	case KindBool:
		if v.b {
			return 1, nil
		}
		return 0, nil
	case KindString:
		if f, err := strconv.ParseFloat(v.s, 64); err == nil {
			return f, nil
		}
	}
	return 0, v.typeError("a floating point")
}

// AsString converts scalar values to their string form.
func (v Value) AsString() (string, error) {
	switch v.kind {
	case KindString, KindBool, KindInt, KindFloat:
		return v.String(), nil
	}
	return "", v.typeError("a string")
}

// AsArray returns a copy of the array elements. Scalars are not promoted.
func (v Value) AsArray() ([]Value, error) {
	if v.kind != KindArray {
		return nil, v.typeError("an array")
	}
	out := make([]Value, len(v.arr))
	copy(out, v.arr)
	return out, nil
}

// AsStrings returns the array elements converted with AsString.
func (v Value) AsStrings() ([]string, error) {
	arr, err := v.AsArray()
	if err != nil {
		return nil, err
	}
	out := make([]string, len(arr))
	for i, e := range arr {
		s, err := e.AsString()
		if err != nil {
			return nil, err
		}
		out[i] = s
	}
	return out, nil
}

// AsTable returns a copy of the table entries.
func (v Value) AsTable() (map[string]Value, error) {
	if v.kind != KindTable {
		return nil, v.typeError("a table")
	}
	out := make(map[string]Value, len(v.table))
	for k, e := range v.table {
		out[k] = e
	}
	return out, nil
}

func (v Value) typeError(expected string) error {
	return &TypeError{Origin: v.origin, Unexpected: v, Expected: expected}
}

// TypeError reports a value that cannot be converted to the requested type.
type TypeError struct {
	Origin     string
	Unexpected Value
	Expected   string
}

// Error implements the error interface.
func (e *TypeError) Error() string {
	msg := fmt.Sprintf("invalid type: %s, expected %s", describe(e.Unexpected), e.Expected)
	if e.Origin != "" {
		msg += " in " + e.Origin
	}
	return msg
}

func describe(v Value) string {
	switch v.kind {
	case KindNil:
		return "nil"
	case KindBool:
		return fmt.Sprintf("boolean `%t`", v.b)
	case KindInt:
		return fmt.Sprintf("integer `%d`", v.i)
	case KindFloat:
		return fmt.Sprintf("floating point `%s`", v.String())
	case KindString:
		return fmt.Sprintf("string %q", v.s)
	case KindArray:
		return "sequence"
	case KindTable:
		return "map"
	}
	return v.kind.String()
}

// Map is a flat key to value mapping produced by a source.
type Map map[string]Value

// Keys returns the keys in sorted order.
func (m Map) Keys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Clone returns a shallow copy of the map. Values are immutable.
func (m Map) Clone() Map {
	out := make(Map, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Merge copies every entry of other into m, replacing existing keys.
func (m Map) Merge(other Map) {
	for k, v := range other {
		m[k] = v
	}
}

// Equal reports whether both maps hold equal values under the same keys.
func (m Map) Equal(o Map) bool {
	if len(m) != len(o) {
		return false
	}
	for k, v := range m {
		ov, ok := o[k]
		if !ok || !v.Equal(ov) {
			return false
		}
	}
	return true
}
