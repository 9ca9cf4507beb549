package renderer

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Kind is the closed set of variable value types
type Kind int

const (
	KindString Kind = iota
	KindNumber
	KindBool
	KindArray
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "boolean"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// Value is a tagged union over the scalar/array/object shapes a template
// variable can take. Display() is the single canonical string conversion
// used by placeholder substitution, so every call site renders a given
// value identically.
type Value struct {
	kind Kind
	str  string
	num  float64
	b    bool
	arr  []Value
	obj  map[string]Value
}

// String creates a string value
func String(s string) Value { return Value{kind: KindString, str: s} }

// Number creates a numeric value
func Number(n float64) Value { return Value{kind: KindNumber, num: n} }

// Bool creates a boolean value
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Array creates an array value
func Array(items ...Value) Value { return Value{kind: KindArray, arr: items} }

// Object creates an object value
func Object(fields map[string]Value) Value { return Value{kind: KindObject, obj: fields} }

// FromAny converts a dynamically-typed value (as produced by YAML or JSON
// decoding) into a Value. Unsupported types fall back to their fmt
// rendering as a string so bindings never hard-fail on exotic input.
func FromAny(v any) Value {
	switch t := v.(type) {
	case nil:
		return String("")
	case string:
		return String(t)
	case bool:
		return Bool(t)
	case int:
		return Number(float64(t))
	case int64:
		return Number(float64(t))
	case float64:
		return Number(t)
	case float32:
		return Number(float64(t))
	case []any:
		items := make([]Value, 0, len(t))
		for _, item := range t {
			items = append(items, FromAny(item))
		}
		return Array(items...)
	case map[string]any:
		fields := make(map[string]Value, len(t))
		for k, item := range t {
			fields[k] = FromAny(item)
		}
		return Object(fields)
	default:
		return String(fmt.Sprintf("%v", t))
	}
}

// Kind returns the value's type tag
func (v Value) Kind() Kind { return v.kind }

// Items returns the elements of an array value
func (v Value) Items() []Value { return v.arr }

// Num returns the numeric payload; meaningful only for KindNumber
func (v Value) Num() float64 { return v.num }

// Display is the canonical string form used for placeholder substitution:
// numbers drop trailing zeros, arrays join elements with commas, and
// objects render as compact JSON with sorted keys.
func (v Value) Display() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindArray:
		parts := make([]string, len(v.arr))
		for i, item := range v.arr {
			parts[i] = item.Display()
		}
		return strings.Join(parts, ",")
	case KindObject:
		data, err := json.Marshal(v.toAny())
		if err != nil {
			return "{}"
		}
		return string(data)
	default:
		return ""
	}
}

// Equal compares two values structurally
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindString:
		return v.str == other.str
	case KindNumber:
		return v.num == other.num
	case KindBool:
		return v.b == other.b
	case KindArray:
		if len(v.arr) != len(other.arr) {
			return false
		}
		for i := range v.arr {
			if !v.arr[i].Equal(other.arr[i]) {
				return false
			}
		}
		return true
	case KindObject:
		if len(v.obj) != len(other.obj) {
			return false
		}
		for k, val := range v.obj {
			o, ok := other.obj[k]
			if !ok || !val.Equal(o) {
				return false
			}
		}
		return true
	}
	return false
}

func (v Value) toAny() any {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return v.num
	case KindBool:
		return v.b
	case KindArray:
		items := make([]any, len(v.arr))
		for i, item := range v.arr {
			items[i] = item.toAny()
		}
		return items
	case KindObject:
		keys := make([]string, 0, len(v.obj))
		for k := range v.obj {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		fields := make(map[string]any, len(v.obj))
		for _, k := range keys {
			fields[k] = v.obj[k].toAny()
		}
		return fields
	default:
		return nil
	}
}
