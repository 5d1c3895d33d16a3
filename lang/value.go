package lang

import (
	"bytes"
	"encoding/json"
	"fmt"
	"iter"
	"log/slog"
	"maps"
	"math"
	"reflect"
	"slices"
	"strconv"
	"time"
)

// Kind identifies the variant held by a [Value].
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

// String returns a lowercase name for the kind.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// Value is a JSON-shaped tagged union used for variables, function arguments,
// frontmatter, and imported data.
//
// Values are immutable. Constructors copy their inputs and accessors never
// expose internal storage, so a Value may be shared freely between
// goroutines. The zero Value is null.
type Value struct {
	kind Kind
	b    bool
	n    float64
	s    string
	a    []Value
	o    map[string]Value
}

// Null returns the null value.
func Null() Value { return Value{} }

// Bool returns a boolean value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Number returns a numeric value.
func Number(n float64) Value { return Value{kind: KindNumber, n: n} }

// String returns a string value.
func String(s string) Value { return Value{kind: KindString, s: s} }

// Array returns an array holding copies of elems.
func Array(elems ...Value) Value {
	return Value{kind: KindArray, a: slices.Clone(elems)}
}

// Object returns an object holding a copy of fields.
func Object(fields map[string]Value) Value {
	o := maps.Clone(fields)
	if o == nil {
		o = map[string]Value{}
	}

	return Value{kind: KindObject, o: o}
}

// Kind returns the variant held by v.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// AsBool returns the boolean held by v.
func (v Value) AsBool() (bool, bool) { return v.b, v.kind == KindBool }

// AsNumber returns the number held by v. Numeric strings are not converted;
// see [Value.Numeric] for that.
func (v Value) AsNumber() (float64, bool) { return v.n, v.kind == KindNumber }

// AsString returns the string held by v.
func (v Value) AsString() (string, bool) { return v.s, v.kind == KindString }

// Numeric returns v as a number if it is a number or a string that parses as
// one.
func (v Value) Numeric() (float64, bool) {
	switch v.kind {
	case KindNumber:
		return v.n, true
	case KindString:
		n, err := strconv.ParseFloat(v.s, 64)
		if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
			return 0, false
		}

		return n, true
	default:
		return 0, false
	}
}

// Len returns the number of elements of an array or fields of an object.
func (v Value) Len() int {
	switch v.kind {
	case KindArray:
		return len(v.a)
	case KindObject:
		return len(v.o)
	default:
		return 0
	}
}

// Index returns element i of an array.
func (v Value) Index(i int) (Value, bool) {
	if v.kind != KindArray || i < 0 || i >= len(v.a) {
		return Value{}, false
	}

	return v.a[i], true
}

// Field returns the named field of an object.
func (v Value) Field(key string) (Value, bool) {
	if v.kind != KindObject {
		return Value{}, false
	}

	f, ok := v.o[key]

	return f, ok
}

// Elements iterates over the elements of an array in order.
func (v Value) Elements() iter.Seq2[int, Value] {
	return func(yield func(int, Value) bool) {
		if v.kind != KindArray {
			return
		}

		for i, e := range v.a {
			if !yield(i, e) {
				return
			}
		}
	}
}

// Keys returns the field names of an object in sorted order.
func (v Value) Keys() []string {
	if v.kind != KindObject {
		return nil
	}

	return slices.Sorted(maps.Keys(v.o))
}

// Fields iterates over the fields of an object in sorted key order.
func (v Value) Fields() iter.Seq2[string, Value] {
	return func(yield func(string, Value) bool) {
		for _, k := range v.Keys() {
			if !yield(k, v.o[k]) {
				return
			}
		}
	}
}

// Slice returns a copy of the elements of an array.
func (v Value) Slice() []Value {
	if v.kind != KindArray {
		return nil
	}

	return slices.Clone(v.a)
}

// With returns a copy of object v with key set to f.
// Non-object receivers are treated as empty objects.
func (v Value) With(key string, f Value) Value {
	o := make(map[string]Value, len(v.o)+1)
	if v.kind == KindObject {
		maps.Copy(o, v.o)
	}

	o[key] = f

	return Value{kind: KindObject, o: o}
}

// Merge returns an object holding the fields of v overlaid with the fields
// of other. Non-object operands contribute no fields.
func (v Value) Merge(other Value) Value {
	o := make(map[string]Value, len(v.o)+len(other.o))
	if v.kind == KindObject {
		maps.Copy(o, v.o)
	}

	if other.kind == KindObject {
		maps.Copy(o, other.o)
	}

	return Value{kind: KindObject, o: o}
}

// Clone returns a deep copy of v.
func (v Value) Clone() Value {
	switch v.kind {
	case KindArray:
		a := make([]Value, len(v.a))
		for i, e := range v.a {
			a[i] = e.Clone()
		}

		return Value{kind: KindArray, a: a}

	case KindObject:
		o := make(map[string]Value, len(v.o))
		for k, f := range v.o {
			o[k] = f.Clone()
		}

		return Value{kind: KindObject, o: o}

	default:
		return v
	}
}

// Equal reports whether v and other hold the same data.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}

	switch v.kind {
	case KindNull:
		return true
	case KindBool:
		return v.b == other.b
	case KindNumber:
		return v.n == other.n
	case KindString:
		return v.s == other.s
	case KindArray:
		return slices.EqualFunc(v.a, other.a, Value.Equal)
	case KindObject:
		return maps.EqualFunc(v.o, other.o, Value.Equal)
	default:
		return false
	}
}

// String returns the text a template emits for v. Numbers use the shortest
// representation, null is empty, and structured values are rendered as JSON.
func (v Value) String() string {
	switch v.kind {
	case KindNull:
		return ""
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindNumber:
		return formatNumber(v.n)
	case KindString:
		return v.s
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return ""
		}

		return string(data)
	}
}

// LogValue implements slog.LogValuer.
func (v Value) LogValue() slog.Value {
	switch v.kind {
	case KindBool:
		return slog.BoolValue(v.b)
	case KindNumber:
		return slog.Float64Value(v.n)
	default:
		return slog.StringValue(v.String())
	}
}

func formatNumber(n float64) string {
	if n == math.Trunc(n) && math.Abs(n) < 1e15 {
		return strconv.FormatInt(int64(n), 10)
	}

	return strconv.FormatFloat(n, 'f', -1, 64)
}

// Native converts v to plain Go values: nil, bool, float64, string,
// []any, and map[string]any. The result shares no memory with v.
func (v Value) Native() any {
	switch v.kind {
	case KindBool:
		return v.b
	case KindNumber:
		return v.n
	case KindString:
		return v.s
	case KindArray:
		a := make([]any, len(v.a))
		for i, e := range v.a {
			a[i] = e.Native()
		}

		return a
	case KindObject:
		o := make(map[string]any, len(v.o))
		for k, f := range v.o {
			o[k] = f.Native()
		}

		return o
	default:
		return nil
	}
}

// FromNative converts plain Go data, as produced by JSON and YAML decoders or
// script engines, into a Value. Dates become "2006-01-02" strings when they
// carry no time of day, RFC 3339 strings otherwise.
func FromNative(x any) (Value, error) {
	switch t := x.(type) {
	case nil:
		return Null(), nil
	case Value:
		return t.Clone(), nil
	case bool:
		return Bool(t), nil
	case string:
		return String(t), nil
	case json.Number:
		n, err := t.Float64()
		if err != nil {
			return Value{}, ErrInvalidValue.Wrap(err)
		}

		return Number(n), nil
	case float64:
		return Number(t), nil
	case float32:
		return Number(float64(t)), nil
	case int:
		return Number(float64(t)), nil
	case int64:
		return Number(float64(t)), nil
	case uint64:
		return Number(float64(t)), nil
	case time.Time:
		if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
			return String(t.Format(time.DateOnly)), nil
		}

		return String(t.Format(time.RFC3339)), nil
	case []any:
		a := make([]Value, len(t))
		for i, e := range t {
			ev, err := FromNative(e)
			if err != nil {
				return Value{}, err
			}

			a[i] = ev
		}

		return Value{kind: KindArray, a: a}, nil
	case map[string]any:
		o := make(map[string]Value, len(t))
		for k, e := range t {
			ev, err := FromNative(e)
			if err != nil {
				return Value{}, err
			}

			o[k] = ev
		}

		return Value{kind: KindObject, o: o}, nil
	}

	return fromReflect(reflect.ValueOf(x))
}

// fromReflect handles the remaining integer widths, typed slices, and maps
// with non-string keys (YAML decoders produce map[any]any).
func fromReflect(rv reflect.Value) (Value, error) {
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Number(float64(rv.Int())), nil

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return Number(float64(rv.Uint())), nil

	case reflect.Float32, reflect.Float64:
		return Number(rv.Float()), nil

	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return Null(), nil
		}

		return FromNative(rv.Elem().Interface())

	case reflect.Slice, reflect.Array:
		a := make([]Value, rv.Len())
		for i := range rv.Len() {
			ev, err := FromNative(rv.Index(i).Interface())
			if err != nil {
				return Value{}, err
			}

			a[i] = ev
		}

		return Value{kind: KindArray, a: a}, nil

	case reflect.Map:
		o := make(map[string]Value, rv.Len())

		iter := rv.MapRange()
		for iter.Next() {
			ev, err := FromNative(iter.Value().Interface())
			if err != nil {
				return Value{}, err
			}

			o[fmt.Sprint(iter.Key().Interface())] = ev
		}

		return Value{kind: KindObject, o: o}, nil
	}

	return Value{}, ErrInvalidValue.With(slog.String("type", rv.Type().String()))
}

// ParseJSON decodes a JSON document into a Value.
func ParseJSON(data []byte) (Value, error) {
	var v Value

	err := v.UnmarshalJSON(data)

	return v, err
}

// MarshalJSON implements json.Marshaler. Object keys are emitted in sorted
// order so output is deterministic.
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Native())
}

// UnmarshalJSON implements json.Unmarshaler.
func (v *Value) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var x any

	err := dec.Decode(&x)
	if err != nil {
		return ErrInvalidValue.Wrap(err)
	}

	if dec.More() {
		return ErrInvalidValue.With(slog.String("reason", "trailing data"))
	}

	parsed, err := FromNative(x)
	if err != nil {
		return err
	}

	*v = parsed

	return nil
}
