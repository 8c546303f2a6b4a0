// Package binding resolves namespace::path references against a namespace-keyed
// data graph and materializes the minimal context a generation request needs.
package binding

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"sort"
)

// Value is one node of a data graph. It is always a Scalar, a Sequence or a Record.
type Value interface {
	// Native converts the value into plain Go maps, slices and scalars.
	Native() any
	sealed()
}

// Scalar holds a string, an int64, a float64, a bool or nil.
type Scalar struct {
	value any
}

// Sequence is an ordered list of values.
type Sequence []Value

// Record maps field names to values.
type Record map[string]Value

func (Scalar) sealed()   {}
func (Sequence) sealed() {}
func (Record) sealed()   {}

// String creates a string scalar.
func String(text string) Scalar { return Scalar{value: text} }

// Integer creates an integer scalar.
func Integer(number int64) Scalar { return Scalar{value: number} }

// Number creates a floating point scalar.
func Number(number float64) Scalar { return Scalar{value: number} }

// Bool creates a boolean scalar.
func Bool(flag bool) Scalar { return Scalar{value: flag} }

// Null creates an empty scalar.
func Null() Scalar { return Scalar{} }

// Native returns the underlying Go value.
func (scalar Scalar) Native() any { return scalar.value }

// MarshalJSON encodes the underlying value.
func (scalar Scalar) MarshalJSON() ([]byte, error) {
	return json.Marshal(scalar.value)
}

// Native returns the elements as a []any.
func (sequence Sequence) Native() any {
	items := make([]any, len(sequence))
	for index, item := range sequence {
		items[index] = nativeOf(item)
	}
	return items
}

// Native returns the fields as a map[string]any.
func (record Record) Native() any {
	fields := make(map[string]any, len(record))
	for name, field := range record {
		fields[name] = nativeOf(field)
	}
	return fields
}

// Keys returns the field names in lexical order.
func (record Record) Keys() []string {
	keys := make([]string, 0, len(record))
	for name := range record {
		keys = append(keys, name)
	}
	sort.Strings(keys)
	return keys
}

func nativeOf(value Value) any {
	if value == nil {
		return nil
	}
	return value.Native()
}

// Index returns the element at position when value is a Sequence holding it.
func Index(value Value, position int) (Value, bool) {
	sequence, isSequence := value.(Sequence)
	if !isSequence || position < 0 || position >= len(sequence) {
		return nil, false
	}
	return sequence[position], true
}

// Field returns the named field when value is a Record holding it.
func Field(value Value, name string) (Value, bool) {
	record, isRecord := value.(Record)
	if !isRecord {
		return nil, false
	}
	field, found := record[name]
	return field, found
}

// Clone returns a deep copy of value so the copy shares no storage with the graph.
func Clone(value Value) Value {
	switch typed := value.(type) {
	case Sequence:
		cloned := make(Sequence, len(typed))
		for index, item := range typed {
			cloned[index] = Clone(item)
		}
		return cloned
	case Record:
		cloned := make(Record, len(typed))
		for name, field := range typed {
			cloned[name] = Clone(field)
		}
		return cloned
	case Scalar:
		return typed
	default:
		return Null()
	}
}

// FromAny converts decoded JSON or YAML data into a Value. Integral floating point
// numbers become integers; unknown types are rendered with fmt.
func FromAny(input any) Value {
	switch typed := input.(type) {
	case nil:
		return Null()
	case Value:
		return Clone(typed)
	case string:
		return String(typed)
	case bool:
		return Bool(typed)
	case int:
		return Integer(int64(typed))
	case int32:
		return Integer(int64(typed))
	case int64:
		return Integer(typed)
	case uint32:
		return Integer(int64(typed))
	case uint64:
		if typed > math.MaxInt64 {
			return Number(float64(typed))
		}
		return Integer(int64(typed))
	case float32:
		return fromFloat(float64(typed))
	case float64:
		return fromFloat(typed)
	case json.Number:
		if integer, integerErr := typed.Int64(); integerErr == nil {
			return Integer(integer)
		}
		if number, numberErr := typed.Float64(); numberErr == nil {
			return Number(number)
		}
		return String(typed.String())
	case []any:
		sequence := make(Sequence, len(typed))
		for index, item := range typed {
			sequence[index] = FromAny(item)
		}
		return sequence
	case map[string]any:
		record := make(Record, len(typed))
		for name, field := range typed {
			record[name] = FromAny(field)
		}
		return record
	}
	return fromReflection(reflect.ValueOf(input))
}

const maxExactFloatInteger = 1 << 53

func fromFloat(number float64) Value {
	if math.Trunc(number) == number && math.Abs(number) <= maxExactFloatInteger {
		return Integer(int64(number))
	}
	return Number(number)
}

func fromReflection(reflected reflect.Value) Value {
	switch reflected.Kind() {
	case reflect.Slice, reflect.Array:
		sequence := make(Sequence, reflected.Len())
		for index := 0; index < reflected.Len(); index++ {
			sequence[index] = FromAny(reflected.Index(index).Interface())
		}
		return sequence
	case reflect.Map:
		record := make(Record, reflected.Len())
		iterator := reflected.MapRange()
		for iterator.Next() {
			record[fmt.Sprint(iterator.Key().Interface())] = FromAny(iterator.Value().Interface())
		}
		return record
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Integer(reflected.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32:
		return Integer(int64(reflected.Uint()))
	case reflect.Float32, reflect.Float64:
		return fromFloat(reflected.Float())
	case reflect.Bool:
		return Bool(reflected.Bool())
	case reflect.String:
		return String(reflected.String())
	case reflect.Invalid:
		return Null()
	default:
		return String(fmt.Sprint(reflected.Interface()))
	}
}
