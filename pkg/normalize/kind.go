package normalize

import (
	"encoding/json"
	"reflect"
)

// Kind is the shape a value takes for normalization purposes.
type Kind int

const (
	KindNative Kind = iota
	KindMapping
	KindSequence
	KindForeignScalar
	KindForeignArray
	KindUnknown
)

func (k Kind) String() string {
	switch k {
	case KindNative:
		return "native"
	case KindMapping:
		return "mapping"
	case KindSequence:
		return "sequence"
	case KindForeignScalar:
		return "foreign_scalar"
	case KindForeignArray:
		return "foreign_array"
	default:
		return "unknown"
	}
}

// Classify resolves the Kind of v. The common decoded shapes are matched
// directly; typed containers and named numeric types go through reflection.
func Classify(v any) Kind {
	switch v.(type) {
	case nil, bool, string, float64, int64, []byte:
		return KindNative
	case map[string]any:
		return KindMapping
	case []any:
		return KindSequence
	case json.Number, float32, int, int8, int16, int32,
		uint, uint8, uint16, uint32, uint64, uintptr:
		return KindForeignScalar
	}

	rv := reflect.ValueOf(v)
	switch k := rv.Kind(); {
	case k == reflect.Map:
		if rv.Type().Key().Kind() == reflect.String {
			return KindMapping
		}
		return KindUnknown
	case k == reflect.Slice || k == reflect.Array:
		if isNumericArray(rv.Type()) {
			return KindForeignArray
		}
		return KindSequence
	case k == reflect.Bool || k == reflect.String:
		return KindNative
	case isNumericKind(k):
		return KindForeignScalar
	}

	return KindUnknown
}

func isNumericArray(t reflect.Type) bool {
	elem := t.Elem()
	for elem.Kind() == reflect.Slice || elem.Kind() == reflect.Array {
		elem = elem.Elem()
	}
	return isNumericKind(elem.Kind())
}

func isNumericKind(k reflect.Kind) bool {
	switch k {
	case reflect.Float32, reflect.Float64,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return true
	}
	return false
}
