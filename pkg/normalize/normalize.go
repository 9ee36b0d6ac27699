// Package normalize converts analyzer output into values a JSON encoder
// handles natively: map[string]any, []any, float64, int64, string, bool
// and nil.
package normalize

import (
	"encoding/json"
	"math"
	"reflect"
	"strconv"
)

// Normalize walks v and returns an equivalent structure whose leaves are
// JSON-native. Mapping keys, sequence length and element order are kept.
// The input is never modified and the result shares no containers with it.
func Normalize(v any) any {
	switch Classify(v) {
	case KindMapping:
		return normalizeMapping(v)
	case KindSequence:
		return normalizeSequence(v)
	case KindForeignArray:
		return normalizeArray(reflect.ValueOf(v))
	case KindForeignScalar:
		return normalizeScalar(v)
	case KindUnknown:
		// TODO: structs and pointers pass through untouched; walk exported
		// fields once an analyzer transport starts producing them.
		return v
	default:
		return v
	}
}

func normalizeMapping(v any) any {
	if m, ok := v.(map[string]any); ok {
		if m == nil {
			return map[string]any(nil)
		}
		out := make(map[string]any, len(m))
		for k, val := range m {
			out[k] = Normalize(val)
		}
		return out
	}

	rv := reflect.ValueOf(v)
	if rv.IsNil() {
		return map[string]any(nil)
	}
	out := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		out[iter.Key().String()] = Normalize(iter.Value().Interface())
	}
	return out
}

func normalizeSequence(v any) any {
	if s, ok := v.([]any); ok {
		if s == nil {
			return []any(nil)
		}
		out := make([]any, len(s))
		for i, val := range s {
			out[i] = Normalize(val)
		}
		return out
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Slice && rv.IsNil() {
		return []any(nil)
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = Normalize(rv.Index(i).Interface())
	}
	return out
}

// normalizeArray flattens one dimension per call, so an N-dimensional
// numeric array becomes N levels of []any.
func normalizeArray(rv reflect.Value) any {
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return scalarValue(rv)
	}
	if rv.Kind() == reflect.Slice && rv.IsNil() {
		return []any(nil)
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = normalizeArray(rv.Index(i))
	}
	return out
}

func normalizeScalar(v any) any {
	if n, ok := v.(json.Number); ok {
		return numberValue(n)
	}
	return scalarValue(reflect.ValueOf(v))
}

func numberValue(n json.Number) any {
	if i, err := n.Int64(); err == nil {
		return i
	}
	if f, err := n.Float64(); err == nil {
		return f
	}
	// TODO: out-of-range numbers such as 1e400 come back as their decimal
	// string; reject them in deepface.DecodeResponse once the analyzer is
	// known to emit them.
	return n.String()
}

func scalarValue(rv reflect.Value) any {
	switch rv.Kind() {
	case reflect.Float32:
		return widenFloat32(float32(rv.Float()))
	case reflect.Float64:
		return rv.Float()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := rv.Uint()
		if u <= math.MaxInt64 {
			return int64(u)
		}
		return float64(u)
	}
	return rv.Interface()
}

// widenFloat32 goes through the shortest decimal form of f so that
// float32(0.92) becomes 0.92 rather than 0.9200000166893005.
func widenFloat32(f float32) float64 {
	if math.IsNaN(float64(f)) || math.IsInf(float64(f), 0) {
		return float64(f)
	}
	out, err := strconv.ParseFloat(strconv.FormatFloat(float64(f), 'g', -1, 32), 64)
	if err != nil {
		return float64(f)
	}
	return out
}
