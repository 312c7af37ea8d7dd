package record

import (
	"encoding/json"
	"math"
	"reflect"
)

// Integer converts a wire number to an int. Integer kinds, integral floats
// and json.Number are accepted as long as the value fits in an int. Strings,
// booleans and null are not numbers.
func Integer(v any) (int, bool) {
	if v == nil {
		return 0, false
	}
	if n, ok := v.(json.Number); ok {
		if i, err := n.Int64(); err == nil {
			return intFromInt64(i)
		}
		f, err := n.Float64()
		if err != nil {
			return 0, false
		}
		return intFromFloat(f)
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return intFromInt64(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := rv.Uint()
		if u > math.MaxInt {
			return 0, false
		}
		return int(u), true
	case reflect.Float32, reflect.Float64:
		return intFromFloat(rv.Float())
	}
	return 0, false
}

func intFromInt64(i int64) (int, bool) {
	if i < math.MinInt || i > math.MaxInt {
		return 0, false
	}
	return int(i), true
}

// float64(math.MaxInt) rounds up to 2^63, so the upper bound is exclusive.
func intFromFloat(f float64) (int, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	if f < float64(math.MinInt) || f >= -float64(math.MinInt) {
		return 0, false
	}
	return int(f), true
}
