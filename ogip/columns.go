package ogip

import (
	"fmt"
	"reflect"
	"strconv"
)

var formatTypes = map[byte]reflect.Type{
	'L': reflect.TypeOf(false),
	'B': reflect.TypeOf(uint8(0)),
	'I': reflect.TypeOf(int16(0)),
	'J': reflect.TypeOf(int32(0)),
	'K': reflect.TypeOf(int64(0)),
	'E': reflect.TypeOf(float32(0)),
	'D': reflect.TypeOf(float64(0)),
}

// newColumnValue returns a pointer to a Go value that a binary-table
// column of the given TFORM scans into: a scalar for repeat 1, a fixed
// array for repeat > 1, a slice for variable-length (P/Q) columns.
func newColumnValue(format string) (any, error) {
	i := 0
	for i < len(format) && format[i] >= '0' && format[i] <= '9' {
		i++
	}
	repeat := 1
	if i > 0 {
		n, err := strconv.Atoi(format[:i])
		if err != nil {
			return nil, fmt.Errorf("bad TFORM %q: %w", format, err)
		}
		repeat = n
	}
	if i >= len(format) {
		return nil, fmt.Errorf("bad TFORM %q", format)
	}

	code := format[i]
	switch code {
	case 'A':
		return reflect.New(reflect.TypeOf("")).Interface(), nil
	case 'P', 'Q':
		if i+1 >= len(format) {
			return nil, fmt.Errorf("bad TFORM %q", format)
		}
		elem, ok := formatTypes[format[i+1]]
		if !ok {
			return nil, fmt.Errorf("unsupported TFORM %q", format)
		}
		return reflect.New(reflect.SliceOf(elem)).Interface(), nil
	}

	elem, ok := formatTypes[code]
	if !ok {
		return nil, fmt.Errorf("unsupported TFORM %q", format)
	}
	if repeat == 1 {
		return reflect.New(elem).Interface(), nil
	}
	return reflect.New(reflect.ArrayOf(repeat, elem)).Interface(), nil
}

func toFloat(v reflect.Value) float64 {
	switch v.Kind() {
	case reflect.Float32, reflect.Float64:
		return v.Float()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(v.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(v.Uint())
	case reflect.Bool:
		if v.Bool() {
			return 1
		}
	}
	return 0
}

// floatsOf flattens a scanned column value to float64s.
func floatsOf(ptr any) []float64 {
	v := reflect.ValueOf(ptr).Elem()
	switch v.Kind() {
	case reflect.Array, reflect.Slice:
		out := make([]float64, v.Len())
		for i := range out {
			out[i] = toFloat(v.Index(i))
		}
		return out
	}
	return []float64{toFloat(v)}
}

// scalarOf returns a scanned scalar column, or the mean of a vector one.
// Vector livetimes appear in files this package wrote.
func scalarOf(ptr any) float64 {
	x := floatsOf(ptr)
	if len(x) == 0 {
		return 0
	}
	var sum float64
	for _, f := range x {
		sum += f
	}
	return sum / float64(len(x))
}

func int32sOf(ptr any) []int32 {
	x := floatsOf(ptr)
	out := make([]int32, len(x))
	for i, f := range x {
		out[i] = int32(f)
	}
	return out
}

// arrayOf copies s into a new fixed-size array and returns a pointer to it,
// the shape the table encoder expects for repeated columns.
func arrayOf[T any](s []T) any {
	arr := reflect.New(reflect.ArrayOf(len(s), reflect.TypeOf(s).Elem())).Elem()
	for i, v := range s {
		arr.Index(i).Set(reflect.ValueOf(v))
	}
	return arr.Addr().Interface()
}
