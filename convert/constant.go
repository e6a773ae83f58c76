package convert

import (
	"errors"
	"fmt"
	"math/big"
	"reflect"
	"sort"

	"github.com/apache/arrow-go/v18/arrow/decimal128"
	"github.com/shopspring/decimal"

	"github.com/hugr-lab/tablescan-go/types"
)

var (
	// ErrUnsupportedValue indicates a value whose shape the engine type does not accept.
	ErrUnsupportedValue = errors.New("unsupported value")

	// ErrFixedLength indicates a fixed value whose length differs from the declared one.
	ErrFixedLength = errors.New("fixed value has wrong length")
)

// byteSource is implemented by byte buffers and fixed-width wrappers.
type byteSource interface {
	Bytes() []byte
}

// Constant converts v, interpreted as a value of engine type t, into its
// native representation.
//
// Accepted inputs: structs take map[string]any (or any map keyed by string),
// fields missing from the map convert as nil; lists take any slice or array;
// maps take []KeyValue or a Go map, the latter converted in ascending key
// order; decimals take shopspring decimal.Decimal, *big.Rat, Decimal or an
// unscaled decimal128.Num; strings take string, []byte, fmt.Stringer or a
// byte source; fixed and binary take []byte, byte arrays or a byte source.
func Constant(t types.Type, v any) (any, error) {
	if v == nil || isNilPointer(v) {
		return nil, nil
	}

	switch tt := t.(type) {
	case *types.StructType:
		return structValue(tt, v)
	case *types.ListType:
		return listValue(tt, v)
	case *types.MapType:
		return mapValue(tt, v)
	case types.DecimalType:
		return decimalValue(tt, v)
	case types.FixedType:
		b, err := bytesValue(t, v)
		if err != nil {
			return nil, err
		}
		if len(b) != tt.Length {
			return nil, fmt.Errorf("%w: %d bytes for %s", ErrFixedLength, len(b), t)
		}
		return b, nil
	}

	switch t.Kind() {
	case types.KindString:
		return stringValue(v), nil
	case types.KindBinary:
		return bytesValue(t, v)
	}
	return v, nil
}

// Struct converts a field-name keyed mapping into a Row in schema order.
func Struct(st *types.StructType, values map[string]any) (Row, error) {
	row := make(Row, len(st.Fields))
	for i, f := range st.Fields {
		v, err := Constant(f.Type, values[f.Name])
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", f.Name, err)
		}
		row[i] = v
	}
	return row, nil
}

func structValue(st *types.StructType, v any) (Row, error) {
	if m, ok := v.(map[string]any); ok {
		return Struct(st, m)
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, unsupportedValue(st, v)
	}
	m := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		m[iter.Key().String()] = iter.Value().Interface()
	}
	return Struct(st, m)
}

func listValue(lt *types.ListType, v any) ([]any, error) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, unsupportedValue(lt, v)
	}
	out := make([]any, rv.Len())
	for i := range out {
		e, err := Constant(lt.Element, rv.Index(i).Interface())
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		out[i] = e
	}
	return out, nil
}

func mapValue(mt *types.MapType, v any) (MapData, error) {
	var entries []KeyValue
	switch m := v.(type) {
	case []KeyValue:
		entries = m
	case MapData:
		entries = make([]KeyValue, m.Len())
		for i := range entries {
			entries[i] = KeyValue{Key: m.Keys[i], Value: m.Values[i]}
		}
	default:
		rv := reflect.ValueOf(v)
		if rv.Kind() != reflect.Map {
			return MapData{}, unsupportedValue(mt, v)
		}
		entries = make([]KeyValue, 0, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			entries = append(entries, KeyValue{Key: iter.Key().Interface(), Value: iter.Value().Interface()})
		}
		sort.SliceStable(entries, func(i, j int) bool {
			return fmt.Sprint(entries[i].Key) < fmt.Sprint(entries[j].Key)
		})
	}

	out := MapData{Keys: make([]any, len(entries)), Values: make([]any, len(entries))}
	for i, e := range entries {
		k, err := Constant(mt.Key, e.Key)
		if err != nil {
			return MapData{}, fmt.Errorf("map key %d: %w", i, err)
		}
		if k == nil {
			return MapData{}, fmt.Errorf("%w: null key %d for %s", ErrUnsupportedValue, i, mt)
		}
		val, err := Constant(mt.Value, e.Value)
		if err != nil {
			return MapData{}, fmt.Errorf("map value %d: %w", i, err)
		}
		out.Keys[i] = k
		out.Values[i] = val
	}
	return out, nil
}

func decimalValue(dt types.DecimalType, v any) (Decimal, error) {
	prec, scale := int32(dt.Precision), int32(dt.Scale)

	var (
		num decimal128.Num
		err error
	)
	switch d := v.(type) {
	case decimal.Decimal:
		num, err = decimal128.FromString(d.StringFixed(scale), prec, scale)
	case *decimal.Decimal:
		num, err = decimal128.FromString(d.StringFixed(scale), prec, scale)
	case *big.Rat:
		num, err = decimal128.FromString(d.FloatString(int(scale)), prec, scale)
	case Decimal:
		num, err = d.Num.Rescale(d.Scale, scale)
	case decimal128.Num:
		num = d
	default:
		return Decimal{}, unsupportedValue(dt, v)
	}
	if err != nil {
		return Decimal{}, fmt.Errorf("%s: %w", dt, err)
	}
	if !num.FitsInPrecision(prec) {
		return Decimal{}, fmt.Errorf("%w: %s does not fit %s", ErrUnsupportedValue, num.ToString(scale), dt)
	}
	return Decimal{Num: num, Precision: prec, Scale: scale}, nil
}

func stringValue(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case []byte:
		return string(s)
	case fmt.Stringer:
		return s.String()
	case byteSource:
		return string(s.Bytes())
	}
	return fmt.Sprint(v)
}

func bytesValue(t types.Type, v any) ([]byte, error) {
	switch b := v.(type) {
	case []byte:
		return b, nil
	case byteSource:
		src := b.Bytes()
		out := make([]byte, len(src))
		copy(out, src)
		return out, nil
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Array && rv.Type().Elem().Kind() == reflect.Uint8 {
		out := make([]byte, rv.Len())
		reflect.Copy(reflect.ValueOf(out), rv)
		return out, nil
	}
	return nil, unsupportedValue(t, v)
}

// isNilPointer reports whether v is a typed nil pointer such as a
// (*decimal.Decimal)(nil).
func isNilPointer(v any) bool {
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Pointer && rv.IsNil()
}

func unsupportedValue(t types.Type, v any) error {
	return fmt.Errorf("%w: %T for %s", ErrUnsupportedValue, v, t)
}
