package convert

import (
	"fmt"
	"math"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/decimal128"
	"github.com/google/uuid"

	"github.com/hugr-lab/tablescan-go/types"
)

// AppendRow appends one native row to a record builder whose schema was
// produced by types.ToArrowSchema for st.
func AppendRow(rb *array.RecordBuilder, st *types.StructType, row Row) error {
	if len(row) != len(st.Fields) {
		return fmt.Errorf("%w: row has %d values, schema has %d fields", ErrUnsupportedValue, len(row), len(st.Fields))
	}
	for i, f := range st.Fields {
		if err := AppendValue(rb.Field(i), f.Type, row[i]); err != nil {
			return fmt.Errorf("field %q: %w", f.Name, err)
		}
	}
	return nil
}

// AppendValue appends a native value of engine type t to b. A nil value
// appends a null.
func AppendValue(b array.Builder, t types.Type, v any) error {
	if v == nil {
		b.AppendNull()
		return nil
	}

	switch bb := b.(type) {
	case *array.BooleanBuilder:
		x, ok := v.(bool)
		if !ok {
			return unsupportedValue(t, v)
		}
		bb.Append(x)
	case *array.Int32Builder:
		x, ok := toInt64(v)
		if !ok {
			return unsupportedValue(t, v)
		}
		if x < math.MinInt32 || x > math.MaxInt32 {
			return fmt.Errorf("%w: %d overflows %s", ErrUnsupportedValue, x, t)
		}
		bb.Append(int32(x))
	case *array.Int64Builder:
		x, ok := toInt64(v)
		if !ok {
			return unsupportedValue(t, v)
		}
		bb.Append(x)
	case *array.Float32Builder:
		switch x := v.(type) {
		case float32:
			bb.Append(x)
		case float64:
			bb.Append(float32(x))
		default:
			return unsupportedValue(t, v)
		}
	case *array.Float64Builder:
		switch x := v.(type) {
		case float64:
			bb.Append(x)
		case float32:
			bb.Append(float64(x))
		default:
			return unsupportedValue(t, v)
		}
	case *array.Decimal128Builder:
		switch x := v.(type) {
		case Decimal:
			bb.Append(x.Num)
		case decimal128.Num:
			bb.Append(x)
		default:
			d, err := Constant(t, v)
			if err != nil {
				return err
			}
			dec, ok := d.(Decimal)
			if !ok {
				return unsupportedValue(t, v)
			}
			bb.Append(dec.Num)
		}
	case *array.Date32Builder:
		if tm, ok := v.(time.Time); ok {
			bb.Append(arrow.Date32FromTime(tm))
			return nil
		}
		days, ok := toInt64(v)
		if !ok {
			return unsupportedValue(t, v)
		}
		bb.Append(arrow.Date32(days))
	case *array.Time64Builder:
		if d, ok := v.(time.Duration); ok {
			bb.Append(arrow.Time64(d.Microseconds()))
			return nil
		}
		micros, ok := toInt64(v)
		if !ok {
			return unsupportedValue(t, v)
		}
		bb.Append(arrow.Time64(micros))
	case *array.TimestampBuilder:
		if tm, ok := v.(time.Time); ok {
			bb.Append(arrow.Timestamp(tm.UnixMicro()))
			return nil
		}
		micros, ok := toInt64(v)
		if !ok {
			return unsupportedValue(t, v)
		}
		bb.Append(arrow.Timestamp(micros))
	case *array.StringBuilder:
		bb.Append(stringValue(v))
	case *array.FixedSizeBinaryBuilder:
		if t.Kind() == types.KindUUID {
			id, err := uuidValue(v)
			if err != nil {
				return err
			}
			bb.Append(id[:])
			return nil
		}
		raw, err := Constant(t, v)
		if err != nil {
			return err
		}
		fixed, ok := raw.([]byte)
		if !ok {
			return unsupportedValue(t, v)
		}
		bb.Append(fixed)
	case *array.BinaryBuilder:
		raw, err := bytesValue(t, v)
		if err != nil {
			return err
		}
		bb.Append(raw)
	case *array.StructBuilder:
		return appendStruct(bb, t, v)
	case *array.MapBuilder:
		return appendMap(bb, t, v)
	case *array.ListBuilder:
		return appendList(bb, t, v)
	default:
		return fmt.Errorf("%w: no appender for %s", ErrUnsupportedValue, b.Type())
	}
	return nil
}

func appendStruct(b *array.StructBuilder, t types.Type, v any) error {
	st, ok := t.(*types.StructType)
	if !ok {
		return unsupportedValue(t, v)
	}
	row, ok := v.(Row)
	if !ok {
		var err error
		if row, err = structValue(st, v); err != nil {
			return err
		}
	}
	if len(row) != len(st.Fields) {
		return fmt.Errorf("%w: struct has %d values, want %d", ErrUnsupportedValue, len(row), len(st.Fields))
	}
	b.Append(true)
	for i, f := range st.Fields {
		if err := AppendValue(b.FieldBuilder(i), f.Type, row[i]); err != nil {
			return fmt.Errorf("field %q: %w", f.Name, err)
		}
	}
	return nil
}

func appendList(b *array.ListBuilder, t types.Type, v any) error {
	lt, ok := t.(*types.ListType)
	if !ok {
		return unsupportedValue(t, v)
	}
	elems, ok := v.([]any)
	if !ok {
		var err error
		if elems, err = listValue(lt, v); err != nil {
			return err
		}
	}
	b.Append(true)
	vb := b.ValueBuilder()
	for i, e := range elems {
		if err := AppendValue(vb, lt.Element, e); err != nil {
			return fmt.Errorf("element %d: %w", i, err)
		}
	}
	return nil
}

func appendMap(b *array.MapBuilder, t types.Type, v any) error {
	mt, ok := t.(*types.MapType)
	if !ok {
		return unsupportedValue(t, v)
	}
	m, ok := v.(MapData)
	if !ok {
		var err error
		if m, err = mapValue(mt, v); err != nil {
			return err
		}
	}
	b.Append(true)
	kb, ib := b.KeyBuilder(), b.ItemBuilder()
	for i := range m.Keys {
		if m.Keys[i] == nil {
			return fmt.Errorf("%w: null key %d for %s", ErrUnsupportedValue, i, t)
		}
		if err := AppendValue(kb, mt.Key, m.Keys[i]); err != nil {
			return fmt.Errorf("map key %d: %w", i, err)
		}
		if err := AppendValue(ib, mt.Value, m.Values[i]); err != nil {
			return fmt.Errorf("map value %d: %w", i, err)
		}
	}
	return nil
}

func uuidValue(v any) (uuid.UUID, error) {
	switch x := v.(type) {
	case uuid.UUID:
		return x, nil
	case [16]byte:
		return uuid.UUID(x), nil
	case []byte:
		return uuid.FromBytes(x)
	case string:
		return uuid.Parse(x)
	}
	return uuid.Nil, unsupportedValue(types.UUID, v)
}

func toInt64(v any) (int64, bool) {
	switch x := v.(type) {
	case int:
		return int64(x), true
	case int8:
		return int64(x), true
	case int16:
		return int64(x), true
	case int32:
		return int64(x), true
	case int64:
		return x, true
	case uint8:
		return int64(x), true
	case uint16:
		return int64(x), true
	case uint32:
		return int64(x), true
	}
	return 0, false
}
