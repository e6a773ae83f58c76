package types

import (
	"fmt"
	"strconv"

	"github.com/apache/arrow-go/v18/arrow"
)

// FieldIDKey is the Arrow field metadata key holding the engine field id.
const FieldIDKey = "PARQUET:field_id"

// ToArrowSchema converts an engine schema to an Arrow schema. Every Arrow
// field, including list elements and map keys/values, carries its engine id
// under FieldIDKey.
func ToArrowSchema(s *Schema) (*arrow.Schema, error) {
	fields := make([]arrow.Field, len(s.Fields()))
	for i, f := range s.Fields() {
		af, err := ToArrowField(f)
		if err != nil {
			return nil, err
		}
		fields[i] = af
	}
	return arrow.NewSchema(fields, nil), nil
}

// ToArrowField converts one nested field.
func ToArrowField(f NestedField) (arrow.Field, error) {
	dt, err := ToArrowType(f.Type)
	if err != nil {
		return arrow.Field{}, fmt.Errorf("field %q: %w", f.Name, err)
	}
	return arrow.Field{
		Name:     f.Name,
		Type:     dt,
		Nullable: !f.Required,
		Metadata: fieldIDMetadata(f.ID),
	}, nil
}

// ToArrowType converts an engine type to the Arrow type used for its values.
//
// Times and timestamps use microsecond units, uuid is stored as a 16 byte
// FixedSizeBinary.
func ToArrowType(t Type) (arrow.DataType, error) {
	switch v := t.(type) {
	case DecimalType:
		return &arrow.Decimal128Type{Precision: int32(v.Precision), Scale: int32(v.Scale)}, nil
	case FixedType:
		return &arrow.FixedSizeBinaryType{ByteWidth: v.Length}, nil
	case TimestampType:
		if v.WithZone {
			return &arrow.TimestampType{Unit: arrow.Microsecond, TimeZone: "UTC"}, nil
		}
		return &arrow.TimestampType{Unit: arrow.Microsecond}, nil
	case *StructType:
		fields := make([]arrow.Field, len(v.Fields))
		for i, f := range v.Fields {
			af, err := ToArrowField(f)
			if err != nil {
				return nil, err
			}
			fields[i] = af
		}
		return arrow.StructOf(fields...), nil
	case *ListType:
		elem, err := ToArrowType(v.Element)
		if err != nil {
			return nil, fmt.Errorf("list element: %w", err)
		}
		return arrow.ListOfField(arrow.Field{
			Name:     "element",
			Type:     elem,
			Nullable: !v.ElementRequired,
			Metadata: fieldIDMetadata(v.ElementID),
		}), nil
	case *MapType:
		key, err := ToArrowType(v.Key)
		if err != nil {
			return nil, fmt.Errorf("map key: %w", err)
		}
		value, err := ToArrowType(v.Value)
		if err != nil {
			return nil, fmt.Errorf("map value: %w", err)
		}
		mt := arrow.MapOfWithMetadata(key, fieldIDMetadata(v.KeyID), value, fieldIDMetadata(v.ValueID))
		mt.SetItemNullable(!v.ValueRequired)
		return mt, nil
	}

	switch t.Kind() {
	case KindBoolean:
		return arrow.FixedWidthTypes.Boolean, nil
	case KindInt:
		return arrow.PrimitiveTypes.Int32, nil
	case KindLong:
		return arrow.PrimitiveTypes.Int64, nil
	case KindFloat:
		return arrow.PrimitiveTypes.Float32, nil
	case KindDouble:
		return arrow.PrimitiveTypes.Float64, nil
	case KindDate:
		return arrow.FixedWidthTypes.Date32, nil
	case KindTime:
		return arrow.FixedWidthTypes.Time64us, nil
	case KindString:
		return arrow.BinaryTypes.String, nil
	case KindUUID:
		return &arrow.FixedSizeBinaryType{ByteWidth: 16}, nil
	case KindBinary:
		return arrow.BinaryTypes.Binary, nil
	}
	return nil, fmt.Errorf("no arrow type for %s", t)
}

// FieldID returns the engine id stored in Arrow field metadata.
func FieldID(f arrow.Field) (int, bool) {
	v, ok := f.Metadata.GetValue(FieldIDKey)
	if !ok {
		return 0, false
	}
	id, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return id, true
}

func fieldIDMetadata(id int) arrow.Metadata {
	return arrow.NewMetadata([]string{FieldIDKey}, []string{strconv.Itoa(id)})
}
