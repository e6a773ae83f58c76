package avro

import (
	"github.com/hugr-lab/tablescan-go/types"
)

// MapPrimitive maps a primitive, fixed or enum node to its engine type.
// Any other node, the bare null marker, and logical types that are unknown or
// do not fit their base type fail with ErrUnsupportedType.
func MapPrimitive(n Node) (types.Type, error) {
	switch v := n.(type) {
	case Primitive:
		return mapPrimitive(v)
	case Fixed:
		return mapFixed(v)
	case Enum:
		return types.String, nil
	}
	return nil, unsupported(nodeName(n))
}

func mapPrimitive(p Primitive) (types.Type, error) {
	if p.Logical != nil {
		return mapLogical(p)
	}
	switch p.Kind {
	case Boolean:
		return types.Boolean, nil
	case Int:
		return types.Int, nil
	case Long:
		return types.Long, nil
	case Float:
		return types.Float, nil
	case Double:
		return types.Double, nil
	case Bytes:
		return types.Binary, nil
	case String:
		return types.String, nil
	}
	return nil, unsupported(p.Kind.String())
}

func mapLogical(p Primitive) (types.Type, error) {
	l := p.Logical
	switch {
	case l.Name == LogicalDecimal && p.Kind == Bytes:
		return types.Decimal(l.Precision, l.Scale), nil
	case l.Name == LogicalUUID && p.Kind == String:
		return types.UUID, nil
	case l.Name == LogicalDate && p.Kind == Int:
		return types.Date, nil
	case l.Name == LogicalTimeMillis && p.Kind == Int,
		l.Name == LogicalTimeMicros && p.Kind == Long:
		return types.Time, nil
	case l.Name == LogicalTimestampMillis && p.Kind == Long,
		l.Name == LogicalTimestampMicros && p.Kind == Long:
		return timestamp(p, true), nil
	case l.Name == LogicalLocalTimestampMillis && p.Kind == Long,
		l.Name == LogicalLocalTimestampMicros && p.Kind == Long:
		return timestamp(p, false), nil
	}
	return nil, unsupported(p.Kind.String() + "." + l.Name)
}

func timestamp(p Primitive, withZone bool) types.Type {
	if adjust, ok := p.Props[AdjustToUTCProp].(bool); ok {
		withZone = adjust
	}
	return types.TimestampType{WithZone: withZone}
}

func mapFixed(f Fixed) (types.Type, error) {
	if f.Logical == nil {
		return types.Fixed(f.Size), nil
	}
	switch {
	case f.Logical.Name == LogicalDecimal:
		return types.Decimal(f.Logical.Precision, f.Logical.Scale), nil
	case f.Logical.Name == LogicalUUID && f.Size == 16:
		return types.UUID, nil
	}
	return nil, unsupported("fixed." + f.Logical.Name)
}

func nodeName(n Node) string {
	switch v := n.(type) {
	case Primitive:
		if v.Logical != nil {
			return v.Kind.String() + "." + v.Logical.Name
		}
		return v.Kind.String()
	case Record:
		return "record"
	case Array:
		return "array"
	case Map:
		return "map"
	case Union:
		return "union"
	case Fixed:
		return "fixed"
	case Enum:
		return "enum"
	}
	return "unknown"
}
