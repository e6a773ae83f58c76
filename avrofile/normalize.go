package avrofile

import (
	"fmt"
	"math"
	"math/big"
	"reflect"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/google/uuid"

	"github.com/hugr-lab/tablescan-go/avro"
	"github.com/hugr-lab/tablescan-go/convert"
	"github.com/hugr-lab/tablescan-go/types"
)

// Normalize rewrites a value produced by generic Avro decoding of node n
// into the input shapes the value converter accepts for engine type t.
//
// Multi-branch unions become {tag: branch, fieldN: value} mappings. Dates
// become int32 days since the epoch, times int64 microseconds since
// midnight, timestamps int64 microseconds since the epoch and uuids
// uuid.UUID values.
func Normalize(n avro.Node, t types.Type, v any) (any, error) {
	if v == nil {
		return nil, nil
	}

	switch node := n.(type) {
	case avro.Union:
		return normalizeUnion(node, t, v)
	case avro.Record:
		st, ok := t.(*types.StructType)
		if !ok || len(st.Fields) != len(node.Fields) {
			return nil, mismatch(n, t)
		}
		in, ok := v.(map[string]any)
		if !ok {
			return nil, unexpected(n, v)
		}
		out := make(map[string]any, len(node.Fields))
		for i, f := range node.Fields {
			fv, err := Normalize(f.Type, st.Fields[i].Type, in[f.Name])
			if err != nil {
				return nil, fmt.Errorf("%s: %w", f.Name, err)
			}
			out[st.Fields[i].Name] = fv
		}
		return out, nil
	case avro.Array:
		lt, ok := t.(*types.ListType)
		if !ok {
			return nil, mismatch(n, t)
		}
		in, ok := v.([]any)
		if !ok {
			return nil, unexpected(n, v)
		}
		out := make([]any, len(in))
		for i, e := range in {
			ev, err := Normalize(node.Items, lt.Element, e)
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", i, err)
			}
			out[i] = ev
		}
		return out, nil
	case avro.Map:
		mt, ok := t.(*types.MapType)
		if !ok {
			return nil, mismatch(n, t)
		}
		in, ok := v.(map[string]any)
		if !ok {
			return nil, unexpected(n, v)
		}
		out := make(map[string]any, len(in))
		for k, e := range in {
			ev, err := Normalize(node.Values, mt.Value, e)
			if err != nil {
				return nil, fmt.Errorf("value %q: %w", k, err)
			}
			out[k] = ev
		}
		return out, nil
	}
	return normalizePrimitive(t, v)
}

func normalizeUnion(u avro.Union, t types.Type, v any) (any, error) {
	shape, err := avro.ResolveUnion(u)
	if err != nil {
		return nil, err
	}
	idx, inner, ok := selectBranch(shape.Branches, v)
	if !ok {
		return nil, unexpected(u, v)
	}
	if shape.Collapses() {
		return Normalize(shape.Branches[0], t, inner)
	}

	st, ok := t.(*types.StructType)
	if !ok || len(st.Fields) != len(shape.Branches)+1 {
		return nil, mismatch(u, t)
	}
	bv, err := Normalize(shape.Branches[idx], st.Fields[idx+1].Type, inner)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		avro.TagField: int32(idx),
		st.Fields[idx+1].Name: bv,
	}, nil
}

// selectBranch finds the union branch a decoded value belongs to. Values of
// named or unresolvable branches arrive wrapped as {branchName: value}.
func selectBranch(branches []avro.Node, v any) (int, any, bool) {
	if m, ok := v.(map[string]any); ok && len(m) == 1 {
		for i, b := range branches {
			if inner, ok := m[avro.BranchName(b)]; ok {
				return i, inner, true
			}
		}
	}
	if len(branches) == 1 {
		return 0, v, true
	}
	for i, b := range branches {
		if matches(b, v) {
			return i, v, true
		}
	}
	return 0, nil, false
}

// matches reports whether a generically decoded value has the Go type
// produced for node n.
func matches(n avro.Node, v any) bool {
	switch node := n.(type) {
	case avro.Record, avro.Map:
		_, ok := v.(map[string]any)
		return ok
	case avro.Array:
		_, ok := v.([]any)
		return ok
	case avro.Enum:
		_, ok := v.(string)
		return ok
	case avro.Fixed:
		if node.Logical != nil && node.Logical.Name == avro.LogicalDecimal {
			_, ok := v.(*big.Rat)
			return ok
		}
		rv := reflect.ValueOf(v)
		return rv.Kind() == reflect.Array && rv.Len() == node.Size
	case avro.Primitive:
		if node.Logical != nil {
			switch node.Logical.Name {
			case avro.LogicalDecimal:
				_, ok := v.(*big.Rat)
				return ok
			case avro.LogicalDate, avro.LogicalTimestampMillis, avro.LogicalTimestampMicros,
				avro.LogicalLocalTimestampMillis, avro.LogicalLocalTimestampMicros:
				_, ok := v.(time.Time)
				return ok
			case avro.LogicalTimeMillis, avro.LogicalTimeMicros:
				_, ok := v.(time.Duration)
				return ok
			}
		}
		switch node.Kind {
		case avro.Boolean:
			_, ok := v.(bool)
			return ok
		case avro.Int:
			switch v.(type) {
			case int, int32:
				return true
			}
		case avro.Long:
			_, ok := v.(int64)
			return ok
		case avro.Float:
			_, ok := v.(float32)
			return ok
		case avro.Double:
			_, ok := v.(float64)
			return ok
		case avro.Bytes:
			_, ok := v.([]byte)
			return ok
		case avro.String:
			_, ok := v.(string)
			return ok
		}
	}
	return false
}

func normalizePrimitive(t types.Type, v any) (any, error) {
	switch t.Kind() {
	case types.KindInt:
		switch x := v.(type) {
		case int:
			return narrowInt(t, int64(x))
		case int64:
			return narrowInt(t, x)
		}
	case types.KindLong:
		switch x := v.(type) {
		case int:
			return int64(x), nil
		case int32:
			return int64(x), nil
		}
	case types.KindDate:
		switch x := v.(type) {
		case time.Time:
			return int32(arrow.Date32FromTime(x)), nil
		case int:
			return narrowInt(t, int64(x))
		}
	case types.KindTime:
		if x, ok := v.(time.Duration); ok {
			return x.Microseconds(), nil
		}
	case types.KindTimestamp:
		if x, ok := v.(time.Time); ok {
			return x.UnixMicro(), nil
		}
	case types.KindUUID:
		switch x := v.(type) {
		case string:
			id, err := uuid.Parse(x)
			if err != nil {
				return nil, fmt.Errorf("uuid %q: %w", x, err)
			}
			return id, nil
		case [16]byte:
			return uuid.UUID(x), nil
		}
	}
	return v, nil
}

func narrowInt(t types.Type, x int64) (any, error) {
	if x < math.MinInt32 || x > math.MaxInt32 {
		return nil, fmt.Errorf("%w: %d overflows %s", convert.ErrUnsupportedValue, x, t)
	}
	return int32(x), nil
}

func mismatch(n avro.Node, t types.Type) error {
	return fmt.Errorf("avro type %s does not match engine type %s", avro.BranchName(n), t)
}

func unexpected(n avro.Node, v any) error {
	return fmt.Errorf("unexpected %T decoded for avro type %s", v, avro.BranchName(n))
}
