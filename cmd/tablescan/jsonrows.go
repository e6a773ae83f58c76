package main

import (
	"fmt"
	"time"

	"github.com/hugr-lab/tablescan-go/convert"
	"github.com/hugr-lab/tablescan-go/types"
)

// jsonValue converts a native value of type t into a value encoding/json
// renders readably.
func jsonValue(t types.Type, v any) any {
	if v == nil {
		return nil
	}
	switch tt := t.(type) {
	case *types.StructType:
		row, ok := v.(convert.Row)
		if !ok {
			break
		}
		out := make(map[string]any, len(tt.Fields))
		for i, f := range tt.Fields {
			if i < len(row) {
				out[f.Name] = jsonValue(f.Type, row[i])
			}
		}
		return out
	case *types.ListType:
		list, ok := v.([]any)
		if !ok {
			break
		}
		out := make([]any, len(list))
		for i, e := range list {
			out[i] = jsonValue(tt.Element, e)
		}
		return out
	case *types.MapType:
		m, ok := v.(convert.MapData)
		if !ok {
			break
		}
		if tt.Key.Kind() == types.KindString {
			out := make(map[string]any, m.Len())
			for i := range m.Keys {
				out[fmt.Sprint(m.Keys[i])] = jsonValue(tt.Value, m.Values[i])
			}
			return out
		}
		out := make([]map[string]any, m.Len())
		for i := range m.Keys {
			out[i] = map[string]any{"key": jsonValue(tt.Key, m.Keys[i]), "value": jsonValue(tt.Value, m.Values[i])}
		}
		return out
	}

	switch x := v.(type) {
	case convert.Decimal:
		return x.String()
	case int32:
		if t.Kind() == types.KindDate {
			return time.Unix(int64(x)*86400, 0).UTC().Format(time.DateOnly)
		}
	case int64:
		switch t.Kind() {
		case types.KindTimestamp:
			return time.UnixMicro(x).UTC().Format(time.RFC3339Nano)
		case types.KindTime:
			return time.UnixMicro(x).UTC().Format("15:04:05.999999")
		}
	}
	return v
}
