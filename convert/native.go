// Package convert transcodes engine-typed values into the native row
// representation produced by scans, and appends native values into Arrow
// builders.
//
// Native representation per engine type:
//
//	struct   Row, fields in schema order
//	list     []any
//	map      MapData, parallel key and value slices
//	decimal  Decimal (decimal128 with declared precision and scale)
//	string   string
//	fixed    []byte of the declared length
//	binary   []byte
//	other    the input value, unchanged
//
// A nil input always converts to nil.
package convert

import (
	"github.com/apache/arrow-go/v18/arrow/decimal128"
)

// Row is a native struct value: one entry per schema field, in schema order.
type Row []any

// Len returns the number of fields.
func (r Row) Len() int { return len(r) }

// IsNull reports whether field i is null.
func (r Row) IsNull(i int) bool { return r[i] == nil }

// MapData is a native map value. Keys[i] is paired with Values[i].
type MapData struct {
	Keys   []any
	Values []any
}

// Len returns the number of entries.
func (m MapData) Len() int { return len(m.Keys) }

// KeyValue is one entry of an ordered map input.
type KeyValue struct {
	Key   any
	Value any
}

// Decimal is a native fixed-point decimal.
type Decimal struct {
	Num       decimal128.Num
	Precision int32
	Scale     int32
}

func (d Decimal) String() string {
	return d.Num.ToString(d.Scale)
}
