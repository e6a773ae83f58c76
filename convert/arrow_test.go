package convert

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/decimal128"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/google/uuid"

	"github.com/hugr-lab/tablescan-go/types"
)

func TestAppendRow(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	schema := types.NewSchema(
		types.RequiredField(0, "id", types.Long),
		types.OptionalField(1, "price", types.Decimal(9, 2)),
		types.OptionalField(2, "day", types.Date),
		types.OptionalField(3, "at", types.TimestampTz),
		types.OptionalField(4, "key", types.UUID),
		types.OptionalField(5, "point", pointType()),
		types.OptionalField(6, "tags", &types.ListType{ElementID: 7, Element: types.String}),
		types.OptionalField(8, "attrs", &types.MapType{KeyID: 9, Key: types.String, ValueID: 10, Value: types.Int}),
	)
	as, err := types.ToArrowSchema(schema)
	if err != nil {
		t.Fatalf("ToArrowSchema() error = %v", err)
	}

	rb := array.NewRecordBuilder(mem, as)
	defer rb.Release()

	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	id := uuid.MustParse("f79c3e09-677c-4f26-9b04-1d5a4b5e9a21")
	rows := []Row{
		{
			int64(1),
			Decimal{Num: decimal128.FromI64(1999), Precision: 9, Scale: 2},
			at,
			at,
			id,
			Row{int32(3), "p"},
			[]any{"a", "b"},
			MapData{Keys: []any{"k"}, Values: []any{int32(5)}},
		},
		{int64(2), nil, nil, nil, nil, nil, nil, nil},
	}
	for _, r := range rows {
		if err := AppendRow(rb, schema.AsStruct(), r); err != nil {
			t.Fatalf("AppendRow() error = %v", err)
		}
	}

	rec := rb.NewRecordBatch()
	defer rec.Release()

	if rec.NumRows() != 2 {
		t.Fatalf("NumRows() = %d, want 2", rec.NumRows())
	}
	if got := rec.Column(0).(*array.Int64).Value(1); got != 2 {
		t.Errorf("id[1] = %d, want 2", got)
	}
	if got := rec.Column(1).(*array.Decimal128).Value(0); got != decimal128.FromI64(1999) {
		t.Errorf("price[0] = %v", got)
	}
	if got := rec.Column(2).(*array.Date32).Value(0); got != arrow.Date32FromTime(at) {
		t.Errorf("day[0] = %v", got)
	}
	if got := rec.Column(3).(*array.Timestamp).Value(0); got != arrow.Timestamp(at.UnixMicro()) {
		t.Errorf("at[0] = %v", got)
	}
	if got := rec.Column(4).(*array.FixedSizeBinary).Value(0); string(got) != string(id[:]) {
		t.Errorf("key[0] = %x", got)
	}
	point := rec.Column(5).(*array.Struct)
	if got := point.Field(0).(*array.Int32).Value(0); got != 3 {
		t.Errorf("point.x[0] = %d, want 3", got)
	}
	tags := rec.Column(6).(*array.List)
	if got := tags.ListValues().(*array.String).Value(1); got != "b" {
		t.Errorf("tags[0][1] = %q, want b", got)
	}
	attrs := rec.Column(7).(*array.Map)
	if got := attrs.Keys().(*array.String).Value(0); got != "k" {
		t.Errorf("attrs key = %q, want k", got)
	}

	for i := 1; i < int(rec.NumCols()); i++ {
		if !rec.Column(i).IsNull(1) {
			t.Errorf("column %d row 1 is not null", i)
		}
	}
}

func TestAppendRowRejectsWrongShape(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	schema := types.NewSchema(types.RequiredField(0, "flag", types.Boolean))
	as, err := types.ToArrowSchema(schema)
	if err != nil {
		t.Fatalf("ToArrowSchema() error = %v", err)
	}
	rb := array.NewRecordBuilder(mem, as)
	defer rb.Release()

	if err := AppendRow(rb, schema.AsStruct(), Row{"yes"}); !errors.Is(err, ErrUnsupportedValue) {
		t.Errorf("AppendRow(string) error = %v, want ErrUnsupportedValue", err)
	}
	if err := AppendRow(rb, schema.AsStruct(), Row{true, false}); !errors.Is(err, ErrUnsupportedValue) {
		t.Errorf("AppendRow(extra) error = %v, want ErrUnsupportedValue", err)
	}
}

func TestAppendValueRejectsOverflowAndNullKeys(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	ib := array.NewInt32Builder(mem)
	defer ib.Release()
	for _, v := range []any{int64(5_000_000_000), int64(math.MinInt32) - 1} {
		if err := AppendValue(ib, types.Int, v); !errors.Is(err, ErrUnsupportedValue) {
			t.Errorf("AppendValue(%d) error = %v, want ErrUnsupportedValue", v, err)
		}
	}
	if err := AppendValue(ib, types.Int, int64(math.MaxInt32)); err != nil {
		t.Errorf("AppendValue(MaxInt32) error = %v", err)
	}
	if ib.Len() != 1 {
		t.Errorf("builder holds %d values, want 1", ib.Len())
	}

	mt := &types.MapType{KeyID: 1, Key: types.String, ValueID: 2, Value: types.Long}
	at, err := types.ToArrowType(mt)
	if err != nil {
		t.Fatalf("ToArrowType() error = %v", err)
	}
	mb := array.NewBuilder(mem, at)
	defer mb.Release()
	m := MapData{Keys: []any{nil}, Values: []any{int64(1)}}
	if err := AppendValue(mb, mt, m); !errors.Is(err, ErrUnsupportedValue) {
		t.Errorf("AppendValue(null key) error = %v, want ErrUnsupportedValue", err)
	}
}
