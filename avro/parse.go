package avro

import (
	"fmt"

	hamba "github.com/hamba/avro/v2"
)

// Parse parses Avro schema JSON text into a Node tree. Named types are
// resolved against a cache private to this call.
func Parse(text string) (Node, error) {
	s, err := hamba.ParseWithCache(text, "", &hamba.SchemaCache{})
	if err != nil {
		return nil, fmt.Errorf("avro: parse schema: %w", err)
	}
	return FromAvro(s)
}

// FromAvro converts a schema parsed by hamba/avro into a Node tree.
// Recursive named records cannot be represented and fail with
// ErrUnsupportedType.
func FromAvro(s hamba.Schema) (Node, error) {
	a := &adapter{active: make(map[string]bool)}
	return a.node(s)
}

type adapter struct {
	// active holds the full names of the records being converted.
	active map[string]bool
}

func (a *adapter) node(s hamba.Schema) (Node, error) {
	switch v := s.(type) {
	case *hamba.NullSchema:
		return Prim(Null), nil
	case *hamba.PrimitiveSchema:
		return primitive(v)
	case *hamba.RecordSchema:
		return a.record(v)
	case *hamba.ArraySchema:
		items, err := a.node(v.Items())
		if err != nil {
			return nil, err
		}
		return Array{Items: items}, nil
	case *hamba.MapSchema:
		values, err := a.node(v.Values())
		if err != nil {
			return nil, err
		}
		return Map{Values: values}, nil
	case *hamba.UnionSchema:
		members := make([]Node, 0, len(v.Types()))
		for _, m := range v.Types() {
			n, err := a.node(m)
			if err != nil {
				return nil, err
			}
			members = append(members, n)
		}
		return Union{Members: members}, nil
	case *hamba.FixedSchema:
		return Fixed{Name: v.FullName(), Size: v.Size(), Logical: logical(v.Logical())}, nil
	case *hamba.EnumSchema:
		return Enum{Name: v.FullName(), Symbols: v.Symbols()}, nil
	case *hamba.RefSchema:
		return a.node(v.Schema())
	}
	return nil, unsupported(string(s.Type()))
}

func (a *adapter) record(rs *hamba.RecordSchema) (Node, error) {
	name := rs.FullName()
	if a.active[name] {
		return nil, &SchemaError{Err: ErrUnsupportedType, Type: "recursive record " + name}
	}
	a.active[name] = true
	defer delete(a.active, name)

	rec := Record{Name: name, Doc: rs.Doc(), Fields: make([]Field, 0, len(rs.Fields()))}
	for _, f := range rs.Fields() {
		t, err := a.node(f.Type())
		if err != nil {
			return nil, err
		}
		rec.Fields = append(rec.Fields, Field{
			Name:       f.Name(),
			Doc:        f.Doc(),
			Type:       t,
			HasDefault: f.HasDefault(),
			Default:    f.Default(),
		})
	}
	return rec, nil
}

var primitiveKinds = map[hamba.Type]PrimitiveKind{
	hamba.Boolean: Boolean,
	hamba.Int:     Int,
	hamba.Long:    Long,
	hamba.Float:   Float,
	hamba.Double:  Double,
	hamba.Bytes:   Bytes,
	hamba.String:  String,
}

func primitive(ps *hamba.PrimitiveSchema) (Node, error) {
	kind, ok := primitiveKinds[ps.Type()]
	if !ok {
		return nil, unsupported(string(ps.Type()))
	}
	p := Primitive{Kind: kind, Logical: logical(ps.Logical())}
	if adjust := ps.Prop(AdjustToUTCProp); adjust != nil {
		p.Props = map[string]any{AdjustToUTCProp: adjust}
	}
	return p, nil
}

func logical(ls hamba.LogicalSchema) *Logical {
	if ls == nil {
		return nil
	}
	l := &Logical{Name: string(ls.Type())}
	if dec, ok := ls.(*hamba.DecimalLogicalSchema); ok {
		l.Precision = dec.Precision()
		l.Scale = dec.Scale()
	}
	return l
}
