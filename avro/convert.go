package avro

import (
	"errors"
	"strconv"
	"strings"

	"github.com/hugr-lab/tablescan-go/types"
)

// ToSchema converts a record node into an engine schema. Ids are assigned in
// depth-first preorder starting at 0, so converting the same tree always
// yields the same ids.
func ToSchema(root Node) (*types.Schema, error) {
	rec, ok := root.(Record)
	if !ok {
		return nil, &SchemaError{Err: ErrUnsupportedType, Type: nodeName(root), Path: "<root>"}
	}
	c := &converter{}
	fields, err := c.record(rec)
	if err != nil {
		return nil, err
	}
	return types.NewSchema(fields...), nil
}

// ToType converts any node into an engine type, numbering ids from 0.
func ToType(n Node) (types.Type, error) {
	c := &converter{}
	t, _, err := c.position(n)
	return t, err
}

// converter owns the id counter for a single conversion.
type converter struct {
	nextID int
	path   []string
}

func (c *converter) allocate() int {
	id := c.nextID
	c.nextID++
	return id
}

func (c *converter) record(rec Record) ([]types.NestedField, error) {
	fields := make([]types.NestedField, 0, len(rec.Fields))
	for _, f := range rec.Fields {
		id := c.allocate()
		c.push(f.Name)
		t, required, err := c.position(f.Type)
		c.pop()
		if err != nil {
			return nil, err
		}
		fields = append(fields, types.NestedField{
			ID:       id,
			Name:     f.Name,
			Required: required,
			Type:     t,
			Doc:      f.Doc,
		})
	}
	return fields, nil
}

// position converts the node found at a field, element or value position and
// reports whether that position is required.
func (c *converter) position(n Node) (types.Type, bool, error) {
	u, ok := n.(Union)
	if !ok {
		t, err := c.convert(n)
		return t, true, err
	}
	shape, err := ResolveUnion(u)
	if err != nil {
		return nil, false, c.annotate(err)
	}
	if shape.Collapses() {
		t, required, err := c.position(shape.Branches[0])
		return t, shape.Required() && required, err
	}
	t, err := c.tagged(shape)
	return t, shape.Required(), err
}

func (c *converter) tagged(shape UnionShape) (types.Type, error) {
	fields := make([]types.NestedField, 0, len(shape.Branches)+1)
	fields = append(fields, types.RequiredField(c.allocate(), TagField, types.Int))
	for i, b := range shape.Branches {
		name := BranchFieldPrefix + strconv.Itoa(i)
		id := c.allocate()
		c.push(name)
		t, _, err := c.position(b)
		c.pop()
		if err != nil {
			return nil, err
		}
		fields = append(fields, types.OptionalField(id, name, t))
	}
	return types.StructOf(fields...), nil
}

func (c *converter) convert(n Node) (types.Type, error) {
	switch v := n.(type) {
	case Record:
		fields, err := c.record(v)
		if err != nil {
			return nil, err
		}
		return types.StructOf(fields...), nil
	case Array:
		elementID := c.allocate()
		c.push("element")
		t, required, err := c.position(v.Items)
		c.pop()
		if err != nil {
			return nil, err
		}
		return &types.ListType{ElementID: elementID, ElementRequired: required, Element: t}, nil
	case Map:
		keyID := c.allocate()
		valueID := c.allocate()
		c.push("value")
		t, required, err := c.position(v.Values)
		c.pop()
		if err != nil {
			return nil, err
		}
		return &types.MapType{
			KeyID:         keyID,
			Key:           types.String,
			ValueID:       valueID,
			ValueRequired: required,
			Value:         t,
		}, nil
	case Union:
		t, _, err := c.position(v)
		return t, err
	}
	t, err := MapPrimitive(n)
	if err != nil {
		return nil, c.annotate(err)
	}
	return t, nil
}

func (c *converter) push(name string) { c.path = append(c.path, name) }
func (c *converter) pop()             { c.path = c.path[:len(c.path)-1] }

func (c *converter) annotate(err error) error {
	var se *SchemaError
	if errors.As(err, &se) && se.Path == "" && len(c.path) > 0 {
		se.Path = strings.Join(c.path, ".")
	}
	return err
}
