package avro

// UnionShape is the resolved form of a union position.
type UnionShape struct {
	// Branches are the non-null members in declaration order.
	Branches []Node
	// HasNull is set when a null member was removed.
	HasNull bool
}

// Collapses reports whether the union is represented directly as its only
// branch instead of as a tagged struct.
func (s UnionShape) Collapses() bool {
	return len(s.Branches) == 1
}

// Required reports the requiredness of the field or element at the union's
// position. A declared default never changes it.
func (s UnionShape) Required() bool {
	return !s.HasNull
}

// ResolveUnion removes the null marker from u, keeping member order. A union
// containing nothing but null fails with ErrEmptyUnion.
func ResolveUnion(u Union) (UnionShape, error) {
	shape := UnionShape{Branches: make([]Node, 0, len(u.Members))}
	for _, m := range u.Members {
		if IsNull(m) {
			shape.HasNull = true
			continue
		}
		shape.Branches = append(shape.Branches, m)
	}
	if len(shape.Branches) == 0 {
		return UnionShape{}, &SchemaError{Err: ErrEmptyUnion}
	}
	return shape, nil
}

// TagField and BranchFieldPrefix name the members of a materialized union struct.
const (
	TagField          = "tag"
	BranchFieldPrefix = "field"
)

// BranchName returns the name that identifies n among the members of a
// union in Avro's JSON and generic encodings: the full name of named types,
// otherwise the type name with any logical type appended.
func BranchName(n Node) string {
	switch v := n.(type) {
	case Record:
		return v.Name
	case Fixed:
		return v.Name
	case Enum:
		return v.Name
	}
	return nodeName(n)
}
