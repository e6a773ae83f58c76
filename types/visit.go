package types

// Find walks t depth-first and returns the first type, t included, for which
// match returns true. It returns nil when nothing matches.
func Find(t Type, match func(Type) bool) Type {
	if match(t) {
		return t
	}
	switch v := t.(type) {
	case *StructType:
		for _, f := range v.Fields {
			if found := Find(f.Type, match); found != nil {
				return found
			}
		}
	case *ListType:
		return Find(v.Element, match)
	case *MapType:
		if found := Find(v.Key, match); found != nil {
			return found
		}
		return Find(v.Value, match)
	}
	return nil
}

// HasTimestampWithoutZone reports whether any column in the schema, at any
// depth, is a timestamp without zone adjustment.
func HasTimestampWithoutZone(s *Schema) bool {
	return Find(s.AsStruct(), func(t Type) bool {
		ts, ok := t.(TimestampType)
		return ok && !ts.WithZone
	}) != nil
}

// IndexByID returns the type for every id in the schema: struct fields,
// list elements, map keys and map values.
func IndexByID(s *Schema) map[int]Type {
	index := make(map[int]Type)
	indexStruct(s.AsStruct(), index)
	return index
}

func indexStruct(st *StructType, index map[int]Type) {
	for _, f := range st.Fields {
		index[f.ID] = f.Type
		indexType(f.Type, index)
	}
}

func indexType(t Type, index map[int]Type) {
	switch v := t.(type) {
	case *StructType:
		indexStruct(v, index)
	case *ListType:
		index[v.ElementID] = v.Element
		indexType(v.Element, index)
	case *MapType:
		index[v.KeyID] = v.Key
		indexType(v.Key, index)
		index[v.ValueID] = v.Value
		indexType(v.Value, index)
	}
}

// HighestFieldID returns the largest id in the schema, or -1 for an empty schema.
func HighestFieldID(s *Schema) int {
	highest := -1
	for id := range IndexByID(s) {
		if id > highest {
			highest = id
		}
	}
	return highest
}
