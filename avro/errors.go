package avro

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedType indicates an Avro type with no engine mapping.
	ErrUnsupportedType = errors.New("unsupported avro type")

	// ErrEmptyUnion indicates a union whose only member is null.
	ErrEmptyUnion = errors.New("union has no non-null member")
)

// SchemaError reports a conversion failure at one position of the schema.
// Err is ErrUnsupportedType or ErrEmptyUnion.
type SchemaError struct {
	Err  error
	Type string
	Path string
}

func (e *SchemaError) Error() string {
	msg := e.Err.Error()
	if e.Type != "" {
		msg = fmt.Sprintf("%s %q", msg, e.Type)
	}
	if e.Path != "" {
		msg += " at " + e.Path
	}
	return "avro: " + msg
}

func (e *SchemaError) Unwrap() error {
	return e.Err
}

func unsupported(typeName string) *SchemaError {
	return &SchemaError{Err: ErrUnsupportedType, Type: typeName}
}
