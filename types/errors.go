package types

import "errors"

var (
	// ErrUnknownType indicates an empty class name or a name that is not one of
	// the primitive type names where a primitive type is required.
	ErrUnknownType = errors.New("types: unknown type")

	// ErrUnknownSelector indicates a type selector that no type encodes to.
	ErrUnknownSelector = errors.New("types: unknown type selector")
)
