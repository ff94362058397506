package values

import "errors"

var (
	// ErrInvalidHash indicates a transaction hash that is not 64 hexadecimal digits.
	ErrInvalidHash = errors.New("values: transaction hash must be 64 hex digits")

	// ErrInvalidProgressive indicates a missing or negative storage reference progressive.
	ErrInvalidProgressive = errors.New("values: progressive must be a non-negative integer")

	// ErrInvalidReference indicates a textual storage reference not of the form hash#progressive.
	ErrInvalidReference = errors.New("values: malformed storage reference")

	// ErrInvalidValue indicates text that cannot be converted into a value of the requested type.
	ErrInvalidValue = errors.New("values: invalid value")

	// ErrUnknownSelector indicates a value selector that no value encodes to.
	ErrUnknownSelector = errors.New("values: unknown value selector")
)
