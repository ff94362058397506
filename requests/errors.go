package requests

import "github.com/pkg/errors"

var (
	// ErrMissingField indicates a required field left at its zero value.
	ErrMissingField = errors.New("requests: missing required field")

	// ErrNegativeAmount indicates a negative gas limit, gas price, nonce or amount.
	ErrNegativeAmount = errors.New("requests: negative amount")

	// ErrArityMismatch indicates a call whose actuals do not match the formals of its signature.
	ErrArityMismatch = errors.New("requests: actuals do not match formals")

	// ErrTransferArgument indicates a receive call whose amount has the wrong kind of value.
	ErrTransferArgument = errors.New("requests: transfer amount does not match receive method")

	// ErrUnknownKind indicates a request kind or selector that no request encodes to.
	ErrUnknownKind = errors.New("requests: unknown request kind")

	// ErrSystemGasPrice indicates a system call with a gas price other than zero.
	ErrSystemGasPrice = errors.New("requests: system calls run at gas price zero")

	// ErrNotSignable indicates an attempt to sign a request that carries no signature.
	ErrNotSignable = errors.New("requests: request kind is not signed")
)
