package hotmarsh

import "errors"

var (
	// ErrInvalidChar indicates a char write of a rune that does not fit in a single
	// UTF-16 code unit.
	ErrInvalidChar = errors.New("hotmarsh: char must be exactly one UTF-16 code unit")

	// ErrInvalidString indicates a string that is not valid UTF-8 and therefore has no
	// well-defined modified UTF-8 form.
	ErrInvalidString = errors.New("hotmarsh: string is not valid UTF-8")

	// ErrStringTooLong indicates a string whose modified UTF-8 encoding does not fit the
	// 2-byte length prefix.
	ErrStringTooLong = errors.New("hotmarsh: encoded string longer than 65535 bytes")

	// ErrNilValue indicates a nil big integer, byte slice or encoder where a value is required.
	ErrNilValue = errors.New("hotmarsh: nil value")

	// ErrNegativeCompact indicates a negative length or count passed to WriteCompactInt.
	ErrNegativeCompact = errors.New("hotmarsh: compact int must not be negative")

	// ErrTableOverflow indicates that a memoization table ran out of indexes.
	ErrTableOverflow = errors.New("hotmarsh: too many shared entries")

	// ErrBufferOverflow indicates a write past the configured buffer limit.
	// The write is rejected, never truncated.
	ErrBufferOverflow = errors.New("hotmarsh: write exceeds buffer limit")

	// ErrContextSealed indicates a write to a context that has already been flushed.
	ErrContextSealed = errors.New("hotmarsh: marshalling context used after flush")

	// ErrBadStreamHeader indicates a buffer that does not start with the stream magic and version.
	ErrBadStreamHeader = errors.New("hotmarsh: bad stream header")

	// ErrBadBlockHeader indicates a buffer whose data block header is missing or inconsistent
	// with the buffer length.
	ErrBadBlockHeader = errors.New("hotmarsh: bad block header")

	// ErrBadSharedIndex indicates a back-reference to an entry that was never written.
	ErrBadSharedIndex = errors.New("hotmarsh: back-reference to unknown shared entry")

	// ErrTruncatedData indicates that a read could not complete because the body ended
	// before all expected bytes were read.
	ErrTruncatedData = errors.New("hotmarsh: truncated data")

	// ErrTrailingData indicates bytes left in the body after decoding finished.
	ErrTrailingData = errors.New("hotmarsh: trailing data after decoding")
)
