package hotmarsh

import "math"

// Stream constants shared with the remote object-serialization format.
const (
	StreamMagic   uint16 = 0xACED
	StreamVersion uint16 = 5

	// TagBlockData introduces a block whose length fits in one byte.
	TagBlockData byte = 0x77
	// TagBlockDataLong introduces a block with a 4-byte length.
	TagBlockDataLong byte = 0x7A

	streamHeaderSize = 4
	maxShortBlock    = 255
)

// frameSize returns the size of the framed stream for a body of n bytes.
func frameSize(n int) int {
	if n <= maxShortBlock {
		return streamHeaderSize + 2 + n
	}
	return streamHeaderSize + 5 + n
}

// appendFrame appends the stream header, a single block header and body to dst.
//
// The whole body always goes into one block, whatever its size.
// Bodies beyond the 4-byte block length are rejected.
func appendFrame(dst, body []byte) ([]byte, error) {
	if int64(len(body)) > math.MaxInt32 {
		return nil, ErrBufferOverflow
	}
	dst = Order.AppendUint16(dst, StreamMagic)
	dst = Order.AppendUint16(dst, StreamVersion)
	if len(body) <= maxShortBlock {
		dst = append(dst, TagBlockData, byte(len(body)))
	} else {
		dst = append(dst, TagBlockDataLong)
		dst = Order.AppendUint32(dst, uint32(len(body)))
	}
	return append(dst, body...), nil
}

// unframe validates the stream and block headers of b and returns the body.
func unframe(b []byte) ([]byte, error) {
	if len(b) < streamHeaderSize+2 ||
		Order.Uint16(b) != StreamMagic ||
		Order.Uint16(b[2:]) != StreamVersion {
		return nil, ErrBadStreamHeader
	}
	rest := b[streamHeaderSize:]
	var n int
	switch rest[0] {
	case TagBlockData:
		n, rest = int(rest[1]), rest[2:]
	case TagBlockDataLong:
		if len(rest) < 5 {
			return nil, ErrBadBlockHeader
		}
		n, rest = int(Order.Uint32(rest[1:])), rest[5:]
	default:
		return nil, ErrBadBlockHeader
	}
	if n != len(rest) {
		return nil, ErrBadBlockHeader
	}
	return rest, nil
}
