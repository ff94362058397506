package hotmarsh

import (
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"math"
	"math/big"
)

// Table identifies one of the memoization tables of a stream.
type Table int

const (
	TableStrings Table = iota
	TableFieldSignatures
	TableStorageReferences
	TableTransactionReferences
	tableCount
)

// Reader decodes the body of a framed stream.
// It mirrors Context: the first error is latched and later reads become no-ops
// returning zero values. Shared entries are resolved against tables rebuilt
// in the order they were first read.
type Reader struct {
	r      *blockCursor
	count  int64 // total bytes read
	err    error // first error encountered.
	order  binary.ByteOrder
	shared [tableCount][]any
}

// NewReader validates the stream and block headers of framed and returns a
// Reader positioned at the start of the body.
func NewReader(framed []byte) (*Reader, error) {
	body, err := unframe(framed)
	if err != nil {
		return nil, err
	}
	return &Reader{r: &blockCursor{body: body}, order: Order}, nil
}

// Unmarshal decodes framed with fn and fails if fn leaves bytes unread.
func Unmarshal(framed []byte, fn func(r *Reader)) error {
	r, err := NewReader(framed)
	if err != nil {
		return err
	}
	fn(r)
	return r.Finish()
}

// UnmarshalBase64 is Unmarshal for the base64 text of a stream.
func UnmarshalBase64(text string, fn func(r *Reader)) error {
	framed, err := base64.StdEncoding.DecodeString(text)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBadStreamHeader, err)
	}
	return Unmarshal(framed, fn)
}

func (r *Reader) Count() int64 { return r.count }
func (r *Reader) Err() error   { return r.err }

// Remaining returns the number of body bytes not read yet.
func (r *Reader) Remaining() int { return r.r.remaining() }

// Fail latches err unless an earlier error is already latched.
func (r *Reader) Fail(err error) {
	r.setError(err)
}

// Finish returns the latched error, or ErrTrailingData if the body was not fully consumed.
func (r *Reader) Finish() error {
	if r.err == nil && r.Remaining() > 0 {
		r.err = fmt.Errorf("%w: %d bytes", ErrTrailingData, r.Remaining())
	}
	return r.err
}

// setError records the first non-nil error.
func (r *Reader) setError(err error) {
	if r.err == nil && err != nil {
		r.err = err
	}
}

// readFull is an internal helper to read an exact number of bytes.
// The result aliases the stream body.
func (r *Reader) readFull(n int) []byte {
	if r.err != nil {
		return nil
	}
	buf, err := r.r.next(n)
	if err != nil {
		r.err = err
		return nil
	}
	r.count += int64(n)
	return buf
}

// ReadBytes reads n bytes and returns a new byte slice.
func (r *Reader) ReadBytes(n int) []byte {
	if n < 0 {
		r.setError(ErrTruncatedData)
		return nil
	}
	buf := r.readFull(n)
	if buf == nil {
		return nil
	}
	return append([]byte(nil), buf...)
}

// --- Primitive Read Operations ---

func (r *Reader) ReadByte() (byte, error) {
	if r.err != nil {
		return 0, r.err
	}
	b, err := r.r.readByte()
	if err == nil {
		r.count++
	} else {
		r.err = err
	}
	return b, err
}

func (r *Reader) ReadUint8(dest *uint8) {
	b, err := r.ReadByte()
	if err == nil {
		*dest = b
	}
}

func (r *Reader) ReadInt8(dest *int8) {
	b, err := r.ReadByte()
	if err == nil {
		*dest = int8(b)
	}
}

func (r *Reader) ReadBool(dest *bool) {
	b, err := r.ReadByte()
	if err == nil {
		*dest = b != 0
	}
}

func (r *Reader) ReadShort(dest *int16) {
	buf := r.readFull(2)
	if r.err == nil {
		*dest = int16(r.order.Uint16(buf))
	}
}

func (r *Reader) ReadInt(dest *int32) {
	buf := r.readFull(4)
	if r.err == nil {
		*dest = int32(r.order.Uint32(buf))
	}
}

func (r *Reader) ReadLong(dest *int64) {
	buf := r.readFull(8)
	if r.err == nil {
		*dest = int64(r.order.Uint64(buf))
	}
}

func (r *Reader) ReadFloat(dest *float32) {
	buf := r.readFull(4)
	if r.err == nil {
		*dest = math.Float32frombits(r.order.Uint32(buf))
	}
}

func (r *Reader) ReadDouble(dest *float64) {
	buf := r.readFull(8)
	if r.err == nil {
		*dest = math.Float64frombits(r.order.Uint64(buf))
	}
}

func (r *Reader) ReadChar(dest *rune) {
	buf := r.readFull(2)
	if r.err == nil {
		*dest = rune(r.order.Uint16(buf))
	}
}

// ReadUTF reads a length-prefixed modified UTF-8 string.
func (r *Reader) ReadUTF(dest *string) {
	buf := r.readFull(2)
	if r.err != nil {
		return
	}
	raw := r.readFull(int(r.order.Uint16(buf)))
	if r.err != nil {
		return
	}
	s, err := decodeModifiedUTF8(raw)
	if err != nil {
		r.setError(err)
		return
	}
	*dest = s
}

// --- Context Read Operations ---

// ReadCompactInt reads a length or count written by WriteCompactInt.
func (r *Reader) ReadCompactInt(dest *int) {
	b, err := r.ReadByte()
	if err != nil {
		return
	}
	if b != compactLong {
		*dest = int(b)
		return
	}
	var n int32
	r.ReadInt(&n)
	if r.err != nil {
		return
	}
	if n < 0 {
		r.setError(ErrNegativeCompact)
		return
	}
	*dest = int(n)
}

// ReadLengthAndBytes reads a byte slice written by WriteLengthAndBytes.
func (r *Reader) ReadLengthAndBytes() []byte {
	var n int
	r.ReadCompactInt(&n)
	if r.err != nil {
		return nil
	}
	if n > r.Remaining() {
		r.setError(ErrTruncatedData)
		return nil
	}
	b := r.ReadBytes(n)
	if b == nil && r.err == nil {
		b = []byte{}
	}
	return b
}

// ReadBigInteger reads a value written by WriteBigInteger.
//
// A single byte b >= 4 is read as the non-negative value b - 4. Small negative
// values share their byte with the tier markers and other small values, so they
// do not survive a round trip.
func (r *Reader) ReadBigInteger() *big.Int {
	sel, err := r.ReadByte()
	if err != nil {
		return nil
	}
	switch sel {
	case bigIntShort:
		var v int16
		r.ReadShort(&v)
		return r.bigOrNil(int64(v))
	case bigIntInt:
		var v int32
		r.ReadInt(&v)
		return r.bigOrNil(int64(v))
	case bigIntLong:
		var v int64
		r.ReadLong(&v)
		return r.bigOrNil(v)
	case bigIntText:
		var n int
		r.ReadCompactInt(&n)
		text := r.readFull(n)
		if r.err != nil {
			return nil
		}
		v, ok := new(big.Int).SetString(string(text), 10)
		if !ok {
			r.setError(fmt.Errorf("%w: big integer text %q", ErrInvalidString, text))
			return nil
		}
		return v
	default:
		return big.NewInt(int64(sel) - int64(bigIntSmallBias))
	}
}

func (r *Reader) bigOrNil(v int64) *big.Int {
	if r.err != nil {
		return nil
	}
	return big.NewInt(v)
}

// ReadShared reads an entry of table t. A new entry is decoded with full and
// remembered; a back-reference returns the remembered entry.
func ReadShared[T any](r *Reader, t Table, full func(r *Reader) T) T {
	var zero T
	sel, err := r.ReadByte()
	if err != nil {
		return zero
	}
	index := int(sel)
	switch sel {
	case sharedNew:
		v := full(r)
		if r.err != nil {
			return zero
		}
		r.shared[t] = append(r.shared[t], v)
		return v
	case sharedLongIdx:
		var i int32
		r.ReadInt(&i)
		if r.err != nil {
			return zero
		}
		index = int(i)
	}
	if index < 0 || index >= len(r.shared[t]) {
		r.setError(fmt.Errorf("%w: index %d", ErrBadSharedIndex, index))
		return zero
	}
	v, ok := r.shared[t][index].(T)
	if !ok {
		r.setError(fmt.Errorf("%w: index %d has type %T", ErrBadSharedIndex, index, r.shared[t][index]))
		return zero
	}
	return v
}

// ReadStringShared reads a string written by WriteStringShared.
func (r *Reader) ReadStringShared(dest *string) {
	s := ReadShared(r, TableStrings, func(r *Reader) string {
		var s string
		r.ReadUTF(&s)
		return s
	})
	if r.err == nil {
		*dest = s
	}
}
