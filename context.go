package hotmarsh

import (
	"fmt"
	"math"
	"math/big"
)

// Markers of the shared-entry encodings.
const (
	sharedNew      byte = 255
	sharedLongIdx  byte = 254
	compactLong    byte = 255
	maxCompactByte      = 255
)

// Big integer tier selectors.
const (
	bigIntShort byte = iota
	bigIntInt
	bigIntLong
	bigIntText
	bigIntSmallBias // small values are written as bias + v
)

// maxSharedEntries bounds every memoization table.
var maxSharedEntries = math.MaxInt32

// Context is the state of one marshalling operation: the body writer plus the
// four memoization tables that turn repeated values into back-references.
//
// A Context only exists for the duration of a Marshal call and is sealed when
// the call returns. Any write through a retained Context fails with ErrContextSealed.
type Context struct {
	*Writer

	strings               map[string]int
	fieldSignatures       map[string]int
	storageReferences     map[string]int
	transactionReferences map[string]int
}

func newContext(buf *BytesWriter) *Context {
	return &Context{
		Writer:                &Writer{w: buf, order: Order},
		strings:               make(map[string]int),
		fieldSignatures:       make(map[string]int),
		storageReferences:     make(map[string]int),
		transactionReferences: make(map[string]int),
	}
}

// Fail records err as the outcome of the operation unless an earlier error is already latched.
func (c *Context) Fail(err error) {
	c.setError(err)
}

// Failf is Fail with a formatted message wrapping err.
func (c *Context) Failf(err error, format string, args ...any) {
	if c.err != nil || err == nil {
		return
	}
	c.setError(fmt.Errorf("%w: %s", err, fmt.Sprintf(format, args...)))
}

// seal makes every later write a no-op failing with ErrContextSealed.
func (c *Context) seal() {
	c.err = ErrContextSealed
	c.w = nil
	c.strings, c.fieldSignatures, c.storageReferences, c.transactionReferences = nil, nil, nil, nil
}

// WriteCompactInt writes a non-negative length or count: one byte below 255,
// otherwise the byte 255 followed by a 4-byte int.
func (c *Context) WriteCompactInt(n int) {
	switch {
	case c.err != nil:
	case n < 0:
		c.Failf(ErrNegativeCompact, "%d", n)
	case n < maxCompactByte:
		c.WriteUint8(uint8(n))
	case int64(n) > math.MaxInt32:
		c.Failf(ErrBufferOverflow, "compact int %d", n)
	default:
		c.WriteUint8(compactLong)
		c.WriteInt(int32(n))
	}
}

// WriteBigInteger writes v with the smallest applicable tier:
// one biased byte for [-252, 251], then short, int and long widths, and finally
// the decimal text of v prefixed by its length.
func (c *Context) WriteBigInteger(v *big.Int) {
	if c.err != nil {
		return
	}
	if v == nil {
		c.Failf(ErrNilValue, "big integer")
		return
	}
	switch {
	case fitsIn(v, -252, 251):
		c.WriteInt8(int(bigIntSmallBias) + int(v.Int64()))
	case fitsIn[int16](v, math.MinInt16, math.MaxInt16):
		c.WriteUint8(bigIntShort)
		c.WriteShort(int(v.Int64()))
	case fitsIn[int32](v, math.MinInt32, math.MaxInt32):
		c.WriteUint8(bigIntInt)
		c.WriteInt(int32(v.Int64()))
	case v.IsInt64():
		c.WriteUint8(bigIntLong)
		c.WriteLong(v.Int64())
	default:
		text := v.Text(10)
		c.WriteUint8(bigIntText)
		c.WriteCompactInt(len(text))
		_, _ = c.WriteString(text)
	}
}

// WriteInt64AsBigInteger is WriteBigInteger for a value that fits in an int64.
func (c *Context) WriteInt64AsBigInteger(v int64) {
	c.WriteBigInteger(big.NewInt(v))
}

// WriteLengthAndBytes writes the compact length of b followed by b.
func (c *Context) WriteLengthAndBytes(b []byte) {
	if c.err != nil {
		return
	}
	if b == nil {
		c.Failf(ErrNilValue, "byte slice")
		return
	}
	c.WriteCompactInt(len(b))
	c.WriteBytes(b)
}

// writeShared emits the back-reference of key in table, or registers it and
// emits the full encoding produced by full.
func (c *Context) writeShared(table map[string]int, key string, full func(*Context)) {
	if c.err != nil {
		return
	}
	if i, ok := table[key]; ok {
		if i < int(sharedLongIdx) {
			c.WriteUint8(uint8(i))
		} else {
			c.WriteUint8(sharedLongIdx)
			c.WriteInt(int32(i))
		}
		return
	}
	if len(table) >= maxSharedEntries {
		c.Fail(ErrTableOverflow)
		return
	}
	table[key] = len(table)
	c.WriteUint8(sharedNew)
	full(c)
}

// WriteStringShared writes s in modified UTF-8 the first time it is seen and
// as a back-reference afterwards.
func (c *Context) WriteStringShared(s string) {
	c.writeShared(c.strings, s, func(c *Context) { c.WriteUTF(s) })
}

// WriteFieldSignatureShared shares a field signature under key, the concatenation
// of its type, name and defining class.
func (c *Context) WriteFieldSignatureShared(key string, full func(*Context)) {
	c.writeShared(c.fieldSignatures, key, full)
}

// WriteStorageReferenceShared shares a storage reference under key, the
// concatenation of its progressive and transaction hash.
func (c *Context) WriteStorageReferenceShared(key string, full func(*Context)) {
	c.writeShared(c.storageReferences, key, full)
}

// WriteTransactionReferenceShared shares a transaction reference under its hash.
func (c *Context) WriteTransactionReferenceShared(key string, full func(*Context)) {
	c.writeShared(c.transactionReferences, key, full)
}

// SharedStrings returns the number of distinct strings written so far.
func (c *Context) SharedStrings() int { return len(c.strings) }
