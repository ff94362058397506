// Package values implements the values that flow through transactions:
// references to transactions and objects, and the storage values passed as
// actual arguments.
package values

import (
	"math/big"
	"strconv"

	"github.com/oy3o/hotmarsh"
)

// ValueSelector tags a storage value in the stream.
type ValueSelector uint8

const (
	SelTrue        ValueSelector = 0
	SelFalse       ValueSelector = 1
	SelByte        ValueSelector = 2
	SelChar        ValueSelector = 3
	SelDouble      ValueSelector = 4
	SelFloat       ValueSelector = 5
	SelBigInteger  ValueSelector = 6
	SelLong        ValueSelector = 7
	SelNull        ValueSelector = 8
	SelShort       ValueSelector = 9
	SelString      ValueSelector = 10
	SelReference   ValueSelector = 11
	SelEnum        ValueSelector = 12
	SelEmptyString ValueSelector = 13
	SelInt         ValueSelector = 14
)

// StorageValue is a value that can be stored in an object field or passed as an argument.
type StorageValue interface {
	hotmarsh.Marshallable
	String() string
	isStorageValue()
}

var (
	_ StorageValue = BooleanValue(false)
	_ StorageValue = ByteValue(0)
	_ StorageValue = CharValue(0)
	_ StorageValue = ShortValue(0)
	_ StorageValue = IntValue(0)
	_ StorageValue = LongValue(0)
	_ StorageValue = FloatValue(0)
	_ StorageValue = DoubleValue(0)
	_ StorageValue = BigIntegerValue{}
	_ StorageValue = StringValue("")
	_ StorageValue = NullValue{}
	_ StorageValue = EnumValue{}
	_ StorageValue = StorageReference{}
)

type (
	BooleanValue bool
	ByteValue    int8
	CharValue    rune
	ShortValue   int16
	IntValue     int32
	LongValue    int64
	FloatValue   float32
	DoubleValue  float64
	StringValue  string
	NullValue    struct{}
)

// BigIntegerValue is an arbitrary precision integer value.
type BigIntegerValue struct {
	V *big.Int
}

// NewBigIntegerValue returns a BigIntegerValue holding a copy of v.
func NewBigIntegerValue(v *big.Int) BigIntegerValue {
	if v == nil {
		return BigIntegerValue{}
	}
	return BigIntegerValue{V: new(big.Int).Set(v)}
}

// EnumValue is an element of an enumeration.
type EnumValue struct {
	EnumClass string
	Name      string
}

// Null is the null value.
var Null = NullValue{}

func (v BooleanValue) Into(c *hotmarsh.Context) {
	if v {
		c.WriteUint8(uint8(SelTrue))
	} else {
		c.WriteUint8(uint8(SelFalse))
	}
}

func (v ByteValue) Into(c *hotmarsh.Context) {
	c.WriteUint8(uint8(SelByte))
	c.WriteInt8(int(v))
}

func (v CharValue) Into(c *hotmarsh.Context) {
	c.WriteUint8(uint8(SelChar))
	c.WriteChar(rune(v))
}

func (v ShortValue) Into(c *hotmarsh.Context) {
	c.WriteUint8(uint8(SelShort))
	c.WriteShort(int(v))
}

func (v IntValue) Into(c *hotmarsh.Context) {
	c.WriteUint8(uint8(SelInt))
	c.WriteInt(int32(v))
}

func (v LongValue) Into(c *hotmarsh.Context) {
	c.WriteUint8(uint8(SelLong))
	c.WriteLong(int64(v))
}

func (v FloatValue) Into(c *hotmarsh.Context) {
	c.WriteUint8(uint8(SelFloat))
	c.WriteFloat(float32(v))
}

func (v DoubleValue) Into(c *hotmarsh.Context) {
	c.WriteUint8(uint8(SelDouble))
	c.WriteDouble(float64(v))
}

func (v BigIntegerValue) Into(c *hotmarsh.Context) {
	c.WriteUint8(uint8(SelBigInteger))
	c.WriteBigInteger(v.V)
}

// Into writes the empty string as a bare selector and any other string unshared.
func (v StringValue) Into(c *hotmarsh.Context) {
	if v == "" {
		c.WriteUint8(uint8(SelEmptyString))
		return
	}
	c.WriteUint8(uint8(SelString))
	c.WriteUTF(string(v))
}

func (NullValue) Into(c *hotmarsh.Context) {
	c.WriteUint8(uint8(SelNull))
}

func (v EnumValue) Into(c *hotmarsh.Context) {
	c.WriteUint8(uint8(SelEnum))
	c.WriteUTF(v.EnumClass)
	c.WriteUTF(v.Name)
}

func (v BooleanValue) String() string { return strconv.FormatBool(bool(v)) }
func (v ByteValue) String() string    { return strconv.Itoa(int(v)) }
func (v CharValue) String() string    { return string(rune(v)) }
func (v ShortValue) String() string   { return strconv.Itoa(int(v)) }
func (v IntValue) String() string     { return strconv.Itoa(int(v)) }
func (v LongValue) String() string    { return strconv.FormatInt(int64(v), 10) }
func (v FloatValue) String() string   { return strconv.FormatFloat(float64(v), 'g', -1, 32) }
func (v DoubleValue) String() string  { return strconv.FormatFloat(float64(v), 'g', -1, 64) }
func (v StringValue) String() string  { return string(v) }
func (NullValue) String() string      { return "null" }
func (v EnumValue) String() string    { return v.EnumClass + "." + v.Name }

func (v BigIntegerValue) String() string {
	if v.V == nil {
		return "<nil>"
	}
	return v.V.String()
}

func (BooleanValue) isStorageValue()    {}
func (ByteValue) isStorageValue()       {}
func (CharValue) isStorageValue()       {}
func (ShortValue) isStorageValue()      {}
func (IntValue) isStorageValue()        {}
func (LongValue) isStorageValue()       {}
func (FloatValue) isStorageValue()      {}
func (DoubleValue) isStorageValue()     {}
func (BigIntegerValue) isStorageValue() {}
func (StringValue) isStorageValue()     {}
func (NullValue) isStorageValue()       {}
func (EnumValue) isStorageValue()       {}

// Equal reports whether a and b are the same value.
func Equal(a, b StorageValue) bool {
	switch x := a.(type) {
	case BigIntegerValue:
		y, ok := b.(BigIntegerValue)
		return ok && x.V != nil && y.V != nil && x.V.Cmp(y.V) == 0
	case StorageReference:
		y, ok := b.(StorageReference)
		return ok && x.Equal(y)
	default:
		return a == b
	}
}
