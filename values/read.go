package values

import (
	"fmt"

	"github.com/oy3o/hotmarsh"
)

// Read decodes a storage value written by its Into method.
func Read(r *hotmarsh.Reader) StorageValue {
	b, err := r.ReadByte()
	if err != nil {
		return nil
	}
	var v StorageValue
	switch ValueSelector(b) {
	case SelTrue:
		v = BooleanValue(true)
	case SelFalse:
		v = BooleanValue(false)
	case SelByte:
		var x int8
		r.ReadInt8(&x)
		v = ByteValue(x)
	case SelChar:
		var x rune
		r.ReadChar(&x)
		v = CharValue(x)
	case SelDouble:
		var x float64
		r.ReadDouble(&x)
		v = DoubleValue(x)
	case SelFloat:
		var x float32
		r.ReadFloat(&x)
		v = FloatValue(x)
	case SelBigInteger:
		v = BigIntegerValue{V: r.ReadBigInteger()}
	case SelLong:
		var x int64
		r.ReadLong(&x)
		v = LongValue(x)
	case SelNull:
		v = Null
	case SelShort:
		var x int16
		r.ReadShort(&x)
		v = ShortValue(x)
	case SelString:
		var x string
		r.ReadUTF(&x)
		v = StringValue(x)
	case SelReference:
		v = ReadStorageReference(r)
	case SelEnum:
		var e EnumValue
		r.ReadUTF(&e.EnumClass)
		r.ReadUTF(&e.Name)
		v = e
	case SelEmptyString:
		v = StringValue("")
	case SelInt:
		var x int32
		r.ReadInt(&x)
		v = IntValue(x)
	default:
		r.Fail(fmt.Errorf("%w: %d", ErrUnknownSelector, b))
	}
	if r.Err() != nil {
		return nil
	}
	return v
}
