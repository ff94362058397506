package values

import (
	"fmt"
	"math/big"
	"strconv"
	"unicode/utf8"

	"github.com/oy3o/hotmarsh/types"
)

// Parse converts the textual form s into a value of the storage type named typeName.
//
// Primitive types parse their usual literals; "null" is accepted for any class type.
// java.math.BigInteger takes a decimal integer, java.lang.String takes s itself,
// and every other class type takes a storage reference hash#progressive.
func Parse(typeName, s string) (StorageValue, error) {
	t, err := types.Parse(typeName)
	if err != nil {
		return nil, err
	}
	return ParseAs(t, s)
}

// ParseAs is Parse with an already resolved storage type.
func ParseAs(t types.StorageType, s string) (StorageValue, error) {
	v, err := parseAs(t, s)
	if err != nil {
		return nil, fmt.Errorf("%w: %q as %s: %v", ErrInvalidValue, s, t, err)
	}
	return v, nil
}

func parseAs(t types.StorageType, s string) (StorageValue, error) {
	switch t {
	case types.Boolean:
		b, err := strconv.ParseBool(s)
		return BooleanValue(b), err
	case types.Byte:
		i, err := strconv.ParseInt(s, 10, 8)
		return ByteValue(i), err
	case types.Char:
		if utf8.RuneCountInString(s) != 1 {
			return nil, fmt.Errorf("want a single character")
		}
		r, _ := utf8.DecodeRuneInString(s)
		if r > 0xFFFF {
			return nil, fmt.Errorf("character outside the basic plane")
		}
		return CharValue(r), nil
	case types.Short:
		i, err := strconv.ParseInt(s, 10, 16)
		return ShortValue(i), err
	case types.Int:
		i, err := strconv.ParseInt(s, 10, 32)
		return IntValue(i), err
	case types.Long:
		i, err := strconv.ParseInt(s, 10, 64)
		return LongValue(i), err
	case types.Float:
		f, err := strconv.ParseFloat(s, 32)
		return FloatValue(f), err
	case types.Double:
		f, err := strconv.ParseFloat(s, 64)
		return DoubleValue(f), err
	}

	ct, ok := t.(types.ClassType)
	if !ok {
		return nil, fmt.Errorf("unsupported type")
	}
	switch {
	case s == "null":
		return Null, nil
	case ct.Equal(types.BigInteger):
		v, ok := new(big.Int).SetString(s, 10)
		if !ok {
			return nil, fmt.Errorf("not a decimal integer")
		}
		return BigIntegerValue{V: v}, nil
	case ct.Equal(types.String):
		return StringValue(s), nil
	default:
		return ParseStorageReference(s)
	}
}
