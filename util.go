package hotmarsh

import (
	"encoding/binary"
	"math/big"
	"unicode/utf16"
	"unicode/utf8"

	"golang.org/x/exp/constraints"
)

var (
	BE = binary.BigEndian
	// Order is the byte order of every multi-byte value in the stream.
	Order = BE
)

// fitsIn reports whether v lies in the inclusive range [lo, hi] of the signed type T.
func fitsIn[T constraints.Signed](v *big.Int, lo, hi T) bool {
	if !v.IsInt64() {
		return false
	}
	i := v.Int64()
	return int64(lo) <= i && i <= int64(hi)
}

// isSingleUnit reports whether r is encoded as exactly one UTF-16 code unit.
func isSingleUnit(r rune) bool {
	return r >= 0 && r <= 0xFFFF && utf16.RuneLen(r) == 1
}

// appendModifiedUTF8 appends the modified UTF-8 form of s to dst.
//
// Every UTF-16 code unit of s is encoded on its own: U+0001..U+007F take one byte,
// U+0000 and U+0080..U+07FF take two, everything else (surrogate halves included)
// takes three. For ASCII strings the result is identical to the input bytes.
func appendModifiedUTF8(dst []byte, s string) ([]byte, error) {
	if !utf8.ValidString(s) {
		return nil, ErrInvalidString
	}
	for _, r := range s {
		if r > 0xFFFF {
			hi, lo := utf16.EncodeRune(r)
			dst = appendUnit(dst, uint16(hi))
			dst = appendUnit(dst, uint16(lo))
			continue
		}
		dst = appendUnit(dst, uint16(r))
	}
	return dst, nil
}

func appendUnit(dst []byte, u uint16) []byte {
	switch {
	case u >= 0x0001 && u <= 0x007F:
		return append(dst, byte(u))
	case u <= 0x07FF:
		return append(dst, 0xC0|byte(u>>6), 0x80|byte(u&0x3F))
	default:
		return append(dst, 0xE0|byte(u>>12), 0x80|byte((u>>6)&0x3F), 0x80|byte(u&0x3F))
	}
}

// decodeModifiedUTF8 is the inverse of appendModifiedUTF8.
func decodeModifiedUTF8(b []byte) (string, error) {
	units := make([]uint16, 0, len(b))
	for i := 0; i < len(b); {
		c := b[i]
		switch {
		case c < 0x80:
			units = append(units, uint16(c))
			i++
		case c&0xE0 == 0xC0:
			if i+1 >= len(b) || b[i+1]&0xC0 != 0x80 {
				return "", ErrInvalidString
			}
			units = append(units, uint16(c&0x1F)<<6|uint16(b[i+1]&0x3F))
			i += 2
		case c&0xF0 == 0xE0:
			if i+2 >= len(b) || b[i+1]&0xC0 != 0x80 || b[i+2]&0xC0 != 0x80 {
				return "", ErrInvalidString
			}
			units = append(units, uint16(c&0x0F)<<12|uint16(b[i+1]&0x3F)<<6|uint16(b[i+2]&0x3F))
			i += 3
		default:
			return "", ErrInvalidString
		}
	}
	return string(utf16.Decode(units)), nil
}
