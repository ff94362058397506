package hotmarsh

import (
	"encoding/binary"
	"math"
)

// Writer writes the fixed-width primitives of a stream body.
// All multi-byte values are big endian. It tracks the first error that occurs;
// after an error, all subsequent write operations become no-ops.
type Writer struct {
	w     *BytesWriter
	count int64 // total bytes written
	err   error // first error encountered. Subsequent writes become no-ops.
	order binary.ByteOrder
}

// NewWriter creates a Writer appending to w.
func NewWriter(w *BytesWriter) (*Writer, error) {
	if w == nil {
		return nil, ErrNilValue
	}
	return &Writer{w: w, order: Order}, nil
}

// Write implements the io.Writer interface.
func (w *Writer) Write(buf []byte) (int, error) {
	if buf == nil || w.err != nil {
		return 0, w.err
	}
	n, err := w.w.Write(buf)
	w.count += int64(n)
	w.setError(err)
	return n, w.err
}

// WriteString implements the io.StringWriter interface.
// The bytes of str are written as they are, without any length prefix.
func (w *Writer) WriteString(str string) (int, error) {
	if str == "" || w.err != nil {
		return 0, w.err
	}
	n, err := w.w.WriteString(str)
	w.count += int64(n)
	w.setError(err)
	return n, w.err
}

func (w *Writer) Count() int64 { return w.count }
func (w *Writer) Err() error   { return w.err }

// setError records the first non-nil error.
// This preserves the root cause of a failure chain instead of a later,
// less relevant error.
func (w *Writer) setError(err error) {
	if w.err == nil && err != nil {
		w.err = err
	}
}

// WriteBytes writes a raw byte slice.
func (w *Writer) WriteBytes(buf []byte) {
	if buf == nil || w.err != nil {
		return
	}
	_, _ = w.Write(buf)
}

// --- Primitive Write Operations ---

func (w *Writer) WriteByte(v byte) error {
	if w.err != nil {
		return w.err
	}
	err := w.w.WriteByte(v)
	if err == nil {
		w.count++
	} else {
		w.err = err
	}
	return err
}

func (w *Writer) WriteUint8(v uint8) {
	_ = w.WriteByte(v)
}

// WriteInt8 writes the low 8 bits of v, so that out of range inputs are
// reduced by two's complement truncation into the signed byte range.
func (w *Writer) WriteInt8(v int) {
	_ = w.WriteByte(byte(v))
}

func (w *Writer) WriteBool(v bool) {
	if v {
		w.WriteUint8(1)
	} else {
		w.WriteUint8(0)
	}
}

// WriteShort writes the low 16 bits of v.
func (w *Writer) WriteShort(v int) {
	if w.err != nil {
		return
	}
	var buf [2]byte
	w.order.PutUint16(buf[:], uint16(v))
	_, _ = w.Write(buf[:])
}

func (w *Writer) WriteInt(v int32) {
	if w.err != nil {
		return
	}
	var buf [4]byte
	w.order.PutUint32(buf[:], uint32(v))
	_, _ = w.Write(buf[:])
}

func (w *Writer) WriteLong(v int64) {
	if w.err != nil {
		return
	}
	var buf [8]byte
	w.order.PutUint64(buf[:], uint64(v))
	_, _ = w.Write(buf[:])
}

func (w *Writer) WriteFloat(v float32) {
	if w.err != nil {
		return
	}
	var buf [4]byte
	w.order.PutUint32(buf[:], math.Float32bits(v))
	_, _ = w.Write(buf[:])
}

func (w *Writer) WriteDouble(v float64) {
	if w.err != nil {
		return
	}
	var buf [8]byte
	w.order.PutUint64(buf[:], math.Float64bits(v))
	_, _ = w.Write(buf[:])
}

// WriteChar writes r as one big endian UTF-16 code unit.
// Runes outside the basic multilingual plane need two units and are rejected.
func (w *Writer) WriteChar(r rune) {
	if w.err != nil {
		return
	}
	if !isSingleUnit(r) {
		w.setError(ErrInvalidChar)
		return
	}
	w.WriteShort(int(r))
}

// WriteUTF writes str in modified UTF-8, preceded by its encoded length as an
// unsigned 16-bit value. For ASCII input the length equals the number of characters.
func (w *Writer) WriteUTF(str string) {
	if w.err != nil {
		return
	}
	encoded, err := appendModifiedUTF8(nil, str)
	if err != nil {
		w.setError(err)
		return
	}
	if len(encoded) > math.MaxUint16 {
		w.setError(ErrStringTooLong)
		return
	}
	w.WriteShort(len(encoded))
	w.WriteBytes(encoded)
}
