package hotmarsh

// BytesWriter is an io.Writer that fills the body of a stream.
// The slice grows as needed (doubling, like an encode buffer) unless a limit is set,
// in which case a write that would exceed the limit is rejected whole with
// ErrBufferOverflow. Nothing is ever silently truncated.
type BytesWriter struct {
	B     []byte // destination slice
	N     int    // current write position
	limit int    // maximum number of bytes, 0 means unbounded
}

// NewBytesWriter creates a new BytesWriter starting from the capacity of p.
func NewBytesWriter(p []byte) *BytesWriter {
	return &BytesWriter{B: p[:cap(p)]}
}

// WithLimit caps the number of bytes the writer accepts and returns the writer for chaining.
func (w *BytesWriter) WithLimit(n int) *BytesWriter {
	w.limit = n
	return w
}

// ensure makes room for n more bytes.
func (w *BytesWriter) ensure(n int) error {
	if w.limit > 0 && w.N+n > w.limit {
		return ErrBufferOverflow
	}
	if len(w.B)-w.N >= n {
		return nil
	}
	size := len(w.B)*2 + n
	if w.limit > 0 && size > w.limit {
		size = w.limit
	}
	grown := make([]byte, size)
	copy(grown, w.B[:w.N])
	w.B = grown
	return nil
}

// Write implements the io.Writer interface.
func (w *BytesWriter) Write(p []byte) (int, error) {
	if err := w.ensure(len(p)); err != nil {
		return 0, err
	}
	w.N += copy(w.B[w.N:], p)
	return len(p), nil
}

// WriteString implements the io.StringWriter interface for efficiency.
func (w *BytesWriter) WriteString(s string) (int, error) {
	if err := w.ensure(len(s)); err != nil {
		return 0, err
	}
	w.N += copy(w.B[w.N:], s)
	return len(s), nil
}

// WriteByte implements the io.ByteWriter interface for efficiency.
func (w *BytesWriter) WriteByte(c byte) error {
	if err := w.ensure(1); err != nil {
		return err
	}
	w.B[w.N] = c
	w.N++
	return nil
}

// Reset allows the underlying byte slice to be reused.
func (w *BytesWriter) Reset() { w.N = 0 }

// Len returns the number of bytes written.
func (w *BytesWriter) Len() int { return w.N }

// Size returns the current capacity of the underlying byte slice.
func (w *BytesWriter) Size() int { return len(w.B) }

// Bytes returns a slice view of the written data.
func (w *BytesWriter) Bytes() []byte { return w.B[:w.N] }
