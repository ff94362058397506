package hotmarsh

import "encoding/base64"

// Marshallable is implemented by every value with a canonical stream encoding.
type Marshallable interface {
	// Into writes the body encoding of the value. Failures are latched on c.
	Into(c *Context)
}

// MarshallableFunc adapts an ordinary function to the Marshallable interface.
type MarshallableFunc func(c *Context)

func (f MarshallableFunc) Into(c *Context) { f(c) }

// Option tunes the buffer of a single marshalling operation.
type Option func(*options)

type options struct {
	initialSize int
	limit       int
}

// DefaultInitialSize is the starting capacity of the body buffer.
const DefaultInitialSize = 1024

// WithInitialSize sets the starting capacity of the body buffer.
func WithInitialSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.initialSize = n
		}
	}
}

// WithLimit caps the body size. Encodings that would exceed it fail with
// ErrBufferOverflow. Zero means no limit.
func WithLimit(n int) Option {
	return func(o *options) {
		if n >= 0 {
			o.limit = n
		}
	}
}

// Marshal encodes m with a fresh Context and returns the framed stream:
// header, one block header and the body.
// No bytes are returned when the encoding fails.
func Marshal(m Marshallable, opts ...Option) ([]byte, error) {
	if m == nil {
		return nil, ErrNilValue
	}
	return MarshalFunc(m.Into, opts...)
}

// MarshalFunc is Marshal for an encoding function.
func MarshalFunc(fn func(c *Context), opts ...Option) ([]byte, error) {
	if fn == nil {
		return nil, ErrNilValue
	}
	o := options{initialSize: DefaultInitialSize}
	for _, opt := range opts {
		opt(&o)
	}

	buf := getBuffer(o.initialSize)
	defer putBuffer(buf)
	buf.WithLimit(o.limit)

	ctx := newContext(buf)
	defer ctx.seal()

	fn(ctx)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	body := buf.Bytes()
	return appendFrame(make([]byte, 0, frameSize(len(body))), body)
}

// MarshalBase64 returns the standard base64 text of the framed stream of m.
func MarshalBase64(m Marshallable, opts ...Option) (string, error) {
	b, err := Marshal(m, opts...)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(b), nil
}
