package hotmarsh

// blockCursor walks the body of the single data block of a stream.
type blockCursor struct {
	body []byte
	pos  int
}

func (c *blockCursor) readByte() (byte, error) {
	if c.pos >= len(c.body) {
		return 0, ErrTruncatedData
	}
	b := c.body[c.pos]
	c.pos++
	return b, nil
}

// next consumes n bytes and returns them without copying.
// A short body is consumed entirely.
func (c *blockCursor) next(n int) ([]byte, error) {
	if n > c.remaining() {
		c.pos = len(c.body)
		return nil, ErrTruncatedData
	}
	b := c.body[c.pos : c.pos+n]
	c.pos += n
	return b, nil
}

func (c *blockCursor) remaining() int {
	return max(len(c.body)-c.pos, 0)
}
