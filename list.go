package hotmarsh

// WriteList writes the compact count of items followed by each item in order.
func WriteList[T Marshallable](c *Context, items []T) {
	c.WriteCompactInt(len(items))
	for _, item := range items {
		if c.err != nil {
			return
		}
		item.Into(c)
	}
}

// WriteItems writes each item in order without a count prefix.
func WriteItems[T Marshallable](c *Context, items []T) {
	for _, item := range items {
		if c.err != nil {
			return
		}
		item.Into(c)
	}
}

// ReadList reads a list written by WriteList, decoding each item with read.
// Lists are read into memory whole: the count is checked against the bytes left
// so that a corrupt count cannot trigger a huge allocation.
func ReadList[T any](r *Reader, read func(r *Reader) T) []T {
	var n int
	r.ReadCompactInt(&n)
	if r.err != nil {
		return nil
	}
	if n > r.Remaining() {
		r.setError(ErrTruncatedData)
		return nil
	}
	items := make([]T, 0, n)
	for i := 0; i < n; i++ {
		item := read(r)
		if r.err != nil {
			return nil
		}
		items = append(items, item)
	}
	return items
}
