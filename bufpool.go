package hotmarsh

import "sync"

// bodyBufPool reuses body buffers across marshalling operations.
// The memoization tables are never pooled: each Context gets fresh ones.
var bodyBufPool = sync.Pool{
	New: func() any {
		return NewBytesWriter(make([]byte, 0, DefaultInitialSize))
	},
}

// maxPooledSize keeps oversized buffers, such as those of large jars, out of the pool.
const maxPooledSize = 64 * 1024

func getBuffer(size int) *BytesWriter {
	if size > DefaultInitialSize {
		return NewBytesWriter(make([]byte, 0, size))
	}
	return bodyBufPool.Get().(*BytesWriter)
}

func putBuffer(w *BytesWriter) {
	if w.Size() > maxPooledSize {
		return
	}
	w.Reset()
	w.WithLimit(0)
	bodyBufPool.Put(w)
}
