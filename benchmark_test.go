package hotmarsh

import (
	"math/big"
	"testing"
)

var benchAmount = new(big.Int).Lsh(big.NewInt(1), 80)

func benchEncode(c *Context) {
	c.WriteUTF("chaintest")
	for i := 0; i < 16; i++ {
		c.WriteStringShared("io.takamaka.code.lang.Contract")
		c.WriteInt64AsBigInteger(int64(i) * 100_000)
	}
	c.WriteBigInteger(benchAmount)
}

func BenchmarkMarshal(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_, _ = MarshalFunc(benchEncode)
	}
}

func BenchmarkMarshalParallel(b *testing.B) {
	b.ReportAllocs()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			_, _ = MarshalFunc(benchEncode)
		}
	})
}

func BenchmarkUnmarshalBigInteger(b *testing.B) {
	framed, _ := MarshalFunc(func(c *Context) { c.WriteBigInteger(benchAmount) })
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = Unmarshal(framed, func(r *Reader) { _ = r.ReadBigInteger() })
	}
}
