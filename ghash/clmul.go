package ghash

import (
	"encoding/binary"
	"math/bits"
)

// Clmul multiplies with three 64x64 carry-less products and a shift/xor
// reduction, no secret dependent table lookups.
type Clmul struct {
	h1, h0 uint64
}

func NewClmul(h *[BlockSize]byte) *Clmul {
	return &Clmul{h1: be64(h[:8]), h0: be64(h[8:])}
}

func (c *Clmul) Wipe() {
	c.h1, c.h0 = 0, 0
}

func (c *Clmul) Update(acc *[BlockSize]byte, block []byte) {
	y1, y0 := load(acc, block)

	// karatsuba, z2 ends up as the middle term
	z0h, z0 := clmul64(y0, c.h0)
	z1h, z1 := clmul64(y1, c.h1)
	z2h, z2 := clmul64(y0^y1, c.h0^c.h1)
	z2 ^= z0 ^ z1
	z2h ^= z0h ^ z1h

	v0 := z0
	v1 := z0h ^ z2
	v2 := z1 ^ z2h
	v3 := z1h

	// operands are bit reflected, the product comes out one bit short
	v3 = (v3 << 1) | (v2 >> 63)
	v2 = (v2 << 1) | (v1 >> 63)
	v1 = (v1 << 1) | (v0 >> 63)
	v0 = v0 << 1

	v2 ^= v0 ^ (v0 >> 1) ^ (v0 >> 2) ^ (v0 >> 7)
	v1 ^= (v0 << 63) ^ (v0 << 62) ^ (v0 << 57)
	v3 ^= v1 ^ (v1 >> 1) ^ (v1 >> 2) ^ (v1 >> 7)
	v2 ^= (v1 << 63) ^ (v1 << 62) ^ (v1 << 57)

	binary.BigEndian.PutUint64(acc[:], v3)
	binary.BigEndian.PutUint64(acc[8:], v2)
}

// clmul64 is the full 128 bit carry-less product of x and y
func clmul64(x, y uint64) (hi, lo uint64) {
	lo = bmul64(x, y)
	hi = bits.Reverse64(bmul64(bits.Reverse64(x), bits.Reverse64(y))) >> 1
	return
}

// low 64 bits of the carry-less product, integer multiplies on operands with
// 3 bit holes so carries never reach a neighbouring data bit
func bmul64(x, y uint64) uint64 {
	const (
		m0 = 0x1111111111111111
		m1 = 0x2222222222222222
		m2 = 0x4444444444444444
		m3 = 0x8888888888888888
	)
	x0, x1, x2, x3 := x&m0, x&m1, x&m2, x&m3
	y0, y1, y2, y3 := y&m0, y&m1, y&m2, y&m3
	z0 := (x0 * y0) ^ (x1 * y3) ^ (x2 * y2) ^ (x3 * y1)
	z1 := (x0 * y1) ^ (x1 * y0) ^ (x2 * y3) ^ (x3 * y2)
	z2 := (x0 * y2) ^ (x1 * y1) ^ (x2 * y0) ^ (x3 * y3)
	z3 := (x0 * y3) ^ (x1 * y2) ^ (x2 * y1) ^ (x3 * y0)
	return (z0 & m0) | (z1 & m1) | (z2 & m2) | (z3 & m3)
}

func be64(b []byte) uint64 {
	return binary.BigEndian.Uint64(b)
}
