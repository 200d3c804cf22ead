package ghash

import "encoding/binary"

// Table is the 4-bit windowed multiplier, hh/hl[i] hold i*H for every nibble value.
type Table struct {
	hl [16]uint64
	hh [16]uint64
}

// no constant arrays in go, but these numbers are black magic
var last4 = [...]uint64{0x0000, 0x1c20, 0x3840, 0x2460, 0x7080, 0x6ca0, 0x48c0, 0x54e0, 0xe100, 0xfd20, 0xd940, 0xc560, 0x9180, 0x8da0, 0xa9c0, 0xb5e0}

func NewTable(h *[BlockSize]byte) *Table {
	t := &Table{}
	t.make_tables(h)
	return t
}

func (t *Table) Wipe() {
	clear(t.hl[:])
	clear(t.hh[:])
}

func (t *Table) make_tables(h *[BlockSize]byte) {
	vh := binary.BigEndian.Uint64(h[:])
	vl := binary.BigEndian.Uint64(h[8:])

	t.hl[8] = vl // 8 = 1000 corresponds to 1 in GF(2^128)
	t.hh[8] = vh

	for i := 4; i > 0; i >>= 1 {
		T := uint32(vl&1) * 0xe1000000
		vl = (vh << 63) | (vl >> 1)
		vh = (vh >> 1) ^ (uint64(T) << 32)
		t.hl[i] = vl
		t.hh[i] = vh
	}

	for i := 2; i < 16; i <<= 1 {
		vh = t.hh[i]
		vl = t.hl[i]
		for j := 1; j < i; j++ {
			t.hh[i+j] = vh ^ t.hh[j]
			t.hl[i+j] = vl ^ t.hl[j]
		}
	}
}

func (t *Table) Update(acc *[BlockSize]byte, block []byte) {
	var x [BlockSize]byte
	copy(x[:], block)
	for i := range x {
		x[i] ^= acc[i]
	}
	t.gf_mult(&x, acc)
	clear(x[:])
}

// x is not changed, dst is changed, walks the nibbles from the last byte down
func (t *Table) gf_mult(x *[BlockSize]byte, dst *[BlockSize]byte) {
	lo := x[15] & 0x0f
	hi := x[15] >> 4

	zh := t.hh[lo]
	zl := t.hl[lo]

	rem := zl & 0x0f
	zl = ((zh << 60) | (zl >> 4)) ^ t.hl[hi]
	zh = (zh >> 4) ^ (last4[rem] << 48) ^ t.hh[hi]

	for i := 14; i >= 0; i-- {
		lo = x[i] & 0x0f
		hi = x[i] >> 4

		rem = zl & 0x0f
		zl = ((zh << 60) | (zl >> 4)) ^ t.hl[lo]
		zh = (zh >> 4) ^ (last4[rem] << 48) ^ t.hh[lo]
		rem = zl & 0x0f
		zl = ((zh << 60) | (zl >> 4)) ^ t.hl[hi]
		zh = (zh >> 4) ^ (last4[rem] << 48) ^ t.hh[hi]
	}
	binary.BigEndian.PutUint64(dst[:], zh)
	binary.BigEndian.PutUint64(dst[8:], zl)
}
