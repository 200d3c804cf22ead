package digest

import (
	"encoding/binary"
	"hash"
	"math/bits"
)

const SizeMD5 = 16

var initMD5 = [4]uint32{0x67452301, 0xefcdab89, 0x98badcfe, 0x10325476}

// floor(abs(sin(i+1)) * 2^32)
var kMD5 = [64]uint32{
	0xd76aa478, 0xe8c7b756, 0x242070db, 0xc1bdceee, 0xf57c0faf, 0x4787c62a, 0xa8304613, 0xfd469501,
	0x698098d8, 0x8b44f7af, 0xffff5bb1, 0x895cd7be, 0x6b901122, 0xfd987193, 0xa679438e, 0x49b40821,
	0xf61e2562, 0xc040b340, 0x265e5a51, 0xe9b6c7aa, 0xd62f105d, 0x02441453, 0xd8a1e681, 0xe7d3fbc8,
	0x21e1cde6, 0xc33707d6, 0xf4d50d87, 0x455a14ed, 0xa9e3e905, 0xfcefa3f8, 0x676f02d9, 0x8d2a4c8a,
	0xfffa3942, 0x8771f681, 0x6d9d6122, 0xfde5380c, 0xa4beea44, 0x4bdecfa9, 0xf6bb4b60, 0xbebfbc70,
	0x289b7ec6, 0xeaa127fa, 0xd4ef3085, 0x04881d05, 0xd9d4d039, 0xe6db99e5, 0x1fa27cf8, 0xc4ac5665,
	0xf4292244, 0x432aff97, 0xab9423a7, 0xfc93a039, 0x655b59c3, 0x8f0ccc92, 0xffeff47d, 0x85845dd1,
	0x6fa87e4f, 0xfe2ce6e0, 0xa3014314, 0x4e0811a1, 0xf7537e82, 0xbd3af235, 0x2ad7d2bb, 0xeb86d391,
}

// rotation per round, four steps repeat within a round
var shiftMD5 = [4][4]int{
	{7, 12, 17, 22},
	{5, 9, 14, 20},
	{4, 11, 16, 23},
	{6, 10, 15, 21},
}

type md5digest struct {
	s [4]uint32
	pending
}

// NewMD5 returns a streaming MD5.
func NewMD5() hash.Hash {
	d := &md5digest{}
	d.Reset()
	return d
}

func (d *md5digest) Reset() {
	d.s = initMD5
	d.pending.reset()
}

func (d *md5digest) Size() int      { return SizeMD5 }
func (d *md5digest) BlockSize() int { return BlockSize }

func (d *md5digest) Write(p []byte) (int, error) {
	return d.write(p, d.block), nil
}

func (d *md5digest) Sum(in []byte) []byte {
	d0 := *d
	s := d0.checkSum()
	return append(in, s[:]...)
}

func (d *md5digest) checkSum() [SizeMD5]byte {
	bitlen := d.len << 3
	pad := d.padding()
	binary.LittleEndian.PutUint64(pad[len(pad)-8:], bitlen)
	d.Write(pad)
	if d.nx != 0 {
		panic("digest: md5 padding left a partial block")
	}

	var out [SizeMD5]byte
	for i, v := range d.s {
		binary.LittleEndian.PutUint32(out[i<<2:], v)
	}
	return out
}

func (d *md5digest) block(p []byte) {
	var m [16]uint32
	for i := range m {
		m[i] = binary.LittleEndian.Uint32(p[i<<2:])
	}

	a, b, c, dd := d.s[0], d.s[1], d.s[2], d.s[3]
	for i := 0; i < 64; i++ {
		var f uint32
		var g int
		round := i >> 4
		switch round {
		case 0: // choice
			f = (b & c) | (^b & dd)
			g = i
		case 1: // choice, d selects
			f = (b & dd) | (c &^ dd)
			g = (5*i + 1) & 15
		case 2: // parity
			f = b ^ c ^ dd
			g = (3*i + 5) & 15
		default: // or-not
			f = c ^ (b | ^dd)
			g = (7 * i) & 15
		}
		f += a + kMD5[i] + m[g]
		a = dd
		dd = c
		c = b
		b += bits.RotateLeft32(f, shiftMD5[round][i&3])
	}

	d.s[0] += a
	d.s[1] += b
	d.s[2] += c
	d.s[3] += dd
}
