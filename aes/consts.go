package aes

import "math/bits"

const (
	BlockSize  = 16
	Rounds128  = 10
	Rounds256  = 14
	maxRounds  = Rounds256
	KeySize128 = 16
	KeySize256 = 32
)

var rcon = [...]byte{0x01, 0x02, 0x04, 0x08, 0x10, 0x20, 0x40, 0x80, 0x1b, 0x36}

var sbox [256]byte

// multiplicative inverse in GF(2^8) walked through powers of 3, then the affine map
func init() {
	p, q := byte(1), byte(1)
	for {
		hi := p & 0x80
		p ^= p << 1
		if hi != 0 {
			p ^= 0x1b
		}

		q ^= q << 1
		q ^= q << 2
		q ^= q << 4
		if q&0x80 != 0 {
			q ^= 0x09
		}

		x := q ^ bits.RotateLeft8(q, 1) ^ bits.RotateLeft8(q, 2) ^ bits.RotateLeft8(q, 3) ^ bits.RotateLeft8(q, 4)
		sbox[p] = x ^ 0x63
		if p == 1 {
			break
		}
	}
	sbox[0] = 0x63
}

func xtime(a byte) byte {
	return a<<1 ^ byte(int8(a)>>7)&0x1b
}
