package aes

import (
	"encoding/binary"
	"fmt"
	"math/bits"

	"github.com/cybroslabs/libbufcrypt-go/base"
)

// Schedule holds the expanded round keys, index 0 is the whitening key.
type Schedule struct {
	rk     [maxRounds + 1][4]uint32
	rounds int
}

// ExpandKey runs the FIPS-197 key expansion for a 16 or 32 byte key.
func ExpandKey(key []byte) (*Schedule, error) {
	s := &Schedule{}
	switch len(key) {
	case KeySize128:
		s.rounds = Rounds128
		s.rk[0] = loadWords(key)
		for i := 1; i <= Rounds128; i++ {
			s.rk[i] = expand128(s.rk[i-1], rcon[i-1])
		}
	case KeySize256:
		s.rounds = Rounds256
		s.rk[0] = loadWords(key)
		s.rk[1] = loadWords(key[16:])
		for i := 2; i <= Rounds256; i++ {
			if i&1 == 0 {
				s.rk[i] = expand256a(s.rk[i-2], s.rk[i-1], rcon[i/2-1])
			} else {
				s.rk[i] = expand256b(s.rk[i-2], s.rk[i-1])
			}
		}
	default:
		return nil, fmt.Errorf("aes key has to be 16 or 32 bytes long, got %d: %w", len(key), base.ErrInvalidSize)
	}
	return s, nil
}

func (s *Schedule) Rounds() int {
	return s.rounds
}

// RoundKey writes round key i into dst as 16 bytes.
func (s *Schedule) RoundKey(dst []byte, i int) {
	_ = dst[BlockSize-1]
	for j, w := range s.rk[i] {
		binary.BigEndian.PutUint32(dst[j<<2:], w)
	}
}

// Wipe zeroes the round keys.
func (s *Schedule) Wipe() {
	clear(s.rk[:])
	s.rounds = 0
}

func loadWords(b []byte) (w [4]uint32) {
	_ = b[BlockSize-1]
	for i := range w {
		w[i] = binary.BigEndian.Uint32(b[i<<2:])
	}
	return
}

func subWord(w uint32) uint32 {
	return uint32(sbox[w>>24])<<24 | uint32(sbox[w>>16&0xff])<<16 | uint32(sbox[w>>8&0xff])<<8 | uint32(sbox[w&0xff])
}

// same thing aeskeygenassist gives for the last word
func keygenassist(w uint32, rc byte) uint32 {
	return subWord(bits.RotateLeft32(w, 8)) ^ uint32(rc)<<24
}

func cascade(prev [4]uint32, t uint32) (n [4]uint32) {
	n[0] = prev[0] ^ t
	n[1] = prev[1] ^ n[0]
	n[2] = prev[2] ^ n[1]
	n[3] = prev[3] ^ n[2]
	return
}

func expand128(prev [4]uint32, rc byte) [4]uint32 {
	return cascade(prev, keygenassist(prev[3], rc))
}

// even round keys of aes-256, rotation and round constant
func expand256a(prev2, prev1 [4]uint32, rc byte) [4]uint32 {
	return cascade(prev2, keygenassist(prev1[3], rc))
}

// odd round keys of aes-256, substitution only
func expand256b(prev2, prev1 [4]uint32) [4]uint32 {
	return cascade(prev2, subWord(prev1[3]))
}
