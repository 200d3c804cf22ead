// Package ghash implements the GCM universal hash over GF(2^128) reduced by
// x^128 + x^7 + x^2 + x + 1, bits numbered the GCM way (msb of byte 0 is x^0).
package ghash

import "golang.org/x/sys/cpu"

const BlockSize = 16

// Hasher folds one block into the accumulator: acc = (acc ^ block) * H.
// Blocks shorter than BlockSize are zero padded.
type Hasher interface {
	Update(acc *[BlockSize]byte, block []byte)
	Wipe() // forgets H, later updates multiply by zero
}

// Fold runs all of data through h, the last partial block zero padded.
func Fold(h Hasher, acc *[BlockSize]byte, data []byte) {
	for len(data) >= BlockSize {
		h.Update(acc, data[:BlockSize])
		data = data[BlockSize:]
	}
	if len(data) != 0 {
		h.Update(acc, data)
	}
}

// HasHardwareClmul reports whether the cpu has a carry-less multiply instruction.
func HasHardwareClmul() bool {
	return cpu.X86.HasPCLMULQDQ || cpu.ARM64.HasPMULL
}

// load xors the (padded) block into acc, returned as two big endian words
func load(acc *[BlockSize]byte, block []byte) (hi, lo uint64) {
	var x [BlockSize]byte
	copy(x[:], block)
	for i := range x {
		x[i] ^= acc[i]
	}
	hi, lo = be64(x[:8]), be64(x[8:])
	clear(x[:])
	return
}
