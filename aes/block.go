package aes

import "golang.org/x/sys/cpu"

// Block encrypts single 16 byte blocks under one key, dst and src may overlap exactly.
type Block interface {
	BlockSize() int
	Rounds() int
	Encrypt(dst, src []byte)
}

// Engine builds Blocks, every engine gives the same output for the same key and input.
type Engine interface {
	Name() string
	NewBlock(key []byte) (Block, error)
}

var (
	Generic  Engine = genericEngine{}
	Hardware Engine = hardwareEngine{}
)

// HasHardwareAES reports whether the cpu has AES round instructions.
func HasHardwareAES() bool {
	return cpu.X86.HasAES || cpu.ARM64.HasAES
}

// Detect picks the hardware engine when the cpu can run it, generic otherwise.
func Detect() Engine {
	if HasHardwareAES() {
		return Hardware
	}
	return Generic
}
