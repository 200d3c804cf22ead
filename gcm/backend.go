package gcm

import (
	"sync"

	"github.com/cybroslabs/libbufcrypt-go/aes"
	"github.com/cybroslabs/libbufcrypt-go/ghash"
)

// Backend supplies the block cipher and GHASH implementation, the GCM code
// never looks behind it.
type Backend interface {
	Name() string
	NewBlock(key []byte) (aes.Block, error)
	NewHasher(h *[AES_BLOCK_SIZE]byte) ghash.Hasher
}

type backend struct {
	name      string
	engine    aes.Engine
	newhasher func(h *[AES_BLOCK_SIZE]byte) ghash.Hasher
}

func (b *backend) Name() string                                   { return b.name }
func (b *backend) NewBlock(key []byte) (aes.Block, error)         { return b.engine.NewBlock(key) }
func (b *backend) NewHasher(h *[AES_BLOCK_SIZE]byte) ghash.Hasher { return b.newhasher(h) }

var (
	// Software is the table driven pair: generic AES rounds, 4-bit GHASH tables.
	Software Backend = &backend{
		name:      "software",
		engine:    aes.Generic,
		newhasher: func(h *[AES_BLOCK_SIZE]byte) ghash.Hasher { return ghash.NewTable(h) },
	}
	// Hardware uses the cpu AES rounds. GHASH on this path is the table free
	// carry-less multiply in plain Go, not a native PCLMULQDQ/PMULL instruction.
	Hardware Backend = &backend{
		name:      "hardware",
		engine:    aes.Hardware,
		newhasher: func(h *[AES_BLOCK_SIZE]byte) ghash.Hasher { return ghash.NewClmul(h) },
	}
)

var detected = sync.OnceValue(func() Backend {
	if aes.HasHardwareAES() && ghash.HasHardwareClmul() {
		return Hardware
	}
	return Software
})

// Detect returns the backend for this cpu, decided once per process.
func Detect() Backend {
	return detected()
}

// ByName resolves "software", "hardware" or "auto", nil for anything else.
func ByName(name string) Backend {
	switch name {
	case "software":
		return Software
	case "hardware":
		return Hardware
	case "auto", "":
		return Detect()
	}
	return nil
}
