package aes

import (
	goaes "crypto/aes"
	"crypto/cipher"
	"fmt"

	"github.com/cybroslabs/libbufcrypt-go/base"
)

// crypto/aes runs the fused round instructions (AES-NI, ARMv8 AES) and does the
// key expansion with keygenassist itself
type hardwareEngine struct{}

func (hardwareEngine) Name() string { return "hardware" }

func (hardwareEngine) NewBlock(key []byte) (Block, error) {
	var rounds int
	switch len(key) {
	case KeySize128:
		rounds = Rounds128
	case KeySize256:
		rounds = Rounds256
	default:
		return nil, fmt.Errorf("aes key has to be 16 or 32 bytes long, got %d: %w", len(key), base.ErrInvalidSize)
	}
	c, err := goaes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return &hardwareBlock{Block: c, rounds: rounds}, nil
}

type hardwareBlock struct {
	cipher.Block
	rounds int
}

func (b *hardwareBlock) Rounds() int { return b.rounds }
