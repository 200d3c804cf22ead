// Package gcm is the Galois/Counter mode construction over a pluggable block
// cipher and GHASH backend. Data is transformed in place, IV and tag travel
// separately.
package gcm

import (
	"crypto/subtle"
	"encoding/binary"
	"fmt"

	"github.com/cybroslabs/libbufcrypt-go/aes"
	"github.com/cybroslabs/libbufcrypt-go/base"
	"github.com/cybroslabs/libbufcrypt-go/ghash"
)

const (
	AES_BLOCK_SIZE     = base.AES_BLOCK_SIZE
	AES_BLOCK_SIZE_ROT = 4
	GCM_IV_LENGTH      = base.GCM_IV_LENGTH
	GCM_TAG_LENGTH     = base.GCM_TAG_LENGTH

	// counter values 0 and 1 are never used for data, 1 masks the tag
	MaxDataLength = (1<<32 - 3) * AES_BLOCK_SIZE
)

// one per call, never shared
type gcm struct {
	block aes.Block
	hash  ghash.Hasher
	J0    [AES_BLOCK_SIZE]byte // IV || 1
	EKY0  [AES_BLOCK_SIZE]byte // tag mask
	S     [AES_BLOCK_SIZE]byte // running tag
	tmp   [AES_BLOCK_SIZE]byte
}

func newgcm(b Backend, key []byte, iv []byte) (*gcm, error) {
	blk, err := b.NewBlock(key)
	if err != nil {
		return nil, err
	}
	g := gcm{block: blk}

	h := g.tmp[:] // rely on the fact that tmp is zero
	blk.Encrypt(h, h)
	g.hash = b.NewHasher(&g.tmp)
	os_memzero(h)

	copy(g.J0[:], iv)
	set32(g.J0[:], 1)
	blk.Encrypt(g.EKY0[:], g.J0[:])
	return &g, nil
}

// CheckLength fails with base.ErrOverflow when n bytes would run the 32 bit counter over.
func CheckLength(n uint64) error {
	if n > MaxDataLength {
		return fmt.Errorf("%d bytes exceeds %d: %w", n, uint64(MaxDataLength), base.ErrOverflow)
	}
	return nil
}

func checkargs(key []byte, iv []byte, tag []byte, data []byte) error {
	switch len(key) {
	case aes.KeySize128, aes.KeySize256:
	default:
		return fmt.Errorf("key has to be 16 or 32 bytes long: %w", base.ErrInvalidSize)
	}
	if len(iv) != GCM_IV_LENGTH {
		return fmt.Errorf("iv has to be %d bytes long: %w", GCM_IV_LENGTH, base.ErrInvalidSize)
	}
	if len(tag) != GCM_TAG_LENGTH {
		return fmt.Errorf("tag has to be %d bytes long: %w", GCM_TAG_LENGTH, base.ErrInvalidSize)
	}
	return CheckLength(uint64(len(data)))
}

// Seal encrypts data in place and writes the tag.
func Seal(b Backend, key []byte, iv []byte, aad []byte, data []byte, tag []byte) error {
	if err := checkargs(key, iv, tag, data); err != nil {
		return err
	}
	g, err := newgcm(b, key, iv)
	if err != nil {
		return err
	}
	g.ghash(aad)
	g.gctr_ghash(data)
	g.finish(len(aad), len(data), tag)
	g.wipe()
	return nil
}

// Open verifies the tag over aad and ciphertext first and only then decrypts data
// in place. On mismatch it returns base.ErrInvalidState and data is not touched.
func Open(b Backend, key []byte, iv []byte, aad []byte, data []byte, tag []byte) error {
	if err := checkargs(key, iv, tag, data); err != nil {
		return err
	}
	g, err := newgcm(b, key, iv)
	if err != nil {
		return err
	}
	defer g.wipe()

	g.ghash(aad)
	g.ghash(data) // tag over ciphertext, nothing decrypted yet
	var T [GCM_TAG_LENGTH]byte
	g.finish(len(aad), len(data), T[:])
	ok := subtle.ConstantTimeCompare(T[:], tag) == 1
	os_memzero(T[:])
	if !ok {
		return base.ErrInvalidState
	}
	g.gctr(data)
	return nil
}

// x is not changed, S is changed, last partial block zero padded
func (g *gcm) ghash(x []byte) {
	ghash.Fold(g.hash, &g.S, x)
}

// encrypts x in place from counter 2 on and folds each ciphertext block into S
func (g *gcm) gctr_ghash(x []byte) {
	ctr := g.J0
	set32(ctr[:], 2)
	ks := g.tmp[:]
	n := len(x) >> AES_BLOCK_SIZE_ROT
	for i := 0; i < n; i++ {
		g.block.Encrypt(ks, ctr[:])
		xor_block(x, ks)
		g.hash.Update(&g.S, x[:AES_BLOCK_SIZE])
		x = x[AES_BLOCK_SIZE:]
		inc32(ctr[:])
	}

	if len(x) != 0 {
		g.block.Encrypt(ks, ctr[:])
		for i := 0; i < len(x); i++ {
			x[i] ^= ks[i]
		}
		g.hash.Update(&g.S, x) // padded inside, never written back
	}
	os_memzero(ks)
}

// plain counter mode in place from counter 2 on, no hashing
func (g *gcm) gctr(x []byte) {
	ctr := g.J0
	set32(ctr[:], 2)
	ks := g.tmp[:]
	for len(x) >= AES_BLOCK_SIZE {
		g.block.Encrypt(ks, ctr[:])
		xor_block(x, ks)
		x = x[AES_BLOCK_SIZE:]
		inc32(ctr[:])
	}
	if len(x) != 0 {
		g.block.Encrypt(ks, ctr[:])
		for i := 0; i < len(x); i++ {
			x[i] ^= ks[i]
		}
	}
	os_memzero(ks)
}

// folds the bit lengths and masks S with EK(J0) into tag
func (g *gcm) finish(aadlen int, datalen int, tag []byte) {
	len_buf := g.tmp[:]
	binary.BigEndian.PutUint64(len_buf, uint64(aadlen)<<3)
	binary.BigEndian.PutUint64(len_buf[8:], uint64(datalen)<<3)
	g.hash.Update(&g.S, len_buf)
	xor_block(g.S[:], g.EKY0[:])
	copy(tag, g.S[:])
	os_memzero(len_buf)
}

func (g *gcm) wipe() {
	g.hash.Wipe()
	os_memzero(g.S[:])
	os_memzero(g.EKY0[:])
	os_memzero(g.tmp[:])
}

func inc32(block []byte) {
	ctr := block[AES_BLOCK_SIZE-4:]
	binary.BigEndian.PutUint32(ctr, binary.BigEndian.Uint32(ctr)+1)
}

func set32(block []byte, val uint32) {
	binary.BigEndian.PutUint32(block[AES_BLOCK_SIZE-4:], val)
}

// dst is changed, src is not
func xor_block(dst []byte, src []byte) {
	binary.NativeEndian.PutUint64(dst, binary.NativeEndian.Uint64(dst)^binary.NativeEndian.Uint64(src))
	binary.NativeEndian.PutUint64(dst[8:], binary.NativeEndian.Uint64(dst[8:])^binary.NativeEndian.Uint64(src[8:]))
}

func os_memzero(dst []byte) {
	for i := 0; i < len(dst); i++ {
		dst[i] = 0
	}
}
