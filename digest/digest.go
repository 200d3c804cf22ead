// Package digest has the SHA-256 and MD5 compression loops behind hash.Hash.
// Both buffer input into 64 byte blocks and pad with 0x80, zeros and the
// 64 bit message length in bits.
package digest

const BlockSize = 64

// pending input plus the total byte count, shared by both digests
type pending struct {
	x   [BlockSize]byte
	nx  int
	len uint64
}

// feeds p through compress in whole blocks, keeps the tail in x
func (b *pending) write(p []byte, compress func(block []byte)) int {
	n := len(p)
	b.len += uint64(n)
	if b.nx > 0 {
		c := copy(b.x[b.nx:], p)
		b.nx += c
		if b.nx == BlockSize {
			compress(b.x[:])
			b.nx = 0
		}
		p = p[c:]
	}
	for len(p) >= BlockSize {
		compress(p[:BlockSize])
		p = p[BlockSize:]
	}
	if len(p) > 0 {
		b.nx = copy(b.x[:], p)
	}
	return n
}

// padding for the current length, the length field itself is left for the caller,
// when fewer than 8 bytes remain in the block a whole extra block is added
func (b *pending) padding() []byte {
	var tmp [BlockSize + 8]byte
	tmp[0] = 0x80
	rem := b.len % BlockSize
	t := 56 - rem
	if rem >= 56 {
		t += BlockSize
	}
	return tmp[:t+8]
}

func (b *pending) reset() {
	clear(b.x[:])
	b.nx = 0
	b.len = 0
}

// Sum256 is the SHA-256 digest of data.
func Sum256(data []byte) [Size256]byte {
	var d sha256digest
	d.Reset()
	d.Write(data)
	return d.checkSum()
}

// SumMD5 is the MD5 digest of data.
func SumMD5(data []byte) [SizeMD5]byte {
	var d md5digest
	d.Reset()
	d.Write(data)
	return d.checkSum()
}
