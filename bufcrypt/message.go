package bufcrypt

import (
	"fmt"

	"github.com/cybroslabs/libbufcrypt-go/base"
)

// SealMessage encrypts a copy of plaintext and returns IV || ciphertext || tag.
// A nil iv is generated. aad is authenticated but not part of the output.
func (c *Crypto) SealMessage(alg base.Algorithm, key []byte, iv []byte, aad []byte, plaintext []byte) ([]byte, error) {
	flags := base.FlagsNone
	if iv == nil {
		flags |= base.FlagsGenerateIV
		iv = make([]byte, base.GCM_IV_LENGTH)
	}
	if len(iv) != base.GCM_IV_LENGTH { // checked here too, the slicing below relies on it
		return nil, fmt.Errorf("iv has to be %d bytes long, got %d: %w", base.GCM_IV_LENGTH, len(iv), base.ErrInvalidSize)
	}
	ret := make([]byte, base.GCM_IV_LENGTH+len(plaintext)+base.GCM_TAG_LENGTH)
	body := ret[base.GCM_IV_LENGTH : base.GCM_IV_LENGTH+len(plaintext)]
	copy(body, plaintext)
	err := c.Encrypt(base.Mutable(body), aad, alg, flags, key, iv, ret[base.GCM_IV_LENGTH+len(plaintext):])
	if err != nil {
		return nil, err
	}
	copy(ret, iv)
	return ret, nil
}

// OpenMessage reverses SealMessage and returns the plaintext in a new slice.
func (c *Crypto) OpenMessage(alg base.Algorithm, key []byte, aad []byte, msg []byte) ([]byte, error) {
	if msg == nil {
		return nil, fmt.Errorf("message is nil: %w", base.ErrNullPointer)
	}
	if len(msg) < base.GCM_IV_LENGTH+base.GCM_TAG_LENGTH {
		return nil, fmt.Errorf("message of %d bytes has no room for iv and tag: %w", len(msg), base.ErrInvalidSize)
	}
	iv := msg[:base.GCM_IV_LENGTH]
	tag := msg[len(msg)-base.GCM_TAG_LENGTH:]
	ret := append([]byte{}, msg[base.GCM_IV_LENGTH:len(msg)-base.GCM_TAG_LENGTH]...)
	if err := c.Decrypt(base.Mutable(ret), aad, alg, key, tag, iv); err != nil {
		return nil, err
	}
	return ret, nil
}
