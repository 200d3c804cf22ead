package bufcrypt

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/cybroslabs/libbufcrypt-go/base"
	"github.com/cybroslabs/libbufcrypt-go/digest"
	"github.com/cybroslabs/libbufcrypt-go/gcm"
	"go.uber.org/zap"
)

type Settings struct {
	Logger  *zap.SugaredLogger
	Backend string    // auto, software or hardware, empty means auto
	Random  io.Reader // source for generated keys and IVs, crypto/rand when nil
}

func (s *Settings) Validate() error {
	if gcm.ByName(s.Backend) == nil {
		return fmt.Errorf("unknown backend %q: %w", s.Backend, base.ErrInvalidEnum)
	}
	return nil
}

// Crypto holds only immutable configuration and can be shared between goroutines.
type Crypto struct {
	logger  *zap.SugaredLogger
	backend gcm.Backend
	random  io.Reader
}

func New(settings *Settings) (*Crypto, error) {
	if settings == nil {
		settings = &Settings{}
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	c := &Crypto{
		logger:  settings.Logger,
		backend: gcm.ByName(settings.Backend),
		random:  settings.Random,
	}
	if c.logger == nil {
		c.logger = zap.NewNop().Sugar()
	}
	if c.random == nil {
		c.random = rand.Reader
	}
	c.logger.Debugf("bufcrypt using %s backend", c.backend.Name())
	return c, nil
}

func (c *Crypto) SetLogger(logger *zap.SugaredLogger) {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	c.logger = logger
}

func (c *Crypto) Backend() gcm.Backend {
	return c.backend
}

func (c *Crypto) validate(target base.Buffer, alg base.Algorithm, flags base.Flags, key []byte, iv []byte, tag []byte) error {
	switch {
	case target == nil:
		return fmt.Errorf("target is nil: %w", base.ErrNullPointer)
	case key == nil:
		return fmt.Errorf("key is nil: %w", base.ErrNullPointer)
	case iv == nil:
		return fmt.Errorf("iv is nil: %w", base.ErrNullPointer)
	case tag == nil:
		return fmt.Errorf("tag is nil: %w", base.ErrNullPointer)
	}
	if !alg.Valid() {
		return fmt.Errorf("algorithm %v: %w", alg, base.ErrInvalidEnum)
	}
	if !flags.Valid() {
		return fmt.Errorf("flags %v: %w", flags, base.ErrInvalidEnum)
	}
	if !target.Writable() {
		return base.ErrConstData
	}
	if len(key) != alg.KeySize() {
		return fmt.Errorf("%v needs a %d byte key, got %d: %w", alg, alg.KeySize(), len(key), base.ErrInvalidSize)
	}
	if len(iv) != base.GCM_IV_LENGTH {
		return fmt.Errorf("iv has to be %d bytes long, got %d: %w", base.GCM_IV_LENGTH, len(iv), base.ErrInvalidSize)
	}
	if len(tag) != base.GCM_TAG_LENGTH {
		return fmt.Errorf("tag has to be %d bytes long, got %d: %w", base.GCM_TAG_LENGTH, len(tag), base.ErrInvalidSize)
	}
	return gcm.CheckLength(uint64(target.Len()))
}

// Encrypt turns target into ciphertext in place and writes the tag. With
// FlagsGenerateKey / FlagsGenerateIV the key / iv slices are filled from the
// random source first.
func (c *Crypto) Encrypt(target base.Buffer, aad []byte, alg base.Algorithm, flags base.Flags, key []byte, iv []byte, tag []byte) error {
	if err := c.validate(target, alg, flags, key, iv, tag); err != nil {
		c.logger.Debugf("encrypt rejected: %v", err)
		return err
	}
	if flags.Has(base.FlagsGenerateKey) {
		if _, err := io.ReadFull(c.random, key); err != nil {
			return fmt.Errorf("unable to generate key: %w", err)
		}
	}
	if flags.Has(base.FlagsGenerateIV) {
		if _, err := io.ReadFull(c.random, iv); err != nil {
			return fmt.Errorf("unable to generate iv: %w", err)
		}
	}
	return gcm.Seal(c.backend, key, iv, aad, target.Bytes(), tag)
}

// Decrypt authenticates target against tag and only then decrypts it in place.
// On base.ErrInvalidState target still holds the untouched ciphertext.
func (c *Crypto) Decrypt(target base.Buffer, aad []byte, alg base.Algorithm, key []byte, tag []byte, iv []byte) error {
	if err := c.validate(target, alg, base.FlagsNone, key, iv, tag); err != nil {
		c.logger.Debugf("decrypt rejected: %v", err)
		return err
	}
	err := gcm.Open(c.backend, key, iv, aad, target.Bytes(), tag)
	if errors.Is(err, base.ErrInvalidState) {
		c.logger.Warnf("%v: authentication failed on %d byte payload", alg, target.Len())
	}
	return err
}

func (c *Crypto) Sha256(data []byte) [base.SHA256_SIZE]byte {
	return digest.Sum256(data)
}

func (c *Crypto) Md5(data []byte) [base.MD5_SIZE]byte {
	return digest.SumMD5(data)
}

var std = sync.OnceValue(func() *Crypto {
	c, err := New(nil)
	if err != nil { // auto backend always resolves
		panic(err)
	}
	return c
})

// Default is the shared instance behind the package level functions.
func Default() *Crypto {
	return std()
}

func Encrypt(target base.Buffer, aad []byte, alg base.Algorithm, flags base.Flags, key []byte, iv []byte, tag []byte) error {
	return std().Encrypt(target, aad, alg, flags, key, iv, tag)
}

func Decrypt(target base.Buffer, aad []byte, alg base.Algorithm, key []byte, tag []byte, iv []byte) error {
	return std().Decrypt(target, aad, alg, key, tag, iv)
}

func Sha256(data []byte) [base.SHA256_SIZE]byte {
	return digest.Sum256(data)
}

func Md5(data []byte) [base.MD5_SIZE]byte {
	return digest.SumMD5(data)
}
