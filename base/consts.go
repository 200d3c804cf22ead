package base

import (
	"fmt"
	"strings"
)

const (
	AES_BLOCK_SIZE  = 16
	GCM_IV_LENGTH   = 12
	GCM_TAG_LENGTH  = 16
	AES128_KEY_SIZE = 16
	AES256_KEY_SIZE = 32
	SHA256_SIZE     = 32
	MD5_SIZE        = 16
)

type Algorithm byte

const (
	AlgorithmAES128GCM Algorithm = 1 // AES-128 in Galois/Counter mode.
	AlgorithmAES256GCM Algorithm = 2 // AES-256 in Galois/Counter mode.
)

// KeySize returns the key length the algorithm expects, zero for unknown values.
func (a Algorithm) KeySize() int {
	switch a {
	case AlgorithmAES128GCM:
		return AES128_KEY_SIZE
	case AlgorithmAES256GCM:
		return AES256_KEY_SIZE
	}
	return 0
}

func (a Algorithm) Valid() bool {
	return a.KeySize() != 0
}

func (a Algorithm) String() string {
	switch a {
	case AlgorithmAES128GCM:
		return "aes128-gcm"
	case AlgorithmAES256GCM:
		return "aes256-gcm"
	}
	return fmt.Sprintf("Algorithm(%d)", byte(a))
}

func ParseAlgorithm(s string) (Algorithm, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "aes128-gcm", "aes-128-gcm", "aes128gcm":
		return AlgorithmAES128GCM, nil
	case "aes256-gcm", "aes-256-gcm", "aes256gcm":
		return AlgorithmAES256GCM, nil
	}
	return 0, fmt.Errorf("algorithm %q: %w", s, ErrInvalidEnum)
}

type Flags byte

const (
	FlagsNone        Flags = 0
	FlagsGenerateIV  Flags = 1 << 0 // IV is filled from the random source before encryption.
	FlagsGenerateKey Flags = 1 << 1 // Key is filled from the random source before encryption.

	flagsAll = FlagsGenerateIV | FlagsGenerateKey
)

func (f Flags) Valid() bool {
	return f&^flagsAll == 0
}

func (f Flags) Has(o Flags) bool {
	return f&o == o
}

func (f Flags) String() string {
	if f == FlagsNone {
		return "none"
	}
	var parts []string
	if f.Has(FlagsGenerateIV) {
		parts = append(parts, "generate-iv")
	}
	if f.Has(FlagsGenerateKey) {
		parts = append(parts, "generate-key")
	}
	if !f.Valid() {
		parts = append(parts, fmt.Sprintf("0x%02x", byte(f&^flagsAll)))
	}
	return strings.Join(parts, "|")
}
