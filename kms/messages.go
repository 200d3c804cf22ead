package kms

import (
	"fmt"
	"strings"

	"github.com/cybroslabs/libbufcrypt-go/base"
)

// Byte fields carry no omitempty, an empty slice and a missing one are different requests.

type SealRequest struct {
	Algorithm *base.Algorithm `json:"algorithm,omitempty"` // server default when nil
	Flags     *base.Flags     `json:"flags,omitempty"`
	Key       []byte          `json:"key"`
	Iv        []byte          `json:"iv"`
	Aad       []byte          `json:"aad"`
	Data      []byte          `json:"data"`
}

type SealResponse struct {
	Key  []byte `json:"key"` // only set when FlagsGenerateKey was requested
	Iv   []byte `json:"iv"`
	Tag  []byte `json:"tag"`
	Data []byte `json:"data"`
}

type OpenRequest struct {
	Algorithm *base.Algorithm `json:"algorithm,omitempty"`
	Key       []byte          `json:"key"`
	Iv        []byte          `json:"iv"`
	Aad       []byte          `json:"aad"`
	Tag       []byte          `json:"tag"`
	Data      []byte          `json:"data"`
}

type OpenResponse struct {
	Data []byte `json:"data"`
}

type DigestKind string

const (
	DigestSHA256 DigestKind = "sha256"
	DigestMD5    DigestKind = "md5"
)

func ParseDigestKind(s string) (DigestKind, error) {
	switch k := DigestKind(strings.ToLower(strings.TrimSpace(s))); k {
	case DigestSHA256, DigestMD5:
		return k, nil
	}
	return "", fmt.Errorf("digest %q: %w", s, base.ErrInvalidEnum)
}

type DigestRequest struct {
	Kind *DigestKind `json:"kind,omitempty"` // sha256 when nil
	Data []byte      `json:"data"`
}

type DigestResponse struct {
	Sum []byte `json:"sum"`
}
