package kms

import (
	"context"
	"fmt"

	"github.com/cybroslabs/libbufcrypt-go/base"
	"github.com/cybroslabs/libbufcrypt-go/gcm"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"k8s.io/utils/ptr"
)

type ClientSettings struct {
	Logger *zap.SugaredLogger
	Conn   grpc.ClientConnInterface
}

// Client is safe for concurrent use as long as Conn is.
type Client struct {
	logger *zap.SugaredLogger
	conn   grpc.ClientConnInterface
}

func NewClient(settings *ClientSettings) (*Client, error) {
	if settings == nil || settings.Conn == nil {
		return nil, fmt.Errorf("connection is nil: %w", base.ErrNullPointer)
	}
	c := &Client{
		logger: settings.Logger,
		conn:   settings.Conn,
	}
	if c.logger == nil {
		c.logger = zap.NewNop().Sugar()
	}
	return c, nil
}

func (c *Client) invoke(ctx context.Context, method string, in any, out any) error {
	var header metadata.MD
	err := c.conn.Invoke(ctx, method, in, out, grpc.CallContentSubtype(codecName), grpc.Header(&header))
	if err != nil {
		if id := header.Get(RequestIDHeader); len(id) > 0 {
			c.logger.Debugf("%s %s: %v", id[0], method, err)
		}
		return fromStatus(err)
	}
	return nil
}

func (c *Client) Seal(ctx context.Context, req *SealRequest) (*SealResponse, error) {
	out := new(SealResponse)
	if err := c.invoke(ctx, sealMethod, req, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Open(ctx context.Context, req *OpenRequest) (*OpenResponse, error) {
	out := new(OpenResponse)
	if err := c.invoke(ctx, openMethod, req, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Digest(ctx context.Context, req *DigestRequest) (*DigestResponse, error) {
	out := new(DigestResponse)
	if err := c.invoke(ctx, digestMethod, req, out); err != nil {
		return nil, err
	}
	return out, nil
}

// same checks in the same order as the local facade, nothing is sent when they fail
func checkArgs(target base.Buffer, alg base.Algorithm, flags base.Flags, key []byte, iv []byte, tag []byte) error {
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
	// target.Bytes is not touched before this passes
	return gcm.CheckLength(uint64(target.Len()))
}

func copyBack(dst []byte, src []byte, what string) error {
	if len(dst) != len(src) {
		return fmt.Errorf("server returned %d byte %s, expected %d", len(src), what, len(dst))
	}
	copy(dst, src)
	return nil
}

// Encrypt has the signature and error behaviour of bufcrypt.Crypto.Encrypt,
// the work is done remotely.
func (c *Client) Encrypt(ctx context.Context, target base.Buffer, aad []byte, alg base.Algorithm, flags base.Flags, key []byte, iv []byte, tag []byte) error {
	if err := checkArgs(target, alg, flags, key, iv, tag); err != nil {
		return err
	}
	out, err := c.Seal(ctx, &SealRequest{
		Algorithm: ptr.To(alg),
		Flags:     ptr.To(flags),
		Key:       key,
		Iv:        iv,
		Aad:       aad,
		Data:      target.Bytes(),
	})
	if err != nil {
		return err
	}
	if err = copyBack(target.Bytes(), out.Data, "ciphertext"); err != nil {
		return err
	}
	if flags.Has(base.FlagsGenerateKey) {
		if err = copyBack(key, out.Key, "key"); err != nil {
			return err
		}
	}
	if flags.Has(base.FlagsGenerateIV) {
		if err = copyBack(iv, out.Iv, "iv"); err != nil {
			return err
		}
	}
	return copyBack(tag, out.Tag, "tag")
}

// Decrypt mirrors bufcrypt.Crypto.Decrypt, target is left untouched unless the tag verifies.
func (c *Client) Decrypt(ctx context.Context, target base.Buffer, aad []byte, alg base.Algorithm, key []byte, tag []byte, iv []byte) error {
	if err := checkArgs(target, alg, base.FlagsNone, key, iv, tag); err != nil {
		return err
	}
	out, err := c.Open(ctx, &OpenRequest{
		Algorithm: ptr.To(alg),
		Key:       key,
		Iv:        iv,
		Aad:       aad,
		Tag:       tag,
		Data:      target.Bytes(),
	})
	if err != nil {
		return err
	}
	return copyBack(target.Bytes(), out.Data, "plaintext")
}

func (c *Client) Sha256(ctx context.Context, data []byte) ([base.SHA256_SIZE]byte, error) {
	var ret [base.SHA256_SIZE]byte
	out, err := c.Digest(ctx, &DigestRequest{Kind: ptr.To(DigestSHA256), Data: data})
	if err != nil {
		return ret, err
	}
	return ret, copyBack(ret[:], out.Sum, "digest")
}

func (c *Client) Md5(ctx context.Context, data []byte) ([base.MD5_SIZE]byte, error) {
	var ret [base.MD5_SIZE]byte
	out, err := c.Digest(ctx, &DigestRequest{Kind: ptr.To(DigestMD5), Data: data})
	if err != nil {
		return ret, err
	}
	return ret, copyBack(ret[:], out.Sum, "digest")
}
