package bufcrypt

import (
	"bytes"
	"encoding/hex"
	"errors"
	"io"
	"testing"

	"github.com/cybroslabs/libbufcrypt-go/base"
	"github.com/cybroslabs/libbufcrypt-go/gcm"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newCrypto(t *testing.T, backend string) *Crypto {
	t.Helper()
	c, err := New(&Settings{Backend: backend})
	if err != nil {
		t.Fatalf("New(%s): %v", backend, err)
	}
	return c
}

var backendNames = []string{"software", "hardware"}

// claims a length without backing memory, Bytes must never be reached
type hugeBuffer struct {
	n int
}

func (h *hugeBuffer) Bytes() []byte  { panic("Bytes called on size-only buffer") }
func (h *hugeBuffer) Len() int       { return h.n }
func (h *hugeBuffer) Writable() bool { return true }

func TestRoundTrip(t *testing.T) {
	for _, name := range backendNames {
		c := newCrypto(t, name)
		for _, alg := range []base.Algorithm{base.AlgorithmAES128GCM, base.AlgorithmAES256GCM} {
			key := bytes.Repeat([]byte{0x42}, alg.KeySize())
			iv := make([]byte, base.GCM_IV_LENGTH)
			tag := make([]byte, base.GCM_TAG_LENGTH)
			pt := []byte("attack at dawn, bring snacks")
			aad := []byte("route 66")
			buf := bytes.Clone(pt)

			if err := c.Encrypt(base.Mutable(buf), aad, alg, base.FlagsGenerateIV, key, iv, tag); err != nil {
				t.Fatalf("%s/%v: Encrypt: %v", name, alg, err)
			}
			if bytes.Equal(iv, make([]byte, base.GCM_IV_LENGTH)) {
				t.Errorf("%s/%v: iv not generated", name, alg)
			}
			if bytes.Equal(buf, pt) {
				t.Errorf("%s/%v: buffer not encrypted", name, alg)
			}
			if err := c.Decrypt(base.Mutable(buf), aad, alg, key, tag, iv); err != nil {
				t.Fatalf("%s/%v: Decrypt: %v", name, alg, err)
			}
			if !bytes.Equal(buf, pt) {
				t.Errorf("%s/%v: got %q, want %q", name, alg, buf, pt)
			}
		}
	}
}

func TestNullPointer(t *testing.T) {
	c := newCrypto(t, "auto")
	key := make([]byte, 16)
	iv := make([]byte, 12)
	tag := make([]byte, 16)
	buf := base.Mutable(make([]byte, 8))
	alg := base.AlgorithmAES128GCM

	cases := map[string]error{
		"target": c.Encrypt(nil, nil, alg, 0, key, iv, tag),
		"key":    c.Encrypt(buf, nil, alg, 0, nil, iv, tag),
		"iv":     c.Encrypt(buf, nil, alg, 0, key, nil, tag),
		"tag":    c.Encrypt(buf, nil, alg, 0, key, iv, nil),
		"dtag":   c.Decrypt(buf, nil, alg, key, nil, iv),
		"dtgt":   c.Decrypt(nil, nil, alg, key, tag, iv),
	}
	for name, err := range cases {
		if !errors.Is(err, base.ErrNullPointer) {
			t.Errorf("%s: err = %v, want ErrNullPointer", name, err)
		}
	}
}

func TestInvalidEnum(t *testing.T) {
	c := newCrypto(t, "auto")
	key := make([]byte, 16)
	iv := make([]byte, 12)
	tag := make([]byte, 16)
	buf := []byte("untouched")
	for _, alg := range []base.Algorithm{0, 3, 255} {
		if err := c.Encrypt(base.Mutable(buf), nil, alg, 0, key, iv, tag); !errors.Is(err, base.ErrInvalidEnum) {
			t.Errorf("algorithm %d: err = %v, want ErrInvalidEnum", alg, err)
		}
		if err := c.Decrypt(base.Mutable(buf), nil, alg, key, tag, iv); !errors.Is(err, base.ErrInvalidEnum) {
			t.Errorf("decrypt algorithm %d: err = %v, want ErrInvalidEnum", alg, err)
		}
	}
	for _, f := range []base.Flags{4, 8, 0x80, base.FlagsGenerateIV | 0x10} {
		if err := c.Encrypt(base.Mutable(buf), nil, base.AlgorithmAES128GCM, f, key, iv, tag); !errors.Is(err, base.ErrInvalidEnum) {
			t.Errorf("flags %v: err = %v, want ErrInvalidEnum", f, err)
		}
	}
	if string(buf) != "untouched" {
		t.Errorf("buffer modified by rejected call: %q", buf)
	}
}

func TestConstData(t *testing.T) {
	c := newCrypto(t, "auto")
	buf := []byte("read only")
	key := make([]byte, 32)
	iv := make([]byte, 12)
	tag := make([]byte, 16)
	if err := c.Encrypt(base.Const(buf), nil, base.AlgorithmAES256GCM, 0, key, iv, tag); !errors.Is(err, base.ErrConstData) {
		t.Errorf("Encrypt err = %v, want ErrConstData", err)
	}
	if err := c.Decrypt(base.Const(buf), nil, base.AlgorithmAES256GCM, key, tag, iv); !errors.Is(err, base.ErrConstData) {
		t.Errorf("Decrypt err = %v, want ErrConstData", err)
	}
	if string(buf) != "read only" {
		t.Errorf("const buffer modified: %q", buf)
	}
}

func TestKeySizeMismatch(t *testing.T) {
	c := newCrypto(t, "auto")
	iv := make([]byte, 12)
	tag := make([]byte, 16)
	buf := base.Mutable([]byte("x"))
	if err := c.Encrypt(buf, nil, base.AlgorithmAES256GCM, 0, make([]byte, 16), iv, tag); !errors.Is(err, base.ErrInvalidSize) {
		t.Errorf("16 byte key for aes256: err = %v", err)
	}
	if err := c.Encrypt(buf, nil, base.AlgorithmAES128GCM, 0, make([]byte, 32), iv, tag); !errors.Is(err, base.ErrInvalidSize) {
		t.Errorf("32 byte key for aes128: err = %v", err)
	}
	if err := c.Encrypt(buf, nil, base.AlgorithmAES128GCM, 0, make([]byte, 16), make([]byte, 8), tag); !errors.Is(err, base.ErrInvalidSize) {
		t.Errorf("8 byte iv: err = %v", err)
	}
}

func TestOverflow(t *testing.T) {
	c := newCrypto(t, "auto")
	key := make([]byte, 16)
	iv := make([]byte, 12)
	tag := make([]byte, 16)
	over := &hugeBuffer{n: gcm.MaxDataLength + 1}
	if err := c.Encrypt(over, nil, base.AlgorithmAES128GCM, 0, key, iv, tag); !errors.Is(err, base.ErrOverflow) {
		t.Errorf("Encrypt err = %v, want ErrOverflow", err)
	}
	if err := c.Decrypt(over, nil, base.AlgorithmAES128GCM, key, tag, iv); !errors.Is(err, base.ErrOverflow) {
		t.Errorf("Decrypt err = %v, want ErrOverflow", err)
	}
	// the limit itself passes validation
	if err := c.validate(&hugeBuffer{n: gcm.MaxDataLength}, base.AlgorithmAES128GCM, 0, key, iv, tag); err != nil {
		t.Errorf("validate at the limit = %v", err)
	}
}

func TestGenerateKeyAndIV(t *testing.T) {
	stream := make([]byte, 64)
	for i := range stream {
		stream[i] = byte(i + 1)
	}
	c, err := New(&Settings{Random: bytes.NewReader(stream)})
	if err != nil {
		t.Fatal(err)
	}
	key := make([]byte, 16)
	iv := make([]byte, 12)
	tag := make([]byte, 16)
	buf := []byte("generated")
	if err := c.Encrypt(base.Mutable(buf), nil, base.AlgorithmAES128GCM, base.FlagsGenerateKey|base.FlagsGenerateIV, key, iv, tag); err != nil {
		t.Fatal(err)
	}
	// key is drawn before the iv
	if !bytes.Equal(key, stream[:16]) || !bytes.Equal(iv, stream[16:28]) {
		t.Fatalf("key %x iv %x not taken from the random source", key, iv)
	}
	if err := c.Decrypt(base.Mutable(buf), nil, base.AlgorithmAES128GCM, key, tag, iv); err != nil || string(buf) != "generated" {
		t.Fatalf("Decrypt with generated key: %v, %q", err, buf)
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, io.ErrUnexpectedEOF }

func TestRandomFailure(t *testing.T) {
	c, err := New(&Settings{Random: failingReader{}})
	if err != nil {
		t.Fatal(err)
	}
	buf := []byte("keep me")
	err = c.Encrypt(base.Mutable(buf), nil, base.AlgorithmAES128GCM, base.FlagsGenerateIV, make([]byte, 16), make([]byte, 12), make([]byte, 16))
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Fatalf("err = %v, want the random source error", err)
	}
	if string(buf) != "keep me" {
		t.Fatalf("buffer modified: %q", buf)
	}
}

func TestTamperLeavesCiphertext(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	c, err := New(&Settings{Logger: zap.New(core).Sugar()})
	if err != nil {
		t.Fatal(err)
	}
	key := make([]byte, 32)
	iv := make([]byte, 12)
	tag := make([]byte, 16)
	buf := []byte("integrity matters more than secrecy")
	if err := c.Encrypt(base.Mutable(buf), []byte("hdr"), base.AlgorithmAES256GCM, 0, key, iv, tag); err != nil {
		t.Fatal(err)
	}
	buf[3] ^= 0x10
	ct := bytes.Clone(buf)
	if err := c.Decrypt(base.Mutable(buf), []byte("hdr"), base.AlgorithmAES256GCM, key, tag, iv); !errors.Is(err, base.ErrInvalidState) {
		t.Fatalf("err = %v, want ErrInvalidState", err)
	}
	if !bytes.Equal(buf, ct) {
		t.Fatal("buffer changed after tag mismatch")
	}
	if logs.Len() != 1 {
		t.Fatalf("expected one warning, got %d", logs.Len())
	}
	if bytes.Contains([]byte(logs.All()[0].Message), key) {
		t.Fatal("key material logged")
	}
}

func TestMessageLayout(t *testing.T) {
	c := newCrypto(t, "software")
	ka := knownAnswers[1]
	msg, err := c.SealMessage(ka.alg, unhex(ka.key), unhex(ka.iv), unhex(ka.aad), unhex(ka.pt))
	if err != nil {
		t.Fatal(err)
	}
	want := unhex(ka.iv + ka.ct + ka.tag)
	if !bytes.Equal(msg, want) {
		t.Fatalf("SealMessage = %x, want %x", msg, want)
	}
	pt, err := c.OpenMessage(ka.alg, unhex(ka.key), unhex(ka.aad), msg)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(pt, unhex(ka.pt)) {
		t.Fatalf("OpenMessage = %x", pt)
	}
	if !bytes.Equal(msg, want) {
		t.Fatal("OpenMessage modified its input")
	}

	if _, err := c.OpenMessage(ka.alg, unhex(ka.key), nil, msg); !errors.Is(err, base.ErrInvalidState) {
		t.Errorf("OpenMessage without aad: err = %v", err)
	}
	if _, err := c.OpenMessage(ka.alg, unhex(ka.key), nil, msg[:20]); !errors.Is(err, base.ErrInvalidSize) {
		t.Errorf("short message: err = %v", err)
	}
	if _, err := c.OpenMessage(ka.alg, unhex(ka.key), nil, nil); !errors.Is(err, base.ErrNullPointer) {
		t.Errorf("nil message: err = %v", err)
	}

	gen, err := c.SealMessage(base.AlgorithmAES128GCM, make([]byte, 16), nil, nil, []byte("hi"))
	if err != nil {
		t.Fatal(err)
	}
	if len(gen) != base.GCM_IV_LENGTH+2+base.GCM_TAG_LENGTH {
		t.Fatalf("generated message length %d", len(gen))
	}
	if pt, err := c.OpenMessage(base.AlgorithmAES128GCM, make([]byte, 16), nil, gen); err != nil || string(pt) != "hi" {
		t.Fatalf("round trip with generated iv: %v %q", err, pt)
	}
}

func TestSelfTest(t *testing.T) {
	for _, b := range []gcm.Backend{gcm.Software, gcm.Hardware} {
		if err := SelfTest(b); err != nil {
			t.Errorf("SelfTest(%s): %v", b.Name(), err)
		}
	}
	if err := Default().SelfTest(); err != nil {
		t.Errorf("Default().SelfTest(): %v", err)
	}
}

func TestDigests(t *testing.T) {
	s := Sha256([]byte("abc"))
	if hex.EncodeToString(s[:]) != "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad" {
		t.Errorf("Sha256 = %x", s)
	}
	m := Md5([]byte("a"))
	if hex.EncodeToString(m[:]) != "0cc175b9c0f1b6a831c399e269772661" {
		t.Errorf("Md5 = %x", m)
	}
	c := newCrypto(t, "auto")
	if c.Sha256(nil) != Sha256([]byte{}) || c.Md5(nil) != Md5([]byte{}) {
		t.Error("method and package digests differ")
	}
}

func TestSettingsValidate(t *testing.T) {
	if _, err := New(&Settings{Backend: "gpu"}); !errors.Is(err, base.ErrInvalidEnum) {
		t.Errorf("unknown backend: err = %v", err)
	}
	for _, name := range []string{"", "auto", "software", "hardware"} {
		if _, err := New(&Settings{Backend: name}); err != nil {
			t.Errorf("backend %q: %v", name, err)
		}
	}
	c := newCrypto(t, "hardware")
	if c.Backend() != gcm.Hardware {
		t.Errorf("Backend() = %s", c.Backend().Name())
	}
	c.SetLogger(nil)
}
