package aes

import (
	"bytes"
	"encoding/hex"
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/cybroslabs/libbufcrypt-go/base"
)

func mustHex(s string) []byte {
	b, err := hex.DecodeString(s)
	if err != nil {
		panic(err)
	}
	return b
}

func fill(r *rand.Rand, b []byte) {
	for i := range b {
		b[i] = byte(r.Uint32())
	}
}

var engines = []Engine{Generic, Hardware}

func TestSbox(t *testing.T) {
	cases := map[byte]byte{0x00: 0x63, 0x01: 0x7c, 0x10: 0xca, 0x53: 0xed, 0x80: 0xcd, 0xff: 0x16}
	for in, want := range cases {
		if sbox[in] != want {
			t.Errorf("sbox[%02x] = %02x, want %02x", in, sbox[in], want)
		}
	}
	var seen [256]bool
	for _, v := range sbox {
		if seen[v] {
			t.Fatalf("sbox is not a permutation, %02x repeats", v)
		}
		seen[v] = true
	}
}

func TestExpandKey(t *testing.T) {
	tests := []struct {
		name string
		key  string
		last string
	}{
		{"aes128", "2b7e151628aed2a6abf7158809cf4f3c", "d014f9a8c9ee2589e13f0cc8b6630ca6"},
		{"aes256", "603deb1015ca71be2b73aef0857d77811f352c073b6108d72d9810a30914dff4", "fe4890d1e6188d0b046df344706c631e"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := mustHex(tt.key)
			s, err := ExpandKey(key)
			if err != nil {
				t.Fatalf("ExpandKey: %v", err)
			}
			var rk [BlockSize]byte
			s.RoundKey(rk[:], 0)
			if !bytes.Equal(rk[:], key[:16]) {
				t.Errorf("round key 0 = %x, want %x", rk, key[:16])
			}
			s.RoundKey(rk[:], s.Rounds())
			if !bytes.Equal(rk[:], mustHex(tt.last)) {
				t.Errorf("last round key = %x, want %s", rk, tt.last)
			}
		})
	}
}

func TestExpandKeyInvalid(t *testing.T) {
	for _, n := range []int{0, 15, 24, 33} {
		_, err := ExpandKey(make([]byte, n))
		if !errors.Is(err, base.ErrInvalidSize) {
			t.Errorf("ExpandKey(%d bytes) err = %v, want ErrInvalidSize", n, err)
		}
		for _, e := range engines {
			if _, err := e.NewBlock(make([]byte, n)); !errors.Is(err, base.ErrInvalidSize) {
				t.Errorf("%s.NewBlock(%d bytes) err = %v, want ErrInvalidSize", e.Name(), n, err)
			}
		}
	}
}

func TestFIPS197(t *testing.T) {
	tests := []struct {
		key    string
		rounds int
		out    string
	}{
		{"000102030405060708090a0b0c0d0e0f", Rounds128, "69c4e0d86a7b0430d8cdb78070b4c55a"},
		{"000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f", Rounds256, "8ea2b7ca516745bfeafc49904b496089"},
	}
	in := mustHex("00112233445566778899aabbccddeeff")
	for _, e := range engines {
		for _, tt := range tests {
			b, err := e.NewBlock(mustHex(tt.key))
			if err != nil {
				t.Fatalf("%s: NewBlock: %v", e.Name(), err)
			}
			if b.Rounds() != tt.rounds {
				t.Errorf("%s: rounds = %d, want %d", e.Name(), b.Rounds(), tt.rounds)
			}
			out := make([]byte, BlockSize)
			b.Encrypt(out, in)
			if !bytes.Equal(out, mustHex(tt.out)) {
				t.Errorf("%s: Encrypt = %x, want %s", e.Name(), out, tt.out)
			}
			// in place
			buf := append([]byte(nil), in...)
			b.Encrypt(buf, buf)
			if !bytes.Equal(buf, out) {
				t.Errorf("%s: in-place Encrypt = %x, want %x", e.Name(), buf, out)
			}
		}
	}
}

func TestEnginesAgree(t *testing.T) {
	r := rand.New(rand.NewPCG(0x6165, 0x73))
	var in, a, b [BlockSize]byte
	for i := 0; i < 1200; i++ {
		key := make([]byte, KeySize128)
		if i&1 == 1 {
			key = make([]byte, KeySize256)
		}
		fill(r, key)
		fill(r, in[:])
		gb, err := Generic.NewBlock(key)
		if err != nil {
			t.Fatal(err)
		}
		hb, err := Hardware.NewBlock(key)
		if err != nil {
			t.Fatal(err)
		}
		gb.Encrypt(a[:], in[:])
		hb.Encrypt(b[:], in[:])
		if a != b {
			t.Fatalf("key %x in %x: generic %x, hardware %x", key, in, a, b)
		}
	}
}

func TestDetect(t *testing.T) {
	e := Detect()
	if HasHardwareAES() && e != Hardware {
		t.Errorf("Detect() = %s with hardware aes available", e.Name())
	}
	if !HasHardwareAES() && e != Generic {
		t.Errorf("Detect() = %s without hardware aes", e.Name())
	}
}

func BenchmarkEncrypt(b *testing.B) {
	key := make([]byte, KeySize256)
	for _, e := range engines {
		b.Run(e.Name(), func(b *testing.B) {
			blk, _ := e.NewBlock(key)
			var buf [BlockSize]byte
			b.SetBytes(BlockSize)
			for i := 0; i < b.N; i++ {
				blk.Encrypt(buf[:], buf[:])
			}
		})
	}
}
