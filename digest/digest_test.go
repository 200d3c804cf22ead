package digest

import (
	"bytes"
	"crypto/md5"
	"crypto/sha256"
	"encoding/hex"
	"hash"
	"math"
	"math/rand/v2"
	"strings"
	"testing"
)

func TestSha256Vectors(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"},
		{"abc", "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"},
		{"abcdbcdecdefdefgefghfghighijhijkijkljklmklmnlmnomnopnopq", "248d6a61d20638b8e5c026930c3e6039a33ce45964ff2167f6ecedd419db06c1"},
	}
	for _, tt := range tests {
		got := Sum256([]byte(tt.in))
		if hex.EncodeToString(got[:]) != tt.want {
			t.Errorf("Sum256(%q) = %x, want %s", tt.in, got, tt.want)
		}
	}
}

func TestMD5Vectors(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "d41d8cd98f00b204e9800998ecf8427e"},
		{"a", "0cc175b9c0f1b6a831c399e269772661"},
		{"abc", "900150983cd24fb0d6963f7d28e17f72"},
		{"message digest", "f96b697d7cb7938d525a2f31aaf161d0"},
		{"abcdefghijklmnopqrstuvwxyz", "c3fcd3d76192e4007dfb496cca67e13b"},
	}
	for _, tt := range tests {
		got := SumMD5([]byte(tt.in))
		if hex.EncodeToString(got[:]) != tt.want {
			t.Errorf("SumMD5(%q) = %x, want %s", tt.in, got, tt.want)
		}
	}
}

func TestMD5Constants(t *testing.T) {
	for i, k := range kMD5 {
		want := uint32(math.Floor(math.Abs(math.Sin(float64(i+1))) * (1 << 32)))
		if k != want {
			t.Errorf("kMD5[%d] = %08x, want %08x", i, k, want)
		}
	}
}

// every length around the padding boundaries against the standard library
func TestPaddingBoundaries(t *testing.T) {
	data := []byte(strings.Repeat("0123456789abcdef", 20))
	for n := 0; n <= len(data); n++ {
		s := Sum256(data[:n])
		if s != sha256.Sum256(data[:n]) {
			t.Fatalf("Sum256 differs from crypto/sha256 at %d bytes", n)
		}
		m := SumMD5(data[:n])
		if m != md5.Sum(data[:n]) {
			t.Fatalf("SumMD5 differs from crypto/md5 at %d bytes", n)
		}
	}
}

func TestPadding(t *testing.T) {
	for _, n := range []uint64{0, 1, 55, 56, 63, 64, 119, 120} {
		p := pending{len: n}
		pad := p.padding()
		if (n+uint64(len(pad)))%BlockSize != 0 {
			t.Errorf("len %d: padding of %d does not end on a block", n, len(pad))
		}
		if len(pad) < 9 || len(pad) > BlockSize+8 {
			t.Errorf("len %d: padding of %d out of range", n, len(pad))
		}
		if pad[0] != 0x80 {
			t.Errorf("len %d: padding starts with %02x", n, pad[0])
		}
	}
	// 56 bytes leave no room for the length, an extra block is needed
	p := pending{len: 56}
	if got := len(p.padding()); got != 72 {
		t.Errorf("padding after 56 bytes = %d, want 72", got)
	}
}

func TestStreamingEquivalence(t *testing.T) {
	r := rand.New(rand.NewPCG(3, 4))
	data := make([]byte, 1000)
	for i := range data {
		data[i] = byte(r.Uint32())
	}
	for _, mk := range []struct {
		name string
		new  func() hash.Hash
		sum  func([]byte) []byte
	}{
		{"sha256", NewSHA256, func(b []byte) []byte { s := Sum256(b); return s[:] }},
		{"md5", NewMD5, func(b []byte) []byte { s := SumMD5(b); return s[:] }},
	} {
		want := mk.sum(data)
		for i := 0; i < 50; i++ {
			h := mk.new()
			rest := data
			for len(rest) > 0 {
				n := r.IntN(130) + 1
				if n > len(rest) {
					n = len(rest)
				}
				h.Write(rest[:n])
				rest = rest[n:]
			}
			if got := h.Sum(nil); !bytes.Equal(got, want) {
				t.Fatalf("%s: chunked %x, one shot %x", mk.name, got, want)
			}
			// Sum must not disturb the running state
			if got := h.Sum(nil); !bytes.Equal(got, want) {
				t.Fatalf("%s: second Sum %x, want %x", mk.name, got, want)
			}
		}
	}
}

func TestResetAndAppend(t *testing.T) {
	h := NewSHA256()
	h.Write([]byte("garbage"))
	h.Reset()
	h.Write([]byte("abc"))
	out := h.Sum([]byte("prefix"))
	if !bytes.HasPrefix(out, []byte("prefix")) || len(out) != 6+Size256 {
		t.Fatalf("Sum did not append: %x", out)
	}
	want := Sum256([]byte("abc"))
	if !bytes.Equal(out[6:], want[:]) {
		t.Fatalf("Sum after Reset = %x, want %x", out[6:], want)
	}
	if h.Size() != Size256 || h.BlockSize() != BlockSize {
		t.Fatal("sha256 sizes")
	}
	m := NewMD5()
	if m.Size() != SizeMD5 || m.BlockSize() != BlockSize {
		t.Fatal("md5 sizes")
	}
}

func TestDeterminism(t *testing.T) {
	data := []byte("the same input twice")
	if Sum256(data) != Sum256(data) || SumMD5(data) != SumMD5(data) {
		t.Fatal("digest not deterministic")
	}
}

func BenchmarkSum256(b *testing.B) {
	data := make([]byte, 8192)
	b.SetBytes(int64(len(data)))
	for i := 0; i < b.N; i++ {
		Sum256(data)
	}
}

func BenchmarkSumMD5(b *testing.B) {
	data := make([]byte, 8192)
	b.SetBytes(int64(len(data)))
	for i := 0; i < b.N; i++ {
		SumMD5(data)
	}
}
