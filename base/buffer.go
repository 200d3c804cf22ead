package base

// Buffer is a borrowed byte region, the crypto calls never keep it past return.
type Buffer interface {
	Bytes() []byte
	Len() int
	Writable() bool
}

type buffer struct {
	data     []byte
	writable bool
}

// Mutable wraps b so it can be transformed in place.
func Mutable(b []byte) Buffer {
	return &buffer{data: b, writable: true}
}

// Const wraps b read only, in-place encryption or decryption into it fails with ErrConstData.
func Const(b []byte) Buffer {
	return &buffer{data: b}
}

func (b *buffer) Bytes() []byte  { return b.data }
func (b *buffer) Len() int       { return len(b.data) }
func (b *buffer) Writable() bool { return b.writable }
