// Package uid implements the 16-byte identifier that tags processes,
// connections and other resources exchanged between processes.
//
// An ID is a plain value: it can be copied, compared with ==, used as a map
// key and overlaid on any byte buffer. Uniqueness is probabilistic, the bytes
// come from an EntropySource and nothing else is embedded.
package uid

import (
	"bytes"

	"github.com/cespare/xxhash/v2"

	"github.com/iv-menshenin/uniqid/platform"
)

const (
	// Size is the number of bytes in an ID.
	Size = 16
	// EncodedLen is the length of the canonical string form.
	EncodedLen = 2 * Size
)

// ID is an opaque identifier. The zero value is Null.
type ID struct {
	b [Size]byte
}

// Null never comes out of Generate in practice, it marks "no identifier".
var Null ID

// EntropySource fills p with unpredictable bytes. It must fill all of p.
type EntropySource interface {
	RandomBytes(p []byte)
}

// Generate makes a new identifier from src.
func Generate(src EntropySource) ID {
	var x ID
	src.RandomBytes(x.b[:])
	return x
}

// New makes a new identifier from the operating system random source.
func New() ID {
	return Generate(platform.Default)
}

// FromBytes copies an identifier out of the head of a raw buffer.
func FromBytes(b []byte) (ID, bool) {
	var x ID
	if len(b) < Size {
		return Null, false
	}
	copy(x.b[:], b[:Size])
	return x, true
}

func (x ID) Bytes() []byte {
	b := make([]byte, Size)
	copy(b, x.b[:])
	return b
}

// AppendTo appends the raw bytes of x to dst.
func (x ID) AppendTo(dst []byte) []byte {
	return append(dst, x.b[:]...)
}

func (x ID) IsZero() bool {
	return x == Null
}

func (x ID) Equal(y ID) bool {
	return x == y
}

// Compare orders identifiers byte-wise, returning -1, 0 or 1.
func (x ID) Compare(y ID) int {
	return bytes.Compare(x.b[:], y.b[:])
}

func (x ID) Less(y ID) bool {
	return x.Compare(y) < 0
}

// Hash is meant for in-memory containers only, its value may change between builds.
func (x ID) Hash() uint64 {
	return xxhash.Sum64(x.b[:])
}
