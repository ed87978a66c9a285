package platform

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCryptoFillsBuffer(t *testing.T) {
	var a, b [32]byte
	Crypto{}.RandomBytes(a[:])
	Crypto{}.RandomBytes(b[:])
	assert.NotEqual(t, a, b)
}

func TestUUIDSpansSeveralUUIDs(t *testing.T) {
	var p [40]byte
	UUID{}.RandomBytes(p[:])
	// version nibble of the first and second uuid
	assert.Equal(t, byte(0x40), p[6]&0xf0)
	assert.Equal(t, byte(0x40), p[16+6]&0xf0)
	assert.NotEqual(t, p[:16], p[16:32])
}

func TestReader(t *testing.T) {
	src := Reader(bytes.NewReader([]byte{1, 2, 3, 4, 5, 6}))
	var p [4]byte
	src.RandomBytes(p[:])
	assert.Equal(t, [4]byte{1, 2, 3, 4}, p)

	assert.Panics(t, func() {
		src.RandomBytes(p[:])
	})
}

func TestByName(t *testing.T) {
	for _, name := range []string{"", "crypto", "uuid"} {
		src, ok := ByName(name)
		require.True(t, ok, name)
		require.NotNil(t, src)
	}
	_, ok := ByName(strings.ToUpper("crypto"))
	assert.False(t, ok)
}
