// Package platform provides the entropy sources identifiers are generated from.
package platform

import (
	"crypto/rand"
	"fmt"
	"io"

	"github.com/google/uuid"
)

// Source fills p completely with random bytes or panics.
type Source interface {
	RandomBytes(p []byte)
}

var Default Source = Crypto{}

// Crypto reads the operating system random source.
type Crypto struct{}

func (Crypto) RandomBytes(p []byte) {
	if _, err := rand.Read(p); err != nil {
		panic(fmt.Errorf("can't read crypto random bytes: %w", err))
	}
}

// UUID takes bytes from version 4 UUIDs. Each UUID carries 122 random bits,
// the version and variant bits are fixed.
type UUID struct{}

func (UUID) RandomBytes(p []byte) {
	for len(p) > 0 {
		u, err := uuid.NewRandom()
		if err != nil {
			panic(fmt.Errorf("can't make random uuid: %w", err))
		}
		p = p[copy(p, u[:]):]
	}
}

type readerSource struct {
	r io.Reader
}

// Reader turns any reader into a Source, e.g. a fixed byte stream in tests.
func Reader(r io.Reader) Source {
	return readerSource{r: r}
}

func (s readerSource) RandomBytes(p []byte) {
	if _, err := io.ReadFull(s.r, p); err != nil {
		panic(fmt.Errorf("can't read %d random bytes: %w", len(p), err))
	}
}

// ByName resolves the names accepted in configuration files.
func ByName(name string) (Source, bool) {
	switch name {
	case "", "crypto":
		return Crypto{}, true
	case "uuid":
		return UUID{}, true
	}
	return nil, false
}
