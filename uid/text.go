package uid

import (
	"encoding/hex"
	"errors"
	"fmt"
)

var ErrMalformed = errors.New("malformed identifier string")

// String gives 32 lowercase hex digits.
func (x ID) String() string {
	return hex.EncodeToString(x.b[:])
}

// FromString reverses String. On failure the returned ID is Null and ok is false.
func FromString(s string) (ID, bool) {
	var x ID
	if len(s) != EncodedLen {
		return Null, false
	}
	for i := 0; i < len(s); i++ {
		if !isLowerHex(s[i]) {
			return Null, false
		}
	}
	if _, err := hex.Decode(x.b[:], []byte(s)); err != nil {
		return Null, false
	}
	return x, true
}

func Parse(s string) (ID, error) {
	x, ok := FromString(s)
	if !ok {
		return Null, fmt.Errorf("%w: %q", ErrMalformed, s)
	}
	return x, nil
}

func MustParse(s string) ID {
	x, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return x
}

func (x ID) MarshalText() ([]byte, error) {
	b := make([]byte, EncodedLen)
	hex.Encode(b, x.b[:])
	return b, nil
}

func (x *ID) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*x = parsed
	return nil
}

func (x ID) MarshalBinary() ([]byte, error) {
	return x.Bytes(), nil
}

func (x *ID) UnmarshalBinary(data []byte) error {
	if len(data) != Size {
		return fmt.Errorf("%w: want %d bytes, got %d", ErrMalformed, Size, len(data))
	}
	copy(x.b[:], data)
	return nil
}

func isLowerHex(c byte) bool {
	return ('0' <= c && c <= '9') || ('a' <= c && c <= 'f')
}
