package domain

import (
	"encoding/hex"
	"fmt"
)

const AddressSize = 20

// Address identifies a principal, such as the registry owner or the registry
// itself when it answers resolver queries.
type Address [AddressSize]byte

// ParseAddress decodes a 40 character hex string, with or without a 0x prefix.
func ParseAddress(s string) (Address, error) {
	var a Address
	b, err := decodeFixedHex(s, AddressSize)
	if err != nil {
		return a, fmt.Errorf("invalid address %q: %w", s, err)
	}
	copy(a[:], b)
	return a, nil
}

// MustParseAddress is like ParseAddress but panics on error. Intended for tests
// and constants.
func MustParseAddress(s string) Address {
	a, err := ParseAddress(s)
	if err != nil {
		panic(err)
	}
	return a
}

// String returns the 0x-prefixed lowercase hex form of the address.
func (a Address) String() string {
	return "0x" + hex.EncodeToString(a[:])
}

// IsZero reports whether the address is all zeros.
func (a Address) IsZero() bool {
	return a == Address{}
}
