package domain

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// Wire limits from RFC 1035 section 2.3.4.
const (
	MaxLabelLen = 63
	MaxNameLen  = 255
	NameKeySize = 32
)

// DomainName is a non-empty ordered list of labels. The root label is implicit
// and never stored.
type DomainName struct {
	Labels []string
}

// String returns the absolute presentation form, e.g. "n.xtnx.".
func (n DomainName) String() string {
	if len(n.Labels) == 0 {
		return "."
	}
	return strings.Join(n.Labels, ".") + "."
}

// Equal compares two names label by label, ignoring ASCII case.
func (n DomainName) Equal(o DomainName) bool {
	if len(n.Labels) != len(o.Labels) {
		return false
	}
	for i := range n.Labels {
		if !strings.EqualFold(n.Labels[i], o.Labels[i]) {
			return false
		}
	}
	return true
}

// EncodedName is a name in uncompressed wire format: length-prefixed labels
// followed by a zero byte.
type EncodedName []byte

// NameKey is the 32-byte digest identifying a name in the registry.
type NameKey [NameKeySize]byte

// String returns the 0x-prefixed lowercase hex form of the key.
func (k NameKey) String() string {
	return "0x" + hex.EncodeToString(k[:])
}

// IsZero reports whether every byte of the key is zero.
func (k NameKey) IsZero() bool {
	return k == NameKey{}
}

// ParseNameKey decodes a 64 character hex string, with or without a 0x prefix.
func ParseNameKey(s string) (NameKey, error) {
	var k NameKey
	b, err := decodeFixedHex(s, NameKeySize)
	if err != nil {
		return k, fmt.Errorf("invalid name key: %w", err)
	}
	copy(k[:], b)
	return k, nil
}

// NameKeyFromBytes copies a 32-byte slice into a NameKey.
func NameKeyFromBytes(b []byte) (NameKey, error) {
	var k NameKey
	if len(b) != NameKeySize {
		return k, fmt.Errorf("expected byte size of %d got %d", NameKeySize, len(b))
	}
	copy(k[:], b)
	return k, nil
}

func decodeFixedHex(s string, size int) ([]byte, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(strings.TrimSpace(s), "0x"), "0X")
	if len(s) != size*2 {
		return nil, fmt.Errorf("expected string size of %d got %d", size*2, len(s))
	}
	return hex.DecodeString(s)
}
