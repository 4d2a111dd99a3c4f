package rrdata

import (
	"fmt"

	"github.com/haukened/rr-anchor/internal/dns/domain"
)

// Encode encodes record data based on its type, to its binary representation.
// TXT is interpreted; opaque data is copied through unchanged.
func Encode(data domain.ResourceData) ([]byte, error) {
	switch d := data.(type) {
	case domain.Text:
		return EncodeTXT(d)
	case domain.Opaque:
		return append([]byte(nil), d.Bytes...), nil
	case nil:
		return nil, fmt.Errorf("record data must be set")
	default:
		return nil, fmt.Errorf("%s record encoding not supported", data.RRType())
	}
}
