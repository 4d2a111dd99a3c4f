package rrdata

import "github.com/haukened/rr-anchor/internal/dns/domain"

// Decode decodes record data based on its type, from its binary representation.
// Only TXT is interpreted; every other type is returned as opaque bytes.
func Decode(rrType domain.RRType, data []byte) (domain.ResourceData, error) {
	switch rrType {
	case domain.RRTypeTXT: // 16
		return DecodeTXT(data)
	default:
		return domain.Opaque{Type: rrType, Bytes: append([]byte(nil), data...)}, nil
	}
}
