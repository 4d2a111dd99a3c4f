package rrdata

import (
	"fmt"

	"github.com/haukened/rr-anchor/internal/dns/domain"
)

// MaxCharacterString is the largest payload of one character-string (RFC 1035 section 3.3).
const MaxCharacterString = 255

// SplitCharacterStrings cuts payload into consecutive runs of at most 255 bytes.
// An empty payload yields a single empty string so the TXT rdata stays non-empty.
func SplitCharacterStrings(payload []byte) [][]byte {
	if len(payload) == 0 {
		return [][]byte{{}}
	}
	out := make([][]byte, 0, (len(payload)+MaxCharacterString-1)/MaxCharacterString)
	for len(payload) > MaxCharacterString {
		out = append(out, payload[:MaxCharacterString])
		payload = payload[MaxCharacterString:]
	}
	return append(out, payload)
}

// EncodeTXT packs the given strings as TXT rdata (RFC 1035 section 3.3.14).
func EncodeTXT(txt domain.Text) ([]byte, error) {
	if len(txt.Strings) == 0 {
		return nil, fmt.Errorf("TXT record must contain at least one character-string")
	}
	size := 0
	for _, s := range txt.Strings {
		if len(s) > MaxCharacterString {
			return nil, fmt.Errorf("TXT character-string too long: %d bytes", len(s))
		}
		size += 1 + len(s)
	}
	encoded := make([]byte, 0, size)
	for _, s := range txt.Strings {
		encoded = append(encoded, byte(len(s)))
		encoded = append(encoded, s...)
	}
	return encoded, nil
}

// DecodeTXT parses TXT rdata. The whole slice must be consumed by well-formed
// character-strings; anything else is ErrMalformedRecord.
func DecodeTXT(data []byte) (domain.Text, error) {
	if len(data) == 0 {
		return domain.Text{}, fmt.Errorf("%w: TXT rdata is empty", domain.ErrMalformedRecord)
	}
	var strs [][]byte
	for i := 0; i < len(data); {
		n := int(data[i])
		i++
		if n > len(data)-i {
			return domain.Text{}, fmt.Errorf("%w: character-string at offset %d declares %d bytes, %d remain",
				domain.ErrMalformedRecord, i-1, n, len(data)-i)
		}
		s := make([]byte, n)
		copy(s, data[i:i+n])
		strs = append(strs, s)
		i += n
	}
	return domain.Text{Strings: strs}, nil
}
