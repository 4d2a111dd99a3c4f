package wire

import (
	"fmt"
	"strings"

	"github.com/haukened/rr-anchor/internal/dns/common/utils"
	"github.com/haukened/rr-anchor/internal/dns/domain"
)

// ParseName normalizes a presentation-format name into its labels: a trailing
// dot is implied, A-Z are folded to lowercase, and every label must hold 1-63
// bytes. Escapes are not interpreted.
func ParseName(name string) (domain.DomainName, error) {
	if !strings.HasSuffix(name, ".") {
		name += "."
	}
	name = utils.FoldASCII(name)
	labels := strings.Split(strings.TrimSuffix(name, "."), ".")
	for i, label := range labels {
		if len(label) == 0 {
			return domain.DomainName{}, fmt.Errorf("%w: empty label at position %d in %q", domain.ErrInvalidName, i, name)
		}
	}
	n := domain.DomainName{Labels: labels}
	if _, err := encodeLabels(n); err != nil {
		return domain.DomainName{}, err
	}
	return n, nil
}

// EncodeName converts a presentation-format name to uncompressed wire format.
// Encoding is idempotent across trailing dots and ASCII case, so "Foo.Bar" and
// "foo.bar." produce identical bytes.
func EncodeName(name string) (domain.EncodedName, error) {
	n, err := ParseName(name)
	if err != nil {
		return nil, err
	}
	return encodeLabels(n)
}

// encodeLabels emits length-prefixed labels terminated by a zero byte.
func encodeLabels(n domain.DomainName) (domain.EncodedName, error) {
	if len(n.Labels) == 0 {
		return nil, fmt.Errorf("%w: name has no labels", domain.ErrInvalidName)
	}
	size := 1
	for _, label := range n.Labels {
		if len(label) == 0 {
			return nil, fmt.Errorf("%w: empty label", domain.ErrInvalidName)
		}
		if len(label) > domain.MaxLabelLen {
			return nil, fmt.Errorf("%w: label of %d bytes exceeds %d", domain.ErrInvalidName, len(label), domain.MaxLabelLen)
		}
		size += 1 + len(label)
	}
	if size > domain.MaxNameLen {
		return nil, fmt.Errorf("%w: encoded length %d exceeds %d", domain.ErrInvalidName, size, domain.MaxNameLen)
	}
	encoded := make([]byte, 0, size)
	for _, label := range n.Labels {
		encoded = append(encoded, byte(len(label)))
		encoded = append(encoded, label...)
	}
	return append(encoded, 0), nil
}

// DecodeName parses a complete wire-format name. Trailing bytes after the
// terminating zero label are rejected.
func DecodeName(b []byte) (domain.DomainName, error) {
	r := newReader(b)
	n, err := decodeName(r)
	if err != nil {
		return domain.DomainName{}, err
	}
	if r.remaining() != 0 {
		return domain.DomainName{}, fmt.Errorf("%w: %d bytes after name terminator", domain.ErrMalformedRecord, r.remaining())
	}
	return n, nil
}

// decodeName reads labels until the zero terminator. Compression pointers
// (length bytes with the top bits set) are larger than 63 and rejected.
func decodeName(r *reader) (domain.DomainName, error) {
	var labels []string
	size := 1
	for {
		l, err := r.u8()
		if err != nil {
			return domain.DomainName{}, fmt.Errorf("%w: name is missing its terminating zero label", domain.ErrMalformedRecord)
		}
		if l == 0 {
			break
		}
		if int(l) > domain.MaxLabelLen {
			return domain.DomainName{}, fmt.Errorf("%w: label length byte 0x%02x at offset %d", domain.ErrMalformedRecord, l, r.off-1)
		}
		label, err := r.next(int(l))
		if err != nil {
			return domain.DomainName{}, err
		}
		size += 1 + int(l)
		if size > domain.MaxNameLen {
			return domain.DomainName{}, fmt.Errorf("%w: name longer than %d bytes", domain.ErrMalformedRecord, domain.MaxNameLen)
		}
		labels = append(labels, string(label))
	}
	if len(labels) == 0 {
		return domain.DomainName{}, fmt.Errorf("%w: owner name is the root", domain.ErrMalformedRecord)
	}
	return domain.DomainName{Labels: labels}, nil
}
