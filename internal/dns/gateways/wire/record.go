package wire

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/haukened/rr-anchor/internal/dns/common/rrdata"
	"github.com/haukened/rr-anchor/internal/dns/domain"
)

// EncodeRecord serializes a resource record as owner name, type, class, ttl,
// rdlength and rdata. Integers are big-endian.
func EncodeRecord(rr domain.ResourceRecord) ([]byte, error) {
	if err := rr.Validate(); err != nil {
		return nil, err
	}
	name, err := encodeLabels(rr.Name)
	if err != nil {
		return nil, err
	}
	rdata, err := rrdata.Encode(rr.Data)
	if err != nil {
		return nil, err
	}
	if len(rdata) > math.MaxUint16 {
		return nil, fmt.Errorf("rdata of %d bytes exceeds %d", len(rdata), math.MaxUint16)
	}

	out := make([]byte, 0, len(name)+10+len(rdata))
	out = append(out, name...)
	out = binary.BigEndian.AppendUint16(out, uint16(rr.Type))
	out = binary.BigEndian.AppendUint16(out, uint16(rr.Class))
	out = binary.BigEndian.AppendUint32(out, rr.TTL)
	out = binary.BigEndian.AppendUint16(out, uint16(len(rdata)))
	return append(out, rdata...), nil
}

// EncodeTextRecord builds a full TXT record of class IN for name. The payload
// is stored as one character-string when it fits in 255 bytes and as
// consecutive 255-byte strings otherwise.
func EncodeTextRecord(name, payload string, ttl uint32) ([]byte, error) {
	n, err := ParseName(name)
	if err != nil {
		return nil, err
	}
	return EncodeRecord(domain.ResourceRecord{
		Name:  n,
		Type:  domain.RRTypeTXT,
		Class: domain.RRClassIN,
		TTL:   ttl,
		Data:  domain.Text{Strings: rrdata.SplitCharacterStrings([]byte(payload))},
	})
}

// DecodeRecord parses exactly one resource record. The rdlength field must
// account for every byte after the fixed header.
func DecodeRecord(b []byte) (domain.ResourceRecord, error) {
	r := newReader(b)
	name, err := decodeName(r)
	if err != nil {
		return domain.ResourceRecord{}, err
	}
	rrType, err := r.u16()
	if err != nil {
		return domain.ResourceRecord{}, err
	}
	class, err := r.u16()
	if err != nil {
		return domain.ResourceRecord{}, err
	}
	ttl, err := r.u32()
	if err != nil {
		return domain.ResourceRecord{}, err
	}
	rdlength, err := r.u16()
	if err != nil {
		return domain.ResourceRecord{}, err
	}
	if int(rdlength) != r.remaining() {
		return domain.ResourceRecord{}, fmt.Errorf("%w: rdlength %d but %d bytes remain",
			domain.ErrMalformedRecord, rdlength, r.remaining())
	}
	raw, err := r.next(int(rdlength))
	if err != nil {
		return domain.ResourceRecord{}, err
	}
	data, err := rrdata.Decode(domain.RRType(rrType), raw)
	if err != nil {
		return domain.ResourceRecord{}, err
	}
	return domain.ResourceRecord{
		Name:  name,
		Type:  domain.RRType(rrType),
		Class: domain.RRClass(class),
		TTL:   ttl,
		Data:  data,
	}, nil
}
