package wire

import (
	"bytes"
	"encoding/binary"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haukened/rr-anchor/internal/dns/domain"
)

func TestEncodeTextRecord_Layout(t *testing.T) {
	payload := "dnslink=/ipfs/QmTest"
	got, err := EncodeTextRecord("n.xtnx", payload, 3600)
	require.NoError(t, err)

	name := []byte{1, 'n', 4, 'x', 't', 'n', 'x', 0}
	require.True(t, bytes.HasPrefix(got, name))

	off := len(name)
	assert.Equal(t, uint16(domain.RRTypeTXT), binary.BigEndian.Uint16(got[off:]))
	assert.Equal(t, uint16(domain.RRClassIN), binary.BigEndian.Uint16(got[off+2:]))
	assert.Equal(t, uint32(3600), binary.BigEndian.Uint32(got[off+4:]))
	assert.Equal(t, uint16(1+len(payload)), binary.BigEndian.Uint16(got[off+8:]))
	assert.Equal(t, byte(len(payload)), got[off+10])
	assert.Equal(t, payload, string(got[off+11:]))
}

func TestEncodeTextRecord_InvalidName(t *testing.T) {
	_, err := EncodeTextRecord("bad..name", "x", 60)
	assert.ErrorIs(t, err, domain.ErrInvalidName)
}

func TestRecordRoundTrip_CIDs(t *testing.T) {
	cids := []string{
		"QmWATWQ7fVPP2EFGu71UkfnqhYXDYH566qy47CnJDgvs8u",
		"bafybeigdyrzt5sfp7udm7hu76uh7y26nf3efuylqabf3oclgtqy55fbzdi",
		"",
		strings.Repeat("x", 600),
	}
	for _, cid := range cids {
		t.Run(cid[:min(len(cid), 12)], func(t *testing.T) {
			payload := "dnslink=/ipfs/" + cid
			encoded, err := EncodeTextRecord("Docs.Example.COM", payload, 300)
			require.NoError(t, err)

			rr, err := DecodeRecord(encoded)
			require.NoError(t, err)
			assert.Equal(t, "docs.example.com.", rr.Name.String())
			assert.Equal(t, domain.RRTypeTXT, rr.Type)
			assert.Equal(t, domain.RRClassIN, rr.Class)
			assert.Equal(t, uint32(300), rr.TTL)

			txt, ok := rr.Text()
			require.True(t, ok)
			assert.Equal(t, payload, strings.Join(txt.Values(), ""))
			for _, s := range txt.Strings {
				assert.LessOrEqual(t, len(s), 255)
			}
		})
	}
}

func TestEncodeRecord_Opaque(t *testing.T) {
	rr := domain.ResourceRecord{
		Name:  domain.DomainName{Labels: []string{"host", "example"}},
		Type:  domain.RRTypeA,
		Class: domain.RRClassIN,
		TTL:   60,
		Data:  domain.Opaque{Type: domain.RRTypeA, Bytes: []byte{192, 0, 2, 1}},
	}
	encoded, err := EncodeRecord(rr)
	require.NoError(t, err)

	decoded, err := DecodeRecord(encoded)
	require.NoError(t, err)
	assert.Equal(t, rr.Name.String(), decoded.Name.String())
	assert.Equal(t, rr.Data, decoded.Data)
}

func TestEncodeRecord_Errors(t *testing.T) {
	name := domain.DomainName{Labels: []string{"a"}}
	tests := []struct {
		name string
		rr   domain.ResourceRecord
	}{
		{name: "missing data", rr: domain.ResourceRecord{Name: name, Type: domain.RRTypeTXT}},
		{name: "type mismatch", rr: domain.ResourceRecord{Name: name, Type: domain.RRTypeA, Data: domain.Text{Strings: [][]byte{{}}}}},
		{name: "empty text", rr: domain.ResourceRecord{Name: name, Type: domain.RRTypeTXT, Data: domain.Text{}}},
		{name: "oversized label", rr: domain.ResourceRecord{
			Name: domain.DomainName{Labels: []string{strings.Repeat("a", 64)}},
			Type: domain.RRTypeTXT, Data: domain.Text{Strings: [][]byte{{}}},
		}},
		{name: "oversized rdata", rr: domain.ResourceRecord{
			Name: name, Type: domain.RRTypeA,
			Data: domain.Opaque{Type: domain.RRTypeA, Bytes: make([]byte, 70000)},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := EncodeRecord(tt.rr)
			assert.Error(t, err)
		})
	}
}

func TestDecodeRecord_Malformed(t *testing.T) {
	valid, err := EncodeTextRecord("n.xtnx", "dnslink=/ipfs/QmTest", 3600)
	require.NoError(t, err)
	nameLen := 8

	withRdlength := func(n uint16) []byte {
		b := append([]byte(nil), valid...)
		binary.BigEndian.PutUint16(b[nameLen+8:], n)
		return b
	}

	tests := []struct {
		name  string
		input []byte
	}{
		{name: "empty", input: nil},
		{name: "label walks past end", input: []byte{9, 'a', 'b'}},
		{name: "missing name terminator", input: []byte{1, 'n', 4, 'x', 't', 'n', 'x'}},
		{name: "truncated header", input: valid[:nameLen+5]},
		{name: "rdlength too large", input: withRdlength(200)},
		{name: "rdlength too small", input: withRdlength(3)},
		{name: "extra trailing bytes", input: append(append([]byte(nil), valid...), 0)},
		{name: "character-string past rdata", input: func() []byte {
			b := append([]byte(nil), valid...)
			b[nameLen+10] = 0xff
			return b
		}()},
		{name: "txt without strings", input: func() []byte {
			b := append([]byte(nil), valid[:nameLen+10]...)
			binary.BigEndian.PutUint16(b[nameLen+8:], 0)
			return b
		}()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeRecord(tt.input)
			if !errors.Is(err, domain.ErrMalformedRecord) {
				t.Fatalf("expected ErrMalformedRecord, got %v", err)
			}
		})
	}
}
