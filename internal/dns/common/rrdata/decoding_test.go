package rrdata

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haukened/rr-anchor/internal/dns/domain"
)

func TestDecode_TXT(t *testing.T) {
	data, err := Decode(domain.RRTypeTXT, []byte{2, 'h', 'i'})
	require.NoError(t, err)
	txt, ok := data.(domain.Text)
	require.True(t, ok)
	assert.Equal(t, []string{"hi"}, txt.Values())
}

func TestDecode_OpaqueForOtherTypes(t *testing.T) {
	raw := []byte{127, 0, 0, 1}
	data, err := Decode(domain.RRTypeA, raw)
	require.NoError(t, err)
	op, ok := data.(domain.Opaque)
	require.True(t, ok)
	assert.Equal(t, domain.RRTypeA, op.Type)
	assert.True(t, bytes.Equal(raw, op.Bytes))
}

func TestEncode_Dispatch(t *testing.T) {
	b, err := Encode(domain.Text{Strings: [][]byte{[]byte("ok")}})
	require.NoError(t, err)
	assert.Equal(t, []byte{2, 'o', 'k'}, b)

	b, err = Encode(domain.Opaque{Type: domain.RRTypeA, Bytes: []byte{1, 2, 3, 4}})
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3, 4}, b)

	_, err = Encode(nil)
	assert.Error(t, err)
}
