package wire

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/haukened/rr-anchor/internal/dns/domain"
)

func TestEncodeName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []byte
		wantErr error
	}{
		{name: "two labels", input: "n.xtnx", want: []byte{1, 'n', 4, 'x', 't', 'n', 'x', 0}},
		{name: "trailing dot", input: "n.xtnx.", want: []byte{1, 'n', 4, 'x', 't', 'n', 'x', 0}},
		{name: "mixed case folded", input: "Foo.BAR", want: []byte{3, 'f', 'o', 'o', 3, 'b', 'a', 'r', 0}},
		{name: "single label", input: "noxturnix", want: append(append([]byte{9}, "noxturnix"...), 0)},
		{name: "empty string", input: "", wantErr: domain.ErrInvalidName},
		{name: "root only", input: ".", wantErr: domain.ErrInvalidName},
		{name: "empty middle label", input: "a..b", wantErr: domain.ErrInvalidName},
		{name: "leading dot", input: ".a", wantErr: domain.ErrInvalidName},
		{name: "double trailing dot", input: "a..", wantErr: domain.ErrInvalidName},
		{name: "label too long", input: strings.Repeat("a", 64) + ".com", wantErr: domain.ErrInvalidName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EncodeName(tt.input)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !bytes.Equal(got, tt.want) {
				t.Errorf("EncodeName(%q) = %v, want %v", tt.input, []byte(got), tt.want)
			}
		})
	}
}

func TestEncodeName_Limits(t *testing.T) {
	label63 := strings.Repeat("a", 63)
	if _, err := EncodeName(label63 + ".com"); err != nil {
		t.Fatalf("63 byte label should be accepted: %v", err)
	}

	// four 63-byte labels encode to 4*64+1 = 257 bytes
	tooLong := strings.Join([]string{label63, label63, label63, label63}, ".")
	if _, err := EncodeName(tooLong); !errors.Is(err, domain.ErrInvalidName) {
		t.Fatalf("expected ErrInvalidName for 257 byte name, got %v", err)
	}

	// three 63-byte labels plus a 61-byte label encode to exactly 255 bytes
	exact := strings.Join([]string{label63, label63, label63, strings.Repeat("b", 61)}, ".")
	encoded, err := EncodeName(exact)
	if err != nil {
		t.Fatalf("255 byte name should be accepted: %v", err)
	}
	if len(encoded) != domain.MaxNameLen {
		t.Errorf("expected %d bytes, got %d", domain.MaxNameLen, len(encoded))
	}
}

func TestDecodeName_RoundTrip(t *testing.T) {
	inputs := []string{"n.xtnx", "Foo.Bar.", "a.b.c.d.e", "xn--bcher-kva.example", strings.Repeat("z", 63)}
	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			encoded, err := EncodeName(input)
			if err != nil {
				t.Fatalf("encode: %v", err)
			}
			decoded, err := DecodeName(encoded)
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			want, _ := ParseName(input)
			if !decoded.Equal(want) {
				t.Errorf("round trip of %q gave %q", input, decoded)
			}
			if !strings.EqualFold(decoded.String(), strings.TrimSuffix(input, ".")+".") {
				t.Errorf("unexpected presentation form %q", decoded.String())
			}
		})
	}
}

func TestDecodeName_Malformed(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
	}{
		{name: "empty buffer", input: nil},
		{name: "missing terminator", input: []byte{1, 'n'}},
		{name: "label past end", input: []byte{5, 'a', 'b', 0}},
		{name: "compression pointer", input: []byte{0xC0, 0x0C}},
		{name: "root only", input: []byte{0}},
		{name: "trailing garbage", input: []byte{1, 'a', 0, 0xff}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeName(tt.input)
			if !errors.Is(err, domain.ErrMalformedRecord) {
				t.Fatalf("expected ErrMalformedRecord, got %v", err)
			}
		})
	}
}

func TestNamehash(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{input: "n.xtnx", want: "0x5636014414b279e0c1b723e5367ed758f6cd7b4208251d7b5c494e8f6cb78cea"},
		{input: "foo.bar", want: "0x77e5c5b398d8feb35dbf7168ea4287d39cdd7d750286160ef563b9bbc5bce314"},
		{input: "example.eth", want: "0x845b5fa2b6251d3b18c703e099414f826bc7067a88590e537b17b4099d724066"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := Namehash(tt.input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.String() != tt.want {
				t.Errorf("Namehash(%q) = %s, want %s", tt.input, got, tt.want)
			}
		})
	}
}

func TestNamehash_Deterministic(t *testing.T) {
	a, err := Namehash("Foo.Bar")
	if err != nil {
		t.Fatal(err)
	}
	b, err := Namehash("foo.bar.")
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Errorf("expected equal keys, got %s and %s", a, b)
	}

	c, _ := Namehash("foo.baz")
	if a == c {
		t.Error("distinct names should not collide")
	}
}

func TestNamehash_InvalidName(t *testing.T) {
	if _, err := Namehash(""); !errors.Is(err, domain.ErrInvalidName) {
		t.Fatalf("expected ErrInvalidName, got %v", err)
	}
}

func TestHashEncodedName_Empty(t *testing.T) {
	got := HashEncodedName(nil)
	if got.String() != "0xc5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470" {
		t.Errorf("unexpected keccak of empty input: %s", got)
	}
}
