package domain

import (
	"bytes"
	"testing"
)

func TestEntry_State(t *testing.T) {
	tests := []struct {
		name  string
		entry Entry
		want  EntryState
	}{
		{name: "zero value", entry: Entry{}, want: StateUnset},
		{name: "empty rdata", entry: Entry{RData: []byte{}}, want: StateUnset},
		{name: "record", entry: Entry{RData: []byte{1}}, want: StateSet},
		{name: "locked empty", entry: Entry{Locked: true}, want: StateLocked},
		{name: "locked with record", entry: Entry{RData: []byte{1}, Locked: true}, want: StateLocked},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.entry.State(); got != tt.want {
				t.Errorf("State() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEntry_BinaryRoundTrip(t *testing.T) {
	for _, e := range []Entry{
		{},
		{Locked: true},
		{RData: []byte{0x01, 0x6e, 0x00}},
		{RData: []byte{0x01, 0x6e, 0x00}, Locked: true},
	} {
		b, err := e.MarshalBinary()
		if err != nil {
			t.Fatalf("MarshalBinary: %v", err)
		}
		var got Entry
		if err := got.UnmarshalBinary(b); err != nil {
			t.Fatalf("UnmarshalBinary(%x): %v", b, err)
		}
		if got.Locked != e.Locked || !bytes.Equal(got.RData, e.RData) {
			t.Errorf("round trip mismatch: got %+v want %+v", got, e)
		}
	}
}

func TestEntry_UnmarshalBinaryErrors(t *testing.T) {
	cases := map[string][]byte{
		"empty":                nil,
		"unknown flag":         {0x80},
		"record flag, no data": {entryFlagHasRecord},
		"data, no record flag": {0x00, 0x01},
	}
	for name, b := range cases {
		t.Run(name, func(t *testing.T) {
			var e Entry
			if err := e.UnmarshalBinary(b); err == nil {
				t.Errorf("expected error for %x", b)
			}
		})
	}
}

func TestEntry_CloneDoesNotAlias(t *testing.T) {
	orig := Entry{RData: []byte{1, 2, 3}}
	c := orig.Clone()
	c.RData[0] = 9
	if orig.RData[0] != 1 {
		t.Errorf("Clone shares memory with the original")
	}
	if (Entry{}).Clone().RData != nil {
		t.Errorf("Clone of absent rdata should stay nil")
	}
}

func TestEntryState_String(t *testing.T) {
	if StateLocked.String() != "locked" || StateSet.String() != "set" || StateUnset.String() != "unset" {
		t.Errorf("unexpected state names")
	}
	if EntryState(9).String() != "state(9)" {
		t.Errorf("unexpected fallback name %q", EntryState(9).String())
	}
}
