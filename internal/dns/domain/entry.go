package domain

import "fmt"

// EntryState is the lifecycle state of a name in the registry.
type EntryState uint8

const (
	StateUnset EntryState = iota
	StateSet
	StateLocked
)

func (s EntryState) String() string {
	switch s {
	case StateUnset:
		return "unset"
	case StateSet:
		return "set"
	case StateLocked:
		return "locked"
	default:
		return fmt.Sprintf("state(%d)", uint8(s))
	}
}

const (
	entryFlagLocked    byte = 1 << 0
	entryFlagHasRecord byte = 1 << 1
)

// Entry is the per-name registry state. The zero value is an absent entry.
// RData holds the full wire-format TXT record published for the name.
type Entry struct {
	RData  []byte
	Locked bool
}

// HasRecord reports whether a record is stored.
func (e Entry) HasRecord() bool {
	return len(e.RData) > 0
}

// State maps the entry onto the Unset/Set/Locked state machine. A locked entry
// is Locked whether or not it carries a record.
func (e Entry) State() EntryState {
	switch {
	case e.Locked:
		return StateLocked
	case e.HasRecord():
		return StateSet
	default:
		return StateUnset
	}
}

// Clone returns a copy that shares no memory with e.
func (e Entry) Clone() Entry {
	out := Entry{Locked: e.Locked}
	if e.RData != nil {
		out.RData = append([]byte(nil), e.RData...)
	}
	return out
}

// MarshalBinary encodes the entry as one flag byte followed by the record bytes.
func (e Entry) MarshalBinary() ([]byte, error) {
	var flags byte
	if e.Locked {
		flags |= entryFlagLocked
	}
	if e.HasRecord() {
		flags |= entryFlagHasRecord
	}
	out := make([]byte, 0, 1+len(e.RData))
	out = append(out, flags)
	return append(out, e.RData...), nil
}

// UnmarshalBinary decodes the form produced by MarshalBinary.
func (e *Entry) UnmarshalBinary(b []byte) error {
	if len(b) == 0 {
		return fmt.Errorf("entry encoding is empty")
	}
	flags := b[0]
	if flags&^(entryFlagLocked|entryFlagHasRecord) != 0 {
		return fmt.Errorf("unknown entry flags 0x%02x", flags)
	}
	hasRecord := flags&entryFlagHasRecord != 0
	if hasRecord != (len(b) > 1) {
		return fmt.Errorf("entry record flag does not match payload length %d", len(b)-1)
	}
	e.Locked = flags&entryFlagLocked != 0
	e.RData = nil
	if hasRecord {
		e.RData = append([]byte(nil), b[1:]...)
	}
	return nil
}
