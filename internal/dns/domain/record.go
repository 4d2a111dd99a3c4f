package domain

import "fmt"

// ResourceData is the type-specific payload of a resource record.
type ResourceData interface {
	// RRType reports the record type the payload belongs to.
	RRType() RRType
}

// Text is TXT rdata: an ordered list of character-strings.
type Text struct {
	Strings [][]byte
}

func (Text) RRType() RRType { return RRTypeTXT }

// Values returns the character-strings as Go strings.
func (t Text) Values() []string {
	out := make([]string, len(t.Strings))
	for i, s := range t.Strings {
		out[i] = string(s)
	}
	return out
}

// Opaque carries rdata of a type the codec does not interpret.
type Opaque struct {
	Type  RRType
	Bytes []byte
}

func (o Opaque) RRType() RRType { return o.Type }

// ResourceRecord is the structured form of one DNS answer.
type ResourceRecord struct {
	Name  DomainName
	Type  RRType
	Class RRClass
	TTL   uint32
	Data  ResourceData
}

// Validate checks that the record is internally consistent.
func (rr ResourceRecord) Validate() error {
	if len(rr.Name.Labels) == 0 {
		return fmt.Errorf("record name must not be empty")
	}
	if rr.Data == nil {
		return fmt.Errorf("record data must be set")
	}
	if rr.Data.RRType() != rr.Type {
		return fmt.Errorf("record type %s does not match data type %s", rr.Type, rr.Data.RRType())
	}
	return nil
}

// Text returns the TXT payload when the record carries one.
func (rr ResourceRecord) Text() (Text, bool) {
	t, ok := rr.Data.(Text)
	return t, ok
}
