package domain

import "errors"

// Codec errors. Both are caller input errors and are surfaced verbatim.
var (
	// ErrInvalidName is returned when a name has an empty label, a label longer
	// than 63 bytes, or an encoded form longer than 255 bytes.
	ErrInvalidName = errors.New("invalid domain name")

	// ErrMalformedRecord is returned when wire bytes do not follow the resource
	// record grammar. Decoders never return a partial record alongside it.
	ErrMalformedRecord = errors.New("malformed resource record")
)

// Registry errors.
var (
	// ErrNotOwner is returned when a mutating call is made by anyone but the owner.
	ErrNotOwner = errors.New("caller is not the owner")

	// ErrLockedName is returned when a mutating call targets a locked name.
	ErrLockedName = errors.New("name is locked")
)
