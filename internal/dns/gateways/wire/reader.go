package wire

import (
	"encoding/binary"
	"fmt"

	"github.com/haukened/rr-anchor/internal/dns/domain"
)

// reader is a cursor over an immutable wire buffer. Every read is bounds
// checked and fails with ErrMalformedRecord instead of indexing past the end.
type reader struct {
	buf []byte
	off int
}

func newReader(b []byte) *reader {
	return &reader{buf: b}
}

func (r *reader) remaining() int {
	return len(r.buf) - r.off
}

func (r *reader) truncated(want int) error {
	return fmt.Errorf("%w: need %d bytes at offset %d, %d remain",
		domain.ErrMalformedRecord, want, r.off, r.remaining())
}

func (r *reader) u8() (byte, error) {
	if r.remaining() < 1 {
		return 0, r.truncated(1)
	}
	v := r.buf[r.off]
	r.off++
	return v, nil
}

func (r *reader) u16() (uint16, error) {
	if r.remaining() < 2 {
		return 0, r.truncated(2)
	}
	v := binary.BigEndian.Uint16(r.buf[r.off:])
	r.off += 2
	return v, nil
}

func (r *reader) u32() (uint32, error) {
	if r.remaining() < 4 {
		return 0, r.truncated(4)
	}
	v := binary.BigEndian.Uint32(r.buf[r.off:])
	r.off += 4
	return v, nil
}

// next returns the following n bytes without copying them.
func (r *reader) next(n int) ([]byte, error) {
	if n < 0 || r.remaining() < n {
		return nil, r.truncated(n)
	}
	b := r.buf[r.off : r.off+n]
	r.off += n
	return b, nil
}
