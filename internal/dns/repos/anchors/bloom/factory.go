package bloom

import (
	bitsbloom "github.com/bits-and-blooms/bloom/v3"

	"github.com/haukened/rr-anchor/internal/dns/repos/anchors"
)

// factory implements anchors.BloomFactory using internal sizing formulas.
type factory struct {
	sizer anchors.BloomSizer
}

// NewFactory returns a BloomFactory that sizes filters from capacity and FP rate.
func NewFactory() anchors.BloomFactory { return factory{sizer: NewSizer()} }

// New constructs a filter sized for the given capacity and target false-positive rate.
func (f factory) New(capacity uint64, fpRate float64) anchors.BloomFilter {
	m, k := f.sizer.Size(capacity, fpRate)
	return &filter{bf: bitsbloom.New(uint(m), uint(k))}
}
