package wire

import (
	"golang.org/x/crypto/sha3"

	"github.com/haukened/rr-anchor/internal/dns/domain"
)

// Namehash returns keccak256(EncodeName(name)).
//
// This is a flat digest of the whole encoded name, not the recursive per-label
// namehash used by ENS. Keys already stored under the flat scheme depend on it.
func Namehash(name string) (domain.NameKey, error) {
	encoded, err := EncodeName(name)
	if err != nil {
		return domain.NameKey{}, err
	}
	return HashEncodedName(encoded), nil
}

// HashEncodedName digests an already encoded name.
func HashEncodedName(encoded domain.EncodedName) domain.NameKey {
	var key domain.NameKey
	h := sha3.NewLegacyKeccak256()
	h.Write(encoded)
	h.Sum(key[:0])
	return key
}
