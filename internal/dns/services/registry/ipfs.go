package registry

import (
	"strings"

	"github.com/haukened/rr-anchor/internal/dns/domain"
	"github.com/haukened/rr-anchor/internal/dns/gateways/wire"
)

// NameInfo summarizes one name for read-only callers.
type NameInfo struct {
	Name   string
	Key    domain.NameKey
	State  domain.EntryState
	Locked bool
	CID    string // empty unless a dnslink record is stored
}

// LookupIPFS returns the CID published for name. found is false when no
// record is stored or the stored record is not a dnslink. Like IsLocked, it
// fails with ErrInvalidName only for names that cannot be encoded.
func (r *Registry) LookupIPFS(name string) (cid string, found bool, err error) {
	key, err := wire.Namehash(name)
	if err != nil {
		return "", false, err
	}
	rdata, err := r.DNSRecord(domain.NameKey{}, key, domain.RRTypeTXT)
	if err != nil {
		return "", false, err
	}
	cid, found, err = CIDFromRecord(rdata)
	observeQuery("lookup_ipfs", found)
	return cid, found, err
}

// Describe reports the state of name and its CID, if any.
func (r *Registry) Describe(name string) (NameInfo, error) {
	canonical, err := wire.ParseName(name)
	if err != nil {
		return NameInfo{}, err
	}
	key, err := wire.Namehash(name)
	if err != nil {
		return NameInfo{}, err
	}

	r.mu.RLock()
	entry, err := r.repo.Entry(key)
	r.mu.RUnlock()
	if err != nil {
		return NameInfo{}, err
	}

	info := NameInfo{Name: canonical.String(), Key: key, State: entry.State(), Locked: entry.Locked}
	if entry.HasRecord() {
		// Records are written by SetIPFS only; a decode failure means no CID.
		info.CID, _, _ = CIDFromRecord(entry.RData)
	}
	return info, nil
}

// CIDFromRecord decodes a stored TXT record and strips the dnslink prefix.
// Character-strings are joined first, so CIDs longer than one string survive.
// An empty record is not found; a malformed one is an error.
func CIDFromRecord(rdata []byte) (string, bool, error) {
	if len(rdata) == 0 {
		return "", false, nil
	}
	rr, err := wire.DecodeRecord(rdata)
	if err != nil {
		return "", false, err
	}
	txt, ok := rr.Text()
	if !ok {
		return "", false, nil
	}
	payload := strings.Join(txt.Values(), "")
	cid, ok := strings.CutPrefix(payload, DNSLinkPrefix)
	if !ok {
		return "", false, nil
	}
	return cid, true, nil
}
