// Package registry implements the anchor registry: a per-name state machine
// that publishes dnslink TXT records under keccak name keys, guarded by a
// single owner and one-way locks.
package registry

import (
	"errors"
	"fmt"
	"sync"

	"github.com/haukened/rr-anchor/internal/dns/common/log"
	"github.com/haukened/rr-anchor/internal/dns/domain"
	"github.com/haukened/rr-anchor/internal/dns/gateways/wire"
)

// DNSLinkPrefix is prepended to every CID stored by SetIPFS.
const DNSLinkPrefix = "dnslink=/ipfs/"

// DefaultTTL is used when Options.TTL is zero.
const DefaultTTL uint32 = 3600

// ErrNoOwner is returned by New when neither the repository nor the options
// provide an owner.
var ErrNoOwner = errors.New("registry has no owner")

// Options configure a Registry.
type Options struct {
	// Deployer becomes the owner when the repository has none persisted.
	Deployer domain.Address
	// Address is the registry's own identity, returned by Resolver.
	Address domain.Address
	// TTL is written into every record built by SetIPFS.
	TTL    uint32
	Logger log.Logger
}

// Registry is the anchor state machine. One RWMutex guards the owner value and
// the repository: mutations hold it exclusively, queries share it.
type Registry struct {
	mu     sync.RWMutex
	repo   Repository
	owner  domain.Address
	self   domain.Address
	ttl    uint32
	logger log.Logger
}

// New loads the persisted owner or installs opts.Deployer as the first owner.
func New(repo Repository, opts Options) (*Registry, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	ttl := opts.TTL
	if ttl == 0 {
		ttl = DefaultTTL
	}

	owner, ok, err := repo.Owner()
	if err != nil {
		return nil, fmt.Errorf("load owner: %w", err)
	}
	if !ok {
		if opts.Deployer.IsZero() {
			return nil, ErrNoOwner
		}
		if err := repo.SaveOwner(opts.Deployer); err != nil {
			return nil, fmt.Errorf("install owner: %w", err)
		}
		owner = opts.Deployer
		logger.Info(map[string]any{"owner": owner.String()}, "installed initial registry owner")
	} else if !opts.Deployer.IsZero() && opts.Deployer != owner {
		logger.Warn(map[string]any{
			"configured": opts.Deployer.String(),
			"owner":      owner.String(),
		}, "configured owner ignored, store already has one")
	}

	return &Registry{
		repo:   repo,
		owner:  owner,
		self:   opts.Address,
		ttl:    ttl,
		logger: logger,
	}, nil
}

// SetIPFS publishes "dnslink=/ipfs/<cid>" as the TXT record of name. With
// lockAfter the record and the lock are written together.
func (r *Registry) SetIPFS(caller domain.Address, name, cid string, lockAfter bool) (err error) {
	defer func() { observeMutation("set_ipfs", err) }()

	r.mu.Lock()
	defer r.mu.Unlock()

	key, entry, err := r.mutable(caller, name)
	if err != nil {
		return err
	}
	rdata, err := wire.EncodeTextRecord(name, DNSLinkPrefix+cid, r.ttl)
	if err != nil {
		return err
	}
	next := domain.Entry{RData: rdata, Locked: lockAfter}
	if err := r.repo.Save(key, next); err != nil {
		return err
	}
	r.logger.Info(map[string]any{
		"name":     name,
		"key":      key.String(),
		"cid":      cid,
		"locked":   lockAfter,
		"previous": entry.State().String(),
	}, "ipfs record set")
	return nil
}

// ResetIPFS clears the record of name. The entry itself stays, so resetting
// an Unset name is an allowed no-op write.
func (r *Registry) ResetIPFS(caller domain.Address, name string) (err error) {
	defer func() { observeMutation("reset_ipfs", err) }()

	r.mu.Lock()
	defer r.mu.Unlock()

	key, entry, err := r.mutable(caller, name)
	if err != nil {
		return err
	}
	if err := r.repo.Save(key, domain.Entry{}); err != nil {
		return err
	}
	r.logger.Info(map[string]any{"name": name, "key": key.String(), "previous": entry.State().String()}, "ipfs record reset")
	return nil
}

// LockName makes name immutable. Locking an Unset name burns it: no record
// can ever be published for it.
//
// LockName is not idempotent: a locked name is terminal for every mutation,
// so locking it again fails with ErrLockedName rather than succeeding silently.
func (r *Registry) LockName(caller domain.Address, name string) (err error) {
	defer func() { observeMutation("lock_name", err) }()

	r.mu.Lock()
	defer r.mu.Unlock()

	key, entry, err := r.mutable(caller, name)
	if err != nil {
		return err
	}
	entry.Locked = true
	if err := r.repo.Save(key, entry); err != nil {
		return err
	}
	fields := map[string]any{"name": name, "key": key.String()}
	if !entry.HasRecord() {
		r.logger.Warn(fields, "locked name without a record")
	} else {
		r.logger.Info(fields, "name locked")
	}
	return nil
}

// SetOwner transfers ownership. Only the current owner may call it.
func (r *Registry) SetOwner(caller, newOwner domain.Address) (err error) {
	defer func() { observeMutation("set_owner", err) }()

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.checkOwner(caller); err != nil {
		return err
	}
	if err := r.repo.SaveOwner(newOwner); err != nil {
		return err
	}
	r.logger.Info(map[string]any{"from": r.owner.String(), "to": newOwner.String()}, "registry owner changed")
	r.owner = newOwner
	ownerChanges.Inc()
	return nil
}

// Owner returns the current owner.
func (r *Registry) Owner() domain.Address {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.owner
}

// Resolver returns the registry's own address for every node: this registry
// resolves every name it holds.
func (r *Registry) Resolver(domain.NameKey) domain.Address {
	return r.self
}

// IsLocked reports the lock flag of name; absent names are not locked.
// Names that cannot be encoded fail with ErrInvalidName.
func (r *Registry) IsLocked(name string) (bool, error) {
	key, err := wire.Namehash(name)
	if err != nil {
		return false, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, err := r.repo.Entry(key)
	if err != nil {
		return false, err
	}
	observeQuery("is_locked", entry.Locked)
	return entry.Locked, nil
}

// DNSRecord returns the stored record for key when rrType is TXT, otherwise
// an empty slice. The node is accepted for resolver-interface compatibility
// and does not partition storage. An error is only returned when the
// repository fails.
func (r *Registry) DNSRecord(_ domain.NameKey, key domain.NameKey, rrType domain.RRType) ([]byte, error) {
	if rrType != domain.RRTypeTXT {
		observeQuery("dns_record", false)
		return []byte{}, nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, err := r.repo.Entry(key)
	if err != nil {
		return nil, err
	}
	observeQuery("dns_record", entry.HasRecord())
	if !entry.HasRecord() {
		return []byte{}, nil
	}
	r.logger.Debug(map[string]any{"key": key.String()}, "dns record served")
	return append([]byte(nil), entry.RData...), nil
}

// mutable runs the checks shared by every name mutation in their required
// order: ownership, then name validity, then the lock. The caller holds r.mu.
func (r *Registry) mutable(caller domain.Address, name string) (domain.NameKey, domain.Entry, error) {
	if err := r.checkOwner(caller); err != nil {
		return domain.NameKey{}, domain.Entry{}, err
	}
	key, err := wire.Namehash(name)
	if err != nil {
		return domain.NameKey{}, domain.Entry{}, err
	}
	entry, err := r.repo.Entry(key)
	if err != nil {
		return domain.NameKey{}, domain.Entry{}, err
	}
	if entry.Locked {
		r.logger.Warn(map[string]any{"name": name, "key": key.String()}, "mutation of locked name refused")
		return domain.NameKey{}, domain.Entry{}, fmt.Errorf("%w: %s", domain.ErrLockedName, name)
	}
	return key, entry, nil
}

func (r *Registry) checkOwner(caller domain.Address) error {
	if caller != r.owner {
		r.logger.Warn(map[string]any{"caller": caller.String()}, "caller is not the registry owner")
		return fmt.Errorf("%w: %s", domain.ErrNotOwner, caller)
	}
	return nil
}
