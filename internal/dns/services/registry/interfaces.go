package registry

import "github.com/haukened/rr-anchor/internal/dns/domain"

// Repository is the persistence the registry needs. It is satisfied by
// *anchors.Repository.
type Repository interface {
	Entry(key domain.NameKey) (domain.Entry, error)
	Save(key domain.NameKey, e domain.Entry) error
	Owner() (domain.Address, bool, error)
	SaveOwner(owner domain.Address) error
}
