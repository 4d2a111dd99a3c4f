// Package transport exposes the anchor registry to network clients. The
// service layer only sees domain types; request parsing and response encoding
// stay here.
package transport

import (
	"context"

	"github.com/haukened/rr-anchor/internal/dns/domain"
	"github.com/haukened/rr-anchor/internal/dns/repos/anchors"
	"github.com/haukened/rr-anchor/internal/dns/services/registry"
)

// ServerTransport is implemented by every transport.
type ServerTransport interface {
	// Start binds the listener and serves until Stop is called or ctx is done.
	Start(ctx context.Context) error

	// Stop gracefully shuts down the transport.
	Stop() error

	// Address returns the address the transport is bound to.
	Address() string
}

// Registry is the read-only surface of the registry served to clients.
type Registry interface {
	Owner() domain.Address
	Resolver(node domain.NameKey) domain.Address
	// IsLocked reports false for absent names. Its only domain error is
	// ErrInvalidName, for names that cannot be encoded and so have no key.
	IsLocked(name string) (bool, error)
	Describe(name string) (registry.NameInfo, error)
	DNSRecord(node, key domain.NameKey, rrType domain.RRType) ([]byte, error)
}

// StatsFunc reports repository statistics for the health endpoint.
type StatsFunc func() anchors.RepoStats

// TransportType names a transport protocol.
type TransportType string

const (
	// TransportHTTP is the JSON lookup API.
	TransportHTTP TransportType = "http"
)
