package transport

import (
	"fmt"

	"github.com/haukened/rr-anchor/internal/dns/common/log"
)

// NewTransport creates a transport of the given type.
func NewTransport(transportType TransportType, addr string, reg Registry, stats StatsFunc, logger log.Logger) (ServerTransport, error) {
	switch transportType {
	case TransportHTTP:
		return NewHTTPTransport(addr, reg, stats, logger), nil
	default:
		return nil, fmt.Errorf("unsupported transport type: %s", transportType)
	}
}

// GetSupportedTransports returns a list of currently supported transport types.
func GetSupportedTransports() []TransportType {
	return []TransportType{TransportHTTP}
}

// IsTransportSupported checks if a given transport type is currently supported.
func IsTransportSupported(transportType TransportType) bool {
	for _, t := range GetSupportedTransports() {
		if t == transportType {
			return true
		}
	}
	return false
}
