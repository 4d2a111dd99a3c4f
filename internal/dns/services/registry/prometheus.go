package registry

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/haukened/rr-anchor/internal/dns/domain"
)

// Metrics for monitoring service.
var (
	mutations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Help:      "Registry mutations by operation and result",
			Name:      "mutations_total",
			Namespace: "anchor",
			Subsystem: "registry",
		},
		[]string{"operation", "result"},
	)
	queries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Help:      "Registry queries by operation and whether data was found",
			Name:      "queries_total",
			Namespace: "anchor",
			Subsystem: "registry",
		},
		[]string{"operation", "result"},
	)
	ownerChanges = prometheus.NewCounter(
		prometheus.CounterOpts{
			Help:      "Number of owner transfers",
			Name:      "owner_changes_total",
			Namespace: "anchor",
			Subsystem: "registry",
		},
	)
)

func init() {
	prometheus.MustRegister(
		mutations,
		queries,
		ownerChanges,
	)
}

// mutationResult maps an operation outcome onto a bounded label value.
func mutationResult(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrNotOwner):
		return "not_owner"
	case errors.Is(err, domain.ErrLockedName):
		return "locked"
	case errors.Is(err, domain.ErrInvalidName):
		return "invalid_name"
	default:
		return "error"
	}
}

func observeMutation(op string, err error) {
	mutations.WithLabelValues(op, mutationResult(err)).Inc()
}

func observeQuery(op string, found bool) {
	result := "miss"
	if found {
		result = "hit"
	}
	queries.WithLabelValues(op, result).Inc()
}
