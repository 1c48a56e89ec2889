// Package metrics provides Prometheus metrics for observability.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "timetube"

var (
	// ResolutionsTotal tracks pipeline outcomes.
	// Labels:
	//   - outcome: fresh_hit, resolved, no_result, error
	ResolutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "resolutions_total",
			Help:      "Total number of slot resolution requests",
		},
		[]string{"outcome"},
	)

	// CacheOperationsTotal tracks hot-cache operations.
	// Labels:
	//   - operation: get, set, delete
	//   - status: hit, miss, success, error
	CacheOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_operations_total",
			Help:      "Total number of hot cache operations",
		},
		[]string{"operation", "status"},
	)

	// ProviderRequestsTotal tracks search provider calls.
	// Labels:
	//   - endpoint: search, videos
	//   - status: ok, quota, error
	ProviderRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_requests_total",
			Help:      "Total number of search provider requests",
		},
		[]string{"endpoint", "status"},
	)

	// ProviderFailoversTotal counts failovers to the secondary credential.
	ProviderFailoversTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_failovers_total",
			Help:      "Total number of failovers to the secondary API credential",
		},
	)

	// SlotEvictionsTotal counts capacity evictions from the slot store.
	SlotEvictionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "slot_evictions_total",
			Help:      "Total number of slots evicted to enforce capacity",
		},
	)

	// SingleflightRequestsTotal tracks singleflight behavior.
	// Labels:
	//   - result: initiated (new execution), shared (reused result)
	SingleflightRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "singleflight_requests_total",
			Help:      "Total number of singleflight requests",
		},
		[]string{"result"},
	)
)

// Resolution outcome constants.
const (
	ResolutionFreshHit = "fresh_hit"
	ResolutionResolved = "resolved"
	ResolutionNoResult = "no_result"
	ResolutionError    = "error"
)

// Cache operation status constants.
const (
	CacheStatusHit     = "hit"
	CacheStatusMiss    = "miss"
	CacheStatusSuccess = "success"
	CacheStatusError   = "error"
)

// Cache operation type constants.
const (
	CacheOpGet    = "get"
	CacheOpSet    = "set"
	CacheOpDelete = "delete"
)

// Provider request status constants.
const (
	ProviderStatusOK    = "ok"
	ProviderStatusQuota = "quota"
	ProviderStatusError = "error"
)

// Singleflight result constants.
const (
	SingleflightInitiated = "initiated"
	SingleflightShared    = "shared"
)
