package application

import (
	"context"

	"github.com/ericfisherdev/checkoutrelay/internal/domain/port/driven"
)

// HealthReport is the readiness view served by the health endpoint.
type HealthReport struct {
	Healthy         bool
	StoreErr        error
	CachedClients   int
	EventLogEntries int
}

// HealthService reports whether the relay can serve tenant requests. It
// depends only on the credential store port and in-memory state.
type HealthService struct {
	store  driven.CredentialStore
	cache  *ClientCache
	events *EventLog
}

// NewHealthService creates a new HealthService with the required dependencies.
func NewHealthService(store driven.CredentialStore, cache *ClientCache, events *EventLog) *HealthService {
	return &HealthService{
		store:  store,
		cache:  cache,
		events: events,
	}
}

// Check pings the credential store. The relay is unhealthy only when the
// store is unreachable; an empty cache or event log is normal after startup.
func (s *HealthService) Check(ctx context.Context) HealthReport {
	report := HealthReport{
		CachedClients:   s.cache.Len(),
		EventLogEntries: s.events.Len(),
	}

	if err := s.store.Ping(ctx); err != nil {
		report.StoreErr = err
		return report
	}

	report.Healthy = true
	return report
}
