package application

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	resolveTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "checkoutrelay_tenant_resolve_total",
			Help: "Tenant resolutions by outcome (hit, miss, unauthorized, error).",
		},
		[]string{"outcome"},
	)

	credentialMutations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "checkoutrelay_credential_mutations_total",
			Help: "Credential store mutations by operation and result.",
		},
		[]string{"op", "result"},
	)

	cachedClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "checkoutrelay_cached_clients",
		Help: "Remote handles currently held in the client cache.",
	})
)
