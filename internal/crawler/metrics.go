package crawler

import "github.com/prometheus/client_golang/prometheus"

// Metrics bundles Prometheus collectors for the crawl.
type Metrics struct {
	Registry        *prometheus.Registry
	RequestsTotal   *prometheus.CounterVec
	AccountsScored  prometheus.Counter
	CandidatesTotal prometheus.Counter
	SeedsAbandoned  prometheus.Counter
	ErrorsTotal     *prometheus.CounterVec
}

// NewMetrics constructs and registers all metrics on a dedicated registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	requests := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "botscan_requests_total",
			Help: "Total graph API requests issued by the crawl.",
		},
		[]string{"operation"},
	)
	accountsScored := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "botscan_accounts_scored_total",
			Help: "Total number of accounts passed through the scorer.",
		},
	)
	candidates := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "botscan_candidates_total",
			Help: "Total number of accounts accepted as bot candidates.",
		},
	)
	seedsAbandoned := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "botscan_seeds_abandoned_total",
			Help: "Total number of seeds abandoned after fetch failures.",
		},
	)
	errorsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "botscan_errors_total",
			Help: "Total number of crawl errors by type.",
		},
		[]string{"error_type"},
	)

	registry.MustRegister(requests, accountsScored, candidates, seedsAbandoned, errorsTotal)

	return &Metrics{
		Registry:        registry,
		RequestsTotal:   requests,
		AccountsScored:  accountsScored,
		CandidatesTotal: candidates,
		SeedsAbandoned:  seedsAbandoned,
		ErrorsTotal:     errorsTotal,
	}
}

// IncRequest increments the request counter for an API operation.
func (m *Metrics) IncRequest(operation string) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(operation).Inc()
}

// IncScored increments the scored accounts counter.
func (m *Metrics) IncScored() {
	if m == nil {
		return
	}
	m.AccountsScored.Inc()
}

// IncCandidate increments the accepted candidates counter.
func (m *Metrics) IncCandidate() {
	if m == nil {
		return
	}
	m.CandidatesTotal.Inc()
}

// IncSeedAbandoned increments the abandoned seeds counter.
func (m *Metrics) IncSeedAbandoned() {
	if m == nil {
		return
	}
	m.SeedsAbandoned.Inc()
}

// IncError increments the errors counter for a type label.
func (m *Metrics) IncError(errorType string) {
	if m == nil {
		return
	}
	m.ErrorsTotal.WithLabelValues(errorType).Inc()
}
