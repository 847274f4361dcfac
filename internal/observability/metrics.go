package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "emergency_dashboard"

// Metrics holds the Prometheus counters, histograms, and gauges for the dashboard service.
type Metrics struct {
	// Report store metrics.
	Reports             *prometheus.GaugeVec   // labels: status
	StatusUpdates       *prometheus.CounterVec // labels: outcome={updated,unchanged,not_found,invalid,publish_error}
	BackwardTransitions prometheus.Counter

	// Ingestion metrics.
	ReportsIngested prometheus.Counter
	IngestRejected  prometheus.Counter
	IngestRunning   prometheus.Gauge

	// Geocoding metrics.
	GeocodeRequests    *prometheus.CounterVec   // labels: provider, outcome={success,error,empty}
	GeocodeCache       *prometheus.CounterVec   // labels: result={hit,miss}
	GeocodeAPIDuration *prometheus.HistogramVec // labels: provider
	LocationsResolved  *prometheus.CounterVec   // labels: source={address,display_name,coordinates}
	GeocodeEnabled     prometheus.Gauge

	// Session metrics.
	SessionsActive     prometheus.Gauge
	Refreshes          *prometheus.CounterVec // labels: outcome={ok,error,skipped}
	StaleLocationsDrop prometheus.Counter
}

// NewMetrics creates and registers all dashboard metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.Reports,
		m.StatusUpdates,
		m.BackwardTransitions,
		m.ReportsIngested,
		m.IngestRejected,
		m.IngestRunning,
		m.GeocodeRequests,
		m.GeocodeCache,
		m.GeocodeAPIDuration,
		m.LocationsResolved,
		m.GeocodeEnabled,
		m.SessionsActive,
		m.Refreshes,
		m.StaleLocationsDrop,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		Reports: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "reports",
			Help:      "Reports currently held by the store, by status.",
		}, []string{"status"}),
		StatusUpdates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "status_updates_total",
			Help:      "Status update requests by outcome.",
		}, []string{"outcome"}),
		BackwardTransitions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "backward_transitions_total",
			Help:      "Status updates that moved a report against the lifecycle order.",
		}),
		ReportsIngested: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reports_ingested_total",
			Help:      "Reports added from the ingestion topic.",
		}),
		IngestRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ingest_rejected_total",
			Help:      "Ingested messages rejected as invalid reports.",
		}),
		IngestRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "ingest_running",
			Help:      "1 when the ingestion loop is active, 0 otherwise.",
		}),
		GeocodeRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "geocode_requests_total",
			Help:      "Reverse geocoding provider requests by provider and outcome.",
		}, []string{"provider", "outcome"}),
		GeocodeCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "geocode_cache_total",
			Help:      "Geocoding cache lookups by result.",
		}, []string{"result"}),
		GeocodeAPIDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "geocode_api_duration_seconds",
			Help:      "Reverse geocoding provider request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"provider"}),
		LocationsResolved: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "locations_resolved_total",
			Help:      "Resolved report locations by the fallback step that produced them.",
		}, []string{"source"}),
		GeocodeEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "geocode_enabled",
			Help:      "1 when reverse geocoding is enabled, 0 otherwise.",
		}),
		SessionsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sessions_active",
			Help:      "Dashboard sessions currently open.",
		}),
		Refreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "board_refreshes_total",
			Help:      "Session board refreshes by outcome.",
		}, []string{"outcome"}),
		StaleLocationsDrop: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stale_locations_discarded_total",
			Help:      "Location resolutions discarded because the session navigated away.",
		}),
	}
}
