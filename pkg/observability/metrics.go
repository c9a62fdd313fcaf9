// Package observability déclare les métriques Prometheus du service KPI.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//nolint:gochecknoglobals // Prometheus metrics must be global for registration
var (
	// ComputationsTotal compte les calculs du moteur par type (snapshot, breakdown, buckets, trend, evaluation).
	ComputationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kpi_computations_total",
			Help: "Total number of KPI computations",
		},
		[]string{"kind"},
	)

	// ComputationDuration mesure la durée des calculs en secondes.
	ComputationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "kpi_computation_duration_seconds",
			Help:    "KPI computation duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8), // 0.1ms to ~1.6s
		},
		[]string{"kind"},
	)

	// CacheRequestsTotal compte les consultations du cache par résultat (hit, miss, error).
	CacheRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kpi_cache_requests_total",
			Help: "Snapshot cache lookups by result",
		},
		[]string{"result"},
	)

	// RecordsLoaded donne le nombre de lignes chargées.
	RecordsLoaded = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "kpi_records_loaded",
			Help: "Number of records held by the record store",
		},
	)

	// RecordsRejected donne le nombre de lignes rejetées à l'ingestion.
	RecordsRejected = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "kpi_records_rejected",
			Help: "Number of rows rejected at ingestion",
		},
	)

	// HTTPRequestsTotal compte les requêtes API par motif de route et code de statut.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kpi_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"route", "code"},
	)

	// HTTPRequestDuration mesure la latence de l'API par motif de route.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "kpi_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)
)
