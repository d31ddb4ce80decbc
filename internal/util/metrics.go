package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	BundlesSubmittedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bundles_submitted_total",
		Help: "Total number of bundle submissions received",
	})

	BundlesAddedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bundles_added_total",
		Help: "Total number of bundles fully added to a cart",
	})

	BundlesRejectedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bundles_rejected_total",
		Help: "Total number of rejected bundle submissions",
	}, []string{"code"})

	CartRollbacksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cart_rollbacks_total",
		Help: "Total number of cart rollbacks after a failed insertion",
	})

	CartInsertionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cart_insertions_total",
		Help: "Total number of successful cart insertions",
	})

	HydrationLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "bundle_hydration_latency_seconds",
		Help:    "Latency of catalog hydration per submission",
		Buckets: prometheus.DefBuckets,
	})

	CatalogPayloadLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "catalog_payload_latency_seconds",
		Help:    "Latency of catalog payload assembly",
		Buckets: prometheus.DefBuckets,
	})

	CatalogCacheHitsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_cache_total",
		Help: "Catalog payload cache lookups",
	}, []string{"result"})

	SessionTokenRejectionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "session_token_rejections_total",
		Help: "Total number of submissions rejected for a bad session token",
	})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)
