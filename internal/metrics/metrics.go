package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ResolutionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "uomproxy_resolutions_total",
		Help: "Tile-to-region resolutions by strategy tier (low_zoom, coarse, dense, heuristic)",
	}, []string{"tier"})
	GeometryFeaturesLoaded = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "uomproxy_geometry_features_loaded",
		Help: "Region geometries loaded into the index at startup",
	})
	GeometryFeaturesSkipped = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "uomproxy_geometry_features_skipped_total",
		Help: "GeoJSON features skipped during geometry load",
	})
	UpstreamRequestsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "uomproxy_upstream_requests_total",
		Help: "Total GetMap requests issued to the upstream WMS server",
	})
	UpstreamFailuresTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "uomproxy_upstream_failures_total",
		Help: "Upstream GetMap requests that failed (transport error or non-200)",
	})
	UpstreamDurationMs = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "uomproxy_upstream_duration_ms",
		Help:    "Upstream GetMap duration in milliseconds",
		Buckets: []float64{10, 50, 100, 200, 500, 1000, 2000, 5000, 10000},
	})
	TilesServedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "uomproxy_tiles_served_total",
		Help: "Tiles served by outcome (ok, fallback)",
	}, []string{"outcome"})
)

func init() {
	prometheus.MustRegister(ResolutionsTotal)
	prometheus.MustRegister(GeometryFeaturesLoaded)
	prometheus.MustRegister(GeometryFeaturesSkipped)
	prometheus.MustRegister(UpstreamRequestsTotal)
	prometheus.MustRegister(UpstreamFailuresTotal)
	prometheus.MustRegister(UpstreamDurationMs)
	prometheus.MustRegister(TilesServedTotal)
}

// Handler returns the Prometheus scrape endpoint handler.
func Handler() http.Handler { return promhttp.Handler() }
