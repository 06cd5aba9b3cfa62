package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "geopoint",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests processed",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "geopoint",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	}, []string{"method", "path"})

	// Pipeline metrics
	StageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "geopoint",
		Subsystem: "pipeline",
		Name:      "stage_duration_seconds",
		Help:      "Duration of each pipeline stage",
		Buckets:   []float64{0.5, 1, 5, 15, 30, 60, 120, 300, 600},
	}, []string{"stage"})

	StageFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "geopoint",
		Subsystem: "pipeline",
		Name:      "stage_failures_total",
		Help:      "Total fatal stage failures",
	}, []string{"stage"})

	FetchAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "geopoint",
		Subsystem: "pipeline",
		Name:      "fetch_attempts_total",
		Help:      "Download attempts by source and outcome",
	}, []string{"source", "outcome"})

	FetchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "geopoint",
		Subsystem: "pipeline",
		Name:      "fetch_duration_seconds",
		Help:      "Duration of individual download attempts",
		Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
	}, []string{"source"})

	FeaturesImported = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "geopoint",
		Subsystem: "pipeline",
		Name:      "features_imported_total",
		Help:      "Features written per entity type",
	}, []string{"entity"})

	FeaturesSkipped = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "geopoint",
		Subsystem: "pipeline",
		Name:      "features_skipped_total",
		Help:      "Features skipped for missing required attributes",
	}, []string{"entity"})

	RegionsBackfilled = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "geopoint",
		Subsystem: "pipeline",
		Name:      "regions_backfilled_total",
		Help:      "Cities assigned a region by the containment backfill",
	})

	TranslitFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "geopoint",
		Subsystem: "pipeline",
		Name:      "translit_failures_total",
		Help:      "Names whose transliteration returned an empty result",
	}, []string{"entity"})

	// Read-path metrics
	ResolveRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "geopoint",
		Subsystem: "resolve",
		Name:      "requests_total",
		Help:      "Point resolutions by cache outcome",
	}, []string{"cache"})

	// Database pool metrics
	DBPoolConnsOpen = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "geopoint",
		Subsystem: "db",
		Name:      "pool_conns_open",
		Help:      "Total connections open in the database pool",
	})

	DBPoolConnsAcquired = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "geopoint",
		Subsystem: "db",
		Name:      "pool_conns_acquired",
		Help:      "Connections currently acquired from the database pool",
	})

	DBPoolConnsIdle = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "geopoint",
		Subsystem: "db",
		Name:      "pool_conns_idle",
		Help:      "Idle connections in the database pool",
	})
)

// Middleware records request metrics.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Response().StatusCode())
		path := c.Route().Path
		if path == "" {
			path = c.Path()
		}
		method := c.Method()

		httpRequestsTotal.WithLabelValues(method, path, status).Inc()
		httpRequestDuration.WithLabelValues(method, path).Observe(duration)

		return err
	}
}

// Handler returns a Fiber handler serving the Prometheus /metrics endpoint.
func Handler() fiber.Handler {
	handler := promhttp.Handler()
	return func(c *fiber.Ctx) error {
		fasthttpadaptor.NewFastHTTPHandler(handler)(c.Context())
		return nil
	}
}

// UpdateDBPoolMetrics updates database pool metrics from pgx pool stats.
func UpdateDBPoolMetrics(stat interface{}) {
	type poolStat interface {
		AcquiredConns() int32
		IdleConns() int32
		TotalConns() int32
	}

	if s, ok := stat.(poolStat); ok {
		DBPoolConnsAcquired.Set(float64(s.AcquiredConns()))
		DBPoolConnsIdle.Set(float64(s.IdleConns()))
		DBPoolConnsOpen.Set(float64(s.TotalConns()))
	}
}
