package obs

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	RequestsTotal       *prometheus.CounterVec
	CacheHitsTotal      *prometheus.CounterVec
	CacheMissesTotal    *prometheus.CounterVec
	RateLimitDropsTotal *prometheus.CounterVec

	ProviderErrors  *prometheus.CounterVec
	ProviderRetries *prometheus.CounterVec
	ProviderLatency *prometheus.HistogramVec
	PaymentFailures *prometheus.CounterVec

	HTTPRequestDuration *prometheus.HistogramVec
	HTTPRequestsTotal   *prometheus.CounterVec
	Registry            *prometheus.Registry
}

// Create Prometheus collectors and register them
func NewMetrics(p *prometheus.Registry) *Metrics {
	m := &Metrics{
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "booking_requests_total",
			Help: "Total booking operations received, by operation class",
		}, []string{"operation"},
		),
		CacheHitsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "booking_cache_hits_total",
			Help: "Cache hits per namespace",
		}, []string{"namespace"},
		),
		CacheMissesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "booking_cache_misses_total",
			Help: "Cache misses per namespace",
		}, []string{"namespace"},
		),
		RateLimitDropsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "booking_ratelimit_drops_total",
			Help: "Requests dropped by the rate limiter, by operation class",
		}, []string{"class"},
		),
		ProviderErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "provider_errors_total",
			Help: "Errors returned by each provider adapter",
		}, []string{"provider"},
		),
		ProviderRetries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "provider_retries_total",
			Help: "Retry attempts against providers, by operation",
		}, []string{"operation"},
		),
		ProviderLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "provider_latency_seconds",
				Help:    "Latency of provider adapter calls",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"provider"},
		),
		PaymentFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "payment_failures_total",
			Help: "Payment collaborator failures, by stage",
		}, []string{"stage"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latencies",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		Registry: p,
	}

	// Register metrics with Prometheus
	p.MustRegister(
		m.RequestsTotal,
		m.CacheHitsTotal,
		m.CacheMissesTotal,
		m.RateLimitDropsTotal,
		m.ProviderErrors,
		m.ProviderRetries,
		m.ProviderLatency,
		m.PaymentFailures,
		m.HTTPRequestDuration,
		m.HTTPRequestsTotal,
	)

	return m
}

func (m *Metrics) IncRequests(operation string) {
	m.RequestsTotal.WithLabelValues(operation).Inc()
}

func (m *Metrics) IncCacheHits(namespace string) {
	m.CacheHitsTotal.WithLabelValues(namespace).Inc()
}

func (m *Metrics) IncCacheMisses(namespace string) {
	m.CacheMissesTotal.WithLabelValues(namespace).Inc()
}

func (m *Metrics) IncRateLimitDrops(class string) {
	m.RateLimitDropsTotal.WithLabelValues(class).Inc()
}

func (m *Metrics) IncProviderFailure(provider string) {
	m.ProviderErrors.WithLabelValues(provider).Inc()
}

func (m *Metrics) IncProviderRetries(operation string) {
	m.ProviderRetries.WithLabelValues(operation).Inc()
}

func (m *Metrics) ObserveProviderLatency(provider string, seconds float64) {
	m.ProviderLatency.WithLabelValues(provider).Observe(seconds)
}

func (m *Metrics) IncPaymentFailures(stage string) {
	m.PaymentFailures.WithLabelValues(stage).Inc()
}

func (m *Metrics) ObserveHTTPRequestDuration(method string, path string, status string, seconds float64) {
	m.HTTPRequestDuration.WithLabelValues(method, path, status).Observe(seconds)
}

func (m *Metrics) IncHTTPRequestsTotal(method string, path string, status string) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}
