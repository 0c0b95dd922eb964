package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Dispatch outcomes used as the "outcome" label.
const (
	OutcomeSuccess        = "success"
	OutcomeValidation     = "validation_error"
	OutcomeProviderError  = "provider_error"
	OutcomeTransportError = "transport_error"
)

var (
	ContactDispatches = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "portfolio_contact_dispatch_total",
		Help: "Total number of contact form dispatch attempts by outcome",
	}, []string{"outcome"})
	EmailProviderDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "portfolio_email_provider_duration_seconds",
		Help:    "Latency of calls to the email delivery provider",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	}, []string{"provider"})
	RateLimited = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "portfolio_rate_limited_total",
		Help: "Total number of requests rejected by the rate limiter",
	}, []string{"route"})
)

func init() {
	prometheus.MustRegister(
		ContactDispatches,
		EmailProviderDuration,
		RateLimited,
	)
}

// Handler exposes the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
