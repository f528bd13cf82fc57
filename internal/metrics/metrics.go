// Package metrics defines the Prometheus instruments. They live in a
// standalone package to avoid import cycles between the HTTP layer and
// the services that record domain events.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total processed HTTP requests",
	}, []string{"method", "path", "status"})

	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})

	TokensIssuedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "tokens_issued_total",
		Help: "Issued tokens by audience kind",
	}, []string{"audience"}) // audience: session|identity

	AuthorizeRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "authorize_requests_total",
		Help: "Authorize flow outcomes",
	}, []string{"result"}) // result: redirect|prompt|invalid_request|unsupported_response_type|invalid_scope|unauthorized_client

	SignInsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "signins_total",
		Help: "Sign-in attempts by result",
	}, []string{"result"}) // result: ok|wrong_credentials|unknown_user|missing
)

// Register attaches every instrument to the registry, tolerating double
// registration so tests can call it repeatedly.
func Register(reg prometheus.Registerer) error {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	for _, c := range []prometheus.Collector{
		HTTPRequestsTotal,
		HTTPRequestDuration,
		TokensIssuedTotal,
		AuthorizeRequestsTotal,
		SignInsTotal,
	} {
		if err := reg.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				return err
			}
		}
	}
	return nil
}

// Handler returns the /metrics endpoint handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
