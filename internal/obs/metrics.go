package obs

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Result labels shared by the auth counters.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
	ResultError   = "error"
)

var (
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "travelagent_http_request_duration_seconds",
		Help:    "HTTP request latency by route and status.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})

	AuthLogins = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "travelagent_auth_logins_total",
		Help: "Login attempts by strategy and result.",
	}, []string{"strategy", "result"})

	AuthRegistrations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "travelagent_auth_registrations_total",
		Help: "Registration attempts by result.",
	}, []string{"result"})

	AuthRefreshes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "travelagent_auth_refreshes_total",
		Help: "Token refresh attempts by result.",
	}, []string{"result"})

	AuthTokenVerifications = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "travelagent_auth_token_verifications_total",
		Help: "Bearer token checks by middleware mode and result.",
	}, []string{"mode", "result"})

	SessionsSwept = promauto.NewCounter(prometheus.CounterOpts{
		Name: "travelagent_sessions_swept_total",
		Help: "Expired session records removed by the sweeper.",
	})
)

func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
