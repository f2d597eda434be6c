package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "kanso_http_requests_total",
		Help: "HTTP requests by route, method and status",
	}, []string{"route", "method", "status"})

	HTTPDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "kanso_http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"route", "method"})

	OverviewBuilds = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "kanso_overview_builds_total",
		Help: "Yearly heat maps assembled",
	})

	OverviewCache = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "kanso_overview_cache_total",
		Help: "Overview count cache lookups by result",
	}, []string{"result"})

	WorkerJobs = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "kanso_overview_worker_jobs_total",
		Help: "Overview refresh jobs by outcome",
	}, []string{"outcome"})
)

func init() {
	prometheus.MustRegister(HTTPRequests, HTTPDuration, OverviewBuilds, OverviewCache, WorkerJobs)
}

func Handler() http.Handler {
	return promhttp.Handler()
}

func ObserveRequest(route, method, status string, start time.Time) {
	HTTPRequests.WithLabelValues(route, method, status).Inc()
	HTTPDuration.WithLabelValues(route, method).Observe(time.Since(start).Seconds())
}

func CacheHit()  { OverviewCache.WithLabelValues("hit").Inc() }
func CacheMiss() { OverviewCache.WithLabelValues("miss").Inc() }

func JobDone(outcome string) { WorkerJobs.WithLabelValues(outcome).Inc() }
