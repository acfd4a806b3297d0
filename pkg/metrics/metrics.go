package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestsIssued = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "twgraph_requests_issued_total",
		Help: "Total API requests issued, including rate-limit re-issues",
	})
	RequestsWithoutCooldown = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "twgraph_requests_without_cooldown_total",
		Help: "API calls that resolved without a rate-limit detour",
	})
	RequestsResolved = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "twgraph_requests_resolved_total",
		Help: "API calls that resolved to a payload or a classified sentinel",
	})
	Cooldowns = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "twgraph_cooldowns_total",
		Help: "Rate-limit cooldown windows entered",
	})
	UsersByDisposition = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "twgraph_users",
		Help: "Known users partitioned by disposition",
	}, []string{"disposition"})
)

func init() {
	prometheus.MustRegister(RequestsIssued, RequestsWithoutCooldown, RequestsResolved, Cooldowns, UsersByDisposition)
}

// StartServer exposes /metrics and /health on addr. Empty addr disables the
// listener; the crawl is unaffected either way.
func StartServer(addr string) {
	if addr == "" {
		return
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	go func() { _ = http.ListenAndServe(addr, mux) }()
}
