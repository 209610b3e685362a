package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	commandsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "warden_commands_total",
			Help: "Commands handled, by command name and outcome",
		},
		[]string{"command", "outcome"},
	)

	warningsIssuedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "warden_warnings_issued_total",
			Help: "Warnings written to the ledger, by kind",
		},
		[]string{"kind"},
	)

	warningsRevokedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "warden_warnings_revoked_total",
			Help: "Warnings deleted through amnesty",
		},
	)
)

func init() {
	prometheus.MustRegister(commandsTotal, warningsIssuedTotal, warningsRevokedTotal)
}

// Serve exposes /metrics and blocks until the listener fails.
func Serve(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return server.ListenAndServe()
}

func RecordCommand(command, outcome string) {
	commandsTotal.WithLabelValues(command, outcome).Inc()
}

func RecordWarningIssued(kind string) {
	warningsIssuedTotal.WithLabelValues(kind).Inc()
}

func RecordWarningsRevoked(n int64) {
	warningsRevokedTotal.Add(float64(n))
}
