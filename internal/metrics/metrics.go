package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ScoreRuns = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "portal", Name: "score_runs_total", Help: "Successful verification scorer runs",
	})
	ScoreErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "portal", Name: "score_errors_total", Help: "Failed verification scorer runs",
	})
	Decisions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "portal", Name: "decisions_total", Help: "Admin decisions applied",
	}, []string{"decision"})
	EmailFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "portal", Name: "email_failures_total", Help: "Decision mails that could not be delivered",
	})
	Exports = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "portal", Name: "exports_total", Help: "Report exports by format",
	}, []string{"format"})
	HandlerErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "portal", Name: "handler_errors_total", Help: "HTTP handler errors",
	})
	DBPing = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "portal", Name: "db_ping_seconds", Help: "DB ping latency",
		Buckets: prometheus.DefBuckets,
	})
)

func init() {
	prometheus.MustRegister(ScoreRuns, ScoreErrors, Decisions, EmailFailures, Exports, HandlerErrors, DBPing)
}

func Handler() http.Handler { return promhttp.Handler() }

func ObserveDBPing(d time.Duration) { DBPing.Observe(d.Seconds()) }
