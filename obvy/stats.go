package rlcscope

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// StatsInternal holds the prometheus collectors on a private registry,
// so several Views (and tests) never collide on registration.
type StatsInternal struct {
	Registry   *prometheus.Registry
	SolveCount *prometheus.CounterVec // by regime
	SolveTime  prometheus.Histogram
	Invalid    prometheus.Counter
	WWWCount   *prometheus.CounterVec // by code and method
	WSCount    *prometheus.CounterVec // by message type
	Archived   *prometheus.CounterVec // by output and result
}

func NewStatsInternal() *StatsInternal {
	s := &StatsInternal{
		Registry: prometheus.NewRegistry(),
		SolveCount: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rlcscope_solve_total",
			Help: "Recomputations by damping regime",
		}, []string{"regime"}),
		SolveTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "rlcscope_solve_seconds",
			Help:    "Time spent in one recomputation",
			Buckets: prometheus.ExponentialBuckets(1e-5, 4, 8),
		}),
		Invalid: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rlcscope_invalid_total",
			Help: "Recomputations refused for invalid parameters",
		}),
		WWWCount: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rlcscope_http_requests_total",
			Help: "HTTP requests by status code and method",
		}, []string{"code", "method"}),
		WSCount: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rlcscope_ws_messages_total",
			Help: "Websocket messages by type",
		}, []string{"type"}),
		Archived: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rlcscope_archive_flush_total",
			Help: "Archive flushes by output and result",
		}, []string{"output", "result"}),
	}

	s.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		s.SolveCount,
		s.SolveTime,
		s.Invalid,
		s.WWWCount,
		s.WSCount,
		s.Archived,
	)
	return s
}

// Handler serves this registry for /metrics
func (s *StatsInternal) Handler() http.Handler {
	return promhttp.HandlerFor(s.Registry, promhttp.HandlerOpts{Registry: s.Registry})
}

func (s *StatsInternal) RecSolve(regime string, d time.Duration) {
	s.SolveCount.WithLabelValues(regime).Inc()
	s.SolveTime.Observe(d.Seconds())
}

func (s *StatsInternal) RecInvalid() {
	s.Invalid.Inc()
}

func (s *StatsInternal) RecWWW(code, method string) {
	s.WWWCount.WithLabelValues(code, method).Inc()
}

func (s *StatsInternal) RecWSMessage(kind string) {
	s.WSCount.WithLabelValues(kind).Inc()
}

func (s *StatsInternal) RecFlush(output string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	s.Archived.WithLabelValues(output, result).Inc()
}
