package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

var (
	// ExtractionsTotal counts extraction passes by ingestion path (static,
	// browser, live).
	ExtractionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "apply_agent_extractions_total",
			Help: "Total number of extraction passes",
		},
		[]string{"path"},
	)

	// QuestionsDetected counts questions registered by the detector.
	QuestionsDetected = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "apply_agent_questions_detected_total",
			Help: "Total number of application questions detected",
		},
	)

	// FillsTotal counts fill attempts by outcome (filled, skipped, failed).
	FillsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "apply_agent_fills_total",
			Help: "Total number of form-fill attempts by outcome",
		},
		[]string{"outcome"},
	)

	// PageTransitions counts logical page type changes seen by the monitor.
	PageTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "apply_agent_page_transitions_total",
			Help: "Total number of logical page type transitions",
		},
		[]string{"to"},
	)
)

// ServeMetrics exposes /metrics on addr until the server fails. Run it in a
// goroutine; long-running commands only.
func ServeMetrics(log *zap.Logger, addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	log.Info("metrics endpoint listening", zap.String("addr", addr))
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Warn("metrics endpoint stopped", zap.Error(err))
	}
}
