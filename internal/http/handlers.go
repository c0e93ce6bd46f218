package http

import (
	"context"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	applog "fintrack/internal/log"
)

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().Data(map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
		"uptime":    time.Since(s.started).Seconds(),
	}).Write(w)
}

// handleReady reports dependency state. Storage failures make the service
// not ready; an unavailable event bus only degrades it.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := "ready"
	httpStatus := http.StatusOK
	checks := make(map[string]string)

	for name, err := range s.svc.ReadinessChecks(ctx) {
		if err == nil {
			checks[name] = "ok"
			continue
		}
		checks[name] = fmt.Sprintf("failed: %v", err)
		if name == "storage" {
			status = "not_ready"
			httpStatus = http.StatusServiceUnavailable
		} else if status == "ready" {
			status = "degraded"
		}
	}

	if s.indexHTML == nil {
		checks["frontend"] = "missing"
	} else {
		checks["frontend"] = "ok"
	}

	rl := s.limiter.GetMetrics()
	response := map[string]any{
		"status":    status,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"checks":    checks,
		"rate_limiter": map[string]any{
			"active_clients": rl.ClientCount,
		},
	}
	NewJSONResponse().Status(httpStatus).Data(response).Write(w)
}

// handleMetrics provides application and security metrics in plain text format
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")

	traceMetrics := s.trace.GetMetrics()
	securityMetrics := s.detector.GetMetrics()
	rateLimitMetrics := s.limiter.GetMetrics()

	stored := -1
	if txs, err := s.svc.ListTransactions(r.Context()); err == nil {
		stored = len(txs)
	} else {
		applog.FromContext(r.Context()).WarnContext(r.Context(), "Metrics could not count transactions", applog.FieldError, err)
	}

	w.WriteHeader(http.StatusOK)

	fmt.Fprintf(w, "# HELP http_requests_total Total number of HTTP requests\n")
	fmt.Fprintf(w, "# TYPE http_requests_total counter\n")
	fmt.Fprintf(w, "http_requests_total %d\n\n", traceMetrics.TotalRequests)

	fmt.Fprintf(w, "# HELP http_request_errors_total HTTP responses with an error status\n")
	fmt.Fprintf(w, "# TYPE http_request_errors_total counter\n")
	fmt.Fprintf(w, "http_request_errors_total{class=\"4xx\"} %d\n", traceMetrics.ClientErrors)
	fmt.Fprintf(w, "http_request_errors_total{class=\"5xx\"} %d\n\n", traceMetrics.ServerErrors)

	fmt.Fprintf(w, "# HELP http_request_duration_avg_ms Mean request handling time\n")
	fmt.Fprintf(w, "# TYPE http_request_duration_avg_ms gauge\n")
	fmt.Fprintf(w, "http_request_duration_avg_ms %.3f\n\n", float64(traceMetrics.AverageResponseTime().Microseconds())/1000)

	fmt.Fprintf(w, "# HELP transactions_created_total Transactions created since start\n")
	fmt.Fprintf(w, "# TYPE transactions_created_total counter\n")
	fmt.Fprintf(w, "transactions_created_total %d\n\n", atomic.LoadInt64(&s.transactionsCreated))

	fmt.Fprintf(w, "# HELP transactions_stored Transactions currently held\n")
	fmt.Fprintf(w, "# TYPE transactions_stored gauge\n")
	fmt.Fprintf(w, "transactions_stored %d\n\n", stored)

	fmt.Fprintf(w, "# HELP rate_limit_hits_total Total rate limit hits\n")
	fmt.Fprintf(w, "# TYPE rate_limit_hits_total counter\n")
	fmt.Fprintf(w, "rate_limit_hits_total %d\n\n", rateLimitMetrics.TotalHits)

	fmt.Fprintf(w, "# HELP active_rate_limit_clients Currently tracked rate limit clients\n")
	fmt.Fprintf(w, "# TYPE active_rate_limit_clients gauge\n")
	fmt.Fprintf(w, "active_rate_limit_clients %d\n\n", rateLimitMetrics.ClientCount)

	fmt.Fprintf(w, "# HELP suspicious_requests_total Total suspicious requests detected\n")
	fmt.Fprintf(w, "# TYPE suspicious_requests_total counter\n")
	fmt.Fprintf(w, "suspicious_requests_total %d\n\n", securityMetrics.SuspiciousRequests)

	fmt.Fprintf(w, "# HELP panics_recovered_total Handler panics turned into 500s\n")
	fmt.Fprintf(w, "# TYPE panics_recovered_total counter\n")
	fmt.Fprintf(w, "panics_recovered_total %d\n\n", s.recovery.Panics())

	fmt.Fprintf(w, "# HELP uptime_seconds Application uptime in seconds\n")
	fmt.Fprintf(w, "# TYPE uptime_seconds gauge\n")
	fmt.Fprintf(w, "uptime_seconds %.0f\n", time.Since(s.started).Seconds())
}

// handleFrontend serves the single-page front end for every non-API GET.
func (s *Server) handleFrontend(w http.ResponseWriter, r *http.Request) {
	if s.indexHTML == nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Front-end document not loaded", applog.FieldPath, r.URL.Path)
		http.Error(w, "front end not available", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	if r.Method != http.MethodHead {
		_, _ = w.Write(s.indexHTML)
	}
}
